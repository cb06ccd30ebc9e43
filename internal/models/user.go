package models

import "time"

type User struct {
	ID       int       // Unique identifier
	Username string    // Login name, unique regardless of case
	Password []byte    // bcrypt hash
	Created  time.Time // Registration time
}
