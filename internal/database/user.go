package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameExists     = errors.New("a user with that username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("please enter a correct username and password")
	ErrPasswordHashFailed = errors.New("failed to hash password")
	ErrUserCreateFailed   = errors.New("failed to create user")
)

type UserService struct {
	db   *Database
	cost int
}

func NewUserService(db *Database) *UserService {
	return &UserService{db: db, cost: bcrypt.DefaultCost}
}

// WithCost returns a copy of the service hashing with the given bcrypt cost.
// Tests use bcrypt.MinCost to stay fast.
func (us *UserService) WithCost(cost int) *UserService {
	return &UserService{db: us.db, cost: cost}
}

// CreateUser stores a new user. Field validation happens in the form layer;
// the unique index still guards against a concurrent registration.
func (us *UserService) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), us.cost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordHashFailed, err)
	}

	query := `INSERT INTO users (username, password, created) VALUES (?, ?, ?) RETURNING id`

	user := models.User{
		Username: username,
		Password: hashedPassword,
		Created:  utcNow(),
	}

	err = us.db.DBConn.QueryRowContext(ctx, query, username, hashedPassword, user.Created).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err, "users.username") {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("%w: %v", ErrUserCreateFailed, err)
	}

	return &user, nil
}

// UsernameTaken reports whether username is registered, ignoring case.
func (us *UserService) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists int
	query := `SELECT 1 FROM users WHERE username = ?`
	err := us.db.DBConn.QueryRowContext(ctx, query, username).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check username uniqueness: %w", err)
	}
	return true, nil
}

// VerifyUser checks a username/password pair. Unknown users and wrong
// passwords produce the same error.
func (us *UserService) VerifyUser(ctx context.Context, username, password string) (*models.User, error) {
	user, err := us.scanUser(us.db.DBConn.QueryRowContext(ctx,
		`SELECT id, username, password, created FROM users WHERE username = ?`, username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// CountUsers returns the number of registered users.
func (us *UserService) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := us.db.DBConn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (us *UserService) scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Password, &user.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
