package forms

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 150
	MinUsernameLength = 3
	MinPasswordLength = 8
	// MaxPasswordBytes is the most bcrypt will hash.
	MaxPasswordBytes = 72
)

// MsgUsernameTaken is reported when the username is already registered.
const MsgUsernameTaken = "A user with that username already exists."

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.@+-]+$`)

// commonPasswords is a short list of passwords rejected outright.
var commonPasswords = map[string]bool{
	"password": true, "password1": true, "password123": true, "12345678": true,
	"123456789": true, "1234567890": true, "qwerty123": true, "qwertyuiop": true,
	"iloveyou": true, "sunshine": true, "princess": true, "football": true,
	"baseball": true, "welcome1": true, "letmein1": true, "abc12345": true,
	"11111111": true, "00000000": true, "trustno1": true, "passw0rd": true,
}

// UsernameChecker reports whether a username is already registered.
type UsernameChecker interface {
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

// Credentials is a validated username and password pair.
type Credentials struct {
	Username string
	Password string
}

// RegisterForm is the user creation form: a username plus a password typed twice.
type RegisterForm struct {
	Username  string
	Password1 string
	Password2 string

	users UsernameChecker
}

var _ Validator[Credentials] = (*RegisterForm)(nil)

func NewRegisterForm(values url.Values, users UsernameChecker) *RegisterForm {
	return &RegisterForm{
		Username:  clean(values, "username"),
		Password1: values.Get("password1"),
		Password2: values.Get("password2"),
		users:     users,
	}
}

func (f *RegisterForm) Validate(ctx context.Context) (Credentials, error) {
	errs := Errors{}

	if err := f.validateUsername(ctx, errs); err != nil {
		return Credentials{}, err
	}

	if f.Password1 == "" {
		errs.Add("password1", msgRequired)
	}
	if f.Password2 == "" {
		errs.Add("password2", msgRequired)
	}
	if f.Password1 != "" && f.Password2 != "" {
		if f.Password1 != f.Password2 {
			errs.Add("password2", "The two password fields didn't match.")
		} else {
			for _, msg := range passwordProblems(f.Password2, f.Username) {
				errs.Add("password2", msg)
			}
		}
	}

	if err := errs.orNil(); err != nil {
		return Credentials{}, err
	}
	return Credentials{Username: f.Username, Password: f.Password1}, nil
}

func (f *RegisterForm) validateUsername(ctx context.Context, errs Errors) error {
	n := utf8.RuneCountInString(f.Username)
	switch {
	case n == 0:
		errs.Add("username", msgRequired)
		return nil
	case n < MinUsernameLength:
		errs.Add("username", fmt.Sprintf("Ensure this value has at least %d characters (it has %d).", MinUsernameLength, n))
		return nil
	case n > MaxUsernameLength:
		errs.Add("username", fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", MaxUsernameLength, n))
		return nil
	case !usernamePattern.MatchString(f.Username):
		errs.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		return nil
	}

	if f.users == nil {
		return nil
	}
	taken, err := f.users.UsernameTaken(ctx, f.Username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken {
		errs.Add("username", MsgUsernameTaken)
	}
	return nil
}

// passwordProblems applies the strength rules and returns every violation.
func passwordProblems(password, username string) []string {
	var problems []string

	if utf8.RuneCountInString(password) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		problems = append(problems, fmt.Sprintf("This password is too long. It must contain at most %d bytes.", MaxPasswordBytes))
	}
	if username != "" && strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		problems = append(problems, "The password is too similar to the username.")
	}
	if commonPasswords[strings.ToLower(password)] {
		problems = append(problems, "This password is too common.")
	}
	if strings.Trim(password, "0123456789") == "" {
		problems = append(problems, "This password is entirely numeric.")
	}

	return problems
}
