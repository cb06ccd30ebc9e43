package forms

import (
	"context"
	"net/url"
)

// MsgInvalidLogin is the single message shown for an unknown username or a
// wrong password.
const MsgInvalidLogin = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// LoginForm only checks that both fields were filled in; the password is
// verified against the store by the caller.
type LoginForm struct {
	Username string
	Password string
}

var _ Validator[Credentials] = (*LoginForm)(nil)

func NewLoginForm(values url.Values) *LoginForm {
	return &LoginForm{
		Username: clean(values, "username"),
		Password: values.Get("password"),
	}
}

func (f *LoginForm) Validate(_ context.Context) (Credentials, error) {
	errs := Errors{}
	if f.Username == "" {
		errs.Add("username", msgRequired)
	}
	if f.Password == "" {
		errs.Add("password", msgRequired)
	}
	if err := errs.orNil(); err != nil {
		return Credentials{}, err
	}
	return Credentials{Username: f.Username, Password: f.Password}, nil
}
