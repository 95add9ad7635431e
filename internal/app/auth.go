package app

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"

	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

// AuthMode is the active form of the auth view.
type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeRegister
)

// RegisterNotice is shown after a successful registration. Registration does
// not log the user in.
const RegisterNotice = "Registration successful. Please log in."

// authForm is what the form validates before anything reaches the network.
type authForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// AuthFlow drives the login/registration form. Field values survive a mode
// switch; only the error and notice are cleared.
type AuthFlow struct {
	auth     service.Authenticator
	sessions *session.Store
	validate *validator.Validate

	mu         sync.Mutex
	mode       AuthMode
	Email      string
	Password   string
	err        string
	notice     string
	submitting bool
}

// NewAuthFlow creates a flow in login mode.
func NewAuthFlow(auth service.Authenticator, sessions *session.Store) *AuthFlow {
	return &AuthFlow{
		auth:     auth,
		sessions: sessions,
		validate: validator.New(),
	}
}

// Mode returns the active form mode.
func (f *AuthFlow) Mode() AuthMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// SwitchMode toggles between login and registration, clearing any error but
// preserving the entered field values.
func (f *AuthFlow) SwitchMode(mode AuthMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = mode
	f.err = ""
	f.notice = ""
}

// ErrMsg returns the inline error from the last submission, if any.
func (f *AuthFlow) ErrMsg() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Notice returns the informational message from the last submission, if any.
func (f *AuthFlow) Notice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

// Submitting reports whether a submission is in flight.
func (f *AuthFlow) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Submit runs the active form. In login mode a success saves the session
// credential; a 2xx response with no credential is the "invalid login
// response" failure and leaves the user unauthenticated. In register mode a
// success switches back to login mode with a notice. Failures are surfaced
// inline through ErrMsg and also returned. While a submission is in flight
// further submissions are rejected.
func (f *AuthFlow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return errors.New("submission already in flight")
	}
	f.submitting = true
	f.err = ""
	f.notice = ""
	mode := f.mode
	form := authForm{Email: f.Email, Password: f.Password}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	if err := f.validate.Struct(form); err != nil {
		return f.fail("Email and password are required")
	}

	if mode == ModeRegister {
		if err := f.auth.Register(ctx, form.Email, form.Password); err != nil {
			return f.fail(authMessage(err))
		}
		f.mu.Lock()
		f.mode = ModeLogin
		f.notice = RegisterNotice
		f.mu.Unlock()
		return nil
	}

	credential, err := f.auth.Login(ctx, form.Email, form.Password)
	if err != nil {
		return f.fail(authMessage(err))
	}
	if credential == "" {
		return f.fail("Invalid login response")
	}
	if err := f.sessions.Save(credential); err != nil {
		return f.fail("Failed to save session")
	}
	return nil
}

// fail records the inline error and returns it.
func (f *AuthFlow) fail(msg string) error {
	f.mu.Lock()
	f.err = msg
	f.mu.Unlock()
	return errors.New(msg)
}

// authMessage extracts the service-provided detail message, falling back to
// a generic failure. Raw errors never reach the user.
func authMessage(err error) string {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return "Authentication failed"
}
