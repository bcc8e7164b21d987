package storefront

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/guard"
	"github.com/Skotchmaster/storefront/internal/session"
)

const (
	activatedMessage        = "Account already activated"
	invalidCredentialsText  = "Invalid username or password"
	invalidActivationText   = "Activation link is invalid or expired"
	registrationFailureText = "Registration failed"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Login stores the token pair and user in one write and returns where the user lands.
func (f *Storefront) Login(ctx context.Context, usernameOrEmail, password string) (string, error) {
	l := f.log(ctx, "login")

	res, err := f.api.Account.Login(ctx, strings.TrimSpace(usernameOrEmail), password)
	if err != nil {
		l.Info("login_failed", "error", err)
		f.notices.Error("Error!", apiclient.Reason(err, invalidCredentialsText))
		return "", err
	}

	if err := f.store.Set(ctx, session.Session{
		AccessToken:  res.Access,
		RefreshToken: res.Refresh,
		User:         res.User,
	}); err != nil {
		l.Error("session_save_failed", "error", err)
		f.notices.Error("Error!", "Could not save your session. Please try again.")
		return "", err
	}
	f.counts.Reset(ctx, f.scope)

	f.notices.Success("Login Success!", "")
	return guard.Landing(res.User), nil
}

// Logout forgets the session of this scope only. Its counts are zeroed for
// live subscribers and then released.
func (f *Storefront) Logout(ctx context.Context) (string, error) {
	if err := f.store.Clear(ctx); err != nil {
		f.log(ctx, "logout").Error("session_clear_failed", "error", err)
		return "", err
	}
	f.counts.Reset(ctx, f.scope)
	f.counts.Drop(f.scope)
	f.notices.Success("Logged Out!", "You have been logged out successfully.")
	return guard.LoginPath, nil
}

type RegisterForm = apiclient.RegisterRequest

// ValidateRegistration applies the form rules in order and reports the first one broken.
func ValidateRegistration(form RegisterForm) error {
	switch {
	case len([]rune(strings.TrimSpace(form.FirstName))) < 2:
		return validationError("First name must be at least 2 characters")
	case strings.TrimSpace(form.LastName) == "":
		return validationError("Last name is required")
	case len([]rune(strings.TrimSpace(form.Username))) < 3:
		return validationError("Username must be at least 3 characters")
	case !emailRe.MatchString(form.Email):
		return validationError("Invalid email address")
	case len(form.Password) < 8:
		return validationError("Password must be at least 8 characters")
	case form.Password != form.ConfirmPassword:
		return validationError("Passwords do not match")
	}
	return nil
}

func (f *Storefront) Register(ctx context.Context, form RegisterForm) (string, error) {
	if err := ValidateRegistration(form); err != nil {
		f.notices.Error("Error", err.Error())
		return "", err
	}

	if err := f.api.Account.Register(ctx, form); err != nil {
		f.log(ctx, "register").Info("register_failed", "error", err)
		f.notices.Error("Error", apiclient.Message(err, registrationFailureText))
		return "", err
	}

	f.notices.Success("Success!", "Account created successfully. Please login.")
	return guard.LoginPath, nil
}

// Activate confirms an emailed activation link. Both success answers lead to login.
func (f *Storefront) Activate(ctx context.Context, uid, token string) (string, error) {
	res, err := f.api.Account.Activate(ctx, uid, token)
	if err != nil {
		f.log(ctx, "activate").Info("activation_failed", "error", err)
		f.notices.Error("Error", invalidActivationText)
		return "", fmt.Errorf("activate: %w", err)
	}

	if res.Message == activatedMessage {
		f.notices.Info("Info", activatedMessage)
	} else {
		f.notices.Success("Success", "Account activated successfully")
	}
	return guard.LoginPath, nil
}
