package app

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"legalgpt/internal/util"
	"legalgpt/pkg/auth"
	"legalgpt/pkg/domain"
	"legalgpt/pkg/store"
)

const maxNameLength = 120

// Register creates a password account and returns it with a bearer token.
func (a *App) Register(name, email, password string) (domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return domain.User{}, "", invalid("Name, email, and password are required")
	}
	if len([]rune(name)) > maxNameLength {
		return domain.User{}, "", invalid("Name must be at most %d characters", maxNameLength)
	}
	if !validEmail(email) {
		return domain.User{}, "", invalid("Invalid email address")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", &ValidationError{Message: err.Error()}
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrDuplicateEmail
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	user, err := a.createUser(name, email, hash, domain.ProviderPassword)
	if errors.Is(err, store.ErrDuplicate) {
		// lost a race with a concurrent registration for the same email
		return domain.User{}, "", ErrDuplicateEmail
	}
	if err != nil {
		return domain.User{}, "", err
	}
	return a.issue(user)
}

// Authenticate checks an email/password pair. Every failure, including an
// account that only signs in through an identity provider, yields
// ErrInvalidCredentials.
func (a *App) Authenticate(email, password string) (domain.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, "", invalid("Email and password are required")
	}
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	return a.issue(user)
}

// ProvisionOAuthUser signs in a user vouched for by an identity provider,
// creating a local account with an empty password hash on first sign-in.
// Any store failure aborts the sign-in.
func (a *App) ProvisionOAuthUser(name, email string) (domain.User, string, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return domain.User{}, "", ErrProvisioningFailed
	}
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("%w: fetch user: %v", ErrProvisioningFailed, err)
	}
	if ok {
		return a.issue(user)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user, err = a.createUser(name, email, "", domain.ProviderGoogle)
	if errors.Is(err, store.ErrDuplicate) {
		user, ok, err = a.store.GetUserByEmail(email)
		if err == nil && !ok {
			err = errors.New("user vanished after duplicate insert")
		}
	}
	if err != nil {
		return domain.User{}, "", fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
	}
	return a.issue(user)
}

// UserFromToken resolves the caller of a bearer token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	claims, ok := a.tokens.Verify(token)
	if !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(claims.UserID)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// Logout revokes the token until it would have expired anyway.
func (a *App) Logout(token string) error {
	if err := a.tokens.Revoke(token); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (a *App) createUser(name, email, hash, provider string) (domain.User, error) {
	now := a.timestamp()
	user := domain.User{
		ID:           util.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Provider:     provider,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.CreateUser(user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (a *App) issue(user domain.User) (domain.User, string, error) {
	token, err := a.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
