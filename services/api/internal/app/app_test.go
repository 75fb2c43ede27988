package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"legalgpt/pkg/ai"
	"legalgpt/pkg/domain"
	"legalgpt/pkg/legal"
	"legalgpt/pkg/storage"
	"legalgpt/pkg/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type scriptedGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	systems []string
	users   []string
}

func (g *scriptedGenerator) GenerateText(_ context.Context, system, user string, _ ai.GenerationOptions) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.systems = append(g.systems, system)
	g.users = append(g.users, user)
	return g.reply, g.err
}

func (g *scriptedGenerator) lastSystem() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.systems) == 0 {
		return ""
	}
	return g.systems[len(g.systems)-1]
}

type testEnv struct {
	app     *App
	store   *store.GormStore
	gen     *scriptedGenerator
	objects *storage.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.NewGormStore(store.DriverSQLite, "file:app_"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	issuer, err := store.NewJWTIssuer(testSecret, time.Hour, store.NewMemoryTokenRevoker(), store.JWTOptions{})
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	gen := &scriptedGenerator{reply: "scripted guidance"}
	objects := storage.NewMemoryStore()
	a, err := New(Config{
		Store:   st,
		Tokens:  issuer,
		Gateway: legal.NewGateway(gen, 0),
		Objects: objects,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return &testEnv{app: a, store: st, gen: gen, objects: objects}
}

func (e *testEnv) register(t *testing.T, name string) domain.User {
	t.Helper()
	email := strings.ToLower(name) + "@example.com"
	user, token, err := e.app.Register(name, email, "Passw0rd!")
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	if token == "" {
		t.Fatalf("register %s: empty token", name)
	}
	return user
}

func TestNewRequiresStoreAndTokens(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without store")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	first := env.register(t, "Asha")

	_, _, err := env.app.Register("Other", "  ASHA@example.com ", "Another1pass")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if _, _, err := env.app.Authenticate("asha@example.com", "Passw0rd!"); err != nil {
		t.Fatalf("original credentials must still work: %v", err)
	}
	stored, ok, err := env.store.GetUserByEmail("asha@example.com")
	if err != nil || !ok || stored.ID != first.ID || stored.Name != "Asha" {
		t.Fatalf("first user altered: %+v ok=%v err=%v", stored, ok, err)
	}
	if stored.PasswordHash == "Passw0rd!" || stored.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct{ name, email, password string }{
		{"", "a@example.com", "Passw0rd!"},
		{"A", "not-an-email", "Passw0rd!"},
		{"A", "a@example.com", "short1"},
		{"A", "a@example.com", "lettersonly"},
	}
	for _, tc := range cases {
		_, _, err := env.app.Register(tc.name, tc.email, tc.password)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Register(%q,%q,%q): expected ValidationError, got %v", tc.name, tc.email, tc.password, err)
		}
	}
}

func TestAuthenticateFailsUniformly(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Asha")
	if _, _, err := env.app.ProvisionOAuthUser("Gita", "gita@example.com"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	for _, tc := range []struct{ email, password string }{
		{"asha@example.com", "wrong-pass1"},
		{"nobody@example.com", "Passw0rd!"},
		{"gita@example.com", "anything1"},
	} {
		if _, _, err := env.app.Authenticate(tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Authenticate(%q): expected ErrInvalidCredentials, got %v", tc.email, err)
		}
	}
}

func TestProvisionOAuthUserCreatesOnce(t *testing.T) {
	env := newTestEnv(t)
	first, token, err := env.app.ProvisionOAuthUser("Gita", "Gita@Example.com")
	if err != nil || token == "" {
		t.Fatalf("provision: %v", err)
	}
	if first.Provider != domain.ProviderGoogle || first.PasswordHash != "" {
		t.Fatalf("unexpected provisioned user %+v", first)
	}
	again, _, err := env.app.ProvisionOAuthUser("Gita R", "gita@example.com")
	if err != nil {
		t.Fatalf("second sign-in: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("second sign-in must reuse the account")
	}
	if _, _, err := env.app.ProvisionOAuthUser("x", "bad"); !errors.Is(err, ErrProvisioningFailed) {
		t.Fatalf("expected ErrProvisioningFailed, got %v", err)
	}
}

func TestTokenResolvesOnlyItsOwnUserAndLogoutRevokes(t *testing.T) {
	env := newTestEnv(t)
	_, tokenA, err := env.app.Register("Asha", "asha@example.com", "Passw0rd!")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	userB := env.register(t, "Bela")

	got, ok := env.app.UserFromToken(tokenA)
	if !ok || got.Email != "asha@example.com" || got.ID == userB.ID {
		t.Fatalf("token resolved to %+v ok=%v", got, ok)
	}
	if _, ok := env.app.UserFromToken(tokenA + "x"); ok {
		t.Fatalf("tampered token must not resolve")
	}
	if err := env.app.Logout(tokenA); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := env.app.UserFromToken(tokenA); ok {
		t.Fatalf("revoked token must not resolve")
	}
}

func TestConversationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "Asha")
	other := env.register(t, "Bela")

	conv, err := env.app.CreateConversation(owner, "  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if conv.Title != "New Conversation" {
		t.Fatalf("default title = %q", conv.Title)
	}
	for i, text := range []string{"Q1", "A1", "Q2"} {
		role := domain.RoleUser
		if i == 1 {
			role = domain.RoleAssistant
		}
		if _, err := env.app.AppendMessage(owner, conv.ID, role, text); err != nil {
			t.Fatalf("append %s: %v", text, err)
		}
	}
	msgs, err := env.app.ListMessages(owner, conv.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 3 || msgs[0].Content != "Q1" || msgs[1].Content != "A1" || msgs[2].Content != "Q2" {
		t.Fatalf("unexpected order %+v", msgs)
	}

	if _, err := env.app.AppendMessage(owner, conv.ID, "system", "x"); !isValidation(err) {
		t.Fatalf("expected validation error for role, got %v", err)
	}
	if _, err := env.app.GetConversation(other, conv.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := env.app.AppendMessage(other, conv.ID, domain.RoleUser, "hi"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign append: expected ErrForbidden, got %v", err)
	}
	if err := env.app.DeleteConversation(other, conv.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign delete: expected ErrForbidden, got %v", err)
	}
	if err := env.app.DeleteConversation(owner, conv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = env.app.GetConversation(owner, conv.ID)
	if !errors.Is(err, ErrNotFound) || err.Error() != "Conversation not found" {
		t.Fatalf("expected Conversation not found, got %v", err)
	}
}

func TestConcurrentAppendsAreAllKept(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "Asha")
	conv, err := env.app.CreateConversation(owner, "Busy")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	const n = 12
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.app.AppendMessage(owner, conv.ID, domain.RoleUser, fmt.Sprintf("m%d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	msgs, err := env.app.ListMessages(owner, conv.ID)
	if err != nil || len(msgs) != n {
		t.Fatalf("expected %d messages, got %d (%v)", n, len(msgs), err)
	}
}

func isValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
