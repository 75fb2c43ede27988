package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"legalgpt/pkg/domain"
	"legalgpt/pkg/legal"
	"legalgpt/pkg/storage"
	"legalgpt/pkg/store"
)

const (
	defaultConversationTitle = "New Conversation"
	defaultQueryHistory      = 50
	defaultMaxAnalysisRunes  = 30000
	defaultPresignExpiry     = 15 * time.Minute
)

// TokenIssuer issues and verifies bearer tokens.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
	Verify(token string) (store.Claims, bool)
	Revoke(token string) error
	TTL() time.Duration
}

// Config holds the collaborators of the application core.
type Config struct {
	Store   store.Store
	Tokens  TokenIssuer
	Gateway *legal.Gateway
	// Objects archives uploaded originals. Optional.
	Objects storage.ObjectStore

	QueryHistoryLimit int
	MaxAnalysisRunes  int
	PresignExpiry     time.Duration
	Now               func() time.Time
}

// App implements the use cases behind every HTTP route. It owns no
// per-request state; concurrency safety comes from the store primitives.
type App struct {
	store         store.Store
	tokens        TokenIssuer
	gateway       *legal.Gateway
	objects       storage.ObjectStore
	historyLimit  int
	maxAnalysis   int
	presignExpiry time.Duration
	now           func() time.Time
}

// New validates cfg and constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	if cfg.QueryHistoryLimit <= 0 {
		cfg.QueryHistoryLimit = defaultQueryHistory
	}
	if cfg.MaxAnalysisRunes <= 0 {
		cfg.MaxAnalysisRunes = defaultMaxAnalysisRunes
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = defaultPresignExpiry
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &App{
		store:         cfg.Store,
		tokens:        cfg.Tokens,
		gateway:       cfg.Gateway,
		objects:       cfg.Objects,
		historyLimit:  cfg.QueryHistoryLimit,
		maxAnalysis:   cfg.MaxAnalysisRunes,
		presignExpiry: cfg.PresignExpiry,
		now:           cfg.Now,
	}, nil
}

// Ping checks the backing store.
func (a *App) Ping() error {
	return a.store.Ping()
}

// Stats reports per-table row counts.
func (a *App) Stats() (store.Stats, error) {
	return a.store.Counts()
}

// TokenTTL is the lifetime of tokens returned by sign-in.
func (a *App) TokenTTL() time.Duration {
	return a.tokens.TTL()
}

func (a *App) timestamp() time.Time {
	return a.now().UTC()
}

// loadOwned fetches a record and confirms the caller owns it. A missing
// record reports NotFound before ownership is considered.
func loadOwned[T domain.Owned](user domain.User, entity string, id string, load func(string) (T, bool, error)) (T, error) {
	var zero T
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, notFound(entity)
	}
	rec, ok, err := load(id)
	if err != nil {
		return zero, fmt.Errorf("load %s: %w", strings.ToLower(entity), err)
	}
	if !ok {
		return zero, notFound(entity)
	}
	if rec.Owner() != user.ID {
		return zero, ErrForbidden
	}
	return rec, nil
}

func resolveCountry(code string) (legal.Country, error) {
	country, ok := legal.ResolveCountry(code)
	if !ok {
		return legal.Country{}, invalid("Unsupported country code: %s", strings.TrimSpace(code))
	}
	return country, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
