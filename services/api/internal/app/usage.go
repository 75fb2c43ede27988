package app

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"legalgpt/internal/util"
	"legalgpt/pkg/domain"
	"legalgpt/pkg/legal"
)

const (
	maxSpecializations = 20
	maxBioRunes        = 2000
	maxQueryRunes      = 20000
)

func (a *App) GetProfile(user domain.User) (domain.Profile, error) {
	profile, err := a.store.GetOrCreateProfile(user.ID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile changes the practice details of the caller's profile,
// creating it if needed. Usage counters are never touched here.
func (a *App) UpdateProfile(user domain.User, upd domain.ProfileUpdate) (domain.Profile, error) {
	if upd.Specializations != nil {
		specs := normalizeTags(*upd.Specializations)
		if len(specs) > maxSpecializations {
			return domain.Profile{}, invalid("At most %d specializations are allowed", maxSpecializations)
		}
		upd.Specializations = &specs
	}
	if upd.Location != nil {
		loc := strings.TrimSpace(*upd.Location)
		upd.Location = &loc
	}
	if upd.Bio != nil && len([]rune(*upd.Bio)) > maxBioRunes {
		return domain.Profile{}, invalid("Bio must be at most %d characters", maxBioRunes)
	}
	profile, err := a.store.UpdateProfile(user.ID, upd)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

// ProcessQuery answers a question or analyses a pasted document for an
// authenticated user, records the exchange and counts it.
func (a *App) ProcessQuery(ctx context.Context, user domain.User, query string, queryType domain.QueryType, countryCode string) (domain.QueryRecord, error) {
	if strings.TrimSpace(query) == "" {
		return domain.QueryRecord{}, invalid("Query is required")
	}
	if len([]rune(query)) > maxQueryRunes {
		return domain.QueryRecord{}, invalid("Query must be at most %d characters", maxQueryRunes)
	}
	if queryType == "" {
		queryType = domain.QueryQuestion
	}
	if !queryType.Valid() {
		return domain.QueryRecord{}, invalid("Type must be question or document_analysis")
	}
	country, err := resolveCountry(countryCode)
	if err != nil {
		return domain.QueryRecord{}, err
	}
	var response string
	if queryType == domain.QueryDocumentAnalysis {
		response, err = a.gateway.AnalyzeDocument(ctx, query, country)
	} else {
		response, err = a.gateway.GetGuidance(ctx, query, country)
	}
	if err != nil {
		return domain.QueryRecord{}, err
	}
	rec := domain.QueryRecord{
		ID:        util.NewID(),
		OwnerID:   user.ID,
		Query:     query,
		Response:  response,
		QueryType: queryType,
		CreatedAt: a.timestamp(),
	}
	if err := a.store.CreateQuery(rec); err != nil {
		return domain.QueryRecord{}, fmt.Errorf("save query: %w", err)
	}
	if err := a.store.IncrementQueryCount(user.ID); err != nil {
		return domain.QueryRecord{}, fmt.Errorf("count query: %w", err)
	}
	return rec, nil
}

// UserData is everything the legal assistant keeps about one user.
type UserData struct {
	Profile   domain.Profile       `json:"profile"`
	Queries   []domain.QueryRecord `json:"queries"`
	Documents []domain.Document    `json:"documents"`
}

// UserData loads the caller's profile, recent queries and documents
// concurrently. Like GetProfile it creates a zeroed profile on first use, so
// the result always carries one.
func (a *App) UserData(ctx context.Context, user domain.User) (UserData, error) {
	var out UserData
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := a.GetProfile(user)
		out.Profile = profile
		return err
	})
	g.Go(func() error {
		queries, err := a.store.ListQueriesByOwner(user.ID, a.historyLimit)
		if err != nil {
			return fmt.Errorf("list queries: %w", err)
		}
		out.Queries = queries
		return nil
	})
	g.Go(func() error {
		docs, err := a.ListDocuments(user)
		out.Documents = docs
		return err
	})
	if err := g.Wait(); err != nil {
		return UserData{}, err
	}
	return out, nil
}

// DeleteUserData erases the caller's query history, documents (with their
// archived originals) and profile. The account and conversations remain.
func (a *App) DeleteUserData(ctx context.Context, user domain.User) error {
	docs, err := a.store.ListDocumentsByOwner(user.ID)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	if err := a.store.DeleteUserData(user.ID); err != nil {
		return fmt.Errorf("delete user data: %w", err)
	}
	for _, doc := range docs {
		a.removeObject(ctx, doc.StorageKey)
	}
	return nil
}

// GuidanceKind selects the prompt used by the public guidance endpoint.
type GuidanceKind string

const (
	GuidanceQuestion GuidanceKind = "question"
	GuidanceDocument GuidanceKind = "document"
)

// Guidance answers an anonymous, single-shot request. Nothing is stored.
func (a *App) Guidance(ctx context.Context, query string, kind GuidanceKind, countryCode string) (string, legal.Country, error) {
	if strings.TrimSpace(query) == "" {
		return "", legal.Country{}, invalid("Query is required")
	}
	if len([]rune(query)) > maxQueryRunes {
		return "", legal.Country{}, invalid("Query must be at most %d characters", maxQueryRunes)
	}
	country, err := resolveCountry(countryCode)
	if err != nil {
		return "", legal.Country{}, err
	}
	var guidance string
	switch kind {
	case "", GuidanceQuestion:
		guidance, err = a.gateway.GetGuidance(ctx, query, country)
	case GuidanceDocument:
		guidance, err = a.gateway.AnalyzeDocument(ctx, query, country)
	default:
		return "", legal.Country{}, invalid("Type must be question or document")
	}
	if err != nil {
		return "", legal.Country{}, err
	}
	return guidance, country, nil
}

// Countries lists the supported jurisdictions, default first.
func (a *App) Countries() []legal.Country {
	return legal.Countries()
}
