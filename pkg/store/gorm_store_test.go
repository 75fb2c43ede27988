package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"legalgpt/pkg/domain"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := NewGormStore(DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGormStoreUsersRejectDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	first := domain.User{ID: "u1", Name: "Asha", Email: "asha@example.com", PasswordHash: "h1", Provider: domain.ProviderPassword, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateUser(first); err != nil {
		t.Fatalf("create user: %v", err)
	}
	dup := first
	dup.ID = "u2"
	dup.PasswordHash = "h2"
	if err := s.CreateUser(dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	got, ok, err := s.GetUserByEmail("asha@example.com")
	if err != nil || !ok {
		t.Fatalf("get user: ok=%v err=%v", ok, err)
	}
	if got.ID != "u1" || got.PasswordHash != "h1" {
		t.Fatalf("first user must be unaffected, got %+v", got)
	}
	if _, ok, err := s.GetUserByID("missing"); ok || err != nil {
		t.Fatalf("missing user: ok=%v err=%v", ok, err)
	}
}

func TestGormStoreConversationAppendKeepsOrder(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	conv := domain.Conversation{ID: "c1", OwnerID: "u1", Title: "Lease", CreatedAt: now, UpdatedAt: now}
	if err := s.CreateConversation(conv); err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	for i, text := range []string{"Q1", "A1", "Q2"} {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		ok, err := s.AppendMessage("c1", domain.ChatMessage{Role: role, Content: text, Timestamp: now.Add(time.Duration(i) * time.Second)})
		if err != nil || !ok {
			t.Fatalf("append %s: ok=%v err=%v", text, ok, err)
		}
	}
	got, ok, err := s.GetConversation("c1")
	if err != nil || !ok {
		t.Fatalf("get conversation: ok=%v err=%v", ok, err)
	}
	var contents []string
	for _, m := range got.Messages {
		contents = append(contents, m.Content)
	}
	if strings.Join(contents, ",") != "Q1,A1,Q2" {
		t.Fatalf("unexpected order: %v", contents)
	}
	if !got.UpdatedAt.After(now) {
		t.Fatalf("expected updatedAt to advance, got %v", got.UpdatedAt)
	}
	if ok, err := s.AppendMessage("missing", domain.ChatMessage{Role: domain.RoleUser, Content: "x", Timestamp: now}); ok || err != nil {
		t.Fatalf("append to missing conversation: ok=%v err=%v", ok, err)
	}
}

func TestGormStoreConcurrentAppendsLoseNothing(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	if err := s.CreateConversation(domain.Conversation{ID: "c1", OwnerID: "u1", Title: "t", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	const writers = 2
	const perWriter = 10
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			<-start
			for i := 0; i < perWriter; i++ {
				msg := domain.ChatMessage{Role: domain.RoleUser, Content: fmt.Sprintf("w%d-%d", w, i), Timestamp: time.Now().UTC()}
				if _, err := s.AppendMessage("c1", msg); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("append: %v", err)
	}
	msgs, err := s.ListMessages("c1")
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != writers*perWriter {
		t.Fatalf("expected %d messages, got %d", writers*perWriter, len(msgs))
	}
	seen := map[string]bool{}
	for _, m := range msgs {
		seen[m.Content] = true
	}
	if len(seen) != writers*perWriter {
		t.Fatalf("expected distinct messages, got %d", len(seen))
	}
}

func TestGormStoreListConversationsNewestUpdatedFirstAndDelete(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		at := base.Add(time.Duration(i) * time.Minute)
		if err := s.CreateConversation(domain.Conversation{ID: id, OwnerID: "u1", Title: id, CreatedAt: at, UpdatedAt: at}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := s.CreateConversation(domain.Conversation{ID: "other", OwnerID: "u2", Title: "x", CreatedAt: base, UpdatedAt: base}); err != nil {
		t.Fatalf("create other: %v", err)
	}
	if _, err := s.AppendMessage("old", domain.ChatMessage{Role: domain.RoleUser, Content: "bump", Timestamp: time.Now().UTC()}); err != nil {
		t.Fatalf("append: %v", err)
	}

	list, err := s.ListConversationsByOwner("u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var ids []string
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	if strings.Join(ids, ",") != "old,new,mid" {
		t.Fatalf("unexpected order: %v", ids)
	}

	if err := s.DeleteConversation("old"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.GetConversation("old"); ok {
		t.Fatalf("conversation should be gone")
	}
	if msgs, _ := s.ListMessages("old"); len(msgs) != 0 {
		t.Fatalf("messages should be removed with the conversation, got %d", len(msgs))
	}
}

func TestGormStoreNoticeLifecycle(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"n1", "n2"} {
		at := base.Add(time.Duration(i) * time.Minute)
		err := s.CreateNotice(domain.Notice{
			ID: id, OwnerID: "u1", Title: "Notice " + id, Content: "pay rent", NoticeType: "eviction",
			Status: domain.NoticeActive, Tags: []string{"housing"}, CreatedAt: at, UpdatedAt: at,
		})
		if err != nil {
			t.Fatalf("create notice: %v", err)
		}
	}
	list, err := s.ListNoticesByOwner("u1")
	if err != nil || len(list) != 2 || list[0].ID != "n2" {
		t.Fatalf("expected newest first, got %+v err=%v", list, err)
	}
	if len(list[0].Tags) != 1 || list[0].Tags[0] != "housing" {
		t.Fatalf("tags not round-tripped: %v", list[0].Tags)
	}

	resolved := domain.NoticeResolved
	title := "Settled"
	at := time.Now().UTC()
	updated, ok, err := s.UpdateNotice("n1", domain.NoticeUpdate{Status: &resolved, Title: &title}, at)
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	if updated.Status != domain.NoticeResolved || updated.Title != "Settled" || updated.Content != "pay rent" {
		t.Fatalf("partial update wrong: %+v", updated)
	}
	if !updated.UpdatedAt.After(base) {
		t.Fatalf("updatedAt not refreshed")
	}
	if _, ok, err := s.UpdateNotice("missing", domain.NoticeUpdate{Title: &title}, at); ok || err != nil {
		t.Fatalf("update missing: ok=%v err=%v", ok, err)
	}

	if err := s.CreateReply(domain.Reply{ID: "r1", NoticeID: "n1", OwnerID: "u1", Content: "we object", ReplyType: domain.ReplyFormal, CreatedAt: at, UpdatedAt: at}); err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if err := s.DeleteNotice("n1"); err != nil {
		t.Fatalf("delete notice: %v", err)
	}
	if _, ok, _ := s.GetReply("r1"); ok {
		t.Fatalf("replies should be deleted with their notice")
	}
}

func TestGormStoreProfileGetOrCreateIsRaceSafe(t *testing.T) {
	s := newTestStore(t)
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := s.GetOrCreateProfile("u1"); err != nil {
				errs <- err
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("get or create: %v", err)
	}
	var count int64
	if err := s.db.Model(&ProfileModel{}).Where("owner_id = ?", "u1").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one profile, got %d", count)
	}
	p, err := s.GetOrCreateProfile("u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.QueriesCount != 0 || p.DocumentsCount != 0 || p.TotalQueries != 0 {
		t.Fatalf("counters should start at zero: %+v", p)
	}
}

func TestGormStoreConcurrentIncrements(t *testing.T) {
	s := newTestStore(t)
	const n = 25
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			if err := s.IncrementQueryCount("u1"); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			<-start
			if err := s.IncrementDocumentCount("u1"); err != nil {
				errs <- err
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("increment: %v", err)
	}
	p, err := s.GetOrCreateProfile("u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.QueriesCount != n || p.TotalQueries != n || p.DocumentsCount != n {
		t.Fatalf("lost increments: %+v", p)
	}
}

func TestGormStoreUpdateProfileUpsertsPartially(t *testing.T) {
	s := newTestStore(t)
	loc := "Mumbai"
	p, err := s.UpdateProfile("u1", domain.ProfileUpdate{Location: &loc})
	if err != nil {
		t.Fatalf("upsert profile: %v", err)
	}
	if p.Location != "Mumbai" || len(p.Specializations) != 0 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if err := s.IncrementQueryCount("u1"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	specs := []string{"tenancy", "labour"}
	p, err = s.UpdateProfile("u1", domain.ProfileUpdate{Specializations: &specs})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if p.Location != "Mumbai" || len(p.Specializations) != 2 || p.QueriesCount != 1 {
		t.Fatalf("partial update clobbered fields: %+v", p)
	}
}

func seedUserData(t *testing.T, s *GormStore, owner string, docID string) {
	t.Helper()
	now := time.Now().UTC()
	if err := s.CreateQuery(domain.QueryRecord{ID: "q-" + docID, OwnerID: owner, Query: "q", Response: "r", QueryType: domain.QueryQuestion, CreatedAt: now}); err != nil {
		t.Fatalf("create query: %v", err)
	}
	if err := s.CreateDocument(domain.Document{ID: docID, OwnerID: owner, Title: "t", Content: "c", DocumentType: "contract", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("create document: %v", err)
	}
	if err := s.IncrementQueryCount(owner); err != nil {
		t.Fatalf("increment: %v", err)
	}
}

func TestGormStoreDeleteUserData(t *testing.T) {
	s := newTestStore(t)
	seedUserData(t, s, "u1", "d1")
	seedUserData(t, s, "u2", "d2")

	if err := s.DeleteUserData("u1"); err != nil {
		t.Fatalf("delete user data: %v", err)
	}
	if qs, _ := s.ListQueriesByOwner("u1", 0); len(qs) != 0 {
		t.Fatalf("queries not deleted")
	}
	if docs, _ := s.ListDocumentsByOwner("u2"); len(docs) != 1 {
		t.Fatalf("other owner's documents must survive")
	}

	stats, err := s.Counts()
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if stats["document_models"] != 1 || stats["query_models"] != 1 || stats["profile_models"] != 1 {
		t.Fatalf("unexpected counts: %v", stats)
	}
}

func TestGormStoreDeleteUserDataRollsBackOnFailure(t *testing.T) {
	s := newTestStore(t)
	seedUserData(t, s, "u1", "d1")

	// Queries and documents are deleted before the profile; a missing
	// profile table fails the last step.
	if err := s.db.Migrator().DropTable(&ProfileModel{}); err != nil {
		t.Fatalf("drop profiles: %v", err)
	}
	if err := s.DeleteUserData("u1"); err == nil {
		t.Fatalf("expected delete to fail without a profile table")
	}
	if qs, _ := s.ListQueriesByOwner("u1", 0); len(qs) != 1 {
		t.Fatalf("queries must survive a failed erase, got %d", len(qs))
	}
	if docs, _ := s.ListDocumentsByOwner("u1"); len(docs) != 1 {
		t.Fatalf("documents must survive a failed erase, got %d", len(docs))
	}
}
