package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDocumentKey(t *testing.T) {
	cases := map[string]string{
		"lease.pdf":            "documents/u1/d1/lease.pdf",
		"../../etc/passwd":     "documents/u1/d1/passwd",
		`C:\Users\me\deed.txt`: "documents/u1/d1/deed.txt",
		"  ":                   "documents/u1/d1/original",
	}
	for in, want := range cases {
		if got := DocumentKey("u1", "d1", in); got != want {
			t.Fatalf("DocumentKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	key := DocumentKey("u1", "d1", "a.txt")
	if err := s.Put(ctx, key, strings.NewReader("hello"), 5, "text/plain"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected one object, got %d", s.Len())
	}
	link, err := s.PresignGet(ctx, key, time.Minute)
	if err != nil || link != "memory://"+key {
		t.Fatalf("presign = %q, %v", link, err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.PresignGet(ctx, key, time.Minute); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store")
	}
}
