package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryTokenRevoker(t *testing.T) {
	r := NewMemoryTokenRevoker()
	if err := r.Revoke("jti-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := r.IsRevoked("jti-1"); !revoked {
		t.Fatalf("expected jti-1 revoked")
	}
	if revoked, _ := r.IsRevoked("jti-2"); revoked {
		t.Fatalf("jti-2 was never revoked")
	}
	if err := r.Revoke("jti-3", 0); err != nil {
		t.Fatalf("revoke expired: %v", err)
	}
	if revoked, _ := r.IsRevoked("jti-3"); revoked {
		t.Fatalf("already expired tokens need no revocation entry")
	}
}

func TestRedisTokenRevokerExpires(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	r := NewRedisTokenRevoker(client, "test:revoked")

	if err := r.Revoke("jti-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, err := r.IsRevoked("jti-1"); err != nil || !revoked {
		t.Fatalf("expected revoked, got %v err=%v", revoked, err)
	}
	srv.FastForward(2 * time.Minute)
	if revoked, err := r.IsRevoked("jti-1"); err != nil || revoked {
		t.Fatalf("expected revocation to lapse, got %v err=%v", revoked, err)
	}
}
