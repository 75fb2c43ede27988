package store

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer(t *testing.T, revoker TokenRevoker, opts JWTOptions) *JWTIssuer {
	t.Helper()
	issuer, err := NewJWTIssuer(testSecret, time.Hour, revoker, opts)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return issuer
}

func TestJWTIssuerRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t, nil, JWTOptions{})
	token, err := issuer.Issue("user-a", "a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, ok := issuer.Verify(token)
	if !ok {
		t.Fatalf("expected token to verify")
	}
	if claims.UserID != "user-a" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTIssuerTokenNeverVerifiesAsAnotherUser(t *testing.T) {
	issuer := newTestIssuer(t, nil, JWTOptions{})
	tokenA, _ := issuer.Issue("user-a", "a@example.com")
	tokenB, _ := issuer.Issue("user-b", "b@example.com")
	claimsA, _ := issuer.Verify(tokenA)
	claimsB, _ := issuer.Verify(tokenB)
	if claimsA.UserID == claimsB.UserID {
		t.Fatalf("tokens for different users must decode to different users")
	}

	// Splice A's payload onto B's signature.
	partsA := strings.Split(tokenA, ".")
	partsB := strings.Split(tokenB, ".")
	forged := partsA[0] + "." + partsB[1] + "." + partsA[2]
	if _, ok := issuer.Verify(forged); ok {
		t.Fatalf("tampered token must not verify")
	}
}

func TestJWTIssuerRejectsExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t, nil, JWTOptions{})
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.Issue("user-a", "a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	issuer.now = time.Now
	if _, ok := issuer.Verify(token); ok {
		t.Fatalf("expired token must verify as absent")
	}
}

func TestJWTIssuerExpiryIsExact(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		leeway time.Duration
		at     time.Duration
		valid  bool
	}{
		{"default leeway one second before exp", 0, time.Hour - time.Second, true},
		{"default leeway at exp", 0, time.Hour, false},
		{"default leeway one second after exp", 0, time.Hour + time.Second, false},
		{"negative leeway clamps to zero", -time.Minute, time.Hour + time.Second, false},
		{"explicit leeway is honoured", 5 * time.Second, time.Hour + time.Second, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issuer := newTestIssuer(t, nil, JWTOptions{Leeway: tc.leeway})
			issuer.now = func() time.Time { return issued }
			token, err := issuer.Issue("user-a", "a@example.com")
			if err != nil {
				t.Fatalf("issue: %v", err)
			}
			issuer.now = func() time.Time { return issued.Add(tc.at) }
			claims, ok := issuer.Verify(token)
			if ok != tc.valid {
				t.Fatalf("verify at issue+%v: ok=%v (user %q), want %v", tc.at, ok, claims.UserID, tc.valid)
			}
		})
	}
}

func TestJWTIssuerRejectsForeignSecretAndAlgorithm(t *testing.T) {
	issuer := newTestIssuer(t, nil, JWTOptions{})
	other, err := NewJWTIssuer(strings.Repeat("z", 40), time.Hour, nil, JWTOptions{})
	if err != nil {
		t.Fatalf("new other issuer: %v", err)
	}
	token, _ := other.Issue("user-a", "a@example.com")
	if _, ok := issuer.Verify(token); ok {
		t.Fatalf("token signed with another secret must not verify")
	}

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-a"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, ok := issuer.Verify(raw); ok {
		t.Fatalf("alg=none must not verify")
	}
	if _, ok := issuer.Verify(""); ok {
		t.Fatalf("empty token must not verify")
	}
}

func TestJWTIssuerEnforcesAudience(t *testing.T) {
	signing := newTestIssuer(t, nil, JWTOptions{Audience: "aud-a"})
	verifying := newTestIssuer(t, nil, JWTOptions{Audience: "aud-b"})
	token, _ := signing.Issue("user-a", "a@example.com")
	if _, ok := verifying.Verify(token); ok {
		t.Fatalf("audience mismatch must fail")
	}
}

func TestJWTIssuerRevoke(t *testing.T) {
	issuer := newTestIssuer(t, NewMemoryTokenRevoker(), JWTOptions{})
	token, _ := issuer.Issue("user-a", "a@example.com")
	if err := issuer.Revoke(token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, ok := issuer.Verify(token); ok {
		t.Fatalf("revoked token must not verify")
	}
	if err := issuer.Revoke("garbage"); err != nil {
		t.Fatalf("revoking garbage should be a no-op, got %v", err)
	}
}

func TestNewJWTIssuerRejectsWeakSecret(t *testing.T) {
	if _, err := NewJWTIssuer("short", time.Hour, nil, JWTOptions{}); err != ErrWeakSecret {
		t.Fatalf("expected ErrWeakSecret, got %v", err)
	}
}
