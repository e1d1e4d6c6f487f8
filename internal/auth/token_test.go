package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Clark-Hu/notflix/internal/domain"
)

const (
	testSecret = "test-secret-key-at-least-32-chars-long"
	testTTL    = 7 * 24 * time.Hour
)

var testClaim = domain.AuthClaim{
	Username:  "jsmienk",
	FirstName: "Jeroen",
	Infix:     "",
	LastName:  "Smienk",
}

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, testTTL)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return svc
}

// =============================================================================
// Constructor Tests
// =============================================================================

func TestNewTokenService(t *testing.T) {
	svc := newTestTokenService(t)
	if got := svc.TTL(); got != testTTL {
		t.Errorf("TTL() = %v, want %v", got, testTTL)
	}
}

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short", testTTL); !errors.Is(err, ErrShortSecret) {
		t.Errorf("NewTokenService() error = %v, want ErrShortSecret", err)
	}
}

// =============================================================================
// Issue / Verify Tests
// =============================================================================

func TestIssueAndVerify(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.Issue(testClaim)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token %q is not a compact JWT", token)
	}

	claim, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claim != testClaim {
		t.Errorf("Verify() = %+v, want %+v", claim, testClaim)
	}
}

func TestIssue_ExpiresAfterTTL(t *testing.T) {
	svc := newTestTokenService(t)
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue(testClaim)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		t.Fatalf("ParseUnverified() error = %v", err)
	}
	if got := claims.ExpiresAt.Time; !got.Equal(issuedAt.Add(testTTL)) {
		t.Errorf("ExpiresAt = %v, want %v", got, issuedAt.Add(testTTL))
	}
	if claims.ID == "" {
		t.Error("token has no jti")
	}

	svc.now = func() time.Time { return issuedAt.Add(testTTL - time.Minute) }
	if _, err := svc.Verify(token); err != nil {
		t.Errorf("Verify() before expiry error = %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(testTTL + time.Minute) }
	if _, err := svc.Verify(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("Verify() after expiry error = %v, want ErrTokenExpired", err)
	}
}

func TestVerify_Rejects(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService("another-secret-key-that-is-32-bytes!!", testTTL)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	foreign, err := other.Issue(testClaim)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{AuthClaim: testClaim})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	anonymous, err := noUser.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign anonymous token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"alg none", unsigned},
		{"no username", anonymous},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.token); err == nil {
				t.Errorf("Verify(%s) succeeded, want error", tt.name)
			}
		})
	}
}

func TestVerify_MissingToken(t *testing.T) {
	svc := newTestTokenService(t)
	if _, err := svc.Verify(""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("Verify(\"\") error = %v, want ErrMissingToken", err)
	}
}
