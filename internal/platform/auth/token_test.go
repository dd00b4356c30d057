package auth

import (
	"errors"
	"testing"
	"time"
)

func testCodec() *Codec {
	return NewCodec([]byte("access-secret"), []byte("refresh-secret"), time.Hour, 7*24*time.Hour)
}

func TestIssueAndVerifyAccess(t *testing.T) {
	codec := testCodec()

	pair, err := codec.Issue("user-1", "tenant-1", []string{"DOCTOR"}, []string{"PATIENT:READ"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := codec.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", claims.Subject)
	}
	if claims.TenantID != "tenant-1" {
		t.Errorf("TenantID = %q, want tenant-1", claims.TenantID)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "DOCTOR" {
		t.Errorf("Roles = %v, want [DOCTOR]", claims.Roles)
	}
	if len(claims.Permissions) != 1 || claims.Permissions[0] != "PATIENT:READ" {
		t.Errorf("Permissions = %v, want [PATIENT:READ]", claims.Permissions)
	}
}

func TestVerifyRefreshCarriesIdentityOnly(t *testing.T) {
	codec := testCodec()

	pair, err := codec.Issue("user-1", "tenant-1", []string{"DOCTOR"}, []string{"PATIENT:READ"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := codec.VerifyRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
	if claims.Subject != "user-1" || claims.TenantID != "tenant-1" {
		t.Errorf("claims = %q/%q, want user-1/tenant-1", claims.Subject, claims.TenantID)
	}
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	codec := testCodec()

	pair, err := codec.Issue("user-1", "tenant-1", nil, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := codec.VerifyAccess(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh token passed access verification: %v", err)
	}
	if _, err := codec.VerifyRefresh(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token passed refresh verification: %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	pair, err := testCodec().Issue("user-1", "tenant-1", nil, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := NewCodec([]byte("different"), []byte("also-different"), time.Hour, time.Hour)
	if _, err := other.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := other.VerifyRefresh(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	codec := NewCodec([]byte("a"), []byte("r"), -time.Minute, -time.Minute)

	pair, err := codec.Issue("user-1", "tenant-1", nil, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := codec.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired access token, got %v", err)
	}
	if _, err := codec.VerifyRefresh(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired refresh token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec := testCodec()
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := codec.VerifyAccess(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifyAccess(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestIssuedPairsAreDistinct(t *testing.T) {
	codec := testCodec()

	first, err := codec.Issue("user-1", "tenant-1", nil, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	second, err := codec.Issue("user-1", "tenant-1", nil, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if first.RefreshToken == second.RefreshToken {
		t.Error("two refresh tokens issued within the same second collide")
	}
	if first.AccessToken == second.AccessToken {
		t.Error("two access tokens issued within the same second collide")
	}
}
