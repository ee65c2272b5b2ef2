package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	ts := TokenService{Secret: []byte("test-secret"), Issuer: "libhub-test", Duration: time.Hour}
	u := &User{ID: "u-1", Username: "reader"}

	token, exp, err := ts.Sign(u)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry %v not in the future", exp)
	}

	claims, err := ts.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u-1" || claims.Username != "reader" {
		t.Fatalf("claims = %+v, want u-1/reader", claims)
	}
	if claims.Issuer != "libhub-test" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signer := TokenService{Secret: []byte("secret-a"), Issuer: "libhub-test", Duration: time.Hour}
	token, _, err := signer.Sign(&User{ID: "u-1", Username: "reader"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	verifier := TokenService{Secret: []byte("secret-b"), Issuer: "libhub-test", Duration: time.Hour}
	if _, err := verifier.Parse(token); err == nil {
		t.Fatal("expected parse failure with the wrong secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	ts := TokenService{Secret: []byte("test-secret"), Issuer: "libhub-test", Duration: -time.Minute}
	token, _, err := ts.Sign(&User{ID: "u-1", Username: "reader"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ts.Parse(token); err == nil {
		t.Fatal("expected parse failure for an expired token")
	}
}
