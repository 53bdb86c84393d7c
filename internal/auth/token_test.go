package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenManager_IssueAndValidate_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := m.Issue("account-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	// 有効期限はおよそ1時間後であること
	want := time.Now().Add(time.Hour)
	if expiresAt.Before(want.Add(-time.Minute)) || expiresAt.After(want.Add(time.Minute)) {
		t.Errorf("expiresAt = %v, want ~%v", expiresAt, want)
	}

	accountID, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if accountID != "account-123" {
		t.Errorf("accountID = %q, want %q", accountID, "account-123")
	}
}

func TestTokenManager_Validate_MalformedToken(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "空文字列", token: ""},
		{name: "JWT形式でない文字列", token: "not-a-jwt"},
		{name: "生のアカウントID（レガシーモードは不許可）", token: "650f1b2c3d4e5f6a7b8c9d0e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); err == nil {
				t.Error("expected error for malformed token, got nil")
			}
		})
	}
}

func TestTokenManager_Validate_TamperedSignature(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, _, err := m.Issue("account-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// 署名部分を改ざんする
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token format: %q", token)
	}
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	if _, err := m.Validate(tampered); err == nil {
		t.Error("expected error for tampered token, got nil")
	}
}

func TestTokenManager_Validate_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, _, err := issuer.Issue("account-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifier.Validate(token); err == nil {
		t.Error("expected error for token signed with different secret, got nil")
	}
}

func TestTokenManager_Validate_ExpiredToken(t *testing.T) {
	// 負の有効期限で既に期限切れのトークンを発行する
	m := NewTokenManager("test-secret", -time.Minute)

	token, _, err := m.Issue("account-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := m.Validate(token); err == nil {
		t.Error("expected error for expired token, got nil")
	}
}

func TestTokenManager_Validate_WrongSigningMethod(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	// alg=noneのトークンは拒否されること
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		AccountID: "account-123",
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build none-alg token: %v", err)
	}

	if _, err := m.Validate(token); err == nil {
		t.Error("expected error for none-alg token, got nil")
	}
}

func TestTokenManager_Validate_MissingAccountID(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	// アカウントIDを持たない署名済みトークン
	empty := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := empty.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to build token: %v", err)
	}

	if _, err := m.Validate(token); err == nil {
		t.Error("expected error for token without account ID, got nil")
	}
}
