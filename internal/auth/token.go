package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims はベアラートークンのJWTクレーム。
// アカウントIDと有効期限を署名付きで束縛する。
type tokenClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
}

// TokenManager は署名付きベアラートークンの発行と検証を行う。
// 署名鍵は起動時に設定から注入し、プロセス内で共有する。
// 生のアカウントIDをトークンとして受理するレガシーモードはサポートしない
// （署名なし・期限なしでID偽造が可能なため）。
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager はTokenManagerを生成する。
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Issue は指定アカウントIDを束縛したHS256署名付きトークンを発行する。
// 有効期限は発行時刻からexpiry後。
func (m *TokenManager) Issue(accountID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.expiry)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		AccountID: accountID,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate はトークンを検証し、束縛されたアカウントIDを返す。
// 形式不正・署名不一致・期限切れ・署名方式の相違はすべてエラーとなる。
func (m *TokenManager) Validate(tokenString string) (string, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("token is invalid")
	}
	if claims.AccountID == "" {
		return "", fmt.Errorf("token has no account ID")
	}

	return claims.AccountID, nil
}
