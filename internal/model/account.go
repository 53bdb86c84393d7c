// Package model はドメインモデルを定義する。
package model

import "time"

// Account は登録済みユーザーを表す。
// PasswordHashはbcryptハッシュであり、平文パスワードは保持しない。
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountProfile はAPIレスポンスに含めてよいアカウントの公開情報。
// パスワードハッシュは含まない。
type AccountProfile struct {
	ID        string
	Email     string
	FirstName string
	CreatedAt time.Time
}

// Profile はアカウントの公開情報を返す。
func (a *Account) Profile() AccountProfile {
	return AccountProfile{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		CreatedAt: a.CreatedAt,
	}
}
