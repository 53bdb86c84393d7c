// Package auth はアカウント登録・ログイン・パスワード再設定と
// ベアラートークンの発行・検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/medchart/internal/model"
	"github.com/hitoshi/medchart/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int // bcryptのコストファクタ（既定10）
}

// Service は認証に関するビジネスロジックを提供する。
// ログインはストアを読むだけで状態を変更しない。
// 状態を変更するのはRegisterとResetPasswordのみ。
type Service struct {
	accountRepo repository.AccountRepository
	tokens      *TokenManager
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(accountRepo repository.AccountRepository, tokens *TokenManager, config ServiceConfig) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = 10
	}
	return &Service{
		accountRepo: accountRepo,
		tokens:      tokens,
		config:      config,
	}
}

// Session は発行済みベアラートークンを表す。
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Register は新規アカウントを登録する。
// メールアドレスが既に登録済みの場合はDuplicateAccountエラーを返し、
// 既存アカウントは変更しない。返り値にパスワードハッシュは含まれない。
func (s *Service) Register(ctx context.Context, email, password, firstName string) (*model.AccountProfile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &model.Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewDuplicateAccountError()
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("account registered",
		slog.String("account_id", account.ID),
	)

	profile := account.Profile()
	return &profile, nil
}

// Login は認証情報を検証し、署名付きベアラートークンを発行する。
// メールアドレス未登録とパスワード不一致は外部から区別できない
// 同一のエラーを返す（アカウント列挙防止）。ストアは変更しない。
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	token, expiresAt, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("login succeeded",
		slog.String("account_id", account.ID),
	)

	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateToken はベアラートークンを検証し、束縛されたアカウントIDを返す。
// 形式不正・署名不一致・期限切れはすべてUnauthorizedエラーとなる。
func (s *Service) ValidateToken(tokenString string) (string, error) {
	accountID, err := s.tokens.Validate(tokenString)
	if err != nil {
		return "", model.NewUnauthorizedError()
	}
	return accountID, nil
}

// ResetPassword はパスワードを再設定する。
// アカウント乗っ取り対策として現在のパスワードの検証を必須とする
// （メールアドレスと新パスワードのみでの再設定は許可しない）。
// 発行済みトークンは失効しない（有効期限まで有効のまま）。
func (s *Service) ResetPassword(ctx context.Context, email, currentPassword, newPassword string) error {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return model.NewAccountNotFoundError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)); err != nil {
		return model.NewInvalidCredentialsError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accountRepo.UpdatePasswordHash(ctx, account.ID, string(hash)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewAccountNotFoundError()
		}
		return fmt.Errorf("failed to update password hash: %w", err)
	}

	slog.Info("password reset",
		slog.String("account_id", account.ID),
	)

	return nil
}
