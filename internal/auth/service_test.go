package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/medchart/internal/model"
	"github.com/hitoshi/medchart/internal/repository"
)

// --- モック定義 ---

type mockAccountRepo struct {
	findByEmailFn        func(ctx context.Context, email string) (*model.Account, error)
	findByIDFn           func(ctx context.Context, id string) (*model.Account, error)
	createFn             func(ctx context.Context, account *model.Account) error
	updatePasswordHashFn func(ctx context.Context, id, passwordHash string) error
}

func (m *mockAccountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockAccountRepo) Create(ctx context.Context, account *model.Account) error {
	if m.createFn != nil {
		return m.createFn(ctx, account)
	}
	return nil
}

func (m *mockAccountRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if m.updatePasswordHashFn != nil {
		return m.updatePasswordHashFn(ctx, id, passwordHash)
	}
	return nil
}

// newTestService はテスト用のServiceを生成する。
// bcryptコストはテスト高速化のため最小値を使う。
func newTestService(repo repository.AccountRepository) *Service {
	tokens := NewTokenManager("test-secret", time.Hour)
	return NewService(repo, tokens, ServiceConfig{BcryptCost: bcrypt.MinCost})
}

// --- Register ---

func TestService_Register_Success(t *testing.T) {
	var created *model.Account
	repo := &mockAccountRepo{
		createFn: func(ctx context.Context, account *model.Account) error {
			created = account
			return nil
		},
	}
	svc := newTestService(repo)

	profile, err := svc.Register(context.Background(), "taro@example.com", "password123", "太郎")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if profile.Email != "taro@example.com" {
		t.Errorf("Email = %q, want %q", profile.Email, "taro@example.com")
	}
	if profile.FirstName != "太郎" {
		t.Errorf("FirstName = %q, want %q", profile.FirstName, "太郎")
	}
	if profile.ID == "" {
		t.Error("expected generated account ID")
	}

	if created == nil {
		t.Fatal("expected account to be persisted")
	}
	// 平文パスワードは保存されないこと
	if created.PasswordHash == "password123" {
		t.Error("password stored as plaintext")
	}
	// 保存されたハッシュが元のパスワードを検証できること
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("stored hash does not verify original password: %v", err)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	repo := &mockAccountRepo{
		createFn: func(ctx context.Context, account *model.Account) error {
			return repository.ErrDuplicateEmail
		},
	}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), "taro@example.com", "password123", "太郎")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeDuplicateAccount {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeDuplicateAccount)
	}
}

func TestService_Register_StoreFault_Propagates(t *testing.T) {
	repo := &mockAccountRepo{
		createFn: func(ctx context.Context, account *model.Account) error {
			return errors.New("connection refused")
		},
	}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), "taro@example.com", "password123", "太郎")
	if err == nil {
		t.Fatal("expected error")
	}
	// ストア障害はAPIErrorに変換せずそのまま伝播させる（ハンドラ境界で500に変換）
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("store fault should not be an APIError, got %v", apiErr)
	}
}

// --- Login ---

func hashedAccount(t *testing.T, password string) *model.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return &model.Account{
		ID:           "account-123",
		Email:        "taro@example.com",
		PasswordHash: string(hash),
		FirstName:    "太郎",
	}
}

func TestService_Login_Success_IssuesToken(t *testing.T) {
	account := hashedAccount(t, "password123")
	repo := &mockAccountRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.Account, error) {
			return account, nil
		},
	}
	svc := newTestService(repo)

	session, err := svc.Login(context.Background(), "taro@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if session.Token == "" {
		t.Fatal("expected non-empty token")
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Errorf("ExpiresAt = %v, want future time", session.ExpiresAt)
	}

	// 発行されたトークンが検証でき、アカウントIDを束縛していること
	accountID, err := svc.ValidateToken(session.Token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if accountID != "account-123" {
		t.Errorf("accountID = %q, want %q", accountID, "account-123")
	}
}

// 未登録メールとパスワード不一致が外部から区別できないことを検証
func TestService_Login_Failures_Indistinguishable(t *testing.T) {
	account := hashedAccount(t, "password123")

	tests := []struct {
		name     string
		repo     *mockAccountRepo
		password string
	}{
		{
			name: "未登録メールアドレス",
			repo: &mockAccountRepo{
				findByEmailFn: func(ctx context.Context, email string) (*model.Account, error) {
					return nil, nil
				},
			},
			password: "password123",
		},
		{
			name: "パスワード不一致",
			repo: &mockAccountRepo{
				findByEmailFn: func(ctx context.Context, email string) (*model.Account, error) {
					return account, nil
				},
			},
			password: "wrong-password",
		},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.repo)

			_, err := svc.Login(context.Background(), "taro@example.com", tt.password)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Code != model.ErrCodeInvalidCredentials {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredentials)
			}
			messages = append(messages, apiErr.Message)
		})
	}

	if len(messages) == 2 && messages[0] != messages[1] {
		t.Errorf("エラーメッセージが一致しません: %q vs %q", messages[0], messages[1])
	}
}

func TestService_Login_NeverMutatesStore(t *testing.T) {
	account := hashedAccount(t, "password123")
	mutated := false
	repo := &mockAccountRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.Account, error) {
			return account, nil
		},
		createFn: func(ctx context.Context, account *model.Account) error {
			mutated = true
			return nil
		},
		updatePasswordHashFn: func(ctx context.Context, id, passwordHash string) error {
			mutated = true
			return nil
		},
	}
	svc := newTestService(repo)

	if _, err := svc.Login(context.Background(), "taro@example.com", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if mutated {
		t.Error("Login mutated the store")
	}
}

// --- ValidateToken ---

func TestService_ValidateToken_InvalidToken_ReturnsUnauthorized(t *testing.T) {
	svc := newTestService(&mockAccountRepo{})

	_, err := svc.ValidateToken("garbage")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUnauthorized {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeUnauthorized)
	}
}

// --- ResetPassword ---

func TestService_ResetPassword_Success(t *testing.T) {
	account := hashedAccount(t, "old-password")
	var newHash string
	repo := &mockAccountRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.Account, error) {
			return account, nil
		},
		updatePasswordHashFn: func(ctx context.Context, id, passwordHash string) error {
			if id != account.ID {
				t.Errorf("id = %q, want %q", id, account.ID)
			}
			newHash = passwordHash
			return nil
		},
	}
	svc := newTestService(repo)

	err := svc.ResetPassword(context.Background(), "taro@example.com", "old-password", "new-password")
	if err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	if newHash == "" {
		t.Fatal("expected password hash to be updated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new-password")); err != nil {
		t.Errorf("new hash does not verify new password: %v", err)
	}
}

func TestService_ResetPassword_UnknownEmail_NotFound(t *testing.T) {
	repo := &mockAccountRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.Account, error) {
			return nil, nil
		},
	}
	svc := newTestService(repo)

	err := svc.ResetPassword(context.Background(), "nobody@example.com", "old", "new")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeAccountNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeAccountNotFound)
	}
}

// 現在のパスワードが一致しない場合は再設定を拒否することを検証
// （メールアドレスだけでの再設定はアカウント乗っ取りを許すため不許可）
func TestService_ResetPassword_WrongCurrentPassword_Rejected(t *testing.T) {
	account := hashedAccount(t, "old-password")
	mutated := false
	repo := &mockAccountRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.Account, error) {
			return account, nil
		},
		updatePasswordHashFn: func(ctx context.Context, id, passwordHash string) error {
			mutated = true
			return nil
		},
	}
	svc := newTestService(repo)

	err := svc.ResetPassword(context.Background(), "taro@example.com", "wrong-password", "new-password")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredentials)
	}
	if mutated {
		t.Error("password hash was updated despite wrong current password")
	}
}
