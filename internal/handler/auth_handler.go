// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/medchart/internal/auth"
	"github.com/hitoshi/medchart/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password, firstName string) (*model.AccountProfile, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	ResetPassword(ctx context.Context, email, currentPassword, newPassword string) error
}

// AuthMetrics は認証系イベントのメトリクス記録インターフェース。
// metrics.MetricsCollectorの部分集合。
type AuthMetrics interface {
	RecordRegistration()
	RecordLoginSuccess()
	RecordLoginFailure()
}

// AuthHandler はアカウント登録・ログイン・パスワード再設定のハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics AuthMetrics
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, metrics AuthMetrics) *AuthHandler {
	return &AuthHandler{
		service: service,
		metrics: metrics,
	}
}

// accountResponse はアカウントの公開情報レスポンス。
type accountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAccountResponse(profile *model.AccountProfile) accountResponse {
	return accountResponse{
		ID:        profile.ID,
		Email:     profile.Email,
		FirstName: profile.FirstName,
		CreatedAt: profile.CreatedAt,
	}
}

// Register はPOST /accountsを処理する。
// 成功時は201でアカウントの公開情報を返す。パスワードハッシュは含まれない。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディ"))
		return
	}

	if err := requireFields(map[string]string{
		"email":     req.Email,
		"password":  req.Password,
		"firstName": req.FirstName,
	}); err != nil {
		handleServiceError(w, err)
		return
	}

	profile, err := h.service.Register(r.Context(), req.Email, req.Password, req.FirstName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordRegistration()

	writeJSONResponse(w, http.StatusCreated, toAccountResponse(profile))
}

// Login はPOST /sessionsを処理する。
// 成功時は200で署名付きベアラートークンと有効期限を返す。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディ"))
		return
	}

	if err := requireFields(map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}); err != nil {
		handleServiceError(w, err)
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeInvalidCredentials {
			h.metrics.RecordLoginFailure()
		}
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordLoginSuccess()

	writeJSONResponse(w, http.StatusOK, struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// ResetPassword はPOST /accounts/password-resetを処理する。
// 現在のパスワードの検証を必須とする。
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email           string `json:"email"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディ"))
		return
	}

	if err := requireFields(map[string]string{
		"email":           req.Email,
		"currentPassword": req.CurrentPassword,
		"newPassword":     req.NewPassword,
	}); err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.CurrentPassword, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{
		Message: "パスワードを更新しました。",
	})
}

// requireFields は必須フィールドの存在を検証する。
// 欠けているフィールド名を列挙したValidationErrorを返す。
func requireFields(fields map[string]string) error {
	// map順序に依存しないよう固定順で検査する
	order := []string{"email", "password", "firstName", "currentPassword", "newPassword"}
	var missing []string
	for _, name := range order {
		value, ok := fields[name]
		if ok && strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return model.NewValidationError(strings.Join(missing, ", "))
	}
	return nil
}
