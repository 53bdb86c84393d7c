package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/medchart/internal/medication"
	"github.com/hitoshi/medchart/internal/middleware"
	"github.com/hitoshi/medchart/internal/model"
)

// mockChartService はChartServiceInterfaceのモック。
type mockChartService struct {
	chartFunc func(ctx context.Context, accountID string) (*medication.ChartView, error)
}

func (m *mockChartService) Chart(ctx context.Context, accountID string) (*medication.ChartView, error) {
	return m.chartFunc(ctx, accountID)
}

func TestAccountHandler_Me_Success(t *testing.T) {
	service := &mockChartService{
		chartFunc: func(ctx context.Context, accountID string) (*medication.ChartView, error) {
			if accountID != "account-1" {
				t.Errorf("accountID = %q, want %q", accountID, "account-1")
			}
			return &medication.ChartView{
				Profile: model.AccountProfile{
					ID:        "account-1",
					Email:     "taro@example.com",
					FirstName: "Taro",
					CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
				},
				Medications:   []*model.Medication{sampleMedication()},
				AdherenceRate: 63,
			}, nil
		},
	}
	h := NewAccountHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(middleware.ContextWithAccountID(req.Context(), "account-1"))
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}

	var resp chartResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.User.Email != "taro@example.com" || resp.User.FirstName != "Taro" {
		t.Errorf("unexpected user: %+v", resp.User)
	}
	if len(resp.Medications) != 1 {
		t.Fatalf("medications count = %d, want 1", len(resp.Medications))
	}
	if resp.Medications[0].Medication != "アムロジピン" {
		t.Errorf("medication = %q, want アムロジピン", resp.Medications[0].Medication)
	}
	if resp.AdherenceRate != 63 {
		t.Errorf("adherenceRate = %d, want 63", resp.AdherenceRate)
	}
}

// 記録0件でもmedicationsがnullではなく[]になることを検証
func TestAccountHandler_Me_EmptyChart_ReturnsEmptyArray(t *testing.T) {
	service := &mockChartService{
		chartFunc: func(ctx context.Context, accountID string) (*medication.ChartView, error) {
			return &medication.ChartView{
				Profile:       model.AccountProfile{ID: "account-1", Email: "taro@example.com", FirstName: "Taro"},
				Medications:   nil,
				AdherenceRate: 0,
			}, nil
		},
	}
	h := NewAccountHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(middleware.ContextWithAccountID(req.Context(), "account-1"))
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"medications":[]`) {
		t.Errorf("body should contain empty array, got: %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), `"medications":null`) {
		t.Errorf("medications should not be null: %s", w.Body.String())
	}
}

func TestAccountHandler_Me_NoAccountID_Returns401(t *testing.T) {
	h := NewAccountHandler(&mockChartService{})

	w := httptest.NewRecorder()
	h.Me(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if body := decodeErrorBody(t, w); body.Code != model.ErrCodeUnauthorized {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUnauthorized)
	}
}

func TestAccountHandler_Me_AccountNotFound_Returns404(t *testing.T) {
	service := &mockChartService{
		chartFunc: func(ctx context.Context, accountID string) (*medication.ChartView, error) {
			return nil, model.NewAccountNotFoundError()
		},
	}
	h := NewAccountHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(middleware.ContextWithAccountID(req.Context(), "deleted-account"))
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if body := decodeErrorBody(t, w); body.Code != model.ErrCodeAccountNotFound {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeAccountNotFound)
	}
}
