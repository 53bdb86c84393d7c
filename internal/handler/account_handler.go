package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/medchart/internal/medication"
	"github.com/hitoshi/medchart/internal/middleware"
	"github.com/hitoshi/medchart/internal/model"
)

// ChartServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type ChartServiceInterface interface {
	Chart(ctx context.Context, accountID string) (*medication.ChartView, error)
}

// AccountHandler は認証済みアカウントのプロフィールとチャートを返すハンドラー。
type AccountHandler struct {
	service ChartServiceInterface
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service ChartServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

// chartResponse はGET /meのレスポンスボディ。
type chartResponse struct {
	User          accountResponse      `json:"user"`
	Medications   []medicationResponse `json:"medications"`
	AdherenceRate int                  `json:"adherenceRate"`
}

// Me はGET /meを処理する。
// 認証済みアカウントのプロフィール・服薬記録一覧・遵守率を返す。
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	view, err := h.service.Chart(r.Context(), accountID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 記録0件でもJSONでは[]を返す（nullにしない）
	meds := make([]medicationResponse, 0, len(view.Medications))
	for _, med := range view.Medications {
		meds = append(meds, toMedicationResponse(med))
	}

	writeJSONResponse(w, http.StatusOK, chartResponse{
		User:          toAccountResponse(&view.Profile),
		Medications:   meds,
		AdherenceRate: view.AdherenceRate,
	})
}
