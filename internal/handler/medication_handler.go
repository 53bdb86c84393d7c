package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/medchart/internal/medication"
	"github.com/hitoshi/medchart/internal/middleware"
	"github.com/hitoshi/medchart/internal/model"
)

// MedicationServiceInterface は服薬記録ハンドラーが必要とするサービスインターフェース。
type MedicationServiceInterface interface {
	Create(ctx context.Context, accountID string, input medication.RecordInput) (*model.Medication, error)
	Update(ctx context.Context, accountID, recordID string, input medication.RecordInput) (*model.Medication, error)
	Delete(ctx context.Context, accountID, recordID string) error
}

// MedicationMetrics は服薬記録の変更イベントのメトリクス記録インターフェース。
// metrics.MetricsCollectorの部分集合。
type MedicationMetrics interface {
	RecordRecordCreated()
	RecordRecordUpdated()
	RecordRecordDeleted()
}

// MedicationHandler は服薬記録のCRUDハンドラー。
type MedicationHandler struct {
	service MedicationServiceInterface
	metrics MedicationMetrics
}

// NewMedicationHandler はMedicationHandlerを生成する。
func NewMedicationHandler(service MedicationServiceInterface, metrics MedicationMetrics) *MedicationHandler {
	return &MedicationHandler{
		service: service,
		metrics: metrics,
	}
}

// wireDateFormat は服薬期間の日付のワイヤーフォーマット。
const wireDateFormat = "2006-01-02"

// durationResponse は服薬期間のワイヤー表現。
type durationResponse struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// medicationResponse は服薬記録1件のワイヤー表現。
// クライアントはこのネスト構造に依存しているため変更しないこと。
type medicationResponse struct {
	ID         string           `json:"id"`
	Medication string           `json:"medication"`
	Dosage     string           `json:"dosage"`
	Frequency  string           `json:"frequency"`
	Duration   durationResponse `json:"duration"`
	Notes      string           `json:"notes"`
	ImageURL   string           `json:"imageUrl"`
	TotalDoses int              `json:"totalDoses"`
	TimesTaken int              `json:"timesTaken"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

func toMedicationResponse(med *model.Medication) medicationResponse {
	return medicationResponse{
		ID:         med.ID,
		Medication: med.Name,
		Dosage:     med.Dosage,
		Frequency:  string(med.Frequency),
		Duration: durationResponse{
			StartDate: med.StartDate.Format(wireDateFormat),
			EndDate:   med.EndDate.Format(wireDateFormat),
		},
		Notes:      med.Notes,
		ImageURL:   med.ImageURL,
		TotalDoses: med.TotalDoses,
		TimesTaken: med.TimesTaken,
		CreatedAt:  med.CreatedAt,
		UpdatedAt:  med.UpdatedAt,
	}
}

// medicationRequest は服薬記録の作成・更新リクエストボディ。
// IDは更新時のみ必須。
type medicationRequest struct {
	ID         string `json:"id"`
	Medication string `json:"medication"`
	Dosage     string `json:"dosage"`
	Frequency  string `json:"frequency"`
	Duration   struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	} `json:"duration"`
	Notes    string `json:"notes"`
	ImageURL string `json:"imageUrl"`
}

// toRecordInput はリクエストボディをサービス層の入力に変換する。
// 日付はYYYY-MM-DD形式。解析失敗時はゼロ値のままとなり、
// サービス層の必須項目検証でValidationErrorになる。
func (req *medicationRequest) toRecordInput() medication.RecordInput {
	return medication.RecordInput{
		Name:      req.Medication,
		Dosage:    req.Dosage,
		Frequency: req.Frequency,
		StartDate: parseWireDate(req.Duration.StartDate),
		EndDate:   parseWireDate(req.Duration.EndDate),
		Notes:     req.Notes,
		ImageURL:  req.ImageURL,
	}
}

func parseWireDate(value string) time.Time {
	t, err := time.Parse(wireDateFormat, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Create はPOST /me/medicationsを処理する。
// 成功時は201で作成された記録（導出済みのtotalDosesを含む）を返す。
func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディ"))
		return
	}

	med, err := h.service.Create(r.Context(), accountID, req.toRecordInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordRecordCreated()

	writeJSONResponse(w, http.StatusCreated, toMedicationResponse(med))
}

// Update はPUT /me/medicationsを処理する。
// 記録IDはリクエストボディのidで指定する。成功時は200で更新後の記録を返す。
func (h *MedicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディ"))
		return
	}
	if req.ID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("id"))
		return
	}

	med, err := h.service.Update(r.Context(), accountID, req.ID, req.toRecordInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordRecordUpdated()

	writeJSONResponse(w, http.StatusOK, toMedicationResponse(med))
}

// Delete はDELETE /me/medications?id=を処理する。
// 記録IDはクエリパラメータのidで指定する。
func (h *MedicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	recordID := r.URL.Query().Get("id")

	if err := h.service.Delete(r.Context(), accountID, recordID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordRecordDeleted()

	writeJSONResponse(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{
		Message: "服薬記録を削除しました。",
	})
}
