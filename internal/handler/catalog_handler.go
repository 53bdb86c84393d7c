package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// CatalogServiceInterface はカタログハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	ListMedicineNames(ctx context.Context) ([]string, error)
}

// CatalogHandler は薬剤名カタログの参照ハンドラー。認証不要。
type CatalogHandler struct {
	service CatalogServiceInterface
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(service CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListMedicines はGET /catalog/medicinesを処理する。
// 既知の薬剤名を重複なし・辞書順で返す。
func (h *CatalogHandler) ListMedicines(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.ListMedicineNames(r.Context())
	if err != nil {
		slog.Error("failed to list medicine names", slog.String("error", err.Error()))
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, struct {
		Medicines []string `json:"medicines"`
	}{
		Medicines: names,
	})
}
