package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// DBPinger はヘルスチェックに必要なデータベース疎通確認インターフェース。
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックのハンドラー。
type HealthHandler struct {
	db DBPinger
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(db DBPinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check はGET /healthを処理する。
// データベースへ疎通できれば200、できなければ503を返す。
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		slog.Error("health check failed", slog.String("error", err.Error()))
		writeJSONResponse(w, http.StatusServiceUnavailable, struct {
			Status string `json:"status"`
		}{
			Status: "unavailable",
		})
		return
	}

	writeJSONResponse(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{
		Status: "ok",
	})
}
