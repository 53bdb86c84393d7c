package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/medchart/internal/metrics"
	"github.com/hitoshi/medchart/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenValidator    middleware.TokenValidator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	MetricsCollector  metrics.MetricsCollector
	MetricsHandler    http.Handler

	// サービス
	AuthService       AuthServiceInterface
	ChartService      ChartServiceInterface
	MedicationService MedicationServiceInterface
	CatalogService    CatalogServiceInterface

	// ヘルスチェック
	DB DBPinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → Recovery → SecurityHeaders → Logging → Metrics
//	→（認証必須グループのみ）BearerAuth → RateLimit(General)
//
// 登録・ログイン・カタログ・ヘルスチェック・メトリクスは認証グループの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.MetricsCollector))

	authHandler := NewAuthHandler(deps.AuthService, deps.MetricsCollector)
	accountHandler := NewAccountHandler(deps.ChartService)
	medicationHandler := NewMedicationHandler(deps.MedicationService, deps.MetricsCollector)
	catalogHandler := NewCatalogHandler(deps.CatalogService)
	healthHandler := NewHealthHandler(deps.DB)

	// --- 認証不要のルート ---

	r.Post("/accounts", authHandler.Register)
	r.Post("/accounts/password-reset", authHandler.ResetPassword)
	r.Post("/sessions", authHandler.Login)
	r.Get("/catalog/medicines", catalogHandler.ListMedicines)
	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", deps.MetricsHandler)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: BearerAuth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenValidator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// プロフィールとチャート
		r.Get("/me", accountHandler.Me)

		// 服薬記録管理
		r.Route("/me/medications", func(r chi.Router) {
			// POST /me/medications - 記録作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.RecordCreationMiddleware()).Post("/", medicationHandler.Create)

			r.Put("/", medicationHandler.Update)
			r.Delete("/", medicationHandler.Delete)
		})
	})

	return r
}
