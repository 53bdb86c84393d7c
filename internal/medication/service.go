// Package medication は服薬記録のCRUDと服薬回数・遵守率の導出を提供する。
package medication

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/medchart/internal/model"
	"github.com/hitoshi/medchart/internal/repository"
)

// ImageShortener は外部の短縮サービスで画像URLを圧縮するインターフェース。
type ImageShortener interface {
	// Shorten はURLの短縮形を返す。失敗時はエラーを返す。
	Shorten(ctx context.Context, rawURL string) (string, error)
}

// TextSanitizer は自由入力テキストからマークアップを除去するインターフェース。
type TextSanitizer interface {
	Sanitize(raw string) string
}

// FallbackRecorder はURL短縮のフォールバック発生を記録するインターフェース。
type FallbackRecorder interface {
	RecordShortenerFallback()
}

// Service は服薬記録に関するビジネスロジックを提供する。
// すべての操作は検証済みのアカウントIDを前提とし、
// 記録の更新・削除は必ずアカウントIDと記録IDの両方でスコープする。
type Service struct {
	medRepo     repository.MedicationRepository
	accountRepo repository.AccountRepository
	shortener   ImageShortener
	sanitizer   TextSanitizer
	fallbacks   FallbackRecorder
}

// NewService はServiceを生成する。
func NewService(
	medRepo repository.MedicationRepository,
	accountRepo repository.AccountRepository,
	shortener ImageShortener,
	sanitizer TextSanitizer,
	fallbacks FallbackRecorder,
) *Service {
	return &Service{
		medRepo:     medRepo,
		accountRepo: accountRepo,
		shortener:   shortener,
		sanitizer:   sanitizer,
		fallbacks:   fallbacks,
	}
}

// RecordInput は服薬記録の作成・更新の入力。
type RecordInput struct {
	Name      string
	Dosage    string
	Frequency string
	StartDate time.Time
	EndDate   time.Time
	Notes     string
	ImageURL  string
}

// validate は必須項目の存在を検証する。
// 必須: name, frequency, startDate, endDate。dosage/notes/imageは任意。
func (in *RecordInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Frequency) == "" {
		missing = append(missing, "frequency")
	}
	if in.StartDate.IsZero() {
		missing = append(missing, "startDate")
	}
	if in.EndDate.IsZero() {
		missing = append(missing, "endDate")
	}
	if len(missing) > 0 {
		return model.NewValidationError(strings.Join(missing, ", "))
	}
	return nil
}

// ChartView はアカウントのプロフィールとチャート全体のビュー。
type ChartView struct {
	Profile       model.AccountProfile
	Medications   []*model.Medication
	AdherenceRate int
}

// Create は新しい服薬記録をアカウントのチャートに追加する。
// 記録IDの生成・服薬回数の導出・画像URLの短縮を行い、
// createdAt = updatedAt = now を設定する。
// アカウントが存在しない場合はAccountNotFoundエラーを返す。
func (s *Service) Create(ctx context.Context, accountID string, input RecordInput) (*model.Medication, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	med := &model.Medication{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		Name:       s.sanitizer.Sanitize(input.Name),
		Dosage:     s.sanitizer.Sanitize(input.Dosage),
		Frequency:  model.Frequency(input.Frequency),
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Notes:      s.sanitizer.Sanitize(input.Notes),
		ImageURL:   s.resolveImageURL(ctx, input.ImageURL),
		TotalDoses: TotalDoses(model.Frequency(input.Frequency), input.StartDate, input.EndDate),
		TimesTaken: 0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.medRepo.Create(ctx, med); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewAccountNotFoundError()
		}
		return nil, fmt.Errorf("failed to create medication: %w", err)
	}

	slog.Info("medication created",
		slog.String("account_id", accountID),
		slog.String("record_id", med.ID),
	)

	return med, nil
}

// Update は(accountID, recordID)でスコープされた1件を更新する。
// 服薬回数と画像URLを再計算し、updatedAtを刷新する。
// createdAtとtimesTakenは格納値のまま返る（更新対象外）。
// 他アカウントの記録IDを指定した場合も単にRecordNotFoundとなり、
// IDが別アカウント配下に存在するかどうかは漏れない。
func (s *Service) Update(ctx context.Context, accountID, recordID string, input RecordInput) (*model.Medication, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := validateRecordID(recordID); err != nil {
		return nil, err
	}

	med := &model.Medication{
		ID:         recordID,
		AccountID:  accountID,
		Name:       s.sanitizer.Sanitize(input.Name),
		Dosage:     s.sanitizer.Sanitize(input.Dosage),
		Frequency:  model.Frequency(input.Frequency),
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Notes:      s.sanitizer.Sanitize(input.Notes),
		ImageURL:   s.resolveImageURL(ctx, input.ImageURL),
		TotalDoses: TotalDoses(model.Frequency(input.Frequency), input.StartDate, input.EndDate),
		UpdatedAt:  time.Now(),
	}

	if err := s.medRepo.Update(ctx, med); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewRecordNotFoundError()
		}
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}

	slog.Info("medication updated",
		slog.String("account_id", accountID),
		slog.String("record_id", recordID),
	)

	return med, nil
}

// Delete は(accountID, recordID)でスコープされた1件をチャートから削除する。
func (s *Service) Delete(ctx context.Context, accountID, recordID string) error {
	if recordID == "" {
		return model.NewValidationError("id")
	}
	if err := validateRecordID(recordID); err != nil {
		return err
	}

	if err := s.medRepo.Delete(ctx, accountID, recordID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewRecordNotFoundError()
		}
		return fmt.Errorf("failed to delete medication: %w", err)
	}

	slog.Info("medication deleted",
		slog.String("account_id", accountID),
		slog.String("record_id", recordID),
	)

	return nil
}

// Chart はアカウントのプロフィールと服薬記録一覧・遵守率を返す。
func (s *Service) Chart(ctx context.Context, accountID string) (*ChartView, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return nil, model.NewAccountNotFoundError()
	}

	meds, err := s.medRepo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}

	return &ChartView{
		Profile:       account.Profile(),
		Medications:   meds,
		AdherenceRate: AdherenceRate(meds),
	}, nil
}

// validateRecordID は記録IDがUUID形式であることを検証する。
// 記録IDはすべて生成時にUUIDが割り当てられるため、形式不正なIDは
// ストアに到達させずRecordNotFoundとして扱う（uuid型カラムへの
// 問い合わせがストアエラーになるのを防ぐ）。存在有無は漏らさない。
func validateRecordID(recordID string) error {
	if _, err := uuid.Parse(recordID); err != nil {
		return model.NewRecordNotFoundError()
	}
	return nil
}

// resolveImageURL は画像URLを短縮サービスで圧縮する。
// 短縮サービスの失敗でリクエスト全体を失敗させてはならないため、
// エラー時は元のURLにフォールバックする。空URLはそのまま返す。
func (s *Service) resolveImageURL(ctx context.Context, rawURL string) string {
	if rawURL == "" {
		return ""
	}

	short, err := s.shortener.Shorten(ctx, rawURL)
	if err != nil {
		slog.Warn("image URL shortening failed, falling back to original",
			slog.String("error", err.Error()),
		)
		s.fallbacks.RecordShortenerFallback()
		return rawURL
	}
	return short
}
