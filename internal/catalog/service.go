// Package catalog は医薬品カタログの参照機能を提供する。
// カタログは参照専用であり、APIからの書き込みはできない。
package catalog

import (
	"context"
	"fmt"

	"github.com/hitoshi/medchart/internal/repository"
)

// Service は医薬品カタログの参照ロジックを提供する。
type Service struct {
	catalogRepo repository.CatalogRepository
}

// NewService はServiceを生成する。
func NewService(catalogRepo repository.CatalogRepository) *Service {
	return &Service{catalogRepo: catalogRepo}
}

// ListMedicineNames は2つのカタログ表を統合した医薬品名の一覧を返す。
// 結果は重複除去・ソート済み。カタログが空の場合は空スライスを返す。
func (s *Service) ListMedicineNames(ctx context.Context) ([]string, error) {
	names, err := s.catalogRepo.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicine names: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
