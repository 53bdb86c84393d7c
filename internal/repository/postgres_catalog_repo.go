package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresCatalogRepo はPostgreSQLを使用した医薬品名カタログリポジトリ。
// 参照コレクションは2系統あり、カラム名が異なる（medicines.name / drug_reference.drug）。
type PostgresCatalogRepo struct {
	db *sql.DB
}

// NewPostgresCatalogRepo はPostgresCatalogRepoを生成する。
func NewPostgresCatalogRepo(db *sql.DB) *PostgresCatalogRepo {
	return &PostgresCatalogRepo{db: db}
}

// ListNames は2系統の参照コレクションの名称を統合して返す。
// UNIONが重複を除去し、ORDER BYが辞書順を保証する。
func (r *PostgresCatalogRepo) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT name FROM medicines
		 UNION
		 SELECT DISTINCT drug FROM drug_reference
		 ORDER BY 1`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan catalog name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog names: %w", err)
	}

	return names, nil
}

// compile-time interface check
var _ CatalogRepository = (*PostgresCatalogRepo)(nil)
