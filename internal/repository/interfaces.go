// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/medchart/internal/model"
)

// ErrDuplicateEmail はメールアドレスのユニーク制約違反を表す。
// 既存アカウントを変更せずに挿入が失敗した場合に返される。
var ErrDuplicateEmail = errors.New("email already registered")

// ErrNotFound はスコープ付き検索・更新・削除が1件も一致しなかったことを表す。
// 対象が存在しないのか他アカウントに属するのかは区別しない。
var ErrNotFound = errors.New("record not found")

// AccountRepository はアカウントデータの永続化インターフェース。
// すべての操作は単一行に対して行われ、ストアのレベルでアトミックである。
type AccountRepository interface {
	// FindByEmail は指定メールアドレスのアカウントを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Account, error)

	// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Account, error)

	// Create はアカウントを作成する。
	// メールアドレスが衝突する場合はErrDuplicateEmailを返し、既存行は変更しない。
	Create(ctx context.Context, account *model.Account) error

	// UpdatePasswordHash はパスワードハッシュを上書きしupdated_atを刷新する。
	// 対象が存在しない場合はErrNotFoundを返す。
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

// MedicationRepository は服薬記録の永続化インターフェース。
// 更新・削除は必ずアカウントIDと記録IDの両方でスコープする。
type MedicationRepository interface {
	// Create は服薬記録を作成する。
	// 親アカウントが存在しない場合はErrNotFoundを返す。
	Create(ctx context.Context, med *model.Medication) error

	// Update は(accountID, recordID)の両方が一致する1件を更新する。
	// 一致しない場合はErrNotFoundを返す。他アカウントの記録には決して適用されない。
	// 成功時は更新対象外の格納値（CreatedAt, TimesTaken）をmedに読み戻す。
	Update(ctx context.Context, med *model.Medication) error

	// Delete は(accountID, recordID)の両方が一致する1件を実際に削除する。
	// 一致しない場合はErrNotFoundを返す。
	Delete(ctx context.Context, accountID, recordID string) error

	// ListByAccountID はアカウントの服薬記録を登録順で返す。
	ListByAccountID(ctx context.Context, accountID string) ([]*model.Medication, error)
}

// CatalogRepository は医薬品名参照コレクションの読み取り専用インターフェース。
type CatalogRepository interface {
	// ListNames は2つの参照コレクションの名称を統合し、
	// 重複を除去して辞書順で返す。
	ListNames(ctx context.Context) ([]string, error)
}
