package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/medchart/internal/model"
)

// pqForeignKeyViolation はPostgreSQLのforeign_key_violationエラーコード。
const pqForeignKeyViolation = "23503"

// PostgresMedicationRepo はPostgreSQLを使用した服薬記録リポジトリ。
// 更新・削除のWHERE句は必ず id と account_id の両方を条件に持つ。
// 記録IDだけが一致しても所有アカウントが異なれば0行更新となり、
// 他アカウントの記録が書き換えられることはない。
type PostgresMedicationRepo struct {
	db *sql.DB
}

// NewPostgresMedicationRepo はPostgresMedicationRepoを生成する。
func NewPostgresMedicationRepo(db *sql.DB) *PostgresMedicationRepo {
	return &PostgresMedicationRepo{db: db}
}

// Create は服薬記録を作成する。
// account_idの外部キー違反（アカウント消失）はErrNotFoundにマッピングする。
func (r *PostgresMedicationRepo) Create(ctx context.Context, med *model.Medication) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO medications
		 (id, account_id, name, dosage, frequency, start_date, end_date,
		  notes, image_url, total_doses, times_taken, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		med.ID, med.AccountID, med.Name, med.Dosage, string(med.Frequency),
		med.StartDate, med.EndDate, med.Notes, med.ImageURL,
		med.TotalDoses, med.TimesTaken, med.CreatedAt, med.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("failed to insert medication: %w", err)
	}

	return nil
}

// Update は(accountID, recordID)が一致する1件を条件付きで更新する。
// created_atとtimes_takenは更新対象外のため、RETURNINGで格納値を読み戻して
// medに反映する。呼び出し側はそのままレスポンスに使える。
func (r *PostgresMedicationRepo) Update(ctx context.Context, med *model.Medication) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE medications
		 SET name = $3, dosage = $4, frequency = $5, start_date = $6, end_date = $7,
		     notes = $8, image_url = $9, total_doses = $10, updated_at = $11
		 WHERE id = $1 AND account_id = $2
		 RETURNING created_at, times_taken`,
		med.ID, med.AccountID, med.Name, med.Dosage, string(med.Frequency),
		med.StartDate, med.EndDate, med.Notes, med.ImageURL,
		med.TotalDoses, med.UpdatedAt,
	).Scan(&med.CreatedAt, &med.TimesTaken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update medication: %w", err)
	}
	return nil
}

// Delete は(accountID, recordID)が一致する1件を行ごと削除する。
// 行を空値で残す論理削除ではなく、実際のDELETEを行う。
func (r *PostgresMedicationRepo) Delete(ctx context.Context, accountID, recordID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM medications WHERE id = $1 AND account_id = $2`,
		recordID, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByAccountID はアカウントの服薬記録を登録順で返す。
func (r *PostgresMedicationRepo) ListByAccountID(ctx context.Context, accountID string) ([]*model.Medication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, name, dosage, frequency, start_date, end_date,
		        notes, image_url, total_doses, times_taken, created_at, updated_at
		 FROM medications
		 WHERE account_id = $1
		 ORDER BY created_at, id`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	defer rows.Close()

	var meds []*model.Medication
	for rows.Next() {
		med := &model.Medication{}
		var frequency string
		if err := rows.Scan(
			&med.ID, &med.AccountID, &med.Name, &med.Dosage, &frequency,
			&med.StartDate, &med.EndDate, &med.Notes, &med.ImageURL,
			&med.TotalDoses, &med.TimesTaken, &med.CreatedAt, &med.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		med.Frequency = model.Frequency(frequency)
		meds = append(meds, med)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medications: %w", err)
	}

	return meds, nil
}

// compile-time interface check
var _ MedicationRepository = (*PostgresMedicationRepo)(nil)
