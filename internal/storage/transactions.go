package storage

import (
	"context"
	"fmt"

	"fondi/internal/core"
)

const transactionColumns = `id, project_id, date, type, amount_cents,
	category_id, supplier_id, notes, is_generated, recurring_template_id,
	receipt_ref`

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions
			(project_id, date, type, amount_cents, category_id, supplier_id,
			 notes, is_generated, recurring_template_id, receipt_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ProjectID, tx.Date.String(), string(tx.Type), tx.Amount.Cents,
		tx.CategoryID, tx.SupplierID, tx.Notes, tx.Generated, tx.TemplateID,
		tx.ReceiptRef)
	if err != nil {
		// The partial unique index rejects a second generated transaction
		// for the same template and month.
		if isUniqueViolation(err) {
			return core.Transaction{}, &core.ConflictError{
				Reason: fmt.Sprintf("generated transaction for template %d in %s already exists",
					tx.TemplateID, tx.Date.String()[:7]),
			}
		}
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	tx.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, notFoundOr(err, "transaction", id)
	}
	return tx, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireAffected(res, "transaction", id)
}

func (r *SQLiteRepository) ListProjectTransactions(ctx context.Context, projectID int64) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE project_id = ? ORDER BY date, id`,
		projectID)
}

func (r *SQLiteRepository) ListTransactionsInRange(ctx context.Context, projectID int64, from, to core.Date) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE project_id = ? AND date >= ? AND date <= ?
		 ORDER BY date, id`,
		projectID, from.String(), to.String())
}

func (r *SQLiteRepository) CountGenerated(ctx context.Context, templateID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE recurring_template_id = ? AND is_generated = 1`,
		templateID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count generated: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) HasGeneratedForMonth(ctx context.Context, templateID int64, year, month int) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions
		 WHERE recurring_template_id = ? AND is_generated = 1 AND substr(date, 1, 7) = ?`,
		templateID, fmt.Sprintf("%04d-%02d", year, month)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check generated month: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) SetTransactionReceipt(ctx context.Context, id int64, ref string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET receipt_ref = ? WHERE id = ?`, ref, id)
	if err != nil {
		return fmt.Errorf("set receipt: %w", err)
	}
	return requireAffected(res, "transaction", id)
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var date, txType string
	err := row.Scan(&tx.ID, &tx.ProjectID, &date, &txType, &tx.Amount.Cents,
		&tx.CategoryID, &tx.SupplierID, &tx.Notes, &tx.Generated,
		&tx.TemplateID, &tx.ReceiptRef)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(txType)
	if tx.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse date: %w", err)
	}
	return tx, nil
}
