package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"fondi/internal/core"
)

func (r *SQLiteRepository) CreatePeriod(ctx context.Context, p core.ContractPeriod) (core.ContractPeriod, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contract_periods (project_id, start_date, end_date, year_index)
		 VALUES (?, ?, ?, ?)`,
		p.ProjectID, p.StartDate.String(), nullDate(p.EndDate), p.YearIndex)
	if err != nil {
		return core.ContractPeriod{}, fmt.Errorf("insert period: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return core.ContractPeriod{}, fmt.Errorf("period id: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) UpdatePeriod(ctx context.Context, p core.ContractPeriod) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contract_periods SET start_date = ?, end_date = ?, year_index = ? WHERE id = ?`,
		p.StartDate.String(), nullDate(p.EndDate), p.YearIndex, p.ID)
	if err != nil {
		return fmt.Errorf("update period: %w", err)
	}
	return requireAffected(res, "period", p.ID)
}

func (r *SQLiteRepository) ListPeriods(ctx context.Context, projectID int64) ([]core.ContractPeriod, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, start_date, end_date, year_index
		 FROM contract_periods WHERE project_id = ? ORDER BY start_date`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	defer rows.Close()

	var out []core.ContractPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) OpenPeriod(ctx context.Context, projectID int64) (core.ContractPeriod, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, start_date, end_date, year_index
		 FROM contract_periods WHERE project_id = ? AND end_date IS NULL`,
		projectID)
	p, err := scanPeriod(row)
	if err != nil {
		return core.ContractPeriod{}, notFoundOr(err, "open period", projectID)
	}
	return p, nil
}

func scanPeriod(row rowScanner) (core.ContractPeriod, error) {
	var p core.ContractPeriod
	var start string
	var end sql.NullString
	err := row.Scan(&p.ID, &p.ProjectID, &start, &end, &p.YearIndex)
	if err != nil {
		return core.ContractPeriod{}, err
	}
	if p.StartDate, err = core.ParseDate(start); err != nil {
		return core.ContractPeriod{}, fmt.Errorf("parse start date: %w", err)
	}
	if p.EndDate, err = scanDate(end); err != nil {
		return core.ContractPeriod{}, fmt.Errorf("parse end date: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets
			(project_id, category_id, amount_cents, period_type, start_date,
			 end_date, active, contract_period_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ProjectID, b.CategoryID, b.Amount.Cents, string(b.PeriodType),
		nullDate(b.StartDate), nullDate(b.EndDate), b.Active, b.ContractPeriodID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget id: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListActiveBudgets(ctx context.Context, projectID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, category_id, amount_cents, period_type,
			start_date, end_date, active, contract_period_id
		 FROM budgets WHERE project_id = ? AND active = 1 ORDER BY id`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var periodType string
		var start, end sql.NullString
		err := rows.Scan(&b.ID, &b.ProjectID, &b.CategoryID, &b.Amount.Cents,
			&periodType, &start, &end, &b.Active, &b.ContractPeriodID)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.PeriodType = core.BudgetPeriodType(periodType)
		if b.StartDate, err = scanDate(start); err != nil {
			return nil, fmt.Errorf("parse start date: %w", err)
		}
		if b.EndDate, err = scanDate(end); err != nil {
			return nil, fmt.Errorf("parse end date: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateUnforeseen(ctx context.Context, u core.UnforeseenTransaction) (core.UnforeseenTransaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.UnforeseenTransaction{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO unforeseen_transactions
			(project_id, contract_period_id, income, status, date, transaction_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ProjectID, u.ContractPeriodID, u.Income.String(), string(u.Status),
		u.Date.String(), u.TransactionID)
	if err != nil {
		return core.UnforeseenTransaction{}, fmt.Errorf("insert unforeseen: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return core.UnforeseenTransaction{}, fmt.Errorf("unforeseen id: %w", err)
	}

	for _, line := range u.Expenses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO unforeseen_expenses (unforeseen_id, amount, description, document_ref)
			 VALUES (?, ?, ?, ?)`,
			u.ID, line.Amount.String(), line.Description, line.DocumentRef)
		if err != nil {
			return core.UnforeseenTransaction{}, fmt.Errorf("insert expense line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.UnforeseenTransaction{}, fmt.Errorf("commit: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUnforeseen(ctx context.Context, id int64) (core.UnforeseenTransaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, contract_period_id, income, status, date, transaction_id
		 FROM unforeseen_transactions WHERE id = ?`, id)
	u, err := scanUnforeseen(row)
	if err != nil {
		return core.UnforeseenTransaction{}, notFoundOr(err, "unforeseen transaction", id)
	}
	if u.Expenses, err = r.expenseLines(ctx, u.ID); err != nil {
		return core.UnforeseenTransaction{}, err
	}
	return u, nil
}

func (r *SQLiteRepository) UpdateUnforeseen(ctx context.Context, u core.UnforeseenTransaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE unforeseen_transactions SET
			contract_period_id = ?, income = ?, status = ?, date = ?, transaction_id = ?
		 WHERE id = ?`,
		u.ContractPeriodID, u.Income.String(), string(u.Status),
		u.Date.String(), u.TransactionID, u.ID)
	if err != nil {
		return fmt.Errorf("update unforeseen: %w", err)
	}
	if err := requireAffected(res, "unforeseen transaction", u.ID); err != nil {
		return err
	}

	// Expense lines are replaced wholesale on update.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM unforeseen_expenses WHERE unforeseen_id = ?`, u.ID); err != nil {
		return fmt.Errorf("clear expense lines: %w", err)
	}
	for _, line := range u.Expenses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO unforeseen_expenses (unforeseen_id, amount, description, document_ref)
			 VALUES (?, ?, ?, ?)`,
			u.ID, line.Amount.String(), line.Description, line.DocumentRef)
		if err != nil {
			return fmt.Errorf("insert expense line: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) DeleteUnforeseen(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM unforeseen_transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete unforeseen: %w", err)
	}
	return requireAffected(res, "unforeseen transaction", id)
}

func (r *SQLiteRepository) ListUnforeseen(ctx context.Context, projectID int64) ([]core.UnforeseenTransaction, error) {
	query := `SELECT id, project_id, contract_period_id, income, status, date, transaction_id
		 FROM unforeseen_transactions ORDER BY id`
	args := []any{}
	if projectID != 0 {
		query = `SELECT id, project_id, contract_period_id, income, status, date, transaction_id
			 FROM unforeseen_transactions WHERE project_id = ? ORDER BY id`
		args = append(args, projectID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list unforeseen: %w", err)
	}
	defer rows.Close()

	var out []core.UnforeseenTransaction
	for rows.Next() {
		u, err := scanUnforeseen(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unforeseen: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Expenses, err = r.expenseLines(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SQLiteRepository) expenseLines(ctx context.Context, unforeseenID int64) ([]core.UnforeseenExpenseLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount, description, document_ref
		 FROM unforeseen_expenses WHERE unforeseen_id = ? ORDER BY id`,
		unforeseenID)
	if err != nil {
		return nil, fmt.Errorf("list expense lines: %w", err)
	}
	defer rows.Close()

	var out []core.UnforeseenExpenseLine
	for rows.Next() {
		var line core.UnforeseenExpenseLine
		var amount string
		if err := rows.Scan(&amount, &line.Description, &line.DocumentRef); err != nil {
			return nil, fmt.Errorf("scan expense line: %w", err)
		}
		if line.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse expense amount: %w", err)
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func scanUnforeseen(row rowScanner) (core.UnforeseenTransaction, error) {
	var u core.UnforeseenTransaction
	var income, status, date string
	err := row.Scan(&u.ID, &u.ProjectID, &u.ContractPeriodID, &income, &status,
		&date, &u.TransactionID)
	if err != nil {
		return core.UnforeseenTransaction{}, err
	}
	u.Status = core.UnforeseenStatus(status)
	if u.Income, err = decimal.NewFromString(income); err != nil {
		return core.UnforeseenTransaction{}, fmt.Errorf("parse income: %w", err)
	}
	if u.Date, err = core.ParseDate(date); err != nil {
		return core.UnforeseenTransaction{}, fmt.Errorf("parse date: %w", err)
	}
	return u, nil
}
