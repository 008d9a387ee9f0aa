package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fondi/internal/core"
)

const templateColumns = `id, project_id, description, type, amount_cents,
	category_id, supplier_id, day_of_month, start_date, end_type, end_date,
	max_occurrences, active`

func (r *SQLiteRepository) CreateTemplate(ctx context.Context, t core.RecurringTemplate) (core.RecurringTemplate, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_templates
			(project_id, description, type, amount_cents, category_id,
			 supplier_id, day_of_month, start_date, end_type, end_date,
			 max_occurrences, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ProjectID, t.Description, string(t.Type), t.Amount.Cents, t.CategoryID,
		t.SupplierID, t.DayOfMonth, t.StartDate.String(), string(t.EndType),
		nullDate(t.EndDate), t.MaxOccurrences, t.Active)
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("insert template: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("template id: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) GetTemplate(ctx context.Context, id int64) (core.RecurringTemplate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM recurring_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err != nil {
		return core.RecurringTemplate{}, notFoundOr(err, "template", id)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTemplate(ctx context.Context, t core.RecurringTemplate) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_templates SET
			description = ?, type = ?, amount_cents = ?, category_id = ?,
			supplier_id = ?, day_of_month = ?, start_date = ?, end_type = ?,
			end_date = ?, max_occurrences = ?, active = ?
		 WHERE id = ?`,
		t.Description, string(t.Type), t.Amount.Cents, t.CategoryID,
		t.SupplierID, t.DayOfMonth, t.StartDate.String(), string(t.EndType),
		nullDate(t.EndDate), t.MaxOccurrences, t.Active, t.ID)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return requireAffected(res, "template", t.ID)
}

func (r *SQLiteRepository) DeleteTemplate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return requireAffected(res, "template", id)
}

func (r *SQLiteRepository) ListTemplates(ctx context.Context, projectID int64) ([]core.RecurringTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_templates ORDER BY id`
	args := []any{}
	if projectID != 0 {
		query = `SELECT ` + templateColumns + ` FROM recurring_templates WHERE project_id = ? ORDER BY id`
		args = append(args, projectID)
	}
	return r.queryTemplates(ctx, query, args...)
}

func (r *SQLiteRepository) ListActiveTemplates(ctx context.Context) ([]core.RecurringTemplate, error) {
	return r.queryTemplates(ctx,
		`SELECT `+templateColumns+` FROM recurring_templates WHERE active = 1 ORDER BY id`)
}

func (r *SQLiteRepository) queryTemplates(ctx context.Context, query string, args ...any) ([]core.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTemplate(row rowScanner) (core.RecurringTemplate, error) {
	var t core.RecurringTemplate
	var txType, endType, startDate string
	var endDate sql.NullString
	err := row.Scan(&t.ID, &t.ProjectID, &t.Description, &txType, &t.Amount.Cents,
		&t.CategoryID, &t.SupplierID, &t.DayOfMonth, &startDate, &endType,
		&endDate, &t.MaxOccurrences, &t.Active)
	if err != nil {
		return core.RecurringTemplate{}, err
	}
	t.Type = core.TransactionType(txType)
	t.EndType = core.EndType(endType)
	if t.StartDate, err = core.ParseDate(startDate); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("parse start date: %w", err)
	}
	if t.EndDate, err = scanDate(endDate); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("parse end date: %w", err)
	}
	return t, nil
}

func requireAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return &core.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}
