// Package storage is the SQLite backend of the entity store. Schema
// changes live in migrations/ and run automatically on startup.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fondi/internal/core"
	"fondi/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// nullDate maps a zero Date to NULL so optional dates stay queryable.
func nullDate(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func scanDate(s sql.NullString) (core.Date, error) {
	if !s.Valid || s.String == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s.String)
}

// isUniqueViolation detects the sqlite unique-index error so callers can
// surface it as a domain conflict instead of a raw driver error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFoundOr(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &core.NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("get %s: %w", entity, err)
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, p core.Project) (core.Project, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (name, contract_start, active) VALUES (?, ?, ?)`,
		p.Name, nullDate(p.ContractStart), p.Active)
	if err != nil {
		return core.Project{}, fmt.Errorf("insert project: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return core.Project{}, fmt.Errorf("project id: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id int64) (core.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, contract_start, active FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err != nil {
		return core.Project{}, notFoundOr(err, "project", id)
	}
	return p, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, contract_start, active FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (core.Project, error) {
	var p core.Project
	var start sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &start, &p.Active); err != nil {
		return core.Project{}, err
	}
	var err error
	p.ContractStart, err = scanDate(start)
	return p, err
}

func (r *SQLiteRepository) CreateSupplier(ctx context.Context, s core.Supplier) (core.Supplier, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO suppliers (name) VALUES (?)`, s.Name)
	if err != nil {
		return core.Supplier{}, fmt.Errorf("insert supplier: %w", err)
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return core.Supplier{}, fmt.Errorf("supplier id: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) ListSuppliers(ctx context.Context) ([]core.Supplier, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var out []core.Supplier
	for rows.Next() {
		var s core.Supplier
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, c.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, &core.ConflictError{Reason: fmt.Sprintf("category %q already exists", c.Name)}
		}
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = ?`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return core.Category{}, notFoundOr(err, "category", id)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DismissAlert(ctx context.Context, d core.AlertDismissal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO alert_dismissals (project_id, kind) VALUES (?, ?)`,
		d.ProjectID, string(d.Kind))
	if err != nil {
		return fmt.Errorf("insert dismissal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListDismissals(ctx context.Context) ([]core.AlertDismissal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT project_id, kind FROM alert_dismissals`)
	if err != nil {
		return nil, fmt.Errorf("list dismissals: %w", err)
	}
	defer rows.Close()

	var out []core.AlertDismissal
	for rows.Next() {
		var d core.AlertDismissal
		var kind string
		if err := rows.Scan(&d.ProjectID, &kind); err != nil {
			return nil, fmt.Errorf("scan dismissal: %w", err)
		}
		d.Kind = core.AlertKind(kind)
		out = append(out, d)
	}
	return out, rows.Err()
}
