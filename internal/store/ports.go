// Package store declares the ports the services consume to reach the
// entity store. Two backends implement them: the SQLite repository in
// internal/storage and the in-memory backend in store/memory.
package store

import (
	"context"

	"fondi/internal/core"
)

type (
	ProjectStore interface {
		CreateProject(ctx context.Context, p core.Project) (core.Project, error)
		GetProject(ctx context.Context, id int64) (core.Project, error)
		ListProjects(ctx context.Context) ([]core.Project, error)
	}

	SupplierStore interface {
		CreateSupplier(ctx context.Context, s core.Supplier) (core.Supplier, error)
		ListSuppliers(ctx context.Context) ([]core.Supplier, error)
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		GetCategory(ctx context.Context, id int64) (core.Category, error)
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	TemplateStore interface {
		CreateTemplate(ctx context.Context, t core.RecurringTemplate) (core.RecurringTemplate, error)
		GetTemplate(ctx context.Context, id int64) (core.RecurringTemplate, error)
		UpdateTemplate(ctx context.Context, t core.RecurringTemplate) error
		DeleteTemplate(ctx context.Context, id int64) error
		ListTemplates(ctx context.Context, projectID int64) ([]core.RecurringTemplate, error)
		ListActiveTemplates(ctx context.Context) ([]core.RecurringTemplate, error)
	}

	TransactionStore interface {
		// CreateTransaction persists a transaction. For generated
		// transactions the backend enforces at most one instance per
		// (template, year, month) and returns a ConflictError when the
		// slot is already taken.
		CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id int64) error
		ListProjectTransactions(ctx context.Context, projectID int64) ([]core.Transaction, error)
		ListTransactionsInRange(ctx context.Context, projectID int64, from, to core.Date) ([]core.Transaction, error)
		CountGenerated(ctx context.Context, templateID int64) (int, error)
		HasGeneratedForMonth(ctx context.Context, templateID int64, year, month int) (bool, error)
		SetTransactionReceipt(ctx context.Context, id int64, ref string) error
	}

	PeriodStore interface {
		CreatePeriod(ctx context.Context, p core.ContractPeriod) (core.ContractPeriod, error)
		UpdatePeriod(ctx context.Context, p core.ContractPeriod) error
		// ListPeriods returns a project's periods ordered by start date.
		ListPeriods(ctx context.Context, projectID int64) ([]core.ContractPeriod, error)
		// OpenPeriod returns the project's period with no end date, or a
		// NotFoundError when the project has none.
		OpenPeriod(ctx context.Context, projectID int64) (core.ContractPeriod, error)
	}

	BudgetStore interface {
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		ListActiveBudgets(ctx context.Context, projectID int64) ([]core.Budget, error)
	}

	UnforeseenStore interface {
		CreateUnforeseen(ctx context.Context, u core.UnforeseenTransaction) (core.UnforeseenTransaction, error)
		GetUnforeseen(ctx context.Context, id int64) (core.UnforeseenTransaction, error)
		UpdateUnforeseen(ctx context.Context, u core.UnforeseenTransaction) error
		DeleteUnforeseen(ctx context.Context, id int64) error
		ListUnforeseen(ctx context.Context, projectID int64) ([]core.UnforeseenTransaction, error)
	}

	DismissalStore interface {
		DismissAlert(ctx context.Context, d core.AlertDismissal) error
		ListDismissals(ctx context.Context) ([]core.AlertDismissal, error)
	}
)

// Store is the full entity store surface the application wires together.
type Store interface {
	ProjectStore
	SupplierStore
	CategoryStore
	TemplateStore
	TransactionStore
	PeriodStore
	BudgetStore
	UnforeseenStore
	DismissalStore

	Close() error
}
