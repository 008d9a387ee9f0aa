// Package memory provides an in-memory entity store backend. It backs
// the test suites and the default development configuration; the
// production backend is the SQLite repository in internal/storage.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fondi/internal/core"
)

// Store is a mutex-guarded in-memory implementation of store.Store.
// It enforces the same generated-transaction uniqueness constraint as
// the SQLite backend so idempotence behaves identically in tests.
type Store struct {
	mu sync.RWMutex

	projects     map[int64]core.Project
	suppliers    map[int64]core.Supplier
	categories   map[int64]core.Category
	templates    map[int64]core.RecurringTemplate
	transactions map[int64]core.Transaction
	periods      map[int64]core.ContractPeriod
	budgets      map[int64]core.Budget
	unforeseen   map[int64]core.UnforeseenTransaction
	dismissals   map[string]core.AlertDismissal

	nextID int64
}

func New() *Store {
	return &Store{
		projects:     make(map[int64]core.Project),
		suppliers:    make(map[int64]core.Supplier),
		categories:   make(map[int64]core.Category),
		templates:    make(map[int64]core.RecurringTemplate),
		transactions: make(map[int64]core.Transaction),
		periods:      make(map[int64]core.ContractPeriod),
		budgets:      make(map[int64]core.Budget),
		unforeseen:   make(map[int64]core.UnforeseenTransaction),
		dismissals:   make(map[string]core.AlertDismissal),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) allocID() int64 {
	s.nextID++
	return s.nextID
}

// Projects

func (s *Store) CreateProject(_ context.Context, p core.Project) (core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.allocID()
	s.projects[p.ID] = p
	return p, nil
}

func (s *Store) GetProject(_ context.Context, id int64) (core.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return core.Project{}, &core.NotFoundError{Entity: "project", ID: id}
	}
	return p, nil
}

func (s *Store) ListProjects(_ context.Context) ([]core.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Suppliers

func (s *Store) CreateSupplier(_ context.Context, sup core.Supplier) (core.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sup.ID = s.allocID()
	s.suppliers[sup.ID] = sup
	return sup, nil
}

func (s *Store) ListSuppliers(_ context.Context) ([]core.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		out = append(out, sup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Categories

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.allocID()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, &core.NotFoundError{Entity: "category", ID: id}
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Templates

func (s *Store) CreateTemplate(_ context.Context, t core.RecurringTemplate) (core.RecurringTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.allocID()
	s.templates[t.ID] = t
	return t, nil
}

func (s *Store) GetTemplate(_ context.Context, id int64) (core.RecurringTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[id]
	if !ok {
		return core.RecurringTemplate{}, &core.NotFoundError{Entity: "template", ID: id}
	}
	return t, nil
}

func (s *Store) UpdateTemplate(_ context.Context, t core.RecurringTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[t.ID]; !ok {
		return &core.NotFoundError{Entity: "template", ID: t.ID}
	}
	s.templates[t.ID] = t
	return nil
}

func (s *Store) DeleteTemplate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return &core.NotFoundError{Entity: "template", ID: id}
	}
	delete(s.templates, id)
	return nil
}

func (s *Store) ListTemplates(_ context.Context, projectID int64) ([]core.RecurringTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.RecurringTemplate
	for _, t := range s.templates {
		if projectID == 0 || t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListActiveTemplates(_ context.Context) ([]core.RecurringTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.RecurringTemplate
	for _, t := range s.templates {
		if t.Active {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Transactions

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.Generated && tx.TemplateID != 0 {
		for _, existing := range s.transactions {
			if existing.Generated && existing.TemplateID == tx.TemplateID &&
				existing.Date.Year() == tx.Date.Year() &&
				existing.Date.Month() == tx.Date.Month() {
				return core.Transaction{}, &core.ConflictError{
					Reason: fmt.Sprintf("template %d already generated for %04d-%02d",
						tx.TemplateID, tx.Date.Year(), tx.Date.Month()),
				}
			}
		}
	}
	tx.ID = s.allocID()
	s.transactions[tx.ID] = tx
	return tx, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, &core.NotFoundError{Entity: "transaction", ID: id}
	}
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return &core.NotFoundError{Entity: "transaction", ID: id}
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) ListProjectTransactions(_ context.Context, projectID int64) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, tx := range s.transactions {
		if projectID == 0 || tx.ProjectID == projectID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListTransactionsInRange(_ context.Context, projectID int64, from, to core.Date) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, tx := range s.transactions {
		if projectID != 0 && tx.ProjectID != projectID {
			continue
		}
		if tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CountGenerated(_ context.Context, templateID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, tx := range s.transactions {
		if tx.Generated && tx.TemplateID == templateID {
			count++
		}
	}
	return count, nil
}

func (s *Store) HasGeneratedForMonth(_ context.Context, templateID int64, year, month int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.transactions {
		if tx.Generated && tx.TemplateID == templateID &&
			tx.Date.Year() == year && tx.Date.Month() == month {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SetTransactionReceipt(_ context.Context, id int64, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return &core.NotFoundError{Entity: "transaction", ID: id}
	}
	tx.ReceiptRef = ref
	s.transactions[id] = tx
	return nil
}

// Contract periods

func (s *Store) CreatePeriod(_ context.Context, p core.ContractPeriod) (core.ContractPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.allocID()
	s.periods[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePeriod(_ context.Context, p core.ContractPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.periods[p.ID]; !ok {
		return &core.NotFoundError{Entity: "contract period", ID: p.ID}
	}
	s.periods[p.ID] = p
	return nil
}

func (s *Store) ListPeriods(_ context.Context, projectID int64) ([]core.ContractPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.ContractPeriod
	for _, p := range s.periods {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *Store) OpenPeriod(_ context.Context, projectID int64) (core.ContractPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.periods {
		if p.ProjectID == projectID && p.IsOpen() {
			return p, nil
		}
	}
	return core.ContractPeriod{}, &core.NotFoundError{Entity: "open contract period", ID: projectID}
}

// Budgets

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.allocID()
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) ListActiveBudgets(_ context.Context, projectID int64) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if !b.Active {
			continue
		}
		if projectID == 0 || b.ProjectID == projectID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Unforeseen transactions

func (s *Store) CreateUnforeseen(_ context.Context, u core.UnforeseenTransaction) (core.UnforeseenTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.allocID()
	s.unforeseen[u.ID] = u
	return u, nil
}

func (s *Store) GetUnforeseen(_ context.Context, id int64) (core.UnforeseenTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.unforeseen[id]
	if !ok {
		return core.UnforeseenTransaction{}, &core.NotFoundError{Entity: "unforeseen transaction", ID: id}
	}
	return u, nil
}

func (s *Store) UpdateUnforeseen(_ context.Context, u core.UnforeseenTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.unforeseen[u.ID]; !ok {
		return &core.NotFoundError{Entity: "unforeseen transaction", ID: u.ID}
	}
	s.unforeseen[u.ID] = u
	return nil
}

func (s *Store) DeleteUnforeseen(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.unforeseen[id]; !ok {
		return &core.NotFoundError{Entity: "unforeseen transaction", ID: id}
	}
	delete(s.unforeseen, id)
	return nil
}

func (s *Store) ListUnforeseen(_ context.Context, projectID int64) ([]core.UnforeseenTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.UnforeseenTransaction
	for _, u := range s.unforeseen {
		if projectID == 0 || u.ProjectID == projectID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Alert dismissals

func (s *Store) DismissAlert(_ context.Context, d core.AlertDismissal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d/%s", d.ProjectID, d.Kind)
	s.dismissals[key] = d
	return nil
}

func (s *Store) ListDismissals(_ context.Context) ([]core.AlertDismissal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.AlertDismissal, 0, len(s.dismissals))
	for _, d := range s.dismissals {
		out = append(out, d)
	}
	return out, nil
}
