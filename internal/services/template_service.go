package services

import (
	"context"
	"fmt"
	"log/slog"

	"fondi/internal/core"
	"fondi/internal/store"
)

// TemplateService owns the recurring template lifecycle: creation with
// full validation against the owning project, partial updates that never
// touch already-generated transactions, soft deactivation and hard
// deletion.
type TemplateService struct {
	store store.Store
}

func NewTemplateService(st store.Store) *TemplateService {
	return &TemplateService{store: st}
}

// TemplateUpdate carries the optional fields of a partial template edit.
// Nil fields are left unchanged.
type TemplateUpdate struct {
	Description    *string
	Amount         *core.Money
	CategoryID     *int64
	SupplierID     *int64
	DayOfMonth     *int
	StartDate      *core.Date
	EndType        *core.EndType
	EndDate        *core.Date
	MaxOccurrences *int
}

// Create validates and persists a new template with active=true.
func (s *TemplateService) Create(ctx context.Context, tpl core.RecurringTemplate) (core.RecurringTemplate, error) {
	project, err := s.store.GetProject(ctx, tpl.ProjectID)
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("load project: %w", err)
	}

	if tpl.EndType == "" {
		tpl.EndType = core.EndNone
	}
	if err := tpl.Validate(project.ContractStart); err != nil {
		return core.RecurringTemplate{}, err
	}

	tpl.Active = true
	created, err := s.store.CreateTemplate(ctx, tpl)
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("create template: %w", err)
	}

	slog.InfoContext(ctx, "Recurring template created",
		"template_id", created.ID,
		"project_id", created.ProjectID,
		"description", created.Description,
		"amount_cents", created.Amount.Cents,
		"day_of_month", created.DayOfMonth)

	return created, nil
}

// Update applies a partial edit and re-validates the result. Previously
// generated transactions keep the values they were materialized with.
func (s *TemplateService) Update(ctx context.Context, id int64, patch TemplateUpdate) (core.RecurringTemplate, error) {
	tpl, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return core.RecurringTemplate{}, err
	}

	if patch.Description != nil {
		tpl.Description = *patch.Description
	}
	if patch.Amount != nil {
		tpl.Amount = *patch.Amount
	}
	if patch.CategoryID != nil {
		tpl.CategoryID = *patch.CategoryID
	}
	if patch.SupplierID != nil {
		tpl.SupplierID = *patch.SupplierID
	}
	if patch.DayOfMonth != nil {
		tpl.DayOfMonth = *patch.DayOfMonth
	}
	if patch.StartDate != nil {
		tpl.StartDate = *patch.StartDate
	}
	if patch.EndType != nil {
		tpl.EndType = *patch.EndType
	}
	if patch.EndDate != nil {
		tpl.EndDate = *patch.EndDate
	}
	if patch.MaxOccurrences != nil {
		tpl.MaxOccurrences = *patch.MaxOccurrences
	}

	project, err := s.store.GetProject(ctx, tpl.ProjectID)
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("load project: %w", err)
	}
	if err := tpl.Validate(project.ContractStart); err != nil {
		return core.RecurringTemplate{}, err
	}

	if err := s.store.UpdateTemplate(ctx, tpl); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("update template: %w", err)
	}

	slog.InfoContext(ctx, "Recurring template updated", "template_id", tpl.ID)
	return tpl, nil
}

// Deactivate stops future generation without deleting anything.
// Calling it on an already inactive template is a no-op.
func (s *TemplateService) Deactivate(ctx context.Context, id int64) error {
	tpl, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	if !tpl.Active {
		return nil
	}
	tpl.Active = false
	if err := s.store.UpdateTemplate(ctx, tpl); err != nil {
		return fmt.Errorf("deactivate template: %w", err)
	}

	slog.InfoContext(ctx, "Recurring template deactivated", "template_id", id)
	return nil
}

// Reactivate re-enables generation for a previously deactivated template.
func (s *TemplateService) Reactivate(ctx context.Context, id int64) error {
	tpl, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	if tpl.Active {
		return nil
	}
	tpl.Active = true
	if err := s.store.UpdateTemplate(ctx, tpl); err != nil {
		return fmt.Errorf("reactivate template: %w", err)
	}

	slog.InfoContext(ctx, "Recurring template reactivated", "template_id", id)
	return nil
}

// Delete removes the template for good. Transactions it generated stay
// untouched so historical data survives the deletion.
func (s *TemplateService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Recurring template deleted", "template_id", id)
	return nil
}

// Get returns a single template by id.
func (s *TemplateService) Get(ctx context.Context, id int64) (core.RecurringTemplate, error) {
	return s.store.GetTemplate(ctx, id)
}

// List returns the templates of a project, or all templates when
// projectID is zero.
func (s *TemplateService) List(ctx context.Context, projectID int64) ([]core.RecurringTemplate, error) {
	return s.store.ListTemplates(ctx, projectID)
}
