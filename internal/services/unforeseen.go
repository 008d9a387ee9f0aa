package services

import (
	"context"
	"fmt"
	"log/slog"

	"fondi/internal/core"
	"fondi/internal/store"
)

// Unforeseen runs the approval workflow of ad-hoc transaction bundles:
// draft, waiting for approval, executed. Execution produces a regular
// transaction for the rounded profit/loss; deleting an executed bundle
// retracts that transaction.
type Unforeseen struct {
	store store.Store
}

func NewUnforeseen(st store.Store) *Unforeseen {
	return &Unforeseen{store: st}
}

// Create persists a new bundle in draft status.
func (s *Unforeseen) Create(ctx context.Context, u core.UnforeseenTransaction) (core.UnforeseenTransaction, error) {
	if err := u.Validate(); err != nil {
		return core.UnforeseenTransaction{}, err
	}
	if _, err := s.store.GetProject(ctx, u.ProjectID); err != nil {
		return core.UnforeseenTransaction{}, fmt.Errorf("load project: %w", err)
	}

	u.Status = core.UnforeseenDraft
	u.TransactionID = 0
	created, err := s.store.CreateUnforeseen(ctx, u)
	if err != nil {
		return core.UnforeseenTransaction{}, fmt.Errorf("create unforeseen: %w", err)
	}

	slog.InfoContext(ctx, "Unforeseen transaction created",
		"unforeseen_id", created.ID,
		"project_id", created.ProjectID,
		"profit_loss", created.ProfitLoss().String())

	return created, nil
}

// SubmitForApproval moves a draft to waiting_for_approval.
func (s *Unforeseen) SubmitForApproval(ctx context.Context, id int64) (core.UnforeseenTransaction, error) {
	return s.transition(ctx, id, core.UnforeseenWaiting)
}

// Execute approves the bundle and materializes its profit/loss as a
// regular transaction. Execution is terminal.
func (s *Unforeseen) Execute(ctx context.Context, id int64) (core.UnforeseenTransaction, error) {
	u, err := s.store.GetUnforeseen(ctx, id)
	if err != nil {
		return core.UnforeseenTransaction{}, err
	}
	if !u.Status.CanTransitionTo(core.UnforeseenExecuted) {
		return core.UnforeseenTransaction{}, &core.ConstraintError{
			Reason: fmt.Sprintf("cannot execute unforeseen transaction in status %s", u.Status),
		}
	}

	tx, err := s.store.CreateTransaction(ctx, u.ResultTransaction())
	if err != nil {
		return core.UnforeseenTransaction{}, fmt.Errorf("create settlement transaction: %w", err)
	}

	u.Status = core.UnforeseenExecuted
	u.TransactionID = tx.ID
	if err := s.store.UpdateUnforeseen(ctx, u); err != nil {
		return core.UnforeseenTransaction{}, fmt.Errorf("mark executed: %w", err)
	}

	slog.InfoContext(ctx, "Unforeseen transaction executed",
		"unforeseen_id", u.ID,
		"transaction_id", tx.ID,
		"profit_loss", u.ProfitLoss().String())

	return u, nil
}

// Delete removes a bundle. Executed bundles also retract the settlement
// transaction they produced.
func (s *Unforeseen) Delete(ctx context.Context, id int64) error {
	u, err := s.store.GetUnforeseen(ctx, id)
	if err != nil {
		return err
	}

	if u.Status == core.UnforeseenExecuted && u.TransactionID != 0 {
		if err := s.store.DeleteTransaction(ctx, u.TransactionID); err != nil && !core.IsNotFound(err) {
			return fmt.Errorf("retract settlement transaction: %w", err)
		}
	}

	if err := s.store.DeleteUnforeseen(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Unforeseen transaction deleted",
		"unforeseen_id", id,
		"was_executed", u.Status == core.UnforeseenExecuted)

	return nil
}

// Get returns a single bundle by id.
func (s *Unforeseen) Get(ctx context.Context, id int64) (core.UnforeseenTransaction, error) {
	return s.store.GetUnforeseen(ctx, id)
}

// List returns a project's bundles, or all bundles when projectID is 0.
func (s *Unforeseen) List(ctx context.Context, projectID int64) ([]core.UnforeseenTransaction, error) {
	return s.store.ListUnforeseen(ctx, projectID)
}

func (s *Unforeseen) transition(ctx context.Context, id int64, next core.UnforeseenStatus) (core.UnforeseenTransaction, error) {
	u, err := s.store.GetUnforeseen(ctx, id)
	if err != nil {
		return core.UnforeseenTransaction{}, err
	}
	if !u.Status.CanTransitionTo(next) {
		return core.UnforeseenTransaction{}, &core.ConstraintError{
			Reason: fmt.Sprintf("invalid status transition %s -> %s", u.Status, next),
		}
	}
	u.Status = next
	if err := s.store.UpdateUnforeseen(ctx, u); err != nil {
		return core.UnforeseenTransaction{}, fmt.Errorf("update status: %w", err)
	}
	return u, nil
}
