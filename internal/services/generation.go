package services

import (
	"context"
	"fmt"
	"log/slog"

	"fondi/internal/amqp"
	"fondi/internal/core"
	"fondi/internal/store"
)

// Generator materializes transactions from recurring templates, one per
// eligible template per calendar month. A month run is idempotent: the
// store-level uniqueness constraint on (template, year, month) makes
// re-invocation safe, and a lost race surfaces as a ConflictError that
// the run treats as a no-op.
type Generator struct {
	store  store.Store
	events *amqp.Client
}

func NewGenerator(st store.Store, events *amqp.Client) *Generator {
	return &Generator{store: st, events: events}
}

// TemplateError is the per-template outcome of a failed generation
// attempt inside a month batch.
type TemplateError struct {
	TemplateID int64
	Err        error
}

func (e TemplateError) Error() string {
	return fmt.Sprintf("template %d: %v", e.TemplateID, e.Err)
}

// MonthResult reports what a GenerateForMonth call produced.
type MonthResult struct {
	Year           int
	Month          int
	GeneratedCount int
	Transactions   []core.Transaction
	Errors         []TemplateError
}

// GenerateForMonth creates at most one transaction per active, eligible
// template for the given month. Failures on one template never abort the
// batch; they are collected in the result instead.
func (g *Generator) GenerateForMonth(ctx context.Context, year, month int) (MonthResult, error) {
	result := MonthResult{Year: year, Month: month}
	if month < 1 || month > 12 {
		return result, &core.ValidationError{Field: "month", Reason: "month must be between 1 and 12"}
	}

	templates, err := g.store.ListActiveTemplates(ctx)
	if err != nil {
		return result, fmt.Errorf("list active templates: %w", err)
	}

	slog.InfoContext(ctx, "Generating recurring transactions",
		"year", year,
		"month", month,
		"active_templates", len(templates))

	for _, tpl := range templates {
		tx, err := g.generateOne(ctx, tpl, year, month)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to generate from template",
				"template_id", tpl.ID,
				"error", err)
			result.Errors = append(result.Errors, TemplateError{TemplateID: tpl.ID, Err: err})
			continue
		}
		if tx == nil {
			continue // not eligible or already generated
		}
		result.Transactions = append(result.Transactions, *tx)
		result.GeneratedCount++
	}

	slog.InfoContext(ctx, "Generation complete",
		"year", year,
		"month", month,
		"generated", result.GeneratedCount,
		"errors", len(result.Errors))

	return result, nil
}

// generateOne handles a single template for the month. Returns nil when
// nothing was generated without that being an error.
func (g *Generator) generateOne(ctx context.Context, tpl core.RecurringTemplate, year, month int) (*core.Transaction, error) {
	generatedCount := 0
	if tpl.EndType == core.EndAfterOccurrences {
		var err error
		generatedCount, err = g.store.CountGenerated(ctx, tpl.ID)
		if err != nil {
			return nil, fmt.Errorf("count generated: %w", err)
		}
	}

	if !tpl.EligibleForMonth(year, month, generatedCount) {
		return nil, nil
	}

	exists, err := g.store.HasGeneratedForMonth(ctx, tpl.ID, year, month)
	if err != nil {
		return nil, fmt.Errorf("check existing instance: %w", err)
	}
	if exists {
		return nil, nil
	}

	created, err := g.store.CreateTransaction(ctx, tpl.Materialize(year, month))
	if err != nil {
		if core.IsConflict(err) {
			// Lost the idempotence race to a concurrent run; the
			// instance exists, so this is a no-op success.
			slog.InfoContext(ctx, "Generation race lost, instance already exists",
				"template_id", tpl.ID,
				"year", year,
				"month", month)
			return nil, nil
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Generated transaction from template",
		"template_id", tpl.ID,
		"transaction_id", created.ID,
		"date", created.Date.String(),
		"amount_cents", created.Amount.Cents)

	g.publishGenerated(ctx, created, year, month)
	return &created, nil
}

// publishGenerated emits the generated-transaction event best effort;
// the transaction is already persisted, so publish failures only log.
func (g *Generator) publishGenerated(ctx context.Context, tx core.Transaction, year, month int) {
	if g.events == nil {
		return
	}
	msg := amqp.NewTransactionGeneratedMessage(tx.ID, tx.TemplateID, tx.ProjectID, year, month)
	if err := g.events.PublishTransactionGenerated(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish generated event",
			"transaction_id", tx.ID,
			"error", err)
	}
}
