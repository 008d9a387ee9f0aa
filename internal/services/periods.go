package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fondi/internal/amqp"
	"fondi/internal/core"
	"fondi/internal/store"
)

// Periods derives and maintains a project's contract periods: the first
// one is created implicitly from the project start date, later ones by
// explicit year closure or automatic anniversary renewal.
type Periods struct {
	store  store.Store
	events *amqp.Client
	clock  func() time.Time
}

func NewPeriods(st store.Store, events *amqp.Client) *Periods {
	return &Periods{store: st, events: events, clock: time.Now}
}

// WithClock overrides the time source, used by tests.
func (p *Periods) WithClock(clock func() time.Time) *Periods {
	p.clock = clock
	return p
}

// PeriodSummary is one contract period annotated with its ordinal, label
// and aggregated transaction totals.
type PeriodSummary struct {
	Period core.ContractPeriod
	Label  string
	Totals core.PeriodTotals
}

// Current returns the project's open period, creating the first period
// from the project start date when none exists yet. Projects without a
// recorded start date have no periods; callers get a nil period.
func (p *Periods) Current(ctx context.Context, projectID int64) (*core.ContractPeriod, error) {
	project, err := p.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project.ContractStart.IsZero() {
		return nil, nil
	}

	open, err := p.store.OpenPeriod(ctx, projectID)
	if err == nil {
		return &open, nil
	}
	if !core.IsNotFound(err) {
		return nil, fmt.Errorf("load open period: %w", err)
	}

	// First access: materialize the initial period from the contract start.
	created, err := p.store.CreatePeriod(ctx, core.ContractPeriod{
		ProjectID: projectID,
		StartDate: project.ContractStart,
		YearIndex: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial period: %w", err)
	}

	slog.InfoContext(ctx, "Initial contract period created",
		"project_id", projectID,
		"start_date", created.StartDate.String())

	return &created, nil
}

// ByYear returns all periods of a project ordered by start date, each
// with its year index, label and transaction totals. Totals of a closed
// period never include transactions dated after its end.
func (p *Periods) ByYear(ctx context.Context, projectID int64) ([]PeriodSummary, error) {
	if _, err := p.Current(ctx, projectID); err != nil {
		return nil, err
	}

	periods, err := p.store.ListPeriods(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}

	txs, err := p.store.ListProjectTransactions(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	now := p.clock()
	summaries := make([]PeriodSummary, len(periods))
	for i, period := range periods {
		period.YearIndex = i
		summaries[i] = PeriodSummary{
			Period: period,
			Label:  period.Label(),
			Totals: period.TotalsFor(txs, now),
		}
	}
	return summaries, nil
}

// CloseYear ends the current period at endDate and opens the next one
// the following day. Closing before the period started is rejected with
// a ConstraintError.
func (p *Periods) CloseYear(ctx context.Context, projectID int64, endDate core.Date) (core.ContractPeriod, error) {
	current, err := p.Current(ctx, projectID)
	if err != nil {
		return core.ContractPeriod{}, err
	}
	if current == nil {
		return core.ContractPeriod{}, &core.ConstraintError{Reason: "project has no contract start date"}
	}
	if endDate.Before(current.StartDate) {
		return core.ContractPeriod{}, &core.ConstraintError{
			Reason: fmt.Sprintf("end date %s precedes period start %s", endDate, current.StartDate),
		}
	}

	closed := *current
	closed.EndDate = endDate
	if err := p.store.UpdatePeriod(ctx, closed); err != nil {
		return core.ContractPeriod{}, fmt.Errorf("close period: %w", err)
	}

	next, err := p.store.CreatePeriod(ctx, core.ContractPeriod{
		ProjectID: projectID,
		StartDate: endDate.AddDays(1),
		YearIndex: current.YearIndex + 1,
	})
	if err != nil {
		return core.ContractPeriod{}, fmt.Errorf("open next period: %w", err)
	}

	slog.InfoContext(ctx, "Contract year closed",
		"project_id", projectID,
		"closed_period", closed.ID,
		"end_date", endDate.String(),
		"next_period", next.ID)

	return next, nil
}

// CheckAndRenew closes the current period at its anniversary when "now"
// has crossed it, opening the next period. Multiple elapsed years roll
// over one period each. Reports whether any renewal happened.
func (p *Periods) CheckAndRenew(ctx context.Context, projectID int64) (bool, error) {
	now := p.clock()
	renewed := false

	for {
		current, err := p.Current(ctx, projectID)
		if err != nil {
			return renewed, err
		}
		if current == nil {
			return renewed, nil
		}

		anniversary := current.Anniversary()
		if now.Before(anniversary.Time) {
			return renewed, nil
		}

		// Period runs through the day before the anniversary; the next
		// one starts on the anniversary itself.
		next, err := p.CloseYear(ctx, projectID, anniversary.AddDays(-1))
		if err != nil {
			return renewed, fmt.Errorf("renew period: %w", err)
		}
		renewed = true

		slog.InfoContext(ctx, "Contract period auto-renewed",
			"project_id", projectID,
			"new_period", next.ID,
			"new_start", next.StartDate.String())

		p.publishRenewed(ctx, projectID, anniversary.AddDays(-1), next.ID)
	}
}

func (p *Periods) publishRenewed(ctx context.Context, projectID int64, closedAt core.Date, newPeriodID int64) {
	if p.events == nil {
		return
	}
	msg := amqp.NewPeriodRenewedMessage(projectID, closedAt.String(), newPeriodID)
	if err := p.events.PublishPeriodRenewed(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish renewal event",
			"project_id", projectID,
			"error", err)
	}
}
