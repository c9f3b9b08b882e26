package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"finquestAPI/internal/event"
	"finquestAPI/internal/goal"
	"finquestAPI/repository"

	"github.com/google/uuid"
)

// EvalResult is what an evaluator reports for one (user, criteria) pair.
type EvalResult struct {
	Value      float64 `json:"value"`
	Percentage int     `json:"percentage"`
	Completed  bool    `json:"completed"`
}

type evalFunc func(ctx context.Context, userID uuid.UUID, c goal.Criteria, now time.Time) (EvalResult, error)

// EvaluatorRegistry maps criteria kinds to pure read-only evaluation
// functions. The set is closed: the catalog is validated against it at
// startup so an unknown kind can never silently no-op.
type EvaluatorRegistry struct {
	events   repository.EventLog
	finance  repository.FinanceReader
	progress repository.ProgressStore
	kinds    map[string]evalFunc
}

func NewEvaluatorRegistry(events repository.EventLog, finance repository.FinanceReader, progressStore repository.ProgressStore) *EvaluatorRegistry {
	r := &EvaluatorRegistry{
		events:   events,
		finance:  finance,
		progress: progressStore,
	}
	r.kinds = map[string]evalFunc{
		"overview_viewed":           r.evalEventCount(event.EventOverviewViewed),
		"tip_viewed":                r.evalEventCount(event.EventTipViewed),
		"account_added":             r.evalEventCount(event.EventAccountAdded),
		"account_linked":            r.evalEventCount(event.EventAccountLinked),
		"transaction_logged":        r.evalTransactionLogged,
		"transaction_categorized":   r.evalEventCount(event.EventTransactionCategorized),
		"receipt_scanned":           r.evalEventCount(event.EventReceiptScanned),
		"budget_created":            r.evalEventCount(event.EventBudgetCreated),
		"budget_reviewed":           r.evalEventCount(event.EventBudgetReviewed),
		"report_exported":           r.evalEventCount(event.EventReportExported),
		"recurring_detected":        r.evalEventCount(event.EventRecurringDetected),
		"profile_completed":         r.evalEventCount(event.EventProfileCompleted),
		"savings_contribution":      r.evalSavingsTotal,
		"net_worth_threshold":       r.evalNetWorth,
		"category_spending_reduced": r.evalSpendingReduced,
		"uncategorized_zero":        r.evalUncategorizedZero,
		"all_goals_completed":       r.evalAllGoalsCompleted,
	}
	return r
}

// KnownKinds feeds catalog validation.
func (r *EvaluatorRegistry) KnownKinds() map[string]bool {
	out := make(map[string]bool, len(r.kinds))
	for k := range r.kinds {
		out[k] = true
	}
	return out
}

// Evaluate runs the evaluator for the criteria kind against the event log
// and domain state as of now.
func (r *EvaluatorRegistry) Evaluate(ctx context.Context, userID uuid.UUID, c goal.Criteria, now time.Time) (EvalResult, error) {
	fn, ok := r.kinds[c.Kind]
	if !ok {
		return EvalResult{}, fmt.Errorf("unknown criteria kind %q", c.Kind)
	}
	return fn(ctx, userID, c, now)
}

func windowStart(c goal.Criteria, now time.Time) time.Time {
	if c.TimeWindowDays == 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -c.TimeWindowDays)
}

// thresholdResult applies the default completion rule:
// percentage = min(100, round(value/threshold*100)), completed at threshold.
func thresholdResult(value, threshold float64) EvalResult {
	pct := 0
	if threshold > 0 {
		pct = int(math.Round(value / threshold * 100))
	}
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return EvalResult{Value: value, Percentage: pct, Completed: value >= threshold}
}

func matchesFilters(ev event.UserEvent, c goal.Criteria) bool {
	if c.Category != "" {
		if cat, _ := ev.Metadata["category"].(string); !strings.EqualFold(cat, c.Category) {
			return false
		}
	}
	if c.MerchantPattern != "" {
		merchant, _ := ev.Metadata["merchant"].(string)
		if !strings.Contains(strings.ToLower(merchant), strings.ToLower(c.MerchantPattern)) {
			return false
		}
	}
	if c.Format != "" {
		if f, _ := ev.Metadata["format"].(string); !strings.EqualFold(f, c.Format) {
			return false
		}
	}
	if c.Completeness != "" {
		if comp, _ := ev.Metadata["completeness"].(string); !strings.EqualFold(comp, c.Completeness) {
			return false
		}
	}
	return true
}

func (r *EvaluatorRegistry) evalEventCount(t event.EventType) evalFunc {
	return func(ctx context.Context, userID uuid.UUID, c goal.Criteria, now time.Time) (EvalResult, error) {
		events, err := r.events.ListByUserAndType(ctx, userID, t, windowStart(c, now))
		if err != nil {
			return EvalResult{}, fmt.Errorf("failed to read event log: %w", err)
		}
		count := 0
		for _, ev := range events {
			if matchesFilters(ev, c) {
				count++
			}
		}
		return thresholdResult(float64(count), c.Threshold), nil
	}
}

// evalTransactionLogged counts by default and switches to the streak rule
// when the criteria carries a streak type.
func (r *EvaluatorRegistry) evalTransactionLogged(ctx context.Context, userID uuid.UUID, c goal.Criteria, now time.Time) (EvalResult, error) {
	if c.StreakType == "" {
		return r.evalEventCount(event.EventTransactionLogged)(ctx, userID, c, now)
	}

	// Streaks look back at most threshold+1 days; older events cannot extend
	// a run that must end today.
	since := now.AddDate(0, 0, -int(c.Threshold)-1)
	events, err := r.events.ListByUserAndType(ctx, userID, event.EventTransactionLogged, since)
	if err != nil {
		return EvalResult{}, fmt.Errorf("failed to read event log: %w", err)
	}

	days := make(map[string]bool)
	for _, ev := range events {
		if matchesFilters(ev, c) {
			days[ev.OccurredAt.UTC().Format("2006-01-02")] = true
		}
	}

	// Longest run of consecutive qualifying days ending today; the first
	// missing day breaks it.
	streak := 0
	for d := now.UTC(); days[d.Format("2006-01-02")]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return thresholdResult(float64(streak), c.Threshold), nil
}

func (r *EvaluatorRegistry) evalSavingsTotal(ctx context.Context, userID uuid.UUID, c goal.Criteria, now time.Time) (EvalResult, error) {
	events, err := r.events.ListByUserAndType(ctx, userID, event.EventSavingsContribution, windowStart(c, now))
	if err != nil {
		return EvalResult{}, fmt.Errorf("failed to read event log: %w", err)
	}
	total := 0.0
	for _, ev := range events {
		if matchesFilters(ev, c) {
			total += metadataAmount(ev.Metadata)
		}
	}
	return thresholdResult(total, c.Threshold), nil
}

func metadataAmount(md map[string]any) float64 {
	switch v := md["amount"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

func (r *EvaluatorRegistry) evalNetWorth(ctx context.Context, userID uuid.UUID, c goal.Criteria, now time.Time) (EvalResult, error) {
	worth, err := r.finance.NetWorth(ctx, userID)
	if err != nil {
		return EvalResult{}, fmt.Errorf("failed to read net worth: %w", err)
	}
	switch c.Comparison {
	case goal.CompareLTE:
		res := EvalResult{Value: worth, Completed: worth <= c.Threshold}
		if res.Completed {
			res.Percentage = 100
		}
		return res, nil
	case goal.CompareEQ:
		res := EvalResult{Value: worth, Completed: worth == c.Threshold}
		if res.Completed {
			res.Percentage = 100
		}
		return res, nil
	default:
		return thresholdResult(worth, c.Threshold), nil
	}
}

// evalSpendingReduced compares the current window's category spend against
// the window immediately before it. Value is the reduction percentage.
func (r *EvaluatorRegistry) evalSpendingReduced(ctx context.Context, userID uuid.UUID, c goal.Criteria, now time.Time) (EvalResult, error) {
	days := c.TimeWindowDays
	if days == 0 {
		days = 30
	}
	currentFrom := now.AddDate(0, 0, -days)
	previousFrom := now.AddDate(0, 0, -2*days)

	current, err := r.finance.CategorySpend(ctx, userID, c.Category, currentFrom, now)
	if err != nil {
		return EvalResult{}, fmt.Errorf("failed to read category spend: %w", err)
	}
	previous, err := r.finance.CategorySpend(ctx, userID, c.Category, previousFrom, currentFrom)
	if err != nil {
		return EvalResult{}, fmt.Errorf("failed to read category spend: %w", err)
	}

	if previous <= 0 {
		// nothing to reduce against
		return EvalResult{}, nil
	}
	reduction := (previous - current) / previous * 100
	if reduction < 0 {
		reduction = 0
	}
	return thresholdResult(reduction, c.Threshold), nil
}

// evalUncategorizedZero completes only when the count is exactly zero.
func (r *EvaluatorRegistry) evalUncategorizedZero(ctx context.Context, userID uuid.UUID, c goal.Criteria, now time.Time) (EvalResult, error) {
	n, err := r.finance.UncategorizedCount(ctx, userID)
	if err != nil {
		return EvalResult{}, fmt.Errorf("failed to read uncategorized count: %w", err)
	}
	if n == 0 {
		return EvalResult{Value: 1, Percentage: 100, Completed: true}, nil
	}
	return EvalResult{Value: 0, Percentage: 0, Completed: false}, nil
}

// evalAllGoalsCompleted is the capstone rule: every other catalog goal must
// be complete. Always derived from the progress rows, never from counters.
func (r *EvaluatorRegistry) evalAllGoalsCompleted(ctx context.Context, userID uuid.UUID, c goal.Criteria, now time.Time) (EvalResult, error) {
	rows, err := r.progress.ListByUser(ctx, userID)
	if err != nil {
		return EvalResult{}, fmt.Errorf("failed to list progress: %w", err)
	}
	completed := 0
	for _, row := range rows {
		if row.IsCompleted && row.GoalID != goal.CapstoneGoalID {
			completed++
		}
	}
	return thresholdResult(float64(completed), c.Threshold), nil
}
