package event

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Closed set agreed with the host app. Adding a value here requires a
// matching entry in KindForEvent and usually a new catalog goal.
const (
	EventOverviewViewed         EventType = "overview_viewed"
	EventTipViewed              EventType = "tip_viewed"
	EventAccountAdded           EventType = "account_added"
	EventAccountLinked          EventType = "account_linked"
	EventTransactionLogged      EventType = "transaction_logged"
	EventTransactionCategorized EventType = "transaction_categorized"
	EventUncategorizedCleared   EventType = "uncategorized_cleared"
	EventReceiptScanned         EventType = "receipt_scanned"
	EventBudgetCreated          EventType = "budget_created"
	EventBudgetReviewed         EventType = "budget_reviewed"
	EventSavingsContribution    EventType = "savings_contribution"
	EventReportExported         EventType = "report_exported"
	EventBalanceUpdated         EventType = "balance_updated"
	EventSpendingReviewed       EventType = "spending_reviewed"
	EventRecurringDetected      EventType = "recurring_detected"
	EventProfileCompleted       EventType = "profile_completed"
)

type UserEvent struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	UserID     uuid.UUID      `json:"user_id" db:"user_id"`
	Type       EventType      `json:"event_type" db:"event_type"`
	Metadata   map[string]any `json:"metadata" db:"metadata"`
	OccurredAt time.Time      `json:"occurred_at" db:"occurred_at"`
}

// eventToKind maps each inbound event type to the criteria kind it can move
// forward. The mapping is one-to-one and stable; the capstone kind
// "all_goals_completed" has no event of its own and is re-checked by the
// engine whenever any goal completes.
var eventToKind = map[EventType]string{
	EventOverviewViewed:         "overview_viewed",
	EventTipViewed:              "tip_viewed",
	EventAccountAdded:           "account_added",
	EventAccountLinked:          "account_linked",
	EventTransactionLogged:      "transaction_logged",
	EventTransactionCategorized: "transaction_categorized",
	EventUncategorizedCleared:   "uncategorized_zero",
	EventReceiptScanned:         "receipt_scanned",
	EventBudgetCreated:          "budget_created",
	EventBudgetReviewed:         "budget_reviewed",
	EventSavingsContribution:    "savings_contribution",
	EventReportExported:         "report_exported",
	EventBalanceUpdated:         "net_worth_threshold",
	EventSpendingReviewed:       "category_spending_reduced",
	EventRecurringDetected:      "recurring_detected",
	EventProfileCompleted:       "profile_completed",
}

// KindForEvent returns the criteria kind an event type feeds, or false for
// types outside the closed set.
func KindForEvent(t EventType) (string, bool) {
	kind, ok := eventToKind[t]
	return kind, ok
}

// IsValid reports whether t is part of the closed event set.
func IsValid(t EventType) bool {
	_, ok := eventToKind[t]
	return ok
}
