package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForEvent(t *testing.T) {
	kind, ok := KindForEvent(EventReceiptScanned)
	require.True(t, ok)
	assert.Equal(t, "receipt_scanned", kind)

	// indirect mappings where the event name differs from the kind
	kind, _ = KindForEvent(EventUncategorizedCleared)
	assert.Equal(t, "uncategorized_zero", kind)
	kind, _ = KindForEvent(EventBalanceUpdated)
	assert.Equal(t, "net_worth_threshold", kind)
	kind, _ = KindForEvent(EventSpendingReviewed)
	assert.Equal(t, "category_spending_reduced", kind)

	_, ok = KindForEvent("goal_completed")
	assert.False(t, ok)
}

func TestNoEventFeedsTheCapstone(t *testing.T) {
	for ev, kind := range eventToKind {
		assert.NotEqual(t, "all_goals_completed", kind, "event %s must not feed the capstone", ev)
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(EventOverviewViewed))
	assert.True(t, IsValid(EventProfileCompleted))
	assert.False(t, IsValid("made_up_event"))
	assert.False(t, IsValid(""))
}
