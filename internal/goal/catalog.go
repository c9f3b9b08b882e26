package goal

// PhaseCount is the number of phases in the catalog. The final phase is
// gated at 100% of the penultimate one.
const PhaseCount = 5

// CapstoneGoalID is completed only when every other goal in the catalog is
// complete. Its evaluator is re-run on every completion, not on events.
const CapstoneGoalID = 50

// Catalog is the deploy-time goal catalog. Ten goals per phase, stable IDs.
// Never mutated at runtime.
var Catalog = []GoalDefinition{
	// Phase 1 — First Steps
	{ID: 1, Phase: 1, Title: "First Look", Description: "Open your financial overview for the first time", BadgeName: "Curious Starter", DifficultyRank: 1,
		Criteria: Criteria{Kind: "overview_viewed", Threshold: 1}},
	{ID: 2, Phase: 1, Title: "Know Yourself", Description: "Complete your financial profile", BadgeName: "Self Aware", DifficultyRank: 1,
		Criteria: Criteria{Kind: "profile_completed", Threshold: 1}},
	{ID: 3, Phase: 1, Title: "First Account", Description: "Add your first account", BadgeName: "Account Opener", DifficultyRank: 1,
		Criteria: Criteria{Kind: "account_added", Threshold: 1}},
	{ID: 4, Phase: 1, Title: "Full Picture", Description: "Add three accounts", BadgeName: "Full Picture", DifficultyRank: 2,
		Criteria: Criteria{Kind: "account_added", Threshold: 3}},
	{ID: 5, Phase: 1, Title: "First Transaction", Description: "Log your first transaction", BadgeName: "Record Keeper", DifficultyRank: 1,
		Criteria: Criteria{Kind: "transaction_logged", Threshold: 1}},
	{ID: 6, Phase: 1, Title: "Getting the Hang", Description: "Log 10 transactions", BadgeName: "Steady Hand", DifficultyRank: 2,
		Criteria: Criteria{Kind: "transaction_logged", Threshold: 10}},
	{ID: 7, Phase: 1, Title: "Receipt Rookie", Description: "Scan 5 receipts in 7 days", BadgeName: "Receipt Rookie", DifficultyRank: 2,
		Criteria: Criteria{Kind: "receipt_scanned", Threshold: 5, TimeWindowDays: 7}},
	{ID: 8, Phase: 1, Title: "Daily Reader", Description: "View 3 finance tips", BadgeName: "Tip Collector", DifficultyRank: 1,
		Criteria: Criteria{Kind: "tip_viewed", Threshold: 3}},
	{ID: 9, Phase: 1, Title: "Repeat Visitor", Description: "Check your overview 5 times in 7 days", BadgeName: "Regular", DifficultyRank: 2,
		Criteria: Criteria{Kind: "overview_viewed", Threshold: 5, TimeWindowDays: 7}},
	{ID: 10, Phase: 1, Title: "Connected", Description: "Link an external account", BadgeName: "Connected", DifficultyRank: 2,
		Criteria: Criteria{Kind: "account_linked", Threshold: 1}},

	// Phase 2 — Building Habits
	{ID: 11, Phase: 2, Title: "Three in a Row", Description: "Log transactions 3 days in a row", BadgeName: "Habit Seed", DifficultyRank: 2,
		Criteria: Criteria{Kind: "transaction_logged", Threshold: 3, StreakType: StreakDaily}},
	{ID: 12, Phase: 2, Title: "One Full Week", Description: "Log transactions 7 days in a row", BadgeName: "Week Warrior", DifficultyRank: 3,
		Criteria: Criteria{Kind: "transaction_logged", Threshold: 7, StreakType: StreakDaily}},
	{ID: 13, Phase: 2, Title: "Sorting Things Out", Description: "Categorize 20 transactions", BadgeName: "Organizer", DifficultyRank: 2,
		Criteria: Criteria{Kind: "transaction_categorized", Threshold: 20}},
	{ID: 14, Phase: 2, Title: "Clean Slate", Description: "Clear every uncategorized transaction", BadgeName: "Clean Slate", DifficultyRank: 3,
		Criteria: Criteria{Kind: "uncategorized_zero", Threshold: 1}},
	{ID: 15, Phase: 2, Title: "Receipt Regular", Description: "Scan 15 receipts in 30 days", BadgeName: "Receipt Regular", DifficultyRank: 3,
		Criteria: Criteria{Kind: "receipt_scanned", Threshold: 15, TimeWindowDays: 30}},
	{ID: 16, Phase: 2, Title: "Paper Trail", Description: "Scan 10 itemized receipts", BadgeName: "Paper Trail", DifficultyRank: 3,
		Criteria: Criteria{Kind: "receipt_scanned", Threshold: 10, Completeness: "itemized"}},
	{ID: 17, Phase: 2, Title: "Grocery Watcher", Description: "Log 15 grocery transactions", BadgeName: "Grocery Watcher", DifficultyRank: 2,
		Criteria: Criteria{Kind: "transaction_logged", Threshold: 15, Category: "groceries"}},
	{ID: 18, Phase: 2, Title: "Subscription Spotter", Description: "Detect 3 recurring payments", BadgeName: "Subscription Spotter", DifficultyRank: 2,
		Criteria: Criteria{Kind: "recurring_detected", Threshold: 3}},
	{ID: 19, Phase: 2, Title: "Two Weeks Strong", Description: "Log transactions 14 days in a row", BadgeName: "Fortnight", DifficultyRank: 4,
		Criteria: Criteria{Kind: "transaction_logged", Threshold: 14, StreakType: StreakDaily}},
	{ID: 20, Phase: 2, Title: "Always Current", Description: "Check your overview 10 times in 14 days", BadgeName: "Always Current", DifficultyRank: 3,
		Criteria: Criteria{Kind: "overview_viewed", Threshold: 10, TimeWindowDays: 14}},

	// Phase 3 — Taking Control
	{ID: 21, Phase: 3, Title: "First Budget", Description: "Create your first budget", BadgeName: "Planner", DifficultyRank: 2,
		Criteria: Criteria{Kind: "budget_created", Threshold: 1}},
	{ID: 22, Phase: 3, Title: "Budget Builder", Description: "Create budgets for 3 categories", BadgeName: "Budget Builder", DifficultyRank: 3,
		Criteria: Criteria{Kind: "budget_created", Threshold: 3}},
	{ID: 23, Phase: 3, Title: "Checking In", Description: "Review a budget 4 times in 28 days", BadgeName: "Accountable", DifficultyRank: 3,
		Criteria: Criteria{Kind: "budget_reviewed", Threshold: 4, TimeWindowDays: 28}},
	{ID: 24, Phase: 3, Title: "Dining Discipline", Description: "Cut restaurant spending by 10%", BadgeName: "Dining Discipline", DifficultyRank: 4,
		Criteria: Criteria{Kind: "category_spending_reduced", Threshold: 10, TimeWindowDays: 30, Category: "restaurants"}},
	{ID: 25, Phase: 3, Title: "Impulse Control", Description: "Cut shopping spending by 15%", BadgeName: "Impulse Control", DifficultyRank: 4,
		Criteria: Criteria{Kind: "category_spending_reduced", Threshold: 15, TimeWindowDays: 30, Category: "shopping"}},
	{ID: 26, Phase: 3, Title: "Coffee Counter", Description: "Log 10 coffee-shop purchases to face the truth", BadgeName: "Coffee Counter", DifficultyRank: 2,
		Criteria: Criteria{Kind: "transaction_logged", Threshold: 10, MerchantPattern: "coffee"}},
	{ID: 27, Phase: 3, Title: "Report Reader", Description: "Export 2 spending reports", BadgeName: "Report Reader", DifficultyRank: 2,
		Criteria: Criteria{Kind: "report_exported", Threshold: 2}},
	{ID: 28, Phase: 3, Title: "Receipt Machine", Description: "Scan 30 receipts in 60 days", BadgeName: "Receipt Machine", DifficultyRank: 4,
		Criteria: Criteria{Kind: "receipt_scanned", Threshold: 30, TimeWindowDays: 60}},
	{ID: 29, Phase: 3, Title: "Category Master", Description: "Categorize 100 transactions", BadgeName: "Category Master", DifficultyRank: 4,
		Criteria: Criteria{Kind: "transaction_categorized", Threshold: 100}},
	{ID: 30, Phase: 3, Title: "Three Weeks Running", Description: "Log transactions 21 days in a row", BadgeName: "Momentum", DifficultyRank: 4,
		Criteria: Criteria{Kind: "transaction_logged", Threshold: 21, StreakType: StreakDaily}},

	// Phase 4 — Growing Wealth
	{ID: 31, Phase: 4, Title: "First Savings", Description: "Put your first 10 into savings", BadgeName: "Saver", DifficultyRank: 2,
		Criteria: Criteria{Kind: "savings_contribution", Threshold: 10}},
	{ID: 32, Phase: 4, Title: "Hundred Saved", Description: "Save a total of 100", BadgeName: "Hundred Club", DifficultyRank: 3,
		Criteria: Criteria{Kind: "savings_contribution", Threshold: 100}},
	{ID: 33, Phase: 4, Title: "Thousand Saved", Description: "Save a total of 1,000", BadgeName: "Thousand Club", DifficultyRank: 4,
		Criteria: Criteria{Kind: "savings_contribution", Threshold: 1000}},
	{ID: 34, Phase: 4, Title: "In the Black", Description: "Reach a positive net worth", BadgeName: "In the Black", DifficultyRank: 3,
		Criteria: Criteria{Kind: "net_worth_threshold", Threshold: 1, Comparison: CompareGTE}},
	{ID: 35, Phase: 4, Title: "Five Figures", Description: "Reach a net worth of 10,000", BadgeName: "Five Figures", DifficultyRank: 5,
		Criteria: Criteria{Kind: "net_worth_threshold", Threshold: 10000, Comparison: CompareGTE}},
	{ID: 36, Phase: 4, Title: "Monthly Saver", Description: "Save 250 within 30 days", BadgeName: "Monthly Saver", DifficultyRank: 3,
		Criteria: Criteria{Kind: "savings_contribution", Threshold: 250, TimeWindowDays: 30}},
	{ID: 37, Phase: 4, Title: "Full Month", Description: "Log transactions 28 days in a row", BadgeName: "Full Month", DifficultyRank: 5,
		Criteria: Criteria{Kind: "transaction_logged", Threshold: 28, StreakType: StreakDaily}},
	{ID: 38, Phase: 4, Title: "Quarterly Review", Description: "Export 6 spending reports", BadgeName: "Analyst", DifficultyRank: 3,
		Criteria: Criteria{Kind: "report_exported", Threshold: 6}},
	{ID: 39, Phase: 4, Title: "Lean Groceries", Description: "Cut grocery spending by 10%", BadgeName: "Lean Groceries", DifficultyRank: 4,
		Criteria: Criteria{Kind: "category_spending_reduced", Threshold: 10, TimeWindowDays: 30, Category: "groceries"}},
	{ID: 40, Phase: 4, Title: "Portfolio View", Description: "Add 5 accounts", BadgeName: "Portfolio View", DifficultyRank: 4,
		Criteria: Criteria{Kind: "account_added", Threshold: 5}},

	// Phase 5 — Mastery
	{ID: 41, Phase: 5, Title: "Sixty Days of Truth", Description: "Log transactions 60 days in a row", BadgeName: "Iron Streak", DifficultyRank: 5,
		Criteria: Criteria{Kind: "transaction_logged", Threshold: 60, StreakType: StreakDaily}},
	{ID: 42, Phase: 5, Title: "Receipt Legend", Description: "Scan 100 receipts in 100 days", BadgeName: "Receipt Legend", DifficultyRank: 5,
		Criteria: Criteria{Kind: "receipt_scanned", Threshold: 100, TimeWindowDays: 100}},
	{ID: 43, Phase: 5, Title: "Ten Thousand Saved", Description: "Save a total of 10,000", BadgeName: "Ten Thousand Club", DifficultyRank: 5,
		Criteria: Criteria{Kind: "savings_contribution", Threshold: 10000}},
	{ID: 44, Phase: 5, Title: "Six Figures", Description: "Reach a net worth of 100,000", BadgeName: "Six Figures", DifficultyRank: 5,
		Criteria: Criteria{Kind: "net_worth_threshold", Threshold: 100000, Comparison: CompareGTE}},
	{ID: 45, Phase: 5, Title: "Librarian", Description: "Categorize 500 transactions", BadgeName: "Librarian", DifficultyRank: 5,
		Criteria: Criteria{Kind: "transaction_categorized", Threshold: 500}},
	{ID: 46, Phase: 5, Title: "Scholar", Description: "View 50 finance tips", BadgeName: "Scholar", DifficultyRank: 4,
		Criteria: Criteria{Kind: "tip_viewed", Threshold: 50}},
	{ID: 47, Phase: 5, Title: "Deep Cuts", Description: "Cut restaurant spending by 25%", BadgeName: "Deep Cuts", DifficultyRank: 5,
		Criteria: Criteria{Kind: "category_spending_reduced", Threshold: 25, TimeWindowDays: 30, Category: "restaurants"}},
	{ID: 48, Phase: 5, Title: "Always Clean", Description: "Clear every uncategorized transaction again", BadgeName: "Always Clean", DifficultyRank: 4,
		Criteria: Criteria{Kind: "uncategorized_zero", Threshold: 1}},
	{ID: 49, Phase: 5, Title: "Ninety Days", Description: "Log transactions 90 days in a row", BadgeName: "Unbreakable", DifficultyRank: 5,
		Criteria: Criteria{Kind: "transaction_logged", Threshold: 90, StreakType: StreakDaily}},
	{ID: 50, Phase: 5, Title: "Financial Mastery", Description: "Complete every other goal in the catalog", BadgeName: "Grand Master", DifficultyRank: 5,
		Criteria: Criteria{Kind: "all_goals_completed", Threshold: 49}},
}

// ByID returns the catalog entry for id.
func ByID(id int) (GoalDefinition, bool) {
	for _, d := range Catalog {
		if d.ID == id {
			return d, true
		}
	}
	return GoalDefinition{}, false
}

// ByKind returns all goals whose criteria kind matches.
func ByKind(kind string) []GoalDefinition {
	var out []GoalDefinition
	for _, d := range Catalog {
		if d.Criteria.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// ByPhase groups the catalog by phase number.
func ByPhase() map[int][]GoalDefinition {
	out := make(map[int][]GoalDefinition, PhaseCount)
	for _, d := range Catalog {
		out[d.Phase] = append(out[d.Phase], d)
	}
	return out
}

// GoalCountInPhase returns how many goals phase holds.
func GoalCountInPhase(phase int) int {
	n := 0
	for _, d := range Catalog {
		if d.Phase == phase {
			n++
		}
	}
	return n
}
