package goal

import "fmt"

// Comparison operators usable by state-reading criteria.
type Comparison string

const (
	CompareGTE Comparison = "gte"
	CompareLTE Comparison = "lte"
	CompareEQ  Comparison = "eq"
)

type StreakType string

const (
	StreakDaily StreakType = "daily"
)

// Criteria is the tagged descriptor attached to a goal. Kind selects the
// evaluator; the remaining fields parameterize it. Unused fields stay zero.
type Criteria struct {
	Kind            string     `json:"kind"`
	Threshold       float64    `json:"threshold"`
	TimeWindowDays  int        `json:"time_window_days,omitempty"`
	StreakType      StreakType `json:"streak_type,omitempty"`
	Comparison      Comparison `json:"comparison,omitempty"`
	Category        string     `json:"category,omitempty"`
	MerchantPattern string     `json:"merchant_pattern,omitempty"`
	Format          string     `json:"format,omitempty"`
	Completeness    string     `json:"completeness,omitempty"`
}

type GoalDefinition struct {
	ID             int      `json:"id"`
	Phase          int      `json:"phase"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	BadgeName      string   `json:"badge_name"`
	DifficultyRank int      `json:"difficulty_rank"`
	Criteria       Criteria `json:"criteria"`
}

// allowedWindows is the fixed lookback enum; anything else is a catalog bug.
var allowedWindows = map[int]bool{
	1: true, 3: true, 7: true, 14: true, 21: true, 28: true,
	30: true, 60: true, 90: true, 100: true,
}

// ValidateCatalog fails fast on unknown evaluator kinds, bad phases and
// off-enum time windows. knownKinds comes from the evaluator registry so a
// new criteria kind can never silently no-op.
func ValidateCatalog(defs []GoalDefinition, knownKinds map[string]bool) error {
	seen := make(map[int]bool, len(defs))
	for _, d := range defs {
		if seen[d.ID] {
			return fmt.Errorf("goal %d: duplicate id", d.ID)
		}
		seen[d.ID] = true

		if d.Phase < 1 || d.Phase > PhaseCount {
			return fmt.Errorf("goal %d: phase %d out of range", d.ID, d.Phase)
		}
		if !knownKinds[d.Criteria.Kind] {
			return fmt.Errorf("goal %d: unknown criteria kind %q", d.ID, d.Criteria.Kind)
		}
		if d.Criteria.Threshold <= 0 {
			return fmt.Errorf("goal %d: threshold must be positive", d.ID)
		}
		if w := d.Criteria.TimeWindowDays; w != 0 && !allowedWindows[w] {
			return fmt.Errorf("goal %d: time window %d days not in the allowed set", d.ID, w)
		}
	}
	return nil
}

// CriteriaSummary renders the human-readable criteria line embedded in
// issued credentials.
func (d GoalDefinition) CriteriaSummary() string {
	c := d.Criteria
	switch {
	case c.StreakType != "":
		return fmt.Sprintf("Maintain a %v-day %s streak of %s", c.Threshold, c.StreakType, c.Kind)
	case c.TimeWindowDays > 0:
		return fmt.Sprintf("Reach %v for %s within %d days", c.Threshold, c.Kind, c.TimeWindowDays)
	default:
		return fmt.Sprintf("Reach %v for %s", c.Threshold, c.Kind)
	}
}
