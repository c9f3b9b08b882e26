package services

import (
	"context"
	"fmt"
	"math"

	"finquestAPI/internal/goal"
	"finquestAPI/internal/progress"
	"finquestAPI/repository"

	"github.com/google/uuid"
)

// unlockRatio gates each non-final phase on the one before it.
const unlockRatio = 0.7

// completedByPhase tallies completed goals per phase from progress rows.
func completedByPhase(rows []progress.GoalProgress) map[int]int {
	out := make(map[int]int, goal.PhaseCount)
	for _, row := range rows {
		if !row.IsCompleted {
			continue
		}
		if def, ok := goal.ByID(row.GoalID); ok {
			out[def.Phase]++
		}
	}
	return out
}

// phaseUnlocked is the pure gating rule. Phase 1 is always open; phase k
// needs ceil(0.7 x |phase k-1|) completions, except the final phase, which
// needs all of the penultimate one.
func phaseUnlocked(phase int, completed map[int]int) bool {
	if phase <= 1 {
		return true
	}
	prev := phase - 1
	total := goal.GoalCountInPhase(prev)
	if phase == goal.PhaseCount {
		return completed[prev] == total
	}
	need := int(math.Ceil(unlockRatio * float64(total)))
	return completed[prev] >= need
}

// phaseComplete reports whether every goal of a phase is done.
func phaseComplete(phase int, completed map[int]int) bool {
	return completed[phase] == goal.GoalCountInPhase(phase)
}

// PhaseGate derives unlock status from the progress store. Nothing is
// persisted, so stored flags can never drift from the underlying progress.
type PhaseGate struct {
	progress repository.ProgressStore
}

func NewPhaseGate(progressStore repository.ProgressStore) *PhaseGate {
	return &PhaseGate{progress: progressStore}
}

func (g *PhaseGate) IsPhaseUnlocked(ctx context.Context, userID uuid.UUID, phase int) (bool, error) {
	if phase <= 1 {
		return true, nil
	}
	rows, err := g.progress.ListByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to list progress: %w", err)
	}
	return phaseUnlocked(phase, completedByPhase(rows)), nil
}

// UnlockStatus returns the full per-phase view the UI renders.
func (g *PhaseGate) UnlockStatus(ctx context.Context, userID uuid.UUID) ([]progress.PhaseStatus, error) {
	rows, err := g.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	completed := completedByPhase(rows)

	out := make([]progress.PhaseStatus, 0, goal.PhaseCount)
	for phase := 1; phase <= goal.PhaseCount; phase++ {
		out = append(out, progress.PhaseStatus{
			Phase:          phase,
			Unlocked:       phaseUnlocked(phase, completed),
			CompletedGoals: completed[phase],
			TotalGoals:     goal.GoalCountInPhase(phase),
		})
	}
	return out, nil
}
