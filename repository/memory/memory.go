// Package memory holds mutex-guarded in-memory store implementations. They
// back the test suites and local development without a database; the
// uniqueness guarantees mirror the Postgres constraints.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"finquestAPI/internal/badge"
	"finquestAPI/internal/celebration"
	"finquestAPI/internal/credential"
	"finquestAPI/internal/event"
	"finquestAPI/internal/progress"
	"finquestAPI/repository"

	"github.com/google/uuid"
)

type EventLog struct {
	mu     sync.Mutex
	events []event.UserEvent
}

func NewEventLog() *EventLog { return &EventLog{} }

func (l *EventLog) Append(ctx context.Context, ev *event.UserEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	l.events = append(l.events, *ev)
	return nil
}

func (l *EventLog) ListByUserAndType(ctx context.Context, userID uuid.UUID, t event.EventType, since time.Time) ([]event.UserEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []event.UserEvent
	for _, ev := range l.events {
		if ev.UserID != userID || ev.Type != t {
			continue
		}
		if !since.IsZero() && ev.OccurredAt.Before(since) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

type progressKey struct {
	user uuid.UUID
	goal int
}

type ProgressStore struct {
	mu   sync.Mutex
	rows map[progressKey]progress.GoalProgress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{rows: make(map[progressKey]progress.GoalProgress)}
}

func (s *ProgressStore) Get(ctx context.Context, userID uuid.UUID, goalID int) (*progress.GoalProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[progressKey{userID, goalID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (s *ProgressStore) Upsert(ctx context.Context, p *progress.GoalProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := progressKey{p.UserID, p.GoalID}
	if existing, ok := s.rows[key]; ok && existing.IsCompleted {
		// completed rows never regress
		return nil
	}
	p.UpdatedAt = time.Now()
	s.rows[key] = *p
	return nil
}

func (s *ProgressStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]progress.GoalProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []progress.GoalProgress
	for key, row := range s.rows {
		if key.user == userID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GoalID < out[j].GoalID })
	return out, nil
}

type badgeKey struct {
	user  uuid.UUID
	badge int
}

type BadgeLedger struct {
	mu   sync.Mutex
	rows map[badgeKey]badge.UserBadge
}

func NewBadgeLedger() *BadgeLedger {
	return &BadgeLedger{rows: make(map[badgeKey]badge.UserBadge)}
}

func (s *BadgeLedger) Award(ctx context.Context, ub *badge.UserBadge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := badgeKey{ub.UserID, ub.BadgeID}
	if _, ok := s.rows[key]; ok {
		return repository.ErrConflict
	}
	if ub.EarnedAt.IsZero() {
		ub.EarnedAt = time.Now()
	}
	s.rows[key] = *ub
	return nil
}

func (s *BadgeLedger) ListByUser(ctx context.Context, userID uuid.UUID) ([]badge.UserBadge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []badge.UserBadge
	for key, row := range s.rows {
		if key.user == userID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BadgeID < out[j].BadgeID })
	return out, nil
}

type CelebrationStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]celebration.Celebration
}

func NewCelebrationStore() *CelebrationStore {
	return &CelebrationStore{rows: make(map[uuid.UUID]celebration.Celebration)}
}

func (s *CelebrationStore) Create(ctx context.Context, c *celebration.Celebration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.UserID != c.UserID {
			continue
		}
		if c.GoalID != nil && existing.GoalID != nil && *existing.GoalID == *c.GoalID {
			return repository.ErrConflict
		}
		if c.PhaseNumber != nil && existing.PhaseNumber != nil && *existing.PhaseNumber == *c.PhaseNumber {
			return repository.ErrConflict
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.rows[c.ID] = *c
	return nil
}

func (s *CelebrationStore) ListPending(ctx context.Context, userID uuid.UUID) ([]celebration.Celebration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []celebration.Celebration
	for _, row := range s.rows {
		if row.UserID == userID && row.ShownAt == nil {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *CelebrationStore) MarkShown(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if row.ShownAt == nil {
		now := time.Now()
		row.ShownAt = &now
		s.rows[id] = row
	}
	return nil
}

type CredentialStore struct {
	mu     sync.Mutex
	rows   map[string]credential.Credential // keyed by credential number
	events []credential.AuditEvent
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{rows: make(map[string]credential.Credential)}
}

func (s *CredentialStore) Insert(ctx context.Context, c *credential.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[c.CredentialNumber]; ok {
		return repository.ErrNumberTaken
	}
	for _, existing := range s.rows {
		if existing.UserID != c.UserID || existing.Status != credential.StatusActive {
			continue
		}
		if c.GoalID != nil && existing.GoalID != nil && *existing.GoalID == *c.GoalID {
			return repository.ErrConflict
		}
		if c.GoalID == nil && c.PhaseNumber != nil && existing.GoalID == nil &&
			existing.PhaseNumber != nil && *existing.PhaseNumber == *c.PhaseNumber {
			return repository.ErrConflict
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.rows[c.CredentialNumber] = *c
	return nil
}

func (s *CredentialStore) GetByNumber(ctx context.Context, number string) (*credential.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[number]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (s *CredentialStore) GetActiveByUserAndGoal(ctx context.Context, userID uuid.UUID, goalID int) (*credential.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.UserID == userID && row.Status == credential.StatusActive &&
			row.GoalID != nil && *row.GoalID == goalID {
			out := row
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *CredentialStore) GetActiveByUserAndPhase(ctx context.Context, userID uuid.UUID, phase int) (*credential.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.UserID == userID && row.Status == credential.StatusActive &&
			row.GoalID == nil && row.PhaseNumber != nil && *row.PhaseNumber == phase {
			out := row
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *CredentialStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]credential.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []credential.Credential
	for _, row := range s.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.Before(out[j].IssuedAt) })
	return out, nil
}

func (s *CredentialStore) NumberExists(ctx context.Context, number string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[number]
	return ok, nil
}

func (s *CredentialStore) Revoke(ctx context.Context, number string, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[number]
	if !ok {
		return repository.ErrNotFound
	}
	if row.Status == credential.StatusRevoked {
		return nil
	}
	row.Status = credential.StatusRevoked
	row.RevokedAt = &at
	row.RevokedReason = reason
	s.rows[number] = row
	return nil
}

func (s *CredentialStore) AppendEvent(ctx context.Context, ev *credential.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	s.events = append(s.events, *ev)
	return nil
}

// EventsFor returns the audit trail for a credential, oldest first. Test
// helper; the Postgres store exposes the same data through SQL.
func (s *CredentialStore) EventsFor(credentialID uuid.UUID) []credential.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []credential.AuditEvent
	for _, ev := range s.events {
		if ev.CredentialID == credentialID {
			out = append(out, ev)
		}
	}
	return out
}

// UserDirectory is a fixed-map directory for tests and local runs.
type UserDirectory struct {
	mu      sync.Mutex
	byClerk map[string]uuid.UUID
	names   map[uuid.UUID]string
	tokens  map[uuid.UUID][]celebration.DeviceToken
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{
		byClerk: make(map[string]uuid.UUID),
		names:   make(map[uuid.UUID]string),
		tokens:  make(map[uuid.UUID][]celebration.DeviceToken),
	}
}

func (d *UserDirectory) AddUser(clerkID string, userID uuid.UUID, displayName string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byClerk[clerkID] = userID
	d.names[userID] = displayName
}

func (d *UserDirectory) GetUserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.byClerk[clerkID]
	if !ok {
		return uuid.Nil, repository.ErrNotFound
	}
	return id, nil
}

func (d *UserDirectory) DisplayName(ctx context.Context, userID uuid.UUID) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, ok := d.names[userID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return name, nil
}

func (d *UserDirectory) DeviceTokens(ctx context.Context, userID uuid.UUID) ([]celebration.DeviceToken, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tokens[userID], nil
}

// FinanceReader serves fixed values; tests mutate the fields directly.
type FinanceReader struct {
	mu            sync.Mutex
	netWorth      map[uuid.UUID]float64
	categorySpend map[string]float64 // "userID|category|from-date" -> amount
	uncategorized map[uuid.UUID]int
}

func NewFinanceReader() *FinanceReader {
	return &FinanceReader{
		netWorth:      make(map[uuid.UUID]float64),
		categorySpend: make(map[string]float64),
		uncategorized: make(map[uuid.UUID]int),
	}
}

func (f *FinanceReader) SetNetWorth(userID uuid.UUID, v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.netWorth[userID] = v
}

func (f *FinanceReader) SetUncategorized(userID uuid.UUID, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uncategorized[userID] = n
}

func (f *FinanceReader) SetCategorySpend(userID uuid.UUID, category string, from time.Time, amount float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categorySpend[spendKey(userID, category, from)] = amount
}

func spendKey(userID uuid.UUID, category string, from time.Time) string {
	return userID.String() + "|" + category + "|" + from.UTC().Truncate(24*time.Hour).Format("2006-01-02")
}

func (f *FinanceReader) NetWorth(ctx context.Context, userID uuid.UUID) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.netWorth[userID], nil
}

func (f *FinanceReader) CategorySpend(ctx context.Context, userID uuid.UUID, category string, from, to time.Time) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categorySpend[spendKey(userID, category, from)], nil
}

func (f *FinanceReader) UncategorizedCount(ctx context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uncategorized[userID], nil
}
