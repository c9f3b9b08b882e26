package credential

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusRevoked Status = "REVOKED"
)

type EventType string

const (
	EventIssued   EventType = "ISSUED"
	EventShared   EventType = "SHARED"
	EventVerified EventType = "VERIFIED"
	EventRevoked  EventType = "REVOKED"
)

// Credential is an immutable signed record attesting a badge or phase
// certificate. The only permitted mutation is the one-way revoke transition.
type Credential struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	CredentialNumber     string     `json:"credential_number" db:"credential_number"`
	UserID               uuid.UUID  `json:"user_id" db:"user_id"`
	RecipientDisplayName string     `json:"recipient_display_name" db:"recipient_display_name"`
	BadgeName            string     `json:"badge_name" db:"badge_name"`
	BadgeDescription     string     `json:"badge_description" db:"badge_description"`
	BadgeLevel           string     `json:"badge_level,omitempty" db:"badge_level"`
	GoalID               *int       `json:"goal_id,omitempty" db:"goal_id"`
	PhaseNumber          *int       `json:"phase_number,omitempty" db:"phase_number"`
	GoalTitle            string     `json:"goal_title" db:"goal_title"`
	CriteriaSummary      string     `json:"criteria_summary" db:"criteria_summary"`
	IssuerName           string     `json:"issuer_name" db:"issuer_name"`
	IssuerURL            string     `json:"issuer_url" db:"issuer_url"`
	EvidenceHash         string     `json:"evidence_hash" db:"evidence_hash"`
	Signature            string     `json:"-" db:"signature"`
	Status               Status     `json:"status" db:"status"`
	IssuedAt             time.Time  `json:"issued_at" db:"issued_at"`
	RevokedAt            *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
	RevokedReason        string     `json:"revoked_reason,omitempty" db:"revoked_reason"`
}

// AuditEvent is one row of the append-only credential audit trail.
type AuditEvent struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	CredentialID uuid.UUID      `json:"credential_id" db:"credential_id"`
	Type         EventType      `json:"event_type" db:"event_type"`
	Metadata     map[string]any `json:"metadata,omitempty" db:"metadata"`
	OccurredAt   time.Time      `json:"occurred_at" db:"occurred_at"`
}

// PublicView is the subset of a credential safe to return from the
// unauthenticated verify endpoint. No internal IDs, no signature.
type PublicView struct {
	CredentialNumber     string    `json:"credential_number"`
	RecipientDisplayName string    `json:"recipient_display_name"`
	BadgeName            string    `json:"badge_name"`
	BadgeDescription     string    `json:"badge_description"`
	BadgeLevel           string    `json:"badge_level,omitempty"`
	GoalTitle            string    `json:"goal_title"`
	CriteriaSummary      string    `json:"criteria_summary"`
	IssuerName           string    `json:"issuer_name"`
	IssuerURL            string    `json:"issuer_url"`
	EvidenceHash         string    `json:"evidence_hash"`
	IssuedAt             time.Time `json:"issued_at"`
}

// Public projects the credential into its shareable form.
func (c *Credential) Public() PublicView {
	return PublicView{
		CredentialNumber:     c.CredentialNumber,
		RecipientDisplayName: c.RecipientDisplayName,
		BadgeName:            c.BadgeName,
		BadgeDescription:     c.BadgeDescription,
		BadgeLevel:           c.BadgeLevel,
		GoalTitle:            c.GoalTitle,
		CriteriaSummary:      c.CriteriaSummary,
		IssuerName:           c.IssuerName,
		IssuerURL:            c.IssuerURL,
		EvidenceHash:         c.EvidenceHash,
		IssuedAt:             c.IssuedAt,
	}
}

// VerificationResult is the public verify response. Reason is one of
// NOT_FOUND or REVOKED when Verified is false.
type VerificationResult struct {
	Verified      bool        `json:"verified"`
	Reason        string      `json:"reason,omitempty"`
	RevokedAt     *time.Time  `json:"revoked_at,omitempty"`
	RevokedReason string      `json:"revoked_reason,omitempty"`
	Credential    *PublicView `json:"credential,omitempty"`
}
