package credential

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// Payload carries the exact field set that is hashed and signed. Phase
// certificates substitute phaseNumber for goalId; nothing else differs.
type Payload struct {
	CredentialNumber     string
	BadgeName            string
	RecipientDisplayName string
	IssuedAt             time.Time
	GoalID               *int
	PhaseNumber          *int
	GoalTitle            string
}

// Canonical serializes the payload deterministically: a flat object with
// lexicographically sorted keys and second-precision UTC timestamps.
// encoding/json sorts map keys, which gives the stable byte string the
// signature and hash are computed over.
func (p Payload) Canonical() ([]byte, error) {
	fields := map[string]any{
		"credentialNumber":     p.CredentialNumber,
		"badgeName":            p.BadgeName,
		"recipientDisplayName": p.RecipientDisplayName,
		"issuedAt":             p.IssuedAt.UTC().Truncate(time.Second).Format(time.RFC3339),
		"goalTitle":            p.GoalTitle,
		"status":               string(StatusActive),
	}
	switch {
	case p.GoalID != nil:
		fields["goalId"] = *p.GoalID
	case p.PhaseNumber != nil:
		fields["phaseNumber"] = *p.PhaseNumber
	default:
		return nil, fmt.Errorf("payload needs a goal id or a phase number")
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize payload: %w", err)
	}
	return out, nil
}

// Hash returns the hex SHA-256 of the canonical payload.
func Hash(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// Sign returns the hex HMAC-SHA256 of the canonical payload. The secret
// stays server-side; it is never part of any response.
func Sign(canonical []byte, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil))
}

// numberAlphabet excludes glyphs that read ambiguously on a printed
// certificate (0, O, I, 1, U).
const numberAlphabet = "ABCDEFGHJKLMNPQRSTVWXYZ23456789"

var numberPattern = regexp.MustCompile(`^[A-Z]{2,4}-\d{4}-[A-HJ-NP-TV-Z2-9]{6}$`)

// NewNumber generates a credential number like FQ-2026-K7XMPD. Uniqueness
// is the caller's problem; this only guarantees the shape.
func NewNumber(prefix string, now time.Time) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	suffix := make([]byte, 6)
	for i, b := range buf {
		suffix[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return fmt.Sprintf("%s-%d-%s", prefix, now.Year(), suffix), nil
}

// ValidNumber reports whether s matches the published credential-number
// format. Already-issued numbers must keep verifying, so the pattern is
// frozen.
func ValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}
