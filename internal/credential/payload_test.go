package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical_Deterministic(t *testing.T) {
	goalID := 7
	p := Payload{
		CredentialNumber:     "FQ-2026-K7XMPD",
		BadgeName:            "Receipt Rookie",
		RecipientDisplayName: "Jamie Lee",
		IssuedAt:             time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		GoalID:               &goalID,
		GoalTitle:            "Receipt Rookie",
	}

	first, err := p.Canonical()
	require.NoError(t, err)
	second, err := p.Canonical()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.JSONEq(t, `{
		"badgeName": "Receipt Rookie",
		"credentialNumber": "FQ-2026-K7XMPD",
		"goalId": 7,
		"goalTitle": "Receipt Rookie",
		"issuedAt": "2026-08-30T12:00:00Z",
		"recipientDisplayName": "Jamie Lee",
		"status": "ACTIVE"
	}`, string(first))
}

func TestCanonical_TruncatesToSeconds(t *testing.T) {
	goalID := 3
	base := Payload{
		CredentialNumber:     "FQ-2026-ABCDEF",
		BadgeName:            "Account Opener",
		RecipientDisplayName: "Jamie Lee",
		IssuedAt:             time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		GoalID:               &goalID,
		GoalTitle:            "First Account",
	}
	withNanos := base
	withNanos.IssuedAt = base.IssuedAt.Add(123456789 * time.Nanosecond)

	a, err := base.Canonical()
	require.NoError(t, err)
	b, err := withNanos.Canonical()
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestCanonical_PhaseCertificate(t *testing.T) {
	phase := 2
	p := Payload{
		CredentialNumber:     "FQ-2026-ABCDEF",
		BadgeName:            "Phase 2 Certificate",
		RecipientDisplayName: "Jamie Lee",
		IssuedAt:             time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		PhaseNumber:          &phase,
		GoalTitle:            "Phase 2 Completion",
	}

	out, err := p.Canonical()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"phaseNumber":2`)
	assert.NotContains(t, string(out), "goalId")
}

func TestCanonical_RequiresGoalOrPhase(t *testing.T) {
	p := Payload{CredentialNumber: "FQ-2026-ABCDEF", BadgeName: "x"}
	_, err := p.Canonical()
	assert.Error(t, err)
}

func TestHashAndSign(t *testing.T) {
	canonical := []byte(`{"status":"ACTIVE"}`)

	h := Hash(canonical)
	assert.Len(t, h, 64)
	assert.Equal(t, h, Hash(canonical))

	sig := Sign(canonical, []byte("secret-a"))
	assert.Len(t, sig, 64)
	assert.Equal(t, sig, Sign(canonical, []byte("secret-a")))
	assert.NotEqual(t, sig, Sign(canonical, []byte("secret-b")))
	assert.NotEqual(t, sig, Sign([]byte(`{"status":"REVOKED"}`), []byte("secret-a")))
}

func TestNewNumber_Format(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		number, err := NewNumber("FQ", now)
		require.NoError(t, err)
		assert.True(t, ValidNumber(number), "generated number %q should match the published format", number)
		assert.Equal(t, "FQ-2026-", number[:8])
	}
}

func TestValidNumber(t *testing.T) {
	assert.True(t, ValidNumber("FQ-2026-K7XMPD"))
	assert.True(t, ValidNumber("CERT-2026-ABCDEF"))

	assert.False(t, ValidNumber("fq-2026-k7xmpd"))
	assert.False(t, ValidNumber("F-2026-ABCDEF"))   // prefix too short
	assert.False(t, ValidNumber("FQ-26-ABCDEF"))    // year must be four digits
	assert.False(t, ValidNumber("FQ-2026-ABC0EF"))  // 0 is not in the alphabet
	assert.False(t, ValidNumber("FQ-2026-ABCIEF"))  // I is not in the alphabet
	assert.False(t, ValidNumber("FQ-2026-ABCDE"))   // suffix too short
	assert.False(t, ValidNumber("FQ-2026-ABCDEFG")) // suffix too long
}
