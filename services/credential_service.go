package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"finquestAPI/internal/credential"
	"finquestAPI/repository"

	"github.com/google/uuid"
)

// ErrNonUniqueID is returned when credential-number generation keeps
// colliding past the retry bound.
var ErrNonUniqueID = errors.New("could not allocate a unique credential number")

const (
	numberAttempts = 10
	insertAttempts = 3
	insertBackoff  = 200 * time.Millisecond
)

const (
	reasonNotFound = "NOT_FOUND"
	reasonRevoked  = "REVOKED"
)

// CredentialConfig is the issuer's environment surface: the server-side
// signing secret plus the issuing organization embedded in every credential.
type CredentialConfig struct {
	SigningSecret []byte
	NumberPrefix  string
	IssuerName    string
	IssuerURL     string
}

type CredentialService struct {
	store repository.CredentialStore
	cfg   CredentialConfig
	now   func() time.Time
}

// NewCredentialService refuses to construct an issuer without a signing
// secret: issuing unsigned credentials is worse than not issuing at all.
func NewCredentialService(store repository.CredentialStore, cfg CredentialConfig) (*CredentialService, error) {
	if len(cfg.SigningSecret) == 0 {
		return nil, fmt.Errorf("credential signing secret is not configured")
	}
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "FQ"
	}
	return &CredentialService{store: store, cfg: cfg, now: time.Now}, nil
}

// IssueRequest describes the credential to issue. Exactly one of GoalID and
// PhaseNumber is set; phase certificates carry PhaseNumber and a nil GoalID.
type IssueRequest struct {
	UserID               uuid.UUID
	GoalID               *int
	PhaseNumber          *int
	BadgeName            string
	BadgeDescription     string
	BadgeLevel           string
	GoalTitle            string
	CriteriaSummary      string
	RecipientDisplayName string
}

// Issue creates and signs a credential, or returns the existing ACTIVE one
// unchanged. The storage uniqueness constraint is the final arbiter under
// concurrency; the lookup here is only the fast path.
func (s *CredentialService) Issue(ctx context.Context, req IssueRequest) (*credential.Credential, error) {
	if (req.GoalID == nil) == (req.PhaseNumber == nil) {
		return nil, fmt.Errorf("issue request needs exactly one of goal id and phase number")
	}

	if existing, err := s.findActive(ctx, req); err == nil {
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing credential: %w", err)
	}

	issuedAt := s.now().UTC()

	for attempt := 0; attempt < numberAttempts; attempt++ {
		number, err := credential.NewNumber(s.cfg.NumberPrefix, issuedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to generate credential number: %w", err)
		}
		if taken, err := s.store.NumberExists(ctx, number); err != nil {
			return nil, fmt.Errorf("failed to check credential number: %w", err)
		} else if taken {
			continue
		}

		payload := credential.Payload{
			CredentialNumber:     number,
			BadgeName:            req.BadgeName,
			RecipientDisplayName: req.RecipientDisplayName,
			IssuedAt:             issuedAt,
			GoalID:               req.GoalID,
			PhaseNumber:          req.PhaseNumber,
			GoalTitle:            req.GoalTitle,
		}
		canonical, err := payload.Canonical()
		if err != nil {
			return nil, fmt.Errorf("failed to build canonical payload: %w", err)
		}

		cred := &credential.Credential{
			ID:                   uuid.New(),
			CredentialNumber:     number,
			UserID:               req.UserID,
			RecipientDisplayName: req.RecipientDisplayName,
			BadgeName:            req.BadgeName,
			BadgeDescription:     req.BadgeDescription,
			BadgeLevel:           req.BadgeLevel,
			GoalID:               req.GoalID,
			PhaseNumber:          req.PhaseNumber,
			GoalTitle:            req.GoalTitle,
			CriteriaSummary:      req.CriteriaSummary,
			IssuerName:           s.cfg.IssuerName,
			IssuerURL:            s.cfg.IssuerURL,
			EvidenceHash:         credential.Hash(canonical),
			Signature:            credential.Sign(canonical, s.cfg.SigningSecret),
			Status:               credential.StatusActive,
			IssuedAt:             issuedAt,
		}

		switch err := s.insertWithRetry(ctx, cred); {
		case err == nil:
			s.appendEvent(ctx, cred.ID, credential.EventIssued, map[string]any{
				"credential_number": cred.CredentialNumber,
			})
			credentialsIssued.Inc()
			return cred, nil
		case errors.Is(err, repository.ErrNumberTaken):
			// lost the number race, roll a new one
			continue
		case errors.Is(err, repository.ErrConflict):
			// lost the issuance race; the winner's row is the credential
			existing, lookupErr := s.findActive(ctx, req)
			if lookupErr != nil {
				return nil, fmt.Errorf("credential exists but could not be loaded: %w", lookupErr)
			}
			return existing, nil
		default:
			return nil, fmt.Errorf("failed to persist credential: %w", err)
		}
	}

	return nil, ErrNonUniqueID
}

func (s *CredentialService) findActive(ctx context.Context, req IssueRequest) (*credential.Credential, error) {
	if req.GoalID != nil {
		return s.store.GetActiveByUserAndGoal(ctx, req.UserID, *req.GoalID)
	}
	return s.store.GetActiveByUserAndPhase(ctx, req.UserID, *req.PhaseNumber)
}

func (s *CredentialService) insertWithRetry(ctx context.Context, cred *credential.Credential) error {
	var err error
	for attempt := 0; attempt < insertAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(insertBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = s.store.Insert(ctx, cred)
		if err == nil || !errors.Is(err, repository.ErrTransient) {
			return err
		}
		log.Printf("CredentialService: transient insert failure for %s (attempt %d): %v", cred.CredentialNumber, attempt+1, err)
	}
	return err
}

// Verify is the public, unauthenticated check. Misses and revocations are
// ordinary outcomes, never errors.
func (s *CredentialService) Verify(ctx context.Context, number string) (*credential.VerificationResult, error) {
	cred, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &credential.VerificationResult{Verified: false, Reason: reasonNotFound}, nil
		}
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}

	if cred.Status == credential.StatusRevoked {
		return &credential.VerificationResult{
			Verified:      false,
			Reason:        reasonRevoked,
			RevokedAt:     cred.RevokedAt,
			RevokedReason: cred.RevokedReason,
		}, nil
	}

	// Hardening: recompute the signature from the stored fields. The
	// authoritative check stays status + existence, but a mismatch means
	// tampered storage and deserves a loud log line.
	payload := credential.Payload{
		CredentialNumber:     cred.CredentialNumber,
		BadgeName:            cred.BadgeName,
		RecipientDisplayName: cred.RecipientDisplayName,
		IssuedAt:             cred.IssuedAt,
		GoalID:               cred.GoalID,
		PhaseNumber:          cred.PhaseNumber,
		GoalTitle:            cred.GoalTitle,
	}
	if canonical, err := payload.Canonical(); err == nil {
		if credential.Sign(canonical, s.cfg.SigningSecret) != cred.Signature {
			log.Printf("ALERT: signature mismatch for credential %s", cred.CredentialNumber)
		}
	}

	s.appendEvent(ctx, cred.ID, credential.EventVerified, nil)

	public := cred.Public()
	return &credential.VerificationResult{Verified: true, Credential: &public}, nil
}

// Revoke applies the one-way ACTIVE -> REVOKED transition.
func (s *CredentialService) Revoke(ctx context.Context, number string, reason string) error {
	cred, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return fmt.Errorf("failed to look up credential: %w", err)
	}
	if cred.Status == credential.StatusRevoked {
		return nil
	}
	if err := s.store.Revoke(ctx, number, reason, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to revoke credential: %w", err)
	}
	s.appendEvent(ctx, cred.ID, credential.EventRevoked, map[string]any{"reason": reason})
	return nil
}

// RecordShare appends a SHARED audit event when the host app reports the
// user shared the credential externally.
func (s *CredentialService) RecordShare(ctx context.Context, number string, channel string) error {
	cred, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return fmt.Errorf("failed to look up credential: %w", err)
	}
	s.appendEvent(ctx, cred.ID, credential.EventShared, map[string]any{"channel": channel})
	return nil
}

func (s *CredentialService) GetByUserAndGoal(ctx context.Context, userID uuid.UUID, goalID int) (*credential.Credential, error) {
	return s.store.GetActiveByUserAndGoal(ctx, userID, goalID)
}

func (s *CredentialService) GetPhaseCertificate(ctx context.Context, userID uuid.UUID, phase int) (*credential.Credential, error) {
	return s.store.GetActiveByUserAndPhase(ctx, userID, phase)
}

func (s *CredentialService) ListByUser(ctx context.Context, userID uuid.UUID) ([]credential.Credential, error) {
	return s.store.ListByUser(ctx, userID)
}

// appendEvent is best effort: the audit trail never blocks the main path.
func (s *CredentialService) appendEvent(ctx context.Context, credentialID uuid.UUID, t credential.EventType, metadata map[string]any) {
	ev := &credential.AuditEvent{
		ID:           uuid.New(),
		CredentialID: credentialID,
		Type:         t,
		Metadata:     metadata,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.store.AppendEvent(ctx, ev); err != nil {
		log.Printf("CredentialService: failed to append %s audit event for %s: %v", t, credentialID, err)
	}
}
