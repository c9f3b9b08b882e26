// Package postgres implements the repository interfaces on pgx. Uniqueness
// constraints in the schema are the final arbiter for badges, celebrations
// and credentials; the Go code only translates conflicts into the sentinel
// errors the services expect.
package postgres

import (
	"errors"
	"fmt"

	"finquestAPI/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	credentialNumberConstraint = "credentials_credential_number_key"
)

// translate maps driver errors onto the repository sentinels. Unique
// violations on the credential-number index get their own sentinel so the
// issuer can retry with a fresh number.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == credentialNumberConstraint {
				return fmt.Errorf("%w: %s", repository.ErrNumberTaken, pgErr.ConstraintName)
			}
			return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
		}
		// serialization failures and dropped connections are retryable
		switch pgErr.Code {
		case "40001", "40P01", "08000", "08003", "08006":
			return fmt.Errorf("%w: %v", repository.ErrTransient, err)
		}
	}
	if pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", repository.ErrTransient, err)
	}
	return err
}
