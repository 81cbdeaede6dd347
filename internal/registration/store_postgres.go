package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// PostgresStore persists registrations. The UNIQUE (election_id,
// registrant_id) constraint makes Save a conditional insert.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, r Registration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registrations (id, election_id, registrant_id, voter_hash, registered_at)
		VALUES ($1, $2, $3, $4, $5)`,
		r.ID.String(), r.ElectionID.String(), r.RegistrantKey, string(r.VoterHash), r.RegisteredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByRegistrantAndElection(ctx context.Context, registrantKey string, electionID id.ElectionID) (Registration, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, election_id, registrant_id, voter_hash, registered_at
		FROM registrations
		WHERE registrant_id = $1 AND election_id = $2`,
		registrantKey, electionID.String(),
	)
	return scanRegistration(row)
}

func (s *PostgresStore) ListByRegistrant(ctx context.Context, registrantKey string) ([]Registration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, election_id, registrant_id, voter_hash, registered_at
		FROM registrations
		WHERE registrant_id = $1
		ORDER BY registered_at`,
		registrantKey,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountByElection(ctx context.Context, electionID id.ElectionID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE election_id = $1`,
		electionID.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) DeleteByElection(ctx context.Context, electionID id.ElectionID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM registrations WHERE election_id = $1`,
		electionID.String(),
	)
	if err != nil {
		return fmt.Errorf("delete registrations: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (Registration, error) {
	var (
		r          Registration
		rawID      string
		electionID string
		voterHash  string
	)
	err := row.Scan(&rawID, &electionID, &r.RegistrantKey, &voterHash, &r.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Registration{}, sentinel.ErrNotFound
		}
		return Registration{}, fmt.Errorf("scan registration: %w", err)
	}

	if r.ID, err = id.ParseRegistrationID(rawID); err != nil {
		return Registration{}, fmt.Errorf("stored registration id invalid: %w", err)
	}
	if r.ElectionID, err = id.ParseElectionID(electionID); err != nil {
		return Registration{}, fmt.Errorf("stored election id invalid: %w", err)
	}
	r.VoterHash = id.VoterHash(voterHash)
	return r, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
