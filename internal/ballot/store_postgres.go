package ballot

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

// PostgresStore persists the vote ledger. The UNIQUE (election_id,
// voter_hash) index makes Append the atomic duplicate check.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, v Vote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO votes (id, election_id, candidate_id, voter_hash, ciphertext, nonce, integrity_tag, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v.ID.String(), v.ElectionID.String(), string(v.CandidateID), string(v.VoterHash),
		v.Ciphertext, v.Nonce, v.IntegrityTag, v.CastAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByElection(ctx context.Context, electionID id.ElectionID) ([]Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, election_id, candidate_id, voter_hash, ciphertext, nonce, integrity_tag, cast_at
		FROM votes
		WHERE election_id = $1
		ORDER BY cast_at`,
		electionID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	var out []Vote
	for rows.Next() {
		var (
			v         Vote
			rawID     string
			rawElec   string
			candidate string
			voterHash string
		)
		if err := rows.Scan(&rawID, &rawElec, &candidate, &voterHash, &v.Ciphertext, &v.Nonce, &v.IntegrityTag, &v.CastAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		if v.ID, err = id.ParseVoteID(rawID); err != nil {
			return nil, fmt.Errorf("stored vote id invalid: %w", err)
		}
		if v.ElectionID, err = id.ParseElectionID(rawElec); err != nil {
			return nil, fmt.Errorf("stored election id invalid: %w", err)
		}
		v.CandidateID = id.CandidateID(candidate)
		v.VoterHash = id.VoterHash(voterHash)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountByElection(ctx context.Context, electionID id.ElectionID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE election_id = $1`,
		electionID.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) HasAnyVote(ctx context.Context, voterHash id.VoterHash) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM votes WHERE voter_hash = $1)`,
		string(voterHash),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check vote existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) DeleteByElection(ctx context.Context, electionID id.ElectionID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM votes WHERE election_id = $1`,
		electionID.String(),
	)
	if err != nil {
		return fmt.Errorf("delete votes: %w", err)
	}
	return nil
}
