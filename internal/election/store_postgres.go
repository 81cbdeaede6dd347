package election

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

// pgUniqueViolation is the postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

// PostgresStore persists elections and their candidate lists in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, e Election) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save election: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO elections (id, title, description, start_time, end_time, expected_voters, status, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID.String(), e.Title, e.Description, e.StartTime, e.EndTime, e.ExpectedVoters, string(e.Status), e.CreatedBy.String(), e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert election: %w", err)
	}

	if err := insertCandidates(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save election: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, e Election) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update election: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE elections
		 SET title = $2, description = $3, start_time = $4, end_time = $5, expected_voters = $6, status = $7
		 WHERE id = $1`,
		e.ID.String(), e.Title, e.Description, e.StartTime, e.EndTime, e.ExpectedVoters, string(e.Status),
	)
	if err != nil {
		return fmt.Errorf("update election: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update election rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}

	// Candidate lists are replaced wholesale; the service layer refuses
	// candidate changes once registrations exist.
	if _, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE election_id = $1`, e.ID.String()); err != nil {
		return fmt.Errorf("clear candidates: %w", err)
	}
	if err := insertCandidates(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update election: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, electionID id.ElectionID) (Election, error) {
	var (
		e         Election
		idStr     string
		status    string
		createdBy string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, start_time, end_time, expected_voters, status, created_by, created_at
		 FROM elections WHERE id = $1`, electionID.String(),
	).Scan(&idStr, &e.Title, &e.Description, &e.StartTime, &e.EndTime, &e.ExpectedVoters, &status, &createdBy, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Election{}, sentinel.ErrNotFound
		}
		return Election{}, fmt.Errorf("find election: %w", err)
	}

	e.ID, err = id.ParseElectionID(idStr)
	if err != nil {
		return Election{}, fmt.Errorf("stored election id invalid: %w", err)
	}
	e.Status = Status(status)
	if e.CreatedBy, err = id.ParseAdminID(createdBy); err != nil {
		return Election{}, fmt.Errorf("stored created_by invalid: %w", err)
	}

	if e.Candidates, err = s.loadCandidates(ctx, electionID); err != nil {
		return Election{}, err
	}
	return e, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Election, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM elections ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	defer rows.Close()

	var ids []id.ElectionID
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, fmt.Errorf("scan election id: %w", err)
		}
		electionID, err := id.ParseElectionID(idStr)
		if err != nil {
			return nil, fmt.Errorf("stored election id invalid: %w", err)
		}
		ids = append(ids, electionID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate elections: %w", err)
	}

	out := make([]Election, 0, len(ids))
	for _, electionID := range ids {
		e, err := s.FindByID(ctx, electionID)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, electionID id.ElectionID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM elections WHERE id = $1`, electionID.String())
	if err != nil {
		return fmt.Errorf("delete election: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete election rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	// Votes, registrations and candidates cascade via foreign keys.
	return nil
}

func (s *PostgresStore) loadCandidates(ctx context.Context, electionID id.ElectionID) ([]Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, logo_ref FROM candidates WHERE election_id = $1 ORDER BY position`,
		electionID.String())
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		var candidateID string
		if err := rows.Scan(&candidateID, &c.Name, &c.Description, &c.LogoRef); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		c.ID = id.CandidateID(candidateID)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

func insertCandidates(ctx context.Context, tx *sql.Tx, e Election) error {
	for pos, c := range e.Candidates {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO candidates (election_id, id, name, description, logo_ref, position)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID.String(), string(c.ID), c.Name, c.Description, c.LogoRef, pos,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("insert candidate %s: %w", c.ID, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
