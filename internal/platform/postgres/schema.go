package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates all tables needed by the postgres-backed stores.
// Safe to call multiple times - uses IF NOT EXISTS.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS elections (
    id UUID PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_time TIMESTAMPTZ NOT NULL,
    end_time TIMESTAMPTZ NOT NULL,
    expected_voters INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'active', 'completed')),
    created_by UUID NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS candidates (
    election_id UUID NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    logo_ref TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL,
    PRIMARY KEY (election_id, id)
);

CREATE TABLE IF NOT EXISTS registrations (
    id UUID PRIMARY KEY,
    election_id UUID NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    registrant_id TEXT NOT NULL,
    voter_hash TEXT NOT NULL,
    registered_at TIMESTAMPTZ NOT NULL,
    UNIQUE (election_id, registrant_id),
    UNIQUE (election_id, voter_hash)
);

CREATE INDEX IF NOT EXISTS idx_registrations_registrant ON registrations(registrant_id);

-- The UNIQUE (election_id, voter_hash) key is the atomic check-then-act for
-- duplicate votes: a second insert for the same pair fails at commit time.
CREATE TABLE IF NOT EXISTS votes (
    id UUID PRIMARY KEY,
    election_id UUID NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    candidate_id TEXT NOT NULL,
    voter_hash TEXT NOT NULL,
    ciphertext BYTEA NOT NULL,
    nonce BYTEA NOT NULL,
    integrity_tag TEXT NOT NULL,
    cast_at TIMESTAMPTZ NOT NULL,
    UNIQUE (election_id, voter_hash)
);

CREATE INDEX IF NOT EXISTS idx_votes_election ON votes(election_id);

CREATE TABLE IF NOT EXISTS audit_events (
    id BIGSERIAL PRIMARY KEY,
    category TEXT NOT NULL,
    action TEXT NOT NULL,
    actor TEXT NOT NULL DEFAULT '',
    subject TEXT NOT NULL DEFAULT '',
    election_id TEXT NOT NULL DEFAULT '',
    decision TEXT NOT NULL DEFAULT '',
    reason TEXT NOT NULL DEFAULT '',
    request_id TEXT NOT NULL DEFAULT '',
    occurred_at TIMESTAMPTZ NOT NULL
);
`
