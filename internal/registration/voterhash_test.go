package registration

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "votegate/pkg/domain"
)

func TestDeriveVoterHash(t *testing.T) {
	electionID := id.NewElectionID()

	t.Run("produces 32 bytes of hex", func(t *testing.T) {
		hash, err := DeriveVoterHash("primary-id:AB123456", electionID)
		require.NoError(t, err)

		raw, err := hex.DecodeString(string(hash))
		require.NoError(t, err)
		assert.Len(t, raw, 32)
	})

	t.Run("salted derivation is not repeatable", func(t *testing.T) {
		first, err := DeriveVoterHash("primary-id:AB123456", electionID)
		require.NoError(t, err)
		second, err := DeriveVoterHash("primary-id:AB123456", electionID)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("different elections yield unrelated hashes", func(t *testing.T) {
		first, err := DeriveVoterHash("primary-id:AB123456", electionID)
		require.NoError(t, err)
		second, err := DeriveVoterHash("primary-id:AB123456", id.NewElectionID())
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}
