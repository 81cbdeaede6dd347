package ballot

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	platformRedis "votegate/internal/platform/redis"
	id "votegate/pkg/domain"
	"votegate/pkg/platform/circuit"
	"votegate/pkg/platform/sentinel"
)

// reservationTTL bounds how long a crashed request can hold a reservation
// before the slot frees itself. The database unique key remains the
// authoritative check either way.
const reservationTTL = 30 * time.Second

// RedisGuard is an optional cross-instance reservation in front of the
// ledger insert. SET NX either claims the (election, voter) slot or reports
// it taken, shedding duplicate requests before they reach the database.
//
// A circuit breaker turns redis outages into a pass-through: while the
// breaker is open casts skip the reservation and rely solely on the
// store's unique key.
type RedisGuard struct {
	client   *platformRedis.Client
	breaker  *circuit.Breaker
	attempts atomic.Uint64
	logger   *slog.Logger
}

const probeInterval = 10

// NewRedisGuard wraps the shared redis client.
func NewRedisGuard(client *platformRedis.Client, logger *slog.Logger) *RedisGuard {
	return &RedisGuard{
		client:  client,
		breaker: circuit.New("vote-reservation", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(2)),
		logger:  logger,
	}
}

// Reserve claims the slot for one cast attempt. Returns
// sentinel.ErrConflict when another attempt holds it. Redis failures never
// block a cast; they trip the breaker and fall through.
func (g *RedisGuard) Reserve(ctx context.Context, electionID id.ElectionID, voterHash id.VoterHash) error {
	// While open, only every probeInterval-th attempt touches redis so the
	// breaker can observe recovery without adding latency to every cast.
	if g.breaker.IsOpen() && g.attempts.Add(1)%probeInterval != 0 {
		return nil
	}

	key := reservationKey(electionID, voterHash)
	ok, err := g.client.SetNX(ctx, key, "reserved", reservationTTL).Result()
	if err != nil {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "vote reservation degraded, relying on store uniqueness",
				"error", err.Error(),
			)
		}
		return nil
	}

	g.breaker.RecordSuccess()
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

// Release frees a reservation after a failed cast so the voter can retry.
func (g *RedisGuard) Release(ctx context.Context, electionID id.ElectionID, voterHash id.VoterHash) {
	if g.breaker.IsOpen() {
		return
	}
	g.client.Del(ctx, reservationKey(electionID, voterHash))
}

func reservationKey(electionID id.ElectionID, voterHash id.VoterHash) string {
	return fmt.Sprintf("votegate:cast:%s:%s", electionID, voterHash)
}
