package election

import (
	"context"

	id "votegate/pkg/domain"
)

// Store persists election definitions. Implementations are interface-driven
// so the in-memory and postgres variants are interchangeable without
// rewiring business code. Stores return pkg/platform/sentinel errors.
type Store interface {
	Save(ctx context.Context, e Election) error
	Update(ctx context.Context, e Election) error
	FindByID(ctx context.Context, electionID id.ElectionID) (Election, error)
	List(ctx context.Context) ([]Election, error)
	Delete(ctx context.Context, electionID id.ElectionID) error
}
