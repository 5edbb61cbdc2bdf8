package ids

import (
	"github.com/google/uuid"

	"github.com/fabiorvs/fake-requests/internal/infrastructure/ports"
)

var _ ports.IDGenerator = (*UUIDGenerator)(nil)

// UUIDGenerator issues random (version 4) UUIDs.
type UUIDGenerator struct{}

// New creates a new UUIDGenerator.
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string { return uuid.NewString() }
