package types

import (
	"context"
	"sync"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// AllowListGate is an in-memory AccessGate. When checking is disabled every
// reader is allowed.
type AllowListGate struct {
	mu      sync.RWMutex
	enabled bool
	readers map[string]struct{}
}

var _ AccessGate = (*AllowListGate)(nil)

// NewAllowListGate returns a gate with checking enabled and the given readers allowed.
func NewAllowListGate(readers ...sdk.AccAddress) *AllowListGate {
	g := &AllowListGate{enabled: true, readers: make(map[string]struct{})}
	for _, r := range readers {
		g.readers[r.String()] = struct{}{}
	}
	return g
}

func (g *AllowListGate) IsAllowed(_ context.Context, reader sdk.AccAddress) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.enabled {
		return true
	}
	_, ok := g.readers[reader.String()]
	return ok
}

func (g *AllowListGate) AddAccess(reader sdk.AccAddress) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.readers[reader.String()] = struct{}{}
}

func (g *AllowListGate) RemoveAccess(reader sdk.AccAddress) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.readers, reader.String())
}

// EnableAccessCheck and DisableAccessCheck toggle enforcement.
func (g *AllowListGate) EnableAccessCheck() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enabled = true
}

func (g *AllowListGate) DisableAccessCheck() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enabled = false
}
