package policy

import (
	"sync/atomic"

	"github.com/jwalitptl/passwordguard/internal/model"
)

// Provider hands out the current policy snapshot. Reconfiguration replaces
// the whole snapshot atomically; readers on the check path never lock and
// never observe a partially updated policy.
type Provider struct {
	current    atomic.Pointer[model.PolicySnapshot]
	generation atomic.Int64
}

// NewProvider seeds the provider with an initial snapshot.
func NewProvider(initial model.PolicySnapshot) *Provider {
	p := &Provider{}
	p.Replace(initial)
	return p
}

// Snapshot returns the active policy by value; callers own the copy.
func (p *Provider) Snapshot() model.PolicySnapshot {
	return *p.current.Load()
}

// Replace installs a new snapshot, stamping it with the next generation.
func (p *Provider) Replace(snap model.PolicySnapshot) int64 {
	gen := p.generation.Add(1)
	snap.Generation = gen
	p.current.Store(&snap)
	return gen
}
