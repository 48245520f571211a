// Package multiasset implements the shared-clock, per-asset-stack
// container: each asset runs its own independent tape/depth/queue/
// latency/exchange stack, multiplexed over one shared virtual clock.
package multiasset

import "github.com/abdoElHodaky/hftbacktest/internal/backtest"

// Book holds one backtest.Runtime per asset, all sharing a single Clock.
// There is no locking: correctness comes from the ordered arbitration
// each Runtime performs independently, not from parallelism.
type Book struct {
	Clock    *backtest.Clock
	runtimes []*backtest.Runtime
	names    map[string]int
}

// NewBook starts a shared clock at startTS with no assets registered yet.
func NewBook(startTS int64) *Book {
	return &Book{Clock: backtest.NewClock(startTS), names: make(map[string]int)}
}

// Add registers a per-asset Runtime (already constructed against Book's
// Clock) under name, returning its stable index.
func (b *Book) Add(name string, r *backtest.Runtime) int {
	idx := len(b.runtimes)
	b.runtimes = append(b.runtimes, r)
	b.names[name] = idx
	return idx
}

// Runtime returns the runtime at idx.
func (b *Book) Runtime(idx int) *backtest.Runtime { return b.runtimes[idx] }

// RuntimeByName returns the runtime registered under name.
func (b *Book) RuntimeByName(name string) (*backtest.Runtime, bool) {
	idx, ok := b.names[name]
	if !ok {
		return nil, false
	}
	return b.runtimes[idx], true
}

// Runtimes returns every registered runtime, in registration order — the
// order Hbt.Elapse iterates when advancing every asset together.
func (b *Book) Runtimes() []*backtest.Runtime { return b.runtimes }

// Len reports how many assets are registered.
func (b *Book) Len() int { return len(b.runtimes) }
