package parking

import (
	"context"
	"sync"
)

// SessionStats is the JSON view of a session served on /api/session/stats.
type SessionStats struct {
	Lines     int            `json:"lines"`
	Verdicts  map[string]int `json:"verdicts"`
	Rollovers int            `json:"rollovers"`
	Clock     string         `json:"clock,omitempty"`
	Ledger    PartitionSizes `json:"ledger"`
}

// Tally keeps a snapshot of session progress that other goroutines may read
// while the session runs.
type Tally struct {
	mu    sync.RWMutex
	stats SessionStats
}

func NewTally() *Tally {
	return &Tally{stats: SessionStats{Verdicts: make(map[string]int)}}
}

func (t *Tally) LineStarted(ctx context.Context, _ int, _ string) context.Context {
	return ctx
}

func (t *Tally) LineFinished(_ context.Context, res Result, sizes PartitionSizes) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Lines = res.Line
	t.stats.Verdicts[res.Verdict.String()]++
	if res.Rollover {
		t.stats.Rollovers++
	}
	if res.Clock > 0 {
		t.stats.Clock = res.Clock.String()
	}
	t.stats.Ledger = sizes
}

func (t *Tally) Snapshot() SessionStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := t.stats
	snapshot.Verdicts = make(map[string]int, len(t.stats.Verdicts))
	for verdict, n := range t.stats.Verdicts {
		snapshot.Verdicts[verdict] = n
	}
	return snapshot
}
