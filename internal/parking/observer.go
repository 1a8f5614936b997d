package parking

import "context"

// PartitionSizes is the number of entries held in each ledger partition.
type PartitionSizes struct {
	Today    int `json:"today"`
	Tomorrow int `json:"tomorrow"`
}

// Observer is notified as a Session works through its input. LineStarted may
// return a derived context which is then passed to LineFinished.
type Observer interface {
	LineStarted(ctx context.Context, line int, raw string) context.Context
	LineFinished(ctx context.Context, res Result, sizes PartitionSizes)
}

type nopObserver struct{}

func (nopObserver) LineStarted(ctx context.Context, _ int, _ string) context.Context {
	return ctx
}

func (nopObserver) LineFinished(context.Context, Result, PartitionSizes) {}

type multiObserver []Observer

// Observers fans notifications out to every observer in order.
func Observers(observers ...Observer) Observer {
	return multiObserver(observers)
}

func (m multiObserver) LineStarted(ctx context.Context, line int, raw string) context.Context {
	for _, o := range m {
		ctx = o.LineStarted(ctx, line, raw)
	}
	return ctx
}

func (m multiObserver) LineFinished(ctx context.Context, res Result, sizes PartitionSizes) {
	for _, o := range m {
		o.LineFinished(ctx, res, sizes)
	}
}
