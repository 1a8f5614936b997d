package parking

type Partition int

const (
	PartitionToday Partition = iota
	PartitionTomorrow
)

func (p Partition) String() string {
	if p == PartitionTomorrow {
		return "tomorrow"
	}
	return "today"
}

// Ledger records paid-up parking as expiry minutes split between parking that
// ends today and parking that runs past midnight into tomorrow.
type Ledger struct {
	today    map[Registration]MinuteOfDay
	tomorrow map[Registration]MinuteOfDay
}

func NewLedger() *Ledger {
	return &Ledger{
		today:    make(map[Registration]MinuteOfDay),
		tomorrow: make(map[Registration]MinuteOfDay),
	}
}

// RegisterPayment records a payment and reports the partition it landed in.
// A same-day payment for a registration already parked until tomorrow leaves
// the ledger untouched and returns false.
func (l *Ledger) RegisterPayment(reg Registration, start, end MinuteOfDay) (Partition, bool) {
	_, parkedUntilTomorrow := l.tomorrow[reg]

	switch {
	case start <= end && !parkedUntilTomorrow:
		extend(l.today, reg, end)
		return PartitionToday, true
	case start > end:
		extend(l.tomorrow, reg, end)
		return PartitionTomorrow, true
	default:
		return PartitionTomorrow, false
	}
}

// extend keeps the later of the stored and the new expiry.
func extend(entries map[Registration]MinuteOfDay, reg Registration, end MinuteOfDay) {
	if previous, ok := entries[reg]; ok && previous > end {
		return
	}
	entries[reg] = end
}

// Validate reports whether reg is paid at the given time. Any entry in
// tomorrow covers the rest of today.
func (l *Ledger) Validate(reg Registration, at MinuteOfDay) bool {
	if _, ok := l.tomorrow[reg]; ok {
		return true
	}
	expiry, ok := l.today[reg]
	return ok && at <= expiry
}

// AdvanceDay promotes tomorrow's entries to today and returns how many were
// carried over.
func (l *Ledger) AdvanceDay() int {
	l.today = l.tomorrow
	l.tomorrow = make(map[Registration]MinuteOfDay)
	return len(l.today)
}

func (l *Ledger) Expiry(reg Registration) (Partition, MinuteOfDay, bool) {
	if expiry, ok := l.tomorrow[reg]; ok {
		return PartitionTomorrow, expiry, true
	}
	if expiry, ok := l.today[reg]; ok {
		return PartitionToday, expiry, true
	}
	return PartitionToday, 0, false
}

// Len returns the number of registrations held in partition p.
func (l *Ledger) Len(p Partition) int {
	if p == PartitionTomorrow {
		return len(l.tomorrow)
	}
	return len(l.today)
}
