package parking

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"parking-payments/internal/logging"
)

// Session owns the ledger and the session clock for one run over an input
// stream. Lines must be fed in input order; a Session is not safe for
// concurrent use.
type Session struct {
	ledger   *Ledger
	clock    MinuteOfDay
	line     int
	out      io.Writer
	errOut   io.Writer
	observer Observer
}

type Option func(*Session)

func WithObserver(observer Observer) Option {
	return func(s *Session) {
		s.observer = observer
	}
}

// NewSession returns a session writing OK/YES/NO lines to out and ERROR lines
// to errOut.
func NewSession(out, errOut io.Writer, opts ...Option) *Session {
	s := &Session{
		ledger:   NewLedger(),
		out:      out,
		errOut:   errOut,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes r line by line until end of input. It returns nil at end of
// input, the read error if r fails, the write error if a sink fails, or the
// context error once ctx is cancelled.
func (s *Session) Run(ctx context.Context, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		readErr <- readLines(ctx, r, lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-lines:
			if !ok {
				return <-readErr
			}
			if err := s.emit(s.Process(ctx, raw)); err != nil {
				return err
			}
		}
	}
}

func readLines(ctx context.Context, r io.Reader, lines chan<- string) error {
	reader := bufio.NewReader(r)
	for {
		raw, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if raw != "" {
			select {
			case lines <- strings.TrimSuffix(raw, "\n"):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

func (s *Session) emit(res Result) error {
	w := s.out
	if res.Verdict == VerdictError {
		w = s.errOut
	}
	_, err := fmt.Fprintln(w, res)
	return err
}

// Process handles the next input line and returns its verdict without
// writing it anywhere.
func (s *Session) Process(ctx context.Context, raw string) Result {
	s.line++
	ctx = s.observer.LineStarted(ctx, s.line, raw)
	res := s.process(ctx, raw)
	res.Clock = s.clock
	s.observer.LineFinished(ctx, res, s.Sizes())
	return res
}

func (s *Session) process(ctx context.Context, raw string) Result {
	res := Result{Line: s.line}

	cmd := ParseLine(raw)
	res.Kind = cmd.Kind
	if cmd.Kind == KindMalformed {
		res.Verdict = VerdictError
		res.Err = lineError(s.line, ErrMalformedInput)
		return res
	}
	res.Registration = cmd.Registration

	at := cmd.At()
	var end MinuteOfDay
	if cmd.Kind == KindPayment {
		end = ParseClock(cmd.End)
		if !IsParkingTimeValid(at, end) {
			res.Verdict = VerdictError
			res.Err = lineError(s.line, ErrInvalidDuration)
			return res
		}
	}

	if at < s.clock {
		carried := s.ledger.AdvanceDay()
		res.Rollover = true
		logging.Debug(ctx, "day rolled over",
			"line", s.line,
			"previous_clock", s.clock.String(),
			"clock", at.String(),
			"carried", carried,
		)
	}
	s.clock = at

	switch cmd.Kind {
	case KindPayment:
		partition, recorded := s.ledger.RegisterPayment(cmd.Registration, at, end)
		res.Partition = partition
		res.Absorbed = !recorded
		if res.Absorbed {
			logging.Debug(ctx, "payment absorbed by overnight parking",
				"line", s.line,
				"registration", string(cmd.Registration),
			)
		}
		res.Verdict = VerdictOK
	case KindQuery:
		res.Verdict = VerdictNo
		if s.ledger.Validate(cmd.Registration, at) {
			res.Verdict = VerdictYes
		}
	}
	return res
}

func (s *Session) Sizes() PartitionSizes {
	return PartitionSizes{
		Today:    s.ledger.Len(PartitionToday),
		Tomorrow: s.ledger.Len(PartitionTomorrow),
	}
}

// Clock is the minute of the most recently accepted line.
func (s *Session) Clock() MinuteOfDay {
	return s.clock
}
