package parking

import "regexp"

type CommandKind int

const (
	KindMalformed CommandKind = iota
	KindPayment
	KindQuery
)

func (k CommandKind) String() string {
	switch k {
	case KindPayment:
		return "payment"
	case KindQuery:
		return "query"
	default:
		return "malformed"
	}
}

// Registration is a vehicle plate, one uppercase letter followed by 2 to 10
// uppercase letters or digits.
type Registration string

const (
	whitespace          = `[\t\n\v\f\r ]`
	registrationPattern = `([A-Z][0-9A-Z]{2,10})`
	clockPattern        = `(0?[89]\.[0-5][0-9]|1[0-9]\.[0-5][0-9]|20\.00)`
)

var (
	paymentGrammar = regexp.MustCompile(`^` + whitespace + `*` + registrationPattern +
		whitespace + `+` + clockPattern + whitespace + `+` + clockPattern + whitespace + `*$`)
	queryGrammar = regexp.MustCompile(`^` + whitespace + `*` + registrationPattern +
		whitespace + `+` + clockPattern + whitespace + `*$`)
)

// Command is one decomposed input line. For queries Start carries the query
// time and End is empty.
type Command struct {
	Kind         CommandKind
	Registration Registration
	Start        string
	End          string
}

// At is the time that drives the session clock: the start of a payment or
// the moment of a query.
func (c Command) At() MinuteOfDay {
	return ParseClock(c.Start)
}

// ParseLine classifies a raw input line as a payment, a query or malformed.
func ParseLine(line string) Command {
	if m := paymentGrammar.FindStringSubmatch(line); m != nil {
		return Command{Kind: KindPayment, Registration: Registration(m[1]), Start: m[2], End: m[3]}
	}
	if m := queryGrammar.FindStringSubmatch(line); m != nil {
		return Command{Kind: KindQuery, Registration: Registration(m[1]), Start: m[2]}
	}
	return Command{Kind: KindMalformed}
}
