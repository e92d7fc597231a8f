// Package posixtz implements a hand-written recursive-descent decoder for
// POSIX TZ environment-variable strings, the grammar used by the TZif
// footer (RFC 8536 section 3.3) to extrapolate local time past the last
// explicit transition.
package posixtz

import (
	"strconv"

	"darvaza.org/core"
)

// ErrInvalidPosixTz is returned, wrapped with additional context, for any
// grammar or range violation in a POSIX TZ string. Partial results are
// never exposed alongside a non-nil error.
var ErrInvalidPosixTz = core.Wrap(core.ErrInvalid, "invalid posix tz string")

// twoAM is the default transition time-of-day, seconds after local
// midnight, when a rule omits the "/offset" suffix.
const twoAM = 2 * 3600

// Kind identifies which of the three shapes a TransitionDate holds.
// Only the fields documented for that Kind are meaningful; reading a
// field that belongs to another Kind is a caller error.
type Kind int

const (
	// JulianNoLeap is a day-of-year in [1,365] that never counts
	// February 29th, even in leap years. Only Day and Time are valid.
	JulianNoLeap Kind = iota
	// JulianLeap is a 0-indexed day-of-year in [0,365] that counts
	// February 29th in leap years. Only Day and Time are valid.
	JulianLeap
	// MonthWeekDay names the Week-th occurrence of Weekday in Month
	// (Week==5 means "the last occurrence"). Only Month, Week,
	// Weekday, and Time are valid.
	MonthWeekDay
)

// TransitionDate is the tagged-variant description of a recurring annual
// moment, as produced by one "rule" field of a POSIX TZ string.
type TransitionDate struct {
	Kind Kind

	// Day is the day-of-year for JulianNoLeap ([1,365]) and JulianLeap
	// ([0,365]).
	Day int
	// Month is the 1-indexed month ([1,12]) for MonthWeekDay.
	Month int
	// Week is the occurrence ordinal ([1,5], 5 meaning "last") for
	// MonthWeekDay.
	Week int
	// Weekday is 0=Sunday..6=Saturday for MonthWeekDay.
	Weekday int
	// Time is the number of seconds after local midnight the
	// transition occurs at.
	Time int
}

// RecurrenceRule is the decoded form of a POSIX TZ string: a standard
// time zone name and offset, and optionally a DST name, offset, and the
// pair of annual transition dates between the two.
//
// Offsets are signed seconds east of UTC: the POSIX string's sign is
// negated on ingest, so "PST8" (8 hours west) is stored as -28800.
type RecurrenceRule struct {
	HasDST bool

	StdName   string
	StdOffset int
	StdDate   TransitionDate

	DSTName   string
	DSTOffset int
	DSTDate   TransitionDate
}

// Parse decodes a POSIX TZ string. Any out-of-range field, unterminated
// quoted name, or structural mismatch fails the whole parse; no partial
// RecurrenceRule is returned.
func Parse(s string) (RecurrenceRule, error) {
	if len(s) < 4 {
		return RecurrenceRule{}, core.Wrapf(ErrInvalidPosixTz, "too short: %q", s)
	}

	p := &scanner{s: s}

	stdName, err := p.takeName()
	if err != nil {
		return RecurrenceRule{}, err
	}
	stdOffset, err := p.takeOffset()
	if err != nil {
		return RecurrenceRule{}, err
	}
	stdOffset = -stdOffset

	if p.atEnd() {
		return RecurrenceRule{
			HasDST:    false,
			StdName:   stdName,
			StdOffset: stdOffset,
			StdDate: TransitionDate{
				Kind: JulianLeap,
				Day:  0,
				Time: twoAM,
			},
		}, nil
	}

	dstName := ""
	dstOffset := stdOffset + 3600
	if p.peek() != ',' {
		dstName, err = p.takeName()
		if err != nil {
			return RecurrenceRule{}, err
		}
		if !p.atEnd() && p.peek() != ',' {
			dstOffset, err = p.takeOffset()
			if err != nil {
				return RecurrenceRule{}, err
			}
			dstOffset = -dstOffset
		}
	}
	if p.atEnd() || p.peek() != ',' {
		return RecurrenceRule{}, core.Wrapf(ErrInvalidPosixTz, "expected ',' before rules: %q", s)
	}
	p.advance()

	stdDate, err := p.takeRule()
	if err != nil {
		return RecurrenceRule{}, err
	}
	if p.atEnd() || p.peek() != ',' {
		return RecurrenceRule{}, core.Wrapf(ErrInvalidPosixTz, "expected ',' between rules: %q", s)
	}
	p.advance()

	dstDate, err := p.takeRule()
	if err != nil {
		return RecurrenceRule{}, err
	}

	return RecurrenceRule{
		HasDST:    true,
		StdName:   stdName,
		StdOffset: stdOffset,
		StdDate:   stdDate,
		DSTName:   dstName,
		DSTOffset: dstOffset,
		DSTDate:   dstDate,
	}, nil
}

// scanner walks a POSIX TZ string left to right. It never backtracks.
type scanner struct {
	s   string
	pos int
}

func (p *scanner) atEnd() bool { return p.pos >= len(p.s) }

func (p *scanner) peek() byte {
	if p.atEnd() {
		return 0
	}
	return p.s[p.pos]
}

func (p *scanner) advance() { p.pos++ }

func (p *scanner) rest() string { return p.s[p.pos:] }

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isQuotedChar(b byte) bool {
	return isAlpha(b) || isDigit(b) || b == '+' || b == '-'
}

// takeName consumes a std/DST name: either a bare run of alphabetic
// characters, or a "<...>"-quoted run of quoted-chars.
func (p *scanner) takeName() (string, error) {
	if p.atEnd() {
		return "", core.Wrap(ErrInvalidPosixTz, "missing name")
	}
	if p.peek() == '<' {
		p.advance()
		start := p.pos
		for !p.atEnd() && p.peek() != '>' {
			if !isQuotedChar(p.peek()) {
				return "", core.Wrapf(ErrInvalidPosixTz, "invalid character in quoted name: %q", p.rest())
			}
			p.advance()
		}
		if p.atEnd() {
			return "", core.Wrap(ErrInvalidPosixTz, "unterminated quoted name")
		}
		name := p.s[start:p.pos]
		p.advance() // consume '>'
		return name, nil
	}

	start := p.pos
	for !p.atEnd() && isAlpha(p.peek()) {
		p.advance()
	}
	if p.pos == start {
		return "", core.Wrap(ErrInvalidPosixTz, "name must be at least one alphabetic character")
	}
	return p.s[start:p.pos], nil
}

// takeOffset consumes "[+|-]h[h[h]][:mm[:ss]]" and returns the offset in
// seconds, exactly as written (i.e. not yet sign-negated for storage).
func (p *scanner) takeOffset() (int, error) {
	sign := 1
	if !p.atEnd() && (p.peek() == '+' || p.peek() == '-') {
		if p.peek() == '-' {
			sign = -1
		}
		p.advance()
	}

	hours, n := takeDigits(p.rest(), 3)
	if n == 0 {
		return 0, core.Wrap(ErrInvalidPosixTz, "missing offset hours")
	}
	if hours < 0 || hours > 167 {
		return 0, core.Wrapf(ErrInvalidPosixTz, "offset hours out of range [0,167]: %d", hours)
	}
	p.pos += n
	total := hours * 3600

	if p.atEnd() || p.peek() != ':' {
		return sign * total, nil
	}
	p.advance()

	mins, n := takeDigits(p.rest(), 2)
	if n != 2 {
		return 0, core.Wrap(ErrInvalidPosixTz, "offset minutes must be exactly two digits")
	}
	if mins < 0 || mins > 59 {
		return 0, core.Wrapf(ErrInvalidPosixTz, "offset minutes out of range [0,59]: %d", mins)
	}
	p.pos += n
	total += mins * 60

	if p.atEnd() || p.peek() != ':' {
		return sign * total, nil
	}
	p.advance()

	secs, n := takeDigits(p.rest(), 2)
	if n != 2 {
		return 0, core.Wrap(ErrInvalidPosixTz, "offset seconds must be exactly two digits")
	}
	if secs < 0 || secs > 59 {
		return 0, core.Wrapf(ErrInvalidPosixTz, "offset seconds out of range [0,59]: %d", secs)
	}
	p.pos += n
	total += secs

	return sign * total, nil
}

// takeRule consumes one "J n", "n", or "M m.w.d" rule, with an optional
// "/offset" time-of-day suffix.
func (p *scanner) takeRule() (TransitionDate, error) {
	if p.atEnd() {
		return TransitionDate{}, core.Wrap(ErrInvalidPosixTz, "missing rule")
	}

	switch {
	case p.peek() == 'J':
		p.advance()
		day, n := takeDigits(p.rest(), 3)
		if n == 0 {
			return TransitionDate{}, core.Wrap(ErrInvalidPosixTz, "missing julian day")
		}
		if day < 1 || day > 365 {
			return TransitionDate{}, core.Wrapf(ErrInvalidPosixTz, "julian day out of range [1,365]: %d", day)
		}
		p.pos += n
		t, err := p.takeRuleTime()
		if err != nil {
			return TransitionDate{}, err
		}
		return TransitionDate{Kind: JulianNoLeap, Day: day, Time: t}, nil

	case p.peek() == 'M':
		p.advance()
		month, n := takeDigits(p.rest(), 2)
		if n == 0 {
			return TransitionDate{}, core.Wrap(ErrInvalidPosixTz, "missing month")
		}
		if month < 1 || month > 12 {
			return TransitionDate{}, core.Wrapf(ErrInvalidPosixTz, "month out of range [1,12]: %d", month)
		}
		p.pos += n
		if p.atEnd() || p.peek() != '.' {
			return TransitionDate{}, core.Wrap(ErrInvalidPosixTz, "expected '.' after month")
		}
		p.advance()

		week, n := takeDigits(p.rest(), 1)
		if n == 0 {
			return TransitionDate{}, core.Wrap(ErrInvalidPosixTz, "missing week")
		}
		if week < 1 || week > 5 {
			return TransitionDate{}, core.Wrapf(ErrInvalidPosixTz, "week out of range [1,5]: %d", week)
		}
		p.pos += n
		if p.atEnd() || p.peek() != '.' {
			return TransitionDate{}, core.Wrap(ErrInvalidPosixTz, "expected '.' after week")
		}
		p.advance()

		day, n := takeDigits(p.rest(), 1)
		if n == 0 {
			return TransitionDate{}, core.Wrap(ErrInvalidPosixTz, "missing weekday")
		}
		if day < 0 || day > 6 {
			return TransitionDate{}, core.Wrapf(ErrInvalidPosixTz, "weekday out of range [0,6]: %d", day)
		}
		p.pos += n

		t, err := p.takeRuleTime()
		if err != nil {
			return TransitionDate{}, err
		}
		return TransitionDate{Kind: MonthWeekDay, Month: month, Week: week, Weekday: day, Time: t}, nil

	case isDigit(p.peek()):
		day, n := takeDigits(p.rest(), 3)
		if n == 0 {
			return TransitionDate{}, core.Wrap(ErrInvalidPosixTz, "missing day")
		}
		if day < 0 || day > 365 {
			return TransitionDate{}, core.Wrapf(ErrInvalidPosixTz, "day out of range [0,365]: %d", day)
		}
		p.pos += n
		t, err := p.takeRuleTime()
		if err != nil {
			return TransitionDate{}, err
		}
		return TransitionDate{Kind: JulianLeap, Day: day, Time: t}, nil

	default:
		return TransitionDate{}, core.Wrapf(ErrInvalidPosixTz, "unrecognized rule: %q", p.rest())
	}
}

// takeRuleTime consumes the optional "/offset" suffix of a rule,
// returning twoAM when it is absent.
func (p *scanner) takeRuleTime() (int, error) {
	if p.atEnd() || p.peek() != '/' {
		return twoAM, nil
	}
	p.advance()
	return p.takeOffset()
}

// takeDigits parses up to max leading ASCII digits from s, returning the
// parsed value and the number of digits consumed.
func takeDigits(s string, max int) (int, int) {
	n := 0
	for n < max && n < len(s) && isDigit(s[n]) {
		n++
	}
	if n == 0 {
		return 0, 0
	}
	v, err := strconv.Atoi(s[:n])
	if err != nil {
		return 0, 0
	}
	return v, n
}
