// Package tzc compiles parsed IANA tzdata (zic) source into TZif bytes,
// serving as a round-trip testing harness for this repository's own
// strict tzif.Decode: compile source -> encode TZif -> decode -> resolve.
package tzc

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/anttisaari/tzcore/internal/tzexpand"
	"github.com/anttisaari/tzcore/internal/unixtime"
	"github.com/anttisaari/tzcore/tzdata"
	"github.com/anttisaari/tzcore/tzif"
)

// CompileBytes parses dataBuf as IANA tzdata source and compiles every
// zone it defines into encoded TZif bytes, keyed by zone name.
func CompileBytes(dataBuf []byte) (map[string][]byte, error) {
	f, err := tzdata.Parse(bytes.NewReader(dataBuf))
	if err != nil {
		return nil, err
	}
	compiled, err := Compile(f)
	if err != nil {
		return nil, err
	}
	result := make(map[string][]byte)
	for zone, file := range compiled {
		buf := new(bytes.Buffer)
		if err := file.Encode(buf); err != nil {
			return nil, err
		}
		result[zone] = buf.Bytes()
	}
	return result, nil
}

// Compile turns a parsed tzdata.File into one tzif.File per zone it
// defines.
func Compile(f tzdata.File) (map[string]tzif.File, error) {
	// Group zone lines by zone name.
	var (
		zones    = make(map[string][]tzdata.ZoneLine)
		lastName string
	)
	for _, l := range f.ZoneLines {
		if !l.Continuation {
			lastName = l.Name
		}
		zones[lastName] = append(zones[lastName], l)
	}

	result := make(map[string]tzif.File)
	for name, zoneLines := range zones {
		z, err := compileZone(f, zoneLines)
		if err != nil {
			return nil, fmt.Errorf("compiling zone %s: %v", name, err)
		}
		result[name] = z
	}
	return result, nil
}

func appendDesignation(designations []byte, desig string) ([]byte, uint8) {
	if idx := bytes.Index(designations, append([]byte(desig), 0x00)); idx != -1 {
		return designations, uint8(idx)
	}
	return append(designations, append([]byte(desig), 0x00)...), uint8(len(designations))
}

// localTimeType is the dedup key for the local-time-type table: two
// transitions that agree on offset, DST flag, and abbreviation share one
// tzif.LocalTimeTypeRecord.
type localTimeType struct {
	utoff int32
	dst   bool
	abbr  string
}

// lttPool interns localTimeTypes into a tzif local-time-type table plus
// its backing abbreviation string table, in first-seen order.
type lttPool struct {
	designations []byte
	records      []tzif.LocalTimeTypeRecord
	index        map[localTimeType]uint8
}

func newLTTPool() *lttPool {
	return &lttPool{index: make(map[localTimeType]uint8)}
}

func (p *lttPool) intern(ltt localTimeType) uint8 {
	if idx, ok := p.index[ltt]; ok {
		return idx
	}
	var abbrevIdx uint8
	p.designations, abbrevIdx = appendDesignation(p.designations, ltt.abbr)
	idx := uint8(len(p.records))
	p.records = append(p.records, tzif.LocalTimeTypeRecord{Utoff: ltt.utoff, Dst: ltt.dst, Idx: abbrevIdx})
	p.index[ltt] = idx
	return idx
}

func compileZone(f tzdata.File, lines []tzdata.ZoneLine) (tzif.File, error) {
	var file tzif.File
	file.Version = tzif.V2

	pool := newLTTPool()

	initial, err := initialLocalTimeType(f, lines[0])
	if err != nil {
		return file, fmt.Errorf("could not identify initial local time type: %v", err)
	}
	pool.intern(initial)

	times, types, err := transitions(f, lines, pool)
	if err != nil {
		return file, fmt.Errorf("could not determine transitions: %v", err)
	}

	file.V2Data.TransitionTimes = times
	file.V2Data.TransitionTypes = types
	file.V2Data.LocalTimeTypeRecord = pool.records
	file.V2Data.TimeZoneDesignation = pool.designations

	file.V2Header.Version = tzif.V2
	file.V2Header.Timecnt = uint32(len(file.V2Data.TransitionTimes))
	file.V2Header.Typecnt = uint32(len(file.V2Data.LocalTimeTypeRecord))
	file.V2Header.Charcnt = uint32(len(file.V2Data.TimeZoneDesignation))

	footer, err := footerString(f, lines[len(lines)-1])
	if err != nil {
		return file, fmt.Errorf("could not derive posix footer: %v", err)
	}
	file.V2Footer.TZString = []byte(footer)

	copyV1(&file)

	return file, nil
}

func copyV1(file *tzif.File) {
	file.V1Data.LocalTimeTypeRecord = file.V2Data.LocalTimeTypeRecord
	file.V1Data.TimeZoneDesignation = file.V2Data.TimeZoneDesignation
	file.V1Data.TransitionTypes = file.V2Data.TransitionTypes

	for _, t := range file.V2Data.TransitionTimes {
		// Zones whose history predates the int32 Unix range lose
		// precision in the V1 block; the V2+ block carries the exact
		// value, and readers are required to prefer it.
		file.V1Data.TransitionTimes = append(file.V1Data.TransitionTimes, int32(t))
	}

	file.V1Header.Version = file.Version
	file.V1Header.Typecnt = uint32(len(file.V1Data.LocalTimeTypeRecord))
	file.V1Header.Charcnt = uint32(len(file.V1Data.TimeZoneDesignation))
	file.V1Header.Timecnt = uint32(len(file.V1Data.TransitionTimes))
}

// formatAbbrev expands a zone line's FORMAT column ("PST%sT", "EST/EDT",
// a bare fixed string) for a transition with the given rule letter
// (empty for standard time) and DST flag.
func formatAbbrev(format, letter string, dst bool) string {
	if strings.Contains(format, "/") {
		parts := strings.SplitN(format, "/", 2)
		if dst {
			return parts[1]
		}
		return parts[0]
	}
	if strings.Contains(format, "%s") {
		if letter == "-" {
			letter = ""
		}
		return strings.Replace(format, "%s", letter, 1)
	}
	return format
}

func transitions(f tzdata.File, lines []tzdata.ZoneLine, pool *lttPool) ([]int64, []uint8, error) {
	type transition struct {
		time int64
		typ  uint8
	}
	var trans []transition

	for _, l := range lines {
		utcOff := int64(time.Duration(l.Offset) / time.Second)

		if l.Rules.Form != tzdata.ZoneRulesName {
			continue
		}
		rules, err := findRules(f.RuleLines, l.Rules.Name)
		if err != nil {
			return nil, nil, err
		}
		for _, r := range rules {
			if !(r.From != tzdata.MinYear && r.From != tzdata.MaxYear && r.To == tzdata.MaxYear) {
				// Finite rule ranges and rules bounded to a single
				// Zone line's validity window require cross-
				// referencing the Zone's UNTIL column; this compiler
				// only expands rules that recur indefinitely.
				return nil, nil, fmt.Errorf("unsupported rule range %d-%d", r.From, r.To)
			}

			y, m, d := tzexpand.DayOfMonth(int(r.From), r.In, r.On)

			hours := int(time.Duration(r.At.Duration) / time.Hour)
			minutes := int(time.Duration(r.At.Duration)/time.Minute) % 60
			seconds := int(time.Duration(r.At.Duration)/time.Second) % 60

			local := unixtime.FromDateTime(y, int(m), d, hours, minutes, seconds)
			ut := local - utcOff

			dst := r.Save.Form == tzdata.DaylightSavingTime
			abbrev := formatAbbrev(l.Format, r.Letter, dst)
			ltt := localTimeType{
				utoff: int32(utcOff) + int32(time.Duration(r.Save.Duration)/time.Second),
				dst:   dst,
				abbr:  abbrev,
			}

			trans = append(trans, transition{time: ut, typ: pool.intern(ltt)})
		}
	}

	sort.Slice(trans, func(i, j int) bool { return trans[i].time < trans[j].time })

	times := make([]int64, len(trans))
	types := make([]uint8, len(trans))
	for i, t := range trans {
		times[i] = t.time
		types[i] = t.typ
	}
	return times, types, nil
}

func initialLocalTimeType(f tzdata.File, l tzdata.ZoneLine) (localTimeType, error) {
	switch l.Rules.Form {
	case tzdata.ZoneRulesStandard:
		return localTimeType{
			utoff: int32(time.Duration(l.Offset) / time.Second),
			dst:   false,
			abbr:  formatAbbrev(l.Format, "-", false),
		}, nil

	case tzdata.ZoneRulesTime:
		return localTimeType{
			utoff: int32(time.Duration(l.Offset)/time.Second) + int32(time.Duration(l.Rules.Time.Duration)/time.Second),
			dst:   true,
			abbr:  formatAbbrev(l.Format, "-", true),
		}, nil

	case tzdata.ZoneRulesName:
		rules, err := findRules(f.RuleLines, l.Rules.Name)
		if err != nil {
			return localTimeType{}, err
		}
		r := rules[0]
		dst := r.Save.Form == tzdata.DaylightSavingTime
		if r.Save.Form != tzdata.StandardTime && r.Save.Form != tzdata.DaylightSavingTime {
			return localTimeType{}, fmt.Errorf("unsupported save form %s", r.Save.Form)
		}
		return localTimeType{
			utoff: int32(time.Duration(l.Offset)/time.Second) + int32(time.Duration(r.Save.Duration)/time.Second),
			dst:   dst,
			abbr:  formatAbbrev(l.Format, r.Letter, dst),
		}, nil
	}

	return localTimeType{}, fmt.Errorf("unsupported rule form %s", l.Rules.Form)
}

func findRules(l []tzdata.RuleLine, name string) ([]tzdata.RuleLine, error) {
	var rules []tzdata.RuleLine
	for _, r := range l {
		if r.Name == name {
			rules = append(rules, r)
		}
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("no rules found for name %s", name)
	}
	return rules, nil
}

// footerString derives a POSIX TZ string (RFC 8536 section 3.3) that
// extrapolates local time past the zone's last explicit transition,
// from the open-ended (To == MaxYear) rule pair governing the final
// Zone line, so this compiler's output is decodable by this
// repository's own posixtz.Parse.
func footerString(f tzdata.File, last tzdata.ZoneLine) (string, error) {
	utcOff := int64(time.Duration(last.Offset) / time.Second)

	if last.Rules.Form != tzdata.ZoneRulesName {
		return posixOffsetString(last.Format, utcOff), nil
	}

	rules, err := findRules(f.RuleLines, last.Rules.Name)
	if err != nil {
		return "", err
	}

	var std, dst *tzdata.RuleLine
	for i := range rules {
		r := &rules[i]
		if r.To != tzdata.MaxYear {
			continue
		}
		switch r.Save.Form {
		case tzdata.StandardTime:
			std = r
		case tzdata.DaylightSavingTime:
			dst = r
		}
	}

	if std == nil || dst == nil {
		// No open-ended DST pair: the zone sits at a fixed offset
		// forever from here on.
		abbrev := last.Format
		if std != nil {
			abbrev = formatAbbrev(last.Format, std.Letter, false)
		}
		return posixOffsetString(abbrev, utcOff), nil
	}

	stdAbbrev := formatAbbrev(last.Format, std.Letter, false)
	dstAbbrev := formatAbbrev(last.Format, dst.Letter, true)
	dstOff := utcOff + int64(time.Duration(dst.Save.Duration)/time.Second)

	stdRule, err := ruleToPosixDate(*std)
	if err != nil {
		return "", fmt.Errorf("standard rule: %w", err)
	}
	dstRule, err := ruleToPosixDate(*dst)
	if err != nil {
		return "", fmt.Errorf("dst rule: %w", err)
	}

	return fmt.Sprintf("%s%s%s%s,%s,%s",
		stdAbbrev, posixOffset(-utcOff), dstAbbrev, posixOffset(-dstOff), dstRule, stdRule), nil
}

func posixOffsetString(abbrev string, utcOff int64) string {
	return fmt.Sprintf("%s%s", abbrev, posixOffset(-utcOff))
}

// posixOffset formats a signed count of seconds east of UTC as the
// POSIX "[+-]h[:mm[:ss]]" offset field.
func posixOffset(secs int64) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if s != 0 {
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
	}
	if m != 0 {
		return fmt.Sprintf("%s%d:%02d", sign, h, m)
	}
	return fmt.Sprintf("%s%d", sign, h)
}

// ruleToPosixDate converts an indefinitely-recurring RuleLine's ON/AT
// columns into a POSIX "Mm.w.d[/time]" rule field. Only the weekday-
// relative day forms (the last Weekday, or the first/last Weekday
// on-or-after/before a given day number) have a faithful POSIX
// representation; a bare fixed day-of-month does not, since POSIX's
// Julian forms name a day of the *year*, not of a specific month.
func ruleToPosixDate(r tzdata.RuleLine) (string, error) {
	month := int(r.In)

	var week, weekday int
	switch r.On.Form {
	case tzdata.DayFormLast:
		week = 5
		weekday = int(r.On.Day)
	case tzdata.DayFormAfter:
		weekday = int(r.On.Day)
		week = (r.On.Num-1)/7 + 1
		if week > 4 {
			week = 4
		}
	case tzdata.DayFormBefore:
		weekday = int(r.On.Day)
		week = r.On.Num / 7
		if week < 1 {
			week = 1
		}
		if week > 4 {
			week = 4
		}
	default:
		return "", fmt.Errorf("day form %s has no direct POSIX rule equivalent", r.On.Form)
	}

	secs := int64(time.Duration(r.At.Duration) / time.Second)
	if secs == 7200 {
		return fmt.Sprintf("M%d.%d.%d", month, week, weekday), nil
	}
	return fmt.Sprintf("M%d.%d.%d/%s", month, week, weekday, posixOffset(secs)), nil
}
