package logparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"trading-dashboard/internal/types"
)

var (
	dockerTimestampRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?Z?)\s+`)
	inlinePrefixRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} - `)
)

// Classifier turns raw log lines into structured events. It is a single
// forward pass: the only state carried between lines is the transient
// position record being folded, flushed when a new position header appears
// or the input ends.
type Classifier struct {
	catalog *Catalog
	now     func() time.Time
}

func NewClassifier(catalog *Catalog) *Classifier {
	return &Classifier{catalog: catalog, now: time.Now}
}

// WithClock overrides the wall-clock fallback used for lines without an
// embedded timestamp. Intended for tests and replays.
func (c *Classifier) WithClock(now func() time.Time) *Classifier {
	c.now = now
	return c
}

// Classify processes lines in order and returns the emitted events.
// Unmatched lines become General events with the raw text preserved; blank
// lines are skipped. Position detail lines fold into the open record and
// emit nothing on their own; a detail value that fails numeric parsing
// leaves its field absent instead of producing a separate event.
func (c *Classifier) Classify(lines []string) []types.LogEvent {
	events := make([]types.LogEvent, 0, len(lines))
	var cur *types.PositionRecord

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		ts, line := c.splitTimestamp(line)
		line = inlinePrefixRe.ReplaceAllString(line, "")

		rule, fields, ok := c.catalog.Match(line)
		if !ok {
			events = append(events, types.LogEvent{
				Timestamp: ts,
				Kind:      types.KindGeneral,
				RawText:   line,
			})
			continue
		}

		switch rule.Name {
		case RulePositionHeader:
			if cur != nil {
				events = append(events, positionEvent(cur))
			}
			cur = &types.PositionRecord{
				Symbol:     fields["symbol"],
				Side:       types.Side(fields["side"]),
				ObservedAt: ts,
			}

		case RulePositionSize:
			if cur == nil {
				events = append(events, generalEvent(ts, line))
				continue
			}
			if v, err := strconv.ParseFloat(fields["size"], 64); err == nil {
				cur.Size, cur.HasSize = v, true
			}

		case RuleEntryPrice:
			if cur == nil {
				events = append(events, generalEvent(ts, line))
				continue
			}
			if v, err := strconv.ParseFloat(fields["price"], 64); err == nil {
				cur.EntryPrice, cur.HasEntry = v, true
			}

		case RuleCurrentPrice:
			if cur == nil {
				events = append(events, generalEvent(ts, line))
				continue
			}
			if v, err := strconv.ParseFloat(fields["price"], 64); err == nil {
				cur.CurrentPrice, cur.HasCurrent = v, true
			}

		case RulePriceMovement:
			if cur == nil {
				events = append(events, generalEvent(ts, line))
				continue
			}
			if v, err := strconv.ParseFloat(strings.TrimSuffix(fields["movement"], "%"), 64); err == nil {
				cur.PriceMovement, cur.HasMovement = v, true
			}

		case RuleNewPosition:
			if cur == nil {
				events = append(events, generalEvent(ts, line))
				continue
			}
			cur.IsNew = true

		default:
			events = append(events, types.LogEvent{
				Timestamp: ts,
				Kind:      rule.Kind,
				RawText:   line,
				Fields:    fields,
			})
		}
	}

	if cur != nil {
		events = append(events, positionEvent(cur))
	}
	return events
}

// splitTimestamp strips a leading ISO-8601 prefix and returns it as the
// event timestamp. Lines without one get the current wall-clock time, so
// replays of the same excerpt can legitimately differ.
func (c *Classifier) splitTimestamp(line string) (time.Time, string) {
	m := dockerTimestampRe.FindStringSubmatch(line)
	if m == nil {
		return c.now().UTC(), line
	}
	rest := strings.TrimSpace(line[len(m[0]):])
	ts, err := time.Parse(time.RFC3339Nano, m[1])
	if err != nil {
		ts, err = time.Parse("2006-01-02T15:04:05.999999999", m[1])
	}
	if err != nil {
		return c.now().UTC(), rest
	}
	return ts.UTC(), rest
}

func positionEvent(rec *types.PositionRecord) types.LogEvent {
	return types.LogEvent{
		Timestamp: rec.ObservedAt,
		Kind:      types.KindPosition,
		RawText:   string(rec.Side) + " " + rec.Symbol,
		Position:  rec,
	}
}

func generalEvent(ts time.Time, line string) types.LogEvent {
	return types.LogEvent{Timestamp: ts, Kind: types.KindGeneral, RawText: line}
}
