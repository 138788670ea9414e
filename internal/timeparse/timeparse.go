// Package timeparse converts natural-language time phrases ("in 30
// minutes", "tomorrow at 9am", "monday at 3pm") into absolute instants in a
// configured timezone.
//
// Resolution walks an ordered rule cascade; the first matching rule wins and
// the order is data, not code structure. A phrase no rule understands goes
// to a fuzzy date parser as a last resort. Results are never in the past:
// an absolute clock time that already passed today rolls forward one day,
// on the assumption that users omitting the date mean the next occurrence.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Resolver turns time phrases into instants in its location.
type Resolver struct {
	loc   *time.Location
	rules []rule
}

type rule struct {
	name string
	re   *regexp.Regexp
	// absolute rules name a wall-clock instant and are subject to the
	// past-time roll-forward; relative rules are future by construction.
	absolute bool
	apply    func(r *Resolver, m []string, now time.Time) (time.Time, bool)
}

// New returns a Resolver bound to loc. A nil loc means time.Local.
func New(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	r := &Resolver{loc: loc}
	r.rules = buildRules()
	return r
}

// Location returns the resolver's timezone.
func (r *Resolver) Location() *time.Location { return r.loc }

// Resolve converts phrase into an instant strictly after now. The boolean
// is false when no rule (including the fuzzy fallback) could derive a time;
// callers must treat that as "unknown", never guess.
func (r *Resolver) Resolve(phrase string, now time.Time) (time.Time, bool) {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return time.Time{}, false
	}
	now = now.In(r.loc)

	for _, rl := range r.rules {
		m := rl.re.FindStringSubmatch(phrase)
		if m == nil {
			continue
		}
		t, ok := rl.apply(r, m, now)
		if !ok {
			continue
		}
		// Single past-time correction: an absolute result at or before now
		// means the same clock time on the next day. Applied exactly once,
		// here, so individual rules never roll forward themselves.
		if rl.absolute && !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t, true
	}

	return r.fuzzy(phrase, now)
}

// fuzzy is the last-resort parser. A result at or before now advances by
// one day ("tomorrow" was probably intended).
func (r *Resolver) fuzzy(phrase string, now time.Time) (time.Time, bool) {
	t, err := dateparse.ParseIn(phrase, r.loc)
	if err != nil {
		return time.Time{}, false
	}
	t = t.In(r.loc)
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t, true
}

func buildRules() []rule {
	return []rule{
		// Relative durations: now + N units. The leading "in" is optional
		// because extracted time phrases often arrive without it ("remind
		// me to X in 30 minutes" captures just "30 minutes").
		{
			name: "in-n-minutes",
			re:   regexp.MustCompile(`\b(?:in )?(\d+(?:\.\d+)?) minutes?\b`),
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				return addFloat(now, m[1], time.Minute)
			},
		},
		{
			name: "in-n-hours",
			re:   regexp.MustCompile(`\b(?:in )?(\d+(?:\.\d+)?) hours?\b`),
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				return addFloat(now, m[1], time.Hour)
			},
		},
		{
			name: "in-n-days",
			re:   regexp.MustCompile(`\b(?:in )?(\d+) days?\b`),
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				n, err := strconv.Atoi(m[1])
				if err != nil {
					return time.Time{}, false
				}
				return now.AddDate(0, 0, n), true
			},
		},
		{
			name: "in-n-weeks",
			re:   regexp.MustCompile(`\b(?:in )?(\d+) weeks?\b`),
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				n, err := strconv.Atoi(m[1])
				if err != nil {
					return time.Time{}, false
				}
				return now.AddDate(0, 0, 7*n), true
			},
		},
		{
			name: "n-units-from-now",
			re:   regexp.MustCompile(`\b(\d+) (minute|hour|day)s? from now\b`),
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				n, err := strconv.Atoi(m[1])
				if err != nil {
					return time.Time{}, false
				}
				switch m[2] {
				case "minute":
					return now.Add(time.Duration(n) * time.Minute), true
				case "hour":
					return now.Add(time.Duration(n) * time.Hour), true
				case "day":
					return now.AddDate(0, 0, n), true
				}
				return time.Time{}, false
			},
		},

		// Shorthands.
		{
			name: "in-half-an-hour",
			re:   regexp.MustCompile(`\b(?:in )?half (?:an? )?hour\b`),
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				return now.Add(30 * time.Minute), true
			},
		},
		{
			name: "in-an-hour",
			re:   regexp.MustCompile(`\b(?:in )?an hour\b`),
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				return now.Add(time.Hour), true
			},
		},
		{
			name: "in-a-minute",
			re:   regexp.MustCompile(`\b(?:in )?a minute\b`),
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				return now.Add(time.Minute), true
			},
		},
		{
			name: "in-a-second",
			re:   regexp.MustCompile(`\b(?:in )?a second\b`),
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				return now.Add(time.Second), true
			},
		},
		{
			name: "bare-tomorrow",
			re:   regexp.MustCompile(`^tomorrow$`),
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				next := now.AddDate(0, 0, 1)
				return time.Date(next.Year(), next.Month(), next.Day(), 9, 0, 0, 0, r.loc), true
			},
		},
		{
			name: "next-week-month",
			re:   regexp.MustCompile(`^next (week|month)$`),
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				if m[1] == "week" {
					return now.AddDate(0, 0, 7), true
				}
				return now.AddDate(0, 1, 0), true
			},
		},

		// Absolute clock times. The reference day is today (or tomorrow);
		// the timezone is always re-attached explicitly via time.Date.
		{
			name: "tomorrow-at",
			re:   regexp.MustCompile(`\btomorrow at (\d{1,2}):?(\d{0,2})\s*(am|pm)?\b`),
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				return r.onDay(now.AddDate(0, 0, 1), m[1], m[2], m[3], now)
			},
		},
		{
			name:     "today-at",
			re:       regexp.MustCompile(`\btoday at (\d{1,2}):?(\d{0,2})\s*(am|pm)?\b`),
			absolute: true,
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				return r.onDay(now, m[1], m[2], m[3], now)
			},
		},
		{
			name:     "weekday-at",
			re:       regexp.MustCompile(`\b(?:on )?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)(?: at (\d{1,2}):?(\d{0,2})\s*(am|pm)?)?\b`),
			absolute: true,
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				target, ok := weekdays[m[1]]
				if !ok {
					return time.Time{}, false
				}
				// Next occurrence strictly after now: the same weekday rolls
				// a full week, never "today".
				ahead := (int(target) - int(now.Weekday()) + 7) % 7
				if ahead == 0 {
					ahead = 7
				}
				day := now.AddDate(0, 0, ahead)
				if m[2] == "" {
					return time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, r.loc), true
				}
				return r.onDay(day, m[2], m[3], m[4], now)
			},
		},
		{
			name:     "at-clock",
			re:       regexp.MustCompile(`\bat (\d{1,2}):?(\d{0,2})\s*(am|pm)?\b`),
			absolute: true,
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				return r.onDay(now, m[1], m[2], m[3], now)
			},
		},
		// A phrase that is nothing but a clock time ("3pm", "9:30am") —
		// the usual shape of a captured time phrase once "at" belongs to
		// the surrounding template. Anchored so stray numbers inside
		// longer phrases never match.
		{
			name:     "bare-clock",
			re:       regexp.MustCompile(`^(\d{1,2}):?(\d{0,2})\s*(am|pm)?$`),
			absolute: true,
			apply: func(r *Resolver, m []string, now time.Time) (time.Time, bool) {
				return r.onDay(now, m[1], m[2], m[3], now)
			},
		},
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// onDay builds an instant on ref's date from captured hour/minute/am-pm
// strings, in the resolver's location.
func (r *Resolver) onDay(ref time.Time, hourStr, minStr, ampm string, now time.Time) (time.Time, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour > 23 {
		return time.Time{}, false
	}
	minute := 0
	if minStr != "" {
		if minute, err = strconv.Atoi(minStr); err != nil || minute > 59 {
			return time.Time{}, false
		}
	}
	hour = resolveHour(hour, ampm, now)
	return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, r.loc), true
}

// resolveHour applies am/pm, defaulting ambiguous 12-hour values by
// heuristic when neither marker is present: 1-7 lean PM, 8-11 lean PM only
// in the afternoon, 12 is noon unless "am" is explicit. Hours >= 13 are
// taken as 24-hour times. Documented ambiguity, not a guarantee.
func resolveHour(hour int, ampm string, now time.Time) int {
	switch ampm {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	default:
		switch {
		case hour >= 13 || hour == 12 || hour == 0:
			// 24-hour, noon, or midnight: take as given.
		case hour <= 7:
			hour += 12
		case now.Hour() >= 12:
			hour += 12
		}
	}
	return hour
}

func addFloat(now time.Time, numStr string, unit time.Duration) (time.Time, bool) {
	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return time.Time{}, false
	}
	return now.Add(time.Duration(f * float64(unit))), true
}
