// Package history turns user-typed filters into history store queries.
package history

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/neilberkman/whispapi/internal/core/db"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

var relative = regexp.MustCompile(`^(\d+)\s*([mhdw])$`)

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseSince resolves s relative to now. Accepts calendar dates
// ("2024-11-01"), short offsets ("90m", "12h", "3d", "2w") and English
// phrases ("yesterday", "last week", "3 days ago").
func ParseSince(s string, now time.Time) (time.Time, error) {
	return parseDate(newParser(), s, now)
}

func parseDate(w *when.Parser, s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, format := range dateFormats {
		if t, err := time.ParseInLocation(format, s, now.Location()); err == nil {
			return t, nil
		}
	}

	if m := relative.FindStringSubmatch(strings.ToLower(s)); m != nil {
		n, _ := strconv.Atoi(m[1])
		unit := map[string]time.Duration{
			"m": time.Minute,
			"h": time.Hour,
			"d": 24 * time.Hour,
			"w": 7 * 24 * time.Hour,
		}[m[2]]
		return now.Add(-time.Duration(n) * unit), nil
	}

	// "last-week" reads better on a command line than a quoted phrase
	phrase := strings.ReplaceAll(s, "-", " ")
	result, err := w.Parse(phrase, now)
	if err == nil && result != nil {
		return result.Time, nil
	}

	return time.Time{}, fmt.Errorf("could not understand date %q", s)
}

// ParseQuery extracts filters from a search string. Supported tokens:
//   - format:<f>, lang:<code>, status:<completed|failed>
//   - after:<date>, since:<date>, before:<date>
//
// Everything else becomes the full-text query.
func ParseQuery(query string, now time.Time) db.ListFilter {
	var f db.ListFilter
	w := newParser()

	var text []string
	for _, token := range strings.Fields(query) {
		key, value, ok := strings.Cut(token, ":")
		if !ok || value == "" {
			text = append(text, token)
			continue
		}

		switch strings.ToLower(key) {
		case "format":
			f.Format = strings.ToLower(value)
		case "lang", "language":
			f.Language = strings.ToLower(value)
		case "status":
			f.Status = strings.ToLower(value)
		case "after", "since", "date":
			if t, err := parseDate(w, value, now); err == nil {
				f.After = t
			}
		case "before":
			if t, err := parseDate(w, value, now); err == nil {
				f.Before = t
			}
		default:
			text = append(text, token)
		}
	}

	f.Query = strings.Join(text, " ")
	return f
}
