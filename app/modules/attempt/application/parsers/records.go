package parsers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	timeColumnNames        = []string{"time", "result", "solve"}
	performedAtColumnNames = []string{"performed_at", "date", "performed"}
	penaltyColumnNames     = []string{"penalty"}
	dnfColumnNames         = []string{"dnf"}

	dateLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

type columns struct {
	time, performedAt, penalty, dnf int
}

// parseRecords is shared by every format. The first non-blank record is the
// header; line numbers in errors are 1-based over the whole file.
func parseRecords(records [][]string, now time.Time) ([]Row, error) {
	header := -1
	for i, r := range records {
		if !isBlank(r) {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, fmt.Errorf("file has no header row")
	}

	cols := columns{
		time:        findColumn(records[header], timeColumnNames),
		performedAt: findColumn(records[header], performedAtColumnNames),
		penalty:     findColumn(records[header], penaltyColumnNames),
		dnf:         findColumn(records[header], dnfColumnNames),
	}
	if cols.time < 0 {
		return nil, fmt.Errorf("%w: time", ErrMissingColumn)
	}

	dates := newDateParser()
	rows := make([]Row, 0, len(records)-header-1)
	for i := header + 1; i < len(records); i++ {
		record := records[i]
		if isBlank(record) {
			continue
		}
		row, err := parseRow(record, cols, dates, now, len(rows))
		if err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrInvalidRow, i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string, cols columns, dates *dateParser, now time.Time, index int) (Row, error) {
	var row Row

	ms, dnf, err := ParseSolveTime(cell(record, cols.time))
	if err != nil {
		return row, err
	}
	row.Milliseconds, row.DNF = ms, dnf

	if v := cell(record, cols.dnf); v != "" {
		flag, err := parseFlag(v)
		if err != nil {
			return row, err
		}
		row.DNF = row.DNF || flag
	}

	if v := cell(record, cols.penalty); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 0 {
			return row, fmt.Errorf("penalty %q is not a non-negative integer", v)
		}
		row.Penalty = p
	}

	// Rows without a date keep file order: the first row is the newest.
	row.PerformedAt = now.Add(-time.Duration(index) * time.Second)
	if v := cell(record, cols.performedAt); v != "" {
		t, err := dates.parse(v, now)
		if err != nil {
			return row, err
		}
		row.PerformedAt = t
	}
	row.PerformedAt = row.PerformedAt.UTC()

	return row, nil
}

// ParseSolveTime reads "ss.xx", "m:ss.xx", "h:mm:ss.xx", "DNF" and
// "DNF(ss.xx)" into milliseconds.
func ParseSolveTime(s string) (ms int, dnf bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, fmt.Errorf("time is empty")
	}

	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "DNF") {
		inner := strings.TrimSpace(strings.TrimPrefix(upper, "DNF"))
		if inner == "" {
			return 0, true, nil
		}
		if !strings.HasPrefix(inner, "(") || !strings.HasSuffix(inner, ")") {
			return 0, false, fmt.Errorf("time %q is not recognised", s)
		}
		ms, _, err := ParseSolveTime(inner[1 : len(inner)-1])
		return ms, true, err
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false, fmt.Errorf("time %q has too many fields", s)
	}

	secs, err := parseSeconds(parts[len(parts)-1])
	if err != nil {
		return 0, false, fmt.Errorf("time %q: %w", s, err)
	}
	total := secs
	unit := 60_000
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return 0, false, fmt.Errorf("time %q is not recognised", s)
		}
		total += n * unit
		unit *= 60
	}
	return total, false, nil
}

// parseSeconds reads "12", "12.3", "12.34" or "12.345" as milliseconds.
func parseSeconds(s string) (int, error) {
	whole, frac, _ := strings.Cut(s, ".")
	secs, err := strconv.Atoi(whole)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("seconds %q are not a number", s)
	}
	if len(frac) > 3 {
		return 0, fmt.Errorf("seconds %q have more than millisecond precision", s)
	}
	ms := 0
	if frac != "" {
		ms, err = strconv.Atoi(frac + strings.Repeat("0", 3-len(frac)))
		if err != nil || ms < 0 {
			return 0, fmt.Errorf("seconds %q are not a number", s)
		}
	}
	return secs*1000 + ms, nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "dnf", "x":
		return true, nil
	case "0", "false", "no", "n", "-":
		return false, nil
	}
	return false, fmt.Errorf("dnf flag %q is not recognised", s)
}

type dateParser struct {
	w *when.Parser
}

func newDateParser() *dateParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &dateParser{w: w}
}

// parse tries fixed layouts first and falls back to natural language
// ("yesterday 6pm", "last friday") relative to now.
func (d *dateParser) parse(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	r, err := d.w.Parse(strings.ToLower(s), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("performed_at %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("performed_at %q is not a recognised date", s)
	}
	return r.Time, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// findColumn searches for a column by multiple possible names (case-insensitive).
// Spaces, underscores and hyphens are ignored.
func findColumn(header []string, possibleNames []string) int {
	for i, col := range header {
		colNorm := normalizeHeader(col)
		for _, name := range possibleNames {
			if colNorm == normalizeHeader(name) {
				return i
			}
		}
	}
	return -1
}

func normalizeHeader(s string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}
