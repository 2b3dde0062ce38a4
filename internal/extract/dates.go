package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/models"
	"github.com/karte-health/karte/pkg/utils"
)

// dateContextWindow is the number of bytes captured on each side of a date
// match for semantic-type classification.
const dateContextWindow = 30

var (
	// MM/DD/YYYY or MM-DD-YYYY, two-digit years allowed.
	mdyPattern = regexp.MustCompile(`\b(0?[1-9]|1[0-2])[/\-](0?[1-9]|[12][0-9]|3[01])[/\-]((?:19|20)?\d{2})\b`)
	// YYYY/MM/DD or YYYY-MM-DD.
	ymdPattern = regexp.MustCompile(`\b((?:19|20)\d{2})[/\-](0?[1-9]|1[0-2])[/\-](0?[1-9]|[12][0-9]|3[01])\b`)
	// Month DD, YYYY with optional ordinal suffix.
	monthNamePattern = regexp.MustCompile(`\b(Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\s+(0?[1-9]|[12][0-9]|3[01])(?:st|nd|rd|th)?,?\s+((19|20)\d{2})\b`)
)

// dateTypeKeywords classifies a date by its surrounding context. Order is the
// match priority: the first entry whose keywords appear in the context wins.
var dateTypeKeywords = []struct {
	dateType string
	keywords []string
}{
	{"collection_date", []string{"collect", "drawn", "specimen", "sample"}},
	{"report_date", []string{"report", "resulted", "result"}},
	{"birth_date", []string{"birth", "dob", "born"}},
	{"admission_date", []string{"admit", "admission"}},
	{"discharge_date", []string{"discharge"}},
	{"service_date", []string{"service", "visit"}},
}

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Dates extracts all recognizable dates from text, normalized to YYYY-MM-DD.
// Three pattern families are applied: numeric month-first, numeric year-first,
// and written month names. Two-digit years expand to 20YY. Each mention
// carries its raw text, span, surrounding context, and a semantic type derived
// from context keywords. A match that fails to parse (e.g. an out-of-range
// day) is logged and skipped; extraction continues.
func (e *Extractor) Dates(text string) []*models.DateMention {
	var results []*models.DateMention

	for _, family := range []struct {
		pattern *regexp.Regexp
		parse   func(groups []string) (time.Time, error)
	}{
		{mdyPattern, parseMDY},
		{ymdPattern, parseYMD},
		{monthNamePattern, parseMonthName},
	} {
		for _, idx := range family.pattern.FindAllStringSubmatchIndex(text, -1) {
			raw := text[idx[0]:idx[1]]
			groups := submatches(text, idx)
			parsed, err := family.parse(groups)
			if err != nil {
				e.logger.Warn("failed to parse date", zap.String("raw", raw), zap.Error(err))
				continue
			}
			context := utils.ContextWindow(text, idx[0], idx[1], dateContextWindow)
			results = append(results, &models.DateMention{
				Date:    parsed.Format("2006-01-02"),
				RawText: raw,
				Span:    models.Span{Start: idx[0], End: idx[1]},
				Context: context,
				Type:    classifyDateContext(context),
			})
		}
	}
	return results
}

// classifyDateContext returns the semantic date type for a context window,
// or "unknown" when no keyword family matches.
func classifyDateContext(context string) string {
	contextLower := strings.ToLower(context)
	for _, entry := range dateTypeKeywords {
		if utils.ContainsAny(contextLower, entry.keywords) {
			return entry.dateType
		}
	}
	return "unknown"
}

func parseMDY(groups []string) (time.Time, error) {
	year := groups[3]
	if len(year) == 2 {
		year = "20" + year
	}
	return parseYMDParts(year, groups[1], groups[2])
}

func parseYMD(groups []string) (time.Time, error) {
	return parseYMDParts(groups[1], groups[2], groups[3])
}

func parseMonthName(groups []string) (time.Time, error) {
	prefix := strings.ToLower(groups[1])
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	month, ok := monthsByPrefix[prefix]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month %q", groups[1])
	}
	return parseYMDParts(groups[3], strconv.Itoa(int(month)), groups[2])
}

// parseYMDParts builds a date from string year/month/day, rejecting
// out-of-range combinations such as February 30.
func parseYMDParts(year, month, day string) (time.Time, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, err
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, err
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, err
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, fmt.Errorf("invalid calendar date %s-%s-%s", year, month, day)
	}
	return t, nil
}

// submatches returns the matched text for each capture group in a
// FindAllStringSubmatchIndex entry; unmatched groups yield "".
func submatches(text string, idx []int) []string {
	groups := make([]string, len(idx)/2)
	for i := 0; i < len(idx); i += 2 {
		if idx[i] >= 0 {
			groups[i/2] = text[idx[i]:idx[i+1]]
		}
	}
	return groups
}
