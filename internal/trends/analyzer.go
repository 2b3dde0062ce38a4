// Package trends analyzes a patient's findings history across documents:
// measurement time series with summary statistics, significant change
// events, condition and medication timelines, and adherence signals.
package trends

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/models"
	"github.com/karte-health/karte/pkg/utils"
)

// ErrInsufficientHistory is returned when fewer than two dated findings
// records are supplied; trends need at least two points in time.
var ErrInsufficientHistory = errors.New("trends: at least two documents required")

// Analyzer computes trend reports. Thresholds come from configuration.
type Analyzer struct {
	changePercentThreshold float64
	adherenceGapDays       float64
	logger                 *zap.Logger
}

// NewAnalyzer creates a trend analyzer. changePercentThreshold is the minimum
// absolute percent change reported as an event; adherenceGapDays is the
// average observation gap above which a medication is flagged.
func NewAnalyzer(changePercentThreshold, adherenceGapDays float64, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		changePercentThreshold: changePercentThreshold,
		adherenceGapDays:       adherenceGapDays,
		logger:                 logger,
	}
}

var leadingNumber = regexp.MustCompile(`\d+\.?\d*`)

// dateLayouts are tried in order when parsing document dates.
var dateLayouts = []string{
	"2006-01-02", "2006/01/02", "01/02/2006", "1/2/2006",
	"01-02-2006", "January 2, 2006", "Jan 2, 2006", "January 2 2006",
}

// Analyze builds a trend report over the supplied history. Records are
// ordered by parsed document date; if any date fails to parse, the supplied
// order is kept as-is and a warning is logged.
func (a *Analyzer) Analyze(history []*models.DatedFindings) (*models.TrendReport, error) {
	if len(history) < 2 {
		return nil, ErrInsufficientHistory
	}

	ordered := a.sortByDate(history)

	report := &models.TrendReport{
		Measurements: make(map[string]*models.MeasurementTrend),
		Conditions:   make(map[string][]string),
		Medications:  make(map[string][]string),
	}

	a.collectMeasurements(ordered, report)
	a.collectTimelines(ordered, report)
	a.detectChanges(report)
	a.detectAdherencePatterns(report)
	return report, nil
}

// sortByDate returns history ordered by parsed date, oldest first. Any
// unparseable date disables the sort to avoid interleaving documents wrongly.
func (a *Analyzer) sortByDate(history []*models.DatedFindings) []*models.DatedFindings {
	type dated struct {
		entry *models.DatedFindings
		when  time.Time
	}
	parsed := make([]dated, len(history))
	for i, entry := range history {
		when, ok := parseDate(entry.Date)
		if !ok {
			a.logger.Warn("unparseable document date, keeping supplied order",
				zap.String("date", entry.Date))
			return history
		}
		parsed[i] = dated{entry: entry, when: when}
	}
	sort.SliceStable(parsed, func(i, j int) bool { return parsed[i].when.Before(parsed[j].when) })
	ordered := make([]*models.DatedFindings, len(parsed))
	for i, d := range parsed {
		ordered[i] = d.entry
	}
	return ordered
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// collectMeasurements builds per-category time series. The first numeric
// token of each raw measurement value is taken as the observation.
func (a *Analyzer) collectMeasurements(history []*models.DatedFindings, report *models.TrendReport) {
	for _, entry := range history {
		if entry.Findings == nil {
			continue
		}
		for name, measurements := range entry.Findings.Measurements {
			for _, m := range measurements {
				token := leadingNumber.FindString(m.Value)
				if token == "" {
					continue
				}
				value, err := strconv.ParseFloat(token, 64)
				if err != nil {
					a.logger.Warn("unparseable measurement value",
						zap.String("measurement", name), zap.String("raw", m.Value))
					continue
				}
				trend := report.Measurements[name]
				if trend == nil {
					trend = &models.MeasurementTrend{}
					report.Measurements[name] = trend
				}
				trend.Series = append(trend.Series, &models.TrendPoint{
					Date:     entry.Date,
					Value:    value,
					Original: m.Value,
				})
			}
		}
	}

	for _, trend := range report.Measurements {
		if len(trend.Series) < 2 {
			continue
		}
		values := make([]float64, len(trend.Series))
		for i, p := range trend.Series {
			values[i] = p.Value
		}
		trend.Stats = &models.TrendStats{
			Min:            utils.Min(values),
			Max:            utils.Max(values),
			Mean:           utils.Mean(values),
			Median:         utils.Median(values),
			StdDev:         utils.StdDev(values),
			TrendDirection: direction(values[0], values[len(values)-1]),
			DataPoints:     len(values),
		}
	}
}

func direction(first, last float64) string {
	switch {
	case last > first:
		return "increasing"
	case last < first:
		return "decreasing"
	default:
		return "stable"
	}
}

// collectTimelines maps each condition and medication to the dates of the
// documents mentioning it.
func (a *Analyzer) collectTimelines(history []*models.DatedFindings, report *models.TrendReport) {
	for _, entry := range history {
		if entry.Findings == nil {
			continue
		}
		for _, c := range entry.Findings.Conditions {
			report.Conditions[c] = append(report.Conditions[c], entry.Date)
		}
		for _, m := range entry.Findings.Medications {
			report.Medications[m] = append(report.Medications[m], entry.Date)
		}
	}
}

// detectChanges emits a change event for each consecutive pair of document
// dates whose readings shift by more than the configured threshold. Multiple
// readings on one date collapse to the latest; readings within a single
// document never produce an event.
func (a *Analyzer) detectChanges(report *models.TrendReport) {
	names := make([]string, 0, len(report.Measurements))
	for name := range report.Measurements {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		perDate := latestPerDate(report.Measurements[name].Series)
		for i := 1; i < len(perDate); i++ {
			prev, cur := perDate[i-1], perDate[i]
			if prev.Value == 0 {
				continue
			}
			pct := (cur.Value - prev.Value) / prev.Value * 100
			if math.Abs(pct) <= a.changePercentThreshold {
				continue
			}
			dir := "increase"
			if pct < 0 {
				dir = "decrease"
			}
			report.Changes = append(report.Changes, &models.ChangeEvent{
				Type:          "measurement_change",
				Name:          name,
				FromDate:      prev.Date,
				ToDate:        cur.Date,
				FromValue:     prev.Value,
				ToValue:       cur.Value,
				ChangePercent: pct,
				Direction:     dir,
			})
		}
	}
}

// latestPerDate collapses a series to one point per document date, keeping
// the last reading recorded on each date.
func latestPerDate(series []*models.TrendPoint) []*models.TrendPoint {
	var out []*models.TrendPoint
	for _, p := range series {
		if n := len(out); n > 0 && out[n-1].Date == p.Date {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

// detectAdherencePatterns flags medications whose average gap between dated
// mentions exceeds the adherence threshold.
func (a *Analyzer) detectAdherencePatterns(report *models.TrendReport) {
	meds := make([]string, 0, len(report.Medications))
	for med := range report.Medications {
		meds = append(meds, med)
	}
	sort.Strings(meds)

	for _, med := range meds {
		dates := report.Medications[med]
		if len(dates) < 2 {
			continue
		}
		times := make([]time.Time, 0, len(dates))
		for _, d := range dates {
			if t, ok := parseDate(d); ok {
				times = append(times, t)
			}
		}
		if len(times) < 2 {
			continue
		}
		sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

		var totalDays float64
		for i := 1; i < len(times); i++ {
			totalDays += times[i].Sub(times[i-1]).Hours() / 24
		}
		avgGap := totalDays / float64(len(times)-1)
		if avgGap > a.adherenceGapDays {
			report.MedicationPatterns = append(report.MedicationPatterns, &models.MedicationPattern{
				Medication:     med,
				AverageGapDays: avgGap,
				PotentialIssue: "Possible non-adherence or intermittent use",
			})
		}
	}
}
