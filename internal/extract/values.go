package extract

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/models"
	"github.com/karte-health/karte/pkg/utils"
)

// valueContextWindow is the number of bytes captured on each side of a
// numeric match for measurement-type classification.
const valueContextWindow = 30

// clinicalUnits is the recognized unit vocabulary. Compound units precede
// their prefixes so the regexp engine (leftmost-first alternation) reports
// "mg/dL" rather than "mg".
const clinicalUnits = `mU/mL|μg/dL|mg/dL|g/dL|mmol/L|μmol/L|ng/mL|ng/dL|pg/mL|mEq/L|IU/L|U/L|mm/h|mmHg|mOsm|units|mmol|μmol|pmol|nmol|mcg|mIU|mEq|mg|kg|ng|mL|dL|IU|mU|μU|μL|μg|pg|fL|cm|mm|m|g|L|U`

// valuePattern captures an optional comparator, a numeric value, an optional
// range terminator and second value, and an optional clinical unit. "%" is
// alternated separately because it has no trailing word boundary.
var valuePattern = regexp.MustCompile(
	`(?:[<>≤≥=]\s*)?\b(\d+\.?\d*)\s*(?:(?:-|to|–|/)\s*(?:[<>≤≥=]\s*)?(\d+\.?\d*))?\s*(%|(?:` + clinicalUnits + `)\b)?`)

// refRangePattern finds a reference-range phrase inside a context window.
var refRangePattern = regexp.MustCompile(
	`(?i)(?:reference|normal|ref|range)(?:\s+range)?[:\s]+([<>]?\s*\d+\.?\d*\s*(?:-|to|–)\s*[<>]?\s*\d+\.?\d*)`)

// measurementTypeKeywords classifies a numeric mention by its surrounding
// context. Order is the match priority: first entry with a keyword hit wins.
var measurementTypeKeywords = []struct {
	measurementType string
	keywords        []string
}{
	{"glucose", []string{"glucose", "blood sugar"}},
	{"hba1c", []string{"hba1c", "a1c", "hemoglobin a1c"}},
	{"lipid_panel", []string{"cholesterol", "ldl", "hdl", "triglycerides"}},
	{"blood_pressure", []string{"blood pressure", "bp", "systolic", "diastolic"}},
	{"heart_rate", []string{"heart rate", "pulse"}},
	{"temperature", []string{"temperature", "temp"}},
	{"weight", []string{"weight", "wt"}},
	{"height", []string{"height", "ht"}},
}

// NumericValues extracts numeric measurements with optional units from text.
// Range forms ("120-140", "130/85") populate HighValue. The measurement type
// is inferred from a ±30 byte context window, and a reference-range phrase in
// that window is attached when present. A value that fails to parse is logged
// and skipped; extraction continues.
func (e *Extractor) NumericValues(text string) []*models.MeasurementMention {
	var results []*models.MeasurementMention

	for _, idx := range valuePattern.FindAllStringSubmatchIndex(text, -1) {
		raw := text[idx[0]:idx[1]]
		groups := submatches(text, idx)

		value, err := parseOptionalFloat(groups[1])
		if err != nil {
			e.logger.Warn("failed to parse numeric value", zap.String("raw", raw), zap.Error(err))
			continue
		}
		highValue, err := parseOptionalFloat(groups[2])
		if err != nil {
			e.logger.Warn("failed to parse numeric range value", zap.String("raw", raw), zap.Error(err))
			continue
		}

		context := utils.ContextWindow(text, idx[0], idx[1], valueContextWindow)
		mention := &models.MeasurementMention{
			Value:     value,
			HighValue: highValue,
			Unit:      groups[3],
			RawText:   strings.TrimSpace(raw),
			Span:      models.Span{Start: idx[0], End: idx[1]},
			Context:   context,
			Type:      classifyValueContext(context),
		}
		if m := refRangePattern.FindStringSubmatch(context); m != nil {
			mention.ReferenceRange = m[1]
		}
		results = append(results, mention)
	}
	return results
}

// classifyValueContext returns the measurement type for a context window,
// or "unknown" when no keyword family matches.
func classifyValueContext(context string) string {
	contextLower := strings.ToLower(context)
	for _, entry := range measurementTypeKeywords {
		if utils.ContainsAny(contextLower, entry.keywords) {
			return entry.measurementType
		}
	}
	return "unknown"
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "."), 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
