// Package findings distills a clinical document into a normalized record of
// conditions, medications, measurements, dates, and patient information,
// combining entity tagging with targeted pattern extraction.
package findings

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/models"
	"github.com/karte-health/karte/internal/nlp"
	"github.com/karte-health/karte/pkg/utils"
)

const (
	measurementWindow = 30
	dateWindow        = 40

	conditionThreshold  = 0.7
	medicationThreshold = 0.7
	patientThreshold    = 0.8
)

// measurementPatterns map regex families to measurement names. Order matters:
// a span claimed by an earlier family is not reported again by a later one.
var measurementPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"blood_pressure", regexp.MustCompile(`(\d{2,3})\s*/\s*(\d{2,3})\s*(?:mmHg|mm Hg)?`)},
	{"blood_pressure", regexp.MustCompile(`(\d+\.?\d*)\s*(?:mmHg|mm Hg)`)},
	{"glucose", regexp.MustCompile(`(\d+\.?\d*)\s*mg/dL`)},
	{"bmi", regexp.MustCompile(`(?i)(?:BMI[:\s]*)?(\d+\.?\d*)\s*kg/m2`)},
	{"weight", regexp.MustCompile(`(\d+\.?\d*)\s*(?:kg|lbs)\b`)},
	{"height", regexp.MustCompile(`(\d+\.?\d*)\s*(?:cm|m)\b`)},
	{"heart_rate", regexp.MustCompile(`(\d+\.?\d*)\s*bpm\b`)},
}

// findingDatePattern is deliberately permissive: month-name dates with
// optional comma, and numeric dates with 2 or 4 digit years.
var findingDatePattern = regexp.MustCompile(
	`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b` +
		`|\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`)

// dateRoleKeywords classify a date mention by its context. First hit wins.
var dateRoleKeywords = []struct {
	role     string
	keywords []string
}{
	{"appointment", []string{"appointment", "follow-up", "follow up", "visit", "scheduled"}},
	{"prescription", []string{"prescribed", "prescription", "refill", "dispensed"}},
	{"lab_result", []string{"collected", "lab", "specimen", "drawn", "resulted"}},
}

// CoarseTagger is the degraded entity source used when no real tagger is
// available or the tagger fails.
type CoarseTagger interface {
	CoarseEntities(text string) []nlp.Entity
}

// Extractor produces findings records. The entity tagger is optional; when it
// is absent or errors, the extractor degrades to the fallback's coarse
// entities rather than failing the document.
type Extractor struct {
	tagger   nlp.EntityTagger
	fallback CoarseTagger
	logger   *zap.Logger
}

// NewExtractor creates a key-findings extractor. tagger may be nil.
func NewExtractor(tagger nlp.EntityTagger, fallback CoarseTagger, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{tagger: tagger, fallback: fallback, logger: logger}
}

// Extract builds the findings record for one document.
func (e *Extractor) Extract(ctx context.Context, text string) *models.FindingsRecord {
	record := models.NewFindingsRecord()
	e.applyEntities(ctx, text, record)
	e.applyMeasurements(text, record)
	e.applyDates(text, record)
	return record
}

// applyEntities routes tagged entities into the record by label family,
// honoring per-family confidence thresholds.
func (e *Extractor) applyEntities(ctx context.Context, text string, record *models.FindingsRecord) {
	entities := e.tagEntities(ctx, text)

	conditionSet := make(map[string]struct{})
	medicationSet := make(map[string]struct{})
	for _, ent := range entities {
		label := strings.ToUpper(ent.Label)
		switch {
		case isConditionLabel(label) && ent.Confidence > conditionThreshold:
			key := strings.ToLower(ent.Text)
			if _, ok := conditionSet[key]; !ok {
				conditionSet[key] = struct{}{}
				record.Conditions = append(record.Conditions, ent.Text)
			}
		case isMedicationLabel(label) && ent.Confidence > medicationThreshold:
			key := strings.ToLower(ent.Text)
			if _, ok := medicationSet[key]; !ok {
				medicationSet[key] = struct{}{}
				record.Medications = append(record.Medications, ent.Text)
			}
		case isPatientLabel(label) && ent.Confidence > patientThreshold:
			record.PatientInfo[ent.Text] = ent.Confidence
		}
	}
}

func (e *Extractor) tagEntities(ctx context.Context, text string) []nlp.Entity {
	if e.tagger != nil {
		entities, err := e.tagger.Tag(ctx, text)
		if err == nil {
			return entities
		}
		e.logger.Warn("entity tagger failed, falling back to coarse tagging", zap.Error(err))
	}
	if e.fallback != nil {
		return e.fallback.CoarseEntities(text)
	}
	return nil
}

func isConditionLabel(label string) bool {
	switch label {
	case "DISEASE", "CONDITION", "PROBLEM", "SYMPTOM":
		return true
	}
	return false
}

func isMedicationLabel(label string) bool {
	switch label {
	case "DRUG", "TREATMENT", "MEDICATION":
		return true
	}
	return false
}

func isPatientLabel(label string) bool {
	switch label {
	case "PATIENT", "PERSON", "DEMOGRAPHIC":
		return true
	}
	return false
}

// applyMeasurements runs every measurement pattern family over the text.
// Spans already claimed by an earlier family are skipped so the systolic half
// of "130/85 mmHg" is not re-reported as a bare pressure reading.
func (e *Extractor) applyMeasurements(text string, record *models.FindingsRecord) {
	var claimed [][2]int
	for _, family := range measurementPatterns {
		for _, idx := range family.pattern.FindAllStringIndex(text, -1) {
			if overlapsClaimed(claimed, idx[0], idx[1]) {
				continue
			}
			// A match touching a further slash is a date fragment
			// (03/15 inside 03/15/2024), not a reading.
			if adjacentSlash(text, idx[0], idx[1]) {
				continue
			}
			claimed = append(claimed, [2]int{idx[0], idx[1]})
			record.Measurements[family.name] = append(record.Measurements[family.name],
				&models.MeasurementEntry{
					Value:   strings.TrimSpace(text[idx[0]:idx[1]]),
					Context: utils.ContextWindow(text, idx[0], idx[1], measurementWindow),
				})
		}
	}
}

// applyDates extracts date mentions, normalizing each to YYYY-MM-DD and
// classifying it by context keywords. Hits that fail to parse are logged and
// dropped.
func (e *Extractor) applyDates(text string, record *models.FindingsRecord) {
	for _, idx := range findingDatePattern.FindAllStringIndex(text, -1) {
		raw := text[idx[0]:idx[1]]
		iso, ok := parseFindingDate(raw)
		if !ok {
			e.logger.Warn("unparseable date mention", zap.String("raw", raw))
			continue
		}
		window := utils.ContextWindow(text, idx[0], idx[1], dateWindow)
		role := classifyDateContext(window)
		record.Dates[role] = append(record.Dates[role], &models.FindingDate{
			Date:     iso,
			Original: raw,
			Context:  window,
		})
	}
}

var (
	numericDateForm   = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{2}|\d{4})$`)
	monthNameDateForm = regexp.MustCompile(`(?i)^([a-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})$`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// parseFindingDate normalizes a matched date mention to YYYY-MM-DD. Two-digit
// years expand to 20YY. Calendar-invalid combinations such as 02/30 fail.
func parseFindingDate(raw string) (string, bool) {
	var year, month, day int

	if groups := numericDateForm.FindStringSubmatch(raw); groups != nil {
		month, _ = strconv.Atoi(groups[1])
		day, _ = strconv.Atoi(groups[2])
		year, _ = strconv.Atoi(groups[3])
		if len(groups[3]) == 2 {
			year += 2000
		}
	} else if groups := monthNameDateForm.FindStringSubmatch(raw); groups != nil {
		prefix := strings.ToLower(groups[1])
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		m, ok := monthsByPrefix[prefix]
		if !ok {
			return "", false
		}
		month = int(m)
		day, _ = strconv.Atoi(groups[2])
		year, _ = strconv.Atoi(groups[3])
	} else {
		return "", false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func classifyDateContext(window string) string {
	lower := strings.ToLower(window)
	for _, entry := range dateRoleKeywords {
		if utils.ContainsAny(lower, entry.keywords) {
			return entry.role
		}
	}
	return "unknown"
}

func adjacentSlash(text string, start, end int) bool {
	if start > 0 && text[start-1] == '/' {
		return true
	}
	if end < len(text) && text[end] == '/' {
		return true
	}
	return false
}

func overlapsClaimed(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}
