// Package crossref relates a target document to a set of existing records by
// blending TF-IDF text similarity with shared clinical terms and dates.
package crossref

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/models"
	"github.com/karte-health/karte/internal/nlp"
	"github.com/karte-health/karte/internal/vectorize"
)

// Blend weights and acceptance gates for relating records.
const (
	similarityWeight  = 0.6
	termOverlapWeight = 0.3
	dateOverlapWeight = 0.1

	similarityGate  = 0.2
	termOverlapGate = 0.3
)

// Record is one existing document offered for cross-referencing.
type Record struct {
	DocumentID string
	Text       string
}

// CrossReferencer finds records related to a target document. A fresh TF-IDF
// space is fitted per call over the target plus all candidate records, so
// results always reflect the full corpus handed in.
type CrossReferencer struct {
	tagger nlp.EntityTagger
	logger *zap.Logger
}

// NewCrossReferencer creates a cross-referencer. tagger may be nil, in which
// case the term-overlap contribution is always zero and records relate on
// text similarity and shared dates alone.
func NewCrossReferencer(tagger nlp.EntityTagger, logger *zap.Logger) *CrossReferencer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CrossReferencer{tagger: tagger, logger: logger}
}

// crossrefDatePattern matches dates in raw string form: month-name dates,
// ISO numerics, and slash or dash numerics. Mentions are compared verbatim,
// not normalized.
var crossrefDatePattern = regexp.MustCompile(
	`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b` +
		`|\b\d{4}[-/]\d{1,2}[-/]\d{1,2}\b` +
		`|\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`)

// Relate scores every record against the target text and returns those
// passing either the similarity or the term-overlap gate, sorted descending
// by combined relevance. An empty record set short-circuits without fitting
// any vector space.
func (c *CrossReferencer) Relate(ctx context.Context, targetText string, records []Record) (*models.CrossReferenceResult, error) {
	result := &models.CrossReferenceResult{
		RelatedDocuments: []*models.RelatedDocument{},
		TotalAnalyzed:    len(records),
	}
	if len(records) == 0 {
		return result, nil
	}

	corpus := make([]string, 0, len(records)+1)
	corpus = append(corpus, targetText)
	for _, r := range records {
		corpus = append(corpus, r.Text)
	}

	vectorizer := vectorize.NewVectorizer(vectorize.Options{
		NGramMax:  2,
		MinDF:     1,
		MaxDF:     0.9,
		StopWords: vectorize.EnglishStopWords(),
	})
	if err := vectorizer.Fit(corpus); err != nil {
		return nil, fmt.Errorf("fit cross-reference vocabulary: %w", err)
	}
	targetVec, err := vectorizer.Transform(targetText)
	if err != nil {
		return nil, fmt.Errorf("vectorize target: %w", err)
	}

	targetTerms := c.clinicalTerms(ctx, targetText)
	targetDates := dateSet(targetText)

	for i, record := range records {
		recordVec, err := vectorizer.Transform(record.Text)
		if err != nil {
			return nil, fmt.Errorf("vectorize record %d: %w", i, err)
		}
		similarity := vectorize.Cosine(targetVec, recordVec)

		sharedTerms, termScore := overlap(targetTerms, c.clinicalTerms(ctx, record.Text))
		sharedDates, dateScore := overlap(targetDates, dateSet(record.Text))

		if similarity <= similarityGate && termScore <= termOverlapGate {
			continue
		}

		combined := similarityWeight*similarity +
			termOverlapWeight*termScore +
			dateOverlapWeight*dateScore
		result.RelatedDocuments = append(result.RelatedDocuments, &models.RelatedDocument{
			RecordIndex:            i,
			DocumentID:             record.DocumentID,
			SimilarityScore:        similarity,
			CombinedRelevanceScore: combined,
			RelevanceData: &models.CrossRefRelevance{
				SharedMedicalTerms: sharedTerms,
				TermOverlapScore:   termScore,
				SharedDates:        sharedDates,
				DateOverlapScore:   dateScore,
			},
		})
	}

	sort.SliceStable(result.RelatedDocuments, func(i, j int) bool {
		return result.RelatedDocuments[i].CombinedRelevanceScore >
			result.RelatedDocuments[j].CombinedRelevanceScore
	})
	return result, nil
}

// clinicalTerms returns the lowercased clinical entity mentions of text. A
// tagger failure degrades to an empty set rather than failing the call.
func (c *CrossReferencer) clinicalTerms(ctx context.Context, text string) map[string]struct{} {
	terms := make(map[string]struct{})
	if c.tagger == nil {
		return terms
	}
	entities, err := c.tagger.Tag(ctx, text)
	if err != nil {
		c.logger.Warn("entity tagger failed during cross-reference", zap.Error(err))
		return terms
	}
	for _, ent := range entities {
		switch strings.ToUpper(ent.Label) {
		case "CONDITION", "DISEASE", "CHEMICAL", "DRUG", "TREATMENT":
			terms[strings.ToLower(ent.Text)] = struct{}{}
		}
	}
	return terms
}

func dateSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, d := range crossrefDatePattern.FindAllString(text, -1) {
		set[d] = struct{}{}
	}
	return set
}

// overlap returns the sorted intersection of the two sets and the share of
// the target set covered: |target∩other| / |target|. A target with nothing to
// match scores zero.
func overlap(target, other map[string]struct{}) ([]string, float64) {
	if len(target) == 0 || len(other) == 0 {
		return []string{}, 0
	}
	shared := []string{}
	for v := range target {
		if _, ok := other[v]; ok {
			shared = append(shared, v)
		}
	}
	sort.Strings(shared)
	return shared, float64(len(shared)) / float64(len(target))
}
