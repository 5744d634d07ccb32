package compare

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/sells-group/docreview/internal/model"
)

// Diff builds a per-field agreement report from a comparison table. Only
// documents with a found value participate: grouping keys on the canonical
// value (normalized when available, raw otherwise), case-insensitively.
// The majority group is the largest; ties break toward the
// lexicographically smaller value. Documents outside the majority group
// are outliers. Pairwise similarity is computed on the raw extracted
// values so near-miss wordings still register.
func Diff(table *model.ComparisonTable) []*model.DiffReport {
	reports := make([]*model.DiffReport, 0, len(table.Rows))
	for i := range table.Rows {
		reports = append(reports, diffRow(&table.Rows[i], table.DocumentIDs))
	}
	return reports
}

func diffRow(row *model.ComparisonRow, documentIDs []string) *model.DiffReport {
	report := &model.DiffReport{
		FieldName:   row.FieldName,
		ValueGroups: map[string][]string{},
	}

	type group struct {
		display string
		docs    []string
	}
	groups := make(map[string]*group)
	var foundDocs []string
	rawByDoc := make(map[string]string)

	for _, docID := range documentIDs {
		cell, ok := row.DocumentResults[docID]
		if !ok || cell.Status != model.StatusExtracted {
			continue
		}
		value := cell.NormalizedValue
		if value == "" {
			value = cell.Value
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		foundDocs = append(foundDocs, docID)
		rawByDoc[docID] = cell.Value

		key := strings.ToLower(strings.TrimSpace(value))
		g, exists := groups[key]
		if !exists {
			g = &group{display: strings.TrimSpace(value)}
			groups[key] = g
		}
		g.docs = append(g.docs, docID)
	}

	report.TotalDocuments = len(foundDocs)
	report.UniqueValues = len(groups)
	if len(foundDocs) == 0 {
		return report
	}

	var majority *group
	for _, g := range groups {
		switch {
		case majority == nil,
			len(g.docs) > len(majority.docs),
			len(g.docs) == len(majority.docs) && g.display < majority.display:
			majority = g
		}
	}

	report.MajorityValue = majority.display
	report.MajorityCount = len(majority.docs)
	report.IsUnanimous = len(groups) == 1

	for _, g := range groups {
		docs := append([]string(nil), g.docs...)
		sort.Strings(docs)
		report.ValueGroups[g.display] = docs
	}

	inMajority := make(map[string]bool, len(majority.docs))
	for _, d := range majority.docs {
		inMajority[d] = true
	}
	for _, d := range foundDocs {
		if !inMajority[d] {
			report.Outliers = append(report.Outliers, d)
		}
	}
	sort.Strings(report.Outliers)

	report.SimilarityPairs = similarityPairs(foundDocs, rawByDoc)
	return report
}

// similarityPairs computes the lexical similarity for every unordered pair
// of documents with found values.
func similarityPairs(docs []string, rawByDoc map[string]string) []model.SimilarityPair {
	if len(docs) < 2 {
		return nil
	}
	sorted := append([]string(nil), docs...)
	sort.Strings(sorted)

	pairs := make([]model.SimilarityPair, 0, len(sorted)*(len(sorted)-1)/2)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			pairs = append(pairs, model.SimilarityPair{
				DocA:       a,
				DocB:       b,
				Similarity: levenshtein.Similarity(strings.ToLower(rawByDoc[a]), strings.ToLower(rawByDoc[b]), nil),
			})
		}
	}
	return pairs
}
