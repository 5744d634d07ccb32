// Package ingest loads plain-text documents from disk and splits them into
// the segments the citation locator works over.
package ingest

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/docreview/internal/model"
)

var paragraphRe = regexp.MustCompile(`\n\s*\n`)

// headingRe matches section headings: numbered clauses ("3. Term"),
// "Section 4" / "Article IV" leads, or short ALL-CAPS lines.
var headingRe = regexp.MustCompile(`^(?:\d+(?:\.\d+)*\.?\s+\S.*|(?:SECTION|ARTICLE|Section|Article)\s+\S.*)$`)

// LoadDirectory reads every .txt file in dir (non-recursive) as one
// document, in filename order.
func LoadDirectory(dir string) ([]*model.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read directory %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, eris.Errorf("ingest: no .txt documents in %s", dir)
	}

	docs := make([]*model.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	zap.L().Info("documents loaded", zap.String("dir", dir), zap.Int("count", len(docs)))
	return docs, nil
}

// LoadFile reads one document and segments it.
func LoadFile(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}
	text := string(data)
	return &model.Document{
		ID:       uuid.NewString(),
		Name:     filepath.Base(path),
		Text:     text,
		Segments: Segment(text),
	}, nil
}

// Segment splits document text into paragraph segments. Form feeds mark
// page boundaries; heading lines set the section title carried by the
// paragraphs that follow them.
func Segment(text string) []model.TextSegment {
	var segments []model.TextSegment
	page := 1
	section := ""
	index := 0

	for _, pageText := range strings.Split(text, "\f") {
		for _, para := range splitParagraphs(pageText) {
			if isHeading(para) {
				section = para
			}
			segments = append(segments, model.TextSegment{
				Text:         para,
				PageNumber:   page,
				SectionTitle: section,
				Index:        index,
			})
			index++
		}
		page++
	}
	return segments
}

func splitParagraphs(text string) []string {
	var paras []string
	for _, block := range paragraphRe.Split(text, -1) {
		para := strings.TrimSpace(block)
		if para != "" {
			paras = append(paras, para)
		}
	}
	return paras
}

func isHeading(para string) bool {
	if strings.ContainsRune(para, '\n') || len(para) > 80 {
		return false
	}
	if headingRe.MatchString(para) {
		return true
	}
	upper := strings.ToUpper(para)
	return upper == para && len(strings.Fields(para)) <= 8 && strings.IndexFunc(para, func(r rune) bool {
		return r >= 'A' && r <= 'Z'
	}) >= 0
}
