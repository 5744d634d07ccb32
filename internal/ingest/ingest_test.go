package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentSplitsParagraphs(t *testing.T) {
	segments := Segment("First paragraph.\n\nSecond paragraph\ncontinues here.\n\n\nThird.")

	require.Len(t, segments, 3)
	assert.Equal(t, "First paragraph.", segments[0].Text)
	assert.Equal(t, "Second paragraph\ncontinues here.", segments[1].Text)
	assert.Equal(t, "Third.", segments[2].Text)
	for i, seg := range segments {
		assert.Equal(t, i, seg.Index)
		assert.Equal(t, 1, seg.PageNumber)
	}
}

func TestSegmentTracksPages(t *testing.T) {
	segments := Segment("Page one text.\fPage two text.\n\nMore on page two.")

	require.Len(t, segments, 3)
	assert.Equal(t, 1, segments[0].PageNumber)
	assert.Equal(t, 2, segments[1].PageNumber)
	assert.Equal(t, 2, segments[2].PageNumber)
}

func TestSegmentCarriesSectionTitles(t *testing.T) {
	text := "Preamble text here.\n\n" +
		"3. Term\n\n" +
		"This Agreement remains in effect for two years.\n\n" +
		"GOVERNING LAW\n\n" +
		"This Agreement is governed by Delaware law."
	segments := Segment(text)

	require.Len(t, segments, 5)
	assert.Empty(t, segments[0].SectionTitle)
	assert.Equal(t, "3. Term", segments[1].SectionTitle)
	assert.Equal(t, "3. Term", segments[2].SectionTitle)
	assert.Equal(t, "GOVERNING LAW", segments[3].SectionTitle)
	assert.Equal(t, "GOVERNING LAW", segments[4].SectionTitle)
}

func TestSegmentEmptyText(t *testing.T) {
	assert.Empty(t, Segment(""))
	assert.Empty(t, Segment("\n\n\f\n\n"))
}

func TestIsHeading(t *testing.T) {
	tests := []struct {
		para string
		want bool
	}{
		{"3. Term", true},
		{"4.2 Termination for Cause", true},
		{"Section 7. Indemnification", true},
		{"ARTICLE IV", true},
		{"GOVERNING LAW", true},
		{"This Agreement remains in effect for two years.", false},
		{"3. Term\nand more", false},
		{"12345", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isHeading(tt.para), tt.para)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agreement.txt")
	require.NoError(t, os.WriteFile(path, []byte("First.\n\nSecond."), 0o644))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "agreement.txt", doc.Name)
	assert.Equal(t, "First.\n\nSecond.", doc.Text)
	assert.Len(t, doc.Segments, 2)
}

func TestLoadDirectoryOrdersByName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("second doc"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("first doc"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	docs, err := LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.txt", docs[0].Name)
	assert.Equal(t, "b.txt", docs[1].Name)
}

func TestLoadDirectoryNoDocuments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0o644))

	_, err := LoadDirectory(dir)
	assert.ErrorContains(t, err, "no .txt documents")
}

func TestLoadDirectoryMissing(t *testing.T) {
	_, err := LoadDirectory(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
