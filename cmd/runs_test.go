package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/docreview/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 45, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:              "abc12345-6789-0000-0000-000000000000",
			ProjectID:       "proj-1",
			TemplateVersion: 2,
			Status:          model.RunStatusCompleted,
			CreatedAt:       now,
		},
		{
			ID:              "def12345-6789-0000-0000-000000000000",
			ProjectID:       "proj-1",
			TemplateVersion: 1,
			Status:          model.RunStatusFailed,
			Failures: []model.FieldFailure{
				{DocumentID: "doc-1", FieldName: "purchase_price", Reason: "extraction unavailable"},
			},
			CreatedAt: now.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "completed")
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "2026-03-10 14:45")
}

func TestFormatRunsList_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatRunsList(&buf, nil)

	assert.Contains(t, buf.String(), "ID")
}

func TestFormatDocList(t *testing.T) {
	docs := []model.Document{
		{ID: "doc-1", Name: "lease_a.txt", Text: "short text", Segments: []model.TextSegment{{Text: "short text"}}},
	}

	var buf bytes.Buffer
	formatDocList(&buf, docs)

	output := buf.String()
	assert.Contains(t, output, "lease_a.txt")
	assert.Contains(t, output, "NAME")
}
