package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/docreview/internal/model"
)

func fallbackDoc(text string) *model.Document {
	return &model.Document{ID: "doc-1", Name: "agreement.txt", Text: text}
}

func TestFallbackDatePatterns(t *testing.T) {
	s := NewFallbackStrategy()
	field := &model.FieldDefinition{Name: "effective_date", FieldType: model.FieldTypeDate}

	raw, err := s.Extract(context.Background(), fallbackDoc(
		"This Agreement is dated as of January 15, 2024 by the parties."), field)
	require.NoError(t, err)
	require.True(t, raw.Found())
	assert.Equal(t, "January 15, 2024", raw.Value)
	assert.Equal(t, 0.7, raw.Confidence)
	assert.Contains(t, raw.RawText, "dated as of January 15, 2024")
}

func TestFallbackDateSlashForm(t *testing.T) {
	s := NewFallbackStrategy()
	field := &model.FieldDefinition{Name: "closing_date", FieldType: model.FieldTypeDate}

	raw, err := s.Extract(context.Background(), fallbackDoc(
		"The closing shall occur on 03/01/2024 at the offices of the Seller."), field)
	require.NoError(t, err)
	require.True(t, raw.Found())
	assert.Equal(t, "03/01/2024", raw.Value)
	assert.Equal(t, typedPatternConfidence, raw.Confidence)
}

func TestFallbackCurrencyLabeled(t *testing.T) {
	s := NewFallbackStrategy()
	field := &model.FieldDefinition{Name: "purchase_price", FieldType: model.FieldTypeCurrency}

	raw, err := s.Extract(context.Background(), fallbackDoc(
		"The aggregate Purchase Price of $2,500,000.00 shall be paid at closing."), field)
	require.NoError(t, err)
	require.True(t, raw.Found())
	assert.Equal(t, "$2,500,000.00", raw.Value)
	assert.Equal(t, 0.7, raw.Confidence)
}

func TestFallbackEntityBetweenPattern(t *testing.T) {
	s := NewFallbackStrategy()
	field := &model.FieldDefinition{Name: "seller_name", FieldType: model.FieldTypeEntity}

	raw, err := s.Extract(context.Background(), fallbackDoc(
		"This Agreement is entered into by and between Acme Holdings, LLC and Widget Corp."), field)
	require.NoError(t, err)
	require.True(t, raw.Found())
	assert.Equal(t, "Acme Holdings, LLC", raw.Value)
}

func TestFallbackGoverningLawByName(t *testing.T) {
	s := NewFallbackStrategy()
	field := &model.FieldDefinition{Name: "governing_law", FieldType: model.FieldTypeText}

	raw, err := s.Extract(context.Background(), fallbackDoc(
		"This Agreement shall be governed by the laws of Delaware.\nSignatures follow."), field)
	require.NoError(t, err)
	require.True(t, raw.Found())
	assert.Equal(t, "Delaware", raw.Value)
	assert.Equal(t, 0.7, raw.Confidence)
}

func TestFallbackLabelWindow(t *testing.T) {
	s := NewFallbackStrategy()
	field := &model.FieldDefinition{Name: "payment_terms", FieldType: model.FieldTypeText}

	raw, err := s.Extract(context.Background(), fallbackDoc(
		"Payment Terms: net 30 days from receipt of invoice\nNext clause."), field)
	require.NoError(t, err)
	require.True(t, raw.Found())
	assert.Equal(t, "net 30 days from receipt of invoice", raw.Value)
	assert.Equal(t, labelWindowConfidence, raw.Confidence)
}

func TestFallbackAliasSentence(t *testing.T) {
	s := NewFallbackStrategy()
	field := &model.FieldDefinition{Name: "assignment", FieldType: model.FieldTypeFreeform}

	raw, err := s.Extract(context.Background(), fallbackDoc(
		"Preamble text here. No assignment of this Agreement is permitted without consent. More text."), field)
	require.NoError(t, err)
	require.True(t, raw.Found())
	assert.Contains(t, raw.Value, "assignment of this Agreement")
	assert.Equal(t, aliasSentenceConfidence, raw.Confidence)
}

func TestFallbackBooleanNearLabel(t *testing.T) {
	s := NewFallbackStrategy()
	field := &model.FieldDefinition{Name: "exclusivity", FieldType: model.FieldTypeBoolean}

	raw, err := s.Extract(context.Background(), fallbackDoc(
		"Exclusivity: Yes, the Buyer receives an exclusive negotiation period."), field)
	require.NoError(t, err)
	require.True(t, raw.Found())
	assert.Equal(t, "Yes", raw.Value)
}

func TestFallbackNoMatch(t *testing.T) {
	s := NewFallbackStrategy()
	field := &model.FieldDefinition{Name: "escrow_amount", FieldType: model.FieldTypeCurrency}

	raw, err := s.Extract(context.Background(), fallbackDoc(
		"Nothing of relevance appears in this paragraph."), field)
	require.NoError(t, err)
	assert.False(t, raw.Found())
	assert.Zero(t, raw.Confidence)
}

func TestFallbackFirstPatternWins(t *testing.T) {
	s := NewFallbackStrategy()
	field := &model.FieldDefinition{Name: "signing_date", FieldType: model.FieldTypeDate}

	// Both a labeled date and a bare ISO date appear; the labeled pattern
	// is ordered first and must win.
	raw, err := s.Extract(context.Background(), fallbackDoc(
		"Filed 2023-12-01. Agreement effective March 3, 2024 between the parties."), field)
	require.NoError(t, err)
	require.True(t, raw.Found())
	assert.Equal(t, "March 3, 2024", raw.Value)
	assert.Equal(t, 0.7, raw.Confidence)
}
