package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
)

func TestValidateNormalizesColumns(t *testing.T) {
	raw := RawTable{
		Headers: []string{"Search Term", "Interactions", "Spend", "Conversions", "Impressions"},
		Rows: [][]any{
			{"cheap remortgage", "100", "150.00", "10", "1000"},
			{"best remortgage deals", "200", "£300", "20", "2,000"},
		},
	}

	table, summary, err := Validate(raw, DefaultMapping())
	require.NoError(t, err)

	assert.Equal(t, []string{ColQuery, ColClicks, ColCost, ColConversions, ColImpressions}, table.Columns)
	require.Len(t, table.Records, 2)
	assert.Equal(t, QueryRecord{
		Query: "best remortgage deals", Clicks: 200, Cost: 300, Conversions: 20,
		Impressions: 2000, HasImpressions: true,
	}, table.Records[1])

	assert.Equal(t, 2, summary.InputRows)
	assert.Equal(t, 2, summary.KeptRows)
	assert.False(t, summary.ImpressionsProxied)
	assert.Equal(t, "Spend", summary.Columns[ColCost])
}

func TestValidateImpressionsProxy(t *testing.T) {
	raw := RawTable{
		Headers: []string{"query", "clicks", "cost", "conversions"},
		Rows:    [][]any{{"remortgage rates", "150", "225", "15"}},
	}

	table, summary, err := Validate(raw, DefaultMapping())
	require.NoError(t, err)

	assert.True(t, summary.ImpressionsProxied)
	assert.False(t, table.HasColumn(ColImpressions))
	rec := table.Records[0]
	assert.False(t, rec.HasImpressions)
	assert.Equal(t, int64(150), rec.Impressions)
	assert.Equal(t, int64(150), rec.EffectiveImpressions())
}

func TestValidateCoercesBadValues(t *testing.T) {
	raw := RawTable{
		Headers: []string{"query", "clicks", "cost", "conversions"},
		Rows: [][]any{
			{"a", "abc", "-5", ""},
			{"b", 10.6, 2.5, nil},
			{"", "1", "1", "1"},
			{nil, "1", "1", "1"},
			{" \t ", "1", "1", "1"},
		},
	}

	table, summary, err := Validate(raw, DefaultMapping())
	require.NoError(t, err)

	require.Len(t, table.Records, 2)
	assert.Equal(t, 2, summary.KeptRows)
	assert.Equal(t, int64(0), table.Records[0].Clicks)
	assert.Equal(t, 0.0, table.Records[0].Cost)
	assert.Equal(t, int64(11), table.Records[1].Clicks)
	assert.Equal(t, 2.5, table.Records[1].Cost)

	assert.Equal(t, 3, summary.DroppedEmptyQuery)
	// "abc" and "-5" are coerced, blanks and nils are simply zero.
	assert.Equal(t, 2, summary.CoercedValues)
}

func TestValidateNonTextQuery(t *testing.T) {
	raw := RawTable{
		Headers: []string{"query", "clicks", "cost", "conversions"},
		Rows:    [][]any{{12345.0, "1", "1", "0"}},
	}
	table, _, err := Validate(raw, DefaultMapping())
	require.NoError(t, err)
	assert.Equal(t, "12345", table.Records[0].Query)
}

func TestValidateSchemaError(t *testing.T) {
	raw := RawTable{Headers: []string{"query", "clicks", "conversions"}}
	_, _, err := Validate(raw, DefaultMapping())
	require.Error(t, err)

	var schemaErr *internalerr.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{ColCost}, schemaErr.Missing)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 1,234 ", 1234, true},
		{"1,234.50", 1234.5, true},
		{"1.234,50", 1234.5, true},
		{"12,5", 12.5, true},
		{"£99.99", 99.99, true},
		{"$1 000", 1000, true},
		{"4.5%", 4.5, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{nil, 0, false},
		{true, 0, false},
		{7, 7, true},
		{int64(8), 8, true},
		{3.25, 3.25, true},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, "input %#v", tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "input %#v", tt.in)
	}
}
