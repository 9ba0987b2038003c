package sources

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/temperature-dashboard/internal/temperature"
)

const sampleCSV = `Month,Day,max_temp,min_temp,station
1,1,5,-2,LYON
1,2,8,0,LYON

2,1,,3,LYON
2,2,7
`

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, temperature.RawRow{
		"Month": "1", "Day": "1", "max_temp": "5", "min_temp": "-2", "station": "LYON",
	}, rows[0])
	assert.Equal(t, "", rows[2]["max_temp"])
	assert.Equal(t, "", rows[3]["min_temp"], "ragged row pads missing cells")
}

func TestParseCSV_FeedsValidator(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	records := temperature.Validate(rows)
	assert.Equal(t, []temperature.Record{
		{Month: 1, Day: 1, MaxTemp: 5, MinTemp: -2},
		{Month: 1, Day: 2, MaxTemp: 8, MinTemp: 0},
	}, records)
}

func TestParseCSV_HeaderWithBOMAndSpaces(t *testing.T) {
	doc := "\ufeffMonth, Day ,max_temp,min_temp\n3,4,10.5,1.5\n"
	rows, err := ParseCSV(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "3", rows[0]["Month"])
	assert.Equal(t, "4", rows[0]["Day"])
}

func TestParseCSV_MissingColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Month,Day,max_temp\n1,1,5\n"))
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "min_temp")
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	require.ErrorIs(t, err, ErrEmptyDocument)
}

func TestParseCSV_StrayQuoteIsRowDefect(t *testing.T) {
	doc := "Month,Day,max_temp,min_temp\n1,1,5,-2\n1,2,8\",0\n1,3,9,1\n"
	rows, err := ParseCSV(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, `8"`, rows[1]["max_temp"])

	records, stats := temperature.ValidateWithStats(rows)
	assert.Equal(t, []temperature.Record{
		{Month: 1, Day: 1, MaxTemp: 5, MinTemp: -2},
		{Month: 1, Day: 3, MaxTemp: 9, MinTemp: 1},
	}, records)
	assert.Equal(t, 1, stats.Rejected)
}

func TestParseCSV_QuotedCells(t *testing.T) {
	doc := "Month,Day,max_temp,min_temp\n\"2\",\"1\",\"7.5\",\"-1\"\n"
	rows, err := ParseCSV(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "7.5", rows[0]["max_temp"])
}
