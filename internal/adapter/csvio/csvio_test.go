package csvio_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/wx-clean-service/internal/adapter/csvio"
	"github.com/couchcryptid/wx-clean-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	in := strings.Join([]string{
		"timestamp,precip,temp",
		"2016-01-05 00:00,1.5,-4",
		"2016-01-05 01:00:00,,NaN",
		"2016-01-05T02:00:00Z,NA,2.5",
	}, "\n")

	ds, err := csvio.Read(strings.NewReader(in), "imnavait")
	require.NoError(t, err)

	assert.Equal(t, "imnavait", ds.Station)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"precip", "temp"}, ds.Columns())
	assert.Equal(t, time.Date(2016, time.January, 5, 1, 0, 0, 0, time.UTC), ds.Time(1))

	precip, err := ds.Column("precip")
	require.NoError(t, err)
	assert.Equal(t, []domain.Reading{domain.Of(1.5), domain.Missing(), domain.Missing()}, precip)

	temp, err := ds.Column("temp")
	require.NoError(t, err)
	assert.Equal(t, []domain.Reading{domain.Of(-4), domain.Missing(), domain.Of(2.5)}, temp)
}

func TestRead_DateOnly(t *testing.T) {
	ds, err := csvio.Read(strings.NewReader("timestamp,precip\n2020-01-01,1\n2020-01-02,2\n"), "s")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC), ds.Time(1))
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
		substr  string
	}{
		{name: "empty", in: "", wantErr: csvio.ErrNoTimeColumn},
		{name: "no timestamp column", in: "date,precip\n2020-01-01,1\n", wantErr: csvio.ErrNoTimeColumn},
		{name: "unordered", in: "timestamp,precip\n2020-01-02,1\n2020-01-01,2\n", wantErr: domain.ErrUnordered},
		{name: "duplicate timestamp", in: "timestamp,precip\n2020-01-01,1\n2020-01-01,2\n", wantErr: domain.ErrUnordered},
		{name: "bad timestamp", in: "timestamp,precip\nyesterday,1\n", substr: "line 2"},
		{name: "duplicate column", in: "timestamp,precip,temp,precip\n2020-01-01,1,2,3\n", wantErr: csvio.ErrDuplicateColumn, substr: `"precip"`},
		{name: "duplicate timestamp column", in: "Timestamp,precip,timestamp\n2020-01-01,1,2020-01-01\n", wantErr: csvio.ErrDuplicateColumn},
		{name: "bad number", in: "timestamp,precip\n2020-01-01,lots\n", substr: `column "precip"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := csvio.Read(strings.NewReader(tt.in), "s")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.substr != "" {
				assert.Contains(t, err.Error(), tt.substr)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	ds, err := csvio.Read(strings.NewReader("timestamp,precip,temp\n2016-01-05 00:00,1.5,-4\n2016-01-05 01:00,,5\n"), "s")
	require.NoError(t, err)
	ds, err = domain.ClassifyPhase(ds, "temp")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, csvio.Write(&buf, ds))

	want := "timestamp,precip,temp,phase\n" +
		"2016-01-05T00:00:00Z,1.5,-4,snow\n" +
		"2016-01-05T01:00:00Z,,5,rain\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_ReadBackIgnoresDerivedColumns(t *testing.T) {
	ds, err := csvio.Read(strings.NewReader("timestamp,precip\n2016-01-05 00:00,3\n2016-01-05 01:00,0.1\n"), "s")
	require.NoError(t, err)
	ds, err = domain.ClassifyPrecipRate(ds, "precip", 0.25, 2.5)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, csvio.Write(&buf, ds))
	assert.Contains(t, buf.String(), "heavy")

	back, err := csvio.Read(&buf, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"precip"}, back.Columns())
	assert.Nil(t, back.PrecipRates())
}

func TestWriteAggregate(t *testing.T) {
	agg := domain.Aggregation{
		Column: "precip",
		Values: []domain.PeriodValue{
			{Start: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), Value: domain.Of(31), Coverage: 1},
			{Start: time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC), Value: domain.Missing(), Coverage: 20.0 / 29},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, csvio.WriteAggregate(&buf, agg))

	want := "period,precip,coverage\n" +
		"2020-01-01,31,1.0000\n" +
		"2020-02-01,,0.6897\n"
	assert.Equal(t, want, buf.String())
}
