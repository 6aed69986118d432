package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capcurve/capcurve/schema"
)

func TestMonthlyRowStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	sc := parquet.SchemaOf(new(MonthlyRow))
	require.NotNil(t, sc)

	expectedColumns := []string{
		"month",
		"commits",
		"capability",
		"sophistication",
		"cumulative_commits",
		"cumulative_capability",
		"predicted_capability",
	}

	for _, colName := range expectedColumns {
		col, ok := sc.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestWeeklyRowStructTags(t *testing.T) {
	sc := parquet.SchemaOf(new(WeeklyRow))
	require.NotNil(t, sc)

	expectedColumns := []string{"week", "start", "commits", "capability"}

	for _, colName := range expectedColumns {
		col, ok := sc.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestConvertMonthlyBuckets(t *testing.T) {
	buckets := []schema.MonthlyBucket{
		{Month: "2025-01", Commits: 400, Capability: 900, Sophistication: 0.25, CumulativeCommits: 400, CumulativeCapability: 900},
		{Month: "2025-02", Commits: 834, Capability: 2100, Sophistication: 0.31, CumulativeCommits: 1234, CumulativeCapability: 3000},
	}
	models := schema.Models{
		Capability: &schema.CapabilityModel{
			Projection: []schema.CapabilityProjection{
				{Month: "2025-02", PredictedCapability: 2900},
			},
		},
	}

	rows := ConvertMonthlyBuckets(buckets, models)
	require.Len(t, rows, 2)

	assert.Equal(t, "2025-01", rows[0].Month)
	assert.Equal(t, int32(400), rows[0].Commits)
	assert.Nil(t, rows[0].PredictedCapability, "month without projection should have nil prediction")

	require.NotNil(t, rows[1].PredictedCapability)
	assert.Equal(t, int32(2900), *rows[1].PredictedCapability)
	assert.Equal(t, int32(3000), rows[1].CumulativeCapability)
}

func TestConvertMonthlyBucketsNoModel(t *testing.T) {
	buckets := []schema.MonthlyBucket{{Month: "2025-01", Commits: 1}}
	rows := ConvertMonthlyBuckets(buckets, schema.Models{})
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].PredictedCapability)
}

func TestConvertWeeklyBuckets(t *testing.T) {
	buckets := []schema.WeeklyBucket{
		{Week: 0, Start: "2025-01-01", Commits: 120, Capability: 250},
	}
	rows := ConvertWeeklyBuckets(buckets)
	require.Len(t, rows, 1)
	assert.Equal(t, int32(0), rows[0].Week)
	assert.Equal(t, "2025-01-01", rows[0].Start)
	assert.Equal(t, int32(250), rows[0].Capability)
}

func TestWriteMonthlyParquetRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "monthly.parquet")

	pred := int32(2900)
	data := []MonthlyRow{
		{Month: "2025-01", Commits: 400, Capability: 900, Sophistication: 0.25, CumulativeCommits: 400, CumulativeCapability: 900},
		{Month: "2025-02", Commits: 834, Capability: 2100, Sophistication: 0.31, CumulativeCommits: 1234, CumulativeCapability: 3000, PredictedCapability: &pred},
	}

	err := WriteMonthlyParquet(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[MonthlyRow](file)
	defer reader.Close()

	readData := make([]MonthlyRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n, "Should read all records")

	assert.Equal(t, data[0], readData[0])
	require.NotNil(t, readData[1].PredictedCapability)
	assert.Equal(t, int32(2900), *readData[1].PredictedCapability)
	assert.Nil(t, readData[0].PredictedCapability, "nil prediction should survive the round trip")
}

func TestWriteWeeklyParquetRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "weekly.parquet")

	data := []WeeklyRow{
		{Week: 0, Start: "2025-01-01", Commits: 120, Capability: 250},
		{Week: 1, Start: "2025-01-08", Commits: 98, Capability: 210},
	}

	err := WriteWeeklyParquet(data, outputPath)
	require.NoError(t, err)

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[WeeklyRow](file)
	defer reader.Close()

	readData := make([]WeeklyRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)
	assert.Equal(t, data, readData)
}

func TestWriteMonthlyParquetEmptyData(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "empty_monthly.parquet")

	err := WriteMonthlyParquet([]MonthlyRow{}, outputPath)
	require.NoError(t, err, "Writing empty data should not produce error")

	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteWeeklyParquetInvalidPath(t *testing.T) {
	err := WriteWeeklyParquet([]WeeklyRow{{Week: 0}}, "/nonexistent/directory/output.parquet")
	require.Error(t, err, "Writing to invalid path should produce error")
}
