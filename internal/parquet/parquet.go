// Package parquet exports the aggregated scan series to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/capcurve/capcurve/schema"
)

// MonthlyRow is one month of aggregated activity in the export schema.
type MonthlyRow struct {
	// Month is the calendar month formatted YYYY-MM
	Month string `parquet:"month,snappy"`

	// Commits is the number of commits landed in the month
	Commits int32 `parquet:"commits,snappy"`

	// Capability is the rounded capability points earned in the month
	Capability int32 `parquet:"capability,snappy"`

	// Sophistication is the smoothed high-level work ratio for the month
	Sophistication float64 `parquet:"sophistication,snappy"`

	// CumulativeCommits is the running commit total through this month
	CumulativeCommits int32 `parquet:"cumulative_commits,snappy"`

	// CumulativeCapability is the running capability total through this month
	CumulativeCapability int32 `parquet:"cumulative_capability,snappy"`

	// PredictedCapability is the fitted curve value for the month (nullable)
	PredictedCapability *int32 `parquet:"predicted_capability,optional,snappy"`
}

// WeeklyRow is one week of activity in the export schema.
type WeeklyRow struct {
	// Week is the zero-based week index counted from the inception date
	Week int32 `parquet:"week,snappy"`

	// Start is the ISO date of the week's first day
	Start string `parquet:"start,snappy"`

	// Commits is the number of commits landed in the week
	Commits int32 `parquet:"commits,snappy"`

	// Capability is the rounded capability points earned in the week
	Capability int32 `parquet:"capability,snappy"`
}

// WriteMonthlyParquet writes a slice of MonthlyRow structs to a Parquet file.
func WriteMonthlyParquet(data []MonthlyRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema is inferred from the MonthlyRow struct tags
	writer := parquet.NewGenericWriter[MonthlyRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteWeeklyParquet writes a slice of WeeklyRow structs to a Parquet file.
func WriteWeeklyParquet(data []WeeklyRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema is inferred from the WeeklyRow struct tags
	writer := parquet.NewGenericWriter[WeeklyRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertMonthlyBuckets converts report monthly buckets to export rows,
// joining each month with its fitted projection value when one exists.
func ConvertMonthlyBuckets(buckets []schema.MonthlyBucket, models schema.Models) []MonthlyRow {
	predicted := map[string]int32{}
	if models.Capability != nil {
		for _, p := range models.Capability.Projection {
			predicted[p.Month] = int32(p.PredictedCapability)
		}
	}

	result := make([]MonthlyRow, len(buckets))
	for i, b := range buckets {
		row := MonthlyRow{
			Month:                b.Month,
			Commits:              int32(b.Commits),
			Capability:           int32(b.Capability),
			Sophistication:       b.Sophistication,
			CumulativeCommits:    int32(b.CumulativeCommits),
			CumulativeCapability: int32(b.CumulativeCapability),
		}
		if p, ok := predicted[b.Month]; ok {
			row.PredictedCapability = &p
		}
		result[i] = row
	}
	return result
}

// ConvertWeeklyBuckets converts report weekly buckets to export rows.
func ConvertWeeklyBuckets(buckets []schema.WeeklyBucket) []WeeklyRow {
	result := make([]WeeklyRow, len(buckets))
	for i, b := range buckets {
		result[i] = WeeklyRow{
			Week:       int32(b.Week),
			Start:      b.Start,
			Commits:    int32(b.Commits),
			Capability: int32(b.Capability),
		}
	}
	return result
}
