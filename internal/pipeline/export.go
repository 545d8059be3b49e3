package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"labelpipe/internal/measure"
)

var csvHeader = []string{
	"label", "area", "perimeter", "centroid_row", "centroid_col",
	"major_axis_length", "minor_axis_length", "eccentricity", "solidity",
	"orientation", "mean_intensity", "min_intensity", "max_intensity",
	"integrated_intensity", "contrast", "dissimilarity", "homogeneity",
	"energy", "correlation",
}

// WriteCSV serializes object records as a delimited table, one row per label
// in ascending label order. ids selects a subset; nil exports everything.
// Columns for absent feature groups are left empty rather than zero-filled.
func WriteCSV(w io.Writer, records map[int]measure.ObjectRecord, ids []int) error {
	if ids == nil {
		ids = measure.Labels(records)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, id := range ids {
		rec, ok := records[id]
		if !ok {
			return fmt.Errorf("no record for label %d", id)
		}
		if err := writer.Write(recordRow(rec)); err != nil {
			return fmt.Errorf("failed to write CSV row for label %d: %w", id, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func recordRow(rec measure.ObjectRecord) []string {
	row := []string{
		strconv.Itoa(rec.Label),
		strconv.Itoa(rec.Area),
		formatFloat(rec.Perimeter),
		formatFloat(rec.Centroid[0]),
		formatFloat(rec.Centroid[1]),
		formatFloat(rec.MajorAxisLength),
		formatFloat(rec.MinorAxisLength),
		formatFloat(rec.Eccentricity),
		formatFloat(rec.Solidity),
		formatFloat(rec.Orientation),
	}

	if rec.Intensity != nil {
		row = append(row,
			formatFloat(rec.Intensity.Mean),
			formatFloat(rec.Intensity.Min),
			formatFloat(rec.Intensity.Max),
			formatFloat(rec.Intensity.Integrated),
		)
	} else {
		row = append(row, "", "", "", "")
	}

	if rec.Texture != nil {
		row = append(row,
			formatFloat(rec.Texture.Contrast),
			formatFloat(rec.Texture.Dissimilarity),
			formatFloat(rec.Texture.Homogeneity),
			formatFloat(rec.Texture.Energy),
			formatFloat(rec.Texture.Correlation),
		)
	} else {
		row = append(row, "", "", "", "", "")
	}

	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
