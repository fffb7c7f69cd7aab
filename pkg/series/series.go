// Package series projects one metadata field across all datasets into the
// ordered sequence drawn by the line graph.
package series

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"holobrowse/pkg/repository"
)

// Undefined marks a dataset without a usable value for the graphed field
const Undefined = -9999.0

// ErrNoData indicates a series without a single defined value
var ErrNoData = errors.New("series has no defined values")

// Extractor builds series with a configurable sentinel
type Extractor struct {
	// Undefined replaces missing or unparseable values
	Undefined float64
}

// NewExtractor creates an extractor using the default sentinel
func NewExtractor() *Extractor {
	return &Extractor{Undefined: Undefined}
}

// Extract returns one value per dataset for the field at position field.
// A dataset whose metadata is too short, or whose value does not parse as a
// finite number, contributes the sentinel; the result always has repo.Len() entries.
func (e *Extractor) Extract(repo *repository.Repository, field int) []float64 {
	out := make([]float64, repo.Len())
	for i := range out {
		md := &repo.Dataset(i).Metadata
		out[i] = e.Undefined
		if !md.Has(field) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(md.Value(field)), 64)
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[i] = v
		}
	}
	return out
}

// Defined returns the values of s that are not the sentinel
func (e *Extractor) Defined(s []float64) []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v != e.Undefined {
			out = append(out, v)
		}
	}
	return out
}

// Summary describes the defined values of a series for axis scaling
type Summary struct {
	Min, Max, Mean float64

	// Count is the number of defined values
	Count int
}

// Summarize returns the range and mean of the defined values of s
func (e *Extractor) Summarize(s []float64) (Summary, error) {
	vals := e.Defined(s)
	if len(vals) == 0 {
		return Summary{}, ErrNoData
	}
	return Summary{
		Min:   floats.Min(vals),
		Max:   floats.Max(vals),
		Mean:  stat.Mean(vals, nil),
		Count: len(vals),
	}, nil
}
