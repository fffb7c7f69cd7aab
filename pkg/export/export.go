// Package export writes the repository's series and panels to an xlsx workbook.
package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"holobrowse/pkg/layout"
	"holobrowse/pkg/repository"
	"holobrowse/pkg/series"
)

// Sheet names of the exported workbook
const (
	SeriesSheet  = "Series"
	SummarySheet = "Summary"
	PanelsSheet  = "Panels"
)

// Exporter builds workbooks from a repository
type Exporter struct {
	repo      *repository.Repository
	extent    r3.Vec
	extractor *series.Extractor
}

// New creates an exporter. A nil extractor uses the default sentinel.
func New(repo *repository.Repository, extractor *series.Extractor) *Exporter {
	if extractor == nil {
		extractor = series.NewExtractor()
	}
	return &Exporter{
		repo:      repo,
		extent:    layout.ComputeExtent(repo),
		extractor: extractor,
	}
}

// Fields returns the canonical field names, taken from dataset 0
func (x *Exporter) Fields() []string {
	if x.repo.Len() == 0 {
		return nil
	}
	names, _ := x.repo.Metadata(0)
	return names
}

// Workbook builds the workbook in memory. The caller closes it.
func (x *Exporter) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SeriesSheet); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SummarySheet, PanelsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := x.writeSeries(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("error writing %s sheet: %w", SeriesSheet, err)
	}
	if err := x.writeSummary(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("error writing %s sheet: %w", SummarySheet, err)
	}
	if err := x.writePanels(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("error writing %s sheet: %w", PanelsSheet, err)
	}

	return f, nil
}

// Save writes the workbook to path
func (x *Exporter) Save(path string) error {
	f, err := x.Workbook()
	if err != nil {
		return err
	}
	defer f.Close()

	return f.SaveAs(path)
}

// writeSeries lays out one row per dataset and one column per field.
// Sentinel values are left blank.
func (x *Exporter) writeSeries(f *excelize.File) error {
	fields := x.Fields()

	header := []interface{}{"Dataset", "Label"}
	for _, name := range fields {
		header = append(header, name)
	}
	if err := f.SetSheetRow(SeriesSheet, "A1", &header); err != nil {
		return err
	}

	for i := 0; i < x.repo.Len(); i++ {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SeriesSheet, cell, &[]interface{}{i, x.repo.Label(i)}); err != nil {
			return err
		}
	}

	for j := range fields {
		values := x.extractor.Extract(x.repo, j)
		for i, v := range values {
			if v == x.extractor.Undefined {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+3, i+2)
			if err := f.SetCellValue(SeriesSheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeSummary lists the range and mean of every field with defined values
func (x *Exporter) writeSummary(f *excelize.File) error {
	header := []interface{}{"Field", "Min", "Max", "Mean", "Count"}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return err
	}

	for j, name := range x.Fields() {
		row := []interface{}{name}
		sum, err := x.extractor.Summarize(x.extractor.Extract(x.repo, j))
		switch {
		case errors.Is(err, series.ErrNoData):
			row = append(row, nil, nil, nil, 0)
		case err != nil:
			return err
		default:
			row = append(row, sum.Min, sum.Max, sum.Mean, sum.Count)
		}

		cell, _ := excelize.CoordinatesToCellName(1, j+2)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// writePanels lists every panel with its local rectangle and world depth
func (x *Exporter) writePanels(f *excelize.File) error {
	header := []interface{}{"Dataset", "Panel", "Type", "ESD", "ESV", "MinX", "MinY", "MaxX", "MaxY", "LocalZ", "WorldZ", "Texture"}
	if err := f.SetSheetRow(PanelsSheet, "A1", &header); err != nil {
		return err
	}

	row := 2
	for i := 0; i < x.repo.Len(); i++ {
		panels := x.repo.Panels(i)
		for j := range panels {
			p := &panels[j]
			minX, minY, maxX, maxY := p.Rect()
			values := []interface{}{
				i, j, p.Type, p.ESD, p.ESV,
				minX, minY, maxX, maxY,
				p.LocalZ(), layout.WorldZ(p, x.extent),
				p.Texture.Path,
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(PanelsSheet, cell, &values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
