// Package repository holds the ordered, immutable collection of datasets
// that the interaction code reads every frame.
package repository

import (
	"errors"
	"fmt"

	"holobrowse/internal/models"
)

// ErrIDMismatch indicates a dataset or panel whose id does not match its slot
var ErrIDMismatch = errors.New("dataset id does not match its position")

// Repository is the full ordered sequence of datasets. It is built once and
// never resized; the only later mutation is texture handle assignment by the
// renderer (see SetTextureHandle).
type Repository struct {
	datasets []models.Dataset
}

// New creates a repository from datasets already in depth order.
// Every dataset's ID must equal its position and every panel's DatasetID
// must equal its dataset's ID.
func New(datasets []models.Dataset) (*Repository, error) {
	for i := range datasets {
		ds := &datasets[i]
		if ds.ID != i {
			return nil, fmt.Errorf("dataset %q at position %d has id %d: %w", ds.Label, i, ds.ID, ErrIDMismatch)
		}
		for j := range ds.Panels {
			if ds.Panels[j].DatasetID != i {
				return nil, fmt.Errorf("panel %d of dataset %d has dataset id %d: %w",
					j, i, ds.Panels[j].DatasetID, ErrIDMismatch)
			}
		}
	}
	return &Repository{datasets: datasets}, nil
}

// Len returns the number of datasets
func (r *Repository) Len() int {
	return len(r.datasets)
}

// Dataset returns dataset i. It panics if i is out of [0, Len()).
func (r *Repository) Dataset(i int) *models.Dataset {
	r.check(i)
	return &r.datasets[i]
}

// Panels returns the panels of dataset i in order. It panics if i is out of range.
// The returned slice must not be modified.
func (r *Repository) Panels(i int) []models.Panel {
	r.check(i)
	return r.datasets[i].Panels
}

// Metadata returns the field names and raw values of dataset i as parallel slices.
// It panics if i is out of range.
func (r *Repository) Metadata(i int) (names, values []string) {
	r.check(i)
	md := &r.datasets[i].Metadata
	return md.Names(), md.Values()
}

// Label returns the display label of dataset i. It panics if i is out of range.
func (r *Repository) Label(i int) string {
	r.check(i)
	return r.datasets[i].Label
}

// Panel resolves a reference. The second result is false when the
// reference does not address a panel of this repository.
func (r *Repository) Panel(ref models.PanelRef) (*models.Panel, bool) {
	if ref.Dataset < 0 || ref.Dataset >= len(r.datasets) {
		return nil, false
	}
	panels := r.datasets[ref.Dataset].Panels
	if ref.Index < 0 || ref.Index >= len(panels) {
		return nil, false
	}
	return &panels[ref.Index], true
}

// PanelCount returns the total number of panels across all datasets
func (r *Repository) PanelCount() int {
	n := 0
	for i := range r.datasets {
		n += len(r.datasets[i].Panels)
	}
	return n
}

// SetTextureHandle records the renderer's handle for an uploaded texture
func (r *Repository) SetTextureHandle(ref models.PanelRef, handle uint32) bool {
	p, ok := r.Panel(ref)
	if !ok {
		return false
	}
	p.Texture.Handle = handle
	return true
}

// Clamp limits i to a valid dataset index. With no datasets it returns 0.
func (r *Repository) Clamp(i int) int {
	if i >= len(r.datasets) {
		i = len(r.datasets) - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (r *Repository) check(i int) {
	if i < 0 || i >= len(r.datasets) {
		panic(fmt.Sprintf("repository: dataset index %d out of range [0, %d)", i, len(r.datasets)))
	}
}
