package repository

import (
	"errors"
	"testing"

	"holobrowse/internal/models"
)

func testDatasets(n int) []models.Dataset {
	datasets := make([]models.Dataset, n)
	for i := range datasets {
		datasets[i] = models.Dataset{
			ID:       i,
			Label:    "set",
			Panels:   []models.Panel{{DatasetID: i}, {DatasetID: i}},
			Metadata: models.NewMetadata([]string{"a"}, []string{"1"}),
		}
	}
	return datasets
}

// TestNewRepository verifies construction and lookups
func TestNewRepository(t *testing.T) {
	repo, err := New(testDatasets(3))
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}

	if repo.Len() != 3 {
		t.Errorf("Expected 3 datasets, got %d", repo.Len())
	}

	if len(repo.Panels(2)) != 2 {
		t.Errorf("Expected 2 panels, got %d", len(repo.Panels(2)))
	}

	if repo.PanelCount() != 6 {
		t.Errorf("Expected 6 panels in total, got %d", repo.PanelCount())
	}

	names, values := repo.Metadata(1)
	if len(names) != 1 || names[0] != "a" || values[0] != "1" {
		t.Errorf("Unexpected metadata: %v %v", names, values)
	}
}

// TestIDMismatch verifies the id == position invariant is enforced
func TestIDMismatch(t *testing.T) {
	datasets := testDatasets(2)
	datasets[1].ID = 5
	if _, err := New(datasets); !errors.Is(err, ErrIDMismatch) {
		t.Errorf("Expected ErrIDMismatch, got %v", err)
	}

	datasets = testDatasets(2)
	datasets[0].Panels[1].DatasetID = 1
	if _, err := New(datasets); !errors.Is(err, ErrIDMismatch) {
		t.Errorf("Expected ErrIDMismatch for panel, got %v", err)
	}
}

// TestOutOfRangePanics verifies that out-of-range access is a contract violation
func TestOutOfRangePanics(t *testing.T) {
	repo, _ := New(testDatasets(1))
	defer func() {
		if recover() == nil {
			t.Errorf("Expected a panic for index 1")
		}
	}()
	repo.Panels(1)
}

// TestPanelRef verifies reference resolution and texture handle assignment
func TestPanelRef(t *testing.T) {
	repo, _ := New(testDatasets(2))

	if _, ok := repo.Panel(models.PanelRef{Dataset: 1, Index: 2}); ok {
		t.Errorf("Expected invalid reference")
	}

	ref := models.PanelRef{Dataset: 1, Index: 1}
	if !repo.SetTextureHandle(ref, 42) {
		t.Fatalf("Failed to set texture handle")
	}
	p, ok := repo.Panel(ref)
	if !ok || p.Texture.Handle != 42 {
		t.Errorf("Expected handle 42, got %+v", p)
	}
}

// TestClamp verifies index clamping including the empty repository
func TestClamp(t *testing.T) {
	repo, _ := New(testDatasets(5))
	for _, tc := range []struct{ in, want int }{{-3, 0}, {2, 2}, {9, 4}} {
		if got := repo.Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}

	empty, _ := New(nil)
	if empty.Clamp(3) != 0 {
		t.Errorf("Expected 0 for an empty repository")
	}
}
