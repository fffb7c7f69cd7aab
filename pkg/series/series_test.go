package series

import (
	"errors"
	"testing"

	"holobrowse/internal/models"
	"holobrowse/pkg/repository"
)

// buildRepo creates one dataset per metadata column list
func buildRepo(t *testing.T, fields ...[][2]string) *repository.Repository {
	t.Helper()
	datasets := make([]models.Dataset, len(fields))
	for i, f := range fields {
		var md models.Metadata
		for _, kv := range f {
			md.Add(kv[0], kv[1])
		}
		datasets[i] = models.Dataset{ID: i, Metadata: md}
	}
	repo, err := repository.New(datasets)
	if err != nil {
		t.Fatalf("Failed to build repository: %v", err)
	}
	return repo
}

// TestExtractLength verifies one entry per dataset regardless of metadata length
func TestExtractLength(t *testing.T) {
	repo := buildRepo(t,
		[][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}},
		[][2]string{{"a", "4"}},
		nil,
		[][2]string{{"a", "x"}, {"b", "5.5"}},
		[][2]string{{"a", "NaN"}, {"b", "Inf"}, {"c", "-Inf"}},
	)
	ex := NewExtractor()

	for f := -1; f < 5; f++ {
		if got := len(ex.Extract(repo, f)); got != repo.Len() {
			t.Errorf("Extract(%d) returned %d values, want %d", f, got, repo.Len())
		}
	}

	got := ex.Extract(repo, 1)
	want := []float64{2, Undefined, Undefined, 5.5, Undefined}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	// unparseable value fails only its own entry
	got = ex.Extract(repo, 0)
	want = []float64{1, 4, Undefined, Undefined, Undefined}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Field 0 entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	// non-finite values cannot be graphed
	got = ex.Extract(repo, 2)
	want = []float64{3, Undefined, Undefined, Undefined, Undefined}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Field 2 entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	sum, err := ex.Summarize(ex.Extract(repo, 1))
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if sum.Max != 5.5 || sum.Mean != 3.75 || sum.Count != 2 {
		t.Errorf("Unexpected summary %+v", sum)
	}
}

// TestExtractCustomSentinel verifies a configured sentinel is used
func TestExtractCustomSentinel(t *testing.T) {
	repo := buildRepo(t, [][2]string{{"a", " 7 "}}, nil)
	ex := &Extractor{Undefined: -1}

	got := ex.Extract(repo, 0)
	if got[0] != 7 || got[1] != -1 {
		t.Errorf("Unexpected series %v", got)
	}
}

// TestSummarize verifies range statistics skip the sentinel
func TestSummarize(t *testing.T) {
	ex := NewExtractor()

	sum, err := ex.Summarize([]float64{2, Undefined, 6, 4})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sum.Min != 2 || sum.Max != 6 || sum.Mean != 4 || sum.Count != 3 {
		t.Errorf("Unexpected summary %+v", sum)
	}

	if _, err := ex.Summarize([]float64{Undefined}); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

// TestCursorWrap verifies circular field selection over three fields
func TestCursorWrap(t *testing.T) {
	repo := buildRepo(t,
		[][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}},
		[][2]string{{"a", "1"}},
	)
	c := NewCursor(repo)

	if c.Count() != 3 {
		t.Fatalf("Expected 3 canonical fields, got %d", c.Count())
	}

	steps := []int{c.Next(), c.Next(), c.Next()}
	if steps[0] != 1 || steps[1] != 2 || steps[2] != 0 {
		t.Errorf("Next sequence %v, want [1 2 0]", steps)
	}

	if got := c.Prev(); got != 2 {
		t.Errorf("Prev past 0 should wrap to 2, got %d", got)
	}
	if got := c.Prev(); got != 1 {
		t.Errorf("Expected 1, got %d", got)
	}
}

// TestCursorEmpty verifies the cursor stays at 0 without fields
func TestCursorEmpty(t *testing.T) {
	c := NewCursor(buildRepo(t))
	if c.Next() != 0 || c.Prev() != 0 {
		t.Errorf("Empty cursor must stay at 0")
	}
}
