package texture

import (
	"image"
	"sync"

	"holobrowse/internal/models"
	"holobrowse/pkg/repository"
)

// Problem is a panel whose texture could not be read
type Problem struct {
	Ref  models.PanelRef
	Path string
	Err  error
}

// Atlas holds decoded textures indexed by handle. Handle 0 means no texture.
type Atlas struct {
	images []*image.NRGBA
}

// Image returns the texture for handle, or nil
func (a *Atlas) Image(handle uint32) *image.NRGBA {
	if handle == 0 || int(handle) > len(a.images) {
		return nil
	}
	return a.images[handle-1]
}

// Len returns the number of slots in the atlas
func (a *Atlas) Len() int {
	return len(a.images)
}

// Check reads the header of every panel texture, splitting datasets across
// cores goroutines. Problems are returned in dataset order.
func Check(repo *repository.Repository, cores int) []Problem {
	return forEachPanel(repo, cores, func(ref models.PanelRef, p *models.Panel, _ int) error {
		_, _, err := Size(p.Texture.Path)
		return err
	})
}

// Preload decodes every panel texture into an atlas and records each
// panel's handle in the repository. Panels whose texture fails keep handle 0.
func Preload(repo *repository.Repository, cores int) (*Atlas, []Problem) {
	atlas := &Atlas{images: make([]*image.NRGBA, repo.PanelCount())}

	problems := forEachPanel(repo, cores, func(ref models.PanelRef, p *models.Panel, slot int) error {
		img, err := Load(p.Texture.Path)
		if err != nil {
			return err
		}
		// each slot belongs to exactly one panel
		atlas.images[slot] = img
		repo.SetTextureHandle(ref, uint32(slot+1))
		return nil
	})
	return atlas, problems
}

// forEachPanel runs fn for every panel. Datasets are divided into contiguous
// ranges, one per goroutine. slot is the panel's position in dataset order.
func forEachPanel(repo *repository.Repository, cores int, fn func(ref models.PanelRef, p *models.Panel, slot int) error) []Problem {
	n := repo.Len()
	if cores < 1 {
		cores = 1
	}

	// first slot of every dataset
	first := make([]int, n)
	total := 0
	for i := 0; i < n; i++ {
		first[i] = total
		total += len(repo.Panels(i))
	}

	perCore := (n + cores - 1) / cores
	results := make([][]Problem, cores)

	var wg sync.WaitGroup
	for c := 0; c < cores; c++ {
		start := c * perCore
		if start >= n {
			break
		}
		end := min(start+perCore, n)

		wg.Add(1)
		go func(coreID, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				panels := repo.Panels(i)
				for j := range panels {
					ref := models.PanelRef{Dataset: i, Index: j}
					if err := fn(ref, &panels[j], first[i]+j); err != nil {
						results[coreID] = append(results[coreID], Problem{Ref: ref, Path: panels[j].Texture.Path, Err: err})
					}
				}
			}
		}(c, start, end)
	}
	wg.Wait()

	var out []Problem
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}
