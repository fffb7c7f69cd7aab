package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"holobrowse/internal/models"
	"holobrowse/pkg/layout"
	"holobrowse/pkg/repository"
)

// Viewer renders flat previews of the dataset stack: a face-on view of one
// dataset, or a cut through the whole stack along x or y.
type Viewer struct {
	repo   *repository.Repository
	extent r3.Vec

	// min is the lowest local corner over all panels
	min r3.Vec

	// resolution is the number of pixels per normalized unit
	resolution float64
}

// NewViewer creates a preview renderer
func NewViewer(repo *repository.Repository, extent r3.Vec, resolution float64) *Viewer {
	v := &Viewer{repo: repo, extent: extent, resolution: resolution}
	v.min, _, _ = layout.Bounds(repo)
	return v
}

// pixels converts a length in normalized units to a pixel count, at least 1
func (v *Viewer) pixels(length float64) int {
	return max(1, int(math.Ceil(length*v.resolution)))
}

// Size returns the face-on image size and the depth of the whole stack in pixels
func (v *Viewer) Size() (width, height, depth int) {
	n := v.repo.Len()
	stack := float64(max(n-1, 0))*v.extent.Z + v.extent.Z
	return v.pixels(v.extent.X), v.pixels(v.extent.Y), v.pixels(stack)
}

// ExtractSlice renders a slice of the stack.
//   - "z": position is a dataset index; the image shows its panels face-on.
//   - "x": position is a pixel column; the image shows depth against y.
//   - "y": position is a pixel row; the image shows x against depth.
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	width, height, depth := v.Size()
	white := color.Gray16{Y: 65535}

	switch axis {
	case "z", "Z":
		if position >= v.repo.Len() {
			return nil, fmt.Errorf("position %d exceeds dataset count %d", position, v.repo.Len())
		}
		img := image.NewGray16(image.Rect(0, 0, width, height))
		panels := v.repo.Panels(position)
		for j := range panels {
			minX, minY, maxX, maxY := panels[j].Rect()
			x0, x1 := v.span(minX-v.min.X, maxX-v.min.X, width)
			// image rows grow downwards, panel y grows upwards
			y0, y1 := v.rows(minY, maxY, height)
			for y := y0; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					img.SetGray16(x, y, white)
				}
			}
		}
		return img, nil

	case "x", "X":
		if position >= width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, width)
		}
		img := image.NewGray16(image.Rect(0, 0, depth, height))
		at := v.min.X + (float64(position)+0.5)/v.resolution
		v.eachPanel(func(p *models.Panel) {
			minX, minY, maxX, maxY := p.Rect()
			if at < minX || at > maxX {
				return
			}
			col := v.depthPixel(p, depth)
			y0, y1 := v.rows(minY, maxY, height)
			for y := y0; y <= y1; y++ {
				img.SetGray16(col, y, white)
			}
		})
		return img, nil

	case "y", "Y":
		if position >= height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, height)
		}
		img := image.NewGray16(image.Rect(0, 0, width, depth))
		// rows are counted from the top of the face-on image
		at := v.min.Y + (float64(height-1-position)+0.5)/v.resolution
		v.eachPanel(func(p *models.Panel) {
			minX, minY, maxX, maxY := p.Rect()
			if at < minY || at > maxY {
				return
			}
			row := v.depthPixel(p, depth)
			x0, x1 := v.span(minX-v.min.X, maxX-v.min.X, width)
			for x := x0; x <= x1; x++ {
				img.SetGray16(x, row, white)
			}
		})
		return img, nil

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}
}

// span converts a range of offsets to inclusive pixel indexes clamped to [0, n)
func (v *Viewer) span(a, b float64, n int) (int, int) {
	if a > b {
		a, b = b, a
	}
	lo := clampPixel(int(math.Floor(a*v.resolution)), n)
	hi := clampPixel(int(math.Ceil(b*v.resolution))-1, n)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// rows converts a panel y range to image rows, top row first
func (v *Viewer) rows(minY, maxY float64, height int) (int, int) {
	lo, hi := v.span(minY-v.min.Y, maxY-v.min.Y, height)
	return height - 1 - hi, height - 1 - lo
}

func (v *Viewer) depthPixel(p *models.Panel, depth int) int {
	dz := layout.WorldZ(p, v.extent) - v.min.Z
	return clampPixel(int(math.Floor(dz*v.resolution)), depth)
}

func (v *Viewer) eachPanel(fn func(p *models.Panel)) {
	for i := 0; i < v.repo.Len(); i++ {
		panels := v.repo.Panels(i)
		for j := range panels {
			fn(&panels[j])
		}
	}
}

func clampPixel(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// SaveSlice saves an extracted slice as a JPEG image
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence extracts and saves every slice along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	width, height, _ := v.Size()
	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = width
	case "y", "Y":
		maxPos = height
	case "z", "Z":
		maxPos = v.repo.Len()
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.jpg", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
