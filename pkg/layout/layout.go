// Package layout places datasets along the depth axis.
//
// Every dataset is drawn at its local panel coordinates shifted by
// id * extent.Z along depth, where extent is the bounding size of the
// panel geometry across all datasets.
package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"holobrowse/internal/models"
	"holobrowse/pkg/repository"
)

// Bounds scans every corner of every panel and returns the component-wise
// minimum and maximum in local space. ok is false when there are no panels.
func Bounds(repo *repository.Repository) (lo, hi r3.Vec, ok bool) {
	lo = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}

	for i := 0; i < repo.Len(); i++ {
		panels := repo.Panels(i)
		for j := range panels {
			for _, c := range panels[j].Corners {
				lo = minVec(lo, c)
				hi = maxVec(hi, c)
				ok = true
			}
		}
	}

	if !ok {
		return r3.Vec{}, r3.Vec{}, false
	}
	return lo, hi, true
}

// ComputeExtent returns max - min of Bounds per component. An empty
// repository, or one without panels, yields the zero vector.
// The result does not depend on scan order.
func ComputeExtent(repo *repository.Repository) r3.Vec {
	lo, hi, ok := Bounds(repo)
	if !ok {
		return r3.Vec{}
	}
	return r3.Sub(hi, lo)
}

// DepthOffset returns the depth shift applied to dataset id
func DepthOffset(id int, extent r3.Vec) float64 {
	return float64(id) * extent.Z
}

// WorldZ returns the depth of the panel plane once its dataset is placed
func WorldZ(p *models.Panel, extent r3.Vec) float64 {
	return p.LocalZ() + DepthOffset(p.DatasetID, extent)
}

// WorldCorners returns the panel corners shifted to their dataset slot
func WorldCorners(p *models.Panel, extent r3.Vec) [4]r3.Vec {
	shift := r3.Vec{Z: DepthOffset(p.DatasetID, extent)}
	var out [4]r3.Vec
	for i, c := range p.Corners {
		out[i] = r3.Add(c, shift)
	}
	return out
}

// Centroid returns the mean of all panel corners of a dataset in local space.
// A dataset without panels has its centroid at the origin.
func Centroid(ds *models.Dataset) r3.Vec {
	if len(ds.Panels) == 0 {
		return r3.Vec{}
	}
	var sum r3.Vec
	for i := range ds.Panels {
		for _, c := range ds.Panels[i].Corners {
			sum = r3.Add(sum, c)
		}
	}
	return r3.Scale(1/float64(4*len(ds.Panels)), sum)
}

func minVec(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

func maxVec(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}
