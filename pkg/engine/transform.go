package engine

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is a 4x4 homogeneous matrix in column-major order, the layout
// device poses are delivered in.
type Transform [16]float64

// Identity returns the identity transform
func Identity() Transform {
	return Transform{0: 1, 5: 1, 10: 1, 15: 1}
}

// Translation returns a transform moving points by v
func Translation(v r3.Vec) Transform {
	t := Identity()
	t[12], t[13], t[14] = v.X, v.Y, v.Z
	return t
}

// RotationY returns a rotation about the Y axis by angle radians
func RotationY(angle float64) Transform {
	c, s := math.Cos(angle), math.Sin(angle)
	t := Identity()
	t[0], t[2] = c, -s
	t[8], t[10] = s, c
	return t
}

// dense converts to a gonum matrix
func (t Transform) dense() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			m.Set(r, c, t[c*4+r])
		}
	}
	return m
}

func fromDense(m mat.Matrix) Transform {
	var t Transform
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			t[c*4+r] = m.At(r, c)
		}
	}
	return t
}

// Mul returns t * u
func (t Transform) Mul(u Transform) Transform {
	var m mat.Dense
	m.Mul(t.dense(), u.dense())
	return fromDense(&m)
}

// Inverse returns the inverse transform. A singular matrix has no inverse.
func (t Transform) Inverse() (Transform, error) {
	var m mat.Dense
	if err := m.Inverse(t.dense()); err != nil {
		return Transform{}, err
	}
	return fromDense(&m), nil
}

// Point applies the transform to a point (w = 1)
func (t Transform) Point(p r3.Vec) r3.Vec {
	return t.apply(p, 1)
}

// Vector applies the transform to a direction (w = 0)
func (t Transform) Vector(v r3.Vec) r3.Vec {
	return t.apply(v, 0)
}

func (t Transform) apply(v r3.Vec, w float64) r3.Vec {
	in := mat.NewVecDense(4, []float64{v.X, v.Y, v.Z, w})
	var out mat.VecDense
	out.MulVec(t.dense(), in)
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// Position returns the translation column
func (t Transform) Position() r3.Vec {
	return r3.Vec{X: t[12], Y: t[13], Z: t[14]}
}
