package quadrature

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Quadrature is a set of points in local coordinates of the unit simplex of dimension Dim, with weights.
// The unit simplex has vertex 0 at the origin and vertex i at the i-th unit vector.
type Quadrature struct {
	Dim     int
	Points  [][]float64
	Weights []float64
}

func NewQuadrature(dim int, points [][]float64, weights []float64) (q *Quadrature, err error) {
	if len(points) != len(weights) {
		err = fmt.Errorf("quadrature has %d points and %d weights", len(points), len(weights))
		return
	}
	for i, p := range points {
		if len(p) != dim {
			err = fmt.Errorf("quadrature point %d has %d coordinates, dimension is %d", i, len(p), dim)
			return
		}
	}
	q = &Quadrature{
		Dim:     dim,
		Points:  points,
		Weights: weights,
	}
	return
}

func (q *Quadrature) Size() int { return len(q.Weights) }

func (q *Quadrature) Point(i int) []float64 { return q.Points[i] }

func (q *Quadrature) Weight(i int) float64 { return q.Weights[i] }

func (q *Quadrature) SumWeights() float64 { return floats.Sum(q.Weights) }

// NewPointQuadrature is a single point rule with unit weight, used to evaluate at a given local point
func NewPointQuadrature(p []float64) *Quadrature {
	pp := make([]float64, len(p))
	copy(pp, p)
	return &Quadrature{
		Dim:     len(p),
		Points:  [][]float64{pp},
		Weights: []float64{1},
	}
}

// NewGaussSimplex returns a collapsed coordinate Gauss-Jacobi rule on the unit simplex
// that integrates polynomials of total degree up to order exactly.
// Coordinate k is collapsed as x_k = u_k * prod_{l<k}(1-u_l), which puts the weight
// (1-u_k)^(dim-1-k) on the k-th 1D rule.
func NewGaussSimplex(dim, order int) (q *Quadrature) {
	if dim < 0 || dim > 3 {
		panic(fmt.Errorf("simplex quadrature of dimension %d is not supported", dim))
	}
	if order < 0 {
		order = 0
	}
	q = &Quadrature{Dim: dim}
	if dim == 0 {
		q.Points = [][]float64{{}}
		q.Weights = []float64{1}
		return
	}
	var (
		nPts = order/2 + 1
		u    = make([][]float64, dim)
		wu   = make([][]float64, dim)
	)
	for k := 0; k < dim; k++ {
		alpha := float64(dim - 1 - k)
		x, w := JacobiGQ(alpha, 0, nPts-1)
		u[k] = make([]float64, nPts)
		wu[k] = make([]float64, nPts)
		scale := math.Pow(2, -(alpha + 1))
		for i := range x {
			u[k][i] = 0.5 * (1 + x[i])
			wu[k][i] = w[i] * scale
		}
	}
	var (
		total = int(math.Pow(float64(nPts), float64(dim)))
		idx   = make([]int, dim)
	)
	q.Points = make([][]float64, total)
	q.Weights = make([]float64, total)
	for n := 0; n < total; n++ {
		rem := n
		for k := dim - 1; k >= 0; k-- {
			idx[k] = rem % nPts
			rem /= nPts
		}
		var (
			p      = make([]float64, dim)
			w      = 1.
			factor = 1.
		)
		for k := 0; k < dim; k++ {
			uk := u[k][idx[k]]
			p[k] = uk * factor
			factor *= 1 - uk
			w *= wu[k][idx[k]]
		}
		q.Points[n] = p
		q.Weights[n] = w
	}
	return
}

// MakeSideQuadrature embeds a rule on the unit (dim-1)-simplex into side "side" of the unit dim-simplex.
// Side s is opposite vertex s. Weights are unchanged and refer to the (dim-1)-dimensional measure of
// the unit side simplex.
func MakeSideQuadrature(q *Quadrature, side int) (sq *Quadrature) {
	var (
		dim = q.Dim + 1
	)
	if side < 0 || side > dim {
		panic(fmt.Errorf("side %d out of range for a simplex of dimension %d", side, dim))
	}
	sideVerts := make([]int, 0, dim)
	for v := 0; v <= dim; v++ {
		if v != side {
			sideVerts = append(sideVerts, v)
		}
	}
	sq = &Quadrature{
		Dim:     dim,
		Points:  make([][]float64, q.Size()),
		Weights: make([]float64, q.Size()),
	}
	copy(sq.Weights, q.Weights)
	for i, sp := range q.Points {
		var (
			bary     = make([]float64, dim+1)
			sideBary = make([]float64, dim)
		)
		sideBary[0] = 1 - floats.Sum(sp)
		copy(sideBary[1:], sp)
		for k, v := range sideVerts {
			bary[v] = sideBary[k]
		}
		sq.Points[i] = bary[1:]
	}
	return
}
