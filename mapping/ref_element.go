package mapping

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/simplexfe/utils"
)

// RefElement is the unit simplex of dimension Dim: vertex 0 at the origin, vertex i at the i-th unit vector.
// Barycentric coordinates are (1 - sum(x), x_1, ..., x_dim), side s is the sub-simplex opposite vertex s.
type RefElement struct {
	Dim int
}

func NewRefElement(dim int) RefElement {
	if dim < 0 || dim > 3 {
		panic(fmt.Errorf("reference simplex of dimension %d is not supported", dim))
	}
	return RefElement{Dim: dim}
}

func (re RefElement) NVertices() int { return re.Dim + 1 }

func (re RefElement) NSides() int {
	if re.Dim == 0 {
		return 0
	}
	return re.Dim + 1
}

// Measure is 1/dim!
func (re RefElement) Measure() float64 {
	return 1. / float64(utils.Factorial(re.Dim))
}

func (re RefElement) Vertex(i int) (p []float64) {
	re.checkVertex(i)
	p = make([]float64, re.Dim)
	if i > 0 {
		p[i-1] = 1
	}
	return
}

func (re RefElement) LocalToBary(p []float64) (bary []float64) {
	if len(p) != re.Dim {
		panic(fmt.Errorf("local point has %d coordinates, dimension is %d", len(p), re.Dim))
	}
	bary = make([]float64, re.Dim+1)
	bary[0] = 1 - floats.Sum(p)
	copy(bary[1:], p)
	return
}

func (re RefElement) BaryToLocal(bary []float64) (p []float64) {
	re.checkBary(bary)
	p = make([]float64, re.Dim)
	copy(p, bary[1:])
	return
}

func (re RefElement) SideVertices(side int) (verts []int) {
	re.checkSide(side)
	verts = make([]int, 0, re.Dim)
	for v := 0; v <= re.Dim; v++ {
		if v != side {
			verts = append(verts, v)
		}
	}
	return
}

// SideBarycenter returns the barycentric coordinates of the center of side
func (re RefElement) SideBarycenter(side int) (bary []float64) {
	re.checkSide(side)
	bary = make([]float64, re.Dim+1)
	for v := range bary {
		if v != side {
			bary[v] = 1. / float64(re.Dim)
		}
	}
	return
}

// Normal is the outward unit normal of side in local coordinates
func (re RefElement) Normal(side int) (n []float64) {
	re.checkSide(side)
	n = make([]float64, re.Dim)
	if side == 0 {
		for i := range n {
			n[i] = 1. / math.Sqrt(float64(re.Dim))
		}
		return
	}
	n[side-1] = -1
	return
}

// SideMeasure is the (dim-1)-dimensional measure of side
func (re RefElement) SideMeasure(side int) float64 {
	re.checkSide(side)
	m := 1. / float64(utils.Factorial(re.Dim-1))
	if side == 0 {
		m *= math.Sqrt(float64(re.Dim))
	}
	return m
}

// Clip moves a barycentric point onto the closed simplex: negative coordinates become zero
// and the rest are rescaled to sum to one
func (re RefElement) Clip(bary []float64) (clipped []float64) {
	re.checkBary(bary)
	clipped = make([]float64, len(bary))
	var sum float64
	for i, b := range bary {
		if b > 0 {
			clipped[i] = b
			sum += b
		}
	}
	if sum == 0 {
		for i := range clipped {
			clipped[i] = 1. / float64(len(clipped))
		}
		return
	}
	floats.Scale(1./sum, clipped)
	return
}

func (re RefElement) checkVertex(i int) {
	if i < 0 || i > re.Dim {
		panic(fmt.Errorf("vertex %d out of range for a simplex of dimension %d", i, re.Dim))
	}
}

func (re RefElement) checkSide(side int) {
	if side < 0 || side >= re.NSides() {
		panic(fmt.Errorf("side %d out of range for a simplex of dimension %d", side, re.Dim))
	}
}

func (re RefElement) checkBary(bary []float64) {
	if len(bary) != re.Dim+1 {
		panic(fmt.Errorf("barycentric point has %d coordinates, expected %d", len(bary), re.Dim+1))
	}
}
