package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/simplexfe/mapping"
	"github.com/notargets/simplexfe/utils"
)

// BoundingBox is an axis aligned box given by its lower and upper corners
type BoundingBox struct {
	Low, Up []float64
}

// NewBoundingBox encloses the nodes of elm
func NewBoundingBox(elm mapping.ElementAccessor) (bb BoundingBox) {
	if elm.NNodes() == 0 {
		panic(fmt.Errorf("bounding box of an element without nodes"))
	}
	first := elm.Node(0)
	bb = BoundingBox{
		Low: make([]float64, len(first)),
		Up:  make([]float64, len(first)),
	}
	copy(bb.Low, first)
	copy(bb.Up, first)
	for i := 1; i < elm.NNodes(); i++ {
		for c, x := range elm.Node(i) {
			bb.Low[c] = math.Min(bb.Low[c], x)
			bb.Up[c] = math.Max(bb.Up[c], x)
		}
	}
	return
}

func (bb BoundingBox) Dim() int { return len(bb.Low) }

// Diameter is the length of the diagonal
func (bb BoundingBox) Diameter() float64 {
	diag := make([]float64, bb.Dim())
	floats.SubTo(diag, bb.Up, bb.Low)
	return floats.Norm(diag, 2)
}

// Contains reports whether p lies in the box, with a tolerance of utils.BoundingBoxEpsilon
// relative to the box size
func (bb BoundingBox) Contains(p []float64) bool {
	if len(p) != bb.Dim() {
		panic(fmt.Errorf("point has %d coordinates, box dimension is %d", len(p), bb.Dim()))
	}
	tol := utils.BoundingBoxEpsilon * math.Max(1, bb.Diameter())
	for c, x := range p {
		if x < bb.Low[c]-tol || x > bb.Up[c]+tol {
			return false
		}
	}
	return true
}

// Merge returns the smallest box enclosing both boxes
func (bb BoundingBox) Merge(other BoundingBox) (merged BoundingBox) {
	if bb.Dim() != other.Dim() {
		panic(fmt.Errorf("merging boxes of dimension %d and %d", bb.Dim(), other.Dim()))
	}
	merged = BoundingBox{
		Low: make([]float64, bb.Dim()),
		Up:  make([]float64, bb.Dim()),
	}
	for c := range bb.Low {
		merged.Low[c] = math.Min(bb.Low[c], other.Low[c])
		merged.Up[c] = math.Max(bb.Up[c], other.Up[c])
	}
	return
}
