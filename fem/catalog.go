package fem

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notargets/simplexfe/basis"
	"github.com/notargets/simplexfe/mapping"
	"github.com/notargets/simplexfe/types"
)

// NewFE_P is the Lagrange element of the given degree with equispaced nodes. Vertex dofs come first,
// in vertex order. Dimension zero gives the point element.
func NewFE_P(dim, degree int) (fe *FiniteElement, err error) {
	if dim < 0 || dim > 3 || degree < 0 {
		err = fmt.Errorf("P%d element in dimension %d: %w", degree, dim, ErrUnsupportedType)
		return
	}
	var (
		fs   = basis.NewPolynomialSpace(dim, degree, 1)
		dofs []Dof
	)
	for _, bary := range lagrangeNodes(dim, degree) {
		subDim, face := subSimplex(bary)
		dofs = append(dofs, NewDof(subDim, face, bary, []float64{1}, DofValue))
	}
	return NewFiniteElement(fs, dofs, types.FEScalar)
}

// NewFE_RT0 is the lowest order Raviart-Thomas element with the Piola push forward.
// Dof s is the flux through side s: the value at the side barycenter contracted with the
// outward normal scaled by the side measure.
func NewFE_RT0(dim int) (*FiniteElement, error) {
	return newRT0(dim, types.FEVectorPiola)
}

// NewFE_RT0Contravariant has the RT0 dofs with the plain contravariant push forward
func NewFE_RT0Contravariant(dim int) (*FiniteElement, error) {
	return newRT0(dim, types.FEVectorContravariant)
}

func newRT0(dim int, feType types.FEType) (fe *FiniteElement, err error) {
	if dim < 1 || dim > 3 {
		err = fmt.Errorf("RT0 element in dimension %d: %w", dim, ErrUnsupportedType)
		return
	}
	var (
		re   = mapping.NewRefElement(dim)
		dofs = make([]Dof, re.NSides())
	)
	for s := range dofs {
		coefs := re.Normal(s)
		measure := re.SideMeasure(s)
		for c := range coefs {
			coefs[c] *= measure
		}
		dofs[s] = NewDof(dim-1, s, re.SideBarycenter(s), coefs, DofValue)
	}
	return NewFiniteElement(basis.NewRT0Space(dim), dofs, feType)
}

// NewFiniteElementByName builds a catalog element from a name like "P1", "P2", "RT0" or "RT0C"
func NewFiniteElementByName(name string, dim int) (fe *FiniteElement, err error) {
	uName := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case uName == "RT0":
		return NewFE_RT0(dim)
	case uName == "RT0C":
		return NewFE_RT0Contravariant(dim)
	case strings.HasPrefix(uName, "P"):
		var degree int
		if degree, err = strconv.Atoi(uName[1:]); err != nil {
			err = fmt.Errorf("unable to parse the degree of element %q: %w", name, err)
			return
		}
		return NewFE_P(dim, degree)
	}
	err = fmt.Errorf("unknown finite element %q: %w", name, ErrUnsupportedType)
	return
}

// lagrangeNodes returns the barycentric points i/degree, vertices first
func lagrangeNodes(dim, degree int) (nodes [][]float64) {
	if degree == 0 {
		center := make([]float64, dim+1)
		for i := range center {
			center[i] = 1. / float64(dim+1)
		}
		return [][]float64{center}
	}
	var (
		vertices = make([][]float64, dim+1)
		others   [][]float64
		gen      func(prefix []int, remaining int)
	)
	gen = func(prefix []int, remaining int) {
		if len(prefix) == dim {
			bary := make([]float64, dim+1)
			for k, a := range prefix {
				bary[k] = float64(a) / float64(degree)
			}
			bary[dim] = float64(remaining) / float64(degree)
			if v := vertexIndex(append(prefix, remaining), degree); v >= 0 {
				vertices[v] = bary
			} else {
				others = append(others, bary)
			}
			return
		}
		for a := remaining; a >= 0; a-- {
			gen(append(prefix, a), remaining-a)
		}
	}
	gen(make([]int, 0, dim+1), degree)
	return append(vertices, others...)
}

func vertexIndex(multiIndex []int, degree int) int {
	for v, a := range multiIndex {
		if a == degree {
			return v
		}
	}
	return -1
}

// subSimplex locates a barycentric point: a vertex, the interior of a side, or the interior of the element.
// Points on lower dimensional faces of a tetrahedron (edges) report face index 0.
func subSimplex(bary []float64) (dim, face int) {
	var (
		nonZero int
		zero    = -1
		last    int
	)
	for i, b := range bary {
		if b != 0 {
			nonZero++
			last = i
		} else {
			zero = i
		}
	}
	dim = nonZero - 1
	switch {
	case nonZero == 1:
		face = last
	case nonZero == len(bary)-1:
		face = zero
	}
	return
}
