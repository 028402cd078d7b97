package fem

import (
	"fmt"

	"github.com/notargets/simplexfe/basis"
)

type DofType uint8

const (
	// DofValue contracts the components of a function value at a point with the coefficients
	DofValue DofType = iota
)

// Dof is a linear functional on a function space, attached to a sub-simplex of the reference element
type Dof struct {
	Dim    int       // dimension of the sub-simplex
	NFace  int       // index of the sub-simplex among those of its dimension
	Coords []float64 // barycentric coordinates of the evaluation point
	Coefs  []float64 // one coefficient per component
	Type   DofType
}

func NewDof(dim, nFace int, coords, coefs []float64, dofType DofType) Dof {
	d := Dof{
		Dim:    dim,
		NFace:  nFace,
		Coords: make([]float64, len(coords)),
		Coefs:  make([]float64, len(coefs)),
		Type:   dofType,
	}
	copy(d.Coords, coords)
	copy(d.Coefs, coefs)
	return d
}

// Evaluate applies the functional to basis function j of fs
func (d Dof) Evaluate(fs basis.FunctionSpace, j int) (val float64) {
	switch d.Type {
	case DofValue:
		if len(d.Coords) != fs.SpaceDim()+1 || len(d.Coefs) != fs.NComponents() {
			panic(fmt.Errorf("dof with %d coordinates and %d coefficients evaluated on a space of dimension %d with %d components",
				len(d.Coords), len(d.Coefs), fs.SpaceDim(), fs.NComponents()))
		}
		local := d.Coords[1:]
		for c, coef := range d.Coefs {
			if coef != 0 {
				val += coef * fs.BasisValue(j, local, c)
			}
		}
	default:
		panic(fmt.Errorf("dof type %d is not implemented", d.Type))
	}
	return
}
