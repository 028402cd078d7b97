package fevalues

import (
	"fmt"

	"github.com/notargets/simplexfe/fem"
	"github.com/notargets/simplexfe/mapping"
	"github.com/notargets/simplexfe/quadrature"
	"github.com/notargets/simplexfe/types"
)

// PointValue evaluates the discrete field with local dof values dofValues at a physical point of elm.
// The result has one entry for scalar elements and spaceDim entries for vector elements.
// Points outside elm are extrapolated.
func PointValue(fe *fem.FiniteElement, m *mapping.MappingP1, elm mapping.ElementAccessor,
	dofValues, point []float64) (value []float64) {
	if len(dofValues) != fe.NDofs() {
		panic(fmt.Errorf("%d dof values for an element with %d dofs", len(dofValues), fe.NDofs()))
	}
	bary := m.ProjectRealToUnit(point, m.ElementMap(elm))
	fv := NewFEValues(m, fe, quadrature.NewPointQuadrature(bary[1:]), types.UpdateValues)
	fv.Reinit(elm)
	if !fe.Type().IsVector() {
		var sum float64
		for j, dv := range dofValues {
			sum += dv * fv.ShapeValue(j, 0)
		}
		return []float64{sum}
	}
	value = make([]float64, m.SpaceDim())
	for j, dv := range dofValues {
		for c, v := range fv.ShapeVector(j, 0) {
			value[c] += dv * v
		}
	}
	return
}
