package fevalues

import (
	"fmt"

	"github.com/notargets/simplexfe/fem"
	"github.com/notargets/simplexfe/mapping"
	"github.com/notargets/simplexfe/quadrature"
	"github.com/notargets/simplexfe/types"
	"github.com/notargets/simplexfe/utils"
)

// valuesBase holds the per element buffers shared by volume and side evaluation.
// It is owned by one goroutine.
type valuesBase struct {
	mapping *mapping.MappingP1
	fe      *fem.FiniteElement
	flags   types.UpdateFlags
	nPoints int
	jac     *mapping.JacobianData
	shapes  *fem.ShapeData
}

func newValuesBase(m *mapping.MappingP1, fe *fem.FiniteElement, nPoints int, flags types.UpdateFlags) (vb valuesBase) {
	if fe.Dim() != m.Dim() {
		panic(fmt.Errorf("finite element of dimension %d with a mapping of dimension %d", fe.Dim(), m.Dim()))
	}
	flags = m.UpdateEach(fe.UpdateEach(flags))
	vb = valuesBase{
		mapping: m,
		fe:      fe,
		flags:   flags,
		nPoints: nPoints,
		jac:     mapping.NewJacobianData(nPoints, flags),
		shapes:  fe.NewShapeData(nPoints, m.SpaceDim(), flags),
	}
	return
}

// FEValues evaluates shape functions and mapping quantities at the points of one quadrature rule
// on a sequence of physical elements
type FEValues struct {
	valuesBase
	quad    *quadrature.Quadrature
	mapData *mapping.InternalData
	feData  *fem.InternalData
}

func NewFEValues(m *mapping.MappingP1, fe *fem.FiniteElement, q *quadrature.Quadrature, flags types.UpdateFlags) (fv *FEValues) {
	fv = &FEValues{
		valuesBase: newValuesBase(m, fe, q.Size(), flags),
		quad:       q,
	}
	fv.mapData = m.Initialize(q, fv.flags)
	fv.feData = fe.Initialize(q)
	return
}

func (fv *FEValues) Quadrature() *quadrature.Quadrature { return fv.quad }

// Reinit fills the buffers for elm
func (fv *FEValues) Reinit(elm mapping.ElementAccessor) {
	em := fv.mapping.ElementMap(elm)
	fv.mapping.FillValues(em, fv.quad, fv.mapData, fv.flags, fv.jac)
	fv.fe.FillFEValues(fv.quad, fv.feData, fv.jac, fv.flags, fv.shapes)
}

// FESideValues evaluates on one side of an element at a time, the rule of dimension dim-1 is embedded
// into every side up front
type FESideValues struct {
	valuesBase
	side      int
	sideQuads []*quadrature.Quadrature
	mapData   []*mapping.InternalData
	feData    []*fem.InternalData
}

func NewFESideValues(m *mapping.MappingP1, fe *fem.FiniteElement, sideQ *quadrature.Quadrature,
	flags types.UpdateFlags) (fsv *FESideValues) {
	if sideQ.Dim != m.Dim()-1 {
		panic(fmt.Errorf("side quadrature of dimension %d for elements of dimension %d", sideQ.Dim, m.Dim()))
	}
	nSides := m.RefElement().NSides()
	fsv = &FESideValues{
		valuesBase: newValuesBase(m, fe, sideQ.Size(), flags),
		side:       -1,
		sideQuads:  make([]*quadrature.Quadrature, nSides),
		mapData:    make([]*mapping.InternalData, nSides),
		feData:     make([]*fem.InternalData, nSides),
	}
	for s := 0; s < nSides; s++ {
		fsv.sideQuads[s] = quadrature.MakeSideQuadrature(sideQ, s)
		fsv.mapData[s] = m.Initialize(fsv.sideQuads[s], fsv.flags)
		fsv.feData[s] = fe.Initialize(fsv.sideQuads[s])
	}
	return
}

func (fsv *FESideValues) Side() int { return fsv.side }

func (fsv *FESideValues) Reinit(elm mapping.ElementAccessor, side int) {
	if side < 0 || side >= len(fsv.sideQuads) {
		panic(fmt.Errorf("side %d out of range [0,%d)", side, len(fsv.sideQuads)))
	}
	fsv.side = side
	em := fsv.mapping.ElementMap(elm)
	fsv.mapping.FillSideValues(side, em, fsv.sideQuads[side], fsv.mapData[side], fsv.flags, fsv.jac)
	fsv.fe.FillFEValues(fsv.sideQuads[side], fsv.feData[side], fsv.jac, fsv.flags, fsv.shapes)
}

func (vb *valuesBase) NPoints() int                        { return vb.nPoints }
func (vb *valuesBase) NDofs() int                          { return vb.fe.NDofs() }
func (vb *valuesBase) UpdateFlags() types.UpdateFlags      { return vb.flags }
func (vb *valuesBase) FiniteElement() *fem.FiniteElement   { return vb.fe }
func (vb *valuesBase) Mapping() *mapping.MappingP1         { return vb.mapping }
func (vb *valuesBase) JacobianData() *mapping.JacobianData { return vb.jac }

// ShapeValue is the value of scalar shape function j at point q
func (vb *valuesBase) ShapeValue(j, q int) float64 {
	vb.check(types.UpdateValues, false)
	return vb.shapes.ShapeValues[q][j]
}

func (vb *valuesBase) ShapeGrad(j, q int) []float64 {
	vb.check(types.UpdateGradients, false)
	return vb.shapes.ShapeGradients[q][j]
}

// ShapeVector is the value of vector shape function j at point q, with spaceDim components
func (vb *valuesBase) ShapeVector(j, q int) []float64 {
	vb.check(types.UpdateValues, true)
	w := vb.shapes.Width
	return vb.shapes.ShapeValues[q][j*w : (j+1)*w]
}

// ShapeVectorGrad returns one gradient per component of vector shape function j
func (vb *valuesBase) ShapeVectorGrad(j, q int) [][]float64 {
	vb.check(types.UpdateGradients, true)
	w := vb.shapes.Width
	return vb.shapes.ShapeGradients[q][j*w : (j+1)*w]
}

func (vb *valuesBase) ShapeDivergence(j, q int) (div float64) {
	for c, g := range vb.ShapeVectorGrad(j, q) {
		div += g[c]
	}
	return
}

func (vb *valuesBase) JxW(q int) float64 {
	if !vb.flags.Any(types.UpdateJxWValues | types.UpdateSideJxWValues) {
		panic(fmt.Errorf("JxW values were not requested, flags are %v", vb.flags))
	}
	return vb.jac.JxW[q]
}

func (vb *valuesBase) Determinant(q int) float64 {
	vb.check(types.UpdateVolumeElements, false)
	return vb.jac.Determinants[q]
}

func (vb *valuesBase) Point(q int) []float64 {
	vb.check(types.UpdateQuadraturePoints, false)
	return vb.jac.Points[q]
}

func (vb *valuesBase) NormalVector(q int) []float64 {
	vb.check(types.UpdateNormalVectors, false)
	return vb.jac.NormalVectors[q]
}

func (vb *valuesBase) Jacobian(q int) utils.Matrix {
	vb.check(types.UpdateJacobians, false)
	return vb.jac.Jacobians[q]
}

func (vb *valuesBase) InverseJacobian(q int) utils.Matrix {
	vb.check(types.UpdateInverseJacobians, false)
	return vb.jac.InverseJacobians[q]
}

func (vb *valuesBase) check(f types.UpdateFlags, vector bool) {
	if !vb.flags.Has(f) {
		panic(fmt.Errorf("%v were not requested, flags are %v", f, vb.flags))
	}
	if f.Any(types.UpdateValues|types.UpdateGradients) && vector != vb.fe.Type().IsVector() {
		panic(fmt.Errorf("shape accessor does not match a %v element", vb.fe.Type()))
	}
}
