package fem

import (
	"errors"
	"fmt"

	"github.com/notargets/simplexfe/basis"
	"github.com/notargets/simplexfe/mapping"
	"github.com/notargets/simplexfe/quadrature"
	"github.com/notargets/simplexfe/types"
	"github.com/notargets/simplexfe/utils"
)

var (
	ErrDofCount        = errors.New("number of dofs differs from the dimension of the function space")
	ErrDofShape        = errors.New("dof does not fit the function space")
	ErrUnsupportedType = errors.New("finite element type is not supported")
	ErrSingularMatrix  = utils.ErrSingularMatrix
)

// FiniteElement is a function space with a set of dofs. Its shape functions are the dual (nodal) basis:
// shape function j is sum_l N(j,l) raw_l, where N is the inverse of the evaluation matrix
// E(l,i) = dof_i(raw_l), so that dof_i(shape_j) = delta_ij.
// A FiniteElement is read only after construction and may be shared between goroutines.
type FiniteElement struct {
	dim, nComp int
	feType     types.FEType
	fs         basis.FunctionSpace
	dofs       []Dof
	evalMatrix utils.Matrix
	nodeMatrix utils.Matrix
	push       pushForward
}

// NewFiniteElement takes ownership of fs
func NewFiniteElement(fs basis.FunctionSpace, dofs []Dof, feType types.FEType) (fe *FiniteElement, err error) {
	var (
		push  pushForward
		nDofs = len(dofs)
	)
	if push, err = newPushForward(feType); err != nil {
		return
	}
	if nDofs != fs.Dim() {
		err = fmt.Errorf("%d dofs for a space of dimension %d: %w", nDofs, fs.Dim(), ErrDofCount)
		return
	}
	for i, d := range dofs {
		if len(d.Coefs) != fs.NComponents() || len(d.Coords) != fs.SpaceDim()+1 {
			err = fmt.Errorf("dof %d has %d coefficients and %d coordinates, expected %d and %d: %w",
				i, len(d.Coefs), len(d.Coords), fs.NComponents(), fs.SpaceDim()+1, ErrDofShape)
			return
		}
		if d.Type != DofValue {
			err = fmt.Errorf("dof %d has unknown type %d: %w", i, d.Type, ErrDofShape)
			return
		}
	}
	switch {
	case feType == types.FEScalar && fs.NComponents() != 1:
		err = fmt.Errorf("scalar element over a space with %d components: %w", fs.NComponents(), ErrDofShape)
		return
	case feType.IsVector() && fs.NComponents() != fs.SpaceDim():
		err = fmt.Errorf("vector element with %d components in dimension %d: %w",
			fs.NComponents(), fs.SpaceDim(), ErrDofShape)
		return
	}
	fe = &FiniteElement{
		dim:    fs.SpaceDim(),
		nComp:  fs.NComponents(),
		feType: feType,
		fs:     fs,
		dofs:   make([]Dof, nDofs),
		push:   push,
	}
	for i, d := range dofs {
		fe.dofs[i] = NewDof(d.Dim, d.NFace, d.Coords, d.Coefs, d.Type)
	}
	fe.evalMatrix = utils.NewMatrix(nDofs, nDofs)
	for j := 0; j < nDofs; j++ {
		for i, d := range fe.dofs {
			fe.evalMatrix.M.Set(j, i, d.Evaluate(fs, j))
		}
	}
	if fe.nodeMatrix, err = fe.evalMatrix.Inverse(); err != nil {
		fe = nil
		err = fmt.Errorf("dofs are not unisolvent on the function space: %w", err)
		return
	}
	fe.evalMatrix.SetReadOnly("EvaluationMatrix")
	fe.nodeMatrix.SetReadOnly("NodeMatrix")
	return
}

func (fe *FiniteElement) NDofs() int         { return len(fe.dofs) }
func (fe *FiniteElement) NComponents() int   { return fe.nComp }
func (fe *FiniteElement) Dim() int           { return fe.dim }
func (fe *FiniteElement) Type() types.FEType { return fe.feType }

func (fe *FiniteElement) Dofs() (dofs []Dof) {
	dofs = make([]Dof, len(fe.dofs))
	for i, d := range fe.dofs {
		dofs[i] = NewDof(d.Dim, d.NFace, d.Coords, d.Coefs, d.Type)
	}
	return
}

func (fe *FiniteElement) NodeMatrix() utils.Matrix       { return fe.nodeMatrix.Copy() }
func (fe *FiniteElement) EvaluationMatrix() utils.Matrix { return fe.evalMatrix.Copy() }

// BasisValue evaluates raw basis function i of the underlying space
func (fe *FiniteElement) BasisValue(i int, p []float64, comp int) float64 {
	fe.checkArgs(i, p, comp)
	return fe.fs.BasisValue(i, p, comp)
}

func (fe *FiniteElement) BasisGrad(i int, p []float64, comp int) []float64 {
	fe.checkArgs(i, p, comp)
	return fe.fs.BasisGrad(i, p, comp)
}

// ShapeValue evaluates nodal shape function j at the local point p
func (fe *FiniteElement) ShapeValue(j int, p []float64, comp int) (val float64) {
	fe.checkArgs(j, p, comp)
	for l := 0; l < fe.NDofs(); l++ {
		val += fe.nodeMatrix.At(j, l) * fe.fs.BasisValue(l, p, comp)
	}
	return
}

// UpdateEach adds the mapping quantities the push forward of the requested shape data needs
func (fe *FiniteElement) UpdateEach(flags types.UpdateFlags) types.UpdateFlags {
	return fe.push.updateEach(flags)
}

// InternalData caches the nodal shape functions on the reference element at each quadrature point
type InternalData struct {
	RefShapeValues [][][]float64    // [point][dof][component]
	RefShapeGrads  [][]utils.Matrix // [point][dof], dim x components
}

// Initialize evaluates the raw basis at the quadrature points and changes it to the nodal basis
func (fe *FiniteElement) Initialize(q *quadrature.Quadrature) (data *InternalData) {
	if q.Dim != fe.dim {
		panic(fmt.Errorf("quadrature of dimension %d given to a finite element of dimension %d", q.Dim, fe.dim))
	}
	var (
		nDofs = fe.NDofs()
	)
	data = &InternalData{
		RefShapeValues: make([][][]float64, q.Size()),
		RefShapeGrads:  make([][]utils.Matrix, q.Size()),
	}
	for i, p := range q.Points {
		var (
			raw      = utils.NewMatrix(nDofs, fe.nComp)
			rawGrads = make([]utils.Matrix, nDofs)
		)
		for l := 0; l < nDofs; l++ {
			for c := 0; c < fe.nComp; c++ {
				raw.M.Set(l, c, fe.fs.BasisValue(l, p, c))
			}
			if fe.dim > 0 {
				rawGrads[l] = utils.NewMatrix(fe.dim, fe.nComp)
				for c := 0; c < fe.nComp; c++ {
					rawGrads[l].SetCol(c, fe.fs.BasisGrad(l, p, c))
				}
			}
		}
		nodal := fe.nodeMatrix.Mul(raw)
		data.RefShapeValues[i] = make([][]float64, nDofs)
		for j := 0; j < nDofs; j++ {
			data.RefShapeValues[i][j] = nodal.Row(j)
		}
		if fe.dim == 0 {
			continue
		}
		data.RefShapeGrads[i] = make([]utils.Matrix, nDofs)
		for j := 0; j < nDofs; j++ {
			grad := utils.NewMatrix(fe.dim, fe.nComp)
			for l := 0; l < nDofs; l++ {
				grad.AddScaled(fe.nodeMatrix.At(j, l), rawGrads[l])
			}
			data.RefShapeGrads[i][j] = grad.SetReadOnly("RefShapeGrad")
		}
	}
	return
}

// ShapeData holds shape functions on one physical element at every quadrature point.
// Entry j*Width+c is component c of shape function j, Width is 1 for scalar elements and
// spaceDim for vector elements. Gradients have spaceDim entries.
type ShapeData struct {
	Width          int
	ShapeValues    [][]float64
	ShapeGradients [][][]float64
}

func (fe *FiniteElement) NewShapeData(nPoints, spaceDim int, flags types.UpdateFlags) (sd *ShapeData) {
	width := fe.push.width(spaceDim)
	sd = &ShapeData{Width: width}
	if flags.Has(types.UpdateValues) {
		sd.ShapeValues = make([][]float64, nPoints)
		for i := range sd.ShapeValues {
			sd.ShapeValues[i] = make([]float64, fe.NDofs()*width)
		}
	}
	if flags.Has(types.UpdateGradients) {
		sd.ShapeGradients = make([][][]float64, nPoints)
		for i := range sd.ShapeGradients {
			sd.ShapeGradients[i] = make([][]float64, fe.NDofs()*width)
		}
	}
	return
}

// FillFEValues pushes the cached reference shape functions forward with the element quantities in jac
func (fe *FiniteElement) FillFEValues(q *quadrature.Quadrature, data *InternalData, jac *mapping.JacobianData,
	flags types.UpdateFlags, out *ShapeData) {
	required := fe.UpdateEach(flags) &^ (types.UpdateValues | types.UpdateGradients)
	if !jac.Flags.Has(required) {
		panic(fmt.Errorf("mapping data has %v, %v element needs %v", jac.Flags, fe.feType, required))
	}
	if flags.Has(types.UpdateGradients) && fe.dim == 0 {
		panic(fmt.Errorf("gradients of a point element"))
	}
	var (
		w   = out.Width
		det float64
		J   utils.Matrix
		iJ  utils.Matrix
	)
	for i := 0; i < q.Size(); i++ {
		if required.Has(types.UpdateJacobians) {
			J = jac.Jacobians[i]
		}
		if required.Has(types.UpdateInverseJacobians) {
			iJ = jac.InverseJacobians[i]
		}
		if required.Has(types.UpdateVolumeElements) {
			det = jac.Determinants[i]
		}
		for j := 0; j < fe.NDofs(); j++ {
			if flags.Has(types.UpdateValues) {
				fe.push.value(data.RefShapeValues[i][j], J, det, out.ShapeValues[i][j*w:(j+1)*w])
			}
			if flags.Has(types.UpdateGradients) {
				fe.push.gradient(data.RefShapeGrads[i][j], J, iJ, det, out.ShapeGradients[i][j*w:(j+1)*w])
			}
		}
	}
}

func (fe *FiniteElement) checkArgs(i int, p []float64, comp int) {
	if i < 0 || i >= fe.NDofs() {
		panic(fmt.Errorf("basis function %d out of range [0,%d)", i, fe.NDofs()))
	}
	if comp < 0 || comp >= fe.nComp {
		panic(fmt.Errorf("component %d out of range [0,%d)", comp, fe.nComp))
	}
	if len(p) != fe.dim {
		panic(fmt.Errorf("point has %d coordinates, element dimension is %d", len(p), fe.dim))
	}
}
