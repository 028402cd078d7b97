package mapping

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/simplexfe/quadrature"
	"github.com/notargets/simplexfe/types"
	"github.com/notargets/simplexfe/utils"
)

var ErrDimension = errors.New("unsupported mapping dimension")

// MappingP1 is the affine map from the unit simplex of dimension dim onto a simplex embedded in
// a space of dimension spaceDim. It holds no per element state, all methods are safe for concurrent use.
type MappingP1 struct {
	dim, spaceDim int
	ref           RefElement
}

func NewMappingP1(dim, spaceDim int) (m *MappingP1, err error) {
	if dim < 1 || spaceDim > 3 || dim > spaceDim {
		err = fmt.Errorf("element dimension %d in space dimension %d: %w", dim, spaceDim, ErrDimension)
		return
	}
	m = &MappingP1{
		dim:      dim,
		spaceDim: spaceDim,
		ref:      NewRefElement(dim),
	}
	return
}

func (m *MappingP1) Dim() int               { return m.dim }
func (m *MappingP1) SpaceDim() int          { return m.spaceDim }
func (m *MappingP1) RefElement() RefElement { return m.ref }

// UpdateEach closes flags over the quantities the mapping needs to compute the requested ones.
// Rules are applied in order to the accumulated set, so one pass is closed.
func (m *MappingP1) UpdateEach(flags types.UpdateFlags) (f types.UpdateFlags) {
	f = flags
	if f.Has(types.UpdateNormalVectors) {
		f |= types.UpdateInverseJacobians
	}
	if f.Any(types.UpdateVolumeElements | types.UpdateJxWValues | types.UpdateSideJxWValues |
		types.UpdateInverseJacobians) {
		f |= types.UpdateJacobians
	}
	return
}

// ElementMap collects the vertex coordinates of elm as the columns of a spaceDim x (dim+1) matrix
func (m *MappingP1) ElementMap(elm ElementAccessor) (em ElementMap) {
	if elm.Dim() != m.dim || elm.NNodes() != m.dim+1 {
		panic(fmt.Errorf("element of dimension %d with %d nodes given to a mapping of dimension %d",
			elm.Dim(), elm.NNodes(), m.dim))
	}
	em = utils.NewMatrix(m.spaceDim, m.dim+1)
	for i := 0; i <= m.dim; i++ {
		node := elm.Node(i)
		if len(node) != m.spaceDim {
			panic(fmt.Errorf("node %d has %d coordinates, space dimension is %d", i, len(node), m.spaceDim))
		}
		em.SetCol(i, node)
	}
	return
}

// ProjectRealToUnit returns the barycentric coordinates of the least-squares projection of point
// onto the affine hull of the element. Degenerate elements give meaningless coordinates.
func (m *MappingP1) ProjectRealToUnit(point []float64, em ElementMap) (bary []float64) {
	if len(point) != m.spaceDim {
		panic(fmt.Errorf("point has %d coordinates, space dimension is %d", len(point), m.spaceDim))
	}
	var (
		A      = m.edgeMatrix(em)
		b      = mat.NewVecDense(m.spaceDim, nil)
		AtA    mat.Dense
		Atb, x mat.VecDense
	)
	for i := 0; i < m.spaceDim; i++ {
		b.SetVec(i, point[i]-em.At(i, 0))
	}
	AtA.Mul(A.T(), A)
	Atb.MulVec(A.T(), b)
	if err := x.SolveVec(&AtA, &Atb); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			panic(err)
		}
	}
	bary = make([]float64, m.dim+1)
	for k := 0; k < m.dim; k++ {
		bary[k+1] = x.AtVec(k)
	}
	bary[0] = 1 - floats.Sum(bary[1:])
	return
}

func (m *MappingP1) ProjectUnitToReal(bary []float64, em ElementMap) []float64 {
	if len(bary) != m.dim+1 {
		panic(fmt.Errorf("barycentric point has %d coordinates, expected %d", len(bary), m.dim+1))
	}
	return em.MulVec(bary)
}

func (m *MappingP1) ClipToElement(bary []float64) []float64 {
	return m.ref.Clip(bary)
}

// ContainsPoint reports whether point projects inside elm, up to utils.BoundingBoxEpsilon
func (m *MappingP1) ContainsPoint(point []float64, elm ElementAccessor) bool {
	bary := m.ProjectRealToUnit(point, m.ElementMap(elm))
	return floats.Min(bary) >= -utils.BoundingBoxEpsilon
}

// Initialize precomputes the barycentric coordinates of the quadrature points
func (m *MappingP1) Initialize(q *quadrature.Quadrature, flags types.UpdateFlags) (data *InternalData) {
	if q.Dim != m.dim {
		panic(fmt.Errorf("quadrature of dimension %d given to a mapping of dimension %d", q.Dim, m.dim))
	}
	data = &InternalData{}
	if flags.Has(types.UpdateQuadraturePoints) {
		data.BarCoords = make([][]float64, q.Size())
		for i, p := range q.Points {
			data.BarCoords[i] = m.ref.LocalToBary(p)
		}
	}
	return
}

// FillValues computes the requested element quantities once and replicates them to every quadrature point
func (m *MappingP1) FillValues(em ElementMap, q *quadrature.Quadrature, data *InternalData,
	flags types.UpdateFlags, out *JacobianData) {
	jac, invJac, det := m.elementJacobian(em, flags)
	for i := 0; i < q.Size(); i++ {
		m.storePoint(i, jac, invJac, det, em, data, flags, out)
		if flags.Has(types.UpdateJxWValues) {
			out.JxW[i] = math.Abs(det) * q.Weight(i)
		}
	}
}

// FillSideValues is FillValues for a quadrature embedded in side of the element. JxW holds the side
// measure element when UpdateSideJxWValues is set, and normals are the outward unit normals of side.
func (m *MappingP1) FillSideValues(side int, em ElementMap, q *quadrature.Quadrature, data *InternalData,
	flags types.UpdateFlags, out *JacobianData) {
	var (
		jac, invJac, det = m.elementJacobian(em, flags)
		sideDet          float64
		normal           []float64
	)
	if flags.Has(types.UpdateSideJxWValues) {
		sideDet = m.sideDeterminant(side, em)
	}
	if flags.Has(types.UpdateNormalVectors) {
		normal = invJac.Transpose().MulVec(m.ref.Normal(side))
		floats.Scale(1/floats.Norm(normal, 2), normal)
	}
	for i := 0; i < q.Size(); i++ {
		m.storePoint(i, jac, invJac, det, em, data, flags, out)
		if flags.Has(types.UpdateSideJxWValues) {
			out.JxW[i] = sideDet * q.Weight(i)
		} else if flags.Has(types.UpdateJxWValues) {
			out.JxW[i] = math.Abs(det) * q.Weight(i)
		}
		if flags.Has(types.UpdateNormalVectors) {
			out.NormalVectors[i] = normal
		}
	}
}

func (m *MappingP1) elementJacobian(em ElementMap, flags types.UpdateFlags) (jac, invJac utils.Matrix, det float64) {
	if !flags.Any(types.UpdateJacobians | types.UpdateVolumeElements | types.UpdateJxWValues |
		types.UpdateInverseJacobians | types.UpdateNormalVectors) {
		return
	}
	jac = m.edgeMatrix(em)
	if flags.Any(types.UpdateVolumeElements | types.UpdateJxWValues) {
		det = m.determinant(jac)
	}
	if flags.Any(types.UpdateInverseJacobians | types.UpdateNormalVectors) {
		invJac = m.inverseJacobian(jac)
		invJac.SetReadOnly("InverseJacobian")
	}
	jac.SetReadOnly("Jacobian")
	return
}

func (m *MappingP1) storePoint(i int, jac, invJac utils.Matrix, det float64, em ElementMap,
	data *InternalData, flags types.UpdateFlags, out *JacobianData) {
	if flags.Has(types.UpdateJacobians) {
		out.Jacobians[i] = jac
	}
	if flags.Has(types.UpdateInverseJacobians) {
		out.InverseJacobians[i] = invJac
	}
	if flags.Has(types.UpdateVolumeElements) {
		out.Determinants[i] = det
	}
	if flags.Has(types.UpdateQuadraturePoints) {
		out.Points[i] = em.MulVec(data.BarCoords[i])
	}
}

// edgeMatrix has columns v_k - v_0, it is the Jacobian of the map
func (m *MappingP1) edgeMatrix(em ElementMap) (A utils.Matrix) {
	A = utils.NewMatrix(m.spaceDim, m.dim)
	for i := 0; i < m.spaceDim; i++ {
		v0 := em.At(i, 0)
		for k := 0; k < m.dim; k++ {
			A.M.Set(i, k, em.At(i, k+1)-v0)
		}
	}
	return
}

// determinant is signed when the element fills the space, otherwise it is sqrt(det(J^T J))
func (m *MappingP1) determinant(jac utils.Matrix) float64 {
	if m.dim == m.spaceDim {
		return jac.Det()
	}
	return math.Sqrt(jac.Transpose().Mul(jac).Det())
}

// inverseJacobian is the left inverse (J^T J)^-1 J^T, which is the inverse for square J
func (m *MappingP1) inverseJacobian(jac utils.Matrix) utils.Matrix {
	if m.dim == m.spaceDim {
		return invert(jac)
	}
	jT := jac.Transpose()
	return invert(jT.Mul(jac)).Mul(jT)
}

// sideDeterminant is the ratio of the measure of side to the measure of the unit (dim-1)-simplex
func (m *MappingP1) sideDeterminant(side int, em ElementMap) float64 {
	verts := m.ref.SideVertices(side)
	if len(verts) == 1 {
		return 1
	}
	E := utils.NewMatrix(m.spaceDim, len(verts)-1)
	for i := 0; i < m.spaceDim; i++ {
		v0 := em.At(i, verts[0])
		for k, v := range verts[1:] {
			E.M.Set(i, k, em.At(i, v)-v0)
		}
	}
	return math.Sqrt(math.Abs(E.Transpose().Mul(E).Det()))
}

// invert does not refuse ill conditioned matrices, exactly singular ones give NaN
func invert(a utils.Matrix) (inv utils.Matrix) {
	var (
		n, _  = a.Dims()
		dense mat.Dense
		cond  mat.Condition
	)
	inv = utils.NewMatrix(n, n)
	if err := dense.Inverse(a.M); err != nil {
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			data := inv.Data()
			for i := range data {
				data[i] = math.NaN()
			}
			return
		}
	}
	inv.M.Copy(&dense)
	return
}
