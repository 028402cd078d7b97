package fem

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/simplexfe/basis"
	"github.com/notargets/simplexfe/mapping"
	"github.com/notargets/simplexfe/quadrature"
	"github.com/notargets/simplexfe/types"
)

func near(a, b float64, tolI ...float64) bool {
	tol := 1.e-10
	if len(tolI) != 0 {
		tol = tolI[0]
	}
	return math.Abs(a-b) < tol
}

func nearSlice(t *testing.T, expected, actual []float64) {
	t.Helper()
	require.Equal(t, len(expected), len(actual))
	for i := range expected {
		assert.Truef(t, near(expected[i], actual[i]), "index %d: expected %v, got %v", i, expected, actual)
	}
}

type catalogEntry struct {
	name string
	fe   *FiniteElement
}

func catalog(t *testing.T) (entries []catalogEntry) {
	t.Helper()
	add := func(name string, fe *FiniteElement, err error) {
		require.NoError(t, err, name)
		entries = append(entries, catalogEntry{name, fe})
	}
	for dim := 1; dim <= 3; dim++ {
		for degree := 0; degree <= 3; degree++ {
			fe, err := NewFE_P(dim, degree)
			add("P"+string(rune('0'+degree))+" dim "+string(rune('0'+dim)), fe, err)
		}
		fe, err := NewFE_RT0(dim)
		add("RT0 dim "+string(rune('0'+dim)), fe, err)
		fe, err = NewFE_RT0Contravariant(dim)
		add("RT0C dim "+string(rune('0'+dim)), fe, err)
	}
	fe, err := NewFE_P(0, 1)
	add("point", fe, err)
	return
}

// applyDof evaluates dof d on nodal shape function j
func applyDof(fe *FiniteElement, d Dof, j int) (val float64) {
	local := d.Coords[1:]
	for c, coef := range d.Coefs {
		val += coef * fe.ShapeValue(j, local, c)
	}
	return
}

func TestUnisolvence(t *testing.T) {
	for _, entry := range catalog(t) {
		t.Run(entry.name, func(t *testing.T) {
			fe := entry.fe
			n := fe.NDofs()
			NE := fe.NodeMatrix().Mul(fe.EvaluationMatrix())
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					expected := 0.
					if i == j {
						expected = 1
					}
					assert.True(t, near(expected, NE.At(i, j)))
				}
			}
			// Lagrangian property of the nodal basis
			for i, d := range fe.Dofs() {
				for j := 0; j < n; j++ {
					expected := 0.
					if i == j {
						expected = 1
					}
					assert.Truef(t, near(expected, applyDof(fe, d, j)), "dof %d on shape %d", i, j)
				}
			}
		})
	}
}

func TestPartitionOfUnity(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		for degree := 0; degree <= 3; degree++ {
			fe, err := NewFE_P(dim, degree)
			require.NoError(t, err)
			q := quadrature.NewGaussSimplex(dim, 4)
			data := fe.Initialize(q)
			for i := range q.Points {
				var (
					sum     float64
					gradSum = make([]float64, dim)
				)
				for j := 0; j < fe.NDofs(); j++ {
					sum += data.RefShapeValues[i][j][0]
					for k := 0; k < dim; k++ {
						gradSum[k] += data.RefShapeGrads[i][j].At(k, 0)
					}
				}
				assert.True(t, near(1, sum))
				nearSlice(t, make([]float64, dim), gradSum)
			}
		}
	}
}

func TestInitializeP1(t *testing.T) {
	fe, err := NewFE_P(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, fe.NDofs())
	assert.Equal(t, 2, fe.Dim())
	assert.Equal(t, 1, fe.NComponents())
	assert.Equal(t, types.FEScalar, fe.Type())
	q := quadrature.NewPointQuadrature([]float64{0.2, 0.3})
	data := fe.Initialize(q)
	nearSlice(t, []float64{0.5}, data.RefShapeValues[0][0])
	nearSlice(t, []float64{0.2}, data.RefShapeValues[0][1])
	nearSlice(t, []float64{0.3}, data.RefShapeValues[0][2])
	nearSlice(t, []float64{-1, -1}, data.RefShapeGrads[0][0].Col(0))
	nearSlice(t, []float64{1, 0}, data.RefShapeGrads[0][1].Col(0))
	nearSlice(t, []float64{0, 1}, data.RefShapeGrads[0][2].Col(0))
	assert.Panics(t, func() { fe.Initialize(quadrature.NewGaussSimplex(3, 1)) })
}

func TestRT0Matrices(t *testing.T) {
	fe, err := NewFE_RT0(2)
	require.NoError(t, err)
	assert.Equal(t, types.FEVectorPiola, fe.Type())
	assert.Equal(t, 2, fe.NComponents())
	// Rows are raw basis functions {x, e_1, e_2}, columns are the side fluxes
	E := fe.EvaluationMatrix()
	nearSlice(t, []float64{
		1, 0, 0,
		1, -1, 0,
		1, 0, -1,
	}, E.Data())
	nearSlice(t, E.Data(), fe.NodeMatrix().Data())
	// psi_0 = x, psi_1 = x - e_1, psi_2 = x - e_2
	p := []float64{0.3, 0.4}
	assert.True(t, near(0.3, fe.ShapeValue(0, p, 0)))
	assert.True(t, near(0.4, fe.ShapeValue(0, p, 1)))
	assert.True(t, near(-0.7, fe.ShapeValue(1, p, 0)))
	assert.True(t, near(0.4, fe.ShapeValue(1, p, 1)))
	assert.True(t, near(0.3, fe.ShapeValue(2, p, 0)))
	assert.True(t, near(-0.6, fe.ShapeValue(2, p, 1)))
	for s, d := range fe.Dofs() {
		assert.Equal(t, 1, d.Dim)
		assert.Equal(t, s, d.NFace)
	}
}

func TestConstructionErrors(t *testing.T) {
	fs := func() basis.FunctionSpace { return basis.NewPolynomialSpace(2, 1, 1) }
	vertexDofs := func() []Dof {
		return []Dof{
			NewDof(0, 0, []float64{1, 0, 0}, []float64{1}, DofValue),
			NewDof(0, 1, []float64{0, 1, 0}, []float64{1}, DofValue),
			NewDof(0, 2, []float64{0, 0, 1}, []float64{1}, DofValue),
		}
	}
	{
		fe, err := NewFiniteElement(fs(), vertexDofs(), types.FEScalar)
		require.NoError(t, err)
		assert.Equal(t, 3, fe.NDofs())
	}
	{
		_, err := NewFiniteElement(fs(), vertexDofs()[:2], types.FEScalar)
		assert.True(t, errors.Is(err, ErrDofCount))
	}
	{
		_, err := NewFiniteElement(fs(), vertexDofs(), types.FETensor)
		assert.True(t, errors.Is(err, ErrUnsupportedType))
		_, err = NewFiniteElement(fs(), vertexDofs(), types.FEType(42))
		assert.True(t, errors.Is(err, ErrUnsupportedType))
	}
	{ // Two dofs at the same point are not unisolvent
		dofs := vertexDofs()
		dofs[2] = NewDof(0, 1, []float64{0, 1, 0}, []float64{1}, DofValue)
		fe, err := NewFiniteElement(fs(), dofs, types.FEScalar)
		assert.Nil(t, fe)
		assert.True(t, errors.Is(err, ErrSingularMatrix))
	}
	{ // Dofs on a line through the triangle cannot determine a linear function
		dofs := []Dof{
			NewDof(2, 0, []float64{0.5, 0.25, 0.25}, []float64{1}, DofValue),
			NewDof(2, 0, []float64{0.25, 0.375, 0.375}, []float64{1}, DofValue),
			NewDof(2, 0, []float64{0, 0.5, 0.5}, []float64{1}, DofValue),
		}
		_, err := NewFiniteElement(fs(), dofs, types.FEScalar)
		assert.True(t, errors.Is(err, ErrSingularMatrix))
	}
	{
		dofs := vertexDofs()
		dofs[0].Coefs = []float64{1, 0}
		_, err := NewFiniteElement(fs(), dofs, types.FEScalar)
		assert.True(t, errors.Is(err, ErrDofShape))
		dofs = vertexDofs()
		dofs[1].Coords = []float64{0, 1}
		_, err = NewFiniteElement(fs(), dofs, types.FEScalar)
		assert.True(t, errors.Is(err, ErrDofShape))
		dofs = vertexDofs()
		dofs[1].Type = DofType(7)
		_, err = NewFiniteElement(fs(), dofs, types.FEScalar)
		assert.True(t, errors.Is(err, ErrDofShape))
	}
	{ // Component count must match the push forward
		_, err := NewFiniteElement(basis.NewRT0Space(2), []Dof{
			NewDof(1, 0, []float64{0, .5, .5}, []float64{1, 1}, DofValue),
			NewDof(1, 1, []float64{.5, 0, .5}, []float64{-1, 0}, DofValue),
			NewDof(1, 2, []float64{.5, .5, 0}, []float64{0, -1}, DofValue),
		}, types.FEScalar)
		assert.True(t, errors.Is(err, ErrDofShape))
	}
	{
		_, err := NewFE_P(4, 1)
		assert.True(t, errors.Is(err, ErrUnsupportedType))
		_, err = NewFE_RT0(0)
		assert.True(t, errors.Is(err, ErrUnsupportedType))
	}
}

func TestAccessors(t *testing.T) {
	fe, err := NewFE_P(2, 2)
	require.NoError(t, err)
	dofs := fe.Dofs()
	require.Len(t, dofs, 6)
	for v := 0; v < 3; v++ {
		assert.Equal(t, 0, dofs[v].Dim)
		assert.Equal(t, v, dofs[v].NFace)
		assert.Equal(t, 1., dofs[v].Coords[v])
	}
	for _, d := range dofs[3:] {
		assert.Equal(t, 1, d.Dim)
		assert.Equal(t, 0., d.Coords[d.NFace])
	}
	// Returned dofs and matrices are copies
	dofs[0].Coords[0] = 42
	assert.Equal(t, 1., fe.Dofs()[0].Coords[0])
	N := fe.NodeMatrix()
	N.Set(0, 0, 42)
	assert.NotEqual(t, 42., fe.NodeMatrix().At(0, 0))

	p := []float64{0.25, 0.25}
	assert.Equal(t, 0.0625, fe.BasisValue(4, p, 0))
	assert.Equal(t, []float64{0.25, 0.25}, fe.BasisGrad(4, p, 0))
	assert.Panics(t, func() { fe.BasisValue(6, p, 0) })
	assert.Panics(t, func() { fe.BasisValue(0, p, 1) })
	assert.Panics(t, func() { fe.BasisGrad(0, []float64{0.1}, 0) })
	assert.Panics(t, func() { fe.ShapeValue(-1, p, 0) })
}

func TestPointElement(t *testing.T) {
	fe, err := NewFE_P(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, fe.NDofs())
	assert.Equal(t, 0, fe.Dim())
	data := fe.Initialize(quadrature.NewGaussSimplex(0, 0))
	assert.Equal(t, []float64{1}, data.RefShapeValues[0][0])
	assert.Nil(t, data.RefShapeGrads[0])
}

func TestByName(t *testing.T) {
	for name, check := range map[string]func(fe *FiniteElement){
		"p2":   func(fe *FiniteElement) { assert.Equal(t, 6, fe.NDofs()) },
		"P0":   func(fe *FiniteElement) { assert.Equal(t, 1, fe.NDofs()) },
		"RT0":  func(fe *FiniteElement) { assert.Equal(t, types.FEVectorPiola, fe.Type()) },
		"rt0c": func(fe *FiniteElement) { assert.Equal(t, types.FEVectorContravariant, fe.Type()) },
	} {
		fe, err := NewFiniteElementByName(name, 2)
		require.NoError(t, err, name)
		check(fe)
	}
	for _, name := range []string{"Q1", "Px", "", "RT1"} {
		_, err := NewFiniteElementByName(name, 2)
		assert.Error(t, err, name)
	}
}

func TestMappingClosure(t *testing.T) {
	m, err := mapping.NewMappingP1(2, 2)
	require.NoError(t, err)
	for _, entry := range catalog(t) {
		for f := types.UpdateFlags(0); f < 1<<9; f++ {
			closed := m.UpdateEach(entry.fe.UpdateEach(f))
			assert.True(t, closed.Has(f))
			assert.Equal(t, closed, m.UpdateEach(entry.fe.UpdateEach(closed)))
		}
	}
}
