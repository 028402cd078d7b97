package assembly

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/simplexfe/fem"
	"github.com/notargets/simplexfe/fevalues"
	"github.com/notargets/simplexfe/mapping"
	"github.com/notargets/simplexfe/mesh"
	"github.com/notargets/simplexfe/quadrature"
	"github.com/notargets/simplexfe/types"
	"github.com/notargets/simplexfe/utils"
)

var ErrNoElements = errors.New("mesh has no elements to sweep")

// Config selects what a sweep evaluates
type Config struct {
	Element         string // Catalog name, see fem.NewFiniteElementByName
	Dim             int    // Element dimension to sweep, 0 selects the largest in the mesh
	QuadratureOrder int    // Polynomial order integrated exactly, 0 selects 2
	Workers         int    // Number of goroutines, 0 selects runtime.NumCPU()
	ExtraFlags      types.UpdateFlags
}

// Result collects the sweep over all elements of one dimension
type Result struct {
	Element             string
	FEType              types.FEType
	Dim, SpaceDim       int
	Flags               types.UpdateFlags
	Partitions          int
	Elements            []int     // Mesh indices of the swept elements
	ElementMeasure      []float64 // Sum of JxW per swept element
	Measure             float64
	NegativeOrientation int // Elements with a negative Jacobian determinant
	// Scalar elements
	MassMatrix            *utils.DOK // Global P1 mass matrix indexed by vertex, nil for other elements
	MassSum               float64    // Sum of all element mass matrix entries
	StiffnessRowSumDefect float64    // Largest |sum_j K_ij| over all elements
	// Vector elements
	MaxDivergenceDefect float64 // Largest deviation of the integrated divergence of a shape function
}

type partial struct {
	negative     int
	mass         *utils.DOK
	massSum      float64
	rowSumDefect float64
	divDefect    float64
}

// Sweep evaluates the finite element on every element of the configured dimension. Elements are split
// into contiguous partitions, each handled by its own goroutine with its own FEValues.
func Sweep(m *mesh.Mesh, cfg Config) (res *Result, err error) {
	var (
		dim   = cfg.Dim
		order = cfg.QuadratureOrder
		nw    = cfg.Workers
		mp    *mapping.MappingP1
		fe    *fem.FiniteElement
	)
	if dim == 0 {
		dim = m.MaxDim()
	}
	if order == 0 {
		order = 2
	}
	if nw == 0 {
		nw = runtime.NumCPU()
	}
	if order < 0 || nw < 0 {
		err = fmt.Errorf("invalid sweep configuration, quadrature order %d, workers %d", order, nw)
		return
	}
	ks := m.ElementsOfDim(dim)
	if len(ks) == 0 {
		err = fmt.Errorf("dimension %d: %w", dim, ErrNoElements)
		return
	}
	if mp, err = mapping.NewMappingP1(dim, m.SpaceDim); err != nil {
		return
	}
	if fe, err = fem.NewFiniteElementByName(cfg.Element, dim); err != nil {
		return
	}
	if nw > len(ks) {
		nw = len(ks)
	}
	flags := types.UpdateGradients | types.UpdateJxWValues | types.UpdateVolumeElements | cfg.ExtraFlags
	if fe.Type() == types.FEScalar {
		flags |= types.UpdateValues
	}
	var (
		q        = quadrature.NewGaussSimplex(dim, order)
		pm       = utils.NewPartitionMap(nw, len(ks))
		partials = make([]partial, pm.ParallelDegree)
		wg       = sync.WaitGroup{}
		vertex   = vertexDofs(fe)
	)
	res = &Result{
		Element:        cfg.Element,
		FEType:         fe.Type(),
		Dim:            dim,
		SpaceDim:       m.SpaceDim,
		Partitions:     pm.ParallelDegree,
		Elements:       ks,
		ElementMeasure: make([]float64, len(ks)),
	}
	for np := 0; np < pm.ParallelDegree; np++ {
		if vertex {
			dok := utils.NewDOK(m.NumVertices, m.NumVertices)
			partials[np].mass = &dok
		}
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			fv := fevalues.NewFEValues(mp, fe, q, flags)
			kMin, kMax := pm.GetBucketRange(np)
			for i := kMin; i < kMax; i++ {
				elm := m.Element(ks[i])
				fv.Reinit(elm)
				res.ElementMeasure[i] = sweepElement(fv, elm, &partials[np])
			}
		}(np)
	}
	wg.Wait()

	res.Flags = mp.UpdateEach(fe.UpdateEach(flags))
	if vertex {
		dok := utils.NewDOK(m.NumVertices, m.NumVertices)
		res.MassMatrix = &dok
	}
	for _, p := range partials {
		res.NegativeOrientation += p.negative
		res.MassSum += p.massSum
		res.StiffnessRowSumDefect = math.Max(res.StiffnessRowSumDefect, p.rowSumDefect)
		res.MaxDivergenceDefect = math.Max(res.MaxDivergenceDefect, p.divDefect)
		if p.mass != nil {
			p.mass.M.DoNonZero(func(i, j int, v float64) {
				res.MassMatrix.AddAt(i, j, v)
			})
		}
	}
	res.Measure = floats.Sum(res.ElementMeasure)
	if res.MassMatrix != nil {
		res.MassMatrix.SetReadOnly("MassMatrix")
	}
	return
}

func sweepElement(fv *fevalues.FEValues, elm mesh.Element, p *partial) (measure float64) {
	var (
		nDofs = fv.NDofs()
		fe    = fv.FiniteElement()
	)
	for i := 0; i < fv.NPoints(); i++ {
		measure += fv.JxW(i)
	}
	det := fv.Determinant(0)
	if det < 0 {
		p.negative++
	}
	switch fe.Type() {
	case types.FEScalar:
		for a := 0; a < nDofs; a++ {
			var rowSum float64
			for b := 0; b < nDofs; b++ {
				var mass, stiff float64
				for i := 0; i < fv.NPoints(); i++ {
					mass += fv.ShapeValue(a, i) * fv.ShapeValue(b, i) * fv.JxW(i)
					stiff += floats.Dot(fv.ShapeGrad(a, i), fv.ShapeGrad(b, i)) * fv.JxW(i)
				}
				p.massSum += mass
				rowSum += stiff
				if p.mass != nil {
					p.mass.AddAt(elm.VertexIndex(a), elm.VertexIndex(b), mass)
				}
			}
			p.rowSumDefect = math.Max(p.rowSumDefect, math.Abs(rowSum))
		}
	case types.FEVectorPiola, types.FEVectorContravariant:
		// Each RT0 shape function has unit outward flux through its own side on the reference element
		expected := math.Copysign(1, det)
		if fe.Type() == types.FEVectorContravariant {
			expected = math.Abs(det)
		}
		for j := 0; j < nDofs; j++ {
			var integral float64
			for i := 0; i < fv.NPoints(); i++ {
				integral += fv.ShapeDivergence(j, i) * fv.JxW(i)
			}
			p.divDefect = math.Max(p.divDefect, math.Abs(integral-expected))
		}
	}
	return
}

// vertexDofs reports whether dof j of fe is the value at vertex j, so that dofs number like mesh vertices
func vertexDofs(fe *fem.FiniteElement) bool {
	if fe.Type() != types.FEScalar || fe.NDofs() != fe.Dim()+1 {
		return false
	}
	for j, d := range fe.Dofs() {
		if d.Dim != 0 || d.NFace != j {
			return false
		}
	}
	return true
}

// Print writes a summary of the sweep
func (res *Result) Print() {
	fmt.Printf("Element: %s, dimension %d in %dD, %d elements in %d partitions\n",
		res.Element, res.Dim, res.SpaceDim, len(res.Elements), res.Partitions)
	fmt.Printf("Update flags: %v\n", res.Flags)
	fmt.Printf("Measure: %8.5g, negatively oriented elements: %d\n", res.Measure, res.NegativeOrientation)
	if res.MassMatrix != nil {
		fmt.Printf("Mass matrix: %d non zeros, sum %8.5g, asymmetry %8.3g\n",
			res.MassMatrix.NNZ(), res.MassMatrix.Sum(), res.MassMatrix.MaxAsymmetry())
	}
	switch res.FEType {
	case types.FEScalar:
		fmt.Printf("Element mass sum: %8.5g, stiffness row sum defect: %8.3g\n",
			res.MassSum, res.StiffnessRowSumDefect)
	default:
		fmt.Printf("Divergence defect: %8.3g\n", res.MaxDivergenceDefect)
	}
}
