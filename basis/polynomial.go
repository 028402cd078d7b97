package basis

import (
	"fmt"

	"github.com/notargets/simplexfe/utils"
)

// PolynomialSpace is P_degree: monomials of total degree <= degree, each multiplied by a unit
// vector in component space. Basis function i is monomial i/nComp in component i%nComp.
type PolynomialSpace struct {
	spaceDim, degree, nComp int
	powers                  [][]int
}

func NewPolynomialSpace(spaceDim, degree, nComponents int) (ps *PolynomialSpace) {
	if spaceDim < 0 || degree < 0 || nComponents < 1 {
		panic(fmt.Errorf("invalid polynomial space: dimension %d, degree %d, components %d",
			spaceDim, degree, nComponents))
	}
	ps = &PolynomialSpace{
		spaceDim: spaceDim,
		degree:   degree,
		nComp:    nComponents,
	}
	for d := 0; d <= degree; d++ {
		ps.powers = append(ps.powers, monomialPowers(spaceDim, d)...)
	}
	return
}

// monomialPowers lists the exponents of monomials of exact total degree, lexicographically descending
func monomialPowers(spaceDim, degree int) (list [][]int) {
	if spaceDim == 0 {
		if degree == 0 {
			list = [][]int{{}}
		}
		return
	}
	var gen func(prefix []int, remaining int)
	gen = func(prefix []int, remaining int) {
		if len(prefix) == spaceDim-1 {
			e := make([]int, spaceDim)
			copy(e, prefix)
			e[spaceDim-1] = remaining
			list = append(list, e)
			return
		}
		for p := remaining; p >= 0; p-- {
			gen(append(prefix, p), remaining-p)
		}
	}
	gen(make([]int, 0, spaceDim), degree)
	return
}

func (ps *PolynomialSpace) Dim() int         { return len(ps.powers) * ps.nComp }
func (ps *PolynomialSpace) SpaceDim() int    { return ps.spaceDim }
func (ps *PolynomialSpace) NComponents() int { return ps.nComp }
func (ps *PolynomialSpace) Degree() int      { return ps.degree }

func (ps *PolynomialSpace) Powers(i int) []int { return ps.powers[i/ps.nComp] }

func (ps *PolynomialSpace) BasisValue(i int, p []float64, comp int) (val float64) {
	checkArgs(ps, i, p, comp)
	if i%ps.nComp != comp {
		return 0
	}
	val = 1
	for k, e := range ps.powers[i/ps.nComp] {
		val *= utils.POW(p[k], e)
	}
	return
}

func (ps *PolynomialSpace) BasisGrad(i int, p []float64, comp int) (grad []float64) {
	checkArgs(ps, i, p, comp)
	grad = make([]float64, ps.spaceDim)
	if i%ps.nComp != comp {
		return
	}
	e := ps.powers[i/ps.nComp]
	for k := range grad {
		if e[k] == 0 {
			continue
		}
		g := float64(e[k]) * utils.POW(p[k], e[k]-1)
		for l := range e {
			if l != k {
				g *= utils.POW(p[l], e[l])
			}
		}
		grad[k] = g
	}
	return
}
