package basis

import "fmt"

// RT0Space is the lowest order Raviart-Thomas space {x, e_1, ..., e_dim}, vector valued with dim components
type RT0Space struct {
	spaceDim int
}

func NewRT0Space(spaceDim int) *RT0Space {
	if spaceDim < 1 {
		panic(fmt.Errorf("RT0 space needs a positive dimension, got %d", spaceDim))
	}
	return &RT0Space{spaceDim: spaceDim}
}

func (rt *RT0Space) Dim() int         { return rt.spaceDim + 1 }
func (rt *RT0Space) SpaceDim() int    { return rt.spaceDim }
func (rt *RT0Space) NComponents() int { return rt.spaceDim }

func (rt *RT0Space) BasisValue(i int, p []float64, comp int) float64 {
	checkArgs(rt, i, p, comp)
	if i == 0 {
		return p[comp]
	}
	if i-1 == comp {
		return 1
	}
	return 0
}

func (rt *RT0Space) BasisGrad(i int, p []float64, comp int) (grad []float64) {
	checkArgs(rt, i, p, comp)
	grad = make([]float64, rt.spaceDim)
	if i == 0 {
		grad[comp] = 1
	}
	return
}
