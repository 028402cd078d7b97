package basis

import "fmt"

// FunctionSpace is a raw, non nodal, set of functions on the unit simplex.
// BasisGrad returns the gradient of component comp of basis function i.
type FunctionSpace interface {
	BasisValue(i int, p []float64, comp int) float64
	BasisGrad(i int, p []float64, comp int) []float64
	Dim() int
	SpaceDim() int
	NComponents() int
}

func checkArgs(fs FunctionSpace, i int, p []float64, comp int) {
	if i < 0 || i >= fs.Dim() {
		panic(fmt.Errorf("basis function %d out of range [0,%d)", i, fs.Dim()))
	}
	if comp < 0 || comp >= fs.NComponents() {
		panic(fmt.Errorf("component %d out of range [0,%d)", comp, fs.NComponents()))
	}
	if len(p) != fs.SpaceDim() {
		panic(fmt.Errorf("point has %d coordinates, space dimension is %d", len(p), fs.SpaceDim()))
	}
}
