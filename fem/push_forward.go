package fem

import (
	"fmt"

	"github.com/notargets/simplexfe/types"
	"github.com/notargets/simplexfe/utils"
)

// pushForward maps reference shape values and gradients onto a physical element.
// The variant is chosen once, when the finite element is built.
type pushForward interface {
	updateEach(flags types.UpdateFlags) types.UpdateFlags
	// width is the number of shape entries per dof
	width(spaceDim int) int
	value(ref []float64, jac utils.Matrix, det float64, out []float64)
	gradient(ref, jac, invJac utils.Matrix, det float64, out [][]float64)
}

func newPushForward(feType types.FEType) (pf pushForward, err error) {
	switch feType {
	case types.FEScalar:
		pf = scalarPush{}
	case types.FEVectorContravariant:
		pf = contravariantPush{}
	case types.FEVectorPiola:
		pf = piolaPush{}
	default:
		err = fmt.Errorf("finite element type %v: %w", feType, ErrUnsupportedType)
	}
	return
}

type scalarPush struct{}

func (scalarPush) updateEach(flags types.UpdateFlags) (f types.UpdateFlags) {
	f = flags
	if flags.Has(types.UpdateGradients) {
		f |= types.UpdateInverseJacobians
	}
	return
}

func (scalarPush) width(int) int { return 1 }

func (scalarPush) value(ref []float64, _ utils.Matrix, _ float64, out []float64) {
	out[0] = ref[0]
}

// grad = J^-T grad_ref
func (scalarPush) gradient(ref, _, invJac utils.Matrix, _ float64, out [][]float64) {
	out[0] = invJac.Transpose().Mul(ref).Col(0)
}

// contravariantPush maps v = J v_ref
type contravariantPush struct{}

func (contravariantPush) updateEach(flags types.UpdateFlags) (f types.UpdateFlags) {
	f = flags
	if flags.Has(types.UpdateValues) {
		f |= types.UpdateJacobians
	}
	if flags.Has(types.UpdateGradients) {
		f |= types.UpdateJacobians | types.UpdateInverseJacobians
	}
	return
}

func (contravariantPush) width(spaceDim int) int { return spaceDim }

func (contravariantPush) value(ref []float64, jac utils.Matrix, _ float64, out []float64) {
	copy(out, jac.MulVec(ref))
}

// The physical gradient matrix is J^-T G J^T, column c is the gradient of component c
func (contravariantPush) gradient(ref, jac, invJac utils.Matrix, _ float64, out [][]float64) {
	G := invJac.Transpose().Mul(ref).Mul(jac.Transpose())
	for c := range out {
		out[c] = G.Col(c)
	}
}

// piolaPush is the contravariant map divided by the signed Jacobian determinant, it preserves normal fluxes
type piolaPush struct {
	contravariantPush
}

func (piolaPush) updateEach(flags types.UpdateFlags) (f types.UpdateFlags) {
	f = flags
	if flags.Has(types.UpdateValues) {
		f |= types.UpdateJacobians | types.UpdateVolumeElements
	}
	if flags.Has(types.UpdateGradients) {
		f |= types.UpdateJacobians | types.UpdateInverseJacobians | types.UpdateVolumeElements
	}
	return
}

func (pp piolaPush) value(ref []float64, jac utils.Matrix, det float64, out []float64) {
	pp.contravariantPush.value(ref, jac, det, out)
	for c := range out {
		out[c] /= det
	}
}

func (pp piolaPush) gradient(ref, jac, invJac utils.Matrix, det float64, out [][]float64) {
	pp.contravariantPush.gradient(ref, jac, invJac, det, out)
	for c := range out {
		for k := range out[c] {
			out[c][k] /= det
		}
	}
}
