package utils

const (
	NODETOL = 1.e-12
	// MachineEpsilon is the spacing of float64 values near 1
	MachineEpsilon = 0x1p-52
	// BoundingBoxEpsilon is the tolerance of every inside/outside decision made on a point
	BoundingBoxEpsilon = 64 * MachineEpsilon
)

func NearZero(x float64) bool {
	return x < NODETOL && x > -NODETOL
}
