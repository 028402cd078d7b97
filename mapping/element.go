package mapping

import (
	"github.com/notargets/simplexfe/types"
	"github.com/notargets/simplexfe/utils"
)

// ElementAccessor is the view of a mesh element the mapping needs
type ElementAccessor interface {
	Dim() int
	NNodes() int
	Node(i int) []float64
}

// Vertices is an ElementAccessor over an explicit list of vertex coordinates
type Vertices [][]float64

func (v Vertices) Dim() int             { return len(v) - 1 }
func (v Vertices) NNodes() int          { return len(v) }
func (v Vertices) Node(i int) []float64 { return v[i] }

// ElementMap holds the vertex coordinates of one element as columns, spaceDim x (dim+1)
type ElementMap = utils.Matrix

// InternalData is the per quadrature rule cache of the mapping
type InternalData struct {
	BarCoords [][]float64
}

// JacobianData is the per element output of the mapping, one entry per quadrature point
// for each quantity selected by Flags
type JacobianData struct {
	Flags            types.UpdateFlags
	Jacobians        []utils.Matrix // spaceDim x dim
	InverseJacobians []utils.Matrix // dim x spaceDim
	Determinants     []float64
	JxW              []float64
	Points           [][]float64
	NormalVectors    [][]float64
}

func NewJacobianData(nPoints int, flags types.UpdateFlags) (jd *JacobianData) {
	jd = &JacobianData{Flags: flags}
	if flags.Has(types.UpdateJacobians) {
		jd.Jacobians = make([]utils.Matrix, nPoints)
	}
	if flags.Has(types.UpdateInverseJacobians) {
		jd.InverseJacobians = make([]utils.Matrix, nPoints)
	}
	if flags.Has(types.UpdateVolumeElements) {
		jd.Determinants = make([]float64, nPoints)
	}
	if flags.Any(types.UpdateJxWValues | types.UpdateSideJxWValues) {
		jd.JxW = make([]float64, nPoints)
	}
	if flags.Has(types.UpdateQuadraturePoints) {
		jd.Points = make([][]float64, nPoints)
	}
	if flags.Has(types.UpdateNormalVectors) {
		jd.NormalVectors = make([][]float64, nPoints)
	}
	return
}
