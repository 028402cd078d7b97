package types

import (
	"fmt"
	"sort"
	"strings"
)

// UpdateFlags is a bit-set selecting which quantities a values buffer computes
type UpdateFlags uint16

const (
	UpdateValues UpdateFlags = 1 << iota
	UpdateGradients
	UpdateJacobians
	UpdateInverseJacobians
	UpdateVolumeElements
	UpdateJxWValues
	UpdateQuadraturePoints
	UpdateNormalVectors
	UpdateSideJxWValues
)

const UpdateDefault UpdateFlags = 0

var UpdateFlagNameMap = map[string]UpdateFlags{
	"values":            UpdateValues,
	"gradients":         UpdateGradients,
	"jacobians":         UpdateJacobians,
	"inverse_jacobians": UpdateInverseJacobians,
	"volume_elements":   UpdateVolumeElements,
	"jxw_values":        UpdateJxWValues,
	"jxw":               UpdateJxWValues,
	"quadrature_points": UpdateQuadraturePoints,
	"points":            UpdateQuadraturePoints,
	"normal_vectors":    UpdateNormalVectors,
	"normals":           UpdateNormalVectors,
	"side_jxw_values":   UpdateSideJxWValues,
}

var updateFlagNames = []string{
	"values",
	"gradients",
	"jacobians",
	"inverse_jacobians",
	"volume_elements",
	"JxW_values",
	"quadrature_points",
	"normal_vectors",
	"side_JxW_values",
}

// Has reports whether every bit of f is set
func (uf UpdateFlags) Has(f UpdateFlags) bool {
	return uf&f == f
}

func (uf UpdateFlags) Any(f UpdateFlags) bool {
	return uf&f != 0
}

func (uf UpdateFlags) Names() (names []string) {
	for i, name := range updateFlagNames {
		if uf&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	return
}

func (uf UpdateFlags) String() string {
	if uf == UpdateDefault {
		return "default"
	}
	return strings.Join(uf.Names(), "|")
}

// ParseUpdateFlags combines flag names, case insensitive, into one bit-set
func ParseUpdateFlags(names ...string) (uf UpdateFlags, err error) {
	for _, name := range names {
		f, ok := UpdateFlagNameMap[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			err = fmt.Errorf("unknown update flag %q, valid names are: %s",
				name, strings.Join(validFlagNames(), ", "))
			return
		}
		uf |= f
	}
	return
}

func validFlagNames() (names []string) {
	for name := range UpdateFlagNameMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}
