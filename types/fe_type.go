package types

import (
	"fmt"
	"strings"
)

// FEType selects how reference shape functions are pushed forward to a physical element
type FEType uint8

const (
	FEScalar FEType = iota
	FEVectorContravariant
	FEVectorPiola
	FETensor
)

var FETypeNameMap = map[string]FEType{
	"scalar":        FEScalar,
	"contravariant": FEVectorContravariant,
	"piola":         FEVectorPiola,
	"tensor":        FETensor,
}

func (ft FEType) String() string {
	switch ft {
	case FEScalar:
		return "scalar"
	case FEVectorContravariant:
		return "vector_contravariant"
	case FEVectorPiola:
		return "vector_piola"
	case FETensor:
		return "tensor"
	}
	return fmt.Sprintf("FEType(%d)", uint8(ft))
}

// IsVector is true for the types whose shape functions have one component per reference direction
func (ft FEType) IsVector() bool {
	return ft == FEVectorContravariant || ft == FEVectorPiola
}

func NewFEType(name string) (ft FEType, err error) {
	var ok bool
	if ft, ok = FETypeNameMap[strings.ToLower(name)]; !ok {
		err = fmt.Errorf("unknown finite element type %q", name)
	}
	return
}
