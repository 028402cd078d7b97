package mesh

import (
	"fmt"

	"github.com/notargets/simplexfe/mapping"
)

// Locator finds the element of a given dimension containing a point.
// Element boxes filter the candidates, the mapping decides containment.
type Locator struct {
	mesh     *Mesh
	mapping  *mapping.MappingP1
	elements []int
	boxes    []BoundingBox
	domain   BoundingBox
}

func NewLocator(m *Mesh, dim int) (loc *Locator, err error) {
	var mp *mapping.MappingP1
	if mp, err = mapping.NewMappingP1(dim, m.SpaceDim); err != nil {
		return
	}
	ks := m.ElementsOfDim(dim)
	if len(ks) == 0 {
		err = fmt.Errorf("mesh has no elements of dimension %d", dim)
		return
	}
	loc = &Locator{
		mesh:     m,
		mapping:  mp,
		elements: ks,
		boxes:    make([]BoundingBox, len(ks)),
	}
	for i, k := range ks {
		loc.boxes[i] = NewBoundingBox(m.Element(k))
		if i == 0 {
			loc.domain = loc.boxes[0]
		} else {
			loc.domain = loc.domain.Merge(loc.boxes[i])
		}
	}
	return
}

func (loc *Locator) Mapping() *mapping.MappingP1 { return loc.mapping }
func (loc *Locator) Domain() BoundingBox         { return loc.domain }

// Locate returns the first element containing point and the barycentric coordinates of point in it.
// Points of a surface mesh are located by their projection onto the element plane.
func (loc *Locator) Locate(point []float64) (k int, bary []float64, found bool) {
	k = -1
	if !loc.domain.Contains(point) {
		return
	}
	for i, bb := range loc.boxes {
		if !bb.Contains(point) {
			continue
		}
		elm := loc.mesh.Element(loc.elements[i])
		if loc.mapping.ContainsPoint(point, elm) {
			k, found = elm.Index, true
			bary = loc.mapping.ProjectRealToUnit(point, loc.mapping.ElementMap(elm))
			return
		}
	}
	return
}
