package mesh

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/notargets/simplexfe/mapping"
)

// ElementType is the simplex kind of a mesh element
type ElementType int

const (
	Point ElementType = iota
	Line
	Triangle
	Tet
)

func (e ElementType) String() string {
	return [...]string{"Point", "Line", "Triangle", "Tet"}[e]
}

// Dim is the topological dimension of the simplex
func (e ElementType) Dim() int { return int(e) }

func (e ElementType) NumNodes() int { return int(e) + 1 }

// Mesh is a store of simplices with vertex coordinates. Vertices always carry three coordinates,
// only the first SpaceDim are seen by the mapping.
type Mesh struct {
	SpaceDim int
	Vertices [][]float64 // [nvertices][3]

	Elements     [][]int       // Element to vertex connectivity
	ElementTypes []ElementType // Element type for each element
	ElementTags  []int         // Physical tag, 0 when the file gives none

	PhysicalNames map[int]string
	FormatVersion string

	NodeIDMap    map[int]int // File node ID to vertex index
	ElementIDMap map[int]int // File element ID to element index
	Skipped      int         // Elements of non simplicial types left out

	NumElements int
	NumVertices int
}

func NewMesh() *Mesh {
	return &Mesh{
		SpaceDim:      3,
		PhysicalNames: make(map[int]string),
		NodeIDMap:     make(map[int]int),
		ElementIDMap:  make(map[int]int),
	}
}

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".msh":
		return ReadGmshFile(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

// AddNode stores a vertex under its file ID. A repeated ID replaces the coordinates.
func (m *Mesh) AddNode(nodeID int, coords []float64) {
	xyz := make([]float64, 3)
	copy(xyz, coords)
	if idx, ok := m.NodeIDMap[nodeID]; ok {
		m.Vertices[idx] = xyz
		return
	}
	m.NodeIDMap[nodeID] = len(m.Vertices)
	m.Vertices = append(m.Vertices, xyz)
	m.NumVertices = len(m.Vertices)
}

// AddElement converts the file node IDs of an element to vertex indices and stores it
func (m *Mesh) AddElement(elemID int, elemType ElementType, tags []int, nodeIDs []int) error {
	if _, exists := m.ElementIDMap[elemID]; exists {
		return fmt.Errorf("duplicate element ID %d", elemID)
	}
	if len(nodeIDs) != elemType.NumNodes() {
		return fmt.Errorf("element %d of type %v has %d nodes, expected %d",
			elemID, elemType, len(nodeIDs), elemType.NumNodes())
	}
	verts := make([]int, len(nodeIDs))
	for i, id := range nodeIDs {
		idx, ok := m.NodeIDMap[id]
		if !ok {
			return fmt.Errorf("element %d references undefined node %d", elemID, id)
		}
		verts[i] = idx
	}
	var tag int
	if len(tags) > 0 {
		tag = tags[0]
	}
	m.ElementIDMap[elemID] = len(m.Elements)
	m.Elements = append(m.Elements, verts)
	m.ElementTypes = append(m.ElementTypes, elemType)
	m.ElementTags = append(m.ElementTags, tag)
	m.NumElements = len(m.Elements)
	return nil
}

// MaxDim is the largest element dimension present, -1 for a mesh without elements
func (m *Mesh) MaxDim() (dim int) {
	dim = -1
	for _, et := range m.ElementTypes {
		if et.Dim() > dim {
			dim = et.Dim()
		}
	}
	return
}

// ElementsOfDim lists the indices of the elements of the given dimension
func (m *Mesh) ElementsOfDim(dim int) (ks []int) {
	for k, et := range m.ElementTypes {
		if et.Dim() == dim {
			ks = append(ks, k)
		}
	}
	return
}

// SetSpaceDim changes the number of coordinates seen by the mapping.
// Coordinates being dropped must be zero and the space must hold every element.
func (m *Mesh) SetSpaceDim(d int) (err error) {
	if d < 1 || d > 3 {
		return fmt.Errorf("space dimension %d out of range [1,3]", d)
	}
	if md := m.MaxDim(); d < md {
		return fmt.Errorf("space dimension %d is smaller than the element dimension %d", d, md)
	}
	for i, v := range m.Vertices {
		for c := d; c < 3; c++ {
			if v[c] != 0 {
				return fmt.Errorf("vertex %d has non zero coordinate %d (%v), unable to drop it", i, c, v[c])
			}
		}
	}
	m.SpaceDim = d
	return
}

// TrimSpaceDim sets the smallest space dimension that keeps every coordinate and holds every element
func (m *Mesh) TrimSpaceDim() {
	d := m.MaxDim()
	if d < 1 {
		d = 1
	}
	for _, v := range m.Vertices {
		for c := 2; c >= d; c-- {
			if v[c] != 0 {
				d = c + 1
				break
			}
		}
	}
	m.SpaceDim = d
}

// Element is a view of one mesh element that satisfies mapping.ElementAccessor
type Element struct {
	mesh  *Mesh
	Index int
}

var _ mapping.ElementAccessor = Element{}

func (m *Mesh) Element(k int) Element {
	if k < 0 || k >= m.NumElements {
		panic(fmt.Errorf("element %d out of range [0,%d)", k, m.NumElements))
	}
	return Element{mesh: m, Index: k}
}

func (e Element) Dim() int              { return e.mesh.ElementTypes[e.Index].Dim() }
func (e Element) NNodes() int           { return len(e.mesh.Elements[e.Index]) }
func (e Element) Type() ElementType     { return e.mesh.ElementTypes[e.Index] }
func (e Element) Tag() int              { return e.mesh.ElementTags[e.Index] }
func (e Element) VertexIndex(i int) int { return e.mesh.Elements[e.Index][i] }

// Node returns the first SpaceDim coordinates of vertex i of the element
func (e Element) Node(i int) []float64 {
	return e.mesh.Vertices[e.mesh.Elements[e.Index][i]][:e.mesh.SpaceDim]
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Space dimension: %d\n", m.SpaceDim)
	fmt.Printf("  Vertices: %d\n", m.NumVertices)
	fmt.Printf("  Elements: %d\n", m.NumElements)
	if m.Skipped > 0 {
		fmt.Printf("  Skipped (non simplicial): %d\n", m.Skipped)
	}

	typeCounts := make(map[ElementType]int)
	for _, t := range m.ElementTypes {
		typeCounts[t]++
	}
	types := make([]ElementType, 0, len(typeCounts))
	for t := range typeCounts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	fmt.Printf("  Element types:\n")
	for _, t := range types {
		fmt.Printf("    %s: %d\n", t, typeCounts[t])
	}
}
