package mesh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Unit square split into two triangles, with a boundary line, a point and a quad that is skipped
const squareMsh = `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
2
1 7 "wall"
2 9 "fluid"
$EndPhysicalNames
$Nodes
4
10 0.0 0.0 0.0
20 1.0 0.0 0.0
30 1.0 1.0 0.0
40 0.0 1.0 0.0
$EndNodes
$NodeData
1
"ignored"
$EndNodeData
$Elements
5
1 15 2 0 1 10
2 1 2 7 1 10 20
3 2 2 9 1 10 20 30
4 2 2 9 1 10 30 40
5 3 2 9 1 10 20 30 40
$EndElements
`

func createTempMshFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "test.msh")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))
	return tmpFile
}

func TestReadGmsh22(t *testing.T) {
	m, err := ReadGmsh22(strings.NewReader(squareMsh))
	require.NoError(t, err)
	assert.Equal(t, "2.2", m.FormatVersion)
	assert.Equal(t, 4, m.NumVertices)
	assert.Equal(t, 4, m.NumElements)
	assert.Equal(t, 1, m.Skipped)
	assert.Equal(t, 2, m.SpaceDim)
	assert.Equal(t, 2, m.MaxDim())
	assert.Equal(t, map[int]string{7: "wall", 9: "fluid"}, m.PhysicalNames)
	assert.Equal(t, []ElementType{Point, Line, Triangle, Triangle}, m.ElementTypes)
	assert.Equal(t, []int{0, 7, 9, 9}, m.ElementTags)
	assert.Equal(t, []int{0, 2, 3}, m.Elements[3])
	assert.Equal(t, []int{2, 3}, m.ElementsOfDim(2))
	assert.Equal(t, []int{1}, m.ElementsOfDim(1))
	assert.Nil(t, m.ElementsOfDim(3))
	assert.Equal(t, 3, m.ElementIDMap[4])

	e := m.Element(3)
	assert.Equal(t, 2, e.Dim())
	assert.Equal(t, 3, e.NNodes())
	assert.Equal(t, Triangle, e.Type())
	assert.Equal(t, 9, e.Tag())
	assert.Equal(t, 2, e.VertexIndex(1))
	assert.Equal(t, []float64{1, 1}, e.Node(1))
	assert.Panics(t, func() { m.Element(4) })

	fileName := createTempMshFile(t, squareMsh)
	m2, err := ReadMeshFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, m.Vertices, m2.Vertices)
	assert.Equal(t, m.Elements, m2.Elements)
}

func TestReadGmsh22Errors(t *testing.T) {
	header := "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n"
	nodes := "$Nodes\n2\n1 0 0 0\n2 1 0 0\n$EndNodes\n"
	cases := []struct {
		name, content string
	}{
		{"no format", nodes},
		{"version 4", "$MeshFormat\n4.1 0 8\n$EndMeshFormat\n"},
		{"binary", "$MeshFormat\n2.2 1 8\n$EndMeshFormat\n"},
		{"bad coordinate", header + "$Nodes\n1\n1 0 x 0\n$EndNodes\n"},
		{"truncated nodes", header + "$Nodes\n3\n1 0 0 0\n"},
		{"undefined node", header + nodes + "$Elements\n1\n1 1 0 1 3\n$EndElements\n"},
		{"node count", header + nodes + "$Elements\n1\n1 2 0 1 2\n$EndElements\n"},
		{"duplicate element", header + nodes + "$Elements\n2\n1 1 0 1 2\n1 1 0 2 1\n$EndElements\n"},
		{"missing tags", header + nodes + "$Elements\n1\n1 1 5 1 2\n$EndElements\n"},
		{"unterminated section", header + "$Comments\nhello\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadGmsh22(strings.NewReader(tc.content))
			assert.Error(t, err)
		})
	}
	_, err := ReadMeshFile("mesh.su2")
	assert.Error(t, err)
	_, err = ReadMeshFile(filepath.Join(t.TempDir(), "missing.msh"))
	assert.Error(t, err)
}

func TestSpaceDim(t *testing.T) {
	m := NewMesh()
	m.AddNode(1, []float64{0, 0, 0})
	m.AddNode(2, []float64{2, 0, 0})
	require.NoError(t, m.AddElement(1, Line, nil, []int{1, 2}))
	m.TrimSpaceDim()
	assert.Equal(t, 1, m.SpaceDim)
	assert.Equal(t, []float64{2}, m.Element(0).Node(1))

	require.NoError(t, m.SetSpaceDim(3))
	assert.Equal(t, []float64{2, 0, 0}, m.Element(0).Node(1))
	assert.Error(t, m.SetSpaceDim(0))
	assert.Error(t, m.SetSpaceDim(4))

	// A repeated node ID replaces the coordinates
	m.AddNode(2, []float64{2, 1})
	assert.Equal(t, 2, m.NumVertices)
	assert.Error(t, m.SetSpaceDim(1))
	require.NoError(t, m.SetSpaceDim(2))
	m.TrimSpaceDim()
	assert.Equal(t, 2, m.SpaceDim)

	m.AddNode(3, []float64{0, 1})
	require.NoError(t, m.AddElement(2, Triangle, []int{4}, []int{1, 2, 3}))
	m.AddNode(4, []float64{0, 0, 1})
	require.NoError(t, m.AddElement(3, Tet, nil, []int{1, 2, 3, 4}))
	assert.Error(t, m.SetSpaceDim(2))
	m.TrimSpaceDim()
	assert.Equal(t, 3, m.SpaceDim)
	assert.Equal(t, "Tet", m.ElementTypes[2].String())
	assert.Equal(t, 4, Tet.NumNodes())
	m.PrintStatistics()
}

func TestBoundingBox(t *testing.T) {
	m, err := ReadGmsh22(strings.NewReader(squareMsh))
	require.NoError(t, err)
	bb := NewBoundingBox(m.Element(2))
	assert.Equal(t, []float64{0, 0}, bb.Low)
	assert.Equal(t, []float64{1, 1}, bb.Up)
	assert.InDelta(t, 1.4142135623730951, bb.Diameter(), 1.e-14)
	assert.True(t, bb.Contains([]float64{0.5, 0.5}))
	assert.True(t, bb.Contains([]float64{1, 0}))
	assert.True(t, bb.Contains([]float64{1 + 1.e-15, -1.e-15}))
	assert.False(t, bb.Contains([]float64{1 + 1.e-10, 0}))
	assert.Panics(t, func() { bb.Contains([]float64{0, 0, 0}) })

	line := NewBoundingBox(m.Element(1))
	assert.Equal(t, []float64{0, 0}, line.Low)
	assert.Equal(t, []float64{1, 0}, line.Up)
	merged := line.Merge(NewBoundingBox(m.Element(3)))
	assert.Equal(t, []float64{0, 0}, merged.Low)
	assert.Equal(t, []float64{1, 1}, merged.Up)
}

func TestLocate(t *testing.T) {
	m, err := ReadGmsh22(strings.NewReader(squareMsh))
	require.NoError(t, err)
	loc, err := NewLocator(m, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, loc.Mapping().Dim())
	assert.Equal(t, []float64{1, 1}, loc.Domain().Up)

	k, bary, found := loc.Locate([]float64{0.75, 0.25})
	require.True(t, found)
	assert.Equal(t, 2, k)
	expected := []float64{0.25, 0.5, 0.25}
	for i := range expected {
		assert.InDelta(t, expected[i], bary[i], 1.e-12)
	}

	k, _, found = loc.Locate([]float64{0.25, 0.75})
	require.True(t, found)
	assert.Equal(t, 3, k)

	// The shared diagonal belongs to the first element found
	k, _, found = loc.Locate([]float64{0.5, 0.5})
	require.True(t, found)
	assert.Equal(t, 2, k)

	k, bary, found = loc.Locate([]float64{1.5, 0.5})
	assert.False(t, found)
	assert.Equal(t, -1, k)
	assert.Nil(t, bary)

	_, err = NewLocator(m, 3)
	assert.Error(t, err)
	_, err = NewLocator(m, 0)
	assert.Error(t, err)
}
