package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// gmshElementType2_2 maps the simplicial Gmsh 2.2 element types to ElementType
var gmshElementType2_2 = map[int]ElementType{
	1:  Line,
	2:  Triangle,
	4:  Tet,
	15: Point,
}

// ReadGmshFile opens filename and reads it as a Gmsh 2.2 ASCII mesh
func ReadGmshFile(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadGmsh22(file)
}

// ReadGmsh22 reads a Gmsh 2.2 ASCII mesh. Non simplicial elements are counted in Skipped and left out.
// The space dimension is trimmed to the coordinates actually used.
func ReadGmsh22(r io.Reader) (*Mesh, error) {
	mesh := NewMesh()
	scanner := bufio.NewScanner(r)

	// Increase scanner buffer for large files
	const maxScanTokenSize = 1024 * 1024 * 10 // 10MB
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxScanTokenSize)

	var haveFormat bool
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "$MeshFormat":
			if err := readMeshFormat(scanner, mesh); err != nil {
				return nil, err
			}
			haveFormat = true

		case "$PhysicalNames":
			if err := readPhysicalNames(scanner, mesh); err != nil {
				return nil, err
			}

		case "$Nodes":
			if err := readNodes(scanner, mesh); err != nil {
				return nil, err
			}

		case "$Elements":
			if err := readElements(scanner, mesh); err != nil {
				return nil, err
			}

		default:
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				if err := skipSection(scanner, "$End"+line[1:]); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if !haveFormat {
		return nil, fmt.Errorf("no $MeshFormat section found")
	}

	mesh.TrimSpaceDim()
	return mesh, nil
}

func readMeshFormat(scanner *bufio.Scanner, mesh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}

	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}

	mesh.FormatVersion = parts[0]
	if !strings.HasPrefix(mesh.FormatVersion, "2") {
		return fmt.Errorf("unsupported Gmsh version: %s", mesh.FormatVersion)
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported")
	}

	return skipSection(scanner, "$EndMeshFormat")
}

func readPhysicalNames(scanner *bufio.Scanner, mesh *Mesh) error {
	numPhysical, err := readCount(scanner, "PhysicalNames")
	if err != nil {
		return err
	}

	for i := 0; i < numPhysical; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in PhysicalNames")
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid physical name entry")
		}

		tag, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("invalid physical tag: %w", err)
		}
		mesh.PhysicalNames[tag] = strings.Trim(strings.Join(fields[2:], " "), "\"")
	}

	return skipSection(scanner, "$EndPhysicalNames")
}

func readNodes(scanner *bufio.Scanner, mesh *Mesh) error {
	numNodes, err := readCount(scanner, "Nodes")
	if err != nil {
		return err
	}

	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in Nodes at node %d", i)
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return fmt.Errorf("invalid node entry at line %d", i+1)
		}

		nodeID, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("invalid node ID: %w", err)
		}

		coords := make([]float64, 3)
		for j := 0; j < 3; j++ {
			coords[j], err = strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return fmt.Errorf("invalid coordinate: %w", err)
			}
		}

		mesh.AddNode(nodeID, coords)
	}

	return skipSection(scanner, "$EndNodes")
}

func readElements(scanner *bufio.Scanner, mesh *Mesh) error {
	numElems, err := readCount(scanner, "Elements")
	if err != nil {
		return err
	}

	for i := 0; i < numElems; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in Elements at element %d", i)
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid element entry at line %d", i+1)
		}

		ints := make([]int, len(fields))
		for j, f := range fields {
			if ints[j], err = strconv.Atoi(f); err != nil {
				return fmt.Errorf("invalid integer %q in element entry %d: %w", f, i+1, err)
			}
		}
		elemID, gmshType, numTags := ints[0], ints[1], ints[2]
		if 3+numTags > len(ints) {
			return fmt.Errorf("insufficient fields for tags in element %d", elemID)
		}
		tags := ints[3 : 3+numTags]

		elemType, ok := gmshElementType2_2[gmshType]
		if !ok {
			mesh.Skipped++
			continue
		}

		if err = mesh.AddElement(elemID, elemType, tags, ints[3+numTags:]); err != nil {
			return err
		}
	}

	return skipSection(scanner, "$EndElements")
}

func readCount(scanner *bufio.Scanner, section string) (n int, err error) {
	if !scanner.Scan() {
		err = fmt.Errorf("unexpected EOF in %s", section)
		return
	}
	if n, err = strconv.Atoi(strings.TrimSpace(scanner.Text())); err != nil {
		err = fmt.Errorf("invalid number of entries in %s: %w", section, err)
	}
	return
}

// skipSection skips an unhandled section
func skipSection(scanner *bufio.Scanner, endTag string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endTag {
			return nil
		}
	}
	return fmt.Errorf("unexpected EOF while looking for %s", endTag)
}
