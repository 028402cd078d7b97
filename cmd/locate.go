/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notargets/simplexfe/mesh"
	"github.com/notargets/simplexfe/utils"
)

// LocateCmd represents the locate command
var LocateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Find the mesh element containing a point",
	Long: `
Reports the element containing the point and the barycentric coordinates of the point in it,

simplexfe locate -F mesh.msh -x 0.2,0.3`,
	Run: func(cmd *cobra.Command, args []string) {
		gridFile, _ := cmd.Flags().GetString("gridFile")
		coords, _ := cmd.Flags().GetString("point")
		dim, _ := cmd.Flags().GetInt("dim")
		point, err := ParsePoint(coords)
		if err == nil {
			_, _, err = LocatePoint(gridFile, dim, point)
		}
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(LocateCmd)
	LocateCmd.Flags().StringP("gridFile", "F", "", "Grid file to read in Gmsh 2.2 (.msh) format")
	LocateCmd.Flags().StringP("point", "x", "", "comma separated point coordinates")
	LocateCmd.Flags().IntP("dim", "d", 0, "dimension of the elements searched, 0 is the largest in the mesh")
}

// ParsePoint reads comma separated coordinates
func ParsePoint(coords string) (point []float64, err error) {
	if len(strings.TrimSpace(coords)) == 0 {
		err = fmt.Errorf("must supply a point (-x, --point) like 0.2,0.3")
		return
	}
	fields := strings.Split(coords, ",")
	point = make([]float64, len(fields))
	for i, f := range fields {
		if point[i], err = strconv.ParseFloat(strings.TrimSpace(f), 64); err != nil {
			err = fmt.Errorf("invalid coordinate %q: %w", f, err)
			return
		}
	}
	return
}

// LocatePoint prints the element of the given dimension containing point, k is -1 when no element does
func LocatePoint(gridFile string, dim int, point []float64) (k int, bary []float64, err error) {
	var (
		m     *mesh.Mesh
		loc   *mesh.Locator
		found bool
	)
	k = -1
	if m, err = mesh.ReadMeshFile(gridFile); err != nil {
		return
	}
	if len(point) != m.SpaceDim {
		if err = m.SetSpaceDim(len(point)); err != nil {
			return
		}
	}
	if dim == 0 {
		dim = m.MaxDim()
	}
	if loc, err = mesh.NewLocator(m, dim); err != nil {
		return
	}
	k, bary, found = loc.Locate(point)
	if !found {
		fmt.Printf("Point %v is outside the mesh, domain box is %v to %v\n", point, loc.Domain().Low, loc.Domain().Up)
		return
	}
	if utils.IsNan(bary) {
		err = fmt.Errorf("element %d is degenerate", k)
		return
	}
	elm := m.Element(k)
	fmt.Printf("Point %v is in element %d (%v, tag %d)\n", point, k, elm.Type(), elm.Tag())
	fmt.Printf("Barycentric coordinates: %v\n", bary)
	for i := 0; i < elm.NNodes(); i++ {
		fmt.Printf("  vertex %d: %v\n", elm.VertexIndex(i), elm.Node(i))
	}
	return
}
