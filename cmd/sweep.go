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
	"math"
	"os"
	"sort"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/simplexfe/InputParameters"
	"github.com/notargets/simplexfe/assembly"
	"github.com/notargets/simplexfe/mesh"
	"github.com/notargets/simplexfe/utils"
)

type SweepRun struct {
	GridFile string
	ICFile   string
	Element  string
	Workers  int
	Profile  string
}

// SweepCmd represents the sweep command
var SweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evaluate a finite element on every element of a mesh",
	Long: `
Reads a Gmsh 2.2 mesh, evaluates the element on each simplex in parallel and reports the measure,
the P1 mass matrix or the divergence check of Raviart-Thomas elements,

simplexfe sweep -F mesh.msh -I run.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		fmt.Println("sweep called")
		sr := &SweepRun{}
		if sr.GridFile, err = cmd.Flags().GetString("gridFile"); err != nil {
			panic(err)
		}
		if sr.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		if sr.Element, err = cmd.Flags().GetString("fe"); err != nil {
			panic(err)
		}
		if sr.Profile, err = cmd.Flags().GetString("profile"); err != nil {
			panic(err)
		}
		sr.Workers = viper.GetInt("workers")
		switch sr.Profile {
		case "":
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
		default:
			fmt.Printf("error: unknown profile type %q, use cpu or mem\n", sr.Profile)
			os.Exit(1)
		}
		ip := processSweepInput(sr)
		if _, err = RunSweep(sr, ip); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(SweepCmd)
	SweepCmd.Flags().StringP("gridFile", "F", "", "Grid file to read in Gmsh 2.2 (.msh) format")
	SweepCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for sweep parameters like:\n\t- Element\n\t- QuadratureOrder")
	SweepCmd.Flags().StringP("fe", "e", "P1", "finite element used when no input file is given")
	SweepCmd.Flags().IntP("workers", "w", 0, "number of goroutines, 0 is one per CPU")
	SweepCmd.Flags().String("profile", "", "write a cpu or mem profile to the current directory")
	if err := viper.BindPFlag("workers", SweepCmd.Flags().Lookup("workers")); err != nil {
		panic(err)
	}
}

func processSweepInput(sr *SweepRun) (ip *InputParameters.SweepParameters) {
	var (
		err error
	)
	if len(sr.GridFile) == 0 {
		err = fmt.Errorf("must supply a grid file (-F, --gridFile) in Gmsh 2.2 (.msh) format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Unit square"
Element: P1
QuadratureOrder: 2
UpdateFlags: [points]
Expected:
  Measure: 1.
########################################
`
		fmt.Printf("Example input file (-I):%s\n", exampleFile)
		os.Exit(1)
	}
	if ip, err = ReadSweepParameters(sr.ICFile); err != nil {
		panic(err)
	}
	if len(sr.ICFile) == 0 {
		ip.Element = sr.Element
	}
	return
}

// ReadSweepParameters parses a YAML parameters file, an empty name gives the defaults
func ReadSweepParameters(fileName string) (ip *InputParameters.SweepParameters, err error) {
	ip = &InputParameters.SweepParameters{Element: "P1"}
	if len(fileName) == 0 {
		return
	}
	var data []byte
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	if err = ip.Parse(data); err != nil {
		err = fmt.Errorf("unable to parse %s: %w", fileName, err)
	}
	return
}

// RunSweep reads the mesh and sweeps it. Expected values of the parameters are checked against the result.
func RunSweep(sr *SweepRun, ip *InputParameters.SweepParameters) (res *assembly.Result, err error) {
	var (
		m   *mesh.Mesh
		cfg = assembly.Config{
			Element:         ip.Element,
			Dim:             ip.Dimension,
			QuadratureOrder: ip.QuadratureOrder,
			Workers:         ip.Workers,
		}
	)
	if sr.Workers != 0 {
		cfg.Workers = sr.Workers
	}
	if cfg.ExtraFlags, err = ip.Flags(); err != nil {
		return
	}
	ip.Print()
	if m, err = mesh.ReadMeshFile(sr.GridFile); err != nil {
		return
	}
	if ip.SpaceDimension != 0 {
		if err = m.SetSpaceDim(ip.SpaceDimension); err != nil {
			return
		}
	}
	m.PrintStatistics()
	start := time.Now()
	if res, err = assembly.Sweep(m, cfg); err != nil {
		return
	}
	fmt.Printf("Sweep time: %v\n", time.Since(start))
	res.Print()
	fmt.Println(utils.GetMemUsage())
	if utils.IsNan(res.ElementMeasure) {
		err = fmt.Errorf("element measures contain NaN, the mesh has degenerate elements")
		return
	}
	err = checkExpected(res, ip.Expected)
	return
}

func checkExpected(res *assembly.Result, expected map[string]float64) (err error) {
	const tol = 1.e-8
	values := map[string]float64{
		"Measure":               res.Measure,
		"MassSum":               res.MassSum,
		"NegativeOrientation":   float64(res.NegativeOrientation),
		"StiffnessRowSumDefect": res.StiffnessRowSumDefect,
		"MaxDivergenceDefect":   res.MaxDivergenceDefect,
	}
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		val, ok := values[key]
		if !ok {
			return fmt.Errorf("unknown expected value %q", key)
		}
		if math.Abs(val-expected[key]) > tol*math.Max(1, math.Abs(expected[key])) {
			return fmt.Errorf("%s is %v, expected %v", key, val, expected[key])
		}
		fmt.Printf("%s = %v, as expected\n", key, val)
	}
	return
}
