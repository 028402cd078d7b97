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

	"github.com/spf13/cobra"

	"github.com/notargets/simplexfe/fem"
	"github.com/notargets/simplexfe/mapping"
	"github.com/notargets/simplexfe/types"
)

// FlagsCmd represents the flags command
var FlagsCmd = &cobra.Command{
	Use:   "flags [update flag names]",
	Short: "Print the update flags a request implies for an element and mapping",
	Long: `
Adds the mapping quantities the push forward of the element needs, then the quantities the
mapping needs to compute them,

simplexfe flags --fe RT0 --dim 2 values gradients`,
	Run: func(cmd *cobra.Command, args []string) {
		feName, _ := cmd.Flags().GetString("fe")
		dim, _ := cmd.Flags().GetInt("dim")
		spaceDim, _ := cmd.Flags().GetInt("spaceDim")
		requested, closure, err := FlagClosure(feName, dim, spaceDim, args...)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("Requested: %v\n", requested)
		fmt.Printf("Computed:  %v\n", closure)
		if added := closure &^ requested; added != types.UpdateDefault {
			fmt.Printf("Added:     %v\n", added)
		}
	},
}

func init() {
	rootCmd.AddCommand(FlagsCmd)
	FlagsCmd.Flags().StringP("fe", "e", "P1", "finite element: P<k>, RT0 or RT0C")
	FlagsCmd.Flags().IntP("dim", "d", 2, "element dimension")
	FlagsCmd.Flags().IntP("spaceDim", "s", 0, "space dimension, 0 is the element dimension")
}

// FlagClosure parses the flag names and returns them together with the flags the values buffer of the
// element computes for them
func FlagClosure(feName string, dim, spaceDim int, names ...string) (requested, closure types.UpdateFlags,
	err error) {
	var (
		fe *fem.FiniteElement
		m  *mapping.MappingP1
	)
	if spaceDim == 0 {
		spaceDim = dim
	}
	if requested, err = types.ParseUpdateFlags(names...); err != nil {
		return
	}
	if fe, err = fem.NewFiniteElementByName(feName, dim); err != nil {
		return
	}
	if m, err = mapping.NewMappingP1(dim, spaceDim); err != nil {
		return
	}
	closure = m.UpdateEach(fe.UpdateEach(requested))
	return
}
