package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"

	"github.com/notargets/simplexfe/types"
)

// Parameters of an element sweep obtained from the YAML input file
type SweepParameters struct {
	Title           string             `yaml:"Title"`
	Element         string             `yaml:"Element"`         // P<k>, RT0 or RT0C
	Dimension       int                `yaml:"Dimension"`       // Element dimension, 0 is the largest in the mesh
	SpaceDimension  int                `yaml:"SpaceDimension"`  // 0 keeps the coordinates in use
	QuadratureOrder int                `yaml:"QuadratureOrder"` // 0 is 2
	Workers         int                `yaml:"Workers"`         // 0 is one per CPU
	UpdateFlags     []string           `yaml:"UpdateFlags"`     // Extra quantities to compute, see types.UpdateFlagNameMap
	Expected        map[string]float64 `yaml:"Expected"`        // Reference values to compare the result with, like Measure
}

func (ip *SweepParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

// Flags combines the names in UpdateFlags
func (ip *SweepParameters) Flags() (types.UpdateFlags, error) {
	return types.ParseUpdateFlags(ip.UpdateFlags...)
}

func (ip *SweepParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Element\n", ip.Element)
	fmt.Printf("[%d]\t\t\t\t= Dimension\n", ip.Dimension)
	fmt.Printf("[%d]\t\t\t\t= Space Dimension\n", ip.SpaceDimension)
	fmt.Printf("[%d]\t\t\t\t= Quadrature Order\n", ip.QuadratureOrder)
	fmt.Printf("[%d]\t\t\t\t= Workers\n", ip.Workers)
	fmt.Printf("%v\t= Update Flags\n", ip.UpdateFlags)
	keys := make([]string, len(ip.Expected))
	i := 0
	for k := range ip.Expected {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Expected[%s] = %v\n", key, ip.Expected[key])
	}
}
