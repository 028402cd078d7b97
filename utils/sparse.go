package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK is a dictionary-of-keys sparse matrix used for assembly, entries accumulate
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m DOK) NNZ() int { return m.M.NNZ() }

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

// AddAt accumulates val into entry (i,j)
func (m DOK) AddAt(i, j int, val float64) DOK { // Changes receiver
	m.checkWritable()
	nr, nc := m.Dims()
	if i < 0 || i >= nr || j < 0 || j >= nc {
		panic(fmt.Errorf("index (%d,%d) out of range for %d x %d matrix \"%v\"", i, j, nr, nc, m.name))
	}
	m.M.Set(i, j, m.M.At(i, j)+val)
	return m
}

// Sum adds up all stored entries
func (m DOK) Sum() (sum float64) {
	m.M.DoNonZero(func(i, j int, v float64) {
		sum += v
	})
	return
}

// RowSums returns A*1
func (m DOK) RowSums() (r []float64) {
	nr, _ := m.Dims()
	r = make([]float64, nr)
	m.M.DoNonZero(func(i, j int, v float64) {
		r[i] += v
	})
	return
}

// MaxAsymmetry is the largest |A(i,j) - A(j,i)| over the stored entries
func (m DOK) MaxAsymmetry() (asym float64) {
	m.M.DoNonZero(func(i, j int, v float64) {
		d := v - m.M.At(j, i)
		if d < 0 {
			d = -d
		}
		if d > asym {
			asym = d
		}
	})
	return
}

func (m DOK) ToCSR() *sparse.CSR {
	return m.M.ToCSR()
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}
