package utils

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// ErrSingularMatrix is wrapped by every inversion failure
var ErrSingularMatrix = errors.New("matrix is singular")

// ConditionLimit is the largest 1-norm condition number accepted by Inverse
const ConditionLimit = 1.e13

type Matrix struct {
	M        *mat.Dense
	readOnly bool
	name     string
}

// NewMatrix allocates an nr x nc matrix, optionally initialized from row-major data
func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v", nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = Matrix{
		m,
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

func NewIdentity(n int) (R Matrix) {
	R = NewMatrix(n, n)
	for i := 0; i < n; i++ {
		R.M.Set(i, i, 1)
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }

func (m Matrix) IsEmpty() bool { return m.M == nil }

func (m Matrix) Data() []float64 { return m.M.RawMatrix().Data }

func (m *Matrix) SetReadOnly(name ...string) Matrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m *Matrix) SetWritable() Matrix {
	m.readOnly = false
	return *m
}

func (m Matrix) IsReadOnly() bool { return m.readOnly }

func (m Matrix) Copy() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
		dataR  = make([]float64, nr*nc)
	)
	copy(dataR, m.Data())
	R = NewMatrix(nr, nc, dataR)
	return
}

func (m Matrix) Transpose() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
		data   = m.Data()
	)
	R = NewMatrix(nc, nr)
	dataR := R.Data()
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			dataR[j*nr+i] = data[i*nc+j]
		}
	}
	return
}

func (m Matrix) Mul(A Matrix) (R Matrix) { // Does not change receiver
	var (
		nrM, ncM = m.M.Dims()
		nrA, ncA = A.M.Dims()
	)
	if ncM != nrA {
		panic(fmt.Errorf("dimension mismatch in Mul: %d x %d times %d x %d", nrM, ncM, nrA, ncA))
	}
	R = NewMatrix(nrM, ncA)
	R.M.Mul(m.M, A.M)
	return R
}

// MulVec returns m * v
func (m Matrix) MulVec(v []float64) (r []float64) { // Does not change receiver
	var (
		nr, nc = m.Dims()
		data   = m.Data()
	)
	if len(v) != nc {
		panic(fmt.Errorf("dimension mismatch in MulVec: %d x %d times %d", nr, nc, len(v)))
	}
	r = make([]float64, nr)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			r[i] += data[i*nc+j] * v[j]
		}
	}
	return
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) SetCol(j int, data []float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.SetCol(j, data)
	return m
}

// AddScaled accumulates a*A into the receiver
func (m Matrix) AddScaled(a float64, A Matrix) Matrix { // Changes receiver
	var (
		data  = m.Data()
		dataA = A.Data()
	)
	m.checkWritable()
	if len(data) != len(dataA) {
		nr, nc := m.Dims()
		nrA, ncA := A.Dims()
		panic(fmt.Errorf("dimension mismatch in AddScaled: %d x %d and %d x %d", nr, nc, nrA, ncA))
	}
	for i := range data {
		data[i] += a * dataA[i]
	}
	return m
}

func (m Matrix) Scale(a float64) Matrix { // Changes receiver
	m.checkWritable()
	data := m.Data()
	for i := range data {
		data[i] *= a
	}
	return m
}

func (m Matrix) Col(j int) (col []float64) {
	var (
		data   = m.Data()
		nr, nc = m.M.Dims()
	)
	j = lim(j, nc)
	col = make([]float64, nr)
	for i := range col {
		col[i] = data[i*nc+j]
	}
	return
}

func (m Matrix) Row(i int) (row []float64) {
	var (
		data   = m.Data()
		nr, nc = m.M.Dims()
	)
	i = lim(i, nr)
	row = make([]float64, nc)
	copy(row, data[i*nc:(i+1)*nc])
	return
}

func (m Matrix) Det() float64 { return mat.Det(m.M) }

// Trace sums the diagonal of a square matrix
func (m Matrix) Trace() (tr float64) {
	nr, nc := m.Dims()
	if nr != nc {
		panic(fmt.Errorf("trace of non square matrix: %d x %d", nr, nc))
	}
	for i := 0; i < nr; i++ {
		tr += m.At(i, i)
	}
	return
}

// Inverse refuses singular and numerically singular matrices, the latter judged by ConditionLimit
func (m Matrix) Inverse() (R Matrix, err error) {
	var (
		nr, nc = m.Dims()
	)
	if nr != nc {
		err = fmt.Errorf("unable to invert, matrix is %d x %d: %w", nr, nc, ErrSingularMatrix)
		return
	}
	if cond := mat.Cond(m.M, 1); cond > ConditionLimit {
		err = fmt.Errorf("unable to invert, condition number %g: %w", cond, ErrSingularMatrix)
		return
	}
	R = m.Copy()
	iPiv := make([]int, nr)
	if ok := lapack64.Getrf(R.RawMatrix(), iPiv); !ok {
		err = fmt.Errorf("unable to invert, zero pivot: %w", ErrSingularMatrix)
		return
	}
	work := make([]float64, nr*nc)
	if ok := lapack64.Getri(R.RawMatrix(), iPiv, work, nr*nc); !ok {
		err = fmt.Errorf("unable to invert, zero pivot: %w", ErrSingularMatrix)
	}
	return
}

func (m Matrix) String() string {
	return fmt.Sprintf("%s =\n%v", m.name, mat.Formatted(m.M, mat.Squeeze()))
}

func (m Matrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func lim(i, imax int) int {
	if i < 0 {
		return imax + i // Support indexing from end, -1 is imax
	}
	return i
}
