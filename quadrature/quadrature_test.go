package quadrature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/simplexfe/utils"
)

func near(a, b float64, tolI ...float64) bool {
	tol := 1.e-12
	if len(tolI) != 0 {
		tol = tolI[0]
	}
	return math.Abs(a-b) < tol
}

// exact integral of prod x_k^e_k over the unit simplex
func simplexMonomialIntegral(e []int) float64 {
	var (
		num = 1
		sum = 0
	)
	for _, ek := range e {
		num *= utils.Factorial(ek)
		sum += ek
	}
	return float64(num) / float64(utils.Factorial(sum+len(e)))
}

func exponents(dim, degree int) (list [][]int) {
	var gen func(prefix []int, remaining int)
	gen = func(prefix []int, remaining int) {
		if len(prefix) == dim {
			e := make([]int, dim)
			copy(e, prefix)
			list = append(list, e)
			return
		}
		for p := 0; p <= remaining; p++ {
			gen(append(prefix, p), remaining-p)
		}
	}
	gen(nil, degree)
	return
}

// jacobiMoment is the exact integral of (1-x)^alpha x^k over [-1,1]
func jacobiMoment(alpha, k int) (sum float64) {
	binom := 1.
	for j := 0; j <= alpha; j++ {
		if (k+j)%2 == 0 {
			sum += binom * math.Pow(-1, float64(j)) * 2. / float64(k+j+1)
		}
		binom *= float64(alpha-j) / float64(j+1)
	}
	return
}

func TestJacobiGQMoments(t *testing.T) {
	assert.True(t, near(-2./3., jacobiMoment(1, 1)))
	assert.True(t, near(2./3., jacobiMoment(1, 2)))
	for _, alpha := range []int{1, 2} {
		for N := 1; N < 6; N++ {
			x, w := JacobiGQ(float64(alpha), 0, N)
			require.Len(t, x, N+1)
			for k := 0; k <= 2*N+1; k++ {
				var sum float64
				for i := range x {
					sum += w[i] * math.Pow(x[i], float64(k))
				}
				assert.Truef(t, near(jacobiMoment(alpha, k), sum, 1.e-11),
					"alpha %d, N %d, k %d: got %v want %v", alpha, N, k, sum, jacobiMoment(alpha, k))
			}
		}
	}
}

func TestJacobiGQ(t *testing.T) {
	{ // Gauss-Legendre, 3 points
		x, w := JacobiGQ(0, 0, 2)
		assert.True(t, near(-math.Sqrt(3./5.), x[0]))
		assert.True(t, near(0, x[1]))
		assert.True(t, near(math.Sqrt(3./5.), x[2]))
		assert.True(t, near(5./9., w[0]))
		assert.True(t, near(8./9., w[1]))
		assert.True(t, near(5./9., w[2]))
	}
	{ // Weights integrate the Jacobi weight itself
		for _, alpha := range []float64{0, 1, 2} {
			for N := 0; N < 5; N++ {
				_, w := JacobiGQ(alpha, 0, N)
				assert.True(t, near(math.Pow(2, alpha+1)/(alpha+1), floats.Sum(w)))
			}
		}
	}
	{ // N+1 point rule is exact to degree 2N+1
		x, w := JacobiGQ(1, 0, 2)
		var sum float64
		for i := range x {
			sum += w[i] * math.Pow(x[i], 5)
		}
		// int_{-1}^{1} (1-x) x^5 dx = -2/7
		assert.True(t, near(-2./7., sum))
	}
}

func TestGaussSimplex(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		for order := 0; order <= 6; order++ {
			q := NewGaussSimplex(dim, order)
			assert.Equal(t, dim, q.Dim)
			assert.True(t, near(1./float64(utils.Factorial(dim)), q.SumWeights()))
			for _, p := range q.Points {
				require.Len(t, p, dim)
				assert.True(t, floats.Min(p) > 0)
				assert.True(t, floats.Sum(p) < 1)
			}
			for degree := 0; degree <= order; degree++ {
				for _, e := range exponents(dim, degree) {
					var sum float64
					for i, p := range q.Points {
						val := q.Weight(i)
						for k := range e {
							val *= utils.POW(p[k], e[k])
						}
						sum += val
					}
					assert.Truef(t, near(simplexMonomialIntegral(e), sum),
						"dim %d, order %d, exponents %v: got %v want %v",
						dim, order, e, sum, simplexMonomialIntegral(e))
				}
			}
		}
	}
	{ // Dimension zero is a single point
		q := NewGaussSimplex(0, 4)
		assert.Equal(t, 1, q.Size())
		assert.Equal(t, 1., q.Weight(0))
		assert.Len(t, q.Point(0), 0)
	}
	assert.Panics(t, func() { NewGaussSimplex(4, 1) })
}

func TestSideQuadrature(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		q := NewGaussSimplex(dim-1, 3)
		for side := 0; side <= dim; side++ {
			sq := MakeSideQuadrature(q, side)
			assert.Equal(t, dim, sq.Dim)
			assert.Equal(t, q.Size(), sq.Size())
			assert.True(t, near(q.SumWeights(), sq.SumWeights()))
			for _, p := range sq.Points {
				bary := append([]float64{1 - floats.Sum(p)}, p...)
				assert.True(t, near(0, bary[side]))
				for _, b := range bary {
					assert.True(t, b > -utils.NODETOL)
				}
			}
		}
	}
	{ // The midpoint of side 0 of a triangle
		sq := MakeSideQuadrature(NewGaussSimplex(1, 1), 0)
		require.Equal(t, 1, sq.Size())
		assert.True(t, near(0.5, sq.Point(0)[0]))
		assert.True(t, near(0.5, sq.Point(0)[1]))
	}
	assert.Panics(t, func() { MakeSideQuadrature(NewGaussSimplex(1, 1), 3) })
}

func TestNewQuadrature(t *testing.T) {
	q, err := NewQuadrature(2, [][]float64{{1. / 3., 1. / 3.}}, []float64{0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, q.Size())
	_, err = NewQuadrature(2, [][]float64{{1. / 3.}}, []float64{0.5})
	assert.Error(t, err)
	_, err = NewQuadrature(2, [][]float64{{1. / 3., 1. / 3.}}, nil)
	assert.Error(t, err)

	pq := NewPointQuadrature([]float64{0.25, 0.5})
	assert.Equal(t, 2, pq.Dim)
	assert.Equal(t, []float64{0.25, 0.5}, pq.Point(0))
	assert.Equal(t, 1., pq.SumWeights())
}
