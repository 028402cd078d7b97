package quadrature

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// JacobiGQ returns the N+1 Gauss nodes and weights on [-1,1] for the weight (1-x)^alpha (1+x)^beta,
// computed by the Golub-Welsch eigenvalue method
func JacobiGQ(alpha, beta float64, N int) (x, w []float64) {
	var (
		fac        float64
		h1, d0, d1 []float64
		VVr        *mat.Dense
	)
	if N == 0 {
		x = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		w = []float64{gamma0(alpha, beta)}
		return
	}

	h1 = make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: (beta^2-alpha^2)/((h1+2)*h1), the full symmetric diagonal
	d0 = make([]float64, N+1)
	fac = -(alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}
	// Handle division by zero
	eps := 1.e-16
	if alpha+beta < 10*eps {
		d0[0] = 0.
	}

	// 1st upper diagonal
	var ip1 float64
	d1 = make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 = float64(i + 1)
		val := h1[i]
		d1[i] = 2. / (val + 2.)
		d1[i] *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
	}

	JJ := symTriDiagonal(d0, d1)

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(nil)

	VVr = mat.NewDense(len(x), len(x), nil)
	eig.VectorsTo(VVr)
	g0 := gamma0(alpha, beta)
	w = make([]float64, len(x))
	for i, v := range VVr.RawRowView(0) {
		w[i] = v * v * g0
	}
	return
}

func symTriDiagonal(d0, d1 []float64) (S *mat.SymDense) {
	n := len(d0)
	S = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		S.SetSym(i, i, d0[i])
		if i < n-1 {
			S.SetSym(i, i+1, d1[i])
		}
	}
	return
}

// gamma0 is the integral of the Jacobi weight over [-1,1]
func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}
