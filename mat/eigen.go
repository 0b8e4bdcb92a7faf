package mat

import (
	"cmp"
	"slices"

	gmat "gonum.org/v1/gonum/mat"
)

// ValVec is an eigenvalue together with its right eigenvector.
type ValVec struct {
	Val complex128
	Vec []complex128
}

// Eigen computes the eigendecomposition of m, with eigenpairs sorted by the
// real part of their eigenvalues in ascending order.
// m must be real, since gonum factorizes real matrices only.
func (m *COO) Eigen() []ValVec {
	gnm := gmat.NewDense(m.rows, m.cols, nil)
	gnm.Zero()
	for _, v := range m.Data {
		if imag(v.v) != 0 {
			panic("not real")
		}
		gnm.Set(v.row, v.col, float64(real(v.v)))
	}

	var eig gmat.Eigen
	ok := eig.Factorize(gnm, gmat.EigenRight)
	if !ok {
		panic("eig.Factorize failed")
	}
	vals := eig.Values(nil)
	vecs := gmat.NewCDense(m.rows, m.cols, nil)
	eig.VectorsTo(vecs)

	vecsR, _ := vecs.Caps()
	vvs := make([]ValVec, 0, len(vals))
	for i, v := range vals {
		vec := make([]complex128, 0, vecsR)
		for j := 0; j < vecsR; j++ {
			vec = append(vec, vecs.At(j, i))
		}
		vvs = append(vvs, ValVec{Val: v, Vec: vec})
	}
	slices.SortFunc(vvs, func(a, b ValVec) int { return cmp.Compare(real(a.Val), real(b.Val)) })

	return vvs
}
