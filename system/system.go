// Package system provides Factors for concrete physical systems.
// It builds entirely on the public qspace API.
package system

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/pkg/errors"

	"github.com/fumin/qspace"
	"github.com/fumin/qspace/mat"
)

// Qubit creates a two-level Factor with the Pauli operators "x", "y", "z",
// the raising and lowering operators "p" and "m", and the excitation number
// "n". The basis is |0>, |1>.
func Qubit(name string) (*qspace.Factor, error) {
	f, err := qspace.NewFactor(2, name)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	ops := []struct {
		name string
		m    [][]complex64
	}{
		{name: "x", m: mat.PauliX},
		{name: "y", m: mat.PauliY},
		{name: "z", m: mat.PauliZ},
		{name: "p", m: [][]complex64{
			{0, 0},
			{1, 0},
		}},
		{name: "m", m: [][]complex64{
			{0, 1},
			{0, 0},
		}},
		{name: "n", m: [][]complex64{
			{0, 0},
			{0, 1},
		}},
	}
	for _, op := range ops {
		if err := f.AddOp(op.name, mat.M(op.m)); err != nil {
			return nil, errors.Wrap(err, op.name)
		}
	}
	return f, nil
}

// Spin creates a Factor of dimension 2j+1 carrying the angular momentum
// operators "z", "p", "m", "x", "y". twoJ is 2j, so that half-integer spins
// stay integral. The basis is |j>, |j-1>, ..., |-j>.
func Spin(name string, twoJ int) (*qspace.Factor, error) {
	if twoJ < 1 {
		return nil, errors.Wrap(qspace.ErrInvalidDimension, fmt.Sprintf("2j=%d", twoJ))
	}
	dim := twoJ + 1
	f, err := qspace.NewFactor(dim, name)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	j := float64(twoJ) / 2
	jz := make([][]complex64, dim)
	jp := make([][]complex64, dim)
	for i := range dim {
		jz[i] = make([]complex64, dim)
		jp[i] = make([]complex64, dim)
	}
	for i := range dim {
		m := j - float64(i)
		jz[i][i] = complex(float32(m), 0)
		// J+ |j,m> = sqrt(j(j+1)-m(m+1)) |j,m+1>, acting on column i+1.
		if i+1 < dim {
			m1 := j - float64(i+1)
			jp[i][i+1] = complex(float32(math.Sqrt(j*(j+1)-m1*(m1+1))), 0)
		}
	}
	jm := transpose(jp)

	if err := f.AddOp("z", mat.M(jz)); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := f.AddOp("p", mat.M(jp)); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := f.AddOp("m", mat.M(jm)); err != nil {
		return nil, errors.Wrap(err, "")
	}

	jx := mat.M(jp)
	jx.Add(1, mat.M(jm))
	jx.Mul(mat.M([][]complex64{{0.5}}))
	if err := f.AddOp("x", jx); err != nil {
		return nil, errors.Wrap(err, "")
	}
	jy := mat.M(jp)
	jy.Add(-1, mat.M(jm))
	jy.Mul(mat.M([][]complex64{{-0.5i}}))
	if err := f.AddOp("y", jy); err != nil {
		return nil, errors.Wrap(err, "")
	}

	return f, nil
}

// Oscillator creates a harmonic oscillator Factor truncated at cutoff
// levels, with the annihilation operator "a", the creation operator "ad",
// and the number operator "n".
func Oscillator(name string, cutoff int) (*qspace.Factor, error) {
	f, err := qspace.NewFactor(cutoff, name)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	a := make([][]complex64, cutoff)
	n := make([][]complex64, cutoff)
	for i := range cutoff {
		a[i] = make([]complex64, cutoff)
		n[i] = make([]complex64, cutoff)
		n[i][i] = complex(float32(i), 0)
		if i+1 < cutoff {
			a[i][i+1] = complex(float32(math.Sqrt(float64(i+1))), 0)
		}
	}

	if err := f.AddOp("a", mat.M(a)); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := f.AddOp("ad", mat.M(transpose(a))); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := f.AddOp("n", mat.M(n)); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return f, nil
}

// CoherentKet returns the coherent state |alpha> on an oscillator Factor,
// truncated to the factor dimension and renormalized.
func CoherentKet(f *qspace.Factor, alpha complex64) *mat.COO {
	dim := f.Dim()
	c := make([][]complex64, dim)

	// c_n = alpha^n / sqrt(n!), normalized over the kept levels.
	amp := complex128(1)
	var norm2 float64
	for i := range dim {
		c[i] = []complex64{complex64(amp)}
		norm2 += real(amp)*real(amp) + imag(amp)*imag(amp)
		amp = amp * complex128(alpha) / complex(math.Sqrt(float64(i+1)), 0)
	}
	scale := complex(1/math.Sqrt(norm2), 0)
	for i := range dim {
		c[i][0] = complex64(complex128(c[i][0]) * scale)
	}

	return mat.M(c)
}

// Displacement returns the mean photon number |alpha|^2 of a coherent state,
// a convenience for sizing oscillator cutoffs.
func Displacement(alpha complex64) float64 {
	a := cmplx.Abs(complex128(alpha))
	return a * a
}

func transpose(m [][]complex64) [][]complex64 {
	t := make([][]complex64, len(m[0]))
	for i := range t {
		t[i] = make([]complex64, len(m))
		for j := range t[i] {
			t[i][j] = m[j][i]
		}
	}
	return t
}
