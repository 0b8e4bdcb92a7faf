package qspace

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fumin/qspace/mat"
)

// View exposes subsystem-labeled multi-index access over a flat sparse
// matrix or ket, without copying the underlying data.
//
// For a Space with per-factor dimensions d1,...,dk, a rank 1 view addresses
// a ket of length d1·...·dk with k indices, and a rank 2 view addresses a
// square operator with 2k indices, the k row indices followed by the k
// column indices. Index m ranges over 0..dm-1. A multi-index addresses
// exactly the element a manual Kronecker product index computation would
// address: the leftmost factor varies slowest.
//
// A View holds a non-owning reference to its backing matrix. It is meant to
// live for the duration of one indexing or trace operation.
type View struct {
	m    mat.Matrix
	dims []int
	rank int
}

// Subview wraps m in a View over space.
// m must either be a ket of length space.Len() (rank 1), or a square matrix
// of side space.Len() (rank 2). Over a space of total dimension 1 the two
// shapes coincide, and a 1×1 backing is taken to be an operator.
func Subview(space *Space, m mat.Matrix) (*View, error) {
	n := space.Len()
	var rank int
	switch {
	case m.Rows() == n && m.Cols() == n:
		rank = 2
	case m.Rows() == n && m.Cols() == 1:
		rank = 1
	default:
		return nil, errors.Wrap(ErrUnsupportedRank, fmt.Sprintf("%dx%d over %s of dimension %d", m.Rows(), m.Cols(), space.Name(), n))
	}
	return subview(space, m, rank)
}

// subview wraps m with the rank the caller intends, so that degenerate
// dimension 1 shapes are never misclassified.
func subview(space *Space, m mat.Matrix, rank int) (*View, error) {
	n := space.Len()
	switch {
	case rank == 1 && m.Rows() == n && m.Cols() == 1:
	case rank == 2 && m.Rows() == n && m.Cols() == n:
	default:
		return nil, errors.Wrap(ErrUnsupportedRank, fmt.Sprintf("rank %d %dx%d over %s of dimension %d", rank, m.Rows(), m.Cols(), space.Name(), n))
	}
	return &View{m: m, dims: space.Dims(), rank: rank}, nil
}

// Unview returns the flat matrix the view wraps.
func (v *View) Unview() mat.Matrix { return v.m }

// Rank returns 1 for a ket view and 2 for an operator view.
func (v *View) Rank() int { return v.rank }

// Dims returns the per-factor dimensions in factor order.
func (v *View) Dims() []int { return append([]int{}, v.dims...) }

// At reads the element addressed by idx.
// A rank 1 view takes k indices, a rank 2 view 2k, with k = len(Dims()).
// Both also accept the flat form: 1 index for rank 1, 2 for rank 2.
func (v *View) At(idx ...int) complex64 {
	row, col := v.rowcol(idx)
	return v.m.At(row, col)
}

// Set writes the element addressed by idx. Indexing is as in At.
func (v *View) Set(x complex64, idx ...int) {
	row, col := v.rowcol(idx)
	v.m.Set(row, col, x)
}

func (v *View) rowcol(idx []int) (int, int) {
	k := len(v.dims)
	switch {
	case v.rank == 1 && len(idx) == 1:
		return idx[0], 0
	case v.rank == 1 && len(idx) == k:
		return mustFlatten(v.dims, idx), 0
	case v.rank == 2 && len(idx) == 2:
		return idx[0], idx[1]
	case v.rank == 2 && len(idx) == 2*k:
		return mustFlatten(v.dims, idx[:k]), mustFlatten(v.dims, idx[k:])
	default:
		panic(fmt.Sprintf("%d indices on rank %d view of %d factors", len(idx), v.rank, k))
	}
}

// Multi converts a coordinate of the backing matrix to the view's
// multi-index, appending to buf.
func (v *View) Multi(buf []int, row, col int) []int {
	buf = unflatten(v.dims, row, buf)
	if v.rank == 2 {
		buf = unflatten(v.dims, col, buf)
	}
	return buf
}

// flatten converts a multi-index in factor order to a flat index, with the
// first factor as the most significant digit. This function and unflatten
// are the only places index arithmetic happens.
func flatten(dims, idx []int) (int, error) {
	flat := 0
	for k, d := range dims {
		i := idx[k]
		if i < 0 || i >= d {
			return -1, errors.Wrap(ErrMalformedIndexing, fmt.Sprintf("index %d at factor %d of dimension %d", i, k, d))
		}
		flat = flat*d + i
	}
	return flat, nil
}

func mustFlatten(dims, idx []int) int {
	flat, err := flatten(dims, idx)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return flat
}

// unflatten is the inverse of flatten, appending the multi-index to buf.
func unflatten(dims []int, flat int, buf []int) []int {
	k := len(buf)
	for range dims {
		buf = append(buf, 0)
	}
	for m := len(dims) - 1; m >= 0; m-- {
		buf[k+m] = flat % dims[m]
		flat /= dims[m]
	}
	return buf
}
