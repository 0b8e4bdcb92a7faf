package qspace

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fumin/qspace/mat"
)

// Ptrace removes the factor at pos from space by summing over its diagonal,
// and returns the reduced Space along with the reduced operator.
//
// v must be a rank 2 view over space. Only the structurally nonzero entries
// of the backing matrix are visited: entries sharing a flat coordinate are
// summed, entries where the traced factor sits off its diagonal contribute
// nothing, and the rest are grouped by their multi-index with the traced
// factor removed. The reduced operator is sparse; groups whose sum never
// receives a contribution stay implicit zeros.
//
// The trace of the reduced operator equals the trace of the original.
func Ptrace(space *Space, pos int, v *View) (*Space, *mat.COO, error) {
	nsys := len(space.factors)
	if pos < 0 || pos >= nsys {
		return nil, nil, errors.Wrap(ErrInvalidSubsystem, fmt.Sprintf("%d of %d", pos, nsys))
	}
	if v.rank != 2 {
		return nil, nil, errors.Wrap(ErrUnsupportedRank, fmt.Sprintf("rank %d", v.rank))
	}

	remaining := make([]*Space, 0, nsys-1)
	for i, f := range space.factors {
		if i == pos {
			continue
		}
		remaining = append(remaining, NewSpace(f))
	}
	reducedSpace := Kron(remaining...)

	reduced := mat.COOZeros(reducedSpace.Len(), reducedSpace.Len())
	rv, err := subview(reducedSpace, reduced, 2)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}

	// Sum the flat entries first, so that duplicate coordinates in the
	// backing structure collapse before grouping.
	flat := make(map[[2]int]complex64)
	v.m.NonZero()(func(yx [2]int, x complex64) bool {
		flat[yx] += x
		return true
	})

	midx := make([]int, 0, 2*nsys)
	tidx := make([]int, 0, 2*(nsys-1))
	for yx, x := range flat {
		midx = v.Multi(midx[:0], yx[0], yx[1])
		// Off-diagonal entries of the traced factor contribute nothing.
		if midx[pos] != midx[nsys+pos] {
			continue
		}

		tidx = tidx[:0]
		for k, i := range midx {
			if k == pos || k == nsys+pos {
				continue
			}
			tidx = append(tidx, i)
		}
		rv.Set(rv.At(tidx...)+x, tidx...)
	}

	return reducedSpace, reduced, nil
}

// PtraceMat is Ptrace on a raw flat operator, wrapping it in a rank 2 view
// first.
func PtraceMat(space *Space, pos int, m mat.Matrix) (*Space, *mat.COO, error) {
	v, err := subview(space, m, 2)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	reducedSpace, reduced, err := Ptrace(space, pos, v)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	return reducedSpace, reduced, nil
}
