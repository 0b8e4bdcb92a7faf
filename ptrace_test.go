package qspace

import (
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/pkg/errors"

	"github.com/fumin/qspace/mat"
)

func TestPtraceIdentity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d1 int
		d2 int
	}{
		{d1: 2, d2: 2},
		{d1: 2, d2: 3},
		{d1: 4, d2: 3},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d %d", test.d1, test.d2), func(t *testing.T) {
			t.Parallel()
			a := newTestFactor(t, test.d1, "a")
			b := newTestFactor(t, test.d2, "b")
			s := Kron(NewSpace(a), NewSpace(b))

			// Tracing the identity over the first factor yields d1 times
			// the identity of the second.
			reducedSpace, reduced, err := PtraceMat(s, 0, mat.COOIdentity(s.Len()))
			if err != nil {
				t.Fatalf("%+v", err)
			}

			if reducedSpace.Name() != "b" {
				t.Fatalf("%q", reducedSpace.Name())
			}
			want := mat.COOIdentity(test.d2)
			want.Mul(mat.M([][]complex64{{complex(float32(test.d1), 0)}}))
			if !reduced.Equal(want) {
				t.Fatalf("%s, expected %s", reduced, want)
			}
		})
	}
}

func TestPtraceBell(t *testing.T) {
	t.Parallel()
	a := newTestFactor(t, 2, "a")
	b := newTestFactor(t, 2, "b")
	s := Kron(NewSpace(a), NewSpace(b))

	// The projector onto (|00> + |11>)/sqrt(2) reduces to the maximally
	// mixed state on either side.
	k00, err := s.Basis(0, 0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	k11, err := s.Basis(1, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	bell := mat.COOZeros(4, 1)
	bell.Add(complex(float32(1/math.Sqrt2), 0), k00)
	bell.Add(complex(float32(1/math.Sqrt2), 0), k11)
	rho := mat.Outer(bell, bell)

	for pos := 0; pos < 2; pos++ {
		_, reduced, err := PtraceMat(s, pos, rho)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				var want complex64
				if i == j {
					want = 0.5
				}
				if got := reduced.At(i, j); cmplx.Abs(complex128(got-want)) > 1e-6 {
					t.Fatalf("pos %d at %d %d: %v, expected %v", pos, i, j, got, want)
				}
			}
		}
	}
}

func TestPtracePreservesTrace(t *testing.T) {
	t.Parallel()
	a := newTestFactor(t, 2, "a")
	b := newTestFactor(t, 3, "b")
	c := newTestFactor(t, 2, "c")
	s := Kron(NewSpace(a), NewSpace(b), NewSpace(c))

	// An arbitrary non-hermitian operator with entries scattered on and
	// off every factor diagonal.
	m := mat.COOZeros(12, 12)
	for i := 0; i < 12; i++ {
		for j := 0; j < 12; j++ {
			if (i*7+j*3)%5 == 0 {
				m.Set(i, j, complex(float32(i+1), float32(j)-2))
			}
		}
	}
	total := m.Trace()

	for pos := 0; pos < 3; pos++ {
		reducedSpace, reduced, err := PtraceMat(s, pos, m)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if got := reduced.Trace(); cmplx.Abs(complex128(got-total)) > 1e-4 {
			t.Fatalf("pos %d: %v, expected %v", pos, got, total)
		}
		if reduced.Rows() != reducedSpace.Len() || reduced.Cols() != reducedSpace.Len() {
			t.Fatalf("%d %d %d", reduced.Rows(), reduced.Cols(), reducedSpace.Len())
		}
	}
}

func TestPtraceValues(t *testing.T) {
	t.Parallel()
	a := newTestFactor(t, 2, "a")
	b := newTestFactor(t, 2, "b")
	s := Kron(NewSpace(a), NewSpace(b))

	// rho = |01><01| traced over b leaves |0><0| on a.
	p, err := s.Basis(0, 1, 0, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	reducedSpace, reduced, err := PtraceMat(s, 1, p)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if reducedSpace.Name() != "a" {
		t.Fatalf("%q", reducedSpace.Name())
	}
	want := mat.M([][]complex64{
		{1, 0},
		{0, 0},
	})
	if !reduced.Equal(want) {
		t.Fatalf("%s, expected %s", reduced, want)
	}

	// Off-diagonal entries of the traced factor contribute nothing:
	// |00><01| has no diagonal survivor on b.
	p2, err := s.Basis(0, 0, 0, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	_, reduced2, err := PtraceMat(s, 1, p2)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if reduced2.NumNonZero() != 0 {
		t.Fatalf("%s", reduced2)
	}
}

func TestPtraceSingleFactor(t *testing.T) {
	t.Parallel()
	a := newTestFactor(t, 3, "a")
	s := NewSpace(a)

	m := mat.M([][]complex64{
		{1, 5, 0},
		{0, 2i, 0},
		{9, 0, -4},
	})
	reducedSpace, reduced, err := PtraceMat(s, 0, m)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	// Tracing out the only factor degenerates to the scalar trace.
	if len(reducedSpace.Factors()) != 0 || reducedSpace.Len() != 1 {
		t.Fatalf("%s", reducedSpace)
	}
	want := mat.M([][]complex64{{-3 + 2i}})
	if !reduced.Equal(want) {
		t.Fatalf("%s, expected %s", reduced, want)
	}
}

func TestPtraceDimOneFactor(t *testing.T) {
	t.Parallel()
	a := newTestFactor(t, 1, "a")
	b := newTestFactor(t, 2, "b")
	s := Kron(NewSpace(a), NewSpace(b))

	m := mat.M([][]complex64{
		{1, 2},
		{3, 4i},
	})

	// Tracing out the dimension 1 factor changes nothing but the space.
	reducedSpace, reduced, err := PtraceMat(s, 0, m)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if reducedSpace.Name() != "b" {
		t.Fatalf("%q", reducedSpace.Name())
	}
	if !reduced.Equal(m) {
		t.Fatalf("%s, expected %s", reduced, m)
	}

	// Tracing out the other factor leaves the scalar trace on a.
	reducedSpace, reduced, err = PtraceMat(s, 1, m)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if reducedSpace.Name() != "a" || reducedSpace.Len() != 1 {
		t.Fatalf("%s", reducedSpace)
	}
	want := mat.M([][]complex64{{1 + 4i}})
	if !reduced.Equal(want) {
		t.Fatalf("%s, expected %s", reduced, want)
	}

	// A space holding only a dimension 1 factor still degenerates to the
	// scalar trace.
	s1 := NewSpace(a)
	reducedSpace, reduced, err = PtraceMat(s1, 0, mat.M([][]complex64{{7}}))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if len(reducedSpace.Factors()) != 0 || reducedSpace.Len() != 1 {
		t.Fatalf("%s", reducedSpace)
	}
	if !reduced.Equal(mat.M([][]complex64{{7}})) {
		t.Fatalf("%s", reduced)
	}
}

func TestPtraceDisk(t *testing.T) {
	t.Parallel()
	a := newTestFactor(t, 2, "a")
	b := newTestFactor(t, 2, "b")
	s := Kron(NewSpace(a), NewSpace(b))

	dir := t.TempDir()
	dm := mat.DiskZeros(dir+"/m.db", 4, 4)
	for i := 0; i < 4; i++ {
		dm.Set(i, i, complex(float32(i+1), 0))
	}

	// A disk-backed operator partial-traces like its in-memory image.
	_, reduced, err := PtraceMat(s, 1, dm)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	_, want, err := PtraceMat(s, 1, dm.COO())
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !reduced.Equal(want) {
		t.Fatalf("%s, expected %s", reduced, want)
	}
	if got := reduced.Trace(); got != 10 {
		t.Fatalf("%v", got)
	}
}

func TestPtraceErrors(t *testing.T) {
	t.Parallel()
	a := newTestFactor(t, 2, "a")
	b := newTestFactor(t, 2, "b")
	s := Kron(NewSpace(a), NewSpace(b))

	m := mat.COOIdentity(4)
	if _, _, err := PtraceMat(s, -1, m); errors.Cause(err) != ErrInvalidSubsystem {
		t.Fatalf("%+v", err)
	}
	if _, _, err := PtraceMat(s, 2, m); errors.Cause(err) != ErrInvalidSubsystem {
		t.Fatalf("%+v", err)
	}

	// A ket view cannot be partial-traced.
	k, err := s.Ket(0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	v, err := Subview(s, k)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if _, _, err := Ptrace(s, 0, v); errors.Cause(err) != ErrUnsupportedRank {
		t.Fatalf("%+v", err)
	}
}
