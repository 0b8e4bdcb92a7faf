// Package qspace models quantum state spaces as explicit tensor products of
// labeled factor spaces, and provides algebra over sparse operators defined
// on those spaces.
//
// A Factor is an atomic Hilbert space with a dimension and a catalogue of
// named operators. A Space is an ordered tensor product of Factors, whose
// own catalogue holds joint operators built as Kronecker products of the
// factor operators. The order of factors is significant: the leftmost factor
// is the most significant digit of a flat index into the joint space.
//
// Operators never leave their flat sparse representation. Subsystem-aware
// access goes through a View (see Subview), and factors are removed from a
// Space by Ptrace.
package qspace

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/fumin/qspace/mat"
)

// OpIdentity is the operator name under which every Factor registers its
// identity. A joint space composed of k factors carries its identity under
// the k-fold concatenation "i...i".
const OpIdentity = "i"

// Errors reported by this package, available as causes of returned errors.
var (
	ErrInvalidDimension  = errors.New("invalid dimension")
	ErrUnsupportedRank   = errors.New("unsupported rank")
	ErrInvalidSubsystem  = errors.New("invalid subsystem")
	ErrUnknownOperator   = errors.New("unknown operator")
	ErrMalformedIndexing = errors.New("malformed indexing")
)

// opMap is a mapping from operator name to matrix that remembers insertion
// order. Operator dispatch is by name lookup: operators are data, not
// behavior.
type opMap struct {
	names []string
	m     map[string]*mat.COO
}

func newOpMap() *opMap {
	return &opMap{names: make([]string, 0, 1), m: make(map[string]*mat.COO)}
}

func (om *opMap) set(name string, op *mat.COO) {
	if _, ok := om.m[name]; !ok {
		om.names = append(om.names, name)
	}
	om.m[name] = op
}

func (om *opMap) get(name string) (*mat.COO, bool) {
	op, ok := om.m[name]
	return op, ok
}

// Factor is an atomic Hilbert space.
// Factors are immutable after construction, except that convenience
// constructors may register additional named operators via AddOp before the
// Factor is put to use.
type Factor struct {
	dim  int
	name string
	ops  *opMap
}

// NewFactor creates a Factor of the given dimension.
// The identity operator is registered under OpIdentity.
func NewFactor(dim int, name string) (*Factor, error) {
	if dim < 1 {
		return nil, errors.Wrap(ErrInvalidDimension, fmt.Sprintf("%d", dim))
	}
	f := &Factor{dim: dim, name: name, ops: newOpMap()}
	f.ops.set(OpIdentity, mat.COOIdentity(dim))
	return f, nil
}

func (f *Factor) Dim() int     { return f.dim }
func (f *Factor) Name() string { return f.name }

// OpNames returns the operator catalogue in registration order.
func (f *Factor) OpNames() []string {
	return append([]string{}, f.ops.names...)
}

// Op returns the operator registered under name.
func (f *Factor) Op(name string) (*mat.COO, error) {
	op, ok := f.ops.get(name)
	if !ok {
		return nil, errors.Wrap(ErrUnknownOperator, fmt.Sprintf("%q on %s", name, f.name))
	}
	return op, nil
}

// AddOp registers an operator on f. The operator must be square with side
// equal to the factor dimension.
func (f *Factor) AddOp(name string, op *mat.COO) error {
	if !(op.Rows() == f.dim && op.Cols() == f.dim) {
		return errors.Wrap(ErrInvalidDimension, fmt.Sprintf("%dx%d on %s of dimension %d", op.Rows(), op.Cols(), f.name, f.dim))
	}
	f.ops.set(name, op)
	return nil
}

// String returns a textual summary of the factor.
func (f *Factor) String() string {
	return fmt.Sprintf("%s dim(%d) ops(%s)", f.name, f.dim, strings.Join(f.ops.names, ","))
}

// Ket returns the i-th canonical basis ket of f.
func (f *Factor) Ket(i int) (*mat.COO, error) {
	return NewSpace(f).Ket(i)
}

// Proj returns the basis projector |i><j| of f.
func (f *Factor) Proj(i, j int) (*mat.COO, error) {
	return NewSpace(f).Proj(i, j)
}

// Space is an ordered tensor product of Factors.
type Space struct {
	factors []*Factor
	ops     *opMap
}

// NewSpace creates a one-factor Space.
// The Space shares the factor's operator catalogue by reference, so no
// operator is recomputed.
func NewSpace(f *Factor) *Space {
	return &Space{factors: []*Factor{f}, ops: f.ops}
}

// Kron composes spaces into their tensor product.
// The factor list of the product is the concatenation of the operand factor
// lists. For every combination of one named operator from each operand, the
// product carries an operator keyed by the concatenated names, valued by the
// Kronecker product of the chosen operators in operand order. Kron is
// associative: Kron(Kron(a, b), c) equals Kron(a, Kron(b, c)).
//
// The empty product is the space with no factors and total dimension 1. Its
// catalogue holds the 1×1 identity under the empty name, so the empty space
// composes with further operands like any other.
func Kron(spaces ...*Space) *Space {
	if len(spaces) == 0 {
		empty := &Space{factors: nil, ops: newOpMap()}
		empty.ops.set("", mat.M([][]complex64{{1}}))
		return empty
	}

	prod := &Space{factors: make([]*Factor, 0, len(spaces)), ops: newOpMap()}
	for _, s := range spaces {
		prod.factors = append(prod.factors, s.factors...)
	}

	// Walk the Cartesian product of the operand operator names with an
	// odometer over name indices.
	idx := make([]int, len(spaces))
	var name strings.Builder
	for {
		op := mat.M([][]complex64{{1}})
		name.Reset()
		for k, s := range spaces {
			n := s.ops.names[idx[k]]
			name.WriteString(n)
			op.Kron(s.ops.m[n])
		}
		prod.ops.set(name.String(), op)

		k := len(spaces) - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < len(spaces[k].ops.names) {
				break
			}
			idx[k] = 0
		}
		if k < 0 {
			break
		}
	}

	return prod
}

// Factors returns the factor list in order.
func (s *Space) Factors() []*Factor {
	return append([]*Factor{}, s.factors...)
}

// Dims returns the per-factor dimensions in factor order.
func (s *Space) Dims() []int {
	dims := make([]int, 0, len(s.factors))
	for _, f := range s.factors {
		dims = append(dims, f.dim)
	}
	return dims
}

// Len returns the total dimension of the joint space.
func (s *Space) Len() int {
	l := 1
	for _, f := range s.factors {
		l *= f.dim
	}
	return l
}

// Name returns the factor names joined by the tensor product sign.
func (s *Space) Name() string {
	names := make([]string, 0, len(s.factors))
	for _, f := range s.factors {
		names = append(names, f.name)
	}
	return strings.Join(names, "⊗")
}

// OpNames returns the operator catalogue in registration order.
func (s *Space) OpNames() []string {
	return append([]string{}, s.ops.names...)
}

// Op returns the joint operator registered under name.
func (s *Space) Op(name string) (*mat.COO, error) {
	op, ok := s.ops.get(name)
	if !ok {
		return nil, errors.Wrap(ErrUnknownOperator, fmt.Sprintf("%q on %s", name, s.Name()))
	}
	return op, nil
}

// AddOp registers a joint operator or ket on s.
// Matrices must be Len()×Len(), kets Len()×1.
func (s *Space) AddOp(name string, op *mat.COO) error {
	n := s.Len()
	if !(op.Rows() == n && (op.Cols() == n || op.Cols() == 1)) {
		return errors.Wrap(ErrInvalidDimension, fmt.Sprintf("%dx%d on %s of dimension %d", op.Rows(), op.Cols(), s.Name(), n))
	}
	s.ops.set(name, op)
	return nil
}

// String returns a textual summary of the space.
func (s *Space) String() string {
	dims := make([]string, 0, len(s.factors))
	for _, f := range s.factors {
		dims = append(dims, fmt.Sprintf("%d", f.dim))
	}
	return fmt.Sprintf("%s dims(%s) ops(%s)", s.Name(), strings.Join(dims, ","), strings.Join(s.ops.names, ","))
}

// Ket returns the i-th canonical basis ket of the joint space.
func (s *Space) Ket(i int) (*mat.COO, error) {
	n := s.Len()
	if i < 0 || i >= n {
		return nil, errors.Wrap(ErrMalformedIndexing, fmt.Sprintf("%d of %d", i, n))
	}
	k := mat.COOZeros(n, 1)
	k.Set(i, 0, 1)
	return k, nil
}

// Proj returns the basis projector |i><j| of the joint space.
func (s *Space) Proj(i, j int) (*mat.COO, error) {
	n := s.Len()
	if i < 0 || i >= n || j < 0 || j >= n {
		return nil, errors.Wrap(ErrMalformedIndexing, fmt.Sprintf("%d %d of %d", i, j, n))
	}
	p := mat.COOZeros(n, n)
	p.Set(i, j, 1)
	return p, nil
}

// Basis returns a basis element addressed in per-factor coordinates.
// With nsys indices it returns the basis ket |i1...ik>, with 2·nsys indices
// the projector |i1...ik><j1...jk|.
func (s *Space) Basis(idx ...int) (*mat.COO, error) {
	dims := s.Dims()
	nsys := len(dims)
	switch len(idx) {
	case nsys:
		flat, err := flatten(dims, idx)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		return s.Ket(flat)
	case 2 * nsys:
		row, err := flatten(dims, idx[:nsys])
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		col, err := flatten(dims, idx[nsys:])
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		return s.Proj(row, col)
	default:
		return nil, errors.Wrap(ErrMalformedIndexing, fmt.Sprintf("%d indices on %d factors", len(idx), nsys))
	}
}

// Lift embeds an operator acting on the factor at pos into the joint space,
// tensoring with the identity of every other factor.
func Lift(s *Space, pos int, op *mat.COO) (*mat.COO, error) {
	lifted := mat.M([][]complex64{{1}})
	if err := LiftInto(lifted, s, pos, op); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return lifted, nil
}

// LiftInto is Lift building into dst, which may be disk backed when the joint
// space does not fit in memory.
func LiftInto(dst mat.Matrix, s *Space, pos int, op *mat.COO) error {
	if pos < 0 || pos >= len(s.factors) {
		return errors.Wrap(ErrInvalidSubsystem, fmt.Sprintf("%d of %d", pos, len(s.factors)))
	}
	f := s.factors[pos]
	if !(op.Rows() == f.dim && op.Cols() == f.dim) {
		return errors.Wrap(ErrInvalidDimension, fmt.Sprintf("%dx%d at %d of dimension %d", op.Rows(), op.Cols(), pos, f.dim))
	}

	dst.Scalar(1)
	for i, fi := range s.factors {
		switch i {
		case pos:
			dst.Kron(op)
		default:
			dst.Kron(mat.COOIdentity(fi.dim))
		}
	}
	return nil
}
