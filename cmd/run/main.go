// Command run builds a two-qubit, one-cavity space, lifts a Jaynes-Cummings
// style coupling into it, partial-traces the cavity out of a product density
// operator, and writes the reduced operator together with its spectrum.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/fumin/qspace"
	"github.com/fumin/qspace/mat"
	"github.com/fumin/qspace/system"
)

const (
	fnameEigen = "eig.csv"
)

var (
	runDir = flag.String("d", filepath.Join("runs", "qspace"), "run directory")
	alpha  = flag.Float64("alpha", 1, "cavity coherent state amplitude")
	g      = flag.Float64("g", 0.1, "qubit-cavity coupling strength")
)

func buildSpace(cutoff int) (*qspace.Space, error) {
	qa, err := system.Qubit("A")
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	qb, err := system.Qubit("B")
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	cavity, err := system.Oscillator("c", cutoff)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	return qspace.Kron(qspace.NewSpace(qa), qspace.NewSpace(qb), qspace.NewSpace(cavity)), nil
}

// hamiltonian assembles H = n_c + g (s+ a + s- ad) for both qubits from the
// joint operator catalogue, building into h so that larger spaces can target
// a disk backed matrix.
func hamiltonian(h mat.Matrix, s *qspace.Space, g float32) error {
	h.Zeros(s.Len(), s.Len())

	terms := []struct {
		c  complex64
		op string
	}{
		{c: 1, op: "iin"},
		{c: complex(g, 0), op: "pia"},
		{c: complex(g, 0), op: "miad"},
		{c: complex(g, 0), op: "ipa"},
		{c: complex(g, 0), op: "imad"},
	}
	for _, term := range terms {
		op, err := s.Op(term.op)
		if err != nil {
			return errors.Wrap(err, "")
		}
		h.Add(term.c, op)
	}
	return nil
}

func writeEig(dir string, vvs []mat.ValVec) error {
	fpath := filepath.Join(dir, fnameEigen)
	f, err := os.Create(fpath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	row := make([]string, len(vvs))
	for j, vv := range vvs {
		row[j] = strconv.FormatComplex(vv.Val, 'f', -1, 128)
	}
	if err1 := w.Write(row); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	for i := range len(vvs[0].Vec) {
		for j, vv := range vvs {
			row[j] = strconv.FormatComplex(vv.Vec[i], 'f', -1, 128)
		}
		if err1 := w.Write(row); err1 != nil && err == nil {
			err = errors.Wrap(err1, "")
			break
		}
	}

	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	if err := os.MkdirAll(*runDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	// Keep enough cavity levels above the coherent state's mean photon
	// number for the truncation to be faithful.
	cutoff := int(system.Displacement(complex(float32(*alpha), 0))) + 8
	s, err := buildSpace(cutoff)
	if err != nil {
		return errors.Wrap(err, "")
	}
	log.Printf("%s", s)

	h := mat.COOZeros(s.Len(), s.Len())
	if err := hamiltonian(h, s, float32(*g)); err != nil {
		return errors.Wrap(err, "")
	}
	log.Printf("hamiltonian corner\n%s", h.Slice([2]int{0, 4}, [2]int{0, 4}))
	vvs := h.Eigen()
	if err := writeEig(*runDir, vvs); err != nil {
		return errors.Wrap(err, "")
	}
	log.Printf("ground energy %f", real(vvs[0].Val))

	// Density operator of |0> ⊗ |1> ⊗ |alpha>.
	factors := s.Factors()
	k0, err := factors[0].Ket(0)
	if err != nil {
		return errors.Wrap(err, "")
	}
	k1, err := factors[1].Ket(1)
	if err != nil {
		return errors.Wrap(err, "")
	}
	kc := system.CoherentKet(factors[2], complex(float32(*alpha), 0))
	psi := mat.M([][]complex64{{1}})
	psi.Kron(k0)
	psi.Kron(k1)
	psi.Kron(kc)
	rho := mat.Outer(psi, psi)

	// Trace the cavity out, then qubit A, writing each reduction.
	total := rho.Trace()
	space, reduced := s, rho
	for _, pos := range []int{2, 0} {
		space, reduced, err = qspace.PtraceMat(space, pos, reduced)
		if err != nil {
			return errors.Wrap(err, "")
		}

		dir := filepath.Join(*runDir, space.Name())
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return errors.Wrap(err, "")
		}
		if err := reduced.WriteCOO(dir); err != nil {
			return errors.Wrap(err, "")
		}
		log.Printf("%s trace %f", space.Name(), real(reduced.Trace()))
	}
	if math.Abs(float64(real(reduced.Trace()-total))) > 1e-3 {
		return errors.Errorf("%f %f", reduced.Trace(), total)
	}

	fmt.Printf("reduced density operator of qubit B:\n%s\n", reduced)
	return nil
}
