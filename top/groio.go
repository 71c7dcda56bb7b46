package top

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rmera/genrtp"
)

// ReadOptions controls the reading of a topology.
type ReadOptions struct {
	//The preprocessor symbols considered defined for #ifdef/#ifndef blocks.
	Defines []string
}

// number of fields that must be present in a data line of each section.
var mandatory = map[section]int{
	secAtomTypes:    6,
	secMoleculeType: 2,
	secAtoms:        7,
	secBonds:        3,
	secPairs:        3,
	secConstraints:  3,
	secAngles:       4,
	secDihedrals:    5,
	secExclusions:   1,
}

// number of atoms in each kind of bonded term.
var termAtoms = map[section]int{
	secBonds:       2,
	secPairs:       2,
	secConstraints: 2,
	secAngles:      3,
	secDihedrals:   4,
}

// reader keeps what has been read so far from a topology. The current section is
// not kept here, it is passed to, and returned from, each call to line.
type reader struct {
	top   *Topology
	h     *topHeader
	cond  *cond
	mol   bool //a moleculetype line was read
	types map[string]bool
}

func newReader(opts ReadOptions) *reader {
	return &reader{
		top:   &Topology{index: make(map[int]int)},
		h:     newTopHeader(),
		cond:  newCond(opts.Defines),
		types: make(map[string]bool),
	}
}

func ferr(sec section, line int, format string, args ...interface{}) error {
	return genrtp.Errorf(genrtp.FormatError, format, args...).At(sec.String(), line)
}

// line processes the numberth line s in the file, given that we are in
// section sec. It returns the section the next line will belong to.
func (R *reader) line(sec section, s string, number int) (section, error) {
	s = cleanString(s)
	if s == "" {
		return sec, nil
	}
	read, ok := R.cond.read(s)
	if !ok {
		return sec, ferr(sec, number, "%q without a matching #ifdef/#ifndef", s)
	}
	if !read {
		return sec, nil
	}
	if name, next, ok := R.h.Which(s); ok {
		if next == secNone {
			return sec, ferr(sec, number, "unknown section [ %s ]", name)
		}
		return next, nil
	}
	if sec == secNone {
		return sec, ferr(sec, number, "data found before any section header: %q", s)
	}
	if sec == secSkip {
		return sec, nil
	}
	f := fi(s)
	if len(f) < mandatory[sec] {
		return sec, ferr(sec, number, "at least %d fields expected, got %d: %q", mandatory[sec], len(f), s)
	}
	var err error
	switch sec {
	case secAtomTypes:
		err = R.atomType(f)
	case secMoleculeType:
		err = R.moleculeType(f)
	case secAtoms:
		err = R.atom(f, number)
	case secExclusions:
		err = R.exclusion(f)
	default:
		var T *Term
		T, err = termFromFields(f, termAtoms[sec], number)
		if err == nil {
			err = R.checkRefs(T.IDs)
		}
		if err == nil {
			R.addTerm(sec, T)
		}
	}
	if err != nil {
		var e *genrtp.Error
		if !errors.As(err, &e) {
			e = genrtp.Errorf(genrtp.FormatError, "%w", err)
		}
		return sec, e.At(sec.String(), number)
	}
	return sec, nil
}

// atomtypes lines are read from the right, as the number of leading
// fields (bonded type, atomic number) varies among force fields.
func (R *reader) atomType(f []string) error {
	l := len(f)
	fl, err := parsefloats(f[l-5], f[l-4], f[l-2], f[l-1])
	if err != nil {
		return err
	}
	if R.types[f[0]] {
		return nil
	}
	R.types[f[0]] = true
	R.top.AtomTypes = append(R.top.AtomTypes, &AtomType{
		Name:    f[0],
		Mass:    fl[0],
		Charge:  fl[1],
		Ptype:   f[l-3],
		Sigma:   fl[2],
		Epsilon: fl[3],
	})
	return nil
}

func (R *reader) moleculeType(f []string) error {
	if R.mol {
		return fmt.Errorf("only one molecule type per topology is supported, found a second one: %s", f[0])
	}
	n, err := strconv.Atoi(f[1])
	if err != nil {
		return err
	}
	R.mol = true
	R.top.Name = f[0]
	R.top.NrExcl = n
	return nil
}

func (R *reader) atom(f []string, number int) error {
	var err error
	a := &Atom{Type: f[1], ResName: f[3], Name: f[4], Line: number}
	ints, err := parseints(f[0], f[2], f[5])
	if err != nil {
		return err
	}
	a.Nr, a.ResNr, a.CgNr = ints[0], ints[1], ints[2]
	if a.Charge, err = strconv.ParseFloat(f[6], 64); err != nil {
		return err
	}
	if len(f) > 7 {
		m, err := strconv.ParseFloat(f[7], 64)
		if err != nil {
			return err
		}
		a.Mass = Some(m)
	}
	if a.Nr < 1 {
		return fmt.Errorf("atom number %d is not positive", a.Nr)
	}
	if !R.top.addAtom(a) {
		return fmt.Errorf("atom number %d repeated", a.Nr)
	}
	return nil
}

func (R *reader) exclusion(f []string) error {
	ex, err := parseints(f...)
	if err != nil {
		return err
	}
	if err = R.checkRefs(ex); err != nil {
		return err
	}
	R.top.Exclusions = append(R.top.Exclusions, ex)
	return nil
}

// checkRefs returns a ReferenceError if any of ids is not the
// number of an atom already read.
func (R *reader) checkRefs(ids []int) error {
	for _, v := range ids {
		if R.top.AtomByNr(v) == nil {
			return genrtp.Errorf(genrtp.ReferenceError, "atom %d is not declared in [ atoms ]", v)
		}
	}
	return nil
}

func (R *reader) addTerm(sec section, T *Term) {
	t := R.top
	switch sec {
	case secBonds:
		t.Bonds = append(t.Bonds, T)
	case secPairs:
		t.Pairs = append(t.Pairs, T)
	case secConstraints:
		t.Constraints = append(t.Constraints, T)
	case secAngles:
		t.Angles = append(t.Angles, T)
	case secDihedrals:
		t.Dihedrals = append(t.Dihedrals, T)
	}
}

// termFromFields returns a term with ats atoms from the fields f of
// a topology line: atom1 ... atom(ats) functype [c0 [c1 [c2 ...]]]
// Only the first three coefficients are kept, so wide terms, such as
// Ryckaert-Bellemans dihedrals, are truncated.
func termFromFields(f []string, ats, number int) (*Term, error) {
	ids, err := parseints(f[:ats]...)
	if err != nil {
		return nil, err
	}
	T := &Term{IDs: ids, Line: number}
	if T.Funct, err = strconv.Atoi(f[ats]); err != nil {
		return nil, err
	}
	coefs := f[ats+1:]
	if len(coefs) > 3 {
		coefs = coefs[:3]
	}
	c, err := parsefloats(coefs...)
	if err != nil {
		return nil, err
	}
	targets := []*Coef{&T.C0, &T.C1, &T.C2}
	for i, v := range c {
		*targets[i] = Some(v)
	}
	return T, nil
}

// Read reads a Gromacs topology with one molecule type from r.
func Read(r io.Reader, opts ReadOptions) (*Topology, error) {
	R := newReader(opts)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sec := secNone
	var err error
	n := 0
	for sc.Scan() {
		n++
		sec, err = R.line(sec, sc.Text(), n)
		if err != nil {
			return nil, genrtp.Decorate(err, "top.Read")
		}
	}
	if err = sc.Err(); err != nil {
		return nil, err
	}
	if R.cond.open() {
		return nil, genrtp.Decorate(ferr(sec, n, "unterminated #ifdef/#ifndef block"), "top.Read")
	}
	if R.top.Len() == 0 {
		return nil, genrtp.Decorate(genrtp.Errorf(genrtp.FormatError, "no atoms found in the topology"), "top.Read")
	}
	return R.top, nil
}

//The writing functions

type groer interface {
	ToGro() (string, error)
}

func printGro[G ~[]E, E groer](w io.StringWriter, g G) error {
	for _, v := range g {
		m, e := v.ToGro()
		if e != nil {
			return e
		}
		_, e = w.WriteString(m)
		if e != nil {
			return e
		}
	}
	return nil
}

type exclusion []int

func (e exclusion) ToGro() (string, error) {
	ret := make([]string, 0, len(e))
	for _, v := range e {
		ret = append(ret, fmt.Sprintf("%6d", v))
	}
	return strings.Join(ret, "") + "\n", nil
}

// ToGro returns the atom as a line in an [ atoms ] section.
func (A *Atom) ToGro() (string, error) {
	return fmt.Sprintf("%6d %10s %6d %6s %6s %6d %10.6f %s\n", A.Nr, A.Type, A.ResNr, A.ResName, A.Name, A.CgNr, A.Charge, A.Mass.Format("%10.5f")), nil
}

// ToGro returns the atom type as a line in an [ atomtypes ] section.
func (A *AtomType) ToGro() (string, error) {
	return fmt.Sprintf("%-8s %10.4f %10.6f %3s %14.6e %14.6e\n", A.Name, A.Mass, A.Charge, A.Ptype, A.Sigma, A.Epsilon), nil
}

// ToGro returns the term as a line in a bonded section.
func (T *Term) ToGro() (string, error) {
	var b strings.Builder
	for _, v := range T.IDs {
		fmt.Fprintf(&b, "%6d", v)
	}
	fmt.Fprintf(&b, "%6d", T.Funct)
	for _, c := range T.Coefs() {
		if c.Valid {
			b.WriteString(" " + c.Format("%13.6e"))
		}
	}
	b.WriteString("\n")
	return b.String(), nil
}

// WriteITP writes the topology in itp format to w. Dihedrals with
// function 4 or 2 are written in a separate block after the rest.
func (T *Topology) WriteITP(w io.Writer) (err error) {
	var proper, improper, improper2 []*Term
	for _, v := range T.Dihedrals {
		switch v.Funct {
		case 4:
			improper = append(improper, v)
		case 2:
			improper2 = append(improper2, v)
		default:
			proper = append(proper, v)
		}
	}
	improper = append(improper, improper2...)
	b := bufio.NewWriter(w)
	sections := []struct {
		name  string
		terms []*Term
	}{
		{"bonds", T.Bonds},
		{"pairs", T.Pairs},
		{"constraints", T.Constraints},
		{"angles", T.Angles},
		{"dihedrals", proper},
		{"dihedrals", improper},
	}
	if len(T.AtomTypes) > 0 {
		b.WriteString("[ atomtypes ]\n")
		if err = printGro(b, T.AtomTypes); err != nil {
			return err
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "[ moleculetype ]\n; name  nrexcl\n%s %d\n\n", T.Name, T.NrExcl)
	b.WriteString("[ atoms ]\n")
	if err = printGro(b, T.Atoms); err != nil {
		return err
	}
	for _, s := range sections {
		if len(s.terms) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n[ %s ]\n", s.name)
		if err = printGro(b, s.terms); err != nil {
			return err
		}
	}
	if len(T.Exclusions) > 0 {
		b.WriteString("\n[ exclusions ]\n")
		for _, v := range T.Exclusions {
			s, _ := exclusion(v).ToGro()
			b.WriteString(s)
		}
	}
	return b.Flush()
}
