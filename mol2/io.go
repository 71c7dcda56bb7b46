/*
 * io.go, part of genrtp
 *
 * Copyright 2025 Raul Mera A. (rmeraaatacademicosdotutadotcl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package mol2

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rmera/genrtp"
	"gonum.org/v1/gonum/mat"
)

// the sections of a mol2 file we care about.
type section int

const (
	secNone section = iota
	secMolecule
	secAtom
	secBond
	secOther
)

func (s section) String() string {
	switch s {
	case secMolecule:
		return "MOLECULE"
	case secAtom:
		return "ATOM"
	case secBond:
		return "BOND"
	case secOther:
		return "other"
	}
	return ""
}

const tripos = "@<TRIPOS>"

// header returns the section started by line, and true, if line is a
// section header. Otherwise it returns cur and false.
func header(cur section, line string) (section, bool) {
	if !strings.HasPrefix(line, tripos) {
		return cur, false
	}
	switch strings.ToUpper(strings.TrimSpace(line[len(tripos):])) {
	case "MOLECULE":
		return secMolecule, true
	case "ATOM":
		return secAtom, true
	case "BOND":
		return secBond, true
	}
	return secOther, true
}

// reader accumulates the data in a mol2 file. The section being read is not kept
// here, it is passed to, and returned from, each call to line.
type reader struct {
	mol      *Molecule
	natoms   int
	nbonds   int
	counts   bool
	molLine  int //lines read in the MOLECULE section
	atoms    []*Atom
	coords   [][3]float64
	bonds    []*Bond
	molecule bool
	done     bool //a second molecule started, nothing else is read
}

func ferr(sec section, line int, format string, args ...interface{}) error {
	return genrtp.Errorf(genrtp.FormatError, format, args...).At(sec.String(), line)
}

// line processes the line s (the numberth in the file) given that we
// are in the section sec. It returns the section that the next line will
// belong to.
func (R *reader) line(sec section, s string, number int) (section, error) {
	s = strings.TrimSpace(s)
	if s == "" && sec == secMolecule && !R.done {
		//the MOLECULE lines go by position, and the name can be empty.
		return sec, R.moleculeLine(s, nil, number)
	}
	if R.done || s == "" || strings.HasPrefix(s, "#") {
		return sec, nil
	}
	if next, ok := header(sec, s); ok {
		if next == secMolecule {
			if R.molecule {
				//only the first molecule in the file is read.
				R.done = true
				return secOther, nil
			}
			R.molecule = true
		}
		return next, nil
	}
	f := strings.Fields(s)
	switch sec {
	case secNone:
		//some programs write banners before the first header.
		return sec, nil
	case secMolecule:
		return sec, R.moleculeLine(s, f, number)
	case secAtom:
		at, c, err := atomFromFields(f)
		if err != nil {
			return sec, ferr(sec, number, "%s", err.Error())
		}
		R.atoms = append(R.atoms, at)
		R.coords = append(R.coords, c)
	case secBond:
		b, err := bondFromFields(f)
		if err != nil {
			return sec, ferr(sec, number, "%s", err.Error())
		}
		R.bonds = append(R.bonds, b)
	}
	return sec, nil
}

func (R *reader) moleculeLine(s string, f []string, number int) error {
	switch R.molLine {
	case 0:
		R.mol.Name = s
	case 1:
		if len(f) < 2 {
			return ferr(secMolecule, number, "atom and bond numbers expected, got %q", s)
		}
		var err error
		R.natoms, err = strconv.Atoi(f[0])
		if err != nil {
			return ferr(secMolecule, number, "can't read the number of atoms: %w", err)
		}
		R.nbonds, err = strconv.Atoi(f[1])
		if err != nil {
			return ferr(secMolecule, number, "can't read the number of bonds: %w", err)
		}
		if R.natoms <= 0 {
			return ferr(secMolecule, number, "the number of atoms is %d", R.natoms)
		}
		R.counts = true
	case 2:
		R.mol.MolType = s
	case 3:
		R.mol.ChargeType = s
	}
	R.molLine++
	return nil
}

func atomFromFields(f []string) (*Atom, [3]float64, error) {
	var c [3]float64
	var err error
	if len(f) < 6 {
		return nil, c, fmt.Errorf("atom line needs at least 6 fields, got %d", len(f))
	}
	at := new(Atom)
	at.ID, err = strconv.Atoi(f[0])
	if err != nil {
		return nil, c, fmt.Errorf("can't read atom id %q: %w", f[0], err)
	}
	at.Name = f[1]
	for i := range c {
		c[i], err = strconv.ParseFloat(f[2+i], 64)
		if err != nil {
			return nil, c, fmt.Errorf("can't read coordinate %q of atom %d: %w", f[2+i], at.ID, err)
		}
	}
	at.Type = f[5]
	at.Element = elementFromType(at.Type)
	at.SubstID = ResID
	at.SubstName = ResName
	if len(f) > 6 {
		if at.SubstID, err = strconv.Atoi(f[6]); err != nil {
			return nil, c, fmt.Errorf("can't read substructure id %q of atom %d: %w", f[6], at.ID, err)
		}
	}
	if len(f) > 7 {
		at.SubstName = f[7]
	}
	if len(f) > 8 {
		if at.Charge, err = strconv.ParseFloat(f[8], 64); err != nil {
			return nil, c, fmt.Errorf("can't read charge %q of atom %d: %w", f[8], at.ID, err)
		}
	}
	return at, c, nil
}

func bondFromFields(f []string) (*Bond, error) {
	if len(f) < 4 {
		return nil, fmt.Errorf("bond line needs 4 fields, got %d", len(f))
	}
	ints := make([]int, 3)
	for i := range ints {
		var err error
		ints[i], err = strconv.Atoi(f[i])
		if err != nil {
			return nil, fmt.Errorf("can't read bond field %q: %w", f[i], err)
		}
	}
	return &Bond{ID: ints[0], At1: ints[1], At2: ints[2], Type: f[3]}, nil
}

// finish checks the consistency of the data read and builds the molecule.
func (R *reader) finish() (*Molecule, error) {
	if !R.molecule || !R.counts {
		return nil, genrtp.Errorf(genrtp.FormatError, "no %sMOLECULE section with atom and bond numbers found", tripos)
	}
	if len(R.atoms) != R.natoms {
		return nil, genrtp.Errorf(genrtp.FormatError, "the header declares %d atoms but %d were read", R.natoms, len(R.atoms)).At(secAtom.String(), 0)
	}
	if len(R.bonds) != R.nbonds {
		return nil, genrtp.Errorf(genrtp.FormatError, "the header declares %d bonds but %d were read", R.nbonds, len(R.bonds)).At(secBond.String(), 0)
	}
	M := R.mol
	M.Atoms = make([]*Atom, R.natoms)
	M.Coords = mat.NewDense(R.natoms, 3, nil)
	for i, a := range R.atoms {
		if a.ID < 1 || a.ID > R.natoms {
			return nil, genrtp.Errorf(genrtp.FormatError, "atom id %d out of the range 1-%d", a.ID, R.natoms).At(secAtom.String(), 0)
		}
		if M.Atoms[a.ID-1] != nil {
			return nil, genrtp.Errorf(genrtp.FormatError, "atom id %d repeated", a.ID).At(secAtom.String(), 0)
		}
		M.Atoms[a.ID-1] = a
		M.Coords.SetRow(a.ID-1, R.coords[i][:])
	}
	for _, b := range R.bonds {
		if b.At1 < 1 || b.At1 > R.natoms || b.At2 < 1 || b.At2 > R.natoms {
			return nil, genrtp.Errorf(genrtp.FormatError, "bond %d (%d-%d) refers to an atom out of the range 1-%d", b.ID, b.At1, b.At2, R.natoms).At(secBond.String(), 0)
		}
		if b.At1 == b.At2 {
			return nil, genrtp.Errorf(genrtp.FormatError, "bond %d joins atom %d with itself", b.ID, b.At1).At(secBond.String(), 0)
		}
	}
	M.Bonds = R.bonds
	return M, nil
}

// Read reads the first molecule in a mol2 file from r.
func Read(r io.Reader) (*Molecule, error) {
	R := &reader{mol: new(Molecule)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sec := secNone
	var err error
	for n := 1; sc.Scan(); n++ {
		sec, err = R.line(sec, sc.Text(), n)
		if err != nil {
			return nil, genrtp.Decorate(err, "mol2.Read")
		}
	}
	if err = sc.Err(); err != nil {
		return nil, err
	}
	M, err := R.finish()
	return M, genrtp.Decorate(err, "mol2.Read")
}

// Write writes M in mol2 format to w. All atoms are assigned the residue
// ResName, with number ResID.
func Write(w io.Writer, M *Molecule) error {
	b := bufio.NewWriter(w)
	moltype := M.MolType
	if moltype == "" {
		moltype = "SMALL"
	}
	chtype := M.ChargeType
	if chtype == "" {
		chtype = "USER_CHARGES"
	}
	fmt.Fprintf(b, "# Created by genrtp\n\n")
	fmt.Fprintf(b, "%sMOLECULE\n%s\n%5d%6d     1 0 0\n%s\n%s\n\n", tripos, M.Name, M.Len(), len(M.Bonds), moltype, chtype)
	fmt.Fprintf(b, "%sATOM\n", tripos)
	for _, a := range M.Atoms {
		c := M.Coord(a.ID)
		fmt.Fprintf(b, "%7d %-10s%12.4f%12.4f%12.4f %-7s%3d %-9s%8.4f\n", a.ID, a.Name, c[0], c[1], c[2], a.Type, ResID, ResName, a.Charge)
	}
	fmt.Fprintf(b, "%sBOND\n", tripos)
	for _, bo := range M.Bonds {
		fmt.Fprintf(b, "%6d%5d%5d %s\n", bo.ID, bo.At1, bo.At2, bo.Type)
	}
	return b.Flush()
}
