/*
 * mol2.go, part of genrtp
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

// Package mol2 reads and writes Tripos mol2 files, and provides
// a bond-based adjacency index for the molecules read.
package mol2

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// The residue name and number every atom gets when written.
const (
	ResName = "MOL"
	ResID   = 1
)

// Atom contains the information of one mol2 atom, except for the coordinates, which
// are kept in the Coords matrix of the Molecule.
type Atom struct {
	ID        int //1-based, the atoms in a Molecule are numbered 1..N
	Name      string
	Type      string //Sybyl type, i.e. "C.3"
	Element   string //the part of Type before the first dot
	SubstID   int
	SubstName string
	Charge    float64
}

// IsHydrogen returns true if the atom's element is H
func (A *Atom) IsHydrogen() bool {
	return A.Element == "H"
}

// Copy returns a copy of the atom
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	r := *A
	return &r
}

// elementFromType returns the element part of a Sybyl atom type.
func elementFromType(t string) string {
	return strings.SplitN(t, ".", 2)[0]
}

// Bond is a bond between the atoms with IDs At1 and At2.
type Bond struct {
	ID   int
	At1  int
	At2  int
	Type string //"1", "2", "ar", "am"...
}

// Cross returns the ID of the atom at the other side of the bond from
// the atom with ID origin. It panics if origin is not part of the bond.
func (B *Bond) Cross(origin int) int {
	if origin == B.At1 {
		return B.At2
	}
	if origin == B.At2 {
		return B.At1
	}
	panic(fmt.Sprintf("Trying to cross bond %d: atom %d is not present in the bond", B.ID, origin))
}

// Molecule is the content of a mol2 file.
type Molecule struct {
	Name       string
	MolType    string //SMALL, BIOPOLYMER...
	ChargeType string //USER_CHARGES, GASTEIGER...
	Atoms      []*Atom
	Bonds      []*Bond
	Coords     *mat.Dense //Len()x3, row i contains the coordinates of the atom with ID i+1
}

// Len returns the number of atoms in the molecule.
func (M *Molecule) Len() int {
	return len(M.Atoms)
}

// Atom returns the atom with ID id, or nil if there is no such atom.
func (M *Molecule) Atom(id int) *Atom {
	if id < 1 || id > len(M.Atoms) {
		return nil
	}
	return M.Atoms[id-1]
}

// Coord returns the coordinates of the atom with ID id. It panics
// if id is out of range.
func (M *Molecule) Coord(id int) [3]float64 {
	if id < 1 || id > len(M.Atoms) {
		panic(fmt.Sprintf("Requested coordinate (%d) out of bounds (%d)", id, len(M.Atoms)))
	}
	return [3]float64{M.Coords.At(id-1, 0), M.Coords.At(id-1, 1), M.Coords.At(id-1, 2)}
}

// Copy returns a deep copy of the molecule.
func (M *Molecule) Copy() *Molecule {
	r := &Molecule{Name: M.Name, MolType: M.MolType, ChargeType: M.ChargeType}
	r.Atoms = make([]*Atom, 0, len(M.Atoms))
	for _, a := range M.Atoms {
		r.Atoms = append(r.Atoms, a.Copy())
	}
	r.Bonds = make([]*Bond, 0, len(M.Bonds))
	for _, b := range M.Bonds {
		nb := *b
		r.Bonds = append(r.Bonds, &nb)
	}
	if M.Coords != nil {
		r.Coords = mat.DenseCopyOf(M.Coords)
	}
	return r
}

// Names returns the atom names, in ID order.
func (M *Molecule) Names() []string {
	ret := make([]string, 0, len(M.Atoms))
	for _, a := range M.Atoms {
		ret = append(ret, a.Name)
	}
	return ret
}
