/*
 * top.go, part of genrtp
 *
 *
 * Copyright 2024 Raul Mera  <rmeraa{at}academicos(dot)uta(dot)cl>
 *
 *
 *  This program is free software; you can redistribute it and/or modify
 *  it under the terms of the GNU Lesser General Public License as published by
 *  the Free Software Foundation; either version 3 of the License, or
 *  (at your option) any later version.
 *
 *  This program is distributed in the hope that it will be useful,
 *  but WITHOUT ANY WARRANTY; without even the implied warranty of
 *  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 *  GNU General Public License for more details.
 *
 *  You should have received a copy of the GNU General Public License along
 *  with this program; if not, write to the Free Software Foundation, Inc.,
 *  51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 *
 *
 */

package top

import (
	"fmt"

	"github.com/rmera/genrtp"
	"github.com/rmera/genrtp/mol2"
)

// Coef is a numeric field that may or may not be present in a topology line.
type Coef struct {
	Value float64
	Valid bool
}

// Some returns a present Coef with value v.
func Some(v float64) Coef {
	return Coef{Value: v, Valid: true}
}

// Format returns the value formatted with the verb format, or an
// empty string if the Coef is not present.
func (C Coef) Format(format string) string {
	if !C.Valid {
		return ""
	}
	return fmt.Sprintf(format, C.Value)
}

// Atom is a line of the [ atoms ] section.
type Atom struct {
	Nr      int
	Type    string
	ResNr   int
	ResName string
	Name    string
	CgNr    int
	Charge  float64
	Mass    Coef
	Line    int //line in the topology file, 0 if unknown
}

// AtomType is a line of the [ atomtypes ] section.
// Sigma and Epsilon are given as in the file, they could well be C6 and C12.
type AtomType struct {
	Name    string
	Mass    float64
	Charge  float64
	Ptype   string
	Sigma   float64
	Epsilon float64
}

// Term is a bonded term: bond, pair, constraint, angle or dihedral.
// IDs are the Nr of the participating atoms, in order.
type Term struct {
	IDs   []int
	Funct int
	C0    Coef
	C1    Coef
	C2    Coef
	Line  int
}

// Coefs returns the three coefficients of the term.
func (T *Term) Coefs() [3]Coef {
	return [3]Coef{T.C0, T.C1, T.C2}
}

// Has returns true if the atom with Nr nr is part of the term
func (T *Term) Has(nr int) bool {
	for _, v := range T.IDs {
		if v == nr {
			return true
		}
	}
	return false
}

// Topology is the content of a Gromacs itp file with one molecule type.
type Topology struct {
	Name        string
	NrExcl      int
	AtomTypes   []*AtomType
	Atoms       []*Atom
	Bonds       []*Term
	Pairs       []*Term
	Constraints []*Term
	Angles      []*Term
	Dihedrals   []*Term
	Exclusions  [][]int
	index       map[int]int //atom Nr to position in Atoms
}

// Len returns the number of atoms in the topology
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// AtomByNr returns the atom with the given Nr, or nil if there is none.
func (T *Topology) AtomByNr(nr int) *Atom {
	if T.index == nil {
		T.reindex()
	}
	i, ok := T.index[nr]
	if !ok {
		return nil
	}
	return T.Atoms[i]
}

func (T *Topology) reindex() {
	T.index = make(map[int]int, len(T.Atoms))
	for i, v := range T.Atoms {
		T.index[v.Nr] = i
	}
}

// addAtom adds a to the topology. It returns false if there is already
// an atom with the same Nr.
func (T *Topology) addAtom(a *Atom) bool {
	if T.AtomByNr(a.Nr) != nil {
		return false
	}
	T.Atoms = append(T.Atoms, a)
	T.index[a.Nr] = len(T.Atoms) - 1
	return true
}

// NameOf returns the name of the atom with Nr nr, or an empty string.
func (T *Topology) NameOf(nr int) string {
	a := T.AtomByNr(nr)
	if a == nil {
		return ""
	}
	return a.Name
}

// AdoptNames sets the name of each atom in the topology to that of the atom
// with the same ID in m. The topology and the molecule must have the same number
// of atoms, and every topology Nr must correspond to an atom in m.
func (T *Topology) AdoptNames(m *mol2.Molecule) error {
	if T.Len() != m.Len() {
		return genrtp.Errorf(genrtp.ReferenceError, "the topology has %d atoms but the structure has %d", T.Len(), m.Len())
	}
	for _, a := range T.Atoms {
		ma := m.Atom(a.Nr)
		if ma == nil {
			return genrtp.Errorf(genrtp.ReferenceError, "topology atom %d (%s) has no counterpart in the structure", a.Nr, a.Name).At("atoms", a.Line)
		}
		a.Name = ma.Name
	}
	return nil
}
