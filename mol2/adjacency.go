/*
 * adjacency.go, part of genrtp
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

// Adjacency is a neighbor index built from the bonds of a molecule.
// Neighbors are kept in the order in which the bonds appear in the
// molecule, which is the order later used to number hydrogens.
// Rings need no special treatment, as only one-bond lookups are done.
// The index is not modified after NewAdjacency returns.
type Adjacency struct {
	mol *Molecule
	nb  [][]int //nb[id] are the neighbors of the atom with that ID, nb[0] is unused
}

// NewAdjacency builds the adjacency index for M. A bond that is repeated
// in M is only counted once.
func NewAdjacency(M *Molecule) *Adjacency {
	A := &Adjacency{mol: M, nb: make([][]int, M.Len()+1)}
	seen := make(map[[2]int]bool, len(M.Bonds))
	for _, b := range M.Bonds {
		key := [2]int{b.At1, b.At2}
		if b.At2 < b.At1 {
			key = [2]int{b.At2, b.At1}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		A.nb[b.At1] = append(A.nb[b.At1], b.At2)
		A.nb[b.At2] = append(A.nb[b.At2], b.At1)
	}
	return A
}

// Molecule returns the molecule the index was built for.
func (A *Adjacency) Molecule() *Molecule {
	return A.mol
}

// Adjacent returns the IDs of all atoms bonded to the atom with ID id.
// The returned slice must not be modified.
func (A *Adjacency) Adjacent(id int) []int {
	if id < 1 || id >= len(A.nb) {
		return nil
	}
	return A.nb[id]
}

// Degree returns the number of atoms bonded to the atom with ID id.
func (A *Adjacency) Degree(id int) int {
	return len(A.Adjacent(id))
}

func (A *Adjacency) filter(id int, hydrogen bool) []int {
	adj := A.Adjacent(id)
	ret := make([]int, 0, len(adj))
	for _, v := range adj {
		if A.mol.Atom(v).IsHydrogen() == hydrogen {
			ret = append(ret, v)
		}
	}
	return ret
}

// Hydrogens returns the IDs of the hydrogens bonded to the atom with ID id.
func (A *Adjacency) Hydrogens(id int) []int {
	return A.filter(id, true)
}

// Heavy returns the IDs of the non-hydrogen atoms bonded to the atom with ID id.
func (A *Adjacency) Heavy(id int) []int {
	return A.filter(id, false)
}
