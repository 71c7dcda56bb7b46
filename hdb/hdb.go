/*
 * hdb.go, part of genrtp
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

// Package hdb classifies the hydrogens of a molecule by the connectivity of the
// heavy atoms that carry them, names them accordingly, and writes the
// hydrogen database records pdb2gmx uses to rebuild them.
package hdb

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rmera/genrtp"
	"github.com/rmera/genrtp/mol2"
	"go.uber.org/zap"
)

// Pattern is the way hydrogens are placed around a heavy atom.
// The zero value means the heavy atom couldn't be classified.
type Pattern int

const (
	Unclassified Pattern = iota
	Planar               //one H on an atom with 3 neighbors (rings, amides)
	Single               //one H on an atom with 2 neighbors (hydroxyl)
	PlanarPair           //two H on an atom with 3 neighbors
	Methyl
	Tetrahedral //one H on an atom with 4 neighbors
	Methylene
)

// degree and number of hydrogens for each pattern.
var table = map[[2]int]Pattern{
	{3, 1}: Planar,
	{2, 1}: Single,
	{3, 2}: PlanarPair,
	{4, 3}: Methyl,
	{4, 1}: Tetrahedral,
	{4, 2}: Methylene,
}

// Classify returns the pattern for a heavy atom with the given degree
// (total number of bonded atoms) and number of bonded hydrogens.
func Classify(degree, nH int) Pattern {
	return table[[2]int{degree, nH}]
}

// Multiplicity returns the number of hydrogens placed with the pattern.
func (P Pattern) Multiplicity() int {
	switch P {
	case Planar, Single, Tetrahedral:
		return 1
	case PlanarPair, Methylene:
		return 2
	case Methyl:
		return 3
	}
	return 0
}

// BaseName returns the name for the hydrogens bonded to heavy: "H" followed
// by the name of heavy without its element symbol. The symbol is matched
// regardless of case. A name that doesn't start with the symbol is used whole.
func BaseName(heavy *mol2.Atom) string {
	name := heavy.Name
	if len(name) >= len(heavy.Element) && strings.EqualFold(name[:len(heavy.Element)], heavy.Element) {
		name = name[len(heavy.Element):]
	}
	return "H" + name
}

// names returns the n names for the hydrogens of an atom with the given base name.
func names(base string, n int) []string {
	if n == 1 {
		return []string{base}
	}
	ret := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		ret = append(ret, fmt.Sprintf("%s%d", base, i))
	}
	return ret
}

// RenameHydrogens names the hydrogens of m after the heavy atoms they are bonded to.
// If a heavy atom has only one hydrogen, it gets the base name. Otherwise, the hydrogens
// get the base name followed by their 1-based position among the hydrogens of the heavy atom.
// Each hydrogen is named only once, after the first of its heavy neighbors, in ID order.
// It returns the number of hydrogens named.
func RenameHydrogens(m *mol2.Molecule, adj *mol2.Adjacency) int {
	//the heavy atoms are not renamed here, so the base names don't change as we go.
	done := make(map[int]bool)
	for _, a := range m.Atoms {
		if a.IsHydrogen() {
			continue
		}
		hs := adj.Hydrogens(a.ID)
		if len(hs) == 0 {
			continue
		}
		n := names(BaseName(a), len(hs))
		for i, h := range hs {
			if done[h] {
				continue
			}
			m.Atom(h).Name = n[i]
			done[h] = true
		}
	}
	return len(done)
}

// Record is a line in a hydrogen database.
type Record struct {
	Multiplicity int
	Pattern      Pattern
	HName        string
	Support      []string //names of the atoms used to place the hydrogens
}

// Options for Build
type Options struct {
	//Atoms for which Excluded returns true get no record. If nil, no atom is excluded.
	Excluded func(id int) bool
	//Gives the names used for support atoms. If nil, the names in the molecule are used.
	Name func(id int) string
	//Skip atoms with fewer heavy neighbors than their pattern needs, instead of
	//returning an error.
	SkipInconsistent bool
	Log              *zap.Logger
}

// support returns the IDs of the support atoms for the heavy atom i with
// pattern P, or an error if there are not enough heavy atoms around.
func support(adj *mol2.Adjacency, i int, P Pattern) ([]int, error) {
	heavy := adj.Heavy(i)
	need := map[Pattern]int{Planar: 2, Single: 1, PlanarPair: 1, Methyl: 1, Tetrahedral: 3, Methylene: 2}[P]
	if len(heavy) < need {
		return nil, genrtp.Errorf(genrtp.TopologyInconsistency, "atom %d has pattern %d, which needs %d heavy neighbors, but it has %d", i, P, need, len(heavy))
	}
	switch P {
	case Planar, Methylene:
		return []int{i, heavy[0], heavy[1]}, nil
	case Tetrahedral:
		return []int{i, heavy[0], heavy[1], heavy[2]}, nil
	}
	//Single, PlanarPair and Methyl: the third atom is bonded to the first neighbor.
	j0 := heavy[0]
	for _, k := range adj.Heavy(j0) {
		if k != i {
			return []int{i, j0, k}, nil
		}
	}
	return nil, genrtp.Errorf(genrtp.TopologyInconsistency, "atom %d has pattern %d, which needs a heavy atom bonded to its neighbor %d, but there is none", i, P, j0)
}

// Build returns the hydrogen database records for m, one for each heavy atom
// with hydrogens, in ID order. Atoms that can't be classified get no record.
func Build(m *mol2.Molecule, adj *mol2.Adjacency, o Options) ([]Record, error) {
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}
	name := o.Name
	if name == nil {
		name = func(id int) string { return m.Atom(id).Name }
	}
	var ret []Record
	for _, a := range m.Atoms {
		if a.IsHydrogen() || (o.Excluded != nil && o.Excluded(a.ID)) {
			continue
		}
		hs := adj.Hydrogens(a.ID)
		if len(hs) == 0 {
			continue
		}
		d := adj.Degree(a.ID)
		P := Classify(d, len(hs))
		log.Debug("classified atom", zap.Int("id", a.ID), zap.String("name", a.Name), zap.Int("degree", d), zap.Int("hydrogens", len(hs)), zap.Int("pattern", int(P)))
		if P == Unclassified {
			log.Warn("atom with hydrogens could not be classified, no record written", zap.Int("id", a.ID), zap.String("name", a.Name), zap.Int("degree", d), zap.Int("hydrogens", len(hs)))
			continue
		}
		ids, err := support(adj, a.ID, P)
		if err != nil {
			if o.SkipInconsistent {
				log.Warn("atom skipped", zap.Int("id", a.ID), zap.String("name", a.Name), zap.Error(err))
				continue
			}
			return nil, genrtp.Decorate(err, "hdb.Build")
		}
		sup := make([]string, 0, len(ids))
		for _, v := range ids {
			sup = append(sup, name(v))
		}
		ret = append(ret, Record{Multiplicity: P.Multiplicity(), Pattern: P, HName: BaseName(a), Support: sup})
	}
	return ret, nil
}

// Write writes the records for the residue in hydrogen database format to w.
func Write(w io.Writer, residue string, recs []Record) error {
	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "%-5s    %d\n", residue, len(recs))
	for _, r := range recs {
		fmt.Fprintf(b, "%-7d%-7d%-7s", r.Multiplicity, int(r.Pattern), r.HName)
		for _, s := range r.Support {
			fmt.Fprintf(b, "%-7s", s)
		}
		b.WriteString("\n")
	}
	return b.Flush()
}
