/*
 * boundary.go, part of genrtp
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

// Package boundary deals with the atoms of a molecule that belong to the residues
// before and after the one a template is built for. It renames those atoms
// and decides which bonded terms involving them go to the template.
package boundary

import (
	"math"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/rmera/genrtp"
	"github.com/rmera/genrtp/mol2"
	"github.com/rmera/genrtp/top"
)

// The prefixes for atoms in the previous and next residues
const (
	PrevPrefix = "-"
	NextPrefix = "+"
)

// Side tells to which residue an atom belongs.
type Side int

const (
	Own Side = iota
	Previous
	Next
)

func (S Side) String() string {
	switch S {
	case Previous:
		return "previous residue"
	case Next:
		return "next residue"
	}
	return "own residue"
}

// Connector is an atom at the boundary, with the name it must take.
type Connector struct {
	ID   int
	Name string
}

// Spec describes which atoms of a molecule belong to the neighboring residues.
// PrevConnector and NextConnector, if not nil, are the atoms of those residues
// that bond to this one. PrevAdjacent and NextAdjacent are atoms of this
// residue whose names are to be set regardless of the other rules, normally
// the ones bonded to the connectors.
type Spec struct {
	Prev          *roaring.Bitmap
	Next          *roaring.Bitmap
	PrevConnector *Connector
	NextConnector *Connector
	PrevAdjacent  *Connector
	NextAdjacent  *Connector
}

// New returns a Spec with the given sets and no connectors. Nil sets are
// taken as empty.
func New(prev, next *roaring.Bitmap) *Spec {
	if prev == nil {
		prev = roaring.New()
	}
	if next == nil {
		next = roaring.New()
	}
	return &Spec{Prev: prev, Next: next}
}

// ParseRange parses a list of atom IDs such as "1-3,5 8". Elements can be separated
// by commas or spaces. The empty string gives an empty set.
func ParseRange(s string) (*roaring.Bitmap, error) {
	ret := roaring.New()
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	for _, v := range f {
		lims := strings.SplitN(v, "-", 2)
		ints := make([]int, 0, 2)
		for _, w := range lims {
			i, err := strconv.Atoi(strings.TrimSpace(w))
			if err != nil {
				return nil, genrtp.Errorf(genrtp.ConfigError, "can't read atom range %q in %q", v, s)
			}
			if i < 1 {
				return nil, genrtp.Errorf(genrtp.ConfigError, "atom IDs must be positive, got %d in %q", i, s)
			}
			if uint64(i) > math.MaxUint32 {
				return nil, genrtp.Errorf(genrtp.ConfigError, "atom ID %d in %q is too large", i, s)
			}
			ints = append(ints, i)
		}
		if len(ints) == 1 {
			ret.Add(uint32(ints[0]))
			continue
		}
		if ints[1] < ints[0] {
			return nil, genrtp.Errorf(genrtp.ConfigError, "reversed atom range %q", v)
		}
		ret.AddRange(uint64(ints[0]), uint64(ints[1])+1)
	}
	return ret, nil
}

func (S *Spec) in(set *roaring.Bitmap, id int) bool {
	return set != nil && id > 0 && uint64(id) <= math.MaxUint32 && set.Contains(uint32(id))
}

// Side returns the residue the atom with ID id belongs to.
func (S *Spec) Side(id int) Side {
	switch {
	case S.in(S.Prev, id):
		return Previous
	case S.in(S.Next, id):
		return Next
	}
	return Own
}

// Excluded returns true if the atom with ID id belongs to a neighboring residue.
func (S *Spec) Excluded(id int) bool {
	return S.Side(id) != Own
}

// IsConnector returns true if the atom with ID id is one of the two connectors.
func (S *Spec) IsConnector(id int) bool {
	return (S.PrevConnector != nil && S.PrevConnector.ID == id) || (S.NextConnector != nil && S.NextConnector.ID == id)
}

// Foreign returns true if the atom with ID id belongs to a neighboring
// residue and is not a connector.
func (S *Spec) Foreign(id int) bool {
	return S.Excluded(id) && !S.IsConnector(id)
}

func badConnector(c *Connector, what string, set *roaring.Bitmap, inside bool) error {
	if c == nil {
		return nil
	}
	if c.ID < 1 || uint64(c.ID) > math.MaxUint32 {
		return genrtp.Errorf(genrtp.ConfigError, "the %s atom ID must be positive and fit in 32 bits, got %d", what, c.ID)
	}
	if c.Name == "" {
		return genrtp.Errorf(genrtp.ConfigError, "the %s atom (%d) has no name", what, c.ID)
	}
	if in := set != nil && set.Contains(uint32(c.ID)); in != inside {
		if inside {
			return genrtp.Errorf(genrtp.ConfigError, "the %s atom (%d) is not in its boundary set", what, c.ID)
		}
		return genrtp.Errorf(genrtp.ConfigError, "the %s atom (%d) is in a boundary set", what, c.ID)
	}
	return nil
}

// Validate checks that the connectors have names and lie in their sets, that
// the adjacent atoms are not part of any set, and that the sets don't overlap.
func (S *Spec) Validate() error {
	if S.Prev != nil && S.Next != nil && S.Prev.Intersects(S.Next) {
		return genrtp.Errorf(genrtp.ConfigError, "atoms %v are in both the previous and next residues", roaring.And(S.Prev, S.Next).ToArray())
	}
	both := roaring.New()
	for _, v := range []*roaring.Bitmap{S.Prev, S.Next} {
		if v != nil {
			both.Or(v)
		}
	}
	checks := []error{
		badConnector(S.PrevConnector, "previous connector", S.Prev, true),
		badConnector(S.NextConnector, "next connector", S.Next, true),
		badConnector(S.PrevAdjacent, "previous adjacent", both, false),
		badConnector(S.NextAdjacent, "next adjacent", both, false),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// Rename returns the name that the atom with ID id, currently with the given name,
// should have. Any -/+ prefix in name is dropped before adding a new one, so
// the renaming can be applied any number of times.
func (S *Spec) Rename(id int, name string) string {
	base := strings.TrimLeft(name, PrevPrefix+NextPrefix)
	switch {
	case S.PrevAdjacent != nil && S.PrevAdjacent.ID == id:
		return S.PrevAdjacent.Name
	case S.NextAdjacent != nil && S.NextAdjacent.ID == id:
		return S.NextAdjacent.Name
	}
	switch S.Side(id) {
	case Previous:
		if S.PrevConnector != nil && S.PrevConnector.ID == id {
			return S.PrevConnector.Name
		}
		return PrevPrefix + base
	case Next:
		if S.NextConnector != nil && S.NextConnector.ID == id {
			return S.NextConnector.Name
		}
		return NextPrefix + base
	}
	return name
}

// RenameTopology renames all the atoms in T.
func (S *Spec) RenameTopology(T *top.Topology) {
	for _, a := range T.Atoms {
		a.Name = S.Rename(a.Nr, a.Name)
	}
}

// Namer returns a function that gives the boundary name of each atom in m,
// without modifying m.
func (S *Spec) Namer(m *mol2.Molecule) func(int) string {
	return func(id int) string {
		a := m.Atom(id)
		if a == nil {
			return ""
		}
		return S.Rename(id, a.Name)
	}
}
