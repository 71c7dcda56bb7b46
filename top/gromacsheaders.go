/*
 * gromacsheaders.go, part of genrtp
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
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Utility functions

var fi = strings.Fields

func parseints(s ...string) ([]int, error) {
	r := make([]int, 0, len(s))
	for _, v := range s {
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		r = append(r, i)
	}
	return r, nil
}

func parsefloats(s ...string) ([]float64, error) {
	r := make([]float64, 0, len(s))
	for _, v := range s {
		i, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		r = append(r, i)
	}
	return r, nil
}

// Returns a string without gromacs comments (sequences starting with ';'),
// trailing and leading spaces, tabs and newlines
func cleanString(s string) string {
	f := strings.Split(s, ";")[0]
	return strings.Trim(f, "\r\n\t ")
}

// section is the state of the topology parser: the header under which
// the current line is.
type section int

const (
	secNone section = iota
	secSkip         //a known header we don't read
	secAtomTypes
	secMoleculeType
	secAtoms
	secBonds
	secPairs
	secConstraints
	secAngles
	secDihedrals
	secExclusions
)

var secNames = map[section]string{
	secAtomTypes:    "atomtypes",
	secMoleculeType: "moleculetype",
	secAtoms:        "atoms",
	secBonds:        "bonds",
	secPairs:        "pairs",
	secConstraints:  "constraints",
	secAngles:       "angles",
	secDihedrals:    "dihedrals",
	secExclusions:   "exclusions",
}

func (s section) String() string {
	return secNames[s]
}

// headers we recognize but don't need.
var skipped = []string{
	"defaults", "system", "molecules", "pairtypes", "bondtypes", "constrainttypes",
	"angletypes", "dihedraltypes", "nonbond_params", "implicit_genborn_params",
	"cmaptypes", "cmap", "settles", "position_restraints", "distance_restraints",
	"dihedral_restraints", "orientation_restraints", "angle_restraints",
	"angle_restraints_z", "pairs_nb", "virtual_sites1", "virtual_sites2",
	"virtual_sites3", "virtual_sites4", "virtual_sitesn", "intermolecular_interactions",
}

type topHeader struct {
	wany   *regexp.Regexp
	byName map[string]section
}

func newTopHeader() *topHeader {
	T := new(topHeader)
	T.wany = regexp.MustCompile(`^\[[\p{Zs}\t]*([A-Za-z0-9_]*)[\p{Zs}\t]*\]$`)
	T.byName = make(map[string]section, len(secNames)+len(skipped))
	for k, v := range secNames {
		T.byName[v] = k
	}
	for _, v := range skipped {
		T.byName[v] = secSkip
	}
	return T
}

// Which returns the header name in line, the corresponding section,
// and whether line is a header at all. A header with a name we don't
// know is returned with secNone. The line must already be clean.
func (T *topHeader) Which(line string) (string, section, bool) {
	m := T.wany.FindStringSubmatch(line)
	if m == nil {
		return "", secNone, false
	}
	name := strings.ToLower(m[1])
	s, ok := T.byName[name]
	if !ok {
		return name, secNone, true
	}
	return name, s, true
}

// cond follows the preprocessor conditionals of a gromacs topology.
// Each level of nesting keeps whether its lines are to be read.
type cond struct {
	defines []string
	stack   []bool
}

func newCond(defines []string) *cond {
	c := new(cond)
	c.defines = slices.Clone(defines)
	return c
}

func (c *cond) reading() bool {
	for _, v := range c.stack {
		if !v {
			return false
		}
	}
	return true
}

// read processes line, which must be clean, and returns true if the
// line has content that is to be read. Preprocessor lines are never to be read.
// It returns false in its second value if an #else or #endif has no matching #if.
func (c *cond) read(line string) (bool, bool) {
	if !strings.HasPrefix(line, "#") {
		return c.reading(), true
	}
	f := fi(line)
	switch f[0] {
	case "#ifdef", "#ifndef":
		def := len(f) > 1 && slices.Contains(c.defines, f[1])
		c.stack = append(c.stack, def == (f[0] == "#ifdef"))
	case "#else":
		if len(c.stack) == 0 {
			return false, false
		}
		c.stack[len(c.stack)-1] = !c.stack[len(c.stack)-1]
	case "#endif":
		if len(c.stack) == 0 {
			return false, false
		}
		c.stack = c.stack[:len(c.stack)-1]
	case "#define":
		if len(f) > 1 && c.reading() {
			c.defines = append(c.defines, f[1])
		}
	case "#undef":
		if len(f) > 1 && c.reading() {
			c.defines = slices.DeleteFunc(c.defines, func(s string) bool { return s == f[1] })
		}
	}
	//#include and anything else is just skipped.
	return false, true
}

// open returns true if a conditional block is still open.
func (c *cond) open() bool {
	return len(c.stack) > 0
}
