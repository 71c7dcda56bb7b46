/*
 * rtp.go, part of genrtp
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

// Package rtp writes Gromacs residue topology (rtp) entries.
package rtp

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rmera/genrtp/boundary"
	"github.com/rmera/genrtp/top"
)

// Funct2Note is appended to function 2 dihedrals in amber templates, as pdb2gmx
// adds the default function before the one given.
const Funct2Note = `; Delete the default funct "9" before 2 after pdb2gmx!!!`

// BondedTypes returns the [ bondedtypes ] block for the force field.
func BondedTypes(ff boundary.ForceField) string {
	if ff == boundary.Gromos {
		return "[ bondedtypes ]\n; bonds  angles  dihedrals  impropers\n    2       2          1          2\n\n"
	}
	return "[ bondedtypes ]\n; bonds  angles  dihedrals  impropers all_dihedrals nrexcl HH14 RemoveDih\n     1       1          9          4        1         3      1     0\n\n"
}

func atomLine(a *top.Atom) string {
	return fmt.Sprintf("%8s%6s%12.6f%5d", a.Name, a.Type, a.Charge, a.CgNr)
}

// names returns the names of the atoms with the given IDs, each right-aligned in 7 columns.
func names(T *top.Topology, ids []int) string {
	var b strings.Builder
	for _, v := range ids {
		fmt.Fprintf(&b, "%7s", T.NameOf(v))
	}
	return b.String()
}

// coefs returns the present coefficients of t, formatted with the given verbs.
func coefs(t *top.Term, formats ...string) string {
	var b strings.Builder
	for i, c := range t.Coefs() {
		if i < len(formats) {
			b.WriteString(c.Format(formats[i]))
		}
	}
	return b.String()
}

func dihedralLine(T *top.Topology, d *top.Term, ff boundary.ForceField) string {
	s := names(T, d.IDs)
	if d.Funct != 2 {
		return s + coefs(d, "%10.2f", "%9.2f", "%8g")
	}
	if ff == boundary.Gromos {
		return s + coefs(d, "%10.2f", "%9.2f")
	}
	return s + fmt.Sprintf("%9d", d.Funct) + coefs(d, "%10.2f", "%9.2f") + "        " + Funct2Note
}

// Write writes the template tpl, built from the topology T, to w.
// The entry is named after T.
func Write(w io.Writer, tpl *boundary.Template, T *top.Topology) error {
	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "; rtp created by genrtp\n; converted from top of %s\n\n", T.Name)
	b.WriteString(BondedTypes(tpl.FF))
	fmt.Fprintf(b, "[ %s ]\n", T.Name)
	b.WriteString(" [ atoms ]\n")
	for _, a := range tpl.Atoms {
		if a.Side == boundary.Own {
			b.WriteString(atomLine(a.Atom) + "\n")
			continue
		}
		fmt.Fprintf(b, "; %s\t; %s\n", atomLine(a.Atom), a.Side)
	}
	b.WriteString(" [ bonds ]\n")
	for _, v := range tpl.Bonds {
		line := names(T, v.IDs) + coefs(v.Term, "%13.6f", "%13.6e")
		switch v.Fate {
		case boundary.Drop:
			continue
		case boundary.Comment:
			prefix := ";" + boundary.NextPrefix
			if v.Side == boundary.Previous {
				prefix = ";" + boundary.PrevPrefix
			}
			line = prefix + " " + line
		case boundary.Boundary:
			line += "\t; boundary"
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(" [ angles ]\n")
	for _, v := range tpl.Angles {
		b.WriteString(names(T, v.IDs) + coefs(v, "%10.2f", "%9.2f") + "\n")
	}
	b.WriteString(" [ dihedrals ]\n")
	for _, v := range tpl.Dihedrals {
		b.WriteString(dihedralLine(T, v, tpl.FF) + "\n")
	}
	b.WriteString(" [ impropers ]\n")
	for _, v := range tpl.Impropers {
		b.WriteString(dihedralLine(T, v, tpl.FF) + "\n")
	}
	return b.Flush()
}
