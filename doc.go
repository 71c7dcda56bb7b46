/*
 * doc.go, part of genrtp
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

/*
Package genrtp builds Gromacs residue templates (rtp) and hydrogen
databases (hdb) for small molecules, so they can be used as residues by pdb2gmx.

The input is a Tripos mol2 structure and a Gromacs topology (itp) for the same
molecule, with the same atom numbering. The work is split in sub-packages:

	mol2      reads/writes mol2 files, builds the atom adjacency index.
	top       reads/writes Gromacs itp topologies.
	hdb       classifies and renames hydrogens, writes the hdb table.
	boundary  residue boundary definition: renaming and pruning of terms
	          that belong to the neighboring residues.
	rtp       writes the residue template.
	convert   puts everything together.

This package only contains what is shared by all the others: the error type
and some file helpers that transparently handle gzip and zstd compression.

	**Errors**

All packages return *Error values, which carry a Kind (FormatError, ReferenceError,
TopologyInconsistency, ConfigError) and, when it makes sense, the file, section and line
where the problem was found. Use errors.Is(err, genrtp.FormatError) and friends to
check for a given kind.
*/
package genrtp
