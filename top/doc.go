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
Package top reads and writes Gromacs molecule topologies (itp files)
containing a single molecule type.

Only the sections with atoms and bonded terms are kept. Other known sections are
skipped, while unknown ones are an error. #ifdef/#ifndef blocks are
followed according to the symbols given in ReadOptions, and to the
#define lines found in the file itself. #include lines are ignored.
*/
package top
