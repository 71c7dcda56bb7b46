/*
 * graph.go, part of genrtp
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
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph returns the molecule as a Gonum undirected graph. Node IDs are the atom IDs.
func (A *Adjacency) Graph() *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for _, a := range A.mol.Atoms {
		g.AddNode(simple.Node(a.ID))
	}
	for id := 1; id < len(A.nb); id++ {
		for _, v := range A.nb[id] {
			if v > id {
				g.SetEdge(simple.Edge{F: simple.Node(id), T: simple.Node(v)})
			}
		}
	}
	return g
}

// nodes2ids returns the sorted IDs of the nodes in n.
func nodes2ids(n []graph.Node) []int {
	ret := make([]int, 0, len(n))
	for _, v := range n {
		ret = append(ret, int(v.ID()))
	}
	sort.Ints(ret)
	return ret
}

// Fragments returns the IDs of the atoms in each connected fragment of the
// molecule. The fragments are sorted by their lowest atom ID.
func (A *Adjacency) Fragments() [][]int {
	cc := topo.ConnectedComponents(A.Graph())
	ret := make([][]int, 0, len(cc))
	for _, c := range cc {
		ret = append(ret, nodes2ids(c))
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}

// Rings returns a cycle basis of the molecule (the smallest set of rings from which
// every other ring can be built). Each ring contains the sorted IDs of its atoms.
func (A *Adjacency) Rings() [][]int {
	cycles := topo.UndirectedCyclesIn(A.Graph())
	ret := make([][]int, 0, len(cycles))
	for _, c := range cycles {
		//the cycle may be closed by repeating its first node.
		if len(c) > 1 && c[0].ID() == c[len(c)-1].ID() {
			c = c[:len(c)-1]
		}
		ret = append(ret, nodes2ids(c))
	}
	sort.Slice(ret, func(i, j int) bool {
		if len(ret[i]) == 0 || len(ret[j]) == 0 {
			return len(ret[i]) < len(ret[j])
		}
		return ret[i][0] < ret[j][0]
	})
	return ret
}
