package boundary

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/RoaringBitmap/roaring"
	"github.com/rmera/genrtp"
	"github.com/rmera/genrtp/top"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(Te *testing.T) {
	r, err := ParseRange("1-3,5 8-8")
	require.NoError(Te, err)
	assert.Equal(Te, []uint32{1, 2, 3, 5, 8}, r.ToArray())
	r, err = ParseRange("")
	require.NoError(Te, err)
	assert.True(Te, r.IsEmpty())
	for _, v := range []string{"1-", "a", "3-1", "0-2", "-2", "1,,x", "4294967297", "1-4294967296"} {
		_, err = ParseRange(v)
		assert.True(Te, errors.Is(err, genrtp.ConfigError), v)
	}
}

func TestParseForceField(Te *testing.T) {
	f, err := ParseForceField(" AMBER")
	require.NoError(Te, err)
	assert.Equal(Te, Amber, f)
	f, err = ParseForceField("gromos")
	require.NoError(Te, err)
	assert.Equal(Te, Gromos, f)
	_, err = ParseForceField("charmm")
	assert.True(Te, errors.Is(err, genrtp.ConfigError))
}

func set(ids ...uint32) *roaring.Bitmap {
	return roaring.BitmapOf(ids...)
}

func TestValidate(Te *testing.T) {
	ok := New(set(1, 2), set(9, 10))
	ok.PrevConnector = &Connector{ID: 2, Name: "-C"}
	ok.NextConnector = &Connector{ID: 9, Name: "+N"}
	ok.PrevAdjacent = &Connector{ID: 3, Name: "N"}
	ok.NextAdjacent = &Connector{ID: 8, Name: "C"}
	require.NoError(Te, ok.Validate())
	require.NoError(Te, New(nil, nil).Validate())

	bad := map[string]func(S *Spec){
		"overlap":             func(S *Spec) { S.Next.Add(2) },
		"connector outside":   func(S *Spec) { S.PrevConnector.ID = 5 },
		"connector no name":   func(S *Spec) { S.NextConnector.Name = "" },
		"adjacent inside":     func(S *Spec) { S.PrevAdjacent.ID = 10 },
		"adjacent no name":    func(S *Spec) { S.NextAdjacent.Name = "" },
		"non-positive":        func(S *Spec) { S.NextAdjacent.ID = 0 },
		"connector wrong set": func(S *Spec) { S.NextConnector.ID = 1 },
	}
	for name, f := range bad {
		S := New(set(1, 2), set(9, 10))
		S.PrevConnector = &Connector{ID: 2, Name: "-C"}
		S.NextConnector = &Connector{ID: 9, Name: "+N"}
		S.PrevAdjacent = &Connector{ID: 3, Name: "N"}
		S.NextAdjacent = &Connector{ID: 8, Name: "C"}
		f(S)
		assert.True(Te, errors.Is(S.Validate(), genrtp.ConfigError), name)
	}
}

func TestRename(Te *testing.T) {
	S := New(set(1, 2), set(9, 10))
	S.PrevConnector = &Connector{ID: 2, Name: "-C"}
	S.NextAdjacent = &Connector{ID: 8, Name: "C"}
	cases := []struct {
		id         int
		name, want string
	}{
		{1, "CA", "-CA"},
		{2, "C5", "-C"},
		{5, "C7", "C7"},
		{8, "C12", "C"},
		{9, "N1", "+N1"}, //no next connector
		{10, "H3", "+H3"},
	}
	for _, c := range cases {
		got := S.Rename(c.id, c.name)
		assert.Equal(Te, c.want, got)
		//a second pass changes nothing
		assert.Equal(Te, got, S.Rename(c.id, got))
	}
	assert.True(Te, S.Foreign(1))
	assert.False(Te, S.Foreign(2))
	assert.False(Te, S.Foreign(5))
	assert.Equal(Te, Next, S.Side(10))
}

// chain returns a topology with n atoms in a linear chain, with all the
// bonds, angles and dihedrals of the chain.
func chain(n int) *top.Topology {
	T := &top.Topology{Name: "CHN"}
	for i := 1; i <= n; i++ {
		T.Atoms = append(T.Atoms, &top.Atom{Nr: i, Type: "c3", ResNr: 1, ResName: "CHN", Name: fmt.Sprintf("C%d", i), CgNr: i})
	}
	for i := 1; i < n; i++ {
		T.Bonds = append(T.Bonds, &top.Term{IDs: []int{i, i + 1}, Funct: 1, C0: top.Some(0.15), C1: top.Some(2.5e5)})
		if i+2 <= n {
			T.Angles = append(T.Angles, &top.Term{IDs: []int{i, i + 1, i + 2}, Funct: 1})
		}
		if i+3 <= n {
			T.Dihedrals = append(T.Dihedrals, &top.Term{IDs: []int{i, i + 1, i + 2, i + 3}, Funct: 9})
		}
	}
	return T
}

func fateOf(tpl *Template, a, b int) Fate {
	for _, v := range tpl.Bonds {
		if v.IDs[0] == a && v.IDs[1] == b {
			return v.Fate
		}
	}
	panic("bond not found")
}

// An amber residue whose last atoms belong to the next residue.
func TestNextResidueAmber(Te *testing.T) {
	T := chain(66)
	next, err := ParseRange("59-66")
	require.NoError(Te, err)
	S := New(nil, next)
	S.NextConnector = &Connector{ID: 59, Name: "+N"}
	require.NoError(Te, S.Validate())
	S.RenameTopology(T)
	assert.Equal(Te, "+N", T.NameOf(59))
	assert.Equal(Te, "+C60", T.NameOf(60))
	assert.Equal(Te, "C58", T.NameOf(58))

	tpl := S.Filter(T, Amber, nil)
	assert.Equal(Te, Boundary, fateOf(tpl, 58, 59))
	assert.Equal(Te, Drop, fateOf(tpl, 59, 60))
	assert.Equal(Te, Keep, fateOf(tpl, 1, 2))
	assert.Equal(Te, Count{Kept: 58, Dropped: 7}, tpl.Counts["bonds"])
	//the angles 57-58-59 and 58-59-60 have one and two excluded atoms.
	assert.Equal(Te, Count{Kept: 57, Dropped: 7}, tpl.Counts["angles"])
	assert.Equal(Te, Count{Kept: 57, Dropped: 6}, tpl.Counts["dihedrals"])
	assert.Empty(Te, tpl.Warnings)

	//gromos comments the bonds inside the next residue instead.
	tpl = S.Filter(T, Gromos, nil)
	assert.Equal(Te, Comment, fateOf(tpl, 59, 60))
	assert.Equal(Te, Boundary, fateOf(tpl, 58, 59))
}

func TestDihedralFunctions(Te *testing.T) {
	T := chain(6)
	T.Dihedrals[0].Funct = 2
	T.Dihedrals[1].Funct = 4
	T.Dihedrals[2].Funct = 3
	tpl := New(nil, nil).Filter(T, Amber, nil)
	require.Len(Te, tpl.Dihedrals, 1)
	assert.Equal(Te, 2, tpl.Dihedrals[0].Funct)
	require.Len(Te, tpl.Impropers, 1)
	require.Len(Te, tpl.Omitted, 1)
	assert.Equal(Te, 3, tpl.Omitted[0].Funct)
	assert.Len(Te, tpl.Warnings, 2)
}

// The pruning rules, checked on random sets of terms and boundary atoms.
func TestPruningThresholds(Te *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 20
	pick := func(k int) []int {
		return rng.Perm(n)[:k]
	}
	for iter := 0; iter < 200; iter++ {
		prev, next := roaring.New(), roaring.New()
		for i := 1; i <= n; i++ {
			switch rng.Intn(4) {
			case 0:
				prev.Add(uint32(i))
			case 1:
				next.Add(uint32(i))
			}
		}
		S := New(prev, next)
		T := chain(n)
		T.Bonds, T.Angles, T.Dihedrals = nil, nil, nil
		for j := 0; j < 10; j++ {
			ids := [][]int{pick(2), pick(3), pick(4)}
			for _, v := range ids {
				for k := range v {
					v[k]++
				}
			}
			T.Bonds = append(T.Bonds, &top.Term{IDs: ids[0], Funct: 1})
			T.Angles = append(T.Angles, &top.Term{IDs: ids[1], Funct: 1})
			T.Dihedrals = append(T.Dihedrals, &top.Term{IDs: ids[2], Funct: 9})
		}
		for _, ff := range []ForceField{Amber, Gromos} {
			pruned := next
			if ff == Gromos {
				pruned = prev
			}
			tpl := S.Filter(T, ff, nil)
			for _, b := range tpl.Bonds {
				in := 0
				for _, v := range b.IDs {
					if pruned.Contains(uint32(v)) {
						in++
					}
				}
				assert.Equal(Te, in == 2, b.Fate == Drop, "bond %v", b.IDs)
			}
			kept := func(terms []*top.Term, T *top.Term) bool {
				for _, v := range terms {
					if v == T {
						return true
					}
				}
				return false
			}
			union := roaring.Or(prev, next)
			for _, a := range T.Angles {
				in := 0
				for _, v := range a.IDs {
					if union.Contains(uint32(v)) {
						in++
					}
				}
				assert.Equal(Te, in <= 1, kept(tpl.Angles, a), "angle %v", a.IDs)
			}
			for _, d := range T.Dihedrals {
				in := 0
				for _, v := range d.IDs {
					if union.Contains(uint32(v)) {
						in++
					}
				}
				assert.Equal(Te, in <= 2, kept(tpl.Dihedrals, d), "dihedral %v", d.IDs)
			}
		}
	}
}
