package mol2

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rmera/genrtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ethanol = `@<TRIPOS>MOLECULE
ETH
    9     8     1 0 0
SMALL
USER_CHARGES

@<TRIPOS>ATOM
      1 C1          0.0000      0.0000      0.0000 C.3       1 ETH      -0.1800
      2 C2          1.5200      0.0000      0.0000 C.3       1 ETH       0.1450
      3 O1          2.0000      1.3500      0.0000 O.3       1 ETH      -0.6800
      4 H          -0.3600     -1.0200      0.0000 H         1 ETH       0.0600
      5 H          -0.3600      0.5100      0.8800 H         1 ETH       0.0600
      6 H          -0.3600      0.5100     -0.8800 H         1 ETH       0.0600
      7 H           1.8800     -0.5100      0.8800 H         1 ETH       0.0400
      8 H           1.8800     -0.5100     -0.8800 H         1 ETH       0.0400
      9 H           2.9600      1.3500      0.0000 H         1 ETH       0.4180
@<TRIPOS>BOND
     1    1    2 1
     2    2    3 1
     3    1    4 1
     4    1    5 1
     5    1    6 1
     6    2    7 1
     7    2    8 1
     8    3    9 1
@<TRIPOS>SUBSTRUCTURE
     1 ETH         1 TEMP              0 ****  ****    0 ROOT
`

func readString(Te *testing.T, s string) *Molecule {
	Te.Helper()
	M, err := Read(strings.NewReader(s))
	require.NoError(Te, err)
	return M
}

func TestRead(Te *testing.T) {
	M := readString(Te, ethanol)
	assert.Equal(Te, "ETH", M.Name)
	assert.Equal(Te, 9, M.Len())
	assert.Len(Te, M.Bonds, 8)
	assert.Equal(Te, "O", M.Atom(3).Element)
	assert.Equal(Te, "O.3", M.Atom(3).Type)
	assert.True(Te, M.Atom(9).IsHydrogen())
	assert.InDelta(Te, 0.418, M.Atom(9).Charge, 1e-9)
	assert.Equal(Te, [3]float64{2.0, 1.35, 0}, M.Coord(3))
	assert.Nil(Te, M.Atom(10))
}

func TestReadErrors(Te *testing.T) {
	cases := map[string]string{
		"no counts":      strings.Replace(ethanol, "    9     8     1 0 0", "", 1),
		"atom count":     strings.Replace(ethanol, "    9     8", "   10     8", 1),
		"bond count":     strings.Replace(ethanol, "    9     8", "    9     9", 1),
		"bad coordinate": strings.Replace(ethanol, "2.9600", "2.9x00", 1),
		"bond range":     strings.Replace(ethanol, "     8    3    9 1", "     8    3   19 1", 1),
		"no molecule":    ethanol[strings.Index(ethanol, "@<TRIPOS>ATOM"):],
	}
	for name, c := range cases {
		_, err := Read(strings.NewReader(c))
		require.Error(Te, err, name)
		assert.True(Te, errors.Is(err, genrtp.FormatError), "%s: %v", name, err)
	}
}

func TestReadNoName(Te *testing.T) {
	M := readString(Te, strings.Replace(ethanol, "ETH\n    9", "\n    9", 1))
	assert.Equal(Te, "", M.Name)
	assert.Equal(Te, 9, M.Len())
	assert.Equal(Te, "SMALL", M.MolType)
	assert.Equal(Te, "USER_CHARGES", M.ChargeType)

	var b bytes.Buffer
	require.NoError(Te, Write(&b, M))
	M2 := readString(Te, b.String())
	assert.Equal(Te, "", M2.Name)
	assert.Equal(Te, M.Names(), M2.Names())
	assert.Len(Te, M2.Bonds, 8)
}

func TestRoundTrip(Te *testing.T) {
	M := readString(Te, ethanol)
	var b bytes.Buffer
	require.NoError(Te, Write(&b, M))
	assert.Contains(Te, b.String(), " MOL ")
	M2 := readString(Te, b.String())
	require.Equal(Te, M.Len(), M2.Len())
	require.Equal(Te, len(M.Bonds), len(M2.Bonds))
	for i, a := range M.Atoms {
		assert.Equal(Te, a.Element, M2.Atoms[i].Element)
		assert.Equal(Te, a.Name, M2.Atoms[i].Name)
		assert.Equal(Te, ResName, M2.Atoms[i].SubstName)
		assert.Equal(Te, ResID, M2.Atoms[i].SubstID)
		for j := 0; j < 3; j++ {
			assert.InDelta(Te, M.Coord(a.ID)[j], M2.Coord(a.ID)[j], 1e-4)
		}
	}
}

func TestAdjacency(Te *testing.T) {
	M := readString(Te, ethanol)
	A := NewAdjacency(M)
	assert.Equal(Te, []int{2, 4, 5, 6}, A.Adjacent(1))
	assert.Equal(Te, []int{4, 5, 6}, A.Hydrogens(1))
	assert.Equal(Te, []int{2}, A.Heavy(1))
	assert.Equal(Te, []int{1, 3}, A.Heavy(2))
	assert.Equal(Te, 2, A.Degree(3))
	assert.Nil(Te, A.Adjacent(0))
	assert.Nil(Te, A.Adjacent(42))
	//a repeated bond is only counted once.
	M.Bonds = append(M.Bonds, &Bond{ID: 9, At1: 9, At2: 3, Type: "1"})
	A = NewAdjacency(M)
	assert.Equal(Te, []int{2, 9}, A.Adjacent(3))
}

// a benzene ring plus a disconnected water molecule.
func ringAndWater() *Molecule {
	M := &Molecule{Name: "test"}
	for i := 1; i <= 6; i++ {
		M.Atoms = append(M.Atoms, &Atom{ID: i, Name: "C" + string(rune('0'+i)), Type: "C.ar", Element: "C"})
	}
	M.Atoms = append(M.Atoms, &Atom{ID: 7, Name: "OW", Type: "O.3", Element: "O"})
	M.Atoms = append(M.Atoms, &Atom{ID: 8, Name: "HW1", Type: "H", Element: "H"})
	M.Atoms = append(M.Atoms, &Atom{ID: 9, Name: "HW2", Type: "H", Element: "H"})
	pairs := [][2]int{{1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 1}, {7, 8}, {7, 9}}
	for i, p := range pairs {
		M.Bonds = append(M.Bonds, &Bond{ID: i + 1, At1: p[0], At2: p[1], Type: "ar"})
	}
	return M
}

func TestFragmentsAndRings(Te *testing.T) {
	A := NewAdjacency(ringAndWater())
	frags := A.Fragments()
	require.Len(Te, frags, 2)
	assert.Equal(Te, []int{1, 2, 3, 4, 5, 6}, frags[0])
	assert.Equal(Te, []int{7, 8, 9}, frags[1])
	assert.Equal(Te, []int{2, 6}, A.Heavy(1))
	rings := A.Rings()
	require.Len(Te, rings, 1)
	assert.Equal(Te, []int{1, 2, 3, 4, 5, 6}, rings[0])
}
