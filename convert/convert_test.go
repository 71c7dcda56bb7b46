package convert

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RoaringBitmap/roaring"
	"github.com/rmera/genrtp"
	"github.com/rmera/genrtp/boundary"
	"github.com/rmera/genrtp/mol2"
	"github.com/rmera/genrtp/top"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
)

const ethanolMol2 = `@<TRIPOS>MOLECULE
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
`

const ethanolITP = `[ moleculetype ]
 ETH              3

[ atoms ]
     1   c3     1   ETH    C     1    -0.180000     12.01000
     2   c3     1   ETH    C     2     0.145000     12.01000
     3   oh     1   ETH    O     3    -0.680000     16.00000
     4   hc     1   ETH    H     4     0.060000      1.00800
     5   hc     1   ETH    H     5     0.060000      1.00800
     6   hc     1   ETH    H     6     0.060000      1.00800
     7   h1     1   ETH    H     7     0.040000      1.00800
     8   h1     1   ETH    H     8     0.040000      1.00800
     9   ho     1   ETH    H     9     0.418000      1.00800

[ bonds ]
     1      2   1    1.5375e-01    2.5179e+05
     2      3   1    1.4233e-01    2.6192e+05
     1      4   1    1.0969e-01    2.7665e+05
     1      5   1    1.0969e-01    2.7665e+05
     1      6   1    1.0969e-01    2.7665e+05
     2      7   1    1.0969e-01    2.7665e+05
     2      8   1    1.0969e-01    2.7665e+05
     3      9   1    9.7300e-02    3.1079e+05

[ angles ]
     1      2      3      1    1.0919e+02    5.6861e+02
     2      1      4      1    1.0980e+02    3.8802e+02
     2      3      9      1    1.0826e+02    3.9400e+02

[ dihedrals ]
     4      1      2      3      9      0.00   0.65084   3
     1      2      3      9      9      0.00   0.69733   3
     1      2      3      9      3      0.1   0.2   0.3   0.4   0.5   0.6
#ifdef IMPROPERS
[ dihedrals ]
     1      3      2      7      4    180.00   4.60240   2
#else
[ dihedrals ]
     1      3      2      8      2    180.00   4.60240
#endif
`

// inputs writes the structure (gzipped) and the topology to dir.
func inputs(Te *testing.T, dir, itp string) (string, string) {
	Te.Helper()
	s := filepath.Join(dir, "ETH.mol2.gz")
	t := filepath.Join(dir, "ETH.itp")
	require.NoError(Te, genrtp.WriteFile(s, []byte(ethanolMol2)))
	require.NoError(Te, os.WriteFile(t, []byte(itp), 0o644))
	return s, t
}

func readAll(Te *testing.T, fname string) string {
	Te.Helper()
	f, err := genrtp.Open(fname)
	require.NoError(Te, err)
	defer f.Close()
	b, err := io.ReadAll(f)
	require.NoError(Te, err)
	return string(b)
}

func options(dir, s, t string) Options {
	return Options{
		Structure:  s,
		Topology:   t,
		ForceField: boundary.Amber,
		Boundary:   boundary.New(nil, roaring.BitmapOf(3, 9)),
		Output: Outputs{
			Structure: filepath.Join(dir, "ETH_new.mol2"),
			Template:  filepath.Join(dir, "ETH.rtp"),
			HDB:       filepath.Join(dir, "ETH.hdb"),
			ITP:       filepath.Join(dir, "ETH_new.itp.gz"),
			Report:    filepath.Join(dir, "report.yaml"),
		},
	}
}

func TestRun(Te *testing.T) {
	dir := Te.TempDir()
	s, t := inputs(Te, dir, ethanolITP)
	opts := options(dir, s, t)
	core, logs := observer.New(zap.DebugLevel)
	rep, err := Run(opts, zap.New(core))
	require.NoError(Te, err)

	assert.Equal(Te, "ETH", rep.Residue)
	assert.Equal(Te, 9, rep.Atoms)
	assert.Equal(Te, 8, rep.Bonds)
	assert.Equal(Te, 1, rep.Fragments)
	assert.Equal(Te, 0, rep.Rings)
	assert.Equal(Te, 6, rep.HydrogensRenamed)
	assert.Equal(Te, map[int]int{4: 1, 6: 1}, rep.Records)
	assert.Equal(Te, boundary.Count{Kept: 7, Dropped: 1}, rep.Sections["bonds"])
	assert.Equal(Te, boundary.Count{Kept: 2, Dropped: 1}, rep.Sections["angles"])
	assert.Equal(Te, boundary.Count{Kept: 3}, rep.Sections["dihedrals"])
	assert.Len(Te, rep.Warnings, 2)
	assert.Len(Te, rep.Outputs, 5)
	assert.Equal(Te, 1, logs.FilterMessage("function 2 dihedral treated as proper").Len())
	assert.Equal(Te, 1, logs.FilterMessage("dihedral function not supported in templates").Len())
	assert.Equal(Te, 2, logs.FilterMessage("classified atom").Len())

	//structure
	m, err := mol2.Read(strings.NewReader(readAll(Te, opts.Output.Structure)))
	require.NoError(Te, err)
	assert.Equal(Te, []string{"C1", "C2", "O1", "H11", "H12", "H13", "H21", "H22", "H1"}, m.Names())
	assert.Equal(Te, [3]float64{2.96, 1.35, 0}, m.Coord(9))

	//template
	out := readAll(Te, opts.Output.Template)
	assert.Contains(Te, out, "[ ETH ]\n")
	assert.Contains(Te, out, "     C2    +O1     0.142330 2.619200e+05\t; boundary\n")
	assert.NotContains(Te, out, "    +O1    +H1     0.097300")
	assert.Contains(Te, out, "    H11     C1     C2    +O1      0.00     0.65       3\n")
	assert.Equal(Te, 2, strings.Count(out, "\t; next residue"))

	//hydrogen database
	assert.Equal(Te, "ETH      2\n3      4      H1     C1     C2     +O1    \n2      6      H2     C2     C1     +O1    \n", readAll(Te, opts.Output.HDB))

	//topology, compressed
	T, err := top.Read(strings.NewReader(readAll(Te, opts.Output.ITP)), top.ReadOptions{})
	require.NoError(Te, err)
	assert.Equal(Te, "+O1", T.AtomByNr(3).Name)
	assert.Equal(Te, "H22", T.AtomByNr(8).Name)

	//report
	var back Report
	require.NoError(Te, yaml.Unmarshal([]byte(readAll(Te, opts.Output.Report)), &back))
	assert.Equal(Te, *rep, back)
}

func TestRunOptions(Te *testing.T) {
	dir := Te.TempDir()
	s, t := inputs(Te, dir, ethanolITP)
	opts := options(dir, s, t)
	opts.Residue = "ETO"
	opts.Defines = []string{"IMPROPERS"}
	opts.Boundary = nil
	opts.Output.ITP = ""
	opts.Output.Report = ""
	rep, err := Run(opts, nil)
	require.NoError(Te, err)
	assert.Equal(Te, "ETO", rep.Residue)
	assert.Equal(Te, boundary.Count{Kept: 1}, rep.Sections["impropers"])
	//the funct 3 dihedral only
	assert.Len(Te, rep.Warnings, 1)
	assert.Len(Te, rep.Outputs, 3)
	//O1 is now part of the residue
	assert.Equal(Te, map[int]int{2: 1, 4: 1, 6: 1}, rep.Records)
	assert.True(Te, strings.HasPrefix(readAll(Te, opts.Output.HDB), "ETO      3\n"))
	_, err = os.Stat(filepath.Join(dir, "ETH_new.itp.gz"))
	assert.True(Te, errors.Is(err, os.ErrNotExist))
}

func TestRunFailure(Te *testing.T) {
	dir := Te.TempDir()
	bad := strings.Replace(ethanolITP, "     3      9   1    9.7300e-02", "     3     12   1    9.7300e-02", 1)
	s, t := inputs(Te, dir, bad)
	opts := options(dir, s, t)
	rep, err := Run(opts, nil)
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, genrtp.ReferenceError))
	assert.Contains(Te, err.Error(), "ETH.itp")
	//the structure stage was completed and its output kept.
	assert.Equal(Te, []string{opts.Output.Structure}, rep.Outputs)
	_, err = os.Stat(opts.Output.Structure)
	assert.NoError(Te, err)
	for _, f := range []string{opts.Output.Template, opts.Output.HDB, opts.Output.ITP, opts.Output.Report} {
		_, err = os.Stat(f)
		assert.True(Te, errors.Is(err, os.ErrNotExist), f)
	}

	opts.Structure = filepath.Join(dir, "missing.mol2")
	_, err = Run(opts, nil)
	assert.True(Te, errors.Is(err, os.ErrNotExist))
}

func TestRunBadOptions(Te *testing.T) {
	dir := Te.TempDir()
	s, t := inputs(Te, dir, ethanolITP)
	opts := options(dir, s, t)
	opts.ForceField = 0
	rep, err := Run(opts, nil)
	assert.True(Te, errors.Is(err, genrtp.ConfigError))
	assert.Nil(Te, rep)

	opts = options(dir, s, t)
	opts.Boundary = boundary.New(roaring.BitmapOf(1, 3), roaring.BitmapOf(3, 9))
	_, err = Run(opts, nil)
	assert.True(Te, errors.Is(err, genrtp.ConfigError))

	opts = options(dir, s, t)
	opts.Boundary.NextConnector = &boundary.Connector{ID: 2, Name: "+C"}
	_, err = Run(opts, nil)
	assert.True(Te, errors.Is(err, genrtp.ConfigError))
	//nothing was written
	_, err = os.Stat(opts.Output.Structure)
	assert.True(Te, errors.Is(err, os.ErrNotExist))
}
