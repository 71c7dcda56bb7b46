package boundary

import (
	"fmt"
	"strings"

	"github.com/rmera/genrtp"
	"github.com/rmera/genrtp/top"
	"go.uber.org/zap"
)

// ForceField is the convention followed by the template.
type ForceField int

const (
	Amber ForceField = iota + 1
	Gromos
)

func (F ForceField) String() string {
	switch F {
	case Amber:
		return "amber"
	case Gromos:
		return "gromos"
	}
	return "unknown"
}

// ParseForceField returns the ForceField named s (case insensitive).
func ParseForceField(s string) (ForceField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "amber":
		return Amber, nil
	case "gromos":
		return Gromos, nil
	}
	return 0, genrtp.Errorf(genrtp.ConfigError, "unsupported force field %q, only amber and gromos are supported", s)
}

// Pruned returns the residue whose internal bonds are left out of
// templates in this convention. Amber templates keep the bonds to the
// previous residue, Gromos ones keep those to the next residue.
func (F ForceField) Pruned() Side {
	if F == Gromos {
		return Previous
	}
	return Next
}

// Fate is what happens to a bond in the template.
type Fate int

const (
	Keep     Fate = iota
	Boundary      //one endpoint is in a neighboring residue
	Comment       //both endpoints are in the neighboring residue that is not pruned
	Drop
)

func (F Fate) String() string {
	return [...]string{"keep", "boundary", "comment", "drop"}[F]
}

// Atom is a topology atom and the residue it belongs to.
type Atom struct {
	*top.Atom
	Side Side
}

// Bond is a topology bond and its fate. For bonds to be commented,
// Side is the residue both atoms belong to.
type Bond struct {
	*top.Term
	Fate Fate
	Side Side
}

// Count keeps how many terms of a section were kept and dropped.
type Count struct {
	Kept    int `yaml:"kept"`
	Dropped int `yaml:"dropped"`
}

// Template is the content of a residue template, before formatting.
type Template struct {
	FF        ForceField
	Atoms     []Atom
	Bonds     []Bond //all bonds, including those to be dropped.
	Angles    []*top.Term
	Dihedrals []*top.Term //function 1, 9 or 2
	Impropers []*top.Term //function 4
	Omitted   []*top.Term //dihedrals with other functions
	Counts    map[string]Count
	Warnings  []string
}

// count returns the number of atoms in T that belong to a neighboring residue.
func (S *Spec) count(T *top.Term) int {
	n := 0
	for _, v := range T.IDs {
		if S.Excluded(v) {
			n++
		}
	}
	return n
}

// bondFate returns the fate of the bond b in the convention ff and, for
// commented bonds, the residue of both atoms.
func (S *Spec) bondFate(b *top.Term, ff ForceField) (Fate, Side) {
	s1, s2 := S.Side(b.IDs[0]), S.Side(b.IDs[1])
	switch {
	case s1 == Own && s2 == Own:
		return Keep, Own
	case s1 == Own || s2 == Own:
		return Boundary, Own
	case s1 == s2 && s1 == ff.Pruned():
		return Drop, s1
	case s1 == s2:
		return Comment, s1
	}
	//one atom in each neighboring residue.
	return Boundary, Own
}

// Filter builds the template for the topology T, in the convention ff.
// Angles are kept only if at most one of their atoms is in a neighboring residue,
// dihedrals if at most two are. Dihedrals with function 1, 9 or 2 are
// propers, and impropers have function 4. Others are left out.
// T is not modified. The log can be nil.
func (S *Spec) Filter(T *top.Topology, ff ForceField, log *zap.Logger) *Template {
	if log == nil {
		log = zap.NewNop()
	}
	tpl := &Template{FF: ff, Counts: make(map[string]Count)}
	for _, a := range T.Atoms {
		tpl.Atoms = append(tpl.Atoms, Atom{Atom: a, Side: S.Side(a.Nr)})
	}
	var c Count
	for _, b := range T.Bonds {
		f, s := S.bondFate(b, ff)
		tpl.Bonds = append(tpl.Bonds, Bond{Term: b, Fate: f, Side: s})
		if f == Drop {
			c.Dropped++
		} else {
			c.Kept++
		}
	}
	tpl.Counts["bonds"] = c
	c = Count{}
	for _, a := range T.Angles {
		if S.count(a) > 1 {
			c.Dropped++
			continue
		}
		c.Kept++
		tpl.Angles = append(tpl.Angles, a)
	}
	tpl.Counts["angles"] = c
	var prop, imp Count
	for _, d := range T.Dihedrals {
		names := make([]string, 0, 4)
		for _, v := range d.IDs {
			names = append(names, T.NameOf(v))
		}
		switch d.Funct {
		case 1, 9, 2, 4:
		default:
			w := fmt.Sprintf("dihedral %s (line %d) has function %d, which can't go in a template. Left out", strings.Join(names, "-"), d.Line, d.Funct)
			tpl.Warnings = append(tpl.Warnings, w)
			tpl.Omitted = append(tpl.Omitted, d)
			log.Warn("dihedral function not supported in templates", zap.Strings("atoms", names), zap.Int("line", d.Line), zap.Int("funct", d.Funct))
			continue
		}
		keep := S.count(d) <= 2
		if d.Funct == 4 {
			if keep {
				imp.Kept++
				tpl.Impropers = append(tpl.Impropers, d)
			} else {
				imp.Dropped++
			}
			continue
		}
		if !keep {
			prop.Dropped++
			continue
		}
		prop.Kept++
		tpl.Dihedrals = append(tpl.Dihedrals, d)
		if d.Funct == 2 {
			w := fmt.Sprintf("dihedral %s (line %d) has function 2 and is written as a proper one. Check it after running pdb2gmx", strings.Join(names, "-"), d.Line)
			tpl.Warnings = append(tpl.Warnings, w)
			log.Warn("function 2 dihedral treated as proper", zap.Strings("atoms", names), zap.Int("line", d.Line))
		}
	}
	tpl.Counts["dihedrals"] = prop
	tpl.Counts["impropers"] = imp
	log.Debug("template filtered", zap.String("forcefield", ff.String()), zap.Int("bonds", len(tpl.Bonds)), zap.Int("angles", len(tpl.Angles)),
		zap.Int("dihedrals", len(tpl.Dihedrals)), zap.Int("impropers", len(tpl.Impropers)))
	return tpl
}
