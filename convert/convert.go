/*
 * convert.go, part of genrtp
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

// Package convert runs the whole genrtp pipeline: from a mol2 structure and
// its Gromacs topology to a residue template (rtp), a hydrogen database (hdb)
// and a structure with renamed hydrogens.
//
// The pipeline has three stages (structure, template, hydrogen database), run in that
// order. Each stage writes its output only after it has been fully produced,
// so a failure leaves the files of the previous stages in place and no
// partially written file.
package convert

import (
	"bytes"
	"fmt"

	"github.com/rmera/genrtp"
	"github.com/rmera/genrtp/boundary"
	"github.com/rmera/genrtp/hdb"
	"github.com/rmera/genrtp/mol2"
	"github.com/rmera/genrtp/rtp"
	"github.com/rmera/genrtp/top"
	"go.uber.org/zap"
)

// Outputs holds the names of the files to write. An empty name means that the file is
// not written. Names ending in .gz or .zst are compressed.
type Outputs struct {
	Structure string //mol2 with the hydrogens renamed
	Template  string //rtp
	HDB       string
	ITP       string //topology with the final names
	Report    string //YAML run summary
}

// Options for a pipeline run.
type Options struct {
	Structure  string //input mol2
	Topology   string //input itp/top
	ForceField boundary.ForceField
	//Name of the residue. If empty, the moleculetype name is used.
	Residue string
	//Symbols considered defined for #ifdef blocks in the topology.
	Defines  []string
	Boundary *boundary.Spec //nil means a residue with no neighbors
	Output   Outputs
	//Skip heavy atoms that don't have enough heavy neighbors for their
	//hydrogen pattern, instead of failing.
	SkipInconsistent bool
}

// check returns a ConfigError if the options can't be used for a run.
func (O Options) check() error {
	if O.ForceField != boundary.Amber && O.ForceField != boundary.Gromos {
		return genrtp.Errorf(genrtp.ConfigError, "unknown force field convention (%d)", int(O.ForceField))
	}
	if O.Boundary != nil {
		return O.Boundary.Validate()
	}
	return nil
}

// run keeps the state shared by the stages.
type run struct {
	opts Options
	spec *boundary.Spec
	log  *zap.Logger
	rep  *Report
	mol  *mol2.Molecule
	adj  *mol2.Adjacency
}

// save writes the content of b to fname, unless fname is empty.
func (R *run) save(fname string, b *bytes.Buffer, what string) error {
	if fname == "" {
		return nil
	}
	if err := genrtp.WriteFile(fname, b.Bytes()); err != nil {
		return fmt.Errorf("can't write %s file %s: %w", what, fname, err)
	}
	R.rep.Outputs = append(R.rep.Outputs, fname)
	R.log.Info("file written", zap.String("kind", what), zap.String("file", fname), zap.Int("bytes", b.Len()))
	return nil
}

func (R *run) structure() error {
	R.log.Info("reading structure", zap.String("file", R.opts.Structure))
	f, err := genrtp.Open(R.opts.Structure)
	if err != nil {
		return genrtp.WithFile(err, R.opts.Structure)
	}
	defer f.Close()
	m, err := mol2.Read(f)
	if err != nil {
		return genrtp.WithFile(err, R.opts.Structure)
	}
	adj := mol2.NewAdjacency(m)
	frags := adj.Fragments()
	if len(frags) > 1 {
		w := fmt.Sprintf("the structure has %d disconnected fragments", len(frags))
		R.rep.Warnings = append(R.rep.Warnings, w)
		R.log.Warn("disconnected structure", zap.Int("fragments", len(frags)))
	}
	R.rep.Atoms = m.Len()
	R.rep.Bonds = len(m.Bonds)
	R.rep.Fragments = len(frags)
	R.rep.Rings = len(adj.Rings())
	R.rep.HydrogensRenamed = hdb.RenameHydrogens(m, adj)
	R.mol, R.adj = m, adj

	var b bytes.Buffer
	if err := mol2.Write(&b, m); err != nil {
		return err
	}
	R.log.Info("structure stage done", zap.Int("atoms", R.rep.Atoms), zap.Int("rings", R.rep.Rings), zap.Int("hydrogens_renamed", R.rep.HydrogensRenamed))
	return R.save(R.opts.Output.Structure, &b, "structure")
}

func (R *run) template() error {
	R.log.Info("reading topology", zap.String("file", R.opts.Topology), zap.Strings("defines", R.opts.Defines))
	f, err := genrtp.Open(R.opts.Topology)
	if err != nil {
		return genrtp.WithFile(err, R.opts.Topology)
	}
	defer f.Close()
	T, err := top.Read(f, top.ReadOptions{Defines: R.opts.Defines})
	if err != nil {
		return genrtp.WithFile(err, R.opts.Topology)
	}
	if err := T.AdoptNames(R.mol); err != nil {
		return genrtp.WithFile(err, R.opts.Topology)
	}
	switch {
	case R.opts.Residue != "":
		T.Name = R.opts.Residue
	case T.Name == "":
		T.Name = genrtp.Stem(R.opts.Topology)
	}
	R.rep.Residue = T.Name
	R.spec.RenameTopology(T)
	tpl := R.spec.Filter(T, R.opts.ForceField, R.log)
	R.rep.Sections = tpl.Counts
	R.rep.Warnings = append(R.rep.Warnings, tpl.Warnings...)

	var b, itp bytes.Buffer
	if err := rtp.Write(&b, tpl, T); err != nil {
		return err
	}
	if R.opts.Output.ITP != "" {
		if err := T.WriteITP(&itp); err != nil {
			return err
		}
	}
	R.log.Info("template stage done", zap.String("residue", T.Name), zap.Int("atoms", T.Len()), zap.Int("warnings", len(tpl.Warnings)))
	if err := R.save(R.opts.Output.Template, &b, "template"); err != nil {
		return err
	}
	return R.save(R.opts.Output.ITP, &itp, "itp")
}

func (R *run) hydrogens() error {
	recs, err := hdb.Build(R.mol, R.adj, hdb.Options{
		Excluded:         R.spec.Foreign,
		Name:             R.spec.Namer(R.mol),
		SkipInconsistent: R.opts.SkipInconsistent,
		Log:              R.log,
	})
	if err != nil {
		return genrtp.WithFile(err, R.opts.Structure)
	}
	R.rep.Records = make(map[int]int)
	for _, v := range recs {
		R.rep.Records[int(v.Pattern)]++
	}
	var b bytes.Buffer
	if err := hdb.Write(&b, R.rep.Residue, recs); err != nil {
		return err
	}
	R.log.Info("hydrogen database stage done", zap.Int("records", len(recs)))
	return R.save(R.opts.Output.HDB, &b, "hdb")
}

// Run runs the pipeline with the given options, and returns a summary of it.
// If log is nil, nothing is logged. Invalid options give a ConfigError and a nil
// report, before anything is read. On other errors, the returned report
// covers the stages completed.
func Run(opts Options, log *zap.Logger) (*Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := opts.check(); err != nil {
		return nil, genrtp.Decorate(err, "convert.Run")
	}
	R := &run{opts: opts, spec: opts.Boundary, log: log}
	if R.spec == nil {
		R.spec = boundary.New(nil, nil)
	}
	R.rep = &Report{Structure: opts.Structure, Topology: opts.Topology, ForceField: opts.ForceField.String()}
	stages := []struct {
		name string
		f    func() error
	}{
		{"structure", R.structure},
		{"template", R.template},
		{"hdb", R.hydrogens},
	}
	for _, s := range stages {
		if err := s.f(); err != nil {
			log.Error("stage failed", zap.String("stage", s.name), zap.Error(err))
			return R.rep, genrtp.Decorate(err, "convert.Run: "+s.name)
		}
	}
	if opts.Output.Report != "" {
		//listed before writing, so the report includes itself.
		R.rep.Outputs = append(R.rep.Outputs, opts.Output.Report)
		b, err := R.rep.YAML()
		if err != nil {
			return R.rep, err
		}
		if err := genrtp.WriteFile(opts.Output.Report, b); err != nil {
			return R.rep, fmt.Errorf("can't write report file %s: %w", opts.Output.Report, err)
		}
	}
	return R.rep, nil
}
