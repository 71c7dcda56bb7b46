package main

import (
	"fmt"

	"github.com/rmera/genrtp/convert"
	"github.com/rmera/genrtp/internal/config"
	"github.com/rmera/genrtp/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// flagKeys maps each flag to the configuration key it sets.
var flagKeys = map[string]string{
	"structure":           "structure",
	"topology":            "topology",
	"forcefield":          "forcefield",
	"residue":             "residue",
	"define":              "defines",
	"out-structure":       "output.structure",
	"out-rtp":             "output.template",
	"out-hdb":             "output.hdb",
	"out-itp":             "output.itp",
	"report":              "output.report",
	"prev":                "boundary.previous",
	"next":                "boundary.next",
	"prev-connector-id":   "boundary.prev_connector.id",
	"prev-connector-name": "boundary.prev_connector.name",
	"next-connector-id":   "boundary.next_connector.id",
	"next-connector-name": "boundary.next_connector.name",
	"prev-adjacent-id":    "boundary.prev_adjacent.id",
	"prev-adjacent-name":  "boundary.prev_adjacent.name",
	"next-adjacent-id":    "boundary.next_adjacent.id",
	"next-adjacent-name":  "boundary.next_adjacent.name",
	"skip-inconsistent":   "hdb.skip_inconsistent",
	"log-level":           "log.level",
	"log-format":          "log.format",
}

func newRootCommand() *cobra.Command {
	v := config.NewViper()
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "genrtp",
		Short: "Builds rtp and hdb entries for pdb2gmx from a mol2 file and its topology",
		Long: `genrtp reads a mol2 structure and the Gromacs topology (itp) of the same molecule,
renames the hydrogens, and writes a residue topology (rtp) entry, a hydrogen
database (hdb) entry and the structure with the new names.

Atoms belonging to the neighboring residues can be given with --prev and --next,
as ranges such as "1-4,9". Their bonded terms are pruned or commented out
following the amber or gromos convention.

All options can also be given in a YAML file (--config) or as GENRTP_*
environment variables, e.g. GENRTP_BOUNDARY_NEXT.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, cfgPath)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&cfgPath, "config", "c", "", "YAML configuration file")
	f.StringP("structure", "s", "", "input mol2 file (.gz and .zst are decompressed)")
	f.StringP("topology", "t", "", "input Gromacs topology (itp)")
	f.StringP("forcefield", "f", "", "force field convention: amber or gromos (default amber)")
	f.StringP("residue", "r", "", "residue name (default: the moleculetype name)")
	f.StringSliceP("define", "D", nil, "symbols defined for #ifdef blocks in the topology")
	f.String("out-structure", "", "output mol2 (default STEM_new.mol2)")
	f.String("out-rtp", "", "output rtp (default STEM.rtp)")
	f.String("out-hdb", "", "output hdb (default STEM.hdb)")
	f.String("out-itp", "", "also write the topology with the new atom names to this file")
	f.String("report", "", "write a YAML summary of the run to this file")
	f.String("prev", "", "atom IDs belonging to the previous residue")
	f.String("next", "", "atom IDs belonging to the next residue")
	for _, side := range []string{"prev", "next"} {
		f.Int(side+"-connector-id", 0, "ID of the "+side+" residue atom bonded to this residue")
		f.String(side+"-connector-name", "", "name for the "+side+" connector atom")
		f.Int(side+"-adjacent-id", 0, "ID of the atom of this residue bonded to the "+side+" connector")
		f.String(side+"-adjacent-name", "", "name for the "+side+" adjacent atom")
	}
	f.Bool("skip-inconsistent", false, "skip atoms whose hydrogens can't be placed instead of failing")
	f.String("log-level", "", "log level: debug, info, warn or error (default info)")
	f.String("log-format", "", "log format: console or json (default console)")
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, f.Lookup(name)); err != nil {
			panic(fmt.Sprintf("genrtp: can't bind flag %s: %v", name, err))
		}
	}
	return cmd
}

func run(cmd *cobra.Command, v *viper.Viper, cfgPath string) error {
	cfg, err := config.Load(v, cfgPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	rep, err := convert.Run(opts, log)
	if err != nil {
		return err
	}
	log.Info("done", zap.String("residue", rep.Residue), zap.Int("warnings", len(rep.Warnings)))
	out := cmd.OutOrStdout()
	for _, w := range rep.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	for _, o := range rep.Outputs {
		fmt.Fprintf(out, "written: %s\n", o)
	}
	return nil
}
