package convert

import (
	"github.com/rmera/genrtp/boundary"
	"gopkg.in/yaml.v3"
)

// Report summarizes a pipeline run.
type Report struct {
	Structure        string                    `yaml:"structure"`
	Topology         string                    `yaml:"topology"`
	Residue          string                    `yaml:"residue"`
	ForceField       string                    `yaml:"forcefield"`
	Atoms            int                       `yaml:"atoms"`
	Bonds            int                       `yaml:"bonds"`
	Fragments        int                       `yaml:"fragments"`
	Rings            int                       `yaml:"rings"`
	HydrogensRenamed int                       `yaml:"hydrogens_renamed"`
	Records          map[int]int               `yaml:"hdb_records"` //by hydrogen pattern
	Sections         map[string]boundary.Count `yaml:"sections"`
	Warnings         []string                  `yaml:"warnings,omitempty"`
	Outputs          []string                  `yaml:"outputs"`
}

// YAML returns the report as a YAML document.
func (R *Report) YAML() ([]byte, error) {
	return yaml.Marshal(R)
}
