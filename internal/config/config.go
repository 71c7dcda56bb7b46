// Package config loads and validates the genrtp configuration.
//
// Values come, in increasing order of priority, from the defaults, an optional
// YAML file, GENRTP_* environment variables (GENRTP_BOUNDARY_NEXT for
// boundary.next, and so on) and command line flags bound to the same keys.
package config

import (
	"path/filepath"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/rmera/genrtp"
	"github.com/rmera/genrtp/boundary"
	"github.com/rmera/genrtp/convert"
	"github.com/rmera/genrtp/internal/logging"
	"github.com/spf13/viper"
)

// envPrefix is the prefix of the environment variables read.
const envPrefix = "GENRTP"

// Connector is an atom ID with its new name.
type Connector struct {
	ID   int    `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

func (c Connector) empty() bool {
	return c.ID == 0 && c.Name == ""
}

// OutputConfig holds the output file names. Empty ITP and Report mean that
// those files are not written.
type OutputConfig struct {
	Structure string `mapstructure:"structure"`
	Template  string `mapstructure:"template"`
	HDB       string `mapstructure:"hdb"`
	ITP       string `mapstructure:"itp"`
	Report    string `mapstructure:"report"`
}

// BoundaryConfig holds the residue boundary settings. Previous and Next
// are atom ranges such as "1-3,5".
type BoundaryConfig struct {
	Previous      string    `mapstructure:"previous"`
	Next          string    `mapstructure:"next"`
	PrevConnector Connector `mapstructure:"prev_connector"`
	NextConnector Connector `mapstructure:"next_connector"`
	PrevAdjacent  Connector `mapstructure:"prev_adjacent"`
	NextAdjacent  Connector `mapstructure:"next_adjacent"`
}

// HDBConfig holds the hydrogen database settings.
type HDBConfig struct {
	SkipInconsistent bool `mapstructure:"skip_inconsistent"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the whole configuration of a run.
type Config struct {
	Structure  string         `mapstructure:"structure"`
	Topology   string         `mapstructure:"topology"`
	ForceField string         `mapstructure:"forcefield"`
	Residue    string         `mapstructure:"residue"`
	Defines    []string       `mapstructure:"defines"`
	Output     OutputConfig   `mapstructure:"output"`
	Boundary   BoundaryConfig `mapstructure:"boundary"`
	HDB        HDBConfig      `mapstructure:"hdb"`
	Log        LogConfig      `mapstructure:"log"`
}

// defaults for all keys. Every key needs one for environment variables to be
// seen by Unmarshal.
var defaults = map[string]interface{}{
	"structure":                    "",
	"topology":                     "",
	"forcefield":                   "amber",
	"residue":                      "",
	"defines":                      []string{},
	"output.structure":             "",
	"output.template":              "",
	"output.hdb":                   "",
	"output.itp":                   "",
	"output.report":                "",
	"boundary.previous":            "",
	"boundary.next":                "",
	"boundary.prev_connector.id":   0,
	"boundary.prev_connector.name": "",
	"boundary.next_connector.id":   0,
	"boundary.next_connector.name": "",
	"boundary.prev_adjacent.id":    0,
	"boundary.prev_adjacent.name":  "",
	"boundary.next_adjacent.id":    0,
	"boundary.next_adjacent.name":  "",
	"hdb.skip_inconsistent":        false,
	"log.level":                    "info",
	"log.format":                   "console",
}

// NewViper returns a Viper instance with the genrtp settings: YAML files,
// the GENRTP_ environment prefix, and defaults for every key.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	return v
}

// Load reads the YAML file at path, if path is not empty, into v, and returns the
// resulting configuration, with the output names filled in and validated.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, genrtp.Errorf(genrtp.ConfigError, "failed to read config file %q: %w", path, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, genrtp.Errorf(genrtp.ConfigError, "failed to unmarshal configuration: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults sets the output names left empty, from the name of the structure file:
// for dir/CTP.mol2, they are dir/CTP_new.mol2, dir/CTP.rtp and dir/CTP.hdb.
func ApplyDefaults(c *Config) {
	if c.Structure == "" {
		return
	}
	base := filepath.Join(filepath.Dir(c.Structure), genrtp.Stem(c.Structure))
	if c.Output.Structure == "" {
		c.Output.Structure = base + "_new.mol2"
	}
	if c.Output.Template == "" {
		c.Output.Template = base + ".rtp"
	}
	if c.Output.HDB == "" {
		c.Output.HDB = base + ".hdb"
	}
}

func connector(c Connector, key string) (*boundary.Connector, error) {
	if c.empty() {
		return nil, nil
	}
	if c.Name == "" {
		return nil, genrtp.Errorf(genrtp.ConfigError, "boundary.%s has an id (%d) but no name", key, c.ID)
	}
	if c.ID == 0 {
		return nil, genrtp.Errorf(genrtp.ConfigError, "boundary.%s has a name (%s) but no id", key, c.Name)
	}
	return &boundary.Connector{ID: c.ID, Name: c.Name}, nil
}

// Spec returns the boundary definition in the configuration, validated.
func (c *Config) Spec() (*boundary.Spec, error) {
	var sets [2]*roaring.Bitmap
	for i, r := range []string{c.Boundary.Previous, c.Boundary.Next} {
		var err error
		if sets[i], err = boundary.ParseRange(r); err != nil {
			return nil, err
		}
	}
	S := boundary.New(sets[0], sets[1])
	conns := []struct {
		c   Connector
		key string
		dst **boundary.Connector
	}{
		{c.Boundary.PrevConnector, "prev_connector", &S.PrevConnector},
		{c.Boundary.NextConnector, "next_connector", &S.NextConnector},
		{c.Boundary.PrevAdjacent, "prev_adjacent", &S.PrevAdjacent},
		{c.Boundary.NextAdjacent, "next_adjacent", &S.NextAdjacent},
	}
	for _, v := range conns {
		var err error
		if *v.dst, err = connector(v.c, v.key); err != nil {
			return nil, err
		}
	}
	if err := S.Validate(); err != nil {
		return nil, err
	}
	return S, nil
}

// Validate checks that the configuration can be used for a run.
func (c *Config) Validate() error {
	if c.Structure == "" {
		return genrtp.Errorf(genrtp.ConfigError, "structure file is required")
	}
	if c.Topology == "" {
		return genrtp.Errorf(genrtp.ConfigError, "topology file is required")
	}
	if _, err := boundary.ParseForceField(c.ForceField); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return genrtp.Errorf(genrtp.ConfigError, "log.level: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return genrtp.Errorf(genrtp.ConfigError, "log.format %q is invalid, expected console|json", c.Log.Format)
	}
	_, err := c.Spec()
	return err
}

// Options returns the pipeline options for the configuration, which must
// be valid.
func (c *Config) Options() (convert.Options, error) {
	ff, err := boundary.ParseForceField(c.ForceField)
	if err != nil {
		return convert.Options{}, err
	}
	S, err := c.Spec()
	if err != nil {
		return convert.Options{}, err
	}
	return convert.Options{
		Structure:        c.Structure,
		Topology:         c.Topology,
		ForceField:       ff,
		Residue:          c.Residue,
		Defines:          c.Defines,
		Boundary:         S,
		SkipInconsistent: c.HDB.SkipInconsistent,
		Output: convert.Outputs{
			Structure: c.Output.Structure,
			Template:  c.Output.Template,
			HDB:       c.Output.HDB,
			ITP:       c.Output.ITP,
			Report:    c.Output.Report,
		},
	}, nil
}
