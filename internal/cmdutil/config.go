package cmdutil

import (
	"fmt"

	"github.com/spf13/viper"
)

// StoreConfig is the optional --config file's shape: on-disk locations of
// the shared KV-backed annotation stores and SV background databases, so
// operators don't repeat every --path-* flag across every case.
type StoreConfig struct {
	GnomadExomes  string
	GnomadGenomes string
	GnomadMt      string
	HelixMt       string
	InHouseSeq    string
	ClinVar       string
	GeneMetadata  string

	DbVar       string
	Dgv         string
	DgvGs       string
	G1000       string
	GnomadSvV2  string
	GnomadSvV4  string
	GnomadCnvV4 string
	InHouseSv   string
	ClinVarSv   string
}

// LoadStoreConfig reads a TOML/YAML/JSON config file (format inferred from
// its extension) into a StoreConfig. An empty path returns the zero value
// (every store slot unconfigured), not an error.
func LoadStoreConfig(path string) (*StoreConfig, error) {
	if path == "" {
		return &StoreConfig{}, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cmdutil: reading store config %s: %w", path, err)
	}
	var cfg StoreConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cmdutil: parsing store config %s: %w", path, err)
	}
	return &cfg, nil
}
