// Package config holds the explicit, immutable configuration threaded
// through the Gene Context and Matcher. There is no package-level mutable
// configuration; callers build a Config once (typically via viper, see
// Load) and pass it down.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Solver names the external MILP solver the Solver Driver should emulate.
type Solver string

const (
	SolverCBC  Solver = "CBC"
	SolverGLPK Solver = "GLPK"
)

// Config is the full set of options recognised by the pipeline (spec.md §6.3).
type Config struct {
	// ChromosomeAccessions maps a reference-sequence accession (e.g.
	// "NC_000022.11") to a bare chromosome tag (e.g. "22").
	ChromosomeAccessions map[string]string

	// IUPACCodes maps an ambiguity code to its expanded nucleotide set.
	IUPACCodes map[string][]string

	// UpstreamOffset / DownstreamOffset pad the genomic window queried for
	// each gene (5p_offset / 3p_offset).
	UpstreamOffset   int64
	DownstreamOffset int64

	// MissingVariants is the sentinel match value used for "no information".
	MissingVariants int

	// MaxHaps is the diploid cardinality cap (K in the ILP).
	MaxHaps int

	// OptimalDecay is the allowed objective gap for tie enumeration.
	OptimalDecay int

	// Solver selects the MILP backend to emulate.
	Solver Solver

	// Phased enables the phase-compatibility pre-filter.
	Phased bool
}

// Default returns the configuration defaults from spec.md §6.3.
func Default() *Config {
	return &Config{
		ChromosomeAccessions: DefaultChromosomeAccessions(),
		IUPACCodes:           DefaultIUPACCodes(),
		UpstreamOffset:       1000,
		DownstreamOffset:     1000,
		MissingVariants:      99,
		MaxHaps:              2,
		OptimalDecay:         0,
		Solver:               SolverCBC,
		Phased:               false,
	}
}

// Load builds a Config from a viper instance, falling back to Default()
// for anything not set. v is typically populated by cobra flags bound via
// viper.BindPFlag plus a ~/.starcall.yaml config file.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()

	if v == nil {
		return cfg, nil
	}

	if accessions := v.GetStringMapString("chromosome_accessions"); len(accessions) > 0 {
		merged := make(map[string]string, len(accessions))
		for k, val := range accessions {
			merged[strings.ToUpper(k)] = val
		}
		cfg.ChromosomeAccessions = merged
	}

	if codes := v.GetStringMap("iupac_codes"); len(codes) > 0 {
		merged := make(map[string][]string, len(codes))
		for code, raw := range codes {
			switch val := raw.(type) {
			case string:
				merged[strings.ToUpper(code)] = strings.Split(val, "")
			case []interface{}:
				nts := make([]string, 0, len(val))
				for _, n := range val {
					nts = append(nts, fmt.Sprintf("%v", n))
				}
				merged[strings.ToUpper(code)] = nts
			}
		}
		cfg.IUPACCodes = merged
	}

	if v.IsSet("5p_offset") {
		cfg.UpstreamOffset = v.GetInt64("5p_offset")
	}
	if v.IsSet("3p_offset") {
		cfg.DownstreamOffset = v.GetInt64("3p_offset")
	}
	if v.IsSet("missing_variants") {
		cfg.MissingVariants = v.GetInt("missing_variants")
	}
	if v.IsSet("max_haps") {
		cfg.MaxHaps = v.GetInt("max_haps")
	}
	if v.IsSet("optimal_decay") {
		cfg.OptimalDecay = v.GetInt("optimal_decay")
	}
	if s := v.GetString("solver"); s != "" {
		cfg.Solver = Solver(strings.ToUpper(s))
	}
	if v.IsSet("phased") {
		cfg.Phased = v.GetBool("phased")
	}

	if cfg.Solver != SolverCBC && cfg.Solver != SolverGLPK {
		return nil, fmt.Errorf("config: unknown solver %q (want CBC or GLPK)", cfg.Solver)
	}

	return cfg, nil
}
