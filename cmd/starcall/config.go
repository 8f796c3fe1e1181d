package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/starcall/internal/config"
)

// configField binds one cmd/starcall/config CLI key to a field on
// config.Config, so "config get/set" reads and writes the same typed
// struct the call pipeline runs on rather than an untyped viper bag.
type configField struct {
	key  string
	desc string
	get  func(*config.Config) string
	// parse validates raw against the field's type and returns the value
	// viper.Set should store (so a later config.Load produces the same
	// typed field back out).
	parse func(raw string) (interface{}, error)
}

func configFields() []configField {
	return []configField{
		{
			key:  "max_haps",
			desc: "diploid cardinality cap (K) the ILP enumerates",
			get:  func(c *config.Config) string { return strconv.Itoa(c.MaxHaps) },
			parse: func(raw string) (interface{}, error) {
				return parsePositiveInt("max_haps", raw)
			},
		},
		{
			key:  "optimal_decay",
			desc: "objective gap allowed for tie enumeration",
			get:  func(c *config.Config) string { return strconv.Itoa(c.OptimalDecay) },
			parse: func(raw string) (interface{}, error) {
				return parseNonNegativeInt("optimal_decay", raw)
			},
		},
		{
			key:  "missing_variants",
			desc: "sentinel match value meaning \"no information\"",
			get:  func(c *config.Config) string { return strconv.Itoa(c.MissingVariants) },
			parse: func(raw string) (interface{}, error) {
				n, err := strconv.Atoi(raw)
				if err != nil {
					return nil, fmt.Errorf("missing_variants must be an integer: %w", err)
				}
				return n, nil
			},
		},
		{
			key:  "5p_offset",
			desc: "upstream window padding in bp",
			get:  func(c *config.Config) string { return strconv.FormatInt(c.UpstreamOffset, 10) },
			parse: func(raw string) (interface{}, error) {
				return parseNonNegativeInt("5p_offset", raw)
			},
		},
		{
			key:  "3p_offset",
			desc: "downstream window padding in bp",
			get:  func(c *config.Config) string { return strconv.FormatInt(c.DownstreamOffset, 10) },
			parse: func(raw string) (interface{}, error) {
				return parseNonNegativeInt("3p_offset", raw)
			},
		},
		{
			key:  "solver",
			desc: "MILP backend to emulate (CBC or GLPK)",
			get:  func(c *config.Config) string { return string(c.Solver) },
			parse: func(raw string) (interface{}, error) {
				s := config.Solver(strings.ToUpper(raw))
				if s != config.SolverCBC && s != config.SolverGLPK {
					return nil, fmt.Errorf("solver must be CBC or GLPK, got %q", raw)
				}
				return string(s), nil
			},
		},
		{
			key:  "phased",
			desc: "enable the phase-compatibility pre-filter",
			get:  func(c *config.Config) string { return strconv.FormatBool(c.Phased) },
			parse: func(raw string) (interface{}, error) {
				b, err := strconv.ParseBool(raw)
				if err != nil {
					return nil, fmt.Errorf("phased must be true/false: %w", err)
				}
				return b, nil
			},
		},
	}
}

func parsePositiveInt(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be at least 1, got %d", name, n)
	}
	return n, nil
}

func parseNonNegativeInt(name, raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must be non-negative, got %d", name, n)
	}
	return n, nil
}

func findConfigField(key string) (configField, bool) {
	for _, f := range configFields() {
		if f.key == key {
			return f, true
		}
	}
	return configField{}, false
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the starcall Config struct",
		Long:  "Show, get, or set fields of the pipeline's Config (spec.md §6.3). Values are stored in ~/.starcall.yaml.",
		Example: `  starcall config                  # show every Config field
  starcall config set max_haps 3  # allow a three-copy ILP cap
  starcall config get solver      # get the configured solver`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one Config field and persist it to ~/.starcall.yaml",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one Config field's current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

func runConfigShow() error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	fields := configFields()
	for _, f := range fields {
		fmt.Printf("%-18s %-8s # %s\n", f.key, f.get(cfg), f.desc)
	}
	return nil
}

func runConfigSet(key, value string) error {
	field, ok := findConfigField(key)
	if !ok {
		return fmt.Errorf("unknown config key %q (run `starcall config` to list valid keys)", key)
	}

	parsed, err := field.parse(value)
	if err != nil {
		return err
	}
	viper.Set(key, parsed)

	// Validate the whole struct, not just the one field, so a bad solver
	// name set earlier by hand-editing the file is still caught.
	if _, err := config.Load(viper.GetViper()); err != nil {
		return err
	}

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".starcall.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %v in %s\n", key, parsed, cfgFile)
	return nil
}

func runConfigGet(key string) error {
	field, ok := findConfigField(key)
	if !ok {
		return fmt.Errorf("unknown config key %q (run `starcall config` to list valid keys)", key)
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	fmt.Println(field.get(cfg))
	return nil
}
