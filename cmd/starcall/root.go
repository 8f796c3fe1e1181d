package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "starcall",
		Short: "Call pharmacogenomic star-allele diplotypes from a VCF",
		Long: `starcall reads one or more PharmVar-style translation tables and a VCF,
matches each sample's observed genotypes against the defining variants of
every named haplotype, and solves for the most likely diplotype per
(sample, gene) pair.`,
	}

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newCallCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}

	viper.SetConfigFile(filepath.Join(home, ".starcall.yaml"))
	viper.SetConfigType("yaml")
	_ = viper.ReadInConfig() // absence of a config file is not an error
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("starcall version %s (%s) built %s\n", version, commit, date)
			return nil
		},
	}
}
