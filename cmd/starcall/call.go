package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/starcall/internal/config"
	"github.com/inodb/starcall/internal/gene"
	"github.com/inodb/starcall/internal/logx"
	"github.com/inodb/starcall/internal/output"
	"github.com/inodb/starcall/internal/pgx"
	"github.com/inodb/starcall/internal/resultcache"
	"github.com/inodb/starcall/internal/translation"
	"github.com/inodb/starcall/internal/variantsource"
)

type callFlags struct {
	translationTables string
	vcfPath           string
	sample            string
	assembly          string
	maxHaps           int
	optimalDecay      int
	solver            string
	phased            bool
	outputFormat      string
	outputFile        string
	cachePath         string
	workers           int
	verbose           bool
}

func newCallCmd() *cobra.Command {
	f := &callFlags{}

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Call diplotypes for every sample in a VCF",
		Example: `  starcall call --translation-tables tables/ --vcf cohort.vcf
  starcall call --translation-tables CYP2D6.tsv --vcf sample.vcf --sample NA12878 -f vcf -o calls.vcf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.translationTables, "translation-tables", "", "Translation table file, or a directory of them (required)")
	flags.StringVar(&f.vcfPath, "vcf", "", "Input VCF path (required)")
	flags.StringVar(&f.sample, "sample", "", "Restrict calling to a single sample (default: every sample in the VCF)")
	flags.StringVar(&f.assembly, "assembly", "GRCh38", "Genome assembly: GRCh37 or GRCh38")
	flags.IntVar(&f.maxHaps, "max-haps", 2, "Diploid cardinality cap")
	flags.IntVar(&f.optimalDecay, "optimal-decay", 0, "Allowed objective gap for alternate-optimum enumeration")
	flags.StringVar(&f.solver, "solver", "CBC", "MILP solver to emulate: CBC or GLPK")
	flags.BoolVar(&f.phased, "phased", false, "Enable the phase-compatibility pre-filter")
	flags.StringVarP(&f.outputFormat, "output-format", "f", "tab", "Output format: tab or vcf")
	flags.StringVarP(&f.outputFile, "output", "o", "", "Output file (default: stdout)")
	flags.StringVar(&f.cachePath, "cache", "", "DuckDB result-cache path (default: no result cache)")
	flags.IntVar(&f.workers, "workers", 4, "Number of samples to call concurrently")
	flags.BoolVar(&f.verbose, "verbose", false, "Log at debug level to stderr (progress and warnings are logged at info level either way)")

	cmd.MarkFlagRequired("translation-tables")
	cmd.MarkFlagRequired("vcf")

	// A flag given on the command line overrides ~/.starcall.yaml; an
	// unset flag leaves the file's value (or the default) in place.
	viper.BindPFlag("max_haps", flags.Lookup("max-haps"))
	viper.BindPFlag("optimal_decay", flags.Lookup("optimal-decay"))
	viper.BindPFlag("solver", flags.Lookup("solver"))
	viper.BindPFlag("phased", flags.Lookup("phased"))

	return cmd
}

func runCall(f *callFlags) error {
	if f.assembly != "GRCh37" && f.assembly != "GRCh38" {
		return fmt.Errorf("unknown assembly %q (want GRCh37 or GRCh38)", f.assembly)
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger := logx.New(f.verbose)
	defer logger.Sync()

	tablePaths, err := resolveTablePaths(f.translationTables)
	if err != nil {
		return err
	}
	if len(tablePaths) == 0 {
		return fmt.Errorf("no translation tables found at %s", f.translationTables)
	}

	if _, err := os.Stat(f.vcfPath); err != nil {
		return fmt.Errorf("open vcf %s: %w", f.vcfPath, err)
	}
	src := variantsource.NewVCFSource(f.vcfPath)

	loader := translation.NewLoader(cfg)
	contexts := make([]*gene.Context, 0, len(tablePaths))
	for _, path := range tablePaths {
		table, err := loader.Load(path)
		if err != nil {
			return fmt.Errorf("load translation table: %w", err)
		}
		contexts = append(contexts, gene.New(table, cfg))
	}

	var cache *resultcache.Store
	if f.cachePath != "" {
		cache, err = resultcache.Open(f.cachePath)
		if err != nil {
			return fmt.Errorf("open result cache: %w", err)
		}
		defer cache.Close()
	}
	runID := resultcache.NewRunID()

	out := os.Stdout
	if f.outputFile != "" {
		out, err = os.Create(f.outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
	}

	caller := pgx.NewCaller(cfg, logger)

	switch f.outputFormat {
	case "tab":
		return callToTab(caller, contexts, src, f, out, cache, runID, logger)
	case "vcf":
		return callToVCF(caller, contexts, src, f, out, cache, runID, logger)
	default:
		return fmt.Errorf("unknown output format %q (want tab or vcf)", f.outputFormat)
	}
}

func callToTab(caller *pgx.Caller, contexts []*gene.Context, src variantsource.VariantSource, f *callFlags, out *os.File, cache *resultcache.Store, runID string, logger *logx.Logger) error {
	tw, err := output.NewTabWriter(out)
	if err != nil {
		return fmt.Errorf("write tab header: %w", err)
	}

	for _, ctx := range contexts {
		genotypes, err := ctx.FetchGenotypes(src)
		if err != nil {
			return fmt.Errorf("fetch genotypes for %s: %w", ctx.Gene, err)
		}

		samples, err := filterCached(cache, ctx.Gene, selectSamples(genotypes, f.sample), logger)
		if err != nil {
			return err
		}
		items := make(chan pgx.WorkItem, len(samples))
		for i, s := range samples {
			items <- pgx.WorkItem{Seq: i, Context: ctx, Sample: s, Genotypes: genotypes}
		}
		close(items)

		results := caller.ParallelCall(items, f.workers)
		err = pgx.OrderedCollect(results, func(res pgx.WorkResult) error {
			if res.Err != nil {
				logger.Warnf("call failed for %s/%s: %v", ctx.Gene, res.Call.Sample, res.Err)
				return nil
			}
			if cache != nil {
				if err := cache.WriteCall(runID, ctx.Chromosome, res.Call); err != nil {
					return fmt.Errorf("cache write: %w", err)
				}
			}
			return tw.WriteCall(res.Call)
		})
		if err != nil {
			return err
		}
	}

	return tw.Flush()
}

func callToVCF(caller *pgx.Caller, contexts []*gene.Context, src variantsource.VariantSource, f *callFlags, out *os.File, cache *resultcache.Store, runID string, logger *logx.Logger) error {
	allSamples := map[string]bool{}
	perGeneGenotypes := make([]map[string]map[string]*variantsource.ObservedGenotype, len(contexts))
	for i, ctx := range contexts {
		genotypes, err := ctx.FetchGenotypes(src)
		if err != nil {
			return fmt.Errorf("fetch genotypes for %s: %w", ctx.Gene, err)
		}
		perGeneGenotypes[i] = genotypes
		for _, s := range selectSamples(genotypes, f.sample) {
			allSamples[s] = true
		}
	}

	samples := make([]string, 0, len(allSamples))
	for s := range allSamples {
		samples = append(samples, s)
	}
	sort.Strings(samples)

	vw, err := output.NewVCFWriter(out, samples)
	if err != nil {
		return fmt.Errorf("write vcf header: %w", err)
	}

	for i, ctx := range contexts {
		genotypes := perGeneGenotypes[i]
		calls := make(map[string]*pgx.CallResult, len(samples))

		toCall, err := filterCached(cache, ctx.Gene, samples, logger)
		if err != nil {
			return err
		}
		items := make(chan pgx.WorkItem, len(toCall))
		for j, s := range toCall {
			items <- pgx.WorkItem{Seq: j, Context: ctx, Sample: s, Genotypes: genotypes}
		}
		close(items)

		results := caller.ParallelCall(items, f.workers)
		err = pgx.OrderedCollectWithProgress(results, 2*time.Second, func(n int) {
			logger.Infof("%s: called %d/%d samples", ctx.Gene, n, len(samples))
		}, func(res pgx.WorkResult) error {
			if res.Err != nil {
				logger.Warnf("call failed for %s/%s: %v", ctx.Gene, res.Call.Sample, res.Err)
				return nil
			}
			if cache != nil {
				if err := cache.WriteCall(runID, ctx.Chromosome, res.Call); err != nil {
					return fmt.Errorf("cache write: %w", err)
				}
			}
			calls[res.Call.Sample] = res.Call
			return nil
		})
		if err != nil {
			return err
		}

		pos, _, ok := ctx.Table.MinMaxStart()
		if !ok {
			pos = 0
		}
		if err := vw.WriteGene(ctx.Gene, ctx.Chromosome, pos, ctx.ReferenceName, calls); err != nil {
			return fmt.Errorf("write vcf record for %s: %w", ctx.Gene, err)
		}
	}

	return vw.Flush()
}

// filterCached drops every sample already cached for gene in a prior run,
// so a repeat call invocation against the same translation tables and VCF
// skips re-solving them (internal/resultcache.Store.Called).
func filterCached(cache *resultcache.Store, gene string, samples []string, logger *logx.Logger) ([]string, error) {
	if cache == nil {
		return samples, nil
	}

	fresh := make([]string, 0, len(samples))
	skipped := 0
	for _, s := range samples {
		called, err := cache.Called(s, gene)
		if err != nil {
			return nil, fmt.Errorf("check result cache: %w", err)
		}
		if called {
			skipped++
			continue
		}
		fresh = append(fresh, s)
	}
	if skipped > 0 {
		logger.Infof("%s: skipping %d/%d samples already cached", gene, skipped, len(samples))
	}
	return fresh, nil
}

// selectSamples returns every sample observed in genotypes, or just
// sampleFilter when non-empty.
func selectSamples(genotypes map[string]map[string]*variantsource.ObservedGenotype, sampleFilter string) []string {
	if sampleFilter != "" {
		return []string{sampleFilter}
	}

	seen := map[string]bool{}
	for _, bySample := range genotypes {
		for s := range bySample {
			seen[s] = true
		}
	}
	samples := make([]string, 0, len(seen))
	for s := range seen {
		samples = append(samples, s)
	}
	sort.Strings(samples)
	return samples
}

// resolveTablePaths expands path into the translation-table files it
// names: itself if it is a file, or every non-".cnv" file directly inside
// it if it is a directory (spec.md SUPPLEMENTED FEATURES: directory-mode
// translation-table loading).
func resolveTablePaths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", path, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".cnv") {
			continue
		}
		paths = append(paths, filepath.Join(path, name))
	}
	sort.Strings(paths)
	return paths, nil
}
