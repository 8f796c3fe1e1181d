// Package pgx orchestrates the per-(sample, gene) call: builds a Matcher,
// an ILP Model, runs the Solver Driver, and assembles the final diplotype
// result. Genes are independent and genes' Contexts are read-only, so the
// work across samples and genes is embarrassingly parallel (spec.md §5);
// ParallelCall below is adapted directly from the teacher's
// internal/annotate/parallel.go worker-pool pattern, generalized from
// per-variant annotation to per-(sample, gene) diplotype calling.
package pgx

import (
	"runtime"
	"sync"
	"time"

	"github.com/inodb/starcall/internal/config"
	"github.com/inodb/starcall/internal/diplotype"
	"github.com/inodb/starcall/internal/gene"
	"github.com/inodb/starcall/internal/ilp"
	"github.com/inodb/starcall/internal/logx"
	"github.com/inodb/starcall/internal/match"
	"github.com/inodb/starcall/internal/normalize"
	"github.com/inodb/starcall/internal/variantsource"
)

// Caller runs the full per-(sample, gene) pipeline against a shared
// configuration, normalizer, and logger.
type Caller struct {
	cfg        *config.Config
	normalizer *normalize.Normalizer
	logger     *logx.Logger
}

// NewCaller builds a Caller. logger may be nil, in which case logx.Nop()
// is used.
func NewCaller(cfg *config.Config, logger *logx.Logger) *Caller {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Caller{
		cfg:        cfg,
		normalizer: normalize.New(cfg.IUPACCodes),
		logger:     logger,
	}
}

// CallResult is one (sample, gene) pipeline output, or NA when the sample
// had no observed variants in the gene's window.
type CallResult struct {
	Sample string
	Gene   string
	NA     bool
	Result *diplotype.Result
}

// Call runs the matcher, ILP build/solve, and assembly for one
// (sample, gene) pair using genotypes already fetched for ctx's window.
func (c *Caller) Call(ctx *gene.Context, sampleID string, genotypes map[string]map[string]*variantsource.ObservedGenotype) *CallResult {
	m := match.New(c.normalizer, c.cfg.MissingVariants)
	matched := m.Match(ctx, sampleID, genotypes)
	if matched.NoVariants {
		c.logger.Warnf("gene %s sample %s: no observed variants in window, reporting NA", ctx.Gene, sampleID)
		return &CallResult{Sample: sampleID, Gene: ctx.Gene, NA: true}
	}

	driver := ilp.NewDriver(c.cfg.OptimalDecay, c.logger.With("sample", sampleID, "gene", ctx.Gene))
	model, solutions := ilp.RunWithModel(driver, matched, c.cfg.MaxHaps, c.cfg.Phased)

	observedVariants := len(matched.Variants)
	assembled := diplotype.Assemble(ctx.ReferenceName, model, solutions, observedVariants)

	if len(assembled.Calls) > 1 {
		c.logger.Infof("gene %s sample %s: %d possible diplotypes", ctx.Gene, sampleID, len(assembled.Calls))
	}

	return &CallResult{Sample: sampleID, Gene: ctx.Gene, Result: assembled}
}

// WorkItem is one queued (sample, gene) call.
type WorkItem struct {
	Seq       int
	Context   *gene.Context
	Sample    string
	Genotypes map[string]map[string]*variantsource.ObservedGenotype
}

// WorkResult is the outcome of processing one WorkItem.
type WorkResult struct {
	Seq  int
	Call *CallResult
	Err  error
}

// ParallelCall calls items through a pool of workers. Results arrive on
// the returned channel in completion order, not sequence order; use
// OrderedCollect to restore sequence order. If workers is 0,
// runtime.NumCPU() is used.
func (c *Caller) ParallelCall(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				call := c.Call(item.Context, item.Sample, item.Genotypes)
				results <- WorkResult{Seq: item.Seq, Call: call}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order,
// buffering out-of-order arrivals until the next expected sequence number
// is available. Blocks until results is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	return OrderedCollectWithProgress(results, 0, nil, fn)
}

// OrderedCollectWithProgress is like OrderedCollect but periodically calls
// progress with the number of items processed so far.
func OrderedCollectWithProgress(results <-chan WorkResult, interval time.Duration, progress func(int), fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	var ticker *time.Ticker
	var tickC <-chan time.Time
	if interval > 0 && progress != nil {
		ticker = time.NewTicker(interval)
		tickC = ticker.C
		defer ticker.Stop()
	}

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				for range results {
				}
				return err
			}
		}

		if tickC != nil {
			select {
			case <-tickC:
				progress(nextSeq)
			default:
			}
		}
	}

	return nil
}
