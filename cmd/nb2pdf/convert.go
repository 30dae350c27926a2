package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	nb2pdf "github.com/alnah/go-nb2pdf"
	"github.com/alnah/go-nb2pdf/internal/config"
)

// dirPermissions is used for created output directories.
const dirPermissions = 0o750

// Sentinel errors for batch operations.
var (
	ErrNoInput       = errors.New("no input specified")
	ErrReadNotebook  = errors.New("failed to read notebook file")
	ErrWriteOutput   = errors.New("failed to write output file")
	ErrConverterInit = errors.New("failed to initialize converter")
)

// CLIConverter is the interface the batch runner needs from a converter.
type CLIConverter interface {
	Convert(ctx context.Context, input nb2pdf.Input) (*nb2pdf.ConvertResult, error)
}

var _ CLIConverter = (*nb2pdf.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (CLIConverter, error)
	Release(CLIConverter)
	Size() int
}

// converterPool adapts nb2pdf.ConverterPool to the Pool interface.
type converterPool struct {
	pool *nb2pdf.ConverterPool
	size int
}

var _ Pool = (*converterPool)(nil)

func newConverterPool(size int, opts ...nb2pdf.Option) *converterPool {
	return &converterPool{
		pool: nb2pdf.NewConverterPool(size, opts...),
		size: nb2pdf.ResolvePoolSize(size),
	}
}

func (p *converterPool) Acquire() (CLIConverter, error) {
	return p.pool.Acquire()
}

func (p *converterPool) Release(c CLIConverter) {
	conv, _ := c.(*nb2pdf.Converter)
	p.pool.Release(conv)
}

func (p *converterPool) Size() int { return p.size }

func (p *converterPool) Close() error { return p.pool.CloseAll() }

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Warnings   []string
	Err        error
	Duration   time.Duration
}

// conversionParams groups parameters shared across the batch.
type conversionParams struct {
	cfg      *config.Config
	html     bool
	htmlOnly bool
}

// runConvert orchestrates a conversion run. A nil pool is replaced by a
// production pool built from the resolved options.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, pool Pool, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	var err error
	if flags.common.config != "" {
		cfg, err = config.LoadConfig(flags.common.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	mergeFlags(flags, cfg)

	inputPaths, err := resolveInputPaths(positionalArgs, cfg)
	if err != nil {
		return err
	}

	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPaths, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no notebooks found in %v", inputPaths)
	}

	if pool == nil {
		p := newConverterPool(flags.workers, converterOptions(flags, cfg)...)
		defer func() { _ = p.Close() }()
		pool = p

		if flags.common.verbose {
			fmt.Fprintf(env.Stderr, "Pool size: %d\n", p.Size())
		}
	}

	params := &conversionParams{
		cfg:      cfg,
		html:     flags.outputMode.html,
		htmlOnly: flags.outputMode.htmlOnly,
	}

	results := convertBatch(ctx, pool, files, params)

	failedCount := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return fmt.Errorf("%d conversion(s) failed", failedCount)
	}
	return nil
}

// mergeFlags merges CLI flags into config. CLI values win.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.document.title != "" {
		cfg.Document.Title = flags.document.title
	}
	if flags.document.subtitle != "" {
		cfg.Document.Subtitle = flags.document.subtitle
	}
	if flags.document.accentColor != "" {
		cfg.Document.AccentColor = flags.document.accentColor
	}
	if flags.page.size != "" {
		cfg.Page.Size = flags.page.size
	}
	if flags.page.margin != 0 {
		cfg.Page.Margin = flags.page.margin
	}
	if flags.toc.title != "" {
		cfg.TOC.Title = flags.toc.title
	}
	if flags.toc.depth > 0 {
		cfg.TOC.Depth = flags.toc.depth
	}
	if flags.style.style != "" {
		cfg.Style.Name = flags.style.style
	}

	if flags.toc.disabled {
		cfg.TOC.Enabled = false
	}
	if flags.document.noTitlePage {
		cfg.TitlePage.Enabled = false
	}
}

// converterOptions builds converter options from flags and config.
func converterOptions(flags *convertFlags, cfg *config.Config) []nb2pdf.Option {
	var opts []nb2pdf.Option
	if flags.timeout > 0 {
		opts = append(opts, nb2pdf.WithTimeout(flags.timeout))
	}
	if flags.mathTimeout > 0 {
		opts = append(opts, nb2pdf.WithMathTimeout(flags.mathTimeout))
	}
	if cfg.Style.Name != "" {
		opts = append(opts, nb2pdf.WithStyle(cfg.Style.Name))
	}
	return opts
}

// resolveInputPaths determines input paths from args or config.
func resolveInputPaths(args []string, cfg *config.Config) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if cfg.Input.DefaultDir != "" {
		return []string{cfg.Input.DefaultDir}, nil
	}
	return nil, ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// buildInput assembles the conversion input for one notebook.
func buildInput(cfg *config.Config, data []byte, sourceName string, htmlOnly bool) nb2pdf.Input {
	input := nb2pdf.Input{
		Notebook:    data,
		SourceName:  sourceName,
		AccentColor: cfg.Document.AccentColor,
		HTMLOnly:    htmlOnly,
	}

	if cfg.TitlePage.Enabled {
		input.Title = cfg.Document.Title
		input.Subtitle = cfg.Document.Subtitle
	}

	if cfg.Page.Size != "" || cfg.Page.Margin != 0 {
		page := nb2pdf.DefaultPageSettings()
		if cfg.Page.Size != "" {
			page.Size = cfg.Page.Size
		}
		if cfg.Page.Margin != 0 {
			page.Margin = cfg.Page.Margin
		}
		input.Page = page
	}

	if cfg.TOC.Enabled {
		input.TOC = &nb2pdf.TOC{Title: cfg.TOC.Title, MaxDepth: cfg.TOC.Depth}
	}

	return input
}

// convertBatch processes notebooks concurrently using the pool.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("%w: %v", ErrConverterInit, err),
					}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single notebook and returns the result.
// Output files are written atomically so a failed write never leaves a
// truncated artifact behind.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	defer func() { result.Duration = time.Since(start) }()

	data, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadNotebook, err)
		return result
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		result.Err = fmt.Errorf("creating output directory: %w", err)
		return result
	}

	convResult, err := conv.Convert(ctx, buildInput(params.cfg, data, filepath.Base(f.InputPath), params.htmlOnly))
	if err != nil {
		result.Err = err
		return result
	}
	result.Warnings = convResult.Warnings

	if params.htmlOnly || params.html {
		htmlPath := htmlOutputPath(f.OutputPath)
		if err := atomic.WriteFile(htmlPath, bytes.NewReader(convResult.HTML)); err != nil {
			result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
			return result
		}
		if params.htmlOnly {
			result.OutputPath = htmlPath
			return result
		}
	}

	if err := atomic.WriteFile(f.OutputPath, bytes.NewReader(convResult.PDF)); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
		return result
	}

	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results and returns the
// failure count. Warnings go to stderr even in quiet mode; a degraded
// document is something the user should know about.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		for _, warning := range r.Warnings {
			fmt.Fprintf(env.Stderr, "WARNING %s: %s\n", r.InputPath, warning)
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
