package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/birlc/birl/block"
	"github.com/birlc/birl/cache"
	"github.com/birlc/birl/cfg"
	"github.com/birlc/birl/diagnostic"
	"github.com/birlc/birl/dom"
	"github.com/birlc/birl/ir"
	"github.com/birlc/birl/opt"
	"github.com/birlc/birl/output"
	"github.com/birlc/birl/pipeline"
	"github.com/birlc/birl/ssa"
	"github.com/birlc/birl/telemetry"
	"github.com/spf13/cobra"
)

var (
	showBlocks    bool
	showCFG       bool
	showSSA       bool
	pipelinePath  string
	sarifPath     string
	showStats     bool
	cacheDBPath   string
	noCache       bool
	cacheCapacity = 256
)

var compileCmd = &cobra.Command{
	Use:   "compile <path>",
	Short: "Compile a JSON-encoded function IR through blocks, CFG, SSA and optimization",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().BoolVarP(&showBlocks, "blocks", "b", false, "Print basic blocks")
	compileCmd.Flags().BoolVarP(&showCFG, "cfg", "g", false, "Print the CFG with dominator annotations")
	compileCmd.Flags().BoolVarP(&showSSA, "ssa", "s", false, "Print the pruned-SSA form")
	compileCmd.Flags().StringVarP(&pipelinePath, "pipeline", "O", "", "Optimization pipeline YAML file (default: lvn, redundant-assignment, dce)")
	compileCmd.Flags().StringVar(&sarifPath, "sarif", "", "Write diagnostics as SARIF to this path")
	compileCmd.Flags().BoolVar(&showStats, "stats", false, "Print a batch summary after compiling")
	compileCmd.Flags().StringVar(&cacheDBPath, "cache", "", "Path to an on-disk SQLite analysis cache")
	compileCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the analysis cache (both the in-process and on-disk tiers)")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	start := time.Now()
	path := args[0]

	verbosity := output.VerbosityDefault
	if verboseFlag {
		verbosity = output.VerbosityVerbose
	}
	logger := output.NewLogger(verbosity)
	printer := output.NewIRPrinter()

	var diagnostics []diagnostic.Diagnostic
	stats := output.BatchStats{}

	data, err := os.ReadFile(path)
	if err != nil {
		telemetry.ReportEventWithProperties(telemetry.CompileFailed, map[string]interface{}{"stage": "io"})
		return fmt.Errorf("compile: reading %s: %w", path, err)
	}

	program, err := ir.Load(data)
	if err != nil {
		telemetry.ReportEventWithProperties(telemetry.CompileFailed, map[string]interface{}{"stage": "load"})
		return fmt.Errorf("compile: %w", err)
	}

	var analysisCache *cache.Cache
	if !noCache {
		var cerr error
		if cacheDBPath != "" {
			analysisCache, cerr = cache.Open(cacheCapacity, cacheDBPath)
		} else {
			analysisCache, cerr = cache.New(cacheCapacity)
		}
		if cerr != nil {
			return fmt.Errorf("compile: opening cache: %w", cerr)
		}
		defer analysisCache.Close()
	}

	pipelineCfg := pipeline.Default()
	if pipelinePath != "" {
		raw, err := os.ReadFile(pipelinePath)
		if err != nil {
			return fmt.Errorf("compile: reading pipeline config %s: %w", pipelinePath, err)
		}
		pipelineCfg, err = pipeline.Load(raw)
		if err != nil {
			return fmt.Errorf("compile: %w", err)
		}
	}
	passNames := make([]string, len(pipelineCfg.Passes))
	for i, p := range pipelineCfg.Passes {
		passNames[i] = string(p)
	}

	stats.TotalFunctions = len(program.Functions)

	for _, fn := range program.Functions {
		logger.Stage("compiling %s", fn.Name)

		fb, err := block.Build(fn)
		if err != nil {
			stats.RejectedFunctions++
			diagnostics = append(diagnostics, diagnostic.NewFunctionDiagnostic(
				diagnostic.StageBlock, diagnostic.SeverityError, fn.Name, err.Error()))
			continue
		}
		if len(fb.Blocks) == 0 {
			continue
		}
		stats.TotalBlocks += len(fb.Blocks)
		for _, b := range fb.Blocks {
			stats.TotalInstrs += len(b.Instrs)
		}

		graph, err := cfg.Build(fb)
		if err != nil {
			stats.RejectedFunctions++
			diagnostics = append(diagnostics, diagnostic.NewFunctionDiagnostic(
				diagnostic.StageCFG, diagnostic.SeverityError, fn.Name, err.Error()))
			continue
		}

		if showBlocks {
			printer.PrintBlocks(fn, graph)
		}

		domInfo := dom.Analyze(graph)

		if showCFG {
			printer.PrintCFG(fn, graph, domInfo)
		}

		var cacheKey cache.Key
		var ssaBlocks map[int][]*ir.Instruction
		var appliedPasses []string
		var renameFailures []*ir.Instruction

		if analysisCache != nil {
			cacheKey = cache.ComputeKey(fn)
			if entry, hit := analysisCache.Get(cacheKey); hit {
				logger.CacheHit(fn.Name)
				ssaBlocks = entry.Blocks
				appliedPasses = entry.AppliedPasses
			}
		}

		if ssaBlocks == nil {
			builder := ssa.NewBuilder(graph, domInfo)
			ssaBlocks = builder.Convert()
			renameFailures = builder.RenameFailures
		}

		for _, failure := range renameFailures {
			stats.RenameFailures++
			diagnostics = append(diagnostics, diagnostic.NewFunctionDiagnostic(
				diagnostic.StageSSA, diagnostic.SeverityWarning, fn.Name,
				fmt.Sprintf("%s instruction with args %v reads a variable with no reaching definition", failure.Op, failure.Args)))
		}

		remaining := pendingPasses(passNames, appliedPasses)
		if len(remaining) > 0 {
			runPipeline(ssaBlocks, pipeline.Config{Passes: toPassNames(remaining), Repeat: pipelineCfg.Repeat})
			appliedPasses = passNames
		}

		if showSSA {
			printer.PrintSSA(fn, graph, ssaBlocks)
		}

		if analysisCache != nil {
			_ = analysisCache.Put(cacheKey, cache.Entry{Blocks: ssaBlocks, AppliedPasses: appliedPasses})
		}
	}

	if sarifPath != "" {
		f, err := os.Create(sarifPath)
		if err != nil {
			return fmt.Errorf("compile: creating %s: %w", sarifPath, err)
		}
		defer f.Close()
		if err := diagnostic.NewSARIFFormatterWithWriter(f).Format(diagnostics); err != nil {
			return fmt.Errorf("compile: writing SARIF: %w", err)
		}
	}

	stats.Elapsed = time.Since(start)
	if showStats {
		stats.Print(os.Stderr, logger.IsTTY())
	}

	exitCode := output.DetermineExitCode(false, false, stats.TotalFunctions, stats.RejectedFunctions)
	if exitCode == output.ExitCodeSuccess {
		telemetry.ReportEventWithProperties(telemetry.CompileCompleted, map[string]interface{}{
			"functions": stats.TotalFunctions,
			"blocks":    stats.TotalBlocks,
			"instrs":    stats.TotalInstrs,
		})
	} else {
		telemetry.ReportEventWithProperties(telemetry.CompileFailed, map[string]interface{}{
			"functions": stats.TotalFunctions,
			"rejected":  stats.RejectedFunctions,
		})
		return fmt.Errorf("compile: every function was rejected")
	}

	return nil
}

// runPipeline applies the configured optimization passes to every block's
// instruction stream in place, repeating to a fixpoint when Repeat is set.
func runPipeline(blocks map[int][]*ir.Instruction, pipelineCfg pipeline.Config) {
	apply := func() {
		for _, p := range pipelineCfg.Passes {
			switch p {
			case pipeline.PassLVN:
				for id, instrs := range blocks {
					blocks[id] = opt.LocalValueNumbering(instrs)
				}
			case pipeline.PassRedundantAssignment:
				for id, instrs := range blocks {
					blocks[id] = opt.EliminateRedundantAssignments(instrs)
				}
			case pipeline.PassGlobalDCE:
				opt.GlobalDCE(blocks)
			}
		}
	}

	apply()
	if pipelineCfg.Repeat {
		for {
			before := countInstrs(blocks)
			apply()
			if countInstrs(blocks) == before {
				break
			}
		}
	}
}

func countInstrs(blocks map[int][]*ir.Instruction) int {
	n := 0
	for _, instrs := range blocks {
		n += len(instrs)
	}
	return n
}

// pendingPasses returns the requested passes not already covered by a
// cached entry's applied list. When applied is a prefix of requested,
// possibly all of it (the common case: the same pipeline, or a pipeline extended
// with extra trailing passes), only the suffix is returned. Any other
// relationship — a differently ordered or substituted pipeline — is
// treated as no overlap at all, and every requested pass re-runs.
func pendingPasses(requested, applied []string) []string {
	if len(applied) == 0 {
		return requested
	}
	if len(applied) > len(requested) {
		return requested
	}
	for i, p := range applied {
		if requested[i] != p {
			return requested
		}
	}
	return requested[len(applied):]
}

func toPassNames(names []string) []pipeline.PassName {
	out := make([]pipeline.PassName, len(names))
	for i, n := range names {
		out[i] = pipeline.PassName(n)
	}
	return out
}
