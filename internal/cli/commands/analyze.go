// Package commands implements the sqllineage CLI's subcommands, one
// file per command.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/sqllineage/internal/cli/config"
	"github.com/leapstack-labs/sqllineage/internal/cli/output"
	"github.com/leapstack-labs/sqllineage/internal/schema"
	"github.com/leapstack-labs/sqllineage/pkg/lineage"
)

// AnalyzeOptions holds the query-selection flags the analyze command
// recognizes: which of trace/impact/explain/list-tables/export to
// render. Everything that shapes the analysis itself lives on
// *config.Config instead.
type AnalyzeOptions struct {
	Trace      string
	Impact     string
	Explain    string
	ListTables bool
	Export     string
}

// RunAnalyze loads scriptPath, runs the full analysis pipeline under
// cfg, and renders whichever of opts' query flags was requested
// (trace, impact, explain, list-tables, export), defaulting to a
// summary view.
func RunAnalyze(scriptPath string, cfg *config.Config, opts AnalyzeOptions) error {
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return exitCode(ExitScriptNotFound, fmt.Errorf("script not found: %s: %w", scriptPath, err))
	}

	var provider lineage.SchemaProvider
	if cfg.SchemaFile != "" {
		dict, err := schema.LoadDictFromFile(cfg.SchemaFile)
		if err != nil {
			return exitCode(ExitSchemaFileNotFound, err)
		}
		provider = dict
	}

	lcfg := cfg.ToLineageConfig(provider)

	result, err := lineage.AnalyzeScript(string(data), lcfg)
	if err != nil {
		return exitCode(ExitAnalysisFailure, err)
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "run %s: %d statement(s)\n", result.RunID, len(result.Statements))
	}

	mode := output.Mode(cfg.OutputFormat)
	if mode == "" {
		mode = output.ModePretty
	}
	r := output.NewRenderer(os.Stdout, mode)
	r.NoColor = cfg.NoColor

	var renderErr error
	switch {
	case opts.Trace != "":
		renderErr = runTrace(r, result, opts.Trace, cfg.MaxDepth)
	case opts.Impact != "":
		renderErr = runImpact(r, result, opts.Impact, cfg.MaxDepth)
	case opts.Explain != "":
		renderErr = runExplain(r, result, opts.Explain, cfg.MaxDepth)
	case opts.ListTables:
		renderErr = r.RenderListTables(result.Registry)
	case opts.Export != "":
		renderErr = runExport(result, opts.Export)
	default:
		renderErr = r.RenderListTables(result.Registry)
	}
	if renderErr != nil {
		return exitCode(ExitAnalysisFailure, renderErr)
	}

	if !cfg.NoWarnings && result.Warnings.Count("") > 0 {
		if err := r.RenderWarnings(result.Warnings); err != nil {
			return exitCode(ExitAnalysisFailure, err)
		}
	}

	if failed := failedStatements(result); failed > 0 {
		return exitCode(ExitAnalysisFailure, fmt.Errorf("%d statement(s) failed analysis", failed))
	}
	if cfg.Strict && result.Warnings.HasErrors() {
		return exitCode(ExitAnalysisFailure, fmt.Errorf("strict mode: analysis reported errors"))
	}
	return nil
}

func failedStatements(result *lineage.ScriptResult) int {
	n := 0
	for _, s := range result.Statements {
		if s.Err != nil {
			n++
		}
	}
	return n
}

func runTrace(r *output.Renderer, result *lineage.ScriptResult, arg string, maxDepth int) error {
	target, err := parseColumnArg(arg)
	if err != nil {
		return err
	}
	resolver := lineage.NewTransitiveResolver(result.Registry, maxDepth)
	return r.RenderTrace(target, resolver.TraceToSource(target))
}

func runImpact(r *output.Renderer, result *lineage.ScriptResult, arg string, maxDepth int) error {
	source, err := parseColumnArg(arg)
	if err != nil {
		return err
	}
	resolver := lineage.NewTransitiveResolver(result.Registry, maxDepth)
	return r.RenderImpact(source, resolver.ImpactSet(source))
}

func runExplain(r *output.Renderer, result *lineage.ScriptResult, arg string, maxDepth int) error {
	target, err := parseColumnArg(arg)
	if err != nil {
		return err
	}
	resolver := lineage.NewTransitiveResolver(result.Registry, maxDepth)
	exp, err := resolver.ExplainCalculation(target)
	if err != nil {
		return err
	}
	return r.RenderExplain(exp)
}

func runExport(result *lineage.ScriptResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file %s: %w", path, err)
	}
	defer f.Close()
	return output.RenderExport(f, lineage.BuildExport(result))
}

// parseColumnArg splits a dotted "TABLE.COLUMN" (or
// "SCHEMA.TABLE.COLUMN" / "DATABASE.SCHEMA.TABLE.COLUMN") CLI argument
// into a ColumnRef, the form --trace/--impact/--explain take.
func parseColumnArg(arg string) (lineage.ColumnRef, error) {
	parts := strings.Split(arg, ".")
	if len(parts) < 2 {
		return lineage.ColumnRef{}, fmt.Errorf("invalid TABLE.COLUMN argument %q: expected at least one dot", arg)
	}
	column := parts[len(parts)-1]
	tableParts := parts[:len(parts)-1]
	ref := lineage.NewColumnRef(tableParts[len(tableParts)-1], column)
	if len(tableParts) >= 2 {
		ref.Schema = tableParts[len(tableParts)-2]
	}
	if len(tableParts) >= 3 {
		ref.Database = tableParts[len(tableParts)-3]
	}
	return ref, nil
}

// exitError pairs an error with the process exit code it should cause,
// so Execute's single caller in cmd/sqllineage/main.go can translate any
// command failure into the right code without each RunE calling os.Exit
// itself.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// Code returns the exit code an error returned by RunAnalyze should
// cause, or ExitAnalysisFailure if err wasn't tagged with one.
func Code(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exitError); ok {
		return ee.code
	}
	return ExitAnalysisFailure
}

// Exit codes.
const (
	ExitAnalysisFailure    = 1
	ExitScriptNotFound     = 2
	ExitSchemaFileNotFound = 3
)
