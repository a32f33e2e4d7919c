package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/cli"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/compare"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/config"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/extract"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/httpapi"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/service"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/store"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/tolerance"
)

func main() {
	exitCode := run(os.Args[1:], os.Environ())
	os.Exit(exitCode)
}

// run orchestrates the full execution flow.
// It returns an exit code (0 for success, non-zero for failure).
// This function is separated from main() to enable testing.
func run(args []string, environ []string) int {
	cmd, err := cli.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	tolPath := cmd.TolerancePath
	if tolPath == "" {
		tolPath = getEnv(environ, "STEPCM_TOLERANCES")
	}
	tol, err := tolerance.LoadFromPath(tolPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load tolerances: %v\n", err)
		return 1
	}

	extractorURL := cmd.ExtractorURL
	if extractorURL == "" {
		extractorURL = getEnv(environ, "STEPCM_EXTRACTOR_URL")
	}
	var extractor extract.Extractor
	if extractorURL != "" {
		extractor = extract.NewClient(extractorURL)
	}
	svc := service.New(extractor, tol)

	baselineDir := cmd.BaselineDir
	if baselineDir == "" {
		baselineDir = store.ResolveDir(environ)
	}
	baselines := store.NewStore(baselineDir)

	ctx := context.Background()

	switch cmd.Subcommand {
	case cli.SubcommandAnalyze:
		report, err := svc.Analyze(ctx, cmd.Refs[0])
		if err != nil {
			return fail(err)
		}
		return printJSON(report)

	case cli.SubcommandCompare:
		return runCompare(ctx, svc, cmd)

	case cli.SubcommandBOM:
		items, err := svc.BOM(ctx, cmd.Refs[0])
		if err != nil {
			return fail(err)
		}
		return printJSON(items)

	case cli.SubcommandGeometry:
		report, err := svc.Geometry(ctx, cmd.Refs[0], cmd.Component)
		if err != nil {
			return fail(err)
		}
		return printJSON(report)

	case cli.SubcommandInterfaces:
		report, err := svc.Interfaces(ctx, cmd.Refs[0])
		if err != nil {
			return fail(err)
		}
		return printJSON(report)

	case cli.SubcommandValidate:
		report, err := svc.Validate(ctx, cmd.Refs[0])
		if err != nil {
			return fail(err)
		}
		return printJSON(report)

	case cli.SubcommandBaseline:
		return runBaseline(ctx, svc, baselines, cmd)

	case cli.SubcommandServe:
		return runServe(svc, baselines)
	}

	fmt.Fprintln(os.Stderr, "Error:", cli.ErrNoSubcommand)
	return 1
}

// runCompare renders human output by default and JSON with --json; --out
// additionally writes the full JSON report to a file.
func runCompare(ctx context.Context, svc *service.Service, cmd cli.Command) int {
	report, err := svc.Compare(ctx, cmd.Refs[0], cmd.Refs[1])
	if err != nil {
		return fail(err)
	}

	jsonReport, err := compare.FormatJSON(report)
	if err != nil {
		return fail(err)
	}

	if cmd.OutPath != "" {
		if err := os.WriteFile(cmd.OutPath, []byte(jsonReport), 0644); err != nil {
			return fail(err)
		}
		fmt.Fprintf(os.Stderr, "comparison report written: %s\n", cmd.OutPath)
	}

	if cmd.JSONOutput {
		fmt.Println(jsonReport)
	} else {
		fmt.Print(compare.FormatCLI(report))
	}
	return 0
}

func runBaseline(ctx context.Context, svc *service.Service, baselines *store.Store, cmd cli.Command) int {
	switch cmd.Action {
	case "save":
		b, err := svc.SaveBaseline(ctx, cmd.Refs[0], baselines)
		if err != nil {
			return fail(err)
		}
		fmt.Printf("baseline saved: %s (%d components)\n", b.BaselineID, len(b.BOM))
		return 0

	case "list":
		summaries, err := baselines.List()
		if err != nil {
			return fail(err)
		}
		if len(summaries) == 0 {
			fmt.Println("no baselines stored")
			return 0
		}
		for _, s := range summaries {
			fmt.Printf("%s  %s  %d components  %s\n", s.BaselineID, s.Timestamp, s.Components, s.File)
		}
		return 0

	case "show":
		b, err := baselines.Load(cmd.Refs[0])
		if err != nil {
			return fail(err)
		}
		return printJSON(b)

	case "delete":
		if err := baselines.Delete(cmd.Refs[0]); err != nil {
			return fail(err)
		}
		fmt.Printf("baseline deleted: %s\n", cmd.Refs[0])
		return 0
	}
	return 1
}

func runServe(svc *service.Service, baselines *store.Store) int {
	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}

	router := httpapi.NewRouter(httpapi.NewHandler(svc, baselines))
	slog.Info("starting tool API", "addr", cfg.Addr, "env", cfg.Env)
	if err := router.Run(cfg.Addr); err != nil {
		return fail(err)
	}
	return 0
}

func printJSON(v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fail(err)
	}
	fmt.Println(string(data))
	return 0
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}

// getEnv finds a variable in an environ-style list.
func getEnv(environ []string, key string) string {
	prefix := key + "="
	for _, env := range environ {
		if strings.HasPrefix(env, prefix) {
			return strings.TrimPrefix(env, prefix)
		}
	}
	return ""
}
