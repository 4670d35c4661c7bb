package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"doctrinecheck/internal/config"
	"doctrinecheck/internal/engine"
	"doctrinecheck/internal/flags"
	"doctrinecheck/internal/logger"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:   "doctrine-check [PATH...]",
	Short: "Check repository trees against the doctrine rules for AI-assistant metadata files",
	Long: `doctrine-check validates local repository trees against the structural
doctrine for AI-assistant project metadata files: AGENTS.md at the root,
CLAUDE.md/GEMINI.md as symlinks to it, no committed secrets, a changelog
with a Keep a Changelog preamble, and so on.

doctrine-check is check-only: it reads the filesystem, reports divergences,
and mutates nothing. It never touches the network.

Examples:
	# Check the current directory
	doctrine-check

	# Check several trees with machine-readable output
	doctrine-check ./svc-a ./svc-b --format json

	# List rules
	doctrine-check rules list

Output:
	Console output is controlled by --format (default: text).
	Structured output can also be written to a file via --out, and a
	Markdown report via --report.

	NDJSON mode emits one JSON object per line. Objects are lifecycle events
	with a "type" field (run.started, target.started, rule.result,
	target.finished, run.finished). A rule result is an event with type
	"rule.result" carrying the result fields inline.

Exit codes:
	0 = clean run, no MUST violations
	1 = at least one MUST violation
	2 = fatal error (check did not complete)

Waivers:
	A target may carry a .doctrine.yml at its root waiving specific rules
	with a reason. Waived violations are reported as PASS with the waiver
	attached, so they stay visible.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(cfg.Runtime.Verbose)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cfg.Targeting.Paths = args

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		eng := engine.NewEngine()
		code := eng.Run(ctx, cfg)
		stop()
		os.Exit(code)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable verbose logging (debug diagnostics on stderr)")

	// Scanning
	rootCmd.Flags().StringSliceVar(&cfg.Targeting.Exclude, flags.FlagExclude, nil, "Extra exclude pattern(s), doublestar syntax, relative to each target root (repeatable; comma-separated accepted)")

	// Rules
	rootCmd.Flags().StringVar(&cfg.Rules.Selector, flags.FlagRules, "", "Comma-separated rule IDs to run (empty = all rules)")
	rootCmd.Flags().StringSliceVar(&cfg.Rules.Set, flags.FlagSet, nil, "Per-rule options as ruleID.option=value (repeatable; comma-separated accepted)")

	// Output
	rootCmd.Flags().StringVar(&cfg.Output.Format, flags.FlagFormat, "text", "Console output format: text|json|ndjson (default: text)")
	rootCmd.Flags().StringSliceVar(&cfg.Output.FilterStatus, flags.FlagFilterStatus, nil, "Filter console output by status (PASS, FAIL, WARN, SKIP). Comma-separated.")
	rootCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	rootCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	rootCmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	rootCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --out/--report)")

	// Runtime
	rootCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Concurrent target scans (default: 4)")
	rootCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Global timeout (default: 2m)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
