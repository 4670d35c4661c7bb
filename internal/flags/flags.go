package flags

// Package flags defines canonical CLI flag names shared across the CLI and engine.
// Keeping these as constants helps avoid drift between Cobra flag wiring and other
// code paths that need to reference flags (e.g. report reproducibility command
// generation).
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Output.Format, flags.FlagFormat, "text", "...")
//	arg := "--" + flags.FlagFormat
const (
	// Scanning
	FlagExclude = "exclude"

	// Rules
	FlagRules = "rules"
	FlagSet   = "set"

	// Output
	FlagFormat       = "format"
	FlagFilterStatus = "filter-status"
	FlagReport       = "report"
	FlagOut          = "out"
	FlagOutFormat    = "out-format"
	FlagNoConsole    = "no-console"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
	FlagVerbose     = "verbose"
)
