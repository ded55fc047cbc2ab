// Package cli provides the command-line interface for sqllineage.
package cli

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/sqllineage/internal/cli/commands"
	"github.com/leapstack-labs/sqllineage/internal/cli/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config

	traceFlag      string
	impactFlag     string
	explainFlag    string
	listTablesFlag bool
	exportFlag     string
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd creates and returns the root command. The root command
// itself runs the full analysis pipeline against the script named by its
// one positional argument, with flags selecting which result to print.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqllineage SCRIPT",
		Short: "Column-level SQL lineage analysis",
		Long: `sqllineage parses a multi-statement SQL script and reports column-level
lineage: which source columns feed each derived table's columns, and
how (direct copy, computed expression, aggregate, window function).`,
		Version:       Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			var err error
			cfg, err = config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if cfg.Verbose {
				if used := config.GetConfigFileUsed(); used != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunAnalyze(args[0], cfg, commands.AnalyzeOptions{
				Trace:      traceFlag,
				Impact:     impactFlag,
				Explain:    explainFlag,
				ListTables: listTablesFlag,
				Export:     exportFlag,
			})
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sqllineage.yaml)")
	rootCmd.PersistentFlags().String("schema", "", "JSON/YAML schema file mapping table -> column list")
	rootCmd.PersistentFlags().String("format", "", "output format (pretty|json|table|graph)")
	rootCmd.PersistentFlags().Bool("strict", false, "fail on ambiguous columns instead of guessing")
	rootCmd.PersistentFlags().Bool("no-warnings", false, "suppress the warnings summary")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable styled table output")
	rootCmd.PersistentFlags().Int("max-depth", 0, "bound trace/impact traversal depth (0 = default)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.Flags().StringVar(&traceFlag, "trace", "", "TABLE.COLUMN: print upstream source paths")
	rootCmd.Flags().StringVar(&impactFlag, "impact", "", "TABLE.COLUMN: print downstream impacted columns")
	rootCmd.Flags().StringVar(&explainFlag, "explain", "", "TABLE.COLUMN: print the column's immediate calculation")
	rootCmd.Flags().BoolVar(&listTablesFlag, "list-tables", false, "print every source/derived table with column counts")
	rootCmd.Flags().StringVar(&exportFlag, "export", "", "write the full analysis as JSON to FILE")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"pretty", "json", "table", "graph"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the shell-completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate shell completion scripts",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
