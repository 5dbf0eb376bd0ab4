package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"deepread/internal/catalog"
	"deepread/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	catalogPath string
	logLevel    string
	logFormat   string
}

var rootCmd = &cobra.Command{
	Use:   "deepread",
	Short: "Dependency-ordered deep reading of academic papers",
	Long: "Deepread runs a catalog of analysis tasks over a paper with an LLM,\n" +
		"ordering the tasks by their dependencies so later analyses build on\n" +
		"earlier findings, and assembles the results into a markdown report.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(*cobra.Command, []string) {
		logging.Init(logging.ParseLevel(rootFlags.logLevel), rootFlags.logFormat)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.catalogPath, "catalog", "", "Path to a task catalog YAML (default: built-in catalog)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

// loadRegistry builds the task registry from --catalog or the built-in
// catalog.
func loadRegistry() (*catalog.Registry, error) {
	if rootFlags.catalogPath != "" {
		return catalog.LoadFromPath(rootFlags.catalogPath)
	}
	return catalog.Default()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
