package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"deepread/internal/classify"
	"deepread/internal/format"
	"deepread/internal/ingest"
	"deepread/internal/keywords"
	"deepread/internal/llm"
	"deepread/internal/logging"
	"deepread/internal/pipeline"
	"deepread/internal/plan"
	"deepread/internal/report"
	"deepread/internal/tokencount"
)

var analyzeFlags struct {
	domain      string
	output      string
	provider    string
	parallel    int
	taskTimeout time.Duration
	summary     bool
	keywordsDB  string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <paper-file-or-dir>",
	Short: "Run the full analysis pipeline over a paper",
	Long: `Analyze a paper with the task catalog and write a markdown report.
Given a directory, every paper file under it is analyzed in turn.

Usage:
  deepread analyze paper.md
  deepread analyze papers/ --domain rf_ic -o reports/
  deepread analyze paper.md --provider mock       # offline dry run

The domain defaults to "auto": a cheap classification call over the
paper's opening picks between the general and RF IC task sets. The
openai provider reads OPENAI_API_KEY from the environment; OPENAI_BASE_URL
points it at any compatible endpoint.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.domain, "domain", "auto", "Analysis domain: auto, general, or rf_ic")
	f.StringVarP(&analyzeFlags.output, "output", "o", "reports", "Directory for the markdown report")
	f.StringVar(&analyzeFlags.provider, "provider", "", "Model provider: openai or mock (default: from environment)")
	f.IntVar(&analyzeFlags.parallel, "parallel", 2, "Max concurrent generation calls per layer")
	f.DurationVar(&analyzeFlags.taskTimeout, "task-timeout", 5*time.Minute, "Per-task generation budget (0 = unlimited)")
	f.BoolVar(&analyzeFlags.summary, "summary", true, "Synthesize an executive summary after the run")
	f.StringVar(&analyzeFlags.keywordsDB, "keywords-db", "", "Path to the shared keyword database (optional)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	provider, err := llm.New(analyzeFlags.provider)
	if err != nil {
		return err
	}

	var store *keywords.Store
	if analyzeFlags.keywordsDB != "" {
		if store, err = keywords.Open(analyzeFlags.keywordsDB); err != nil {
			return err
		}
	}

	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}

	paths := []string{args[0]}
	if info.IsDir() {
		if paths, err = ingest.FindPapers(args[0]); err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no paper files found under %s", args[0])
		}
	}

	out := cmd.OutOrStdout()
	failed := 0
	for i, path := range paths {
		if len(paths) > 1 {
			fmt.Fprintf(out, "[%d/%d] %s\n", i+1, len(paths), path)
		}
		if err := analyzeOne(cmd, provider, store, path); err != nil {
			if len(paths) == 1 {
				return err
			}
			failed++
			fmt.Fprintf(out, "FAILED: %v\n\n", err)
		}
	}

	if store != nil {
		if err := store.Save(); err != nil {
			logging.New("cli").Warn("keyword db not saved", "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d papers failed", failed, len(paths))
	}
	return nil
}

func analyzeOne(cmd *cobra.Command, provider llm.Provider, store *keywords.Store, path string) error {
	logger := logging.New("cli")
	out := cmd.OutOrStdout()

	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	paper, err := ingest.Load(path)
	if err != nil {
		return err
	}
	logger.Info("analysis starting", "paper", paper.Path, "provider", provider.Name())

	domain := analyzeFlags.domain
	if domain == "" || domain == "auto" {
		c := &classify.Classifier{Gen: provider}
		domain = c.Classify(cmd.Context(), paper.Text)
		fmt.Fprintf(out, "Domain: %s (classified)\n", domain)
	} else {
		fmt.Fprintf(out, "Domain: %s\n", domain)
	}

	p, err := plan.Build(reg, domain, plan.Select(reg, domain))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Plan: %d tasks in %d layers\n\n", p.Size(), len(p.Layers))

	var usage tokencount.Usage
	ex := &pipeline.Executor{
		Gen:         provider,
		Parallel:    analyzeFlags.parallel,
		TaskTimeout: analyzeFlags.taskTimeout,
		Usage:       &usage,
	}

	start := time.Now()
	results, runErr := ex.Run(cmd.Context(), p, paper.Text, reg.SystemPrompt(domain))
	if runErr != nil {
		logger.Error("run aborted, assembling partial report", "error", runErr)
	}

	r := report.Assemble(p, results)
	r.Paper = paper.Path
	r.CanonicalizeKeywords(store)

	if analyzeFlags.summary && runErr == nil {
		if sumErr := report.Synthesize(cmd.Context(), provider, r, &usage); sumErr != nil {
			logger.Warn("executive summary skipped", "error", sumErr)
		}
	}
	r.Usage = usage.Snapshot()

	reportPath, err := r.Save(analyzeFlags.output)
	if err != nil {
		return err
	}

	printRunStatus(out, r, time.Since(start))
	fmt.Fprintf(out, "\nReport: %s\n", reportPath)

	if runErr != nil {
		return fmt.Errorf("analysis aborted: %w (partial report written to %s)", runErr, reportPath)
	}
	return nil
}

// printRunStatus renders the per-task outcome table and the usage line.
func printRunStatus(out io.Writer, r *report.Report, elapsed time.Duration) {
	tb := format.NewTable(format.Terminal)
	tb.Header("Layer", "Task", "Status")
	for _, e := range r.Entries {
		status := string(e.Status)
		if e.Status == pipeline.StatusFailed && e.Err != "" {
			status = "failed: " + format.Truncate(e.Err, 40)
		}
		tb.Row(e.Layer, e.TaskID, status)
	}
	fmt.Fprintln(out, tb.String())
	fmt.Fprintf(out, "\n%d calls, %s tokens, %s\n",
		r.Usage.Calls, format.Tokens(r.Usage.TotalTokens()), format.Duration(elapsed))
}
