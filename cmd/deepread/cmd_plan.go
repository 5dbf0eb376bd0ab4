package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"deepread/internal/format"
	"deepread/internal/plan"
)

var planFlags struct {
	domain string
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the layered execution plan for a domain",
	Long: `Resolves the task catalog into execution layers for a domain without
calling any model. Tasks in the same layer have no dependency between
them and run concurrently; each layer waits for the previous one.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFlags.domain, "domain", "general", "Analysis domain: general or rf_ic")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	p, err := plan.Build(reg, planFlags.domain, plan.Select(reg, planFlags.domain))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Domain %s: %d tasks in %d layers\n\n", p.Domain, p.Size(), len(p.Layers))

	tb := format.NewTable(format.Terminal)
	tb.Header("Layer", "Task", "Depends On")
	for li, layer := range p.Layers {
		for _, id := range layer {
			deps := strings.Join(p.Tasks[id].DependsOn, ", ")
			if deps == "" {
				deps = "-"
			}
			tb.Row(li, id, deps)
		}
	}
	fmt.Fprintln(out, tb.String())
	return nil
}
