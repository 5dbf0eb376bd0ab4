package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"deepread/internal/format"
)

var catalogFlags struct {
	markdown bool
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the analysis tasks in the catalog",
	RunE:  runCatalog,
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogFlags.markdown, "markdown", false, "Render as a markdown table")
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	style := format.Terminal
	if catalogFlags.markdown {
		style = format.Markdown
	}

	tb := format.NewTable(style)
	tb.Header("ID", "Description", "Weight", "Domains", "Depends On")
	tb.WrapColumn(2, 40)
	for _, t := range reg.Tasks() {
		deps := strings.Join(t.DependsOn, ", ")
		if deps == "" {
			deps = "-"
		}
		tb.Row(t.ID, t.Description, t.Weight, strings.Join(t.Domains, ", "), deps)
	}
	tb.Footer("", fmt.Sprintf("%d tasks", reg.Len()), "", "", "")

	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}
