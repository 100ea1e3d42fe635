package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(gardensCmd)
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print the constellation view as JSON",
	Long: `Build the constellation view from the local stores and print it.

Examples:
  gardenctl view
  gardenctl view --gardens-dir ./gardens --letters ./data/letters-to-humans.json`,
	Args: cobra.NoArgs,
	RunE: runView,
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print garden positions as JSON",
	Args:  cobra.NoArgs,
	RunE:  runLayout,
}

var gardensCmd = &cobra.Command{
	Use:   "gardens",
	Short: "List gardens with their counts",
	Args:  cobra.NoArgs,
	RunE:  runGardens,
}

func runView(cmd *cobra.Command, args []string) error {
	s, err := openStores()
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), s.aggregator().Build(cmd.Context()))
}

func runLayout(cmd *cobra.Command, args []string) error {
	s, err := openStores()
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), s.aggregator().Build(cmd.Context()).Layout)
}

func runGardens(cmd *cobra.Command, args []string) error {
	s, err := openStores()
	if err != nil {
		return err
	}

	v := s.aggregator().Build(cmd.Context())
	if len(v.GardenSummaries) == 0 {
		cmd.Println("No gardens found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tQUESTIONS\tTENDINGS\tVISITS")
	for _, g := range v.GardenSummaries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", g.Name, g.Questions, g.Tendings, g.Visits)
	}
	return w.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
