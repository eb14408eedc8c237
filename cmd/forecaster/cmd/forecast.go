package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/warp/forecast-engine/forecast"
	"github.com/warp/forecast-engine/schedule"
	"github.com/warp/forecast-engine/store/sqlite"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Print monthly forecast summaries",
	Long: `Prorates every budget and active planned operation over the
requested months and prints one column per month with per-category
totals.`,
	RunE: runForecast,
}

func init() {
	forecastCmd.Flags().String("start", "", "first month to forecast (YYYY-MM-DD, default today)")
	forecastCmd.Flags().Int("months", 12, "number of months to forecast")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, args []string) error {
	start := schedule.Today()
	if s, _ := cmd.Flags().GetString("start"); s != "" {
		parsed, err := schedule.ParseDate(s)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		start = parsed
	}
	months, _ := cmd.Flags().GetInt("months")

	repo, err := sqlite.New(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()

	ctx := cmd.Context()
	budgets, err := repo.ListBudgets(ctx)
	if err != nil {
		return err
	}
	planned, err := repo.ListPlannedOperations(ctx)
	if err != nil {
		return err
	}

	summaries, err := forecast.NewForecast(budgets, planned).MonthlySummaries(start, months)
	if err != nil {
		return err
	}

	printSummaries(summaries)
	return nil
}

func printSummaries(summaries []forecast.MonthlySummary) {
	// Stable category rows across all months.
	seen := make(map[forecast.Category]bool)
	var categories []forecast.Category
	for _, s := range summaries {
		for c := range s.Categories {
			if !seen[c] {
				seen[c] = true
				categories = append(categories, c)
			}
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprint(w, "category")
	for _, s := range summaries {
		fmt.Fprintf(w, "\t%s", s.Month.String()[:7])
	}
	fmt.Fprintln(w)

	for _, c := range categories {
		fmt.Fprint(w, string(c))
		for _, s := range summaries {
			fmt.Fprintf(w, "\t%s", s.Categories[c].StringFixed(2))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprint(w, "total")
	for _, s := range summaries {
		fmt.Fprintf(w, "\t%s", s.Total.StringFixed(2))
	}
	fmt.Fprintln(w)
}
