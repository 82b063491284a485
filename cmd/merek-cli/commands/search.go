package commands

import (
	"fmt"
	"strings"

	"merek-automation/internal/scrapers/merek"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	searchPage     int
	searchPageSize int
	searchFilters  []string
	searchJson     bool
)

func init() {
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "Page to fetch, starting from 1.")
	searchCmd.Flags().IntVar(&searchPageSize, "size", 10, "Applications per page.")
	searchCmd.Flags().StringArrayVar(&searchFilters, "filter", nil, "A filter as <field>=<keyword>, ex. brandName=KOPI.")
	searchCmd.Flags().BoolVar(&searchJson, "json", false, "Print the result as json instead of a table.")
	rootCmd.AddCommand(searchCmd)
}

func parseFilters(filters []string) (map[merek.SearchField]string, error) {
	out := map[merek.SearchField]string{}
	for _, filter := range filters {
		name, keyword, found := strings.Cut(filter, "=")
		if !found {
			return nil, fmt.Errorf("filter %q is not of the form <field>=<keyword>", filter)
		}
		field, ok := merek.ParseSearchField(name)
		if !ok {
			return nil, fmt.Errorf("unknown search field %q", name)
		}
		out[field] = keyword
	}
	return out, nil
}

var searchCmd = &cobra.Command{
	Use:   "search [--page <n>] [--size <n>] [--filter <field>=<keyword>...]",
	Short: "Lists the applications of the logged in user, newest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := readSession()
		if err != nil {
			return err
		}
		filters, err := parseFilters(searchFilters)
		if err != nil {
			return err
		}

		result, err := finish(engineFrom(cmd).SearchApplications(cmd.Context(), session, merek.ApplicationListQuery{
			Page:     searchPage,
			PageSize: searchPageSize,
			Filters:  filters,
		}))
		if err != nil {
			return err
		}
		if searchJson {
			return printJson(result)
		}

		t := newTable()
		t.AppendHeader(table.Row{"No", "Application no", "Submitted", "Brand", "Classes", "Type", "Status", "Payment", "Billing code"})
		for _, row := range result.Rows {
			t.AppendRow(table.Row{
				row.No,
				row.ApplicationNo,
				row.SubmittedAt,
				row.Brand,
				row.Classes,
				row.ApplicationType,
				row.Status,
				row.PaymentStatus,
				row.BillingCode,
			})
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d of %d", result.FilteredRecords, result.TotalRecords)})
		t.Render()
		return nil
	},
}
