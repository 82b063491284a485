package commands

import (
	"fmt"
	"time"

	"merek-automation/internal/scrapers/merek"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	priorityDate    string
	priorityCountry string
	priorityNumber  string
)

func init() {
	priorityAddCmd.Flags().StringVar(&priorityDate, "date", "", "Date of the earlier filing as dd/mm/yyyy.")
	priorityAddCmd.Flags().StringVar(&priorityCountry, "country", "", "Country code of the earlier filing.")
	priorityAddCmd.Flags().StringVar(&priorityNumber, "number", "", "Application number of the earlier filing.")
	priorityAddCmd.MarkFlagRequired("date")
	priorityAddCmd.MarkFlagRequired("country")
	priorityAddCmd.MarkFlagRequired("number")

	priorityCmd.AddCommand(priorityAddCmd)
	priorityCmd.AddCommand(priorityListCmd)
	priorityCmd.AddCommand(priorityDeleteCmd)
	rootCmd.AddCommand(priorityCmd)
}

var priorityCmd = &cobra.Command{
	Use:   "priority",
	Short: "Manages the priority claims of an application.",
}

var priorityAddCmd = &cobra.Command{
	Use:   "add <application no> --date <dd/mm/yyyy> --country <code> --number <claim no>",
	Short: "Claims priority from an earlier filing.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := readSession()
		if err != nil {
			return err
		}
		date, err := time.Parse("02/01/2006", priorityDate)
		if err != nil {
			return fmt.Errorf("parse --date: %w", err)
		}

		result, err := finish(engineFrom(cmd).AddPriority(cmd.Context(), session, merek.PriorityClaim{
			ApplicationNo: args[0],
			Date:          date,
			Country:       priorityCountry,
			ClaimNo:       priorityNumber,
		}))
		if err != nil {
			return err
		}
		return printJson(result)
	},
}

var priorityListCmd = &cobra.Command{
	Use:   "list <application no>",
	Short: "Lists the priority claims of an application.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := readSession()
		if err != nil {
			return err
		}

		records, err := finish(engineFrom(cmd).ListPriorities(cmd.Context(), session, args[0]))
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Date", "Country", "Claim no"})
		for _, record := range records {
			t.AppendRow(table.Row{record.Id, record.Date, record.Country, record.ClaimNo})
		}
		t.Render()
		return nil
	},
}

var priorityDeleteCmd = &cobra.Command{
	Use:   "delete <application no> <priority id>",
	Short: "Removes a priority claim, ids come from `priority list`.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := readSession()
		if err != nil {
			return err
		}

		result, err := finish(engineFrom(cmd).DeletePriority(cmd.Context(), session, args[0], args[1]))
		if err != nil {
			return err
		}
		return printJson(result)
	},
}
