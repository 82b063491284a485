package commands

import (
	"fmt"
	"time"

	"merek-automation/internal/components/chrono"
	"merek-automation/internal/scrapers/merek"

	"github.com/spf13/cobra"
)

var (
	generalType        string
	generalCategory    string
	generalOrigin      string
	generalBillingCode string
	generalDate        string
)

func init() {
	generalCmd.Flags().StringVar(&generalType, "type", string(merek.APPLICATION_TRADEMARK), "Application type: MEREK_DAGANG, MEREK_JASA, MEREK_KOLEKTIF or MEREK_DAGANG_JASA.")
	generalCmd.Flags().StringVar(&generalCategory, "category", string(merek.CATEGORY_SMALL_BUSINESS), "Applicant category: UMKM or NUMKM.")
	generalCmd.Flags().StringVar(&generalOrigin, "origin", "ONLINE", "Where the application originates from.")
	generalCmd.Flags().StringVar(&generalBillingCode, "billing-code", "", "Billing code of an already paid fee.")
	generalCmd.Flags().StringVar(&generalDate, "date", "", "Submission date as dd/mm/yyyy hh:mm:ss in Jakarta time, defaults to now.")
	rootCmd.AddCommand(generalCmd)
}

var generalCmd = &cobra.Command{
	Use:   "general [--type <type>] [--category <category>]",
	Short: "Starts a new application, prints the application number the portal assigned.",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := readSession()
		if err != nil {
			return err
		}

		var submittedAt time.Time
		if generalDate != "" {
			clock, err := chrono.NewStandardImpl()
			if err != nil {
				return err
			}
			submittedAt, err = time.ParseInLocation("02/01/2006 15:04:05", generalDate, clock.Location())
			if err != nil {
				return fmt.Errorf("parse --date: %w", err)
			}
		}

		result, err := finish(engineFrom(cmd).SaveGeneral(cmd.Context(), session, merek.GeneralForm{
			SubmittedAt: submittedAt,
			Type:        merek.ApplicationType(generalType),
			Origin:      generalOrigin,
			Category:    merek.ApplicantCategory(generalCategory),
			BillingCode: generalBillingCode,
		}))
		if err != nil {
			return err
		}
		return printJson(result)
	},
}
