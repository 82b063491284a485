package commands

import (
	"fmt"
	"os"

	"merek-automation/internal/scrapers/merek"

	"github.com/spf13/cobra"
	"github.com/titanous/json5"
)

func init() {
	rootCmd.AddCommand(applicantCmd)
}

var applicantCmd = &cobra.Command{
	Use:   "applicant <form.json5>",
	Short: "Saves the applicant stage from a json5 file shaped like the portal's form.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := readSession()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var form merek.ApplicantForm
		err = json5.Unmarshal(data, &form)
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		result, err := finish(engineFrom(cmd).SaveApplicant(cmd.Context(), session, form))
		if err != nil {
			return err
		}
		return printJson(result)
	},
}
