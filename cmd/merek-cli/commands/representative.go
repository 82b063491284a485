package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	representativePayload     string
	representativePayloadFile string
)

func init() {
	representativeCmd.Flags().StringVar(&representativePayload, "payload", "", "The form-encoded representative form.")
	representativeCmd.Flags().StringVar(&representativePayloadFile, "payload-file", "", "A file holding the form-encoded representative form.")
	representativeCmd.MarkFlagsMutuallyExclusive("payload", "payload-file")
	rootCmd.AddCommand(representativeCmd)
}

var representativeCmd = &cobra.Command{
	Use:   "representative <application no> (--payload <form> | --payload-file <path>)",
	Short: "Saves the representative (kuasa) stage, the payload is sent as is.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := readSession()
		if err != nil {
			return err
		}

		payload := representativePayload
		if representativePayloadFile != "" {
			data, err := os.ReadFile(representativePayloadFile)
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}
			payload = strings.TrimSpace(string(data))
		}

		result, err := finish(engineFrom(cmd).SaveRepresentative(cmd.Context(), session, args[0], payload))
		if err != nil {
			return err
		}
		return printJson(result)
	},
}
