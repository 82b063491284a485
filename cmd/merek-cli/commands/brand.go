package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"merek-automation/internal/scrapers/merek"

	"github.com/spf13/cobra"
)

var (
	brandFile        string
	brandName        string
	brandType        string
	brandDescription string
	brandTranslation string
	brandColors      string
	brandKeep        []string
	brandDelete      []string
	brandDisclaimer  bool
)

func init() {
	brandCmd.Flags().StringVar(&brandFile, "file", "", "The label image to upload.")
	brandCmd.Flags().StringVar(&brandName, "name", "", "The brand name.")
	brandCmd.Flags().StringVar(&brandType, "type", "", "The brand type as the portal names it.")
	brandCmd.Flags().StringVar(&brandDescription, "description", "", "Description of the label.")
	brandCmd.Flags().StringVar(&brandTranslation, "translation", "", "Translation of foreign words in the brand.")
	brandCmd.Flags().StringVar(&brandColors, "colors", "", "Colors claimed by the brand.")
	brandCmd.Flags().StringSliceVar(&brandKeep, "keep", nil, "Already uploaded images to keep.")
	brandCmd.Flags().StringSliceVar(&brandDelete, "delete", nil, "Already uploaded images to delete.")
	brandCmd.Flags().BoolVar(&brandDisclaimer, "accept-disclaimer", false, "Accept the portal's disclaimer, required.")
	rootCmd.AddCommand(brandCmd)
}

var brandCmd = &cobra.Command{
	Use:   "brand <application no> --name <name> [--file <label.png>] --accept-disclaimer",
	Short: "Saves the brand stage and uploads its label.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := readSession()
		if err != nil {
			return err
		}

		upload := merek.BrandUpload{
			ApplicationNo: args[0],
			BrandName:     brandName,
			BrandType:     brandType,
			Description:   brandDescription,
			Translation:   brandTranslation,
			Colors:        brandColors,
			KeepImages:    brandKeep,
			DeleteImages:  brandDelete,
			Disclaimer:    brandDisclaimer,
		}
		if brandFile != "" {
			upload.File, err = os.ReadFile(brandFile)
			if err != nil {
				return fmt.Errorf("read label: %w", err)
			}
			upload.FileName = filepath.Base(brandFile)
		}

		result, err := finish(engineFrom(cmd).UploadBrand(cmd.Context(), session, upload))
		if err != nil {
			return err
		}
		return printJson(result)
	},
}
