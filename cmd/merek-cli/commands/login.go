package commands

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"merek-automation/internal/scrapers/merek"

	"github.com/spf13/cobra"
)

var (
	loginUsername     string
	loginPassword     string
	loginCaptchaImage string
	loginManual       bool
)

func init() {
	loginCmd.Flags().StringVar(&loginUsername, "username", os.Getenv("MEREK_USERNAME"), "Portal username, defaults to $MEREK_USERNAME.")
	loginCmd.Flags().StringVar(&loginPassword, "password", os.Getenv("MEREK_PASSWORD"), "Portal password, defaults to $MEREK_PASSWORD.")
	loginCmd.Flags().StringVar(&loginCaptchaImage, "captcha-image", "captcha.png", "Where the captcha is written when solving it by hand.")
	loginCmd.Flags().BoolVar(&loginManual, "manual", false, "Solve the captcha by hand even if a recognizer is configured.")
	rootCmd.AddCommand(loginCmd)
}

func promptCaptcha(challenge merek.CaptchaChallenge) (string, error) {
	image, err := base64.StdEncoding.DecodeString(challenge.ImageBase64())
	if err != nil {
		return "", fmt.Errorf("decode captcha image: %w", err)
	}
	err = os.WriteFile(loginCaptchaImage, image, 0600)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(os.Stderr, "captcha written to %s, type what it shows: ", loginCaptchaImage)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read captcha answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

var loginCmd = &cobra.Command{
	Use:   "login [--username <username>] [--password <password>] [--manual]",
	Short: "Logs into the portal and writes the session file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := engineFrom(cmd)
		ctx := cmd.Context()

		if !loginManual && engine.CanRecognizeCaptcha() {
			result, err := finishLogin(engine.LoginWithRecognizer(ctx, loginUsername, loginPassword))
			if err != nil {
				return err
			}
			slog.Info("logged in", "location", result.Location, "session", sessionPath)
			return nil
		}

		challenge := engine.FetchLoginChallenge(ctx)
		if !challenge.Ok() {
			return challenge.Err()
		}
		answer, err := promptCaptcha(challenge.Value)
		if err != nil {
			return err
		}

		result, err := finishLogin(engine.Login(ctx, merek.LoginRequest{
			Username:      loginUsername,
			Password:      loginPassword,
			CaptchaAnswer: answer,
			CaptchaKey:    challenge.Value.ChallengeKey,
			CsrfToken:     challenge.Value.CsrfToken,
			Cookies:       challenge.Value.Cookies,
		}))
		if err != nil {
			return err
		}
		slog.Info("logged in", "location", result.Location, "session", sessionPath)
		return nil
	},
}
