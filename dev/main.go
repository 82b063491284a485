package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"merek-automation/internal/config"
)

const configFile = "config.json5"

func create(recreate bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll(".dev")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll(".dev/resty/merek", 0777)
	if err != nil {
		return err
	}

	_, err = os.Stat(configFile)
	if err == nil && !recreate {
		fmt.Println("config already exists at", configFile)
		return nil
	}

	// json is valid json5, the file only needs to be edited by hand from here
	defaults := config.Default()
	defaults.Captcha.ApiKey = ""
	data, err := json.MarshalIndent(defaults, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println("writing default config to", configFile)
	fmt.Println("put portal overrides in config.local.json5 and the captcha api key in $OPENAI_API_KEY")
	return os.WriteFile(configFile, data, 0600)
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
