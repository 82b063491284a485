package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"merek-automation/internal/components/telemetry"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// Endpoints are the portal paths the engine talks to, relative to the base url.
type Endpoints struct {
	Login              string `json:"login"`
	NewApplicationPage string `json:"new_application_page"`
	SaveGeneral        string `json:"save_general"`
	EditPage           string `json:"edit_page"`
	SaveApplicant      string `json:"save_applicant"`
	SaveRepresentative string `json:"save_representative"`
	AddPriority        string `json:"add_priority"`
	ListPriority       string `json:"list_priority"`
	DeletePriority     string `json:"delete_priority"`
	UploadBrand        string `json:"upload_brand"`
	ApplicationPage    string `json:"application_page"`
	ApplicationData    string `json:"application_data"`
}

type PortalConfig struct {
	BaseUrl   string `json:"base_url"`
	UserAgent string `json:"user_agent"`
	// TimeoutSeconds is handed to the transport, the engine itself never times out.
	TimeoutSeconds int `json:"timeout_seconds"`
	// RequestsPerSecond paces outgoing requests, a negative value disables pacing.
	RequestsPerSecond float64   `json:"requests_per_second"`
	CloudflareBypass  bool      `json:"cloudflare_bypass"`
	Endpoints         Endpoints `json:"endpoints"`
}

type CaptchaConfig struct {
	ApiKey  string `json:"api_key"`
	BaseUrl string `json:"base_url"`
	Model   string `json:"model"`
}

type Config struct {
	Portal  PortalConfig         `json:"portal"`
	Captcha CaptchaConfig        `json:"captcha"`
	Otlp    telemetry.OtlpConfig `json:"otlp"`
	// DumpDirectory receives full http messages when running verbosely.
	DumpDirectory string `json:"dump_directory"`
}

// Default returns the configuration used for every field a config file leaves unset.
func Default() Config {
	return Config{
		Portal: PortalConfig{
			BaseUrl:           "https://merek.dgip.go.id",
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
			TimeoutSeconds:    30,
			RequestsPerSecond: 2,
			Endpoints: Endpoints{
				Login:              "/login",
				NewApplicationPage: "/layanan/online-form",
				SaveGeneral:        "/layanan/save-online-form-1",
				EditPage:           "/layanan/edit-online-form",
				SaveApplicant:      "/layanan/save-online-form-2",
				SaveRepresentative: "/layanan/save-online-form-3",
				AddPriority:        "/layanan/add-prioritas",
				ListPriority:       "/layanan/list-prioritas",
				DeletePriority:     "/layanan/delete-prioritas",
				UploadBrand:        "/layanan/save-online-form-5",
				ApplicationPage:    "/layanan/permohonan",
				ApplicationData:    "/layanan/list-permohonan",
			},
		},
		Captcha: CaptchaConfig{
			Model: "gpt-4o",
		},
		DumpDirectory: ".dev/resty/merek",
	}
}

func splitExt(f string) (string, string) {
	ext := filepath.Ext(f)
	return strings.TrimSuffix(f, ext), strings.TrimPrefix(ext, ".")
}

// ReadConfig reads a configuration file, `name` should come with a file extension,
// it will automatically be lopped off to produce the other extensions.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
func ReadConfig[T any](name string) (T, error) {
	var out T
	allNotFound := true

	prefixname, ext := splitExt(name)

	defaultFile, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(defaultFile) > 0 {
		err = json5.Unmarshal(defaultFile, &out)
		if err != nil {
			return out, fmt.Errorf("parse %s: %w", name, err)
		}
		allNotFound = false
	}

	localFilepath := fmt.Sprintf("%s.local.%s", prefixname, ext)
	localFile, err := os.ReadFile(localFilepath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(localFile) > 0 {
		var override T
		err = json5.Unmarshal(localFile, &override)
		if err != nil {
			return out, fmt.Errorf("parse %s: %w", localFilepath, err)
		}
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localFilepath)
		allNotFound = false
	}

	if allNotFound {
		return out, os.ErrNotExist
	}

	return out, nil
}

// ReadRecursively is ReadConfig but it goes up the filesystem from the working
// directory until it finds a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return defaultOut, err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return defaultOut, os.ErrNotExist
		}
		current = parent
	}
}

// Load finds `name` (ex. "config.json5") the same way ReadRecursively does and
// fills every unset field from Default. A missing file is not an error.
// The captcha api key falls back to the OPENAI_API_KEY environment variable.
func Load(name string) (Config, error) {
	cfg, err := ReadRecursively[Config](name)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	err = mergo.Merge(&cfg, Default())
	if err != nil {
		return Config{}, err
	}
	if cfg.Captcha.ApiKey == "" {
		cfg.Captcha.ApiKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.Portal.BaseUrl = strings.TrimSuffix(cfg.Portal.BaseUrl, "/")
	return cfg, nil
}
