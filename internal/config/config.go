package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/titanous/json5"

	"elecciones/internal/models"
)

const (
	EnvDataDir      = "ELECCIONES_DATA_DIR"
	EnvOTLPEndpoint = "ELECCIONES_OTLP_ENDPOINT"
)

type Sources struct {
	Parties   string `json:"parties"`
	Governors string `json:"governors"`
	Mayors    string `json:"mayors"`
}

type Fetch struct {
	TimeoutSeconds   int    `json:"timeout_seconds"`
	UserAgent        string `json:"user_agent"`
	Referer          string `json:"referer"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
}

func (f Fetch) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

type Config struct {
	DataDir          string  `json:"data_dir"`
	Verbose          bool    `json:"verbose"`
	OTLPEndpoint     string  `json:"otlp_endpoint"`
	PartyBaseURL     string  `json:"party_base_url"`
	CandidateBaseURL string  `json:"candidate_base_url"`
	LinkThreshold    float64 `json:"link_threshold"`
	Sources          Sources `json:"sources"`
	Fetch            Fetch   `json:"fetch"`
}

func Default() Config {
	return Config{
		DataDir:          "pb_data",
		PartyBaseURL:     "https://sroppublico.jne.gob.pe",
		CandidateBaseURL: "https://eleccionesperu.pe",
		LinkThreshold:    0.92,
		Sources: Sources{
			Parties:   "partidos_data.html",
			Governors: "gobernadores.html",
			Mayors:    "alcaldes.html",
		},
		Fetch: Fetch{
			TimeoutSeconds: 10,
			Referer:        "https://eleccionesperu.pe/",
		},
	}
}

// PartySources lists the snapshots of the parties pipeline
func (c Config) PartySources() []models.Source {
	return []models.Source{
		{Pipeline: models.PipelineParties, Path: c.Sources.Parties},
	}
}

// CandidateSources lists the candidate snapshots in ingestion order
func (c Config) CandidateSources() []models.Source {
	return []models.Source{
		{Pipeline: models.PipelineCandidates, Path: c.Sources.Governors, CandidacyType: models.CandidacyGovernor},
		{Pipeline: models.PipelineCandidates, Path: c.Sources.Mayors, CandidacyType: models.CandidacyMayor},
	}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.PartyBaseURL, validation.Required, is.URL),
		validation.Field(&c.CandidateBaseURL, validation.Required, is.URL),
		validation.Field(&c.LinkThreshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.Sources),
		validation.Field(&c.Fetch),
	)
}

func (s Sources) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Parties, validation.Required),
		validation.Field(&s.Governors, validation.Required),
		validation.Field(&s.Mayors, validation.Required),
	)
}

func (f Fetch) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.TimeoutSeconds, validation.Min(1)),
	)
}

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// Load builds the configuration from, in increasing priority: defaults,
// <name>, <name-without-ext>.local.<ext>, a .env file next to it and the
// process environment. Missing files are not an error.
func Load(name string) (Config, error) {
	cfg := Default()

	dirname := filepath.Dir(name)
	prefixname, ext := splitExt(filepath.Base(name))
	files := []string{
		name,
		filepath.Join(dirname, fmt.Sprintf("%s.local.%s", prefixname, ext)),
	}
	for _, file := range files {
		if err := mergeFile(&cfg, file); err != nil {
			return cfg, err
		}
	}

	err := godotenv.Load(filepath.Join(dirname, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to read .env: %w", err)
	}
	if dir := os.Getenv(EnvDataDir); dir != "" {
		cfg.DataDir = dir
	}
	if endpoint := os.Getenv(EnvOTLPEndpoint); endpoint != "" {
		cfg.OTLPEndpoint = endpoint
	}

	return cfg, cfg.Validate()
}

func mergeFile(cfg *Config, file string) error {
	content, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var override Config
	if err := json5.Unmarshal(content, &override); err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}
	if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
		return err
	}
	slog.Debug("merged config file", "file", file)
	return nil
}
