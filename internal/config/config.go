// Package config holds the run configuration: output locations and the
// fixed OSF remotes. Defaults match the published 74bzs project; an
// optional YAML or JSON file can override any field, and a handful of
// environment variables act as flag defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized as flag defaults. Truthiness follows
// the original tool: true/1/t/y/yes, case-insensitive.
const (
	EnvRawDataset = "74BZS_RAW_DATASET"
	EnvDocs       = "74BZS_DOCS"
	EnvForce      = "74BZS_FORCE"
)

// Doc is one supplemental project document.
type Doc struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Config is constructed once at startup and passed down; nothing in the
// program mutates it afterwards.
type Config struct {
	OutputDir    string `yaml:"output_dir" json:"output_dir"`
	RawDataName  string `yaml:"raw_data_name" json:"raw_data_name"`
	CompiledName string `yaml:"compiled_name" json:"compiled_name"`

	// Project is the OSF landing page, used only for log context.
	Project    string `yaml:"project" json:"project"`
	DatasetURL string `yaml:"dataset_url" json:"dataset_url"`
	Docs       []Doc  `yaml:"docs" json:"docs"`
}

// Default returns the published 74bzs project configuration.
func Default() Config {
	return Config{
		OutputDir:    "./data",
		RawDataName:  "qualtrics-survey-data.csv",
		CompiledName: "compiled-survey-data.csv",
		Project:      "https://doi.org/10.17605/osf.io/74bzs",
		DatasetURL:   "https://osf.io/download/q2bxh/",
		Docs: []Doc{
			{Name: "CONTENT-LICENSE", URL: "https://osf.io/download/4xhm9/"},
			{Name: "dataset-description.pdf", URL: "https://osf.io/download/bgwp3/"},
			{Name: "explanations.pdf", URL: "https://osf.io/download/xav7z/"},
		},
	}
}

// LoadFromPath reads a config override file (YAML or JSON) on top of the
// defaults. Format is detected by extension, falling back to content
// sniffing (JSON starts with '{').
func LoadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses config bytes over the defaults. ext is the file extension
// hint; empty means detect from content.
func Load(data []byte, ext string) (Config, error) {
	cfg := Default()

	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	useJSON := ext == ".json"
	if ext == "" {
		useJSON = strings.HasPrefix(strings.TrimSpace(string(data)), "{")
	}

	if useJSON {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config json: %w", err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config yaml: %w", err)
	}
	return cfg, nil
}

// CompiledDataPath is the short-circuit target: when this file exists a
// compile run is already complete.
func (c Config) CompiledDataPath() string {
	return filepath.Join(c.OutputDir, c.CompiledName)
}

// RawDataPath returns where the raw download lives. By default it sits
// in the working directory; with inOutputDir it moves under OutputDir.
func (c Config) RawDataPath(inOutputDir bool) string {
	if inOutputDir {
		return filepath.Join(c.OutputDir, c.RawDataName)
	}
	return c.RawDataName
}

// DocPath returns the local path for a supplemental document.
func (c Config) DocPath(d Doc) string {
	return filepath.Join(c.OutputDir, d.Name)
}

// BoolFromEnv reads a truthy environment variable, returning fallback
// when the variable is unset.
func BoolFromEnv(name string, fallback bool) bool {
	val, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	switch strings.ToLower(val) {
	case "true", "1", "t", "y", "yes":
		return true
	default:
		return false
	}
}
