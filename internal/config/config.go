package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from xcgraph.yml.
const (
	EnvDescriptor = "XCGRAPH_DESCRIPTOR"
	EnvRootFolder = "XCGRAPH_ROOT_FOLDER"
	EnvSourceRoot = "XCGRAPH_SOURCE_ROOT"
)

// DefaultCacheSize is the in-memory import cache size used when none is
// configured.
const DefaultCacheSize = 1024

// ProjectConfig holds project-level settings loaded from xcgraph.yml.
// Relative paths are resolved against the project directory.
type ProjectConfig struct {
	Descriptor  string   `yaml:"descriptor,omitempty"`
	RootFolder  string   `yaml:"rootFolder,omitempty"`
	SourceRoot  string   `yaml:"sourceRoot,omitempty"`
	ExcludeDirs []string `yaml:"excludeDirs,omitempty"`
	CacheSize   int      `yaml:"cacheSize,omitempty"`
	CachePath   string   `yaml:"cachePath,omitempty"`
	Parallelism int      `yaml:"parallelism,omitempty"`
	Verbose     bool     `yaml:"verbose,omitempty"`
}

// Load attempts to read xcgraph.yml or xcgraph.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"xcgraph.yml", "xcgraph.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// LoadEnv reads dir/.env, if present, into the process environment without
// replacing variables that are already set, then applies the XCGRAPH_*
// overrides to cfg.
func LoadEnv(dir string, cfg *ProjectConfig) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if v := os.Getenv(EnvDescriptor); v != "" {
		cfg.Descriptor = v
	}
	if v := os.Getenv(EnvRootFolder); v != "" {
		cfg.RootFolder = v
	}
	if v := os.Getenv(EnvSourceRoot); v != "" {
		cfg.SourceRoot = v
	}
	return nil
}

// WithDefaults returns a copy of cfg with empty fields filled in and paths
// made absolute against dir. A missing descriptor is looked up as the first
// *.xcodeproj/project.pbxproj in dir. A missing root folder defaults to the
// project name, the .xcodeproj directory name without its extension.
func (cfg ProjectConfig) WithDefaults(dir string) (ProjectConfig, error) {
	if cfg.CacheSize == 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.SourceRoot == "" {
		cfg.SourceRoot = dir
	}
	cfg.SourceRoot = absUnder(dir, cfg.SourceRoot)
	if cfg.CachePath != "" {
		cfg.CachePath = absUnder(dir, cfg.CachePath)
	}

	if cfg.Descriptor == "" {
		matches, err := filepath.Glob(filepath.Join(dir, "*.xcodeproj", "project.pbxproj"))
		if err != nil {
			return cfg, fmt.Errorf("find descriptor: %w", err)
		}
		if len(matches) == 0 {
			return cfg, fmt.Errorf("no *.xcodeproj/project.pbxproj in %s", dir)
		}
		cfg.Descriptor = matches[0]
	}
	cfg.Descriptor = absUnder(dir, cfg.Descriptor)
	if cfg.RootFolder == "" {
		cfg.RootFolder = strings.TrimSuffix(filepath.Base(filepath.Dir(cfg.Descriptor)), ".xcodeproj")
	}
	return cfg, nil
}

func absUnder(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
