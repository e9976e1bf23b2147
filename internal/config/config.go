package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"

	"assetbake/internal/domain"
	appErrors "assetbake/internal/errors"
)

// DefaultFile is the site config file looked up when none is given.
const DefaultFile = "assetbake.yml"

type Config struct {
	Paths   domain.PathSettings
	Sources []domain.SourceConfig
	Mode    string
	Verbose bool
	Workers int
}

// fileConfig mirrors the yaml layout of the site config.
type fileConfig struct {
	Paths struct {
		RawAssets        string `yaml:"rawAssets"`
		RawContentAssets string `yaml:"rawContentAssets"`
		Output           string `yaml:"output"`
		Content          string `yaml:"content"`
		StaticPublish    string `yaml:"staticPublish"`
	} `yaml:"paths"`
	Sources []struct {
		Dir    string `yaml:"dir"`
		Images *struct {
			Name string `yaml:"name"`
			Path string `yaml:"path"`
		} `yaml:"images"`
	} `yaml:"sources"`
}

type envConfig struct {
	Mode    string `env:"ASSETBAKE_ENV"`
	Verbose bool   `env:"ASSETBAKE_VERBOSE"`
	Workers int    `env:"ASSETBAKE_WORKERS"`
}

// Load reads the yaml site config at path, resolves every path setting to
// absolute form against the config file's directory, and layers environment
// overrides on top. Flag values are applied by the caller afterwards.
// Failures come back as typed AppErrors so callers can branch on Kind.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, appErrors.Wrap(appErrors.NotFound, "config", path, err)
		}
		return Config{}, appErrors.Wrap(appErrors.IOFailure, "config", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, appErrors.Wrap(appErrors.InvalidConfig, "config", path, err)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Config{}, appErrors.Wrap(appErrors.Internal, "config", path, err)
	}

	cfg, err := fromFile(fc, root)
	if err != nil {
		return Config{}, err
	}

	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return Config{}, appErrors.Wrap(appErrors.InvalidConfig, "env", "", err)
	}
	if ec.Mode != "" {
		cfg.Mode = ec.Mode
	}
	if ec.Verbose {
		cfg.Verbose = true
	}
	if ec.Workers > 0 {
		cfg.Workers = ec.Workers
	}

	return cfg, nil
}

func fromFile(fc fileConfig, root string) (Config, error) {
	p := fc.Paths
	if p.Output == "" {
		return Config{}, appErrors.Wrap(appErrors.InvalidConfig, "config", "", errors.New("paths.output is required"))
	}
	if p.RawAssets == "" || p.RawContentAssets == "" || p.Content == "" {
		return Config{}, appErrors.Wrap(appErrors.InvalidConfig, "config", "", errors.New("paths.rawAssets, paths.rawContentAssets and paths.content are required"))
	}

	paths := domain.PathSettings{
		RawAssetPath:        resolve(root, p.RawAssets),
		RawContentAssetPath: resolve(root, p.RawContentAssets),
		AssetPath:           resolve(root, p.Output),
		RawContentPath:      resolve(root, p.Content),
		StaticAssetPath:     p.StaticPublish,
	}
	if p.StaticPublish != "" {
		paths.PublishPath = filepath.Join(root, "static", p.StaticPublish)
	}

	var sources []domain.SourceConfig
	for _, s := range fc.Sources {
		src := domain.SourceConfig{DirName: s.Dir}
		// A partial images block is treated as absent, not as an error.
		if s.Images != nil && s.Images.Name != "" && s.Images.Path != "" {
			src.Images = &domain.ImageSpec{Name: s.Images.Name, Path: s.Images.Path}
		}
		sources = append(sources, src)
	}

	return Config{Paths: paths, Sources: sources}, nil
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
