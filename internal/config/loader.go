package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/25smoking/Theseus/internal/embedded"
	"github.com/25smoking/Theseus/internal/graph"
	"github.com/25smoking/Theseus/internal/planner"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// ========== Planner Config ==========

type PlannerConfig struct {
	MaxDepth  int             `yaml:"max_depth" validate:"gte=0"`
	TopK      int             `yaml:"top_k"`
	Timeout   time.Duration   `yaml:"timeout" validate:"gte=0"`
	OutputDir string          `yaml:"output_dir"`
	Weights   planner.Weights `yaml:"weights"`
}

// DefaultPlannerConfig mirrors the embedded planner.yaml.
func DefaultPlannerConfig() *PlannerConfig {
	return &PlannerConfig{
		MaxDepth:  4,
		TopK:      5,
		Timeout:   30 * time.Second,
		OutputDir: "results",
		Weights:   planner.DefaultWeights(),
	}
}

func (c *PlannerConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid planner config: %w", err)
	}
	return nil
}

// ========== Loader Functions ==========

func loadConfigData(configPath, defaultName string) ([]byte, string, error) {
	// 1. 尝试从文件系统加载
	if configPath == "" {
		configPath = filepath.Join("config", defaultName)
	}

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		return data, configPath, err
	}

	// 2. 回退到内嵌配置
	// 注意: embed总是使用正斜杠
	embedPath := "config/" + defaultName
	data, err := embedded.Content.ReadFile(embedPath)
	return data, "embedded:" + embedPath, err
}

// LoadPlannerConfig reads planner.yaml. Keys missing from the file keep
// their defaults. An explicit path must exist; an empty path tries
// config/planner.yaml and then the embedded default.
func LoadPlannerConfig(configPath string) (*PlannerConfig, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to read planner config: %w", err)
		}
	}

	data, _, err := loadConfigData(configPath, "planner.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read planner config: %w", err)
	}

	cfg := DefaultPlannerConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse planner config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Environment is a loaded graph description plus where it came from.
type Environment struct {
	Source      string
	Description graph.Description
}

// LoadEnvironment reads a graph description. Files ending in .json are
// decoded as JSON, everything else as YAML. An empty path tries
// config/env.yaml and then the embedded sample.
func LoadEnvironment(envPath string) (*Environment, error) {
	if envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	data, source, err := loadConfigData(envPath, "env.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	desc, err := ParseEnvironment(data, filepath.Ext(source))
	if err != nil {
		return nil, err
	}

	return &Environment{Source: source, Description: *desc}, nil
}

// ParseEnvironment decodes a graph description; ext selects the format.
func ParseEnvironment(data []byte, ext string) (*graph.Description, error) {
	var desc graph.Description

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &desc); err != nil {
			return nil, fmt.Errorf("failed to parse environment: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &desc); err != nil {
			return nil, fmt.Errorf("failed to parse environment: %w", err)
		}
	}

	return &desc, nil
}
