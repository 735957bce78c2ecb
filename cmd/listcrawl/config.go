package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level listcrawl configuration. Every field has a
// matching command-line flag; flags win over the file.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Crawl   CrawlConfig   `yaml:"crawl"`
	LLM     LLMConfig     `yaml:"llm"`
	Output  OutputConfig  `yaml:"output"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`   // WebSocket URL of an external Chrome; empty = launch locally
	Headful          bool          `yaml:"headful"`  // listing sites sometimes render better headful
	ResourceBlocking []string      `yaml:"resource_blocking"`
	NavigateTimeout  time.Duration `yaml:"navigate_timeout"`
}

// CrawlConfig defines what to crawl and what to extract.
type CrawlConfig struct {
	URL         string   `yaml:"url"`
	Selector    string   `yaml:"selector"`
	Synthesize  bool     `yaml:"synthesize_selector"` // loosen exact class chains into substring matches
	Fields      []string `yaml:"fields"`
	Instruction string   `yaml:"instruction"`
	MaxPages    int      `yaml:"max_pages"` // 0 = unlimited
	EmptyMarker string   `yaml:"empty_marker"`
}

// LLMConfig selects the extraction backend. The credential itself never
// lives in the file; only the name of the environment variable does.
type LLMConfig struct {
	Provider      string `yaml:"provider"`
	Model         string `yaml:"model"`
	CredentialEnv string `yaml:"credential_env"`
}

// OutputConfig defines where the CSV goes.
type OutputConfig struct {
	Path string `yaml:"path"` // "-" = stdout
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Browser.NavigateTimeout <= 0 {
		c.Browser.NavigateTimeout = 30 * time.Second
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.CredentialEnv == "" {
		c.LLM.CredentialEnv = "LISTCRAWL_API_KEY"
	}
	if c.Output.Path == "" {
		c.Output.Path = "-"
	}
}
