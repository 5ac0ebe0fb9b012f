// Package config assembles the CLI configuration from flags, the
// environment, an optional YAML file and defaults, in that order of
// precedence.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"gangplank/internal/artifact"
)

// Provider kinds accepted by -provider.
const (
	ProviderLocal = "local"
	ProviderCloud = "cloud"
	ProviderAgent = "agent"
)

type Config struct {
	RepoPath      string
	OutDir        string
	Project       string
	Provider      string
	Model         string
	Endpoint      string
	APIKey        string
	AgentCommand  string
	SkipInference bool
	ProgressAddr  string
	S3            artifact.S3Config
}

// AgentArgv splits the configured agent command into argv form.
func (c *Config) AgentArgv() []string {
	return strings.Fields(c.AgentCommand)
}

type fileConfig struct {
	Repo          string `yaml:"repo"`
	Out           string `yaml:"out"`
	Project       string `yaml:"project"`
	Provider      string `yaml:"provider"`
	Model         string `yaml:"model"`
	Endpoint      string `yaml:"endpoint"`
	APIKey        string `yaml:"api_key"`
	AgentCommand  string `yaml:"agent_command"`
	SkipInference bool   `yaml:"skip_inference"`
	ProgressAddr  string `yaml:"progress_addr"`
	S3            struct {
		Endpoint  string `yaml:"endpoint"`
		Region    string `yaml:"region"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		Prefix    string `yaml:"prefix"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"s3"`
}

// Load parses args (usually os.Args[1:]) and resolves the full
// configuration. A .env file in the working directory is honored.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("gangplank", flag.ContinueOnError)
	repo := fs.String("repo", "", "repository path to analyze")
	out := fs.String("out", "", "output directory for artifacts")
	project := fs.String("project", "", "project name override")
	providerKind := fs.String("provider", "", "inference backend: local, cloud or agent")
	model := fs.String("model", "", "model name or alias")
	endpoint := fs.String("endpoint", "", "provider endpoint override")
	apiKey := fs.String("api-key", "", "cloud API key")
	agentCmd := fs.String("agent-command", "", "command of the MCP agent backend")
	skip := fs.Bool("skip-inference", false, "generate fallback content only")
	progressAddr := fs.String("progress-addr", "", "listen address for the websocket progress feed")
	configPath := fs.String("config", "", "optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	file, err := loadFile(firstNonEmpty(*configPath, getenv("GANGPLANK_CONFIG")))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RepoPath:     firstNonEmpty(*repo, getenv("GANGPLANK_REPO"), file.Repo, "."),
		OutDir:       firstNonEmpty(*out, getenv("GANGPLANK_OUT"), file.Out, "onboarding"),
		Project:      firstNonEmpty(*project, getenv("GANGPLANK_PROJECT"), file.Project),
		Provider:     strings.ToLower(firstNonEmpty(*providerKind, getenv("GANGPLANK_PROVIDER"), file.Provider, ProviderLocal)),
		Model:        firstNonEmpty(*model, getenv("GANGPLANK_MODEL"), file.Model),
		Endpoint:     firstNonEmpty(*endpoint, getenv("GANGPLANK_ENDPOINT"), file.Endpoint),
		APIKey:       firstNonEmpty(*apiKey, getenv("GANGPLANK_API_KEY"), file.APIKey),
		AgentCommand: firstNonEmpty(*agentCmd, getenv("GANGPLANK_AGENT_COMMAND"), file.AgentCommand),
		ProgressAddr: firstNonEmpty(*progressAddr, getenv("GANGPLANK_PROGRESS_ADDR"), file.ProgressAddr),
	}
	cfg.SkipInference = *skip || boolEnv("GANGPLANK_SKIP_INFERENCE") || file.SkipInference

	cfg.S3 = artifact.S3Config{
		Endpoint:  firstNonEmpty(getenv("GANGPLANK_S3_ENDPOINT"), file.S3.Endpoint),
		Region:    firstNonEmpty(getenv("GANGPLANK_S3_REGION"), file.S3.Region, "us-east-1"),
		AccessKey: firstNonEmpty(getenv("GANGPLANK_S3_ACCESS_KEY"), file.S3.AccessKey),
		SecretKey: firstNonEmpty(getenv("GANGPLANK_S3_SECRET_KEY"), file.S3.SecretKey),
		Bucket:    firstNonEmpty(getenv("GANGPLANK_S3_BUCKET"), file.S3.Bucket),
		Prefix:    firstNonEmpty(getenv("GANGPLANK_S3_PREFIX"), file.S3.Prefix),
	}
	if raw := getenv("GANGPLANK_S3_USE_SSL"); raw != "" {
		v, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			return nil, errors.Wrap(parseErr, "parse GANGPLANK_S3_USE_SSL")
		}
		cfg.S3.UseSSL = v
	} else {
		cfg.S3.UseSSL = file.S3.UseSSL
	}

	switch cfg.Provider {
	case ProviderLocal, ProviderCloud, ProviderAgent:
	default:
		return nil, errors.Errorf("unknown provider kind %q", cfg.Provider)
	}
	if cfg.Provider == ProviderAgent && cfg.AgentCommand == "" {
		return nil, errors.New("agent provider requires -agent-command")
	}
	return cfg, nil
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, errors.Wrapf(err, "parse config file %s", path)
	}
	return fc, nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func boolEnv(key string) bool {
	raw := getenv(key)
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
