package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Angabebr/shop-tools/augment"
	"github.com/Angabebr/shop-tools/comments"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Augment  AugmentConfig  `yaml:"augment"`
	Comments CommentsConfig `yaml:"comments"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type AugmentConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	ImgStyle string `yaml:"img_style"`
	// Position is append or prepend; anything else disables insertion.
	Position string `yaml:"position"`
}

type CommentsConfig struct {
	ProductURL      string             `yaml:"product_url"`
	CSV             string             `yaml:"csv"`
	Headless        bool               `yaml:"headless"`
	ChromePath      string             `yaml:"chrome_path"`
	UserDataDir     string             `yaml:"user_data_dir"`
	PageLoadTimeout time.Duration      `yaml:"page_load_timeout"`
	ClickTimeout    time.Duration      `yaml:"click_timeout"`
	SettleDelay     time.Duration      `yaml:"settle_delay"`
	SubmitWait      time.Duration      `yaml:"submit_wait"`
	RowDelay        time.Duration      `yaml:"row_delay"`
	Selectors       comments.Selectors `yaml:"selectors"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"-"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

// Timing returns the submitter delays.
func (c CommentsConfig) Timing() comments.Timing {
	return comments.Timing{
		PageLoadTimeout: c.PageLoadTimeout,
		ClickTimeout:    c.ClickTimeout,
		Settle:          c.SettleDelay,
		SubmitWait:      c.SubmitWait,
		RowDelay:        c.RowDelay,
	}
}

// Default returns the configuration used when no config.yaml exists.
func Default() AppConfig {
	t := comments.DefaultTiming
	return AppConfig{
		Logging: LoggingConfig{Level: "info"},
		Augment: AugmentConfig{
			Input:    "product.csv",
			Output:   "product_updated.csv",
			Position: string(augment.PlacementAppend),
		},
		Comments: CommentsConfig{
			CSV:             "beauty_comments.csv",
			PageLoadTimeout: t.PageLoadTimeout,
			ClickTimeout:    t.ClickTimeout,
			SettleDelay:     t.Settle,
			SubmitWait:      t.SubmitWait,
			RowDelay:        t.RowDelay,
			Selectors:       comments.DefaultSelectors,
		},
		OpenAI: OpenAIConfig{
			Model:    "gpt-4o-mini",
			Language: "Persian",
		},
	}
}

// Load reads the config file at path on top of Default. With an empty path
// config.yaml is searched from the working directory upwards and may be
// absent. The .env file next to the config, or in the working directory, is
// loaded before environment overrides are applied.
func Load(path string) (*AppConfig, error) {
	c := Default()

	explicit := path != ""
	if !explicit {
		if base := GetBasePath(); base != "" {
			path = filepath.Join(base, CONFIG_FILE)
		}
	}

	envDir := "."
	if path != "" {
		envDir = filepath.Dir(path)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &c); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// a missing .env is fine, variables may come from the environment
	_ = godotenv.Load(filepath.Join(envDir, ENV_FILE))

	applyEnv(&c)
	return &c, nil
}

func applyEnv(c *AppConfig) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv("CHROME_PATH"); v != "" {
		c.Comments.ChromePath = v
	}
	if v := os.Getenv("BROWSER_USER_DATA_DIR"); v != "" {
		c.Comments.UserDataDir = v
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Comments.Headless = b
		}
	}
}

// GetBasePath walks up from the working directory to the first directory
// holding config.yaml, or returns "".
func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
