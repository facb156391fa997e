package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var GConfig *Config

func Init(filePath string) {
	// .env is optional, real environment variables win
	_ = godotenv.Load()
	config, err := os.ReadFile(filePath)
	if err != nil {
		panic(err)
	}
	initFromYaml(config)
	err = GConfig.Verify()
	if err != nil {
		panic(err)
	}
}

func initFromYaml(config []byte) {
	GConfig = nil
	err := yaml.Unmarshal([]byte(os.ExpandEnv(string(config))), &GConfig)
	if err != nil {
		panic(err)
	}
	if GConfig == nil {
		GConfig = &Config{}
	}
	GConfig.fillDefault()
}

type Config struct {
	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
	LogMaxSize    int    `yaml:"log_max_size"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAge     int    `yaml:"log_max_age"`

	MaxInputSize      int64    `yaml:"max_input_size" validate:"gt=0"`
	MaxInputPixels    int64    `yaml:"max_input_pixels" validate:"gte=0"`
	FallbackToLocal   bool     `yaml:"fallback_to_local"`
	RequestTimeout    string   `yaml:"request_timeout"`
	BanDuration       string   `yaml:"ban_duration"`
	RateLimitCooldown string   `yaml:"rate_limit_cooldown"`
	PriorityOrder     []string `yaml:"priority_order"`
	LocalModels       []string `yaml:"local_models" validate:"dive,oneof=u2net u2netp u2net_human_seg"`
	TaskResultTTL     string   `yaml:"task_result_ttl"`

	Providers map[string]Provider `yaml:"providers" validate:"dive"`
	Batch     `yaml:"batch"`
	PDF       `yaml:"pdf"`

	StorageEnabled  bool   `yaml:"storage_enabled"`
	StorageSupplier string `yaml:"storage_supplier" validate:"omitempty,oneof=ali_oss"`
	URLExpires      string `yaml:"url_expires"`
	AliOss          `yaml:"ali_oss"`
	History         `yaml:"history"`
	MySQL           `yaml:"mysql"`
}

func (c *Config) fillDefault() {
	if c.LogFile == "" {
		c.LogFile = "logs/cutout-hub.log"
	}
	if c.LogMaxSize == 0 {
		c.LogMaxSize = 100
	}
	if c.MaxInputSize == 0 {
		c.MaxInputSize = 12 << 20
	}
	if c.MaxInputPixels == 0 {
		c.MaxInputPixels = 40_000_000
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "60s"
	}
	if c.BanDuration == "" {
		c.BanDuration = "10m"
	}
	if c.RateLimitCooldown == "" {
		c.RateLimitCooldown = "1m"
	}
	if c.TaskResultTTL == "" {
		c.TaskResultTTL = "30m"
	}
	if c.URLExpires == "" {
		c.URLExpires = "168h"
	}
	if c.Batch.Concurrency == 0 {
		c.Batch.Concurrency = 3
	}
	if c.Batch.Delay == "" {
		c.Batch.Delay = "1s"
	}
	if c.PDF.TempDir == "" {
		c.PDF.TempDir = os.TempDir()
	}
	if c.PDF.StartingQuality == "" {
		c.PDF.StartingQuality = "printer"
	}
	if c.PDF.Method == "" {
		c.PDF.Method = "ghostscript"
	}
	if c.PDF.GhostscriptPath == "" {
		c.PDF.GhostscriptPath = "gs"
	}
	if c.PDF.QPDFPath == "" {
		c.PDF.QPDFPath = "qpdf"
	}
	if c.PDF.Timeout == "" {
		c.PDF.Timeout = "2m"
	}
}

func (c *Config) Verify() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	for name, value := range map[string]string{
		"request_timeout":     c.RequestTimeout,
		"ban_duration":        c.BanDuration,
		"rate_limit_cooldown": c.RateLimitCooldown,
		"task_result_ttl":     c.TaskResultTTL,
		"url_expires":         c.URLExpires,
		"batch.delay":         c.Batch.Delay,
		"pdf.timeout":         c.PDF.Timeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.StorageEnabled && c.StorageSupplier != "ali_oss" {
		return fmt.Errorf("storage_supplier must be ali_oss")
	}
	return nil
}

// Duration parses a field already checked by Verify.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

type Provider struct {
	APIKey       string  `yaml:"api_key"`
	Endpoint     string  `yaml:"endpoint" validate:"omitempty,url"`
	CostPerImage float64 `yaml:"cost_per_image" validate:"gte=0"`
}

type Batch struct {
	Concurrency int    `yaml:"concurrency" validate:"gte=1"`
	Delay       string `yaml:"delay"`
}

type PDF struct {
	TempDir         string `yaml:"temp_dir"`
	TargetMaxSize   int64  `yaml:"target_max_size" validate:"gte=0"`
	StartingQuality string `yaml:"starting_quality" validate:"oneof=prepress printer default ebook screen"`
	Method          string `yaml:"method" validate:"oneof=ghostscript qpdf"`
	GhostscriptPath string `yaml:"ghostscript_path"`
	QPDFPath        string `yaml:"qpdf_path"`
	Timeout         string `yaml:"timeout"`
}

type AliOss struct {
	AccessKeyId     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Directory       string `yaml:"directory"`
}

type History struct {
	Enabled bool `yaml:"enabled"`
}

type MySQL struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	Charset      string `yaml:"charset"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}
