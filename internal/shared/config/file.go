package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the optional YAML configuration file.
type fileConfig struct {
	Server struct {
		Port             string   `yaml:"port"`
		Env              string   `yaml:"env"`
		CORSAllowOrigins []string `yaml:"corsAllowOrigins"`
	} `yaml:"server"`

	Storage struct {
		Type      string `yaml:"type"`
		InputDir  string `yaml:"inputDir"`
		OutputDir string `yaml:"outputDir"`
		S3        struct {
			Region       string `yaml:"region"`
			Bucket       string `yaml:"bucket"`
			InputPrefix  string `yaml:"inputPrefix"`
			OutputPrefix string `yaml:"outputPrefix"`
			KMSKeyID     string `yaml:"kmsKeyId"`
		} `yaml:"s3"`
		MinIO struct {
			Endpoint  string `yaml:"endpoint"`
			AccessKey string `yaml:"accessKey"`
			SecretKey string `yaml:"secretKey"`
			Bucket    string `yaml:"bucket"`
			Region    string `yaml:"region"`
			UseSSL    bool   `yaml:"useSSL"`
		} `yaml:"minio"`
	} `yaml:"storage"`

	LLM struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		BaseURL  string `yaml:"baseURL"`
	} `yaml:"llm"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`

	Analysis struct {
		Timeout        string `yaml:"timeout"`
		Retries        *int   `yaml:"retries"`
		ReportTimezone string `yaml:"reportTimezone"`
		MaxUploadBytes *int   `yaml:"maxUploadBytes"`
	} `yaml:"analysis"`
}

// loadFile parses path. An empty path yields an empty configuration.
func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if strings.TrimSpace(path) == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file: %w", err)
	}
	return fc, nil
}
