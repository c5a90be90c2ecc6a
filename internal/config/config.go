package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration shared by the tools, loaded from environment variables.
type Config struct {
	AWSRegion      string
	AWSProfile     string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DownloadTable   string
	DownloadRegion  string
	DownloadProfile string
	DownloadDir     string
	SNSTopicARN     string

	UploadBucket  string
	UploadRegion  string
	UploadProfile string

	APIPort        string
	APISecret      string
	APITokenTTLDay int
	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSProfile:     getEnv("AWS_PROFILE", ""),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DownloadTable:   getEnv("DOWNLOADER_TABLE", "download-queue"),
		DownloadRegion:  getEnv("DOWNLOADER_REGION", "us-west-2"),
		DownloadProfile: getEnv("DOWNLOADER_PROFILE", "personal"),
		DownloadDir:     getEnv("DOWNLOADER_DIR", home+"/Downloads/downloader"),
		SNSTopicARN:     getEnv("DOWNLOADER_SNS_TOPIC_ARN", ""),

		UploadBucket:  getEnv("S3UPLOAD_BUCKET", "bernard-public"),
		UploadRegion:  getEnv("S3UPLOAD_REGION", "us-east-1"),
		UploadProfile: getEnv("S3UPLOAD_PROFILE", "personal"),

		APIPort:        getEnv("DOWNLOADER_API_PORT", "3000"),
		APISecret:      getEnv("DOWNLOADER_API_SECRET", ""),
		APITokenTTLDay: getEnvInt("DOWNLOADER_API_TOKEN_DAYS", 30),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// AWS describes how to reach one AWS account/region for a single client.
type AWS struct {
	Region      string
	Profile     string
	EndpointURL string
	AccessKeyID string
	SecretKey   string
}

// BaseAWS returns the account-wide AWS settings with no tool override.
func (c *Config) BaseAWS() AWS {
	return AWS{
		Region:      c.AWSRegion,
		Profile:     c.AWSProfile,
		EndpointURL: c.AWSEndpointURL,
		AccessKeyID: c.AWSAccessKeyID,
		SecretKey:   c.AWSSecretKey,
	}
}

// DownloaderAWS returns the AWS settings for the download queue.
func (c *Config) DownloaderAWS() AWS {
	return AWS{
		Region:      c.DownloadRegion,
		Profile:     c.DownloadProfile,
		EndpointURL: c.AWSEndpointURL,
		AccessKeyID: c.AWSAccessKeyID,
		SecretKey:   c.AWSSecretKey,
	}
}

// UploadAWS returns the AWS settings for s3upload.
func (c *Config) UploadAWS() AWS {
	return AWS{
		Region:      c.UploadRegion,
		Profile:     c.UploadProfile,
		EndpointURL: c.AWSEndpointURL,
		AccessKeyID: c.AWSAccessKeyID,
		SecretKey:   c.AWSSecretKey,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
