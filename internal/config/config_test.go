package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"AWS_REGION", "DOWNLOADER_TABLE", "DOWNLOADER_REGION", "S3UPLOAD_BUCKET", "DOWNLOADER_API_TOKEN_DAYS", "ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	t.Setenv("HOME", "/home/me")

	cfg := Load()
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, "download-queue", cfg.DownloadTable)
	assert.Equal(t, "us-west-2", cfg.DownloadRegion)
	assert.Equal(t, "/home/me/Downloads/downloader", cfg.DownloadDir)
	assert.Equal(t, "bernard-public", cfg.UploadBucket)
	assert.Equal(t, 30, cfg.APITokenTTLDay)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DOWNLOADER_TABLE", "q")
	t.Setenv("DOWNLOADER_API_TOKEN_DAYS", "7")
	t.Setenv("ALLOWED_ORIGINS", "https://a,https://b")
	t.Setenv("AWS_ENDPOINT_URL", "http://localhost:4566")

	cfg := Load()
	assert.Equal(t, "q", cfg.DownloadTable)
	assert.Equal(t, 7, cfg.APITokenTTLDay)
	assert.Equal(t, []string{"https://a", "https://b"}, cfg.AllowedOrigins)
	assert.Equal(t, "http://localhost:4566", cfg.DownloaderAWS().EndpointURL)
	assert.Equal(t, "http://localhost:4566", cfg.UploadAWS().EndpointURL)
}

func TestGetEnvInt_BadValueFallsBack(t *testing.T) {
	t.Setenv("DOWNLOADER_API_TOKEN_DAYS", "soon")
	assert.Equal(t, 30, Load().APITokenTTLDay)
}

func TestPerToolAWS(t *testing.T) {
	cfg := &Config{
		AWSRegion: "us-east-1", AWSProfile: "default",
		DownloadRegion: "us-west-2", DownloadProfile: "personal",
		UploadRegion: "eu-west-1", UploadProfile: "uploads",
	}
	assert.Equal(t, AWS{Region: "us-east-1", Profile: "default"}, cfg.BaseAWS())
	assert.Equal(t, AWS{Region: "us-west-2", Profile: "personal"}, cfg.DownloaderAWS())
	assert.Equal(t, AWS{Region: "eu-west-1", Profile: "uploads"}, cfg.UploadAWS())
}
