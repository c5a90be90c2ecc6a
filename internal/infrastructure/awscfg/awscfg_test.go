package awscfg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workstation-tools/internal/config"
)

func TestOptions_RegionOnly(t *testing.T) {
	opts := Options(config.AWS{Region: "us-west-2"})
	assert.Len(t, opts, 1)
}

func TestOptions_StaticKeysWinOverProfile(t *testing.T) {
	opts := Options(config.AWS{Region: "us-west-2", Profile: "personal", AccessKeyID: "AKIA", SecretKey: "s"})
	require.Len(t, opts, 2)

	awsCfg, err := Load(context.Background(), config.AWS{Region: "us-west-2", AccessKeyID: "AKIA", SecretKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", awsCfg.Region)
	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIA", creds.AccessKeyID)
}
