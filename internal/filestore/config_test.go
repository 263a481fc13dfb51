package filestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/typegen/internal/errs"
)

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("./src/db.d.ts")
	require.NoError(t, err)
	assert.Equal(t, Location{Provider: ProviderLocal, Key: "./src/db.d.ts"}, loc)
	assert.Equal(t, "./src/db.d.ts", loc.String())

	loc, err = ParseLocation("s3://schemas/app/db.d.ts")
	require.NoError(t, err)
	assert.Equal(t, Location{Provider: ProviderMinIO, Bucket: "schemas", Key: "app/db.d.ts"}, loc)
	assert.Equal(t, "s3://schemas/app/db.d.ts", loc.String())

	for _, bad := range []string{"", "s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		_, err := ParseLocation(bad)
		require.Error(t, err, bad)
		assert.True(t, errs.IsConfig(err), bad)
		assert.Equal(t, []string{"outFile"}, errs.PathOf(err))
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "")
	t.Setenv("S3_ENDPOINT", "s3.internal:9000")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("S3_USE_SSL", "true")

	cfg := ConfigFromEnv(Location{Provider: ProviderMinIO, Bucket: "schemas", Key: "db.d.ts"})
	assert.Equal(t, &Config{
		Provider:  ProviderMinIO,
		Endpoint:  "s3.internal:9000",
		AccessKey: "AKIA",
		SecretKey: "secret",
		UseSSL:    true,
		Region:    "eu-west-1",
		Bucket:    "schemas",
	}, cfg)
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "")
	t.Setenv("S3_ENDPOINT", "")
	t.Setenv("S3_USE_SSL", "")

	cfg := ConfigFromEnv(Location{Provider: ProviderMinIO, Bucket: "b", Key: "k"})
	assert.Equal(t, "localhost:9000", cfg.Endpoint)
	assert.False(t, cfg.UseSSL)
}
