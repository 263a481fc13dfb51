package filestore

import (
	"os"
	"strconv"
	"strings"

	"github.com/koustreak/typegen/internal/errs"
)

// Provider identifies the file storage backend.
type Provider string

const (
	ProviderLocal Provider = "local"
	ProviderMinIO Provider = "minio"
)

// Location is a parsed output destination.
type Location struct {
	Provider Provider
	Bucket   string // object storage only
	Key      string // file path, or object key inside Bucket
}

func (l Location) String() string {
	if l.Provider == ProviderMinIO {
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return l.Key
}

// ParseLocation reads s3://bucket/key as an object storage location and
// anything else as a local file path.
func ParseLocation(s string) (Location, error) {
	rest, ok := strings.CutPrefix(s, "s3://")
	if !ok {
		if s == "" {
			return Location{}, errs.Config("Expected a file path, received ''", "outFile")
		}
		return Location{Provider: ProviderLocal, Key: s}, nil
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return Location{}, errs.Config("Expected s3://<bucket>/<key>, received '"+s+"'", "outFile")
	}
	return Location{Provider: ProviderMinIO, Bucket: bucket, Key: key}, nil
}

// Config holds all settings needed to connect to a file storage backend.
type Config struct {
	// Provider is the storage backend (e.g. ProviderMinIO).
	Provider Provider

	// Endpoint is the host:port of the storage server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends (e.g. AWS S3).
	// Leave empty for MinIO.
	Region string

	// Bucket holds the output document.
	Bucket string
}

// DefaultConfig returns a sensible local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    false,
	}
}

// ConfigFromEnv builds the object storage config for loc from the
// environment: MINIO_ENDPOINT (or S3_ENDPOINT), AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY, AWS_REGION and S3_USE_SSL.
func ConfigFromEnv(loc Location) *Config {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = os.Getenv("S3_ENDPOINT")
	}
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	cfg := DefaultConfig(endpoint, os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"))
	cfg.Region = os.Getenv("AWS_REGION")
	cfg.Bucket = loc.Bucket
	if v, err := strconv.ParseBool(os.Getenv("S3_USE_SSL")); err == nil {
		cfg.UseSSL = v
	}
	return cfg
}
