package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Provider represents the S3-compatible storage provider
type S3Provider string

const (
	S3ProviderAWS    S3Provider = "aws"
	S3ProviderWasabi S3Provider = "wasabi"
	// S3ProviderCustom is any endpoint speaking the S3 API (MinIO in development).
	S3ProviderCustom S3Provider = "custom"
)

// S3ClientConfig holds configuration for S3-compatible storage
type S3ClientConfig struct {
	Provider        S3Provider
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Endpoint        string // required for wasabi and custom, e.g. "http://127.0.0.1:9000"
	PublicBaseURL   string // prefix for object URLs handed to clients
}

// WasabiEndpoints maps regions to Wasabi endpoints
var WasabiEndpoints = map[string]string{
	"us-east-1":      "https://s3.us-east-1.wasabisys.com",
	"us-east-2":      "https://s3.us-east-2.wasabisys.com",
	"us-west-1":      "https://s3.us-west-1.wasabisys.com",
	"eu-central-1":   "https://s3.eu-central-1.wasabisys.com",
	"eu-west-1":      "https://s3.eu-west-1.wasabisys.com",
	"eu-west-2":      "https://s3.eu-west-2.wasabisys.com",
	"ap-northeast-1": "https://s3.ap-northeast-1.wasabisys.com",
	"ap-southeast-1": "https://s3.ap-southeast-1.wasabisys.com",
}

// ResolveEndpoint returns the endpoint to dial, "" meaning the AWS default.
func (c S3ClientConfig) ResolveEndpoint() string {
	switch c.Provider {
	case S3ProviderWasabi:
		if c.Endpoint != "" {
			return c.Endpoint
		}
		if endpoint, ok := WasabiEndpoints[c.Region]; ok {
			return endpoint
		}
		return WasabiEndpoints["eu-central-1"]
	case S3ProviderCustom:
		return c.Endpoint
	}
	return ""
}

// PublicURLPrefix is where objects of the bucket can be fetched by browsers.
func (c S3ClientConfig) PublicURLPrefix() string {
	if c.PublicBaseURL != "" {
		return c.PublicBaseURL
	}
	if endpoint := c.ResolveEndpoint(); endpoint != "" {
		return endpoint + "/" + c.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Bucket, c.Region)
}

// NewS3Client creates an S3 client with the given config
func NewS3Client(ctx context.Context, cfg S3ClientConfig) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := cfg.ResolveEndpoint()
	if endpoint == "" {
		return s3.NewFromConfig(awsCfg), nil
	}

	// Non-AWS providers need the explicit endpoint and path-style addressing
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}), nil
}

// TestS3Connection checks the bucket is reachable with the configured credentials
func TestS3Connection(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		return fmt.Errorf("failed to access bucket %s: %w", bucket, err)
	}
	return nil
}
