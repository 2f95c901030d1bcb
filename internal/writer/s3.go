package writer

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "itchflow/config"
	"itchflow/logger"
)

// Uploader pushes finished output files to an S3 bucket under a run
// prefix.
type Uploader struct {
	client *s3.Client
	bucket string
	prefix string
	log    *logger.Entry
}

// NewUploader configures the AWS SDK and validates credentials. Static
// credentials from config take precedence over the default chain.
func NewUploader(ctx context.Context, cfg appconfig.S3Config) (*Uploader, error) {
	log := logger.GetLogger().WithComponent("s3_uploader")

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.WithError(err).Warn("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return nil, fmt.Errorf("aws credentials not found")
	}

	return &Uploader{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		log:    log,
	}, nil
}

// Upload puts one object under the configured prefix.
func (u *Uploader) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	fullKey := path.Join(u.prefix, key)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", u.bucket, fullKey, err)
	}

	u.log.WithFields(logger.Fields{
		"bucket": u.bucket,
		"key":    fullKey,
		"bytes":  len(data),
	}).Info("uploaded object")
	return nil
}
