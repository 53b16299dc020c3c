package deliverables

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Archiver mirrors send-queue artefacts to an S3 bucket so operators can
// pull the kit without shell access to the host.
type S3Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Archiver creates an archiver using the default AWS credential chain.
func NewS3Archiver(ctx context.Context, bucket, prefix string) (*S3Archiver, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		log.Printf("[Deliverables] warning: bucket access check failed: %v", err)
	}

	log.Printf("[Deliverables] S3 archive enabled: bucket=%s prefix=%s region=%s", bucket, prefix, region)
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix}, nil
}

// Archive uploads one artefact under the configured prefix.
func (a *S3Archiver) Archive(ctx context.Context, key string, body []byte, contentType string) error {
	fullKey := a.prefix + key
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", a.bucket, fullKey, err)
	}
	return nil
}
