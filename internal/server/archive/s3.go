// Package archive stores exported audit trails in S3-compatible object
// storage. Descriptions are written as stored, still encrypted.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/crmkeeper/internal/server/config"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
	"github.com/google/uuid"
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3Client = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Archive writes objects into one bucket.
type S3Archive struct {
	bucket string
	client objectPutter
}

// NewS3Archive builds a client from the S3 settings of cfg. A configured
// base endpoint (MinIO and friends) switches to path-style addressing.
func NewS3Archive(ctx context.Context, cfg *sc.Config) (*S3Archive, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := newS3Client(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{bucket: cfg.S3Bucket, client: client}, nil
}

// Put uploads body as a JSON object under key.
func (a *S3Archive) Put(ctx context.Context, key string, body []byte) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", a.bucket, key, err)
	}
	return nil
}

// Key returns a fresh object key for an export of one record's trail.
func Key(orgID string, kind models.EntityType, id string, now time.Time) string {
	d := now.UTC()
	return fmt.Sprintf("audits/%s/%s/%s/%d/%02d/%02d/%v.json", orgID, kind, id, d.Year(), d.Month(), d.Day(), uuid.New())
}
