// Package archive stores certificate metadata documents in S3-compatible
// object storage (Cloudflare R2). The ledger token carries only a short
// metadata reference; the full document lives here.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/zubeidhendricks/africhain/internal/ledger"
)

// Configuration errors.
var (
	ErrMissingBucket    = errors.New("bucket name is required")
	ErrMissingAccessKey = errors.New("access key ID is required")
	ErrMissingSecretKey = errors.New("secret access key is required")
	ErrMissingEndpoint  = errors.New("endpoint is required")
)

// document is the archived JSON shape. It carries more than fits in the
// on-token metadata bytes.
type document struct {
	ProductID         string    `json:"product_id"`
	ProductName       string    `json:"product_name,omitempty"`
	AuthenticityScore float64   `json:"authenticity_score"`
	ArchivedAt        time.Time `json:"archived_at"`
}

// Service archives certificate metadata. Implements ledger.Archiver.
type Service struct {
	s3Client   *s3.Client
	bucketName string
	timeNow    func() time.Time // For testability
}

// ServiceConfig holds configuration for the archive service.
type ServiceConfig struct {
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// NewService creates the archive service with an R2-compatible S3 client.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.BucketName == "" {
		return nil, ErrMissingBucket
	}
	if cfg.AccessKeyID == "" {
		return nil, ErrMissingAccessKey
	}
	if cfg.SecretAccessKey == "" {
		return nil, ErrMissingSecretKey
	}
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	s3Client := s3.New(s3.Options{
		Region: "auto", // R2 uses auto region
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // No session token for R2
		)),
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: true, // R2 requires path-style addressing
	})

	return &Service{
		s3Client:   s3Client,
		bucketName: cfg.BucketName,
		timeNow:    time.Now,
	}, nil
}

// objectKey builds the storage key for one certificate document.
// Pattern: certificates/{productID}/{uuid}.json
func objectKey(productID string) string {
	return fmt.Sprintf("certificates/%s/%s.json", sanitizePathComponent(productID), uuid.New().String())
}

// sanitizePathComponent removes potentially dangerous characters from path
// components; only alphanumerics, hyphens and underscores survive.
func sanitizePathComponent(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "unknown"
	}
	return result.String()
}

// StoreCertificateMetadata uploads the metadata document and returns its
// object key.
func (s *Service) StoreCertificateMetadata(ctx context.Context, meta ledger.CertificateMetadata) (string, error) {
	doc := document{
		ProductID:         meta.ProductID,
		ProductName:       meta.ProductName,
		AuthenticityScore: meta.AuthenticityScore,
		ArchivedAt:        s.timeNow().UTC(),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode certificate document: %w", err)
	}

	key := objectKey(meta.ProductID)
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("archive certificate document: %w", err)
	}
	return key, nil
}
