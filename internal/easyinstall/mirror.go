package easyinstall

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MirrorClient wraps the S3 client serving s3:// archive URLs. Works with
// AWS and S3-compatible stores such as Cloudflare R2 or MinIO.
type MirrorClient struct {
	Client *s3.Client
}

// NewMirrorClient builds a client from the mirror settings. Without explicit
// keys the default AWS credential chain is used.
func NewMirrorClient(ctx context.Context, mc MirrorConfig) (*MirrorClient, error) {
	options := []func(*config.LoadOptions) error{
		config.WithRegion(mc.Region),
	}
	if mc.AccessKeyID != "" || mc.SecretAccessKey != "" {
		options = append(options, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(mc.AccessKeyID, mc.SecretAccessKey, "")))
	}
	if Debug {
		options = append(options, config.WithClientLogMode(aws.LogRetries|aws.LogRequest|aws.LogResponse))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 mirror config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if mc.Endpoint != "" {
			o.BaseEndpoint = aws.String(mc.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &MirrorClient{Client: client}, nil
}

// parseS3URL splits s3://bucket/key/path into bucket and key.
func parseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid mirror URL %q: %w", raw, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("invalid mirror URL %q: scheme must be s3", raw)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("invalid mirror URL %q: want s3://bucket/key", raw)
	}
	return u.Host, key, nil
}

// Download streams the object named by rawURL into target.
func (m *MirrorClient) Download(ctx context.Context, rawURL, target string) error {
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return err
	}

	arrow("Fetching %s from mirror", key)
	output, err := m.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("mirror get %s: %w", rawURL, err)
	}
	defer output.Body.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, output.Body); err != nil {
		return fmt.Errorf("failed to write to destination file: %w", err)
	}
	return nil
}
