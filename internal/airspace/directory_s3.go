package airspace

import (
	"context"
	"fmt"
	"net/http"
	"path"

	"airdata/internal/core/logger"
	"airdata/internal/core/types"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

const defaultRegion = "us-east-1"

// S3Config locates an S3-compatible bucket mirroring the airspace files.
type S3Config struct {
	Bucket   string
	Endpoint string
	Region   string
	// Profile selects shared credentials; without one requests are anonymous.
	Profile string
}

// S3Directory lists airspace files from an S3-compatible mirror.
type S3Directory struct {
	bucket string
	client *s3.S3
	logger *logger.Logger
}

// NewS3Directory creates the session for cfg. httpClient may be nil.
func NewS3Directory(cfg S3Config, httpClient *http.Client, log *logger.Logger) (*S3Directory, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 directory: bucket is required")
	}
	if log == nil {
		log = logger.NewLogger(logger.WithName("directory"))
	}

	awsConfig := aws.Config{Region: aws.String(defaultRegion)}
	if cfg.Region != "" {
		awsConfig.Region = aws.String(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	if httpClient != nil {
		awsConfig.HTTPClient = httpClient
	}

	opts := session.Options{Config: awsConfig}
	switch cfg.Profile {
	case "":
		opts.Config.Credentials = credentials.AnonymousCredentials
	default:
		opts.Profile = cfg.Profile
		opts.SharedConfigState = session.SharedConfigEnable
	}

	sess, err := session.NewSessionWithOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("s3 directory: %w", err)
	}

	return &S3Directory{
		bucket: cfg.Bucket,
		client: s3.New(sess),
		logger: log,
	}, nil
}

func (d *S3Directory) ListAvailable(ctx context.Context) []types.DirectoryEntry {
	entries := []types.DirectoryEntry{}
	err := d.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(d.bucket),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			key := path.Base(aws.StringValue(obj.Key))
			size := aws.Int64Value(obj.Size)
			if !keyPattern.MatchString(key) || size <= 0 {
				continue
			}
			entries = append(entries, types.DirectoryEntry{Key: key, Size: types.Bytes(size)})
		}
		return !lastPage
	})
	if err != nil {
		d.logger.Warn("airspace mirror unavailable, using snapshot", "bucket", d.bucket, "snapshot", SnapshotDate, "error", err)
		return Snapshot()
	}
	return entries
}
