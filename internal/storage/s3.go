package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/unalkalkan/bucketblob/internal/socketaccess"
)

// S3Client implements ObjectClient for S3-compatible storage
type S3Client struct {
	client *s3.Client

	// transport is set once the SDK builds its HTTP client
	transport *atomic.Pointer[http.Transport]
}

// S3Options holds S3 client configuration
type S3Options struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool

	// MaxAttempts overrides the SDK retry attempts when positive
	MaxAttempts int

	// Gate, when set, guards every outbound connection of the client
	Gate *socketaccess.Gate
}

// NewS3Client creates a new S3 client
func NewS3Client(ctx context.Context, opts S3Options) (*S3Client, error) {
	// A buildable client lets the SDK add its own transport settings, such as a custom CA bundle
	transport := &atomic.Pointer[http.Transport]{}
	httpClient := awshttp.NewBuildableClient().WithTransportOptions(func(tr *http.Transport) {
		if opts.Gate != nil {
			tr.DialContext = opts.Gate.DialContext
		}
		transport.Store(tr)
	})

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
		config.WithHTTPClient(httpClient),
		// S3-compatible stores often reject the newer default checksum trailers
		config.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
		config.WithResponseChecksumValidation(aws.ResponseChecksumValidationWhenRequired),
	}
	if opts.MaxAttempts > 0 {
		loadOpts = append(loadOpts, config.WithRetryMaxAttempts(opts.MaxAttempts))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		// Use static credentials
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with custom endpoint if provided
	var clientOpts []func(*s3.Options)
	if opts.Endpoint != "" {
		endpoint := opts.Endpoint
		if !strings.Contains(endpoint, "://") {
			if opts.UseSSL {
				endpoint = "https://" + endpoint
			} else {
				endpoint = "http://" + endpoint
			}
		}
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // Required for MinIO and similar services
		})
	}

	return &S3Client{
		client:    s3.NewFromConfig(cfg, clientOpts...),
		transport: transport,
	}, nil
}

// BucketExists implements ObjectClient
func (s *S3Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check bucket: %w", err)
	}
	return true, nil
}

// ListObjects implements ObjectClient using the marker-based listing API
func (s *S3Client) ListObjects(ctx context.Context, req ListObjectsRequest) (*ObjectListing, error) {
	input := &s3.ListObjectsInput{
		Bucket: aws.String(req.Bucket),
		Prefix: aws.String(req.Prefix),
	}
	if req.Marker != "" {
		input.Marker = aws.String(req.Marker)
	}
	if req.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(req.MaxKeys))
	}

	out, err := s.client.ListObjects(ctx, input)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("failed to list objects: %w", ErrBucketNotFound)
		}
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	listing := &ObjectListing{
		Summaries:   make([]ObjectSummary, 0, len(out.Contents)),
		NextMarker:  aws.ToString(out.NextMarker),
		IsTruncated: aws.ToBool(out.IsTruncated),
	}
	for _, obj := range out.Contents {
		if obj.Key == nil {
			continue
		}
		listing.Summaries = append(listing.Summaries, ObjectSummary{
			Key:  *obj.Key,
			Size: aws.ToInt64(obj.Size),
		})
	}

	// NextMarker is only returned for delimited listings; otherwise resume after the last key
	if listing.IsTruncated && listing.NextMarker == "" && len(listing.Summaries) > 0 {
		listing.NextMarker = listing.Summaries[len(listing.Summaries)-1].Key
	}

	return listing, nil
}

// ObjectExists implements ObjectClient
func (s *S3Client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return true, nil
}

// GetObject implements ObjectClient
func (s *S3Client) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("failed to get object %s: %w", key, ErrBlobNotFound)
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	return result.Body, nil
}

// PutObject implements ObjectClient. failIfExists is sent as a conditional write
// and enforced by the service.
func (s *S3Client) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, failIfExists bool) error {
	body, ok := r.(io.ReadSeeker)
	if !ok {
		// The signer needs a seekable body; buffer anything else in memory
		buf, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("failed to read data: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if failIfExists {
		input.IfNoneMatch = aws.String("*")
	}

	_, err := s.client.PutObject(ctx, input)
	if err != nil {
		if isPreconditionFailed(err) {
			return fmt.Errorf("key %s: %w", key, ErrBlobAlreadyExists)
		}
		return fmt.Errorf("failed to put object: %w", err)
	}

	return nil
}

// DeleteObject implements ObjectClient
func (s *S3Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// DeleteObjects implements ObjectClient
func (s *S3Client) DeleteObjects(ctx context.Context, bucket string, keys []string) error {
	if len(keys) > MaxDeleteKeys {
		return fmt.Errorf("delete request has %d keys, limit is %d", len(keys), MaxDeleteKeys)
	}

	objects := make([]s3types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, s3types.ObjectIdentifier{
			Key: aws.String(key),
		})
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &s3types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete objects: %w", err)
	}

	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("failed to delete %d of %d objects, first %s: %s %s",
			len(out.Errors), len(keys),
			aws.ToString(first.Key), aws.ToString(first.Code), aws.ToString(first.Message))
	}

	return nil
}

// CopyObject implements ObjectClient
func (s *S3Client) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(copySource(srcBucket, srcKey)),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("failed to copy object %s: %w", srcKey, ErrBlobNotFound)
		}
		return fmt.Errorf("failed to copy object: %w", err)
	}

	return nil
}

// Shutdown closes idle connections
func (s *S3Client) Shutdown() error {
	if tr := s.transport.Load(); tr != nil {
		tr.CloseIdleConnections()
	}
	return nil
}

func copySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return bucket + "/" + strings.Join(segments, "/")
}

func isNotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	var noSuchBucket *s3types.NoSuchBucket
	var notFound *s3types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) || errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
		return true
	}

	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusPreconditionFailed
}
