package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"savehaven/internal/config"
	"savehaven/internal/haven"
	"savehaven/internal/transfer"
)

const s3Scheme = "s3://"

// modeMetadataKey carries the file mode of a stored save file.
const modeMetadataKey = "mode"

// S3API is the subset of *s3.Client the store uses.
type S3API interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps backup copies as objects:
//
//	s3://<bucket>/<prefix>/saves/<title>/<platform>/<slot>/<name>[/<rel>]
//	s3://<bucket>/<prefix>/catalog/<hostID>.db
//
// A directory backup is one object per file below the backup key.
type S3Store struct {
	client   S3API
	uploader *manager.Uploader
	bucket   string
	prefix   string
	copier   *transfer.Copier
}

// NewS3Store creates a store on top of an existing client.
func NewS3Store(client S3API, bucket, prefix string, copier *transfer.Copier) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		copier:   copier,
	}
}

// NewS3StoreFromConfig builds an S3 client from the store configuration.
// Without static keys the default AWS credential chain is used.
func NewS3StoreFromConfig(ctx context.Context, cfg config.StoreConfig, copier *transfer.Copier) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix, copier), nil
}

func (s *S3Store) objectKey(parts ...string) string {
	return path.Join(append([]string{s.prefix}, parts...)...)
}

func (s *S3Store) Locate(key string) string {
	return s3Scheme + s.bucket + "/" + s.objectKey("saves", key)
}

// Put uploads the file, or every kept file of the directory, at srcPath.
func (s *S3Store) Put(srcPath string, location string) error {
	bucket, base, err := parseS3Location(location)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return s.copier.Walk(srcPath, func(p, rel string, info iofs.FileInfo) error {
		key := base
		if rel != "" {
			key = base + "/" + rel
		}
		if err := s.upload(ctx, bucket, key, p, info.Mode().Perm()); err != nil {
			return fmt.Errorf("%w: uploading %s: %w", haven.ErrIO, p, err)
		}
		return nil
	})
}

// upload streams the encoded file through a pipe so large saves are never held in memory.
func (s *S3Store) upload(ctx context.Context, bucket, key, src string, perm iofs.FileMode) error {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(s.copier.Encode(src, pw))
	}()

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		Body:     pr,
		Metadata: map[string]string{modeMetadataKey: strconv.FormatUint(uint64(perm), 8)},
	})
	// Unblocks the producer if the upload gave up early.
	pr.CloseWithError(err)
	return err
}

// Get downloads the backup at location. A single object is written to dstPath
// (or into it, when dstPath is a directory); a key prefix is written as a tree.
func (s *S3Store) Get(location string, dstPath string) (string, error) {
	bucket, base, err := parseS3Location(location)
	if err != nil {
		return "", err
	}
	ctx := context.Background()

	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(base)})
	switch {
	case err == nil:
		dstPath = transfer.IntoDirectory(dstPath, path.Base(base))
		return dstPath, s.download(ctx, bucket, base, dstPath)
	case !isNotFound(err):
		return "", fmt.Errorf("%w: checking %s: %w", haven.ErrIO, location, err)
	}

	keys, err := s.list(ctx, bucket, base+"/")
	if err != nil {
		return "", fmt.Errorf("%w: listing %s: %w", haven.ErrIO, location, err)
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("%w: backup %s no longer exists", haven.ErrNotFound, location)
	}

	for _, key := range keys {
		rel := strings.TrimPrefix(key, base+"/")
		if err := s.download(ctx, bucket, key, filepath.Join(dstPath, filepath.FromSlash(rel))); err != nil {
			return "", err
		}
	}
	return dstPath, nil
}

func (s *S3Store) download(ctx context.Context, bucket, key, dst string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: object %s no longer exists", haven.ErrNotFound, key)
		}
		return fmt.Errorf("%w: downloading %s: %w", haven.ErrIO, key, err)
	}
	defer out.Body.Close()

	perm := iofs.FileMode(0644)
	if raw, ok := out.Metadata[modeMetadataKey]; ok {
		if parsed, err := strconv.ParseUint(raw, 8, 32); err == nil {
			perm = iofs.FileMode(parsed).Perm()
		}
	}
	return s.copier.Decode(out.Body, dst, perm)
}

func (s *S3Store) list(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// Remove deletes the object at location and every object below it.
func (s *S3Store) Remove(location string) error {
	bucket, base, err := parseS3Location(location)
	if err != nil {
		return err
	}
	ctx := context.Background()

	keys, err := s.list(ctx, bucket, base+"/")
	if err != nil {
		return fmt.Errorf("listing %s: %w", location, err)
	}
	keys = append(keys, base)

	for _, key := range keys {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
	}
	return nil
}

func (s *S3Store) PutCatalog(hostID string, r io.Reader, size int64) error {
	_, err := s.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey("catalog", hostID+".db")),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("uploading catalogue: %w", err)
	}
	return nil
}

// GetCatalog copies the catalogue snapshot for hostID to w.
func (s *S3Store) GetCatalog(hostID string, w io.Writer) error {
	key := s.objectKey("catalog", hostID+".db")
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: no catalogue for host %s", haven.ErrNotFound, hostID)
		}
		return fmt.Errorf("%w: downloading catalogue: %w", haven.ErrIO, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("%w: reading catalogue: %w", haven.ErrIO, err)
	}
	return nil
}

// ValidateSetup lists at most one object to check the bucket and credentials.
func (s *S3Store) ValidateSetup() error {
	_, err := s.client.ListObjectsV2(context.Background(), &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("store bucket %s not accessible: %w", s.bucket, err)
	}
	return nil
}

func parseS3Location(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("not an s3 location: %s", location)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 location: %s", location)
	}
	return bucket, key, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// Compile-time check that S3Store implements haven.Store interface
var _ haven.Store = (*S3Store)(nil)
