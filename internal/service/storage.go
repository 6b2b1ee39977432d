package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/spf13/afero"
)

// StepMediaDir is the directory (and key prefix) holding step media
const StepMediaDir = "recipe_steps"

// StaticPrefix is the URL path the local store is served under
const StaticPrefix = "/static/" + StepMediaDir

// Store persists media files by generated name. Delete returns ErrNotFound
// for a name that was never stored.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
}

// LocalStore keeps files on a filesystem under <root>/recipe_steps
type LocalStore struct {
	fs  afero.Fs
	dir string
}

// NewLocalStore creates the media directory if needed
func NewLocalStore(fs afero.Fs, root string) (*LocalStore, error) {
	dir := filepath.Join(root, StepMediaDir)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &LocalStore{fs: fs, dir: dir}, nil
}

// Fs exposes the media directory for static serving
func (s *LocalStore) Fs() afero.Fs {
	return afero.NewBasePathFs(s.fs, s.dir)
}

func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	target := filepath.Join(s.dir, name)
	f, err := s.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = s.fs.Remove(target)
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(target)
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return StaticPrefix + "/" + name, nil
}

func (s *LocalStore) Delete(ctx context.Context, name string) error {
	target := filepath.Join(s.dir, name)
	if _, err := s.fs.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return notFound("file not found")
		}
		return err
	}
	return s.fs.Remove(target)
}

// S3API is the subset of the S3 client the store uses
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps files in a bucket under the recipe_steps/ prefix
type S3Store struct {
	client    S3API
	bucket    string
	objectURL func(key string) string
}

// NewS3Store stores objects in bucket; objectURL maps a key to its public URL
func NewS3Store(client S3API, bucket string, objectURL func(key string) string) *S3Store {
	return &S3Store{client: client, bucket: bucket, objectURL: objectURL}
}

func (s *S3Store) key(name string) string {
	return path.Join(StepMediaDir, name)
}

func (s *S3Store) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	key := s.key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.objectURL(key), nil
}

func (s *S3Store) Delete(ctx context.Context, name string) error {
	key := s.key(name)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return notFound("file not found")
		}
		return fmt.Errorf("failed to stat S3 object: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete S3 object: %w", err)
	}
	return nil
}
