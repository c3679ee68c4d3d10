package ops

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hpungsan/masscalc/internal/config"
	"github.com/hpungsan/masscalc/internal/errors"
	"github.com/hpungsan/masscalc/internal/service"
)

// Sink stores a rendered export and returns where it went.
type Sink interface {
	Write(ctx context.Context, doc *service.Document) (string, error)
}

// FileSink writes exports into a local directory.
type FileSink struct {
	Dir string
	Cfg *config.Config
}

// NewFileSink returns a FileSink rooted at dir.
func NewFileSink(dir string, cfg *config.Config) *FileSink {
	return &FileSink{Dir: dir, Cfg: cfg}
}

// Write stores doc as Dir/doc.Name. The document goes to a temp file first and
// is renamed into place, so a failed write never leaves a partial export.
func (s *FileSink) Write(ctx context.Context, doc *service.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if doc == nil || doc.Name == "" {
		return "", errors.NewInvalidRequest("document name is required")
	}

	exportPath := filepath.Join(s.Dir, doc.Name)
	if err := ValidateExportPath(exportPath, s.Dir, s.Cfg); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(doc.Data); err != nil {
		return "", errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return "", errors.NewInternal(err)
	}
	// Close before rename (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return "", errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	// os.Rename fails on Windows when the destination exists; keep the
	// existing file rather than delete-then-rename.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return "", errors.NewInvalidRequest("export destination already exists")
			}
		}
		return "", errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return exportPath, nil
}

// S3PutObjectAPI is the subset of the S3 client used by S3Sink.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads exports to a bucket under an optional key prefix.
type S3Sink struct {
	Client S3PutObjectAPI
	Bucket string
	Prefix string
}

// NewS3Sink builds an S3Sink from the default AWS credential chain.
func NewS3Sink(ctx context.Context, bucket, prefix string) (*S3Sink, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("load aws config: %w", err))
	}
	return &S3Sink{
		Client: s3.NewFromConfig(awsCfg),
		Bucket: bucket,
		Prefix: prefix,
	}, nil
}

// Write uploads doc and returns its s3:// URI.
func (s *S3Sink) Write(ctx context.Context, doc *service.Document) (string, error) {
	if doc == nil || doc.Name == "" {
		return "", errors.NewInvalidRequest("document name is required")
	}
	key := path.Join(strings.Trim(s.Prefix, "/"), doc.Name)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(doc.Data),
	}
	if doc.ContentType != "" {
		input.ContentType = aws.String(doc.ContentType)
	}
	if _, err := s.Client.PutObject(ctx, input); err != nil {
		return "", errors.NewUpstream("s3-put-object", err.Error())
	}
	return "s3://" + s.Bucket + "/" + key, nil
}
