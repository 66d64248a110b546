// Package storage uploads customer photos to S3.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

var (
	ErrNotImage      = errors.New("file is not an image")
	ErrNotConfigured = errors.New("image storage is not configured")
)

type Config struct {
	Bucket string
	// Prefix is the folder objects are stored under.
	Prefix string
}

type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// ObjectUploader is satisfied by *manager.Uploader.
type ObjectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type S3Uploader struct {
	uploader ObjectUploader
	cfg      Config
}

// NewS3Uploader builds an uploader from the default AWS credential chain.
func NewS3Uploader(ctx context.Context, cfg Config) (*S3Uploader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return NewS3UploaderWith(manager.NewUploader(client), cfg), nil
}

func NewS3UploaderWith(uploader ObjectUploader, cfg Config) *S3Uploader {
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	return &S3Uploader{uploader: uploader, cfg: cfg}
}

// UploadImage stores body under a fresh key after checking that its content
// sniffs as an image. The declared content type is not trusted.
func (u *S3Uploader) UploadImage(ctx context.Context, body io.Reader) (Image, error) {
	if u.cfg.Bucket == "" {
		return Image{}, ErrNotConfigured
	}

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(body, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Image{}, fmt.Errorf("read upload: %w", err)
	}
	header = header[:n]

	mtype := mimetype.Detect(header)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return Image{}, fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}

	publicID := uuid.NewString()
	if u.cfg.Prefix != "" {
		publicID = path.Join(u.cfg.Prefix, publicID)
	}
	key := publicID + mtype.Extension()

	result, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        io.MultiReader(bytes.NewReader(header), body),
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String(mtype.String()),
	})
	if err != nil {
		return Image{}, fmt.Errorf("upload %s: %w", key, err)
	}
	return Image{URL: result.Location, PublicID: publicID}, nil
}
