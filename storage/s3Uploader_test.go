package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes is a 1x1 transparent PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

type fakeUploader struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.input = input
	f.body, _ = io.ReadAll(input.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &manager.UploadOutput{Location: "https://bucket.s3.amazonaws.com/" + aws.ToString(input.Key)}, nil
}

func TestUploadImage(t *testing.T) {
	fake := &fakeUploader{}
	u := NewS3UploaderWith(fake, Config{Bucket: "magnets", Prefix: "/magnets-prints/"})

	img, err := u.UploadImage(context.Background(), bytes.NewReader(pngBytes))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(img.PublicID, "magnets-prints/"))
	assert.Equal(t, "https://bucket.s3.amazonaws.com/"+img.PublicID+".png", img.URL)
	assert.Equal(t, "magnets", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.input.ContentType))
	assert.Equal(t, types.ObjectCannedACLPublicRead, fake.input.ACL)
	assert.Equal(t, pngBytes, fake.body)
}

func TestUploadImageLargeBodyIsComplete(t *testing.T) {
	fake := &fakeUploader{}
	u := NewS3UploaderWith(fake, Config{Bucket: "magnets"})

	payload := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 10000)...)
	_, err := u.UploadImage(context.Background(), bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, payload, fake.body)
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	fake := &fakeUploader{}
	u := NewS3UploaderWith(fake, Config{Bucket: "magnets"})

	_, err := u.UploadImage(context.Background(), strings.NewReader("%PDF-1.4 not a photo"))
	assert.ErrorIs(t, err, ErrNotImage)
	assert.Nil(t, fake.input)
}

func TestUploadImageFailures(t *testing.T) {
	_, err := NewS3UploaderWith(&fakeUploader{}, Config{}).UploadImage(context.Background(), bytes.NewReader(pngBytes))
	assert.ErrorIs(t, err, ErrNotConfigured)

	boom := errors.New("access denied")
	_, err = NewS3UploaderWith(&fakeUploader{err: boom}, Config{Bucket: "magnets"}).UploadImage(context.Background(), bytes.NewReader(pngBytes))
	assert.ErrorIs(t, err, boom)
}
