package archive_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldstock-api/internal/infrastructure/archive"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Archive_Store(t *testing.T) {
	putter := &fakePutter{}
	a := archive.NewS3Archive(putter, "uploads")

	data := []byte("brandName,sku\nCola,500ml\n")
	location, err := a.Store(context.Background(), "shipment-uploads/sa-1/envios.csv", "text/csv", data)
	require.NoError(t, err)

	assert.Equal(t, "s3://uploads/shipment-uploads/sa-1/envios.csv", location)
	assert.Equal(t, "uploads", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "text/csv", aws.ToString(putter.input.ContentType))
	assert.Equal(t, int64(len(data)), aws.ToInt64(putter.input.ContentLength))
	assert.Len(t, putter.input.Metadata["sha256"], 64)
	assert.Equal(t, data, putter.body)
}

func TestS3Archive_Store_DefaultContentType(t *testing.T) {
	putter := &fakePutter{}
	_, err := archive.NewS3Archive(putter, "uploads").Store(context.Background(), "k", "", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", aws.ToString(putter.input.ContentType))
}

func TestS3Archive_Store_Error(t *testing.T) {
	boom := errors.New("access denied")
	_, err := archive.NewS3Archive(&fakePutter{err: boom}, "uploads").Store(context.Background(), "k", "text/csv", []byte("x"))
	assert.ErrorIs(t, err, boom)
}
