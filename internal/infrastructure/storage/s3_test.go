package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(b))
	return &s3.PutObjectOutput{}, nil
}

func TestS3PhotoStore_Put(t *testing.T) {
	fake := &fakePutter{}
	store := newS3PhotoStore(fake, "photos", "https://cdn.example.com")

	url, err := store.Put(context.Background(), "products/1/a.png", "image/png", strings.NewReader("png"), 3)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/products/1/a.png", url)
	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "photos", aws.ToString(in.Bucket))
	assert.Equal(t, "products/1/a.png", aws.ToString(in.Key))
	assert.Equal(t, "image/png", aws.ToString(in.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(in.ContentLength))
	assert.Equal(t, "png", fake.bodies[0])
}

func TestS3PhotoStore_PutError(t *testing.T) {
	store := newS3PhotoStore(&fakePutter{err: errors.New("access denied")}, "photos", "https://cdn.example.com")

	_, err := store.Put(context.Background(), "k", "image/png", strings.NewReader("x"), 1)
	assert.ErrorContains(t, err, "access denied")
}

func TestNewS3PhotoStore_RequiresBucket(t *testing.T) {
	_, err := NewS3PhotoStore(context.Background(), S3Config{})
	assert.Error(t, err)
}
