package assets

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio-api/config"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
	delErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.delErr != nil {
		return nil, f.delErr
	}
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_Upload(t *testing.T) {
	fake := newFakeS3()
	store := newS3Store(fake, config.StorageConfig{Bucket: "media", Region: "eu-west-1"})

	stored, err := store.Upload(context.Background(), Asset{Data: pngBytes, ContentType: "image/png"}, "portfolio")
	require.NoError(t, err)

	assert.Contains(t, fake.objects, stored.ID)
	assert.Equal(t, "image/png", fake.types[stored.ID])
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/"+stored.ID, stored.URL)
}

func TestS3Store_UploadError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("access denied")
	store := newS3Store(fake, config.StorageConfig{Bucket: "media"})

	_, err := store.Upload(context.Background(), Asset{Data: pngBytes}, "portfolio")
	assert.ErrorContains(t, err, "access denied")
}

func TestS3Store_Delete(t *testing.T) {
	fake := newFakeS3()
	fake.objects["portfolio/x.png"] = pngBytes
	store := newS3Store(fake, config.StorageConfig{Bucket: "media"})

	require.NoError(t, store.Delete(context.Background(), "portfolio/x.png"))
	assert.NotContains(t, fake.objects, "portfolio/x.png")
	assert.NoError(t, store.Delete(context.Background(), ""))

	fake.delErr = errors.New("timeout")
	assert.Error(t, store.Delete(context.Background(), "portfolio/y.png"))
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com",
		publicBaseURL(config.StorageConfig{PublicBaseURL: "https://cdn.example.com/", Bucket: "b"}))
	assert.Equal(t, "http://localhost:9000/b",
		publicBaseURL(config.StorageConfig{Endpoint: "http://localhost:9000", Bucket: "b"}))
	assert.Equal(t, "https://b.s3.us-east-1.amazonaws.com",
		publicBaseURL(config.StorageConfig{Bucket: "b", Region: "us-east-1"}))
}
