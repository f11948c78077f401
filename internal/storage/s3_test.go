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

type fakeS3 struct {
	objects   map[string][]byte
	types     map[string]string
	deleteErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_UploadAndDelete(t *testing.T) {
	fake := newFakeS3()
	store := newS3Store(fake, S3Config{Bucket: "avatars", PublicBaseURL: "https://cdn.example.com/"})
	ctx := context.Background()

	result, err := store.Upload(ctx, "workboard_users/u1/a.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/workboard_users/u1/a.png", result.URL)
	assert.Equal(t, []byte("png"), fake.objects["workboard_users/u1/a.png"])
	assert.Equal(t, "image/png", fake.types["workboard_users/u1/a.png"])

	require.NoError(t, store.Delete(ctx, result.Key))
	assert.Empty(t, fake.objects)

	fake.deleteErr = errors.New("access denied")
	assert.Error(t, store.Delete(ctx, result.Key))
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "http://minio:9000/avatars", publicBaseURL(S3Config{Bucket: "avatars", Endpoint: "http://minio:9000/"}))
	assert.Equal(t, "https://avatars.s3.eu-west-1.amazonaws.com", publicBaseURL(S3Config{Bucket: "avatars", Region: "eu-west-1"}))
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("workboard_users", "u1", "Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "workboard_users/u1/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, ObjectKey("workboard_users", "u1", "Photo.JPG"))
}
