package blobstore

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartsquare-server/config"
)

func TestMemoryStore(t *testing.T) {
	m := NewMemory("memory://blobs/")

	url, err := m.Store(context.Background(), "profile_pictures", "me.png", []byte("png"), "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "memory://blobs/profile_pictures/"))
	assert.True(t, strings.HasSuffix(url, "_me.png"))
	obj, ok := m.Get(url)
	require.True(t, ok)
	assert.Equal(t, []byte("png"), obj.Data)
	assert.Equal(t, "image/png", obj.ContentType)
}

func TestMemoryStoreRejectsEmpty(t *testing.T) {
	_, err := NewMemory("memory://blobs").Store(context.Background(), "docs", "a.pdf", nil, "application/pdf")
	assert.Error(t, err)
}

func TestObjectKeyStripsDirectories(t *testing.T) {
	key := objectKey("docs", "../../etc/passwd")
	assert.True(t, strings.HasPrefix(key, "docs/"))
	assert.True(t, strings.HasSuffix(key, "_passwd"))
	assert.NotContains(t, key, "..")
}

type fakeS3 struct {
	input *s3.PutObjectInput
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{}
	store := &S3{client: fake, bucket: "smartsquare", region: "eu-west-1"}

	url, err := store.Store(context.Background(), "property_documents", "deed.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)

	require.NotNil(t, fake.input)
	assert.Equal(t, "smartsquare", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(fake.input.ContentType))
	assert.Equal(t, "https://smartsquare.s3.eu-west-1.amazonaws.com/"+aws.ToString(fake.input.Key), url)
}

func TestNewSelectsBackend(t *testing.T) {
	store, err := New(context.Background(), &config.Config{BlobBackend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, store)

	_, err = New(context.Background(), &config.Config{BlobBackend: "ftp"})
	assert.Error(t, err)
}
