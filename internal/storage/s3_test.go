package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// s3Mock implements s3API with overridable function fields so each test can
// stub exactly the calls it needs.
type s3Mock struct {
	putObject     func(*s3.PutObjectInput) (*s3.PutObjectOutput, error)
	getObject     func(*s3.GetObjectInput) (*s3.GetObjectOutput, error)
	headObject    func(*s3.HeadObjectInput) (*s3.HeadObjectOutput, error)
	listObjectsV2 func(*s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error)
	deleteObject  func(*s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error)
}

func (m *s3Mock) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.putObject(params)
}

func (m *s3Mock) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.getObject(params)
}

func (m *s3Mock) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return m.headObject(params)
}

func (m *s3Mock) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return m.listObjectsV2(params)
}

func (m *s3Mock) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return m.deleteObject(params)
}

type s3PresignMock struct {
	presignGetObject func(*s3.GetObjectInput) (*v4.PresignedHTTPRequest, error)
}

func (m *s3PresignMock) PresignGetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return m.presignGetObject(params)
}

func TestS3Upload(t *testing.T) {
	var gotKey, gotContentType string
	mock := &s3Mock{
		putObject: func(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			gotKey = aws.ToString(in.Key)
			gotContentType = aws.ToString(in.ContentType)
			return &s3.PutObjectOutput{}, nil
		},
	}
	store := newS3StorageWithClients(mock, nil, "photos")

	key, err := store.Upload(context.Background(), "users/42/a.jpg", strings.NewReader("jpeg-bytes"), 10, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "users/42/a.jpg", key)
	assert.Equal(t, "users/42/a.jpg", gotKey)
	assert.Equal(t, "image/jpeg", gotContentType)
}

func TestS3Download(t *testing.T) {
	mock := &s3Mock{
		getObject: func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			return &s3.GetObjectOutput{
				Body:          io.NopCloser(strings.NewReader("jpeg-bytes")),
				ContentType:   aws.String("image/jpeg"),
				ContentLength: aws.Int64(10),
			}, nil
		},
	}
	store := newS3StorageWithClients(mock, nil, "photos")

	stream, obj, err := store.Download(context.Background(), "a.jpg")
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.Equal(t, int64(10), obj.Size)

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestS3DownloadContentTypeFallback(t *testing.T) {
	mock := &s3Mock{
		getObject: func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			return &s3.GetObjectOutput{
				Body:          io.NopCloser(strings.NewReader("png-bytes")),
				ContentLength: aws.Int64(9),
			}, nil
		},
	}
	store := newS3StorageWithClients(mock, nil, "photos")

	stream, obj, err := store.Download(context.Background(), "b.png")
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, "image/png", obj.ContentType)
}

func TestS3DownloadNotFound(t *testing.T) {
	mock := &s3Mock{
		getObject: func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			return nil, &types.NoSuchKey{}
		},
	}
	store := newS3StorageWithClients(mock, nil, "photos")

	_, _, err := store.Download(context.Background(), "ghost.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3StatNotFound(t *testing.T) {
	mock := &s3Mock{
		headObject: func(in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
			return nil, &types.NotFound{}
		},
	}
	store := newS3StorageWithClients(mock, nil, "photos")

	_, err := store.Stat(context.Background(), "ghost.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3StatTransportError(t *testing.T) {
	mock := &s3Mock{
		headObject: func(in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
			return nil, errors.New("connection refused")
		},
	}
	store := newS3StorageWithClients(mock, nil, "photos")

	_, err := store.Stat(context.Background(), "a.jpg")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestS3Stat(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	mock := &s3Mock{
		headObject: func(in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
			return &s3.HeadObjectOutput{
				ContentLength: aws.Int64(10),
				ContentType:   aws.String("image/jpeg"),
				LastModified:  aws.Time(now),
				ETag:          aws.String(`"abc123"`),
			}, nil
		},
	}
	store := newS3StorageWithClients(mock, nil, "photos")

	meta, err := store.Stat(context.Background(), "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "photos", meta.Bucket)
	assert.Equal(t, "a.jpg", meta.Key)
	assert.Equal(t, int64(10), meta.Size)
	assert.Equal(t, now, meta.LastModified)
}

func TestS3ExistsFoldsAllErrors(t *testing.T) {
	mock := &s3Mock{
		headObject: func(in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
			return nil, errors.New("connection refused")
		},
	}
	store := newS3StorageWithClients(mock, nil, "photos")
	assert.False(t, store.Exists(context.Background(), "a.jpg"))

	mock.headObject = func(in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return &s3.HeadObjectOutput{}, nil
	}
	assert.True(t, store.Exists(context.Background(), "a.jpg"))
}

func TestS3ListPaginatesAndFilters(t *testing.T) {
	pages := []*s3.ListObjectsV2Output{
		{
			Contents: []types.Object{
				{Key: aws.String("users/42/a.jpg")},
				{Key: aws.String("users/42/notes.txt")},
			},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("page2"),
		},
		{
			Contents: []types.Object{
				{Key: aws.String("users/42/b.png")},
			},
			IsTruncated: aws.Bool(false),
		},
	}
	var calls int
	mock := &s3Mock{
		listObjectsV2: func(in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			if calls == 1 {
				require.Equal(t, "page2", aws.ToString(in.ContinuationToken))
			}
			out := pages[calls]
			calls++
			return out, nil
		},
	}
	store := newS3StorageWithClients(mock, nil, "photos")

	keys, err := store.List(context.Background(), "users/42/")
	require.NoError(t, err)
	assert.Equal(t, []string{"users/42/a.jpg", "users/42/b.png"}, keys)
	assert.Equal(t, 2, calls)
}

func TestS3PresignedURLSkipsExistenceCheck(t *testing.T) {
	presign := &s3PresignMock{
		presignGetObject: func(in *s3.GetObjectInput) (*v4.PresignedHTTPRequest, error) {
			return &v4.PresignedHTTPRequest{
				URL: "https://photos.s3.amazonaws.com/" + aws.ToString(in.Key) + "?X-Amz-Signature=sig",
			}, nil
		},
	}
	store := newS3StorageWithClients(&s3Mock{}, presign, "photos")

	u, err := store.PresignedDownloadURL(context.Background(), "ghost.jpg", 30*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "ghost.jpg")
}

func TestS3Delete(t *testing.T) {
	var gotKey string
	mock := &s3Mock{
		deleteObject: func(in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
			gotKey = aws.ToString(in.Key)
			return &s3.DeleteObjectOutput{}, nil
		},
	}
	store := newS3StorageWithClients(mock, nil, "photos")

	require.NoError(t, store.Delete(context.Background(), "users/42/a.jpg"))
	assert.Equal(t, "users/42/a.jpg", gotKey)
}
