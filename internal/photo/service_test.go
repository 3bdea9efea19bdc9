package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amooora/users-service/internal/storage"
)

// fakeStorage is an in-memory Storage that mirrors the backend contract:
// enumeration in insertion order, image-extension filtering on List, probe
// failures folded to false by Exists.
type fakeStorage struct {
	keys       []string
	objects    map[string]fakeObject
	probeErr   error
	presignErr error
}

type fakeObject struct {
	data        []byte
	contentType string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]fakeObject)}
}

func (f *fakeStorage) put(key, contentType string, data []byte) {
	if _, ok := f.objects[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.objects[key] = fakeObject{data: data, contentType: contentType}
}

func (f *fakeStorage) Upload(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.put(key, contentType, data)
	return key, nil
}

func (f *fakeStorage) Download(_ context.Context, key string) (io.ReadCloser, storage.Object, error) {
	obj, ok := f.objects[key]
	if !ok {
		return nil, storage.Object{}, fmt.Errorf("get object %q: %w", key, storage.ErrNotFound)
	}
	contentType := obj.contentType
	if contentType == "" {
		contentType = storage.ContentTypeForKey(key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), storage.Object{ContentType: contentType, Size: int64(len(obj.data))}, nil
}

func (f *fakeStorage) PresignedDownloadURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	// No existence check, matching the real backends.
	return fmt.Sprintf("https://storage.test/photos/%s?expires=%d", key, int(expiry.Minutes())), nil
}

func (f *fakeStorage) List(_ context.Context, prefix string) ([]string, error) {
	out := make([]string, 0)
	for _, key := range f.keys {
		if strings.HasPrefix(key, prefix) && storage.IsImageKey(key) {
			out = append(out, key)
		}
	}
	return out, nil
}

func (f *fakeStorage) Exists(_ context.Context, key string) bool {
	if f.probeErr != nil {
		return false
	}
	_, ok := f.objects[key]
	return ok
}

func (f *fakeStorage) Stat(_ context.Context, key string) (storage.PhotoMetadata, error) {
	if f.probeErr != nil {
		return storage.PhotoMetadata{}, f.probeErr
	}
	obj, ok := f.objects[key]
	if !ok {
		return storage.PhotoMetadata{}, fmt.Errorf("stat object %q: %w", key, storage.ErrNotFound)
	}
	return storage.PhotoMetadata{
		Bucket:      "photos",
		Key:         key,
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
		ETag:        "etag-" + key,
	}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	if _, ok := f.objects[key]; !ok {
		return fmt.Errorf("remove object %q: %w", key, storage.ErrNotFound)
	}
	delete(f.objects, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
	return nil
}

var _ storage.Storage = (*fakeStorage)(nil)

func TestUploadUserPhotoExplicitName(t *testing.T) {
	store := newFakeStorage()
	svc := NewService(store)

	name, err := svc.UploadUserPhoto(context.Background(), "42", "holiday.png", "original.png",
		bytes.NewReader([]byte("png-bytes")), 9, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "holiday.png", name)
	assert.True(t, store.Exists(context.Background(), "users/42/holiday.png"))
}

func TestUploadUserPhotoGeneratedName(t *testing.T) {
	store := newFakeStorage()
	svc := NewService(store)

	name, err := svc.UploadUserPhoto(context.Background(), "42", "", "original.webp",
		bytes.NewReader([]byte("webp-bytes")), 10, "image/webp")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".webp"), "generated name should keep the extension, got %q", name)
	assert.True(t, store.Exists(context.Background(), "users/42/"+name))
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	store := newFakeStorage()
	svc := NewService(store)

	payload := []byte("image-bytes")
	_, err := svc.Upload(context.Background(), "cat.jpg", bytes.NewReader(payload), int64(len(payload)), "image/jpeg")
	require.NoError(t, err)

	stream, obj, err := svc.Download(context.Background(), "cat.jpg")
	require.NoError(t, err)
	defer stream.Close()

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, "image/jpeg", obj.ContentType)
}

func TestDownloadMissing(t *testing.T) {
	svc := NewService(newFakeStorage())

	_, _, err := svc.Download(context.Background(), "ghost.jpg")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResolveAvatar(t *testing.T) {
	store := newFakeStorage()
	store.put("users/42/avatar.png", "image/png", []byte("png"))
	svc := NewService(store)

	key, err := svc.ResolveAvatar(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "users/42/avatar.png", key)
}

func TestResolveAvatarProbeOrder(t *testing.T) {
	store := newFakeStorage()
	store.put("users/42/avatar.webp", "image/webp", []byte("webp"))
	store.put("users/42/avatar.jpeg", "image/jpeg", []byte("jpeg"))
	svc := NewService(store)

	// .jpeg precedes .webp in the candidate order.
	key, err := svc.ResolveAvatar(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "users/42/avatar.jpeg", key)
}

func TestResolveAvatarNone(t *testing.T) {
	store := newFakeStorage()
	store.put("users/42/holiday.png", "image/png", []byte("png"))
	svc := NewService(store)

	_, err := svc.ResolveAvatar(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNoAvatar)
	assert.False(t, svc.HasAvatar(context.Background(), "42"))
}

func TestAvatarURL(t *testing.T) {
	store := newFakeStorage()
	store.put("users/42/avatar.jpg", "image/jpeg", []byte("jpg"))
	svc := NewService(store)

	url, err := svc.AvatarURL(context.Background(), "42", 30)
	require.NoError(t, err)
	assert.Contains(t, url, "users/42/avatar.jpg")
}

func TestListUserPhotos(t *testing.T) {
	store := newFakeStorage()
	store.put("users/42/a.jpg", "image/jpeg", nil)
	store.put("users/42/b.png", "image/png", nil)
	store.put("users/7/c.jpg", "image/jpeg", nil)
	store.put("users/42/notes.txt", "text/plain", nil)
	svc := NewService(store)

	names, err := svc.ListUserPhotos(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.png"}, names)

	count, err := svc.CountUserPhotos(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAllUserPhotoURLs(t *testing.T) {
	store := newFakeStorage()
	store.put("users/42/a.jpg", "image/jpeg", nil)
	store.put("users/42/b.png", "image/png", nil)
	svc := NewService(store)

	urls, err := svc.AllUserPhotoURLs(context.Background(), "42", 60)
	require.NoError(t, err)
	require.Len(t, urls, 2)

	// Listing order is preserved in the result.
	assert.Equal(t, "a.jpg", urls[0].PhotoName)
	assert.Equal(t, "users/42/a.jpg", urls[0].FullPath)
	assert.Contains(t, urls[0].URL, "users/42/a.jpg")
	assert.Equal(t, "b.png", urls[1].PhotoName)
}

func TestAllUserPhotoURLsPresignFailure(t *testing.T) {
	store := newFakeStorage()
	store.put("users/42/a.jpg", "image/jpeg", nil)
	store.presignErr = errors.New("missing credentials")
	svc := NewService(store)

	_, err := svc.AllUserPhotoURLs(context.Background(), "42", 60)
	assert.Error(t, err)
}

func TestUserPhotoURLRequiresExistence(t *testing.T) {
	store := newFakeStorage()
	svc := NewService(store)

	_, err := svc.UserPhotoURL(context.Background(), "42", "ghost.jpg", 60)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	store.put("users/42/real.jpg", "image/jpeg", nil)
	url, err := svc.UserPhotoURL(context.Background(), "42", "real.jpg", 60)
	require.NoError(t, err)
	assert.Contains(t, url, "users/42/real.jpg")
}

func TestDeleteUserPhoto(t *testing.T) {
	store := newFakeStorage()
	store.put("users/42/a.jpg", "image/jpeg", nil)
	svc := NewService(store)

	require.NoError(t, svc.DeleteUserPhoto(context.Background(), "42", "a.jpg"))
	assert.False(t, svc.UserPhotoExists(context.Background(), "42", "a.jpg"))

	err := svc.DeleteUserPhoto(context.Background(), "42", "a.jpg")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestHasAvatar(t *testing.T) {
	store := newFakeStorage()
	svc := NewService(store)

	assert.False(t, svc.HasAvatar(context.Background(), "42"))

	store.put("users/42/avatar.png", "image/png", nil)
	assert.True(t, svc.HasAvatar(context.Background(), "42"))
}

func TestCountUserPhotos(t *testing.T) {
	store := newFakeStorage()
	store.put("users/42/a.jpg", "image/jpeg", nil)
	store.put("users/42/b.png", "image/png", nil)
	store.put("users/42/notes.txt", "text/plain", nil)
	store.put("users/7/c.jpg", "image/jpeg", nil)
	svc := NewService(store)

	n, err := svc.CountUserPhotos(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
