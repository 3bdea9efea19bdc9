package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/amooora/users-service/internal/storage"
)

// ErrNoAvatar is returned when none of the avatar extension candidates exist
// for a user. Having no avatar is an absence, not a fault.
var ErrNoAvatar = errors.New("user has no avatar")

// URLInfo pairs a photo's display name with its presigned URL and full
// storage key.
type URLInfo struct {
	PhotoName string `json:"photoName"`
	URL       string `json:"url"`
	FullPath  string `json:"fullPath"`
}

// Service composes the storage backend with the key naming scheme to provide
// global and user-scoped photo operations. It is stateless; every method
// maps to independent backend calls.
type Service struct {
	store storage.Storage
}

// NewService creates a new photo Service.
func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

// Upload stores an unscoped photo under objectName.
func (s *Service) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	return s.store.Upload(ctx, objectName, r, size, contentType)
}

// Download opens the stream for an unscoped photo.
func (s *Service) Download(ctx context.Context, objectName string) (io.ReadCloser, storage.Object, error) {
	return s.store.Download(ctx, objectName)
}

// URL presigns a download URL for objectName valid for expiryMinutes.
func (s *Service) URL(ctx context.Context, objectName string, expiryMinutes int) (string, error) {
	return s.store.PresignedDownloadURL(ctx, objectName, time.Duration(expiryMinutes)*time.Minute)
}

// List returns image keys under prefix in backend enumeration order.
func (s *Service) List(ctx context.Context, prefix string) ([]string, error) {
	return s.store.List(ctx, prefix)
}

// Exists reports whether objectName exists.
func (s *Service) Exists(ctx context.Context, objectName string) bool {
	return s.store.Exists(ctx, objectName)
}

// Info returns fresh metadata for objectName.
func (s *Service) Info(ctx context.Context, objectName string) (storage.PhotoMetadata, error) {
	return s.store.Stat(ctx, objectName)
}

// UploadUserPhoto stores a photo under the user's namespace. When photoName
// is empty a unique name is generated from the original filename. The stored
// photo name is returned.
func (s *Service) UploadUserPhoto(ctx context.Context, userID, photoName, originalFilename string, r io.Reader, size int64, contentType string) (string, error) {
	if photoName == "" {
		photoName = GenerateUniqueName(originalFilename)
	}
	if _, err := s.store.Upload(ctx, ScopedKey(userID, photoName), r, size, contentType); err != nil {
		return "", err
	}
	log.Printf("photo: stored %q for user %s", photoName, userID)
	return photoName, nil
}

// UploadAvatar stores the user's avatar under the reserved "avatar" name
// with the upload's extension, replacing any previous avatar that used the
// same extension. The full storage key is returned.
func (s *Service) UploadAvatar(ctx context.Context, userID, originalFilename string, r io.Reader, size int64, contentType string) (string, error) {
	key, err := s.store.Upload(ctx, AvatarKey(userID, originalFilename), r, size, contentType)
	if err != nil {
		return "", err
	}
	log.Printf("photo: avatar updated for user %s", userID)
	return key, nil
}

// ResolveAvatar probes the avatar extension candidates in order and returns
// the storage key of the first that exists, or ErrNoAvatar when none do.
func (s *Service) ResolveAvatar(ctx context.Context, userID string) (string, error) {
	for _, ext := range avatarExtensions {
		key := ScopedKey(userID, "avatar"+ext)
		if s.store.Exists(ctx, key) {
			return key, nil
		}
	}
	return "", ErrNoAvatar
}

// AvatarURL resolves the user's avatar and presigns a download URL for it.
func (s *Service) AvatarURL(ctx context.Context, userID string, expiryMinutes int) (string, error) {
	key, err := s.ResolveAvatar(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.store.PresignedDownloadURL(ctx, key, time.Duration(expiryMinutes)*time.Minute)
}

// HasAvatar reports whether any avatar extension candidate exists.
func (s *Service) HasAvatar(ctx context.Context, userID string) bool {
	_, err := s.ResolveAvatar(ctx, userID)
	return err == nil
}

// ListUserPhotos lists the user's photos as bare display names, stripping
// the user prefix from each key. Order follows backend enumeration.
func (s *Service) ListUserPhotos(ctx context.Context, userID string) ([]string, error) {
	prefix := UserPrefix(userID)
	keys, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list photos for user %s: %w", userID, err)
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, strings.TrimPrefix(key, prefix))
	}
	return names, nil
}

// CountUserPhotos returns how many photos the user has stored.
func (s *Service) CountUserPhotos(ctx context.Context, userID string) (int, error) {
	names, err := s.ListUserPhotos(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// UserPhotoExists reports whether the user's photo exists.
func (s *Service) UserPhotoExists(ctx context.Context, userID, photoName string) bool {
	return s.store.Exists(ctx, ScopedKey(userID, photoName))
}

// UserPhotoURL presigns a download URL for one of the user's photos,
// returning ErrNotFound from the storage layer when the photo is absent.
func (s *Service) UserPhotoURL(ctx context.Context, userID, photoName string, expiryMinutes int) (string, error) {
	key := ScopedKey(userID, photoName)
	if !s.store.Exists(ctx, key) {
		return "", fmt.Errorf("photo %q for user %s: %w", photoName, userID, storage.ErrNotFound)
	}
	return s.store.PresignedDownloadURL(ctx, key, time.Duration(expiryMinutes)*time.Minute)
}

// AllUserPhotoURLs lists the user's photos and presigns one URL per photo.
// The returned slice preserves listing order; presigning is sequential since
// each call is independent and read-only.
func (s *Service) AllUserPhotoURLs(ctx context.Context, userID string, expiryMinutes int) ([]URLInfo, error) {
	prefix := UserPrefix(userID)
	keys, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list photos for user %s: %w", userID, err)
	}

	expiry := time.Duration(expiryMinutes) * time.Minute
	urls := make([]URLInfo, 0, len(keys))
	for _, key := range keys {
		u, err := s.store.PresignedDownloadURL(ctx, key, expiry)
		if err != nil {
			return nil, fmt.Errorf("presign %q: %w", key, err)
		}
		urls = append(urls, URLInfo{
			PhotoName: strings.TrimPrefix(key, prefix),
			URL:       u,
			FullPath:  key,
		})
	}
	return urls, nil
}

// DeleteUserPhoto removes one of the user's photos.
func (s *Service) DeleteUserPhoto(ctx context.Context, userID, photoName string) error {
	key := ScopedKey(userID, photoName)
	if !s.store.Exists(ctx, key) {
		return fmt.Errorf("photo %q for user %s: %w", photoName, userID, storage.ErrNotFound)
	}
	return s.store.Delete(ctx, key)
}
