package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeForKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"cat.jpg", "image/jpeg"},
		{"cat.jpeg", "image/jpeg"},
		{"cat.PNG", "image/png"},
		{"banner.gif", "image/gif"},
		{"icon.webp", "image/webp"},
		{"scan.bmp", "image/bmp"},
		{"logo.svg", "image/svg+xml"},
		{"users/42/a.jpg", "image/jpeg"},
		{"notes.txt", "application/octet-stream"},
		{"noextension", "application/octet-stream"},
		{"", "application/octet-stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContentTypeForKey(tt.key), "key %q", tt.key)
	}
}

func TestIsImageKey(t *testing.T) {
	assert.True(t, IsImageKey("cat.jpg"))
	assert.True(t, IsImageKey("users/42/b.PNG"))
	assert.True(t, IsImageKey("a.b.webp"))
	assert.False(t, IsImageKey("notes.txt"))
	assert.False(t, IsImageKey("archive.zip"))
	assert.False(t, IsImageKey("noextension"))
}
