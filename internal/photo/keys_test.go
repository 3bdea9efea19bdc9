package photo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopedKey(t *testing.T) {
	assert.Equal(t, "users/42/cat.jpg", ScopedKey("42", "cat.jpg"))
	assert.Equal(t, "users/e7eedc79/avatar.png", ScopedKey("e7eedc79", "avatar.png"))
}

func TestUserPrefix(t *testing.T) {
	// The trailing slash keeps user "4" from matching user "42".
	assert.Equal(t, "users/42/", UserPrefix("42"))
	assert.False(t, strings.HasPrefix(UserPrefix("42"), UserPrefix("4")))
}

func TestExtensionOf(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.png", ".png"},
		{"a.b.png", ".png"},
		{"photo.JPG", ".JPG"},
		{"noextension", ".jpg"},
		{"", ".jpg"},
		{"archive.tar.gz", ".gz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtensionOf(tt.filename), "filename %q", tt.filename)
	}
}

func TestGenerateUniqueName(t *testing.T) {
	name := GenerateUniqueName("holiday.png")
	assert.True(t, strings.HasSuffix(name, ".png"))

	name = GenerateUniqueName("noextension")
	assert.True(t, strings.HasSuffix(name, ".jpg"))
}

func TestGenerateUniqueNameCollisions(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		name := GenerateUniqueName("x.jpg")
		_, dup := seen[name]
		require.False(t, dup, "duplicate name %q after %d generations", name, i)
		seen[name] = struct{}{}
	}
}

func TestAvatarKey(t *testing.T) {
	assert.Equal(t, "users/42/avatar.png", AvatarKey("42", "selfie.png"))
	assert.Equal(t, "users/42/avatar.jpg", AvatarKey("42", "selfie"))
	assert.Equal(t, "users/42/avatar.webp", AvatarKey("42", "pic.old.webp"))
}
