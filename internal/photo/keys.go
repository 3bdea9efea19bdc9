// Package photo implements photo operations on top of the storage backend:
// deterministic key construction, user-scoped upload/listing, and avatar
// resolution by extension probing.
package photo

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultExtension is assumed when an uploaded filename carries no extension.
const DefaultExtension = ".jpg"

// avatarExtensions is the ordered candidate list probed when resolving a
// user's avatar. First hit wins.
var avatarExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ScopedKey builds the storage key for a user-scoped photo:
// "users/{userID}/{photoName}". Neither segment is validated against
// embedded separators; ids are opaque and slash-free in practice.
func ScopedKey(userID, photoName string) string {
	return "users/" + userID + "/" + photoName
}

// UserPrefix is the listing prefix covering all of a user's photos. The
// trailing slash keeps one user's prefix from matching another's.
func UserPrefix(userID string) string {
	return "users/" + userID + "/"
}

// ExtensionOf returns the extension of filename including the dot, taking
// the last dot when there are several. Filenames without a dot (or empty)
// default to ".jpg".
func ExtensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return DefaultExtension
	}
	return filename[idx:]
}

// GenerateUniqueName produces a collision-free photo name by pairing a
// random UUID with the original filename's extension.
func GenerateUniqueName(originalFilename string) string {
	return uuid.NewString() + ExtensionOf(originalFilename)
}

// AvatarKey builds the reserved avatar key for a user, fixing the logical
// name to "avatar" plus the upload's extension. Re-uploading under a
// different extension creates a second object rather than overwriting the
// old one; resolution order decides which is served.
func AvatarKey(userID, originalFilename string) string {
	return ScopedKey(userID, "avatar"+ExtensionOf(originalFilename))
}
