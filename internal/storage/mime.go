package storage

import (
	"path"
	"strings"
)

const defaultContentType = "application/octet-stream"

// imageContentTypes maps image file extensions (without the dot, lowercase)
// to their MIME types. The key set doubles as the listing whitelist.
var imageContentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"svg":  "image/svg+xml",
}

// ContentTypeForKey derives a MIME type from the key's file extension,
// falling back to application/octet-stream for anything unrecognized.
func ContentTypeForKey(key string) string {
	if ct, ok := imageContentTypes[extensionOf(key)]; ok {
		return ct
	}
	return defaultContentType
}

// IsImageKey reports whether the key's extension is in the image whitelist.
// Only the extension is matched case-insensitively; the rest of the key is
// not inspected.
func IsImageKey(key string) bool {
	_, ok := imageContentTypes[extensionOf(key)]
	return ok
}

func extensionOf(key string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
}
