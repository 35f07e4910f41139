package sources

import (
	"fmt"
	"path"
	"strings"
)

const gcsScheme = "gs://"

// IsGCSURI reports whether s names a Cloud Storage location.
func IsGCSURI(s string) bool {
	return strings.HasPrefix(s, gcsScheme)
}

// ParseGCSURI splits gs://bucket/object into its parts. The object may be
// empty or end in "/" when the URI names a prefix.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !IsGCSURI(uri) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	trimmed := strings.TrimPrefix(uri, gcsScheme)
	parts := strings.SplitN(trimmed, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no bucket): %s", uri)
	}
	if len(parts) == 1 {
		return parts[0], "", nil
	}
	return parts[0], parts[1], nil
}

// IsPrefixURI reports whether uri names every object under a prefix rather
// than a single object.
func IsPrefixURI(uri string) bool {
	_, object, err := ParseGCSURI(uri)
	return err == nil && (object == "" || strings.HasSuffix(object, "/"))
}

// ExtractFilenameFromGCSURI extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/file.pdf" -> "file.pdf"
func ExtractFilenameFromGCSURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, gcsScheme)

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}

	return path.Base(parts[1])
}
