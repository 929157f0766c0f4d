package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by this package.
var (
	// ErrInvalidRef is returned when a storage reference is not a
	// well-formed gs:// URI.
	ErrInvalidRef = errors.New("invalid storage reference")

	// ErrObjectNotFound is returned when the referenced object does not
	// exist in the bucket.
	ErrObjectNotFound = errors.New("storage object not found")

	// ErrTransfer is returned when an upload or download fails for a
	// reason other than the object being missing.
	ErrTransfer = errors.New("storage transfer failed")
)

const uriScheme = "gs://"

// ParseURI splits a gs://bucket/object reference into its bucket and
// object parts. Returns ErrInvalidRef when the scheme is wrong or either
// part is empty.
func ParseURI(ref string) (bucket, object string, err error) {
	if !strings.HasPrefix(ref, uriScheme) {
		return "", "", fmt.Errorf("%w: missing gs:// scheme", ErrInvalidRef)
	}

	rest := strings.TrimPrefix(ref, uriScheme)
	bucket, object, found := strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: expected gs://bucket/object", ErrInvalidRef)
	}

	return bucket, object, nil
}

// FormatURI builds the canonical gs:// reference for an object.
func FormatURI(bucket, object string) string {
	return uriScheme + bucket + "/" + object
}
