// Package storage writes project photos to S3-compatible object storage.
package storage

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Uploader is a generic object store.
type Uploader interface {
	// Upload creates or overwrites the object at key.
	Upload(ctx context.Context, reader io.ReadSeeker, length int64, key, contentType string) error
	// Exists reports whether key is already stored.
	Exists(ctx context.Context, key string) (bool, error)
	// PublicURL is the anonymous, internet-reachable URL of key.
	PublicURL(key string) string
}

// DefaultFilename is used when the client sent no usable file name.
const DefaultFilename = "image.jpg"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeFilename reduces a client-supplied name to a single path segment.
func SafeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	base = unsafeFilenameChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-.")
	if base == "" {
		return DefaultFilename
	}
	return base
}

// Digest hashes the whole reader and rewinds it.
func Digest(reader io.ReadSeeker) (string, error) {
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, reader); err != nil {
		return "", err
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ObjectKey addresses an upload by its content digest, keeping the file name readable.
func ObjectKey(digest, filename string) string {
	if len(digest) > 32 {
		digest = digest[:32]
	}
	return fmt.Sprintf("uploads/%s/%s", digest, SafeFilename(filename))
}

// Hashed stores reader under its content key, skipping the write when an identical
// object already exists. It returns the key.
func Hashed(ctx context.Context, u Uploader, reader io.ReadSeeker, length int64, filename, contentType string) (string, error) {
	digest, err := Digest(reader)
	if err != nil {
		return "", fmt.Errorf("hash upload: %w", err)
	}
	key := ObjectKey(digest, filename)

	exists, err := u.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check object: %w", err)
	}
	if exists {
		return key, nil
	}

	if err := u.Upload(ctx, reader, length, key, contentType); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}
