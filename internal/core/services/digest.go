package services

import (
	"crypto/md5" //nolint:gosec // MD5 matches the digest embedded in WAVE files
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

// digestChunkSize is the read buffer used when hashing files.
const digestChunkSize = 1 << 20

// FileDigest streams the file at path through the named algorithm in
// fixed-size chunks and returns the hex digest and the byte count.
// A missing file yields an error wrapping both domain.ErrFileUnreadable
// and fs.ErrNotExist.
func FileDigest(path, algorithm string) (string, int64, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return "", 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", domain.ErrFileUnreadable, err)
	}
	defer f.Close()

	var total int64
	buf := make([]byte, digestChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", 0, fmt.Errorf("%w: reading %s: %w", domain.ErrFileUnreadable, path, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), total, nil
}

// isMissing reports whether err means the file does not exist.
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func newHash(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case domain.DigestSHA256:
		return sha256.New(), nil
	case domain.DigestMD5:
		return md5.New(), nil //nolint:gosec // see import
	default:
		return nil, fmt.Errorf("%w: unsupported digest algorithm %q", domain.ErrInvalidInput, algorithm)
	}
}
