package storage

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"lukechampine.com/blake3"
)

func newHasher() hash.Hash {
	return blake3.New(32, nil)
}

func sumHex(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex blake3-256 digest of r.
func Hash(r io.Reader) (string, error) {
	h := newHasher()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("calculating blake3 hash: %w", err)
	}
	return sumHex(h), nil
}

// HashFile returns the hex blake3-256 digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()
	return Hash(f)
}
