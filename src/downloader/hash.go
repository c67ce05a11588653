package downloader

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"lukechampine.com/blake3"
)

// Digest is a BLAKE3-256 content hash.
type Digest [32]byte

// String returns the hex encoding of the digest.
func (digest Digest) String() string {
	return hex.EncodeToString(digest[:])
}

// HashBytes hashes an in-memory body.
func HashBytes(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// HashFile streams the file at path through BLAKE3.
func HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("opening file: %w", err)
	}

	defer file.Close()

	hasher := blake3.New(32, nil)

	_, err = io.Copy(hasher, file)
	if err != nil {
		return Digest{}, fmt.Errorf("reading file: %w", err)
	}

	var digest Digest

	copy(digest[:], hasher.Sum(nil))

	return digest, nil
}
