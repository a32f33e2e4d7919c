package store

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"time"
)

// FileChecksum computes the SHA-256 of a file's content. Two baselines with
// the same source checksum are identical by definition and short-circuit a
// comparison.
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// NewBaselineID derives a configuration baseline ID from the source file
// reference and the creation time: CFG_<timestamp>_<hash8>.
func NewBaselineID(file string, t time.Time) string {
	sum := md5.Sum([]byte(file))
	return "CFG_" + t.Format("20060102_150405") + "_" + hex.EncodeToString(sum[:])[:8]
}
