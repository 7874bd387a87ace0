package digester

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// Sum returns the SHA256 hex digest of data.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}

// CalculateDigest computes the SHA256 hex digest of the file at
// path. Returns empty string with no error if the file does not
// exist.
func CalculateDigest(path string) (result string, retErr error) {
	const errCtx = "calculating digest"

	fi, err := os.Open(path) //nolint:gosec // path is caller-provided by design
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w", errCtx, closeErr)
		}
	}()

	ha := sha256.New()

	if _, err := io.Copy(ha, fi); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return hex.EncodeToString(ha.Sum(nil)), nil
}

// Matches reports whether the file at path already holds
// exactly data. A missing file never matches.
func Matches(path string, data []byte) (bool, error) {
	const errCtx = "comparing digest"

	onDisk, err := CalculateDigest(path)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	if onDisk == "" {
		return false, nil
	}

	return onDisk == Sum(data), nil
}

// WriteIfChanged writes data to path unless the file already
// holds the same bytes. It reports whether a write happened.
func WriteIfChanged(path string, data []byte) (bool, error) {
	const errCtx = "writing file"

	same, err := Matches(path, data)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	if same {
		return false, nil
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return true, nil
}
