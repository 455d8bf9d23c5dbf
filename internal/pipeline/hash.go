package pipeline

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/crypto/blake2b"

	"github.com/dgallion1/doxyrst/internal/writer"
)

// ContentHashHex computes BLAKE2b-512 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := blake2b.Sum512(data)
	return hex.EncodeToString(h[:])
}

// RecordedHash returns the source hash stored in the first line of a
// generated rst file. A missing file or a file without a hash line gives
// an empty string and no error.
func RecordedHash(rstPath string) (string, error) {
	f, err := os.Open(rstPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open %s: %w", rstPath, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 4096), 64*1024)
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	hash, _ := writer.ParseHashLine(scanner.Text())
	return hash, nil
}
