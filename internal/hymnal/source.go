package hymnal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrSourceTooLarge is returned when a source exceeds the read limit.
var ErrSourceTooLarge = errors.New("hymnal: source exceeds size limit")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadSource reads raw markup from r, refusing more than limit bytes
// (limit <= 0 means unlimited). A leading UTF-8 byte order mark is dropped so
// that the bytes handed to Parse and Fingerprint do not depend on the editor
// that saved the file.
func ReadSource(r io.Reader, limit int64) ([]byte, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(raw)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrSourceTooLarge, limit)
	}
	return bytes.TrimPrefix(raw, utf8BOM), nil
}

// ReadSourceFile is ReadSource for a file on disk.
func ReadSourceFile(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSource(f, limit)
}
