package feed

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// FileReader replays a newline-delimited JSON tick file — one WireTick
// frame per line — for deterministic backtesting against the same wire
// format the live feed uses.
type FileReader struct {
	scanner *bufio.Scanner
}

// NewFileReader wraps an already-open reader (typically an os.File).
func NewFileReader(r io.Reader) *FileReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &FileReader{scanner: scanner}
}

// Next returns the next tick in the file, or io.EOF once exhausted.
func (f *FileReader) Next() (WireTick, error) {
	for f.scanner.Scan() {
		line := f.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var wire WireTick
		if err := json.Unmarshal(line, &wire); err != nil {
			return WireTick{}, fmt.Errorf("FileReader.Next: %w", err)
		}
		return wire, nil
	}
	if err := f.scanner.Err(); err != nil {
		return WireTick{}, fmt.Errorf("FileReader.Next: %w", err)
	}
	return WireTick{}, io.EOF
}
