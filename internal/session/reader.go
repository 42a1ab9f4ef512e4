package session

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// InputReader abstracts user input reading for testability.
// ReadLine returns io.EOF once input is exhausted.
type InputReader interface {
	ReadLine() (string, error)
}

// LineReader implements InputReader over any io.Reader, usually os.Stdin.
type LineReader struct {
	reader *bufio.Reader
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(r)}
}

// ReadLine reads one line without its line terminator. A final line that
// is not newline-terminated is returned before io.EOF.
func (l *LineReader) ReadLine() (string, error) {
	line, err := l.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
