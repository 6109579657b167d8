package pipeline

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/h2non/filetype"
	"github.com/klauspost/pgzip"
)

// sniffLen covers the longest magic number filetype inspects.
const sniffLen int = 262

// ReadInput returns the text of a raw export with line breaks normalized
// to "\n". Vendors ship downloads as plain text, gzip, or a zip archive
// holding a single text file; the content decides which, not the name.
func ReadInput(path string) (string, error) {
	kind, err := sniff(path)
	if err != nil {
		return "", err
	}
	var text string
	switch kind {
	case "zip":
		text, err = readZip(path)
	case "gz":
		text, err = readGzip(path)
	default:
		text, err = readPlain(path)
	}
	if err != nil {
		return "", err
	}
	return normalizeBreaks(text), nil
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	kind, err := filetype.Match(head[:n])
	if err != nil {
		return "", nil
	}
	return kind.Extension, nil
}

func normalizeBreaks(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	return strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")
}

func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func readGzip(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	gz, err := pgzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("opening gzip %s: %w", path, err)
	}
	defer gz.Close()
	data, err := io.ReadAll(gz)
	if err != nil {
		return "", fmt.Errorf("reading gzip %s: %w", path, err)
	}
	return string(data), nil
}

// readZip returns the first regular file of a zip archive.
func readZip(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening zip %s: %w", path, err)
	}
	defer r.Close()
	for _, zf := range r.File {
		if zf.FileInfo().IsDir() || strings.HasPrefix(zf.Name, "__MACOSX/") {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return "", fmt.Errorf("opening %s in %s: %w", zf.Name, path, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("reading %s in %s: %w", zf.Name, path, err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("zip %s holds no files", path)
}
