package pipeline

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// gzipBytes compresses a man page. The header carries the file name but
// no modification time so unchanged pages compress to identical bytes.
func gzipBytes(name string, content []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	gz.Name = path.Base(name)
	if _, err := gz.Write(content); err != nil {
		return nil, fmt.Errorf("gzip %s: %w", name, err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("gzip %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// OpenMaybeGzipped opens a file and wraps it in a gzip reader when the
// path ends with ".gz". The returned cleanup function closes all
// underlying readers and must always be called.
func OpenMaybeGzipped(path string) (io.Reader, func() error, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open manpage: %w", err)
	}

	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		cleanup := func() error { return file.Close() }
		return file, cleanup, nil
	}

	gz, err := gzip.NewReader(file)
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("read gzip: %w", err)
	}
	cleanup := func() error {
		_ = gz.Close()
		return file.Close()
	}
	return gz, cleanup, nil
}
