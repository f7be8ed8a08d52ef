// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package importer

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

type document struct {
	io.Reader
	closers []io.Closer
}

func (d *document) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i].Close())
	}
	return errors.Join(errs...)
}

// OpenDocument opens an XMLTV file, transparently decompressing gzip, bzip2
// and xz input detected by magic bytes.
func OpenDocument(path string) (io.ReadCloser, error) {
	// #nosec G304 -- document path is provided by the operator
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("importer: open document: %w", err)
	}
	doc, err := decompress(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	doc.closers = append([]io.Closer{f}, doc.closers...)
	return doc, nil
}

// Decompress wraps r with a decompressor when its leading bytes identify one.
// Plain input is returned buffered but otherwise unchanged.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	return decompress(r)
}

func decompress(r io.Reader) (*document, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(len(xzMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("importer: peek header: %w", err)
	}

	switch {
	case bytes.HasPrefix(header, gzipMagic):
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("importer: gzip: %w", err)
		}
		return &document{Reader: gzr, closers: []io.Closer{gzr}}, nil
	case bytes.HasPrefix(header, bzip2Magic):
		return &document{Reader: bzip2.NewReader(br)}, nil
	case bytes.HasPrefix(header, xzMagic):
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("importer: xz: %w", err)
		}
		return &document{Reader: xzr}, nil
	}
	return &document{Reader: br}, nil
}
