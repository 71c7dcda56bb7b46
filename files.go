/*
 * files.go, part of genrtp
 *
 * Copyright 2025 Raul Mera A. (rmeraaatacademicosdotutadotcl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package genrtp

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression returns the compression format implied by the extension
// of fname: "gz", "zst" or "" for plain files.
func Compression(fname string) string {
	switch strings.ToLower(filepath.Ext(fname)) {
	case ".gz":
		return "gz"
	case ".zst", ".zstd":
		return "zst"
	}
	return ""
}

// Stem returns the file name without directory, compression extension
// and format extension, i.e. "dir/CTP.mol2.gz" -> "CTP".
func Stem(fname string) string {
	base := filepath.Base(fname)
	if Compression(base) != "" {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (R *readCloser) Close() error {
	var err error
	for _, c := range R.closers {
		if e := c(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// Open opens fname for reading. Files ending in .gz or .zst are
// decompressed on the fly.
func Open(fname string) (io.ReadCloser, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	reader := bufio.NewReader(f)
	switch Compression(fname) {
	case "gz":
		gz, err := gzip.NewReader(reader)
		if err != nil {
			f.Close()
			return nil, Errorf(FormatError, "can't read gzip stream: %w", err).InFile(fname)
		}
		return &readCloser{gz, []func() error{gz.Close, f.Close}}, nil
	case "zst":
		zs, err := zstd.NewReader(reader)
		if err != nil {
			f.Close()
			return nil, Errorf(FormatError, "can't read zstd stream: %w", err).InFile(fname)
		}
		return &readCloser{zs, []func() error{func() error { zs.Close(); return nil }, f.Close}}, nil
	}
	return &readCloser{reader, []func() error{f.Close}}, nil
}

type writeCloser struct {
	io.Writer
	closers []func() error
}

func (W *writeCloser) Close() error {
	var err error
	for _, c := range W.closers {
		if e := c(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// Create creates (or truncates) fname for writing. Files ending in .gz or .zst
// are compressed on the fly. The returned object must be closed for the
// data to reach the disk.
func Create(fname string) (io.WriteCloser, error) {
	f, err := os.Create(fname)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	switch Compression(fname) {
	case "gz":
		gz := gzip.NewWriter(buf)
		return &writeCloser{gz, []func() error{gz.Close, buf.Flush, f.Close}}, nil
	case "zst":
		zs, err := zstd.NewWriter(buf)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &writeCloser{zs, []func() error{zs.Close, buf.Flush, f.Close}}, nil
	}
	return &writeCloser{buf, []func() error{buf.Flush, f.Close}}, nil
}

// WriteFile writes data to fname, compressing it if the extension asks for it.
func WriteFile(fname string, data []byte) error {
	w, err := Create(fname)
	if err != nil {
		return err
	}
	if _, err = w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
