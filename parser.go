// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/saferwall/evtx/log"
	"golang.org/x/xerrors"
)

// Parser holds an open EVTX file (or in-memory buffer) and the settings
// governing how it is validated and walked.
type Parser struct {
	Header    FileHeader
	Anomalies []string

	data     []byte
	mmapData mmap.MMap
	f        *os.File
	settings Settings
	logger   *log.Helper
}

// Open memory-maps the file at name and parses its file header.
func Open(name string, settings *Settings) (*Parser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	p, err := newParser(data, settings)
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}
	p.mmapData = data
	p.f = f
	return p, nil
}

// OpenBytes parses the file header of an in-memory EVTX image. The slice
// is retained, not copied; callers must not mutate it while the Parser is
// in use.
func OpenBytes(data []byte, settings *Settings) (*Parser, error) {
	return newParser(data, settings)
}

func newParser(data []byte, settings *Settings) (*Parser, error) {
	p := &Parser{data: data}
	if settings != nil {
		p.settings = *settings
	} else {
		p.settings = DefaultSettings()
	}
	if p.settings.TemplateSource == nil {
		p.settings.TemplateSource = noTemplateSource{}
	}

	logger := p.settings.Logger
	if logger == nil {
		logger = log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelWarn))
	}
	p.logger = log.NewHelper(logger)

	h, err := parseFileHeader(data, p.settings.ValidateChecksums)
	if err != nil {
		return nil, xerrors.Errorf("file header: %w", err)
	}
	p.Header = h
	p.Anomalies = FileAnomalies(h, p.ChunkCount())
	for _, a := range p.Anomalies {
		p.logger.Warnf("%s", a)
	}
	return p, nil
}

// Close releases the underlying memory map and file handle, if any. It is
// a no-op for a Parser created with OpenBytes.
func (p *Parser) Close() error {
	if p.mmapData != nil {
		_ = p.mmapData.Unmap()
	}
	if p.f != nil {
		return p.f.Close()
	}
	return nil
}

// ChunkCount returns the number of 64KB chunks following the file header,
// derived from the total file size rather than the header's own
// (advisory) ChunkCount field, since a dirty file can understate it.
func (p *Parser) ChunkCount() int {
	if len(p.data) <= FileHeaderSize {
		return 0
	}
	return (len(p.data) - FileHeaderSize) / ChunkSize
}

// Chunk parses and returns the chunk at the given 0-based index.
func (p *Parser) Chunk(index int) (*Chunk, error) {
	start := FileHeaderSize + index*ChunkSize
	end := start + ChunkSize
	if index < 0 || end > len(p.data) {
		return nil, xerrors.Errorf("chunk %d: %w", index, ErrOutsideBoundary)
	}
	return parseChunkHeader(p.data[start:end], index, p.settings.ValidateChecksums)
}

// ChunkIterator walks every chunk of a Parser in file order.
type ChunkIterator struct {
	p     *Parser
	index int
}

// Chunks returns an iterator over p's chunks.
func (p *Parser) Chunks() *ChunkIterator {
	return &ChunkIterator{p: p}
}

// Next returns the next chunk, or io.EOF once every chunk has been
// produced. On a chunk-level error, if Settings.ContinueOnChunkError is
// set the iterator still advances and returns the error for that call
// only; the following Next call proceeds to the chunk after it. If unset,
// the error is returned and the iterator is exhausted from then on.
func (it *ChunkIterator) Next() (*Chunk, error) {
	if it.index >= it.p.ChunkCount() {
		return nil, io.EOF
	}
	c, err := it.p.Chunk(it.index)
	it.index++
	if err != nil && !it.p.settings.ContinueOnChunkError {
		it.index = it.p.ChunkCount()
	}
	return c, err
}
