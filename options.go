// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import "github.com/saferwall/evtx/log"

// Settings controls how a Parser validates and walks a file. The zero value
// is not ready to use; call DefaultSettings to obtain one.
type Settings struct {
	// ValidateChecksums verifies the file header and per-chunk CRC32
	// checksums while walking. Corrupt checksums surface as errors rather
	// than being silently ignored. Defaults to true.
	ValidateChecksums bool

	// ContinueOnChunkError keeps walking subsequent chunks after a chunk
	// fails to validate or deserialize, instead of aborting the whole
	// walk. Defaults to true, matching the format's own chunk-level
	// recoverability.
	ContinueOnChunkError bool

	// ContinueOnRecordError keeps walking subsequent records within a
	// chunk after a record fails to deserialize, advancing by the
	// record's declared size. Defaults to true.
	ContinueOnRecordError bool

	// TemplateSource is a lookup of template definitions by GUID, such as
	// ones sourced from a provider's WEVT_TEMPLATE PE resource. The Parser
	// stores it (substituting an empty source when nil), but record
	// decoding does not consult it: a template instance whose definition
	// cannot be decoded from the chunk fails the record.
	TemplateSource TemplateSource

	// SeparateJSONAttributes nests an element's attributes under a
	// "#attributes" key rather than merging them as sibling keys, when a
	// caller builds JSONOptions from these Settings via JSONOptions.
	// Defaults to false (merged).
	SeparateJSONAttributes bool

	// Indent enables indented JSON output, with IndentWidth spaces per
	// nesting level, when a caller builds JSONOptions from these Settings.
	// Defaults to false (compact output).
	Indent      bool
	IndentWidth uint8

	// NumThreads is the default worker count ParallelWalk uses when
	// called with workers <= 0. Defaults to 0, meaning "caller did not
	// request fan-out"; ParallelWalk falls back to a single worker in
	// that case. Not consumed by the core iterators themselves.
	NumThreads uint32

	// Logger receives a Warn-level notice for each file-header anomaly the
	// Parser finds when it opens a file. Chunk anomalies and checksum
	// mismatches are not logged. Defaults to a leveled stderr logger
	// filtered to Warn and above.
	Logger log.Logger
}

// DefaultSettings returns a Settings with checksum validation and
// chunk/record error recovery enabled, merged/compact JSON output, no
// fan-out, no external template source, and the default stderr logger.
func DefaultSettings() Settings {
	return Settings{
		ValidateChecksums:     true,
		ContinueOnChunkError:  true,
		ContinueOnRecordError: true,
		IndentWidth:           2,
	}
}

// JSONOptions builds the JSONOptions a renderer should use from these
// Settings, translating SeparateJSONAttributes and Indent/IndentWidth into
// the shape Document.WriteJSON expects.
func (s Settings) JSONOptions() JSONOptions {
	mode := AttributesMerged
	if s.SeparateJSONAttributes {
		mode = AttributesSeparate
	}
	indent := ""
	if s.Indent {
		width := s.IndentWidth
		if width == 0 {
			width = 2
		}
		for i := uint8(0); i < width; i++ {
			indent += " "
		}
	}
	return JSONOptions{Attributes: mode, Indent: indent}
}
