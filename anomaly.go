// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

// Anomalies are non-fatal structural oddities noticed while parsing a file
// or chunk header. Unlike the sentinel errors in helper.go, an anomaly
// does not by itself stop parsing; it is recorded for the caller to
// inspect and decide whether the file still deserves trust.
var (
	// AnoFileHeaderDirty is reported when the file header's dirty flag is
	// set, meaning the writer did not shut down cleanly and the last
	// chunk may be incomplete.
	AnoFileHeaderDirty = "file header dirty flag is set"

	// AnoFileHeaderFull is reported when the file header's full flag is
	// set, meaning the file reached its configured maximum size.
	AnoFileHeaderFull = "file header full flag is set"

	// AnoChunkFreeSpaceOffsetTooLarge is reported when a chunk's declared
	// free-space offset exceeds ChunkSize, which cannot happen in a
	// well-formed chunk.
	AnoChunkFreeSpaceOffsetTooLarge = "chunk free space offset exceeds chunk size"

	// AnoChunkFreeSpaceOffsetTooSmall is reported when a chunk's declared
	// free-space offset falls inside the fixed header region.
	AnoChunkFreeSpaceOffsetTooSmall = "chunk free space offset falls inside header"

	// AnoChunkRecordNumberRangeEmpty is reported when a chunk declares
	// LastRecordNum less than FirstRecordNum while also claiming used
	// space beyond the header, which is inconsistent.
	AnoChunkRecordNumberRangeEmpty = "chunk record number range is empty despite used space"

	// AnoFileHeaderChunkCountMismatch is reported when the file header's
	// advisory ChunkCount field disagrees with the count derived from the
	// file's actual size.
	AnoFileHeaderChunkCountMismatch = "file header chunk count disagrees with file size"
)

// FileAnomalies inspects a parsed FileHeader and returns the anomaly
// strings it triggers, if any.
func FileAnomalies(h FileHeader, derivedChunkCount int) []string {
	var anomalies []string
	if h.Dirty() {
		anomalies = append(anomalies, AnoFileHeaderDirty)
	}
	if h.Full() {
		anomalies = append(anomalies, AnoFileHeaderFull)
	}
	if int(h.ChunkCount) != derivedChunkCount {
		anomalies = append(anomalies, AnoFileHeaderChunkCountMismatch)
	}
	return anomalies
}

// ChunkAnomalies inspects a parsed ChunkHeader and returns the anomaly
// strings it triggers, if any.
func ChunkAnomalies(h ChunkHeader) []string {
	var anomalies []string
	if h.FreeSpaceOffset > ChunkSize {
		anomalies = append(anomalies, AnoChunkFreeSpaceOffsetTooLarge)
	}
	if h.FreeSpaceOffset != 0 && h.FreeSpaceOffset < ChunkHeaderSize {
		anomalies = append(anomalies, AnoChunkFreeSpaceOffsetTooSmall)
	}
	if h.LastRecordNum < h.FirstRecordNum && h.FreeSpaceOffset > ChunkHeaderSize {
		anomalies = append(anomalies, AnoChunkRecordNumberRangeEmpty)
	}
	return anomalies
}
