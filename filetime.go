// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"encoding/binary"
	"fmt"
	"time"
)

// fileTimeEpoch is the Windows FILETIME epoch, 1601-01-01 00:00:00 UTC, as a
// Go time.Time, used to convert the 100ns-tick counter to a time.Time.
var fileTimeEpoch = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)

// fileTimeToTime converts a Windows FILETIME (100ns ticks since 1601-01-01)
// to a time.Time in UTC.
func fileTimeToTime(ticks uint64) time.Time {
	// A time.Duration holds only about 292 years, so whole days are added
	// with AddDate and only the sub-day remainder as a Duration.
	const ticksPerDay = 864000000000
	days := ticks / ticksPerDay
	rem := ticks % ticksPerDay
	return fileTimeEpoch.AddDate(0, 0, int(days)).Add(time.Duration(rem) * 100)
}

// formatFileTime renders a FILETIME value as ISO-8601 with fractional
// seconds to its native 100ns-tick precision (seven fractional digits) and
// a Z suffix.
func formatFileTime(ticks uint64) string {
	return fileTimeToTime(ticks).Format("2006-01-02T15:04:05.0000000Z")
}

// systemTime mirrors the Windows SYSTEMTIME layout, read field by field in
// wire order.
type systemTime struct {
	Year         uint16
	Month        uint16
	DayOfWeek    uint16
	Day          uint16
	Hour         uint16
	Minute       uint16
	Second       uint16
	Milliseconds uint16
}

func readSystemTime(buf []byte, offset uint32) (systemTime, error) {
	var st systemTime
	raw, err := readBytes(buf, offset, 16)
	if err != nil {
		return st, err
	}
	st.Year = binary.LittleEndian.Uint16(raw[0:])
	st.Month = binary.LittleEndian.Uint16(raw[2:])
	st.DayOfWeek = binary.LittleEndian.Uint16(raw[4:])
	st.Day = binary.LittleEndian.Uint16(raw[6:])
	st.Hour = binary.LittleEndian.Uint16(raw[8:])
	st.Minute = binary.LittleEndian.Uint16(raw[10:])
	st.Second = binary.LittleEndian.Uint16(raw[12:])
	st.Milliseconds = binary.LittleEndian.Uint16(raw[14:])
	return st, nil
}

func (st systemTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.%03dZ",
		st.Year, st.Month, st.Day, st.Hour, st.Minute, st.Second, st.Milliseconds)
}

// formatGUID renders a 16-byte GUID in the canonical Windows
// "{XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX}" form. The first three fields are
// little-endian on the wire; the last two are raw byte sequences.
func formatGUID(g [16]byte) string {
	return fmt.Sprintf("{%08X-%04X-%04X-%02X%02X-%02X%02X%02X%02X%02X%02X}",
		binary.LittleEndian.Uint32(g[0:4]),
		binary.LittleEndian.Uint16(g[4:6]),
		binary.LittleEndian.Uint16(g[6:8]),
		g[8], g[9], g[10], g[11], g[12], g[13], g[14], g[15])
}

// formatSID renders a Windows SID in its "S-R-I-S1-S2-..." string form. buf
// must hold at least 8 + 4*subAuthorityCount bytes: revision (1),
// sub-authority count (1), 6-byte big-endian identifier authority, then
// subAuthorityCount little-endian uint32 sub-authorities.
func formatSID(buf []byte) (string, uint32, error) {
	if len(buf) < 8 {
		return "", 0, &TruncatedRecordError{What: "sid header", Need: 8, Have: uint32(len(buf))}
	}
	revision := buf[0]
	subCount := int(buf[1])
	var authority uint64
	for i := 0; i < 6; i++ {
		authority = authority<<8 | uint64(buf[2+i])
	}
	size := 8 + 4*subCount
	if len(buf) < size {
		return "", 0, &TruncatedRecordError{What: "sid sub-authorities", Need: uint32(size), Have: uint32(len(buf))}
	}
	s := fmt.Sprintf("S-%d-%d", revision, authority)
	for i := 0; i < subCount; i++ {
		sub := binary.LittleEndian.Uint32(buf[8+4*i:])
		s += fmt.Sprintf("-%d", sub)
	}
	return s, uint32(size), nil
}
