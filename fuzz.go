// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import "io"

// Fuzz is a legacy go-fuzz entry point exercising the full parse path:
// file header, every chunk, and every record's BinXML deserialization and
// XML rendering.
func Fuzz(data []byte) int {
	p, err := OpenBytes(data, nil)
	if err != nil {
		return 0
	}

	chunks := p.Chunks()
	found := 0
	for {
		chunk, err := chunks.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		records := chunk.Records()
		for {
			rec, err := records.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				continue
			}
			if _, err := RenderXML(rec.Doc); err != nil {
				continue
			}
			found = 1
		}
	}
	return found
}
