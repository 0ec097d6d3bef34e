// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import "testing"

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if !s.ValidateChecksums {
		t.Error("ValidateChecksums should default to true")
	}
	if !s.ContinueOnChunkError {
		t.Error("ContinueOnChunkError should default to true")
	}
	if !s.ContinueOnRecordError {
		t.Error("ContinueOnRecordError should default to true")
	}
	if s.TemplateSource != nil {
		t.Error("TemplateSource should default to nil")
	}
	if s.SeparateJSONAttributes {
		t.Error("SeparateJSONAttributes should default to false")
	}
	if s.Indent {
		t.Error("Indent should default to false")
	}
	if s.IndentWidth != 2 {
		t.Errorf("IndentWidth = %d, want 2", s.IndentWidth)
	}
	if s.NumThreads != 0 {
		t.Errorf("NumThreads = %d, want 0", s.NumThreads)
	}
	if s.Logger != nil {
		t.Error("Logger should default to nil (Parser installs its own default)")
	}
}

func TestSettingsJSONOptionsMerged(t *testing.T) {
	s := DefaultSettings()
	opts := s.JSONOptions()
	if opts.Attributes != AttributesMerged {
		t.Errorf("Attributes = %v, want AttributesMerged", opts.Attributes)
	}
	if opts.Indent != "" {
		t.Errorf("Indent = %q, want empty (Indent disabled)", opts.Indent)
	}
}

func TestSettingsJSONOptionsSeparateAndIndented(t *testing.T) {
	s := DefaultSettings()
	s.SeparateJSONAttributes = true
	s.Indent = true
	s.IndentWidth = 4
	opts := s.JSONOptions()
	if opts.Attributes != AttributesSeparate {
		t.Errorf("Attributes = %v, want AttributesSeparate", opts.Attributes)
	}
	if opts.Indent != "    " {
		t.Errorf("Indent = %q, want 4 spaces", opts.Indent)
	}
}
