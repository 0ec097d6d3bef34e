// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

// TemplateSource is the seam through which a caller can supply template
// definitions a chunk's own template table is missing, for example ones
// recovered from a provider's WEVT_TEMPLATE PE resource. Extracting those
// resources from a provider DLL is out of scope for this module; callers
// that need it implement TemplateSource themselves and pass it via
// Settings.TemplateSource. Record decoding does not call TemplateByGUID:
// a template instance whose definition cannot be decoded from the chunk
// fails the record whatever source is set.
type TemplateSource interface {
	// TemplateByGUID returns the template definition registered under the
	// given template GUID, or ok == false if this source has none.
	TemplateByGUID(guid [16]byte) (def *TemplateDefinition, ok bool)
}

// noTemplateSource is used internally when Settings.TemplateSource is nil,
// so callers needn't nil-check it on every lookup.
type noTemplateSource struct{}

func (noTemplateSource) TemplateByGUID(guid [16]byte) (*TemplateDefinition, bool) {
	return nil, false
}
