// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

// expandTemplates walks a decoded token list and replaces every
// TemplateInstance with its definition's tokens (recursively expanded
// against that instance's own substitution values) and every
// Normal/OptionalSubstitution with the corresponding value from the
// enclosing substitution array. The result is a flat, substitution-free
// token list ready for buildTree.
func expandTemplates(tokens []Token, chunk *Chunk, depth int) ([]Token, error) {
	return expandWithSubstitutions(tokens, nil, chunk, depth)
}

func expandWithSubstitutions(tokens []Token, subs []TypedValue, chunk *Chunk, depth int) ([]Token, error) {
	if depth > maxTemplateRecursionDepth {
		return nil, ErrTemplateRecursionLimitExceeded
	}
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		switch t.Op {
		case opTemplateInstance:
			def := t.Template.Definition
			expanded, err := expandWithSubstitutions(def.Tokens, t.Template.Substitutions, chunk, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)

		case opNormalSubstitution, opOptionalSubst:
			if int(t.SubstitutionIndex) >= len(subs) {
				return nil, ErrSubstitutionIndexOutOfRange
			}
			v := subs[t.SubstitutionIndex]
			if t.Op == opOptionalSubst && v.Type == ValueTypeNull {
				// Omit the value, but leave a marker in its place so buildTree
				// can suppress an enclosing element whose only content this
				// was, rather than rendering it as an empty element.
				out = append(out, Token{Op: opDroppedOptionalSubst, Offset: t.Offset})
				continue
			}
			if v.Type&^valueTypeArrayFlag == ValueTypeBinXml && len(v.BinXml) > 0 {
				nested, err := expandWithSubstitutions(v.BinXml, nil, chunk, depth+1)
				if err != nil {
					return nil, err
				}
				innerDoc := buildTree(nested)
				if rendered, rerr := renderDocumentXML(innerDoc); rerr == nil {
					v.Str = rendered
				}
			}
			out = append(out, Token{Op: opValue, Offset: t.Offset, Value: v})

		default:
			out = append(out, t)
		}
	}
	return out, nil
}
