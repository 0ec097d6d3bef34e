// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

// NodeKind discriminates the kinds of content that may appear as a child of
// an Element.
type NodeKind int

const (
	NodeElement NodeKind = iota
	NodeText
	NodeCharRef
	NodeEntityRef
	NodeCDATA
	NodeProcessingInstruction
)

// Node is one child of an Element. Exactly one of Elem or Text is
// meaningful, chosen by Kind; PITarget/PIData are only set for
// NodeProcessingInstruction.
type Node struct {
	Kind    NodeKind
	Elem    *Element
	Text    string
	PITarget string
	PIData   string
}

// Attribute is one name/value pair on an Element, in declaration order.
type Attribute struct {
	Name  string
	Value TypedValue
}

// Element is one BinXML element once its token stream has been expanded
// and built into a tree. Attributes and Children both preserve source
// order, which both renderers depend on.
type Element struct {
	Name       string
	Attributes []Attribute
	Children   []Node
}

// Document is the root of one rendered record: the root element plus the
// fragment header version numbers carried by the record's StartOfStream
// token.
type Document struct {
	Root         *Element
	MajorVersion uint8
	MinorVersion uint8
}

// treeBuilder assembles a Document from a flat, already-substituted token
// list using a stack of open frames. Each frame tracks whether it is still
// accepting Attribute tokens (inside the element's start tag) or has moved
// on to child content (after CloseStartElement).
type treeBuilder struct {
	stack []frame
	root  *Element
}

type frame struct {
	el      *Element
	open    bool // still inside the start tag, accepting attributes
	dropped bool // saw a dropped-optional-substitution marker as child content
}

func newTreeBuilder() *treeBuilder {
	return &treeBuilder{}
}

func (b *treeBuilder) top() *frame {
	return &b.stack[len(b.stack)-1]
}

// push opens a new element as a child of the current top-of-stack element
// (or as the document root if the stack is empty), and makes it the new
// top-of-stack frame, open to attributes.
func (b *treeBuilder) push(name string) *Element {
	el := &Element{Name: name}
	if len(b.stack) == 0 {
		b.root = el
	} else {
		top := b.top()
		top.el.Children = append(top.el.Children, Node{Kind: NodeElement, Elem: el})
	}
	b.stack = append(b.stack, frame{el: el, open: true})
	return el
}

// closeStart transitions the top-of-stack frame from accepting attributes
// to accepting child content.
func (b *treeBuilder) closeStart() {
	if len(b.stack) > 0 {
		b.top().open = false
	}
}

// pop closes the top-of-stack element, either because it was self-closing
// (CloseEmptyElement never opened child content) or because a matching
// CloseElement arrived.
func (b *treeBuilder) pop() {
	if len(b.stack) > 0 {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

// popSuppressingIfEmpty closes the top-of-stack element as pop does, but
// additionally removes it from its parent (or unsets it as the document
// root) when its entire child content was a dropped optional substitution:
// such an element never had any real content to render, as opposed to one
// that is genuinely and legitimately empty.
func (b *treeBuilder) popSuppressingIfEmpty() {
	if len(b.stack) == 0 {
		return
	}
	closed := b.top()
	suppress := closed.dropped && len(closed.el.Children) == 0
	el := closed.el
	b.stack = b.stack[:len(b.stack)-1]
	if !suppress {
		return
	}
	if len(b.stack) > 0 {
		parent := b.top()
		if n := len(parent.el.Children); n > 0 && parent.el.Children[n-1].Elem == el {
			parent.el.Children = parent.el.Children[:n-1]
		}
	} else if b.root == el {
		b.root = nil
	}
}

// addAttribute appends an attribute to the top-of-stack element. Callers
// must only call this while that frame is still open (see frame.open).
// An attribute outside any element is dropped.
func (b *treeBuilder) addAttribute(name string, v TypedValue) {
	if len(b.stack) == 0 {
		return
	}
	top := b.top()
	top.el.Attributes = append(top.el.Attributes, Attribute{Name: name, Value: v})
}

// addChild appends a non-element child node to the top-of-stack element.
// Content outside any element is dropped.
func (b *treeBuilder) addChild(n Node) {
	if len(b.stack) == 0 {
		return
	}
	top := b.top()
	top.el.Children = append(top.el.Children, n)
}

// buildTree walks an already fully-expanded (substitution-free) token list
// and produces its Document. Neither the tokenizer nor buildTree checks that
// Open/Close pairs balance: a close token with no open element is ignored,
// content and attributes outside any element are dropped, and elements
// still open at the end of the list are kept as they are.
func buildTree(tokens []Token) *Document {
	b := newTreeBuilder()
	doc := &Document{}

	// An Attribute token carries only the name; the token immediately
	// following it supplies the value (a Value token, since substitutions
	// have already been resolved to Value tokens by expandTemplates).
	pendingAttr := ""
	havePendingAttr := false

	for _, t := range tokens {
		if havePendingAttr {
			havePendingAttr = false
			if t.Op == opValue {
				b.addAttribute(pendingAttr, t.Value)
				continue
			}
			if t.Op == opDroppedOptionalSubst {
				b.addAttribute(pendingAttr, TypedValue{Type: ValueTypeNull})
				continue
			}
			b.addAttribute(pendingAttr, TypedValue{Type: ValueTypeNull})
		}

		switch t.Op {
		case opStartOfStream:
			doc.MajorVersion = t.MajorVersion
			doc.MinorVersion = t.MinorVersion
		case opOpenStartElement:
			b.push(t.Name.Value)
		case opCloseStartElement:
			b.closeStart()
		case opCloseEmptyElement:
			b.pop()
		case opCloseElement:
			b.popSuppressingIfEmpty()
		case opAttribute:
			pendingAttr = t.AttrName.Value
			havePendingAttr = true
		case opDroppedOptionalSubst:
			if len(b.stack) > 0 {
				b.top().dropped = true
			}
		case opValue:
			b.addChild(Node{Kind: NodeText, Text: renderTypedValueText(t.Value)})
		case opCDATASection:
			b.addChild(Node{Kind: NodeCDATA, Text: renderTypedValueText(t.Value)})
		case opCharRef:
			b.addChild(Node{Kind: NodeCharRef, Text: t.Entity.Value})
		case opEntityRef:
			b.addChild(Node{Kind: NodeEntityRef, Text: t.Entity.Value})
		case opPITarget:
			b.addChild(Node{Kind: NodeProcessingInstruction, PITarget: t.PITarget.Value})
		case opPIData:
			if len(b.stack) > 0 {
				top := b.top()
				if n := len(top.el.Children); n > 0 && top.el.Children[n-1].Kind == NodeProcessingInstruction {
					top.el.Children[n-1].PIData = renderTypedValueText(t.Value)
					continue
				}
			}
			b.addChild(Node{Kind: NodeProcessingInstruction, PIData: renderTypedValueText(t.Value)})
		}
	}
	doc.Root = b.root
	return doc
}
