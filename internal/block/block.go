package block

import (
	"flint/internal/source"
)

// Block is a syntactic region with a recognizable start and end.
// Blocks of one file form a proper forest: ranges never overlap except by
// parent-child containment, and EndLine >= StartLine always holds.
type Block struct {
	Kind Kind
	// StartLine / EndLine are 1-based and inclusive.
	StartLine uint32
	EndLine   uint32
	// HeaderIndent is the leading-space count of the opener's line.
	HeaderIndent int
	// Depth is the nesting depth; 0 for top-level blocks.
	Depth int
	// Parent is a weak back-reference; the forest owns the nodes.
	Parent   *Block
	Children []*Block
	// OpenSpan covers the opening token.
	OpenSpan source.Span
	// Terminated is false when the block was closed by recovery (EOF or
	// dedent) instead of its matching closer.
	Terminated bool

	// OpenerFirst is set when the opening token is the first non-blank
	// thing on its line (used by the record brace style rule).
	OpenerFirst bool
	// CloseIndent / CloseAlone / CloseSpan describe the closing line of
	// bracket blocks; only meaningful when Terminated is set.
	CloseIndent int
	CloseAlone  bool
	CloseSpan   source.Span

	// Branches holds the recognized branches of a KindCaseOf block.
	Branches []CaseBranch
	// branchIndent is the indent of the first recognized branch.
	branchIndent int
}

// CaseBranch is one recognized `pattern -> …` branch of a case block.
type CaseBranch struct {
	// Line is the 1-based line the arrow appears on.
	Line uint32
	// Pattern is the trimmed text left of the arrow.
	Pattern string
	// ArrowCol is the 1-based byte column of the `-` of `->`.
	ArrowCol int
	// SpacesBeforeArrow counts the run of spaces right before the arrow.
	SpacesBeforeArrow int
	// ArrowSpan covers the `->` token.
	ArrowSpan source.Span
}

// IsCatchAll reports whether the branch pattern matches any value:
// a wildcard `_` or a lowercase binding pattern.
func (b CaseBranch) IsCatchAll() bool {
	p := b.Pattern
	if p == "" {
		return false
	}
	if p == "_" {
		return true
	}
	c := p[0]
	if c < 'a' || c > 'z' {
		return false
	}
	// `just x` is a binding only when the head is a bare word
	for i := 0; i < len(p); i++ {
		if p[i] == ' ' {
			return false
		}
	}
	return true
}

// Forest is the per-file block tree set, ordered by start line.
type Forest struct {
	Roots []*Block
	all   []*Block
}

// All returns every block in the forest in open order.
func (f *Forest) All() []*Block {
	return f.all
}

// Walk visits every block depth-first in source order.
func (f *Forest) Walk(visit func(*Block)) {
	var rec func(b *Block)
	rec = func(b *Block) {
		visit(b)
		for _, c := range b.Children {
			rec(c)
		}
	}
	for _, r := range f.Roots {
		rec(r)
	}
}
