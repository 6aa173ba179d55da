package rules

import (
	"regexp"

	"flint/internal/block"
)

var wildcardExposing = regexp.MustCompile(`exposing\s*\(\s*\.\.\s*\)`)

func checkWildcardImport(ctx *Context) {
	for _, b := range ctx.Blocks.All() {
		if b.Kind != block.KindImport {
			continue
		}
		for idx := b.StartLine; idx <= b.EndLine; idx++ {
			ln, ok := lineAt(ctx.Lines, idx)
			if !ok {
				break
			}
			loc := wildcardExposing.FindStringIndex(ctx.Code[idx-1])
			if loc == nil {
				continue
			}
			span := ln.Span
			span.Start = ln.Span.Start + uint32(loc[0])
			span.End = ln.Span.Start + uint32(loc[1])
			ctx.Report(span, "import exposes everything; list the needed names instead of (..)")
		}
	}
}
