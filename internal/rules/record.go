package rules

import (
	"fmt"

	"flint/internal/block"
)

func checkRecordBraceStyle(ctx *Context) {
	for _, b := range ctx.Blocks.All() {
		if b.Kind != block.KindRecord || !b.Terminated {
			continue
		}
		if b.EndLine <= b.StartLine {
			// однострочные записи оформляются свободно
			continue
		}
		if !b.OpenerFirst {
			ctx.Report(b.OpenSpan, "opening brace of a multi-line record should start its own line")
		}
		if b.CloseIndent != b.HeaderIndent || !b.CloseAlone {
			ctx.Report(b.CloseSpan, fmt.Sprintf("closing brace should stand alone at column %d, aligned with the opening line", b.HeaderIndent+1))
		}
	}
}
