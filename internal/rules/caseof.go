package rules

import (
	"fmt"

	"flint/internal/block"
)

func checkCaseWithoutDefault(ctx *Context) {
	if !ctx.Config.RequireDefaultCase {
		return
	}
	for _, b := range ctx.Blocks.All() {
		if b.Kind != block.KindCaseOf {
			continue
		}
		if len(b.Branches) == 0 {
			// ни одной распознанной ветки — конструкция непрозрачна,
			// молчим, чтобы не врать
			continue
		}
		hasCatchAll := false
		for _, br := range b.Branches {
			if br.IsCatchAll() {
				hasCatchAll = true
				break
			}
		}
		if hasCatchAll {
			continue
		}
		ctx.Report(b.OpenSpan, fmt.Sprintf("case with %d branches has no catch-all; add a `_ ->` branch", len(b.Branches)))
	}
}

func checkArrowAlignment(ctx *Context) {
	for _, b := range ctx.Blocks.All() {
		if b.Kind != block.KindCaseOf || len(b.Branches) < 2 {
			continue
		}
		for _, br := range b.Branches {
			if br.SpacesBeforeArrow <= 1 {
				continue
			}
			ctx.Report(br.ArrowSpan, "arrow is padded for column alignment; use a single space before ->")
		}
	}
}
