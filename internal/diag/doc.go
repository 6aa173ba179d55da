// Package diag defines the core diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the line scanner, the structural block parser and the rule
//     engine.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO, CLI integration, or
// interactive behaviour. Rendering responsibilities live in internal/diagfmt,
// orchestration lives in internal/driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//     Warnings are advisory and never fail a run; errors are must-fix.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//     Bands: 1xxx scanner, 2xxx structure, 3xxx style rules, 4xxx IO,
//     5xxx configuration.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context
//     (e.g. “block opened here” for an unterminated block).
//
// # Emitting diagnostics
//
// Phases should use a diag.Reporter to decouple emission from storage. The
// block parser constructs a ReportBuilder via ReportError/ReportWarning and
// chains WithNote before calling Emit. When no extra metadata is needed,
// phases may call Reporter.Report(...) directly. diag.BagReporter aggregates
// diagnostics into a Bag, which supports sorting, deduplication and merging.
//
// Keep the data model deterministic: identical input and configuration must
// always produce an identical, identically-ordered diagnostic list.
package diag
