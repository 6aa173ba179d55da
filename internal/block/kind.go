package block

// Kind classifies a recognized block construct. The set is closed: the rule
// engine switches over it exhaustively.
type Kind uint8

const (
	// KindLet is a let … in binding group.
	KindLet Kind = iota
	// KindIfElse is an if … then … else conditional.
	KindIfElse
	// KindCaseOf is a case … of pattern match.
	KindCaseOf
	// KindRecord is a { … } record literal.
	KindRecord
	// KindList is a [ … ] list literal.
	KindList
	// KindImport is an import clause, including indented continuations.
	KindImport
)

func (k Kind) String() string {
	switch k {
	case KindLet:
		return "let"
	case KindIfElse:
		return "if-else"
	case KindCaseOf:
		return "case-of"
	case KindRecord:
		return "record"
	case KindList:
		return "list"
	case KindImport:
		return "import"
	}
	return "unknown"
}
