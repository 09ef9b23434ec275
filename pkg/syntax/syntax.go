// Package syntax defines the statement and expression variants consumed by
// the sign analysis engine, plus tree-sitter front ends that lower source
// text into them. Node kinds outside the closed set lower to the
// Unsupported variant so downstream passes can treat them conservatively
// instead of failing.
package syntax

// StmtKind identifies the statement variant.
type StmtKind int

const (
	StmtUnsupported StmtKind = iota // opaque pass-through, unknown effect
	StmtAssign                      // target = value
	StmtAugAssign                   // target op= value
	StmtIf                          // if cond: then else: else
	StmtWhile                       // while cond: body
	StmtReturn                      // return value
	StmtExpr                        // bare expression (usually a call)
	StmtPass                        // no-op
)

func (k StmtKind) String() string {
	switch k {
	case StmtAssign:
		return "assign"
	case StmtAugAssign:
		return "aug_assign"
	case StmtIf:
		return "if"
	case StmtWhile:
		return "while"
	case StmtReturn:
		return "return"
	case StmtExpr:
		return "expr"
	case StmtPass:
		return "pass"
	default:
		return "unsupported"
	}
}

// ExprKind identifies the expression variant.
type ExprKind int

const (
	ExprUnsupported ExprKind = iota
	ExprVar
	ExprIntLit
	ExprCompare // left <op> right, op in < <= > >= == !=
	ExprBinary  // left <op> right, op in + - * / %
	ExprUnary   // <op> operand
	ExprCall    // callee(args...)
)

func (k ExprKind) String() string {
	switch k {
	case ExprVar:
		return "var"
	case ExprIntLit:
		return "int"
	case ExprCompare:
		return "compare"
	case ExprBinary:
		return "binary"
	case ExprUnary:
		return "unary"
	case ExprCall:
		return "call"
	default:
		return "unsupported"
	}
}

// Expr is a closed tagged-variant expression node. Only the fields relevant
// to Kind are populated; Text always carries the raw source slice.
type Expr struct {
	Kind   ExprKind
	Name   string // ExprVar
	Value  int64  // ExprIntLit
	Op     string // ExprCompare, ExprBinary, ExprUnary
	Left   *Expr  // ExprCompare, ExprBinary
	Right  *Expr  // ExprCompare, ExprBinary, ExprUnary (operand)
	Callee string // ExprCall
	Args   []*Expr
	Text   string
	Line   int
}

// Equal reports structural equality. Source position is ignored; two
// expressions parsed from different lines are equal when their shapes and
// leaves match. Unsupported nodes compare by raw text, which is the only
// identity they have.
func (e *Expr) Equal(o *Expr) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Kind != o.Kind {
		return false
	}
	switch e.Kind {
	case ExprVar:
		return e.Name == o.Name
	case ExprIntLit:
		return e.Value == o.Value
	case ExprCompare, ExprBinary:
		return e.Op == o.Op && e.Left.Equal(o.Left) && e.Right.Equal(o.Right)
	case ExprUnary:
		return e.Op == o.Op && e.Right.Equal(o.Right)
	case ExprCall:
		if e.Callee != o.Callee || len(e.Args) != len(o.Args) {
			return false
		}
		for i := range e.Args {
			if !e.Args[i].Equal(o.Args[i]) {
				return false
			}
		}
		return true
	default:
		return e.Text == o.Text
	}
}

// Stmt is a closed tagged-variant statement node.
type Stmt struct {
	Kind   StmtKind
	Target string  // StmtAssign, StmtAugAssign
	Op     string  // StmtAugAssign: underlying binary operator ("+" for "+=")
	Value  *Expr   // StmtAssign/StmtAugAssign RHS, StmtReturn value, StmtExpr expression
	Cond   *Expr   // StmtIf, StmtWhile
	Then   []*Stmt // StmtIf
	Else   []*Stmt // StmtIf
	Body   []*Stmt // StmtWhile
	Text   string
	Line   int
}

// Function is one parsed function body ready for CFG construction.
type Function struct {
	Name   string
	Params []string
	Body   []*Stmt
	Line   int
}

// Unsupported wraps an unrecognized source region as an opaque statement.
func Unsupported(text string, line int) *Stmt {
	return &Stmt{Kind: StmtUnsupported, Text: text, Line: line}
}
