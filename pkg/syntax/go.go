package syntax

import (
	"fmt"
	"os"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// goLowerer lowers tree-sitter Go nodes into the closed statement and
// expression variants. Go-only constructs with no Python analogue (select,
// go, defer, range loops) come through as Unsupported statements.
type goLowerer struct {
	content []byte
}

// ParseGoFile parses every top-level function declaration in a Go source file.
func ParseGoFile(path string) ([]*Function, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return ParseGo(content)
}

// ParseGo parses every top-level function declaration in Go source.
func ParseGo(content []byte) ([]*Function, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree := parser.Parse(nil, content)
	defer tree.Close()

	l := &goLowerer{content: content}
	var funcs []*Function

	root := tree.RootNode()
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child != nil && child.Type() == "function_declaration" {
			funcs = append(funcs, l.lowerFunction(child))
		}
	}
	return funcs, nil
}

// ParseGoFunction parses a single named function from Go source.
func ParseGoFunction(content []byte, name string) (*Function, error) {
	funcs, err := ParseGo(content)
	if err != nil {
		return nil, err
	}
	for _, fn := range funcs {
		if fn.Name == name {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("function %q not found", name)
}

func (l *goLowerer) lowerFunction(node *sitter.Node) *Function {
	fn := &Function{Line: int(node.StartPoint().Row) + 1}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		fn.Name = l.text(nameNode)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Params = l.lowerParams(params)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		fn.Body = l.lowerBlock(body)
	}
	return fn
}

func (l *goLowerer) lowerParams(node *sitter.Node) []string {
	var params []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl == nil || decl.Type() != "parameter_declaration" {
			continue
		}
		for j := 0; j < int(decl.NamedChildCount()); j++ {
			child := decl.NamedChild(j)
			if child != nil && child.Type() == "identifier" {
				params = append(params, l.text(child))
			}
		}
	}
	return params
}

func (l *goLowerer) lowerBlock(node *sitter.Node) []*Stmt {
	var stmts []*Stmt
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		stmts = append(stmts, l.lowerStatement(child))
	}
	return stmts
}

func (l *goLowerer) lowerStatement(node *sitter.Node) *Stmt {
	line := int(node.StartPoint().Row) + 1

	switch node.Type() {
	case "short_var_declaration", "assignment_statement":
		return l.lowerAssign(node, line)

	case "if_statement":
		return l.lowerIf(node, line)

	case "for_statement":
		return l.lowerFor(node, line)

	case "return_statement":
		stmt := &Stmt{Kind: StmtReturn, Text: l.text(node), Line: line}
		if list := node.NamedChild(0); list != nil && list.Type() == "expression_list" {
			if value := list.NamedChild(0); value != nil {
				stmt.Value = l.lowerExpr(value)
			}
		}
		return stmt

	case "expression_statement":
		if inner := node.NamedChild(0); inner != nil && inner.Type() == "call_expression" {
			return &Stmt{Kind: StmtExpr, Value: l.lowerExpr(inner), Text: l.text(node), Line: line}
		}
		return Unsupported(l.text(node), line)

	case "inc_statement", "dec_statement":
		target := node.NamedChild(0)
		if target != nil && target.Type() == "identifier" {
			op := "+"
			if node.Type() == "dec_statement" {
				op = "-"
			}
			return &Stmt{
				Kind:   StmtAugAssign,
				Target: l.text(target),
				Op:     op,
				Value:  &Expr{Kind: ExprIntLit, Value: 1, Text: "1", Line: line},
				Text:   l.text(node),
				Line:   line,
			}
		}
		return Unsupported(l.text(node), line)

	default:
		return Unsupported(l.text(node), line)
	}
}

func (l *goLowerer) lowerAssign(node *sitter.Node, line int) *Stmt {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || right == nil {
		return Unsupported(l.text(node), line)
	}

	// single-target assignments only; tuple assignment loses precision
	if left.NamedChildCount() != 1 || right.NamedChildCount() != 1 {
		return Unsupported(l.text(node), line)
	}
	target := left.NamedChild(0)
	value := right.NamedChild(0)
	if target == nil || target.Type() != "identifier" || value == nil {
		return Unsupported(l.text(node), line)
	}

	if node.Type() == "assignment_statement" {
		if op := node.ChildByFieldName("operator"); op != nil && l.text(op) != "=" && l.text(op) != ":=" {
			opText := l.text(op)
			return &Stmt{
				Kind:   StmtAugAssign,
				Target: l.text(target),
				Op:     opText[:len(opText)-1],
				Value:  l.lowerExpr(value),
				Text:   l.text(node),
				Line:   line,
			}
		}
	}
	return &Stmt{
		Kind:   StmtAssign,
		Target: l.text(target),
		Value:  l.lowerExpr(value),
		Text:   l.text(node),
		Line:   line,
	}
}

func (l *goLowerer) lowerIf(node *sitter.Node, line int) *Stmt {
	stmt := &Stmt{Kind: StmtIf, Text: l.text(node), Line: line}

	if cond := node.ChildByFieldName("condition"); cond != nil {
		stmt.Cond = l.lowerExpr(cond)
	}
	if cons := node.ChildByFieldName("consequence"); cons != nil {
		stmt.Then = l.lowerBlock(cons)
	}
	if alt := node.ChildByFieldName("alternative"); alt != nil {
		switch alt.Type() {
		case "block":
			stmt.Else = l.lowerBlock(alt)
		case "if_statement":
			stmt.Else = []*Stmt{l.lowerIf(alt, int(alt.StartPoint().Row)+1)}
		}
	}
	return stmt
}

// lowerFor maps condition-only for loops onto the while variant; three-clause
// and range loops are opaque.
func (l *goLowerer) lowerFor(node *sitter.Node, line int) *Stmt {
	init := node.ChildByFieldName("initializer")
	cond := node.ChildByFieldName("condition")
	update := node.ChildByFieldName("update")
	body := node.ChildByFieldName("body")

	if init != nil || update != nil || cond == nil || body == nil {
		return Unsupported(l.text(node), line)
	}
	return &Stmt{
		Kind: StmtWhile,
		Cond: l.lowerExpr(cond),
		Body: l.lowerBlock(body),
		Text: l.text(node),
		Line: line,
	}
}

var goCompareOps = map[string]bool{
	"<": true, "<=": true, ">": true, ">=": true, "==": true, "!=": true,
}

var goArithOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
}

func (l *goLowerer) lowerExpr(node *sitter.Node) *Expr {
	if node == nil {
		return nil
	}
	line := int(node.StartPoint().Row) + 1

	switch node.Type() {
	case "identifier":
		return &Expr{Kind: ExprVar, Name: l.text(node), Text: l.text(node), Line: line}

	case "int_literal":
		if v, err := strconv.ParseInt(l.text(node), 0, 64); err == nil {
			return &Expr{Kind: ExprIntLit, Value: v, Text: l.text(node), Line: line}
		}
		return &Expr{Kind: ExprUnsupported, Text: l.text(node), Line: line}

	case "unary_expression":
		op := node.ChildByFieldName("operator")
		operand := node.ChildByFieldName("operand")
		if op != nil && operand != nil {
			inner := l.lowerExpr(operand)
			if l.text(op) == "-" && inner.Kind == ExprIntLit {
				return &Expr{Kind: ExprIntLit, Value: -inner.Value, Text: l.text(node), Line: line}
			}
			return &Expr{Kind: ExprUnary, Op: l.text(op), Right: inner, Text: l.text(node), Line: line}
		}
		return &Expr{Kind: ExprUnsupported, Text: l.text(node), Line: line}

	case "binary_expression":
		left := node.ChildByFieldName("left")
		op := node.ChildByFieldName("operator")
		right := node.ChildByFieldName("right")
		if left == nil || op == nil || right == nil {
			return &Expr{Kind: ExprUnsupported, Text: l.text(node), Line: line}
		}
		opText := l.text(op)
		kind := ExprUnsupported
		if goCompareOps[opText] {
			kind = ExprCompare
		} else if goArithOps[opText] {
			kind = ExprBinary
		}
		if kind == ExprUnsupported {
			return &Expr{Kind: ExprUnsupported, Text: l.text(node), Line: line}
		}
		return &Expr{
			Kind:  kind,
			Op:    opText,
			Left:  l.lowerExpr(left),
			Right: l.lowerExpr(right),
			Text:  l.text(node),
			Line:  line,
		}

	case "call_expression":
		expr := &Expr{Kind: ExprCall, Text: l.text(node), Line: line}
		if fn := node.ChildByFieldName("function"); fn != nil {
			expr.Callee = l.text(fn)
		}
		if args := node.ChildByFieldName("arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				arg := args.NamedChild(i)
				if arg != nil {
					expr.Args = append(expr.Args, l.lowerExpr(arg))
				}
			}
		}
		return expr

	case "parenthesized_expression":
		if inner := node.NamedChild(0); inner != nil {
			return l.lowerExpr(inner)
		}
		return &Expr{Kind: ExprUnsupported, Text: l.text(node), Line: line}

	default:
		return &Expr{Kind: ExprUnsupported, Text: l.text(node), Line: line}
	}
}

func (l *goLowerer) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start >= uint32(len(l.content)) || end > uint32(len(l.content)) {
		return ""
	}
	return string(l.content[start:end])
}
