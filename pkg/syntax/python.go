package syntax

import (
	"fmt"
	"os"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// pythonLowerer lowers tree-sitter Python nodes into the closed statement
// and expression variants.
type pythonLowerer struct {
	content []byte
}

// ParsePythonFile parses every top-level function definition in a Python
// source file.
func ParsePythonFile(path string) ([]*Function, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return ParsePython(content)
}

// ParsePython parses every top-level function definition in Python source.
func ParsePython(content []byte) ([]*Function, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree := parser.Parse(nil, content)
	defer tree.Close()

	l := &pythonLowerer{content: content}
	var funcs []*Function

	root := tree.RootNode()
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child != nil && child.Type() == "function_definition" {
			funcs = append(funcs, l.lowerFunction(child))
		}
	}
	return funcs, nil
}

// ParsePythonFunction parses a single named function from Python source.
func ParsePythonFunction(content []byte, name string) (*Function, error) {
	funcs, err := ParsePython(content)
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

func (l *pythonLowerer) lowerFunction(node *sitter.Node) *Function {
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

func (l *pythonLowerer) lowerParams(node *sitter.Node) []string {
	var params []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "identifier":
			params = append(params, l.text(child))
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				inner := child.NamedChild(j)
				if inner != nil && inner.Type() == "identifier" {
					params = append(params, l.text(inner))
					break
				}
			}
		}
	}
	return params
}

func (l *pythonLowerer) lowerBlock(node *sitter.Node) []*Stmt {
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

func (l *pythonLowerer) lowerStatement(node *sitter.Node) *Stmt {
	line := int(node.StartPoint().Row) + 1

	switch node.Type() {
	case "expression_statement":
		if inner := node.NamedChild(0); inner != nil {
			return l.lowerSimple(inner, line)
		}
		return Unsupported(l.text(node), line)

	case "if_statement":
		return l.lowerIf(node, line)

	case "while_statement":
		stmt := &Stmt{Kind: StmtWhile, Text: l.text(node), Line: line}
		if cond := node.ChildByFieldName("condition"); cond != nil {
			stmt.Cond = l.lowerExpr(cond)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			stmt.Body = l.lowerBlock(body)
		}
		return stmt

	case "return_statement":
		stmt := &Stmt{Kind: StmtReturn, Text: l.text(node), Line: line}
		if value := node.NamedChild(0); value != nil {
			stmt.Value = l.lowerExpr(value)
		}
		return stmt

	case "pass_statement":
		return &Stmt{Kind: StmtPass, Text: "pass", Line: line}

	default:
		return Unsupported(l.text(node), line)
	}
}

// lowerSimple lowers the expression wrapped by an expression_statement.
func (l *pythonLowerer) lowerSimple(node *sitter.Node, line int) *Stmt {
	switch node.Type() {
	case "assignment":
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		if left != nil && left.Type() == "identifier" && right != nil {
			return &Stmt{
				Kind:   StmtAssign,
				Target: l.text(left),
				Value:  l.lowerExpr(right),
				Text:   l.text(node),
				Line:   line,
			}
		}
		return Unsupported(l.text(node), line)

	case "augmented_assignment":
		left := node.ChildByFieldName("left")
		op := node.ChildByFieldName("operator")
		right := node.ChildByFieldName("right")
		if left != nil && left.Type() == "identifier" && op != nil && right != nil {
			opText := l.text(op)
			if len(opText) > 1 {
				opText = opText[:len(opText)-1] // "+=" -> "+"
			}
			return &Stmt{
				Kind:   StmtAugAssign,
				Target: l.text(left),
				Op:     opText,
				Value:  l.lowerExpr(right),
				Text:   l.text(node),
				Line:   line,
			}
		}
		return Unsupported(l.text(node), line)

	case "call":
		return &Stmt{Kind: StmtExpr, Value: l.lowerExpr(node), Text: l.text(node), Line: line}

	default:
		return Unsupported(l.text(node), line)
	}
}

func (l *pythonLowerer) lowerIf(node *sitter.Node, line int) *Stmt {
	stmt := &Stmt{Kind: StmtIf, Text: l.text(node), Line: line}
	if cond := node.ChildByFieldName("condition"); cond != nil {
		stmt.Cond = l.lowerExpr(cond)
	}
	if cons := node.ChildByFieldName("consequence"); cons != nil {
		stmt.Then = l.lowerBlock(cons)
	}

	// elif chains become nested if statements in the else arm, folded from
	// the last clause backwards.
	var clauses []*sitter.Node
	var elseBody []*Stmt
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "elif_clause":
			clauses = append(clauses, child)
		case "else_clause":
			if body := child.ChildByFieldName("body"); body != nil {
				elseBody = l.lowerBlock(body)
			}
		}
	}
	for i := len(clauses) - 1; i >= 0; i-- {
		clause := clauses[i]
		nested := &Stmt{
			Kind: StmtIf,
			Text: l.text(clause),
			Line: int(clause.StartPoint().Row) + 1,
			Else: elseBody,
		}
		if cond := clause.ChildByFieldName("condition"); cond != nil {
			nested.Cond = l.lowerExpr(cond)
		}
		if cons := clause.ChildByFieldName("consequence"); cons != nil {
			nested.Then = l.lowerBlock(cons)
		}
		elseBody = []*Stmt{nested}
	}
	stmt.Else = elseBody
	return stmt
}

var pythonCompareOps = map[string]bool{
	"<": true, "<=": true, ">": true, ">=": true, "==": true, "!=": true,
}

func (l *pythonLowerer) lowerExpr(node *sitter.Node) *Expr {
	if node == nil {
		return nil
	}
	line := int(node.StartPoint().Row) + 1

	switch node.Type() {
	case "identifier":
		return &Expr{Kind: ExprVar, Name: l.text(node), Text: l.text(node), Line: line}

	case "integer":
		if v, err := strconv.ParseInt(l.text(node), 0, 64); err == nil {
			return &Expr{Kind: ExprIntLit, Value: v, Text: l.text(node), Line: line}
		}
		return &Expr{Kind: ExprUnsupported, Text: l.text(node), Line: line}

	case "unary_operator":
		op := node.ChildByFieldName("operator")
		arg := node.ChildByFieldName("argument")
		if op != nil && arg != nil {
			inner := l.lowerExpr(arg)
			if l.text(op) == "-" && inner.Kind == ExprIntLit {
				return &Expr{Kind: ExprIntLit, Value: -inner.Value, Text: l.text(node), Line: line}
			}
			return &Expr{Kind: ExprUnary, Op: l.text(op), Right: inner, Text: l.text(node), Line: line}
		}
		return &Expr{Kind: ExprUnsupported, Text: l.text(node), Line: line}

	case "comparison_operator":
		// Operands are the named children; the operator token sits between
		// them as an anonymous child. Chained comparisons (a < b < c) are
		// left unsupported.
		if node.NamedChildCount() == 2 {
			op := ""
			for i := 0; i < int(node.ChildCount()); i++ {
				child := node.Child(i)
				if child != nil && pythonCompareOps[child.Type()] {
					op = child.Type()
					break
				}
			}
			if op != "" {
				return &Expr{
					Kind:  ExprCompare,
					Op:    op,
					Left:  l.lowerExpr(node.NamedChild(0)),
					Right: l.lowerExpr(node.NamedChild(1)),
					Text:  l.text(node),
					Line:  line,
				}
			}
		}
		return &Expr{Kind: ExprUnsupported, Text: l.text(node), Line: line}

	case "binary_operator":
		left := node.ChildByFieldName("left")
		op := node.ChildByFieldName("operator")
		right := node.ChildByFieldName("right")
		if left != nil && op != nil && right != nil {
			return &Expr{
				Kind:  ExprBinary,
				Op:    l.text(op),
				Left:  l.lowerExpr(left),
				Right: l.lowerExpr(right),
				Text:  l.text(node),
				Line:  line,
			}
		}
		return &Expr{Kind: ExprUnsupported, Text: l.text(node), Line: line}

	case "call":
		return l.lowerCall(node, line)

	case "parenthesized_expression":
		if inner := node.NamedChild(0); inner != nil {
			return l.lowerExpr(inner)
		}
		return &Expr{Kind: ExprUnsupported, Text: l.text(node), Line: line}

	default:
		return &Expr{Kind: ExprUnsupported, Text: l.text(node), Line: line}
	}
}

func (l *pythonLowerer) lowerCall(node *sitter.Node, line int) *Expr {
	expr := &Expr{Kind: ExprCall, Text: l.text(node), Line: line}

	// Method calls and other non-identifier callables keep their raw text
	// as the callee name; the resolver simply won't know them.
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
}

func (l *pythonLowerer) text(node *sitter.Node) string {
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
