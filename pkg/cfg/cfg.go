// Package cfg builds control-flow graphs over the syntax package's
// statement variants. A graph is built once per function and never
// mutated afterwards; the analysis engine only reads it.
package cfg

import (
	"fmt"

	"github.com/tdinh-labs/go-sign-flow/pkg/syntax"
)

// BlockKind tags the structural role of a basic block.
type BlockKind string

const (
	BlockEntry    BlockKind = "entry"
	BlockPlain    BlockKind = "plain"
	BlockBranch   BlockKind = "branch"    // ends in a two-way condition
	BlockLoopHead BlockKind = "loop_head" // branch with a back edge
	BlockJoin     BlockKind = "join"      // merge point after a branch
	BlockReturn   BlockKind = "return"
	BlockExit     BlockKind = "exit"
)

// Branch tags an edge with the condition that selects it and which way the
// condition went.
type Branch struct {
	Cond  *syntax.Expr
	Taken bool
}

// BasicBlock is a maximal straight-line statement sequence. Blocks are
// owned by the Graph that created them and are immutable after Build
// returns.
type BasicBlock struct {
	ID        string
	Kind      BlockKind
	Stmts     []*syntax.Stmt
	Preds     []string
	Succs     []string
	Cond      *syntax.Expr      // branch / loop-head condition
	SuccCond  map[string]Branch // successor ID -> branch tag
	StartLine int
	EndLine   int
}

// Graph is the control-flow graph of one function.
type Graph struct {
	FunctionName string
	Blocks       map[string]*BasicBlock
	Entry        string
	Exit         string
}

// Block returns the block with the given ID, or nil.
func (g *Graph) Block(id string) *BasicBlock {
	return g.Blocks[id]
}

// Validate checks structural integrity: every successor must exist, every
// conditional edge must carry a condition, and branch blocks must declare
// one. A failure here means the graph cannot be analyzed.
func (g *Graph) Validate() error {
	if _, ok := g.Blocks[g.Entry]; !ok {
		return fmt.Errorf("entry block %q missing", g.Entry)
	}
	if _, ok := g.Blocks[g.Exit]; !ok {
		return fmt.Errorf("exit block %q missing", g.Exit)
	}
	for id, block := range g.Blocks {
		for _, succ := range block.Succs {
			if _, ok := g.Blocks[succ]; !ok {
				return fmt.Errorf("block %s: dangling successor %q", id, succ)
			}
		}
		for succ, branch := range block.SuccCond {
			if _, ok := g.Blocks[succ]; !ok {
				return fmt.Errorf("block %s: condition on unknown successor %q", id, succ)
			}
			if branch.Cond == nil {
				return fmt.Errorf("block %s: successor %q declared conditional but has no condition", id, succ)
			}
		}
		if (block.Kind == BlockBranch || block.Kind == BlockLoopHead) && block.Cond == nil {
			return fmt.Errorf("block %s: %s block has no condition", id, block.Kind)
		}
	}
	return nil
}

// builder accumulates blocks and edges during construction.
type builder struct {
	blocks map[string]*BasicBlock
	nextID int
	exit   *BasicBlock
}

// Build constructs the control-flow graph for a function body. Unsupported
// statement kinds become opaque members of the current block; they never
// abort construction.
func Build(fn *syntax.Function) (*Graph, error) {
	if fn == nil {
		return nil, fmt.Errorf("nil function")
	}

	b := &builder{blocks: make(map[string]*BasicBlock)}

	entry := b.newBlock(BlockEntry, fn.Line)
	b.exit = b.newBlock(BlockExit, fn.Line)

	tail := b.walk(fn.Body, entry)
	if tail != nil {
		b.edge(tail, b.exit, nil)
	}

	g := &Graph{
		FunctionName: fn.Name,
		Blocks:       b.blocks,
		Entry:        entry.ID,
		Exit:         b.exit.ID,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// walk threads the statement list through cur, creating blocks at branch
// points, loop headers and joins. It returns the block control falls out
// of, or nil when every path returned.
func (b *builder) walk(stmts []*syntax.Stmt, cur *BasicBlock) *BasicBlock {
	for _, stmt := range stmts {
		if cur == nil {
			// dead code after a return on every path; nothing reaches it
			return nil
		}
		switch stmt.Kind {
		case syntax.StmtIf:
			cur = b.walkIf(stmt, cur)
		case syntax.StmtWhile:
			cur = b.walkWhile(stmt, cur)
		case syntax.StmtReturn:
			b.walkReturn(stmt, cur)
			cur = nil
		default:
			cur.Stmts = append(cur.Stmts, stmt)
			if stmt.Line > cur.EndLine {
				cur.EndLine = stmt.Line
			}
		}
	}
	return cur
}

func (b *builder) walkIf(stmt *syntax.Stmt, cur *BasicBlock) *BasicBlock {
	branch := b.newBlock(BlockBranch, stmt.Line)
	branch.Cond = stmt.Cond
	b.edge(cur, branch, nil)

	thenEntry := b.newBlock(BlockPlain, stmt.Line)
	b.edge(branch, thenEntry, &Branch{Cond: stmt.Cond, Taken: true})
	thenTail := b.walk(stmt.Then, thenEntry)

	var elseTail *BasicBlock
	hasElse := len(stmt.Else) > 0
	if hasElse {
		elseEntry := b.newBlock(BlockPlain, stmt.Line)
		b.edge(branch, elseEntry, &Branch{Cond: stmt.Cond, Taken: false})
		elseTail = b.walk(stmt.Else, elseEntry)
	}

	if thenTail == nil && hasElse && elseTail == nil {
		// both arms return; nothing flows past the if
		return nil
	}

	join := b.newBlock(BlockJoin, stmt.Line)
	if thenTail != nil {
		b.edge(thenTail, join, nil)
	}
	if hasElse {
		if elseTail != nil {
			b.edge(elseTail, join, nil)
		}
	} else {
		// no else arm: the false branch falls straight through to the join
		b.edge(branch, join, &Branch{Cond: stmt.Cond, Taken: false})
	}
	return join
}

func (b *builder) walkWhile(stmt *syntax.Stmt, cur *BasicBlock) *BasicBlock {
	head := b.newBlock(BlockLoopHead, stmt.Line)
	head.Cond = stmt.Cond
	b.edge(cur, head, nil)

	bodyEntry := b.newBlock(BlockPlain, stmt.Line)
	b.edge(head, bodyEntry, &Branch{Cond: stmt.Cond, Taken: true})
	if bodyTail := b.walk(stmt.Body, bodyEntry); bodyTail != nil {
		b.edge(bodyTail, head, nil) // back edge
	}

	after := b.newBlock(BlockPlain, stmt.Line)
	b.edge(head, after, &Branch{Cond: stmt.Cond, Taken: false})
	return after
}

func (b *builder) walkReturn(stmt *syntax.Stmt, cur *BasicBlock) {
	ret := b.newBlock(BlockReturn, stmt.Line)
	ret.Stmts = append(ret.Stmts, stmt)
	b.edge(cur, ret, nil)
	b.edge(ret, b.exit, nil)
}

func (b *builder) newBlock(kind BlockKind, line int) *BasicBlock {
	b.nextID++
	block := &BasicBlock{
		ID:        fmt.Sprintf("block_%d", b.nextID),
		Kind:      kind,
		SuccCond:  make(map[string]Branch),
		StartLine: line,
		EndLine:   line,
	}
	b.blocks[block.ID] = block
	return block
}

func (b *builder) edge(from, to *BasicBlock, branch *Branch) {
	from.Succs = append(from.Succs, to.ID)
	to.Preds = append(to.Preds, from.ID)
	if branch != nil {
		from.SuccCond[to.ID] = *branch
	}
}
