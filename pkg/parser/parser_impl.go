package parser

import (
	"strconv"

	"github.com/sandrolain/gocel/pkg/ast"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// Parser implements a recursive descent parser for CEL expressions (spec
// §3, §4.5). Unlike the teacher's generic Pratt/precedence-table engine,
// CEL's grammar is small and fixed, so each precedence level gets its own
// parse function; this keeps macro rewriting (has() and the five
// comprehension macros) a straightforward special case in the postfix
// level rather than a generic infix-operator hook.
type Parser struct {
	lexer   *Lexer
	current Token
	arena   *ast.Arena
	opts    CompileOptions
	depth   int
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{MaxDepth: 100}
	for _, opt := range opts {
		opt(&options)
	}
	p := &Parser{
		lexer: NewLexer(input),
		arena: ast.NewArena(),
		opts:  options,
	}
	p.advance()
	return p
}

// Parse parses the entire expression and returns a compiled Program.
func (p *Parser) Parse() (*ast.Program, error) {
	if p.current.Type == TokenError {
		return nil, cerrors.New(cerrors.Parse, p.current.Value)
	}
	if p.current.Type == TokenEOF {
		return nil, cerrors.New(cerrors.Parse, "empty expression")
	}

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenEOF {
		return nil, p.errorf("unexpected token %q", p.current.Value)
	}

	return ast.NewProgram(node, p.lexer.srcText(), p.arena), nil
}

// Parse is the package-level convenience entry point (spec §6.2 Compile).
func Parse(source string) (*ast.Program, error) {
	return NewParser(source).Parse()
}

// CompileOption configures parser behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits recursion depth to prevent stack overflow while
	// descending through nested expressions.
	MaxDepth int
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) { opts.MaxDepth = depth }
}

func (p *Parser) advance() {
	p.current = p.lexer.Next()
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return cerrors.Newf(cerrors.Parse, format, args...)
}

func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.errorf("expected %s but got %s", tt.String(), p.current.Type.String())
	}
	p.advance()
	return nil
}

func (p *Parser) enter() error {
	p.depth++
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return p.errorf("expression nested too deeply")
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

// parseExpr parses the ?: conditional level, the lowest-precedence
// production in the grammar (spec §3.5).
func (p *Parser) parseExpr() (*ast.Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenQuestion {
		return cond, nil
	}
	p.advance()

	thenExpr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	n := p.arena.Alloc(ast.KindConditional)
	n.Test, n.Then, n.Else = cond, thenExpr, elseExpr
	return n, nil
}

func (p *Parser) parseOr() (*ast.Node, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokenOrOr {
		p.advance()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		n := p.arena.Alloc(ast.KindLogical)
		n.LogicalOp, n.LHS, n.RHS = ast.LogicalOr, lhs, rhs
		lhs = n
	}
	return lhs, nil
}

func (p *Parser) parseAnd() (*ast.Node, error) {
	lhs, err := p.parseRelation()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokenAndAnd {
		p.advance()
		rhs, err := p.parseRelation()
		if err != nil {
			return nil, err
		}
		n := p.arena.Alloc(ast.KindLogical)
		n.LogicalOp, n.LHS, n.RHS = ast.LogicalAnd, lhs, rhs
		lhs = n
	}
	return lhs, nil
}

var relOps = map[TokenType]string{
	TokenEqual:        "_==_",
	TokenNotEqual:     "_!=_",
	TokenLess:         "_<_",
	TokenLessEqual:    "_<=_",
	TokenGreater:      "_>_",
	TokenGreaterEqual: "_>=_",
	TokenIn:           "_in_",
}

// parseRelation handles ==, !=, <, <=, >, >=, in. CEL relations do not
// chain (`1 < 2 < 3` is not re-parsed as `(1<2) < 3` semantically in the
// reference grammar, but left-associative parsing of a single relational
// operator per expression is the common, well-defined case this engine
// supports).
func (p *Parser) parseRelation() (*ast.Node, error) {
	lhs, err := p.parseAddition()
	if err != nil {
		return nil, err
	}
	for {
		fn, ok := relOps[p.current.Type]
		if !ok {
			return lhs, nil
		}
		p.advance()
		rhs, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		n := p.arena.Alloc(ast.KindCall)
		n.Function = fn
		n.Args = []*ast.Node{lhs, rhs}
		lhs = n
	}
}

func (p *Parser) parseAddition() (*ast.Node, error) {
	lhs, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokenPlus || p.current.Type == TokenMinus {
		fn := "_+_"
		if p.current.Type == TokenMinus {
			fn = "_-_"
		}
		p.advance()
		rhs, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}
		n := p.arena.Alloc(ast.KindCall)
		n.Function = fn
		n.Args = []*ast.Node{lhs, rhs}
		lhs = n
	}
	return lhs, nil
}

func (p *Parser) parseMultiplication() (*ast.Node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokenMult || p.current.Type == TokenDiv || p.current.Type == TokenMod {
		var fn string
		switch p.current.Type {
		case TokenMult:
			fn = "_*_"
		case TokenDiv:
			fn = "_/_"
		default:
			fn = "_%_"
		}
		p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n := p.arena.Alloc(ast.KindCall)
		n.Function = fn
		n.Args = []*ast.Node{lhs, rhs}
		lhs = n
	}
	return lhs, nil
}

func (p *Parser) parseUnary() (*ast.Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	switch p.current.Type {
	case TokenNot:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n := p.arena.Alloc(ast.KindUnary)
		n.UnaryOp, n.Operand = ast.UnaryNot, operand
		return n, nil
	case TokenMinus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n := p.arena.Alloc(ast.KindUnary)
		n.UnaryOp, n.Operand = ast.UnaryNeg, operand
		return n, nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles `.field`, `.?field`, `[index]`, `[?index]`,
// `f(args)` and `recv.f(args)` chains, including has() and comprehension
// macro recognition (spec §4.4.3, §4.4.4, §4.5).
func (p *Parser) parsePostfix() (*ast.Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.current.Type {
		case TokenDot:
			p.advance()
			optional := false
			if p.current.Type == TokenQuestion {
				optional = true
				p.advance()
			}
			if p.current.Type != TokenIdent {
				return nil, p.errorf("expected field or method name after '.', got %s", p.current.Type.String())
			}
			name := p.current.Value
			p.advance()

			if p.current.Type == TokenParenOpen {
				call, err := p.parseCallTail(n, name)
				if err != nil {
					return nil, err
				}
				n = call
				continue
			}

			sel := p.arena.Alloc(ast.KindSelect)
			sel.Operand, sel.Field, sel.Optional = n, name, optional
			n = sel
		case TokenBracketOpen:
			p.advance()
			optional := false
			if p.current.Type == TokenQuestion {
				optional = true
				p.advance()
			}
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(TokenBracketClose); err != nil {
				return nil, err
			}
			idx := p.arena.Alloc(ast.KindIndex)
			idx.Operand, idx.Key, idx.Optional = n, key, optional
			n = idx
		default:
			return n, nil
		}
	}
}

// parseCallTail parses the `(args)` of either a free function call
// (target == nil) or a receiver-style call/macro, having already consumed
// the function name and stopped at `(`.
func (p *Parser) parseCallTail(target *ast.Node, name string) (*ast.Node, error) {
	if target != nil && macroNames[name] {
		return p.parseMacro(target, name)
	}

	p.advance() // consume '('
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	n := p.arena.Alloc(ast.KindCall)
	if target != nil && target.Kind == ast.KindIdent && namespacedFreeFunctions[target.Name] {
		n.Function, n.Args = target.Name+"."+name, args
		return n, nil
	}
	n.Target, n.Function, n.Args = target, name, args
	return n, nil
}

func (p *Parser) parseArgs() ([]*ast.Node, error) {
	var args []*ast.Node
	if p.current.Type == TokenParenClose {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.current.Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	return args, nil
}

// parseMacro parses `target.name(iterVar, body)` for the five
// comprehension macros and desugars it into a KindComprehension node
// using the state-machine shape spec §4.5 describes generically.
func (p *Parser) parseMacro(target *ast.Node, name string) (*ast.Node, error) {
	p.advance() // consume '('

	if p.current.Type != TokenIdent {
		return nil, p.errorf("expected loop variable name in %s(), got %s", name, p.current.Type.String())
	}
	iterVar := p.current.Value
	p.advance()

	if err := p.expect(TokenComma); err != nil {
		return nil, err
	}

	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}

	return p.desugarMacro(name, target, iterVar, body), nil
}

const accumVar = "@result"

func (p *Parser) boolLit(v bool) *ast.Node {
	n := p.arena.Alloc(ast.KindLiteral)
	n.Literal = value.Bool(v)
	return n
}

func (p *Parser) intLit(v int64) *ast.Node {
	n := p.arena.Alloc(ast.KindLiteral)
	n.Literal = value.Int(v)
	return n
}

func (p *Parser) identNode(name string) *ast.Node {
	n := p.arena.Alloc(ast.KindIdent)
	n.Name = name
	return n
}

func (p *Parser) listLit(elems ...*ast.Node) *ast.Node {
	n := p.arena.Alloc(ast.KindList)
	n.Elements = elems
	n.ElementOpts = make([]bool, len(elems))
	return n
}

func (p *Parser) call(fn string, args ...*ast.Node) *ast.Node {
	n := p.arena.Alloc(ast.KindCall)
	n.Function = fn
	n.Args = args
	return n
}

func (p *Parser) not(operand *ast.Node) *ast.Node {
	n := p.arena.Alloc(ast.KindUnary)
	n.UnaryOp, n.Operand = ast.UnaryNot, operand
	return n
}

func (p *Parser) logical(op ast.LogicalOp, lhs, rhs *ast.Node) *ast.Node {
	n := p.arena.Alloc(ast.KindLogical)
	n.LogicalOp, n.LHS, n.RHS = op, lhs, rhs
	return n
}

func (p *Parser) conditional(test, then, els *ast.Node) *ast.Node {
	n := p.arena.Alloc(ast.KindConditional)
	n.Test, n.Then, n.Else = test, then, els
	return n
}

// desugarMacro builds the init/loop_cond/loop_step/result quadruple for
// each macro (derived from spec §4.5's general comprehension state
// machine; the spec names the fields but not the concrete per-macro
// formulas).
func (p *Parser) desugarMacro(name string, iterRange *ast.Node, iterVar string, body *ast.Node) *ast.Node {
	n := p.arena.Alloc(ast.KindComprehension)
	n.IterRange = iterRange
	n.IterVar = iterVar
	n.AccumVar = accumVar

	switch name {
	case "all":
		n.Style = ast.StyleAll
		n.Init = p.boolLit(true)
		n.LoopCond = p.identNode(accumVar)
		n.LoopStep = p.logical(ast.LogicalAnd, p.identNode(accumVar), body)
		n.Result = p.identNode(accumVar)
	case "exists":
		n.Style = ast.StyleExists
		n.Init = p.boolLit(false)
		n.LoopCond = p.not(p.identNode(accumVar))
		n.LoopStep = p.logical(ast.LogicalOr, p.identNode(accumVar), body)
		n.Result = p.identNode(accumVar)
	case "exists_one":
		n.Style = ast.StyleExistsOne
		n.Init = p.intLit(0)
		n.LoopCond = p.boolLit(true)
		n.LoopStep = p.conditional(body, p.call("_+_", p.identNode(accumVar), p.intLit(1)), p.identNode(accumVar))
		n.Result = p.call("_==_", p.identNode(accumVar), p.intLit(1))
	case "map":
		n.Style = ast.StyleMap
		n.Init = p.listLit()
		n.LoopCond = p.boolLit(true)
		n.LoopStep = p.call("_+_", p.identNode(accumVar), p.listLit(body))
		n.Result = p.identNode(accumVar)
	case "filter":
		n.Style = ast.StyleFilter
		n.Init = p.listLit()
		n.LoopCond = p.boolLit(true)
		n.LoopStep = p.conditional(body, p.call("_+_", p.identNode(accumVar), p.listLit(p.identNode(iterVar))), p.identNode(accumVar))
		n.Result = p.identNode(accumVar)
	}
	return n
}

// parsePrimary handles literals, identifiers/free calls, has(), parenthesized
// expressions, and list/map constructors.
func (p *Parser) parsePrimary() (*ast.Node, error) {
	tok := p.current
	switch tok.Type {
	case TokenInt:
		p.advance()
		v, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid int literal %q: %v", tok.Value, err)
		}
		n := p.arena.Alloc(ast.KindLiteral)
		n.Literal = value.Int(v)
		return n, nil
	case TokenUint:
		p.advance()
		v, err := strconv.ParseUint(tok.Value, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid uint literal %q: %v", tok.Value, err)
		}
		n := p.arena.Alloc(ast.KindLiteral)
		n.Literal = value.UInt(v)
		return n, nil
	case TokenDouble:
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorf("invalid double literal %q: %v", tok.Value, err)
		}
		n := p.arena.Alloc(ast.KindLiteral)
		n.Literal = value.Double(v)
		return n, nil
	case TokenString:
		p.advance()
		n := p.arena.Alloc(ast.KindLiteral)
		n.Literal = value.String(tok.Value)
		return n, nil
	case TokenBytes:
		p.advance()
		n := p.arena.Alloc(ast.KindLiteral)
		n.Literal = value.Bytes([]byte(tok.Value))
		return n, nil
	case TokenBool:
		p.advance()
		n := p.arena.Alloc(ast.KindLiteral)
		n.Literal = value.Bool(tok.Value == "true")
		return n, nil
	case TokenNull:
		p.advance()
		n := p.arena.Alloc(ast.KindLiteral)
		n.Literal = value.Null
		return n, nil
	case TokenIdent:
		return p.parseIdentOrCallOrHas()
	case TokenParenOpen:
		p.advance()
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenParenClose); err != nil {
			return nil, err
		}
		return n, nil
	case TokenBracketOpen:
		return p.parseListLiteral()
	case TokenBraceOpen:
		return p.parseMapLiteral()
	default:
		return nil, p.errorf("unexpected token %q", tok.Value)
	}
}

func (p *Parser) parseIdentOrCallOrHas() (*ast.Node, error) {
	name := p.current.Value
	p.advance()

	if p.current.Type != TokenParenOpen {
		n := p.arena.Alloc(ast.KindIdent)
		n.Name = name
		return n, nil
	}

	if name == "has" {
		return p.parseHasMacro()
	}

	p.advance() // consume '('
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	n := p.arena.Alloc(ast.KindCall)
	n.Function = name
	n.Args = args
	return n, nil
}

// parseHasMacro parses has(e.f) (spec §4.4.4): the single argument must
// parse to a field selection, which is then flagged IsHasMacro so the
// interpreter treats "container lacks this field" as false rather than an
// error.
func (p *Parser) parseHasMacro() (*ast.Node, error) {
	p.advance() // consume '('
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	if arg.Kind != ast.KindSelect {
		return nil, p.errorf("has() argument must be a field selection")
	}
	arg.IsHasMacro = true
	return arg, nil
}

func (p *Parser) parseListLiteral() (*ast.Node, error) {
	p.advance() // consume '['
	var elems []*ast.Node
	var opts []bool
	if p.current.Type == TokenBracketClose {
		p.advance()
		n := p.arena.Alloc(ast.KindList)
		return n, nil
	}
	for {
		optional := false
		if p.current.Type == TokenQuestion {
			optional = true
			p.advance()
		}
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		opts = append(opts, optional)
		if p.current.Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(TokenBracketClose); err != nil {
		return nil, err
	}
	n := p.arena.Alloc(ast.KindList)
	n.Elements, n.ElementOpts = elems, opts
	return n, nil
}

func (p *Parser) parseMapLiteral() (*ast.Node, error) {
	p.advance() // consume '{'
	var entries []ast.MapEntry
	if p.current.Type == TokenBraceClose {
		p.advance()
		n := p.arena.Alloc(ast.KindMap)
		return n, nil
	}
	for {
		optional := false
		if p.current.Type == TokenQuestion {
			optional = true
			p.advance()
		}
		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.MapEntry{Key: key, Value: val, Optional: optional})
		if p.current.Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(TokenBraceClose); err != nil {
		return nil, err
	}
	n := p.arena.Alloc(ast.KindMap)
	n.Entries = entries
	return n, nil
}
