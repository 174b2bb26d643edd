// Package parser builds the ast tree the evaluator walks from a lexer
// token stream, using recursive descent with precedence climbing for
// expressions. Grounded on the teacher's hand-written recursive-descent
// parser (sentra/internal/parser/parser.go: a token-array cursor with
// peek/advance/match/consume helpers and one parse method per grammar
// rule), extended with the additional expression forms (ternary,
// null-coalesce, inc/dec, named/spread call arguments, typed parameters)
// and statement forms (try/catch/finally, throw, defer, switch, for-in)
// Hemlock's grammar needs beyond the teacher's scripting language.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Schneewolf-Labs/hemlock/internal/ast"
	"github.com/Schneewolf-Labs/hemlock/internal/lexer"
	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

// ParseError reports a syntax error with the offending token's source line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Msg) }

type Parser struct {
	tokens  []lexer.Token
	current int
}

func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes nothing further (tokens are supplied) and returns the whole
// program as an ordered statement list.
func (p *Parser) Parse() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		s, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// ParseSource is the convenience entry point: lex then parse a whole
// program from source text.
func ParseSource(source string) ([]ast.Stmt, error) {
	sc := lexer.NewScanner(source)
	tokens, errs := sc.ScanTokens()
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return New(tokens).Parse()
}

// ---- token cursor ----

func (p *Parser) peek() lexer.Token  { return p.tokens[p.current] }
func (p *Parser) previous() lexer.Token { return p.tokens[p.current-1] }
func (p *Parser) isAtEnd() bool      { return p.peek().Type == lexer.TokenEOF }

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t lexer.TokenType) bool {
	if p.isAtEnd() {
		return t == lexer.TokenEOF
	}
	return p.peek().Type == t
}

func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t lexer.TokenType, msg string) (lexer.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return lexer.Token{}, &ParseError{Line: p.peek().Line, Msg: msg + " (got " + string(p.peek().Type) + " '" + p.peek().Lexeme + "')"}
}

// consumeOptionalSemi accepts zero or more statement terminators; semicolons are
// optional between a `}`-closed block and the next statement.
func (p *Parser) consumeOptionalSemi() {
	for p.check(lexer.TokenSemicolon) {
		p.advance()
	}
}

// ---- declarations & statements ----

func (p *Parser) declaration() (ast.Stmt, error) {
	switch {
	case p.check(lexer.TokenAsync) && p.checkNext(lexer.TokenFn):
		p.advance()
		return p.functionDecl(true)
	case p.check(lexer.TokenFn):
		return p.functionDecl(false)
	default:
		return p.statement()
	}
}

func (p *Parser) checkNext(t lexer.TokenType) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == t
}

func (p *Parser) functionDecl(isAsync bool) (ast.Stmt, error) {
	if _, err := p.consume(lexer.TokenFn, "expected 'fn'"); err != nil {
		return nil, err
	}
	name, err := p.consume(lexer.TokenIdent, "expected function name")
	if err != nil {
		return nil, err
	}
	fn, err := p.functionTail(name.Lexeme, isAsync)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{Fn: fn}, nil
}

// functionTail parses `(params) [: returnType] { body }`, the name and
// async flag already consumed by the caller.
func (p *Parser) functionTail(name string, isAsync bool) (*ast.FunctionLit, error) {
	if _, err := p.consume(lexer.TokenLParen, "expected '(' after function name"); err != nil {
		return nil, err
	}
	var params []ast.Param
	rest := ""
	for !p.check(lexer.TokenRParen) {
		if p.match(lexer.TokenDotDotDot) {
			id, err := p.consume(lexer.TokenIdent, "expected rest parameter name")
			if err != nil {
				return nil, err
			}
			rest = id.Lexeme
			break
		}
		id, err := p.consume(lexer.TokenIdent, "expected parameter name")
		if err != nil {
			return nil, err
		}
		param := ast.Param{Name: id.Lexeme}
		if p.match(lexer.TokenColon) {
			t, err := p.consume(lexer.TokenIdent, "expected parameter type")
			if err != nil {
				return nil, err
			}
			param.Type = t.Lexeme
		}
		if p.match(lexer.TokenEqual) {
			def, err := p.expression()
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		params = append(params, param)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after parameters"); err != nil {
		return nil, err
	}
	returnType := ""
	if p.match(lexer.TokenColon) {
		t, err := p.consume(lexer.TokenIdent, "expected return type")
		if err != nil {
			return nil, err
		}
		returnType = t.Lexeme
	}
	body, err := p.blockStmts()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionLit{Name: name, Params: params, RestParam: rest, ReturnType: returnType, Body: body, IsAsync: isAsync}, nil
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(lexer.TokenLet):
		return p.letStmt(false)
	case p.match(lexer.TokenConst):
		return p.letStmt(true)
	case p.match(lexer.TokenLBrace):
		p.current-- // re-enter via blockStmts, which expects the leading '{'
		return p.blockStmt()
	case p.match(lexer.TokenIf):
		return p.ifStmt()
	case p.match(lexer.TokenWhile):
		return p.whileStmt()
	case p.match(lexer.TokenFor):
		return p.forStmt()
	case p.match(lexer.TokenReturn):
		return p.returnStmt()
	case p.match(lexer.TokenBreak):
		p.consumeOptionalSemiStmt()
		return &ast.Break{}, nil
	case p.match(lexer.TokenContinue):
		p.consumeOptionalSemiStmt()
		return &ast.Continue{}, nil
	case p.match(lexer.TokenSwitch):
		return p.switchStmt()
	case p.match(lexer.TokenTry):
		return p.tryStmt()
	case p.match(lexer.TokenThrow):
		return p.throwStmt()
	case p.match(lexer.TokenDefer):
		return p.deferStmt()
	default:
		return p.expressionStmt()
	}
}

// consumeOptionalSemiStmt consumes one trailing ';' if present; Hemlock
// statements don't require them but accept them.
func (p *Parser) consumeOptionalSemiStmt() {
	p.match(lexer.TokenSemicolon)
}

func (p *Parser) letStmt(isConst bool) (ast.Stmt, error) {
	name, err := p.consume(lexer.TokenIdent, "expected variable name")
	if err != nil {
		return nil, err
	}
	typ := ""
	if p.match(lexer.TokenColon) {
		t, err := p.consume(lexer.TokenIdent, "expected type")
		if err != nil {
			return nil, err
		}
		typ = t.Lexeme
	}
	var val ast.Expr
	if p.match(lexer.TokenEqual) {
		val, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	p.consumeOptionalSemiStmt()
	return &ast.Let{Name: name.Lexeme, Type: typ, Value: val, IsConst: isConst}, nil
}

func (p *Parser) blockStmts() ([]ast.Stmt, error) {
	if _, err := p.consume(lexer.TokenLBrace, "expected '{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		s, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.consume(lexer.TokenRBrace, "expected '}'"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) blockStmt() (ast.Stmt, error) {
	stmts, err := p.blockStmts()
	if err != nil {
		return nil, err
	}
	return &ast.Block{Stmts: stmts}, nil
}

func (p *Parser) ifStmt() (ast.Stmt, error) {
	if _, err := p.consume(lexer.TokenLParen, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after condition"); err != nil {
		return nil, err
	}
	then, err := p.blockStmts()
	if err != nil {
		return nil, err
	}
	var elseStmts []ast.Stmt
	if p.match(lexer.TokenElse) {
		if p.check(lexer.TokenIf) {
			p.advance()
			inner, err := p.ifStmt()
			if err != nil {
				return nil, err
			}
			elseStmts = []ast.Stmt{inner}
		} else {
			elseStmts, err = p.blockStmts()
			if err != nil {
				return nil, err
			}
		}
	}
	return &ast.If{Cond: cond, Then: then, Else: elseStmts}, nil
}

func (p *Parser) whileStmt() (ast.Stmt, error) {
	if _, err := p.consume(lexer.TokenLParen, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after condition"); err != nil {
		return nil, err
	}
	body, err := p.blockStmts()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

// forStmt disambiguates `for (x in collection)` from the C-style
// `for (init; cond; update)` by looking ahead for the `in` keyword.
func (p *Parser) forStmt() (ast.Stmt, error) {
	if _, err := p.consume(lexer.TokenLParen, "expected '(' after 'for'"); err != nil {
		return nil, err
	}
	if p.check(lexer.TokenIdent) && p.checkNext(lexer.TokenIn) {
		name := p.advance()
		p.advance() // 'in'
		coll, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokenRParen, "expected ')' after for-in collection"); err != nil {
			return nil, err
		}
		body, err := p.blockStmts()
		if err != nil {
			return nil, err
		}
		return &ast.ForIn{VarName: name.Lexeme, Collection: coll, Body: body}, nil
	}

	var init ast.Stmt
	var err error
	if !p.check(lexer.TokenSemicolon) {
		if p.match(lexer.TokenLet) {
			init, err = p.letStmt(false)
		} else {
			init, err = p.expressionStmt()
		}
		if err != nil {
			return nil, err
		}
	} else {
		p.advance()
	}
	var cond ast.Expr
	if !p.check(lexer.TokenSemicolon) {
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokenSemicolon, "expected ';' after loop condition"); err != nil {
		return nil, err
	}
	var update ast.Stmt
	if !p.check(lexer.TokenRParen) {
		updateExpr, err := p.expression()
		if err != nil {
			return nil, err
		}
		update = &ast.ExpressionStmt{Expr: updateExpr}
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after for clauses"); err != nil {
		return nil, err
	}
	body, err := p.blockStmts()
	if err != nil {
		return nil, err
	}
	return &ast.For{Init: init, Cond: cond, Update: update, Body: body}, nil
}

func (p *Parser) returnStmt() (ast.Stmt, error) {
	var val ast.Expr
	if !p.check(lexer.TokenSemicolon) && !p.check(lexer.TokenRBrace) {
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		val = v
	}
	p.consumeOptionalSemiStmt()
	return &ast.Return{Value: val}, nil
}

func (p *Parser) switchStmt() (ast.Stmt, error) {
	if _, err := p.consume(lexer.TokenLParen, "expected '(' after 'switch'"); err != nil {
		return nil, err
	}
	subject, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after switch subject"); err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenLBrace, "expected '{' to start switch body"); err != nil {
		return nil, err
	}
	sw := &ast.Switch{Value: subject}
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		if p.match(lexer.TokenCase) {
			pattern, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(lexer.TokenColon, "expected ':' after case pattern"); err != nil {
				return nil, err
			}
			body, err := p.caseBody()
			if err != nil {
				return nil, err
			}
			sw.Cases = append(sw.Cases, ast.SwitchCase{Pattern: pattern, Body: body})
		} else if p.match(lexer.TokenDefault) {
			if _, err := p.consume(lexer.TokenColon, "expected ':' after 'default'"); err != nil {
				return nil, err
			}
			body, err := p.caseBody()
			if err != nil {
				return nil, err
			}
			sw.Default = body
			sw.HasDefault = true
		} else {
			return nil, &ParseError{Line: p.peek().Line, Msg: "expected 'case' or 'default' in switch body"}
		}
	}
	if _, err := p.consume(lexer.TokenRBrace, "expected '}' to close switch"); err != nil {
		return nil, err
	}
	return sw, nil
}

// caseBody collects statements up to the next case/default/closing brace.
func (p *Parser) caseBody() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.check(lexer.TokenCase) && !p.check(lexer.TokenDefault) && !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		s, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func (p *Parser) tryStmt() (ast.Stmt, error) {
	tryBlock, err := p.blockStmts()
	if err != nil {
		return nil, err
	}
	t := &ast.Try{TryBlock: tryBlock}
	if p.match(lexer.TokenCatch) {
		t.HasCatch = true
		if p.match(lexer.TokenLParen) {
			id, err := p.consume(lexer.TokenIdent, "expected catch variable name")
			if err != nil {
				return nil, err
			}
			t.CatchVar = id.Lexeme
			if _, err := p.consume(lexer.TokenRParen, "expected ')' after catch variable"); err != nil {
				return nil, err
			}
		}
		t.CatchBlock, err = p.blockStmts()
		if err != nil {
			return nil, err
		}
	}
	if p.match(lexer.TokenFinally) {
		t.HasFinally = true
		t.FinallyBlock, err = p.blockStmts()
		if err != nil {
			return nil, err
		}
	}
	if !t.HasCatch && !t.HasFinally {
		return nil, &ParseError{Line: p.peek().Line, Msg: "'try' requires a 'catch' and/or 'finally' block"}
	}
	return t, nil
}

func (p *Parser) throwStmt() (ast.Stmt, error) {
	val, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.consumeOptionalSemiStmt()
	return &ast.Throw{Value: val}, nil
}

func (p *Parser) deferStmt() (ast.Stmt, error) {
	val, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, ok := val.(*ast.Call); !ok {
		return nil, &ParseError{Line: p.peek().Line, Msg: "'defer' requires a call expression"}
	}
	p.consumeOptionalSemiStmt()
	return &ast.Defer{Call: val}, nil
}

func (p *Parser) expressionStmt() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.consumeOptionalSemiStmt()
	return &ast.ExpressionStmt{Expr: expr}, nil
}

// ---- expressions: precedence climbing ----

func (p *Parser) expression() (ast.Expr, error) { return p.assignment() }

func (p *Parser) assignment() (ast.Expr, error) {
	left, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if p.match(lexer.TokenEqual) {
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		switch t := left.(type) {
		case *ast.Identifier:
			return &ast.Assign{Name: t.Name, Value: value}, nil
		case *ast.Index:
			return &ast.IndexAssign{Object: t.Object, Index: t.IndexExpr, Value: value}, nil
		case *ast.Property:
			return &ast.PropertyAssign{Object: t.Object, Name: t.Name, Value: value}, nil
		default:
			return nil, &ParseError{Line: p.previous().Line, Msg: "invalid assignment target"}
		}
	}
	return left, nil
}

func (p *Parser) ternary() (ast.Expr, error) {
	cond, err := p.nullCoalesce()
	if err != nil {
		return nil, err
	}
	if p.match(lexer.TokenQuestion) {
		then, err := p.assignment()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokenColon, "expected ':' in ternary expression"); err != nil {
			return nil, err
		}
		els, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return &ast.Ternary{Cond: cond, Then: then, Else: els}, nil
	}
	return cond, nil
}

func (p *Parser) nullCoalesce() (ast.Expr, error) {
	left, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokenQQ) {
		right, err := p.logicalOr()
		if err != nil {
			return nil, err
		}
		left = &ast.NullCoalesce{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) logicalOr() (ast.Expr, error) {
	return p.binaryLevel(p.logicalAnd, map[lexer.TokenType]string{lexer.TokenOr: "||"}, true)
}

func (p *Parser) logicalAnd() (ast.Expr, error) {
	return p.binaryLevel(p.bitwiseOr, map[lexer.TokenType]string{lexer.TokenAnd: "&&"}, true)
}

func (p *Parser) bitwiseOr() (ast.Expr, error) {
	return p.binaryLevel(p.bitwiseXor, map[lexer.TokenType]string{lexer.TokenPipe: "|"}, false)
}

func (p *Parser) bitwiseXor() (ast.Expr, error) {
	return p.binaryLevel(p.bitwiseAnd, map[lexer.TokenType]string{lexer.TokenCaret: "^"}, false)
}

func (p *Parser) bitwiseAnd() (ast.Expr, error) {
	return p.binaryLevel(p.equality, map[lexer.TokenType]string{lexer.TokenAmp: "&"}, false)
}

func (p *Parser) equality() (ast.Expr, error) {
	return p.binaryLevel(p.relational, map[lexer.TokenType]string{
		lexer.TokenDoubleEqual: "==", lexer.TokenNotEqual: "!=",
	}, false)
}

func (p *Parser) relational() (ast.Expr, error) {
	return p.binaryLevel(p.shift, map[lexer.TokenType]string{
		lexer.TokenLT: "<", lexer.TokenLE: "<=", lexer.TokenGT: ">", lexer.TokenGE: ">=",
	}, false)
}

func (p *Parser) shift() (ast.Expr, error) {
	return p.binaryLevel(p.additive, map[lexer.TokenType]string{
		lexer.TokenShl: "<<", lexer.TokenShr: ">>",
	}, false)
}

func (p *Parser) additive() (ast.Expr, error) {
	return p.binaryLevel(p.multiplicative, map[lexer.TokenType]string{
		lexer.TokenPlus: "+", lexer.TokenMinus: "-",
	}, false)
}

func (p *Parser) multiplicative() (ast.Expr, error) {
	return p.binaryLevel(p.unary, map[lexer.TokenType]string{
		lexer.TokenStar: "*", lexer.TokenSlash: "/", lexer.TokenPercent: "%",
	}, false)
}

// binaryLevel implements one left-associative precedence level, producing
// either a Logical node (for && / ||, which short-circuit) or a Binary node.
func (p *Parser) binaryLevel(next func() (ast.Expr, error), ops map[lexer.TokenType]string, logical bool) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.peek().Type]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		if logical {
			left = &ast.Logical{Left: left, Right: right, Op: op}
		} else {
			left = &ast.Binary{Left: left, Right: right, Op: op}
		}
	}
}

func (p *Parser) unary() (ast.Expr, error) {
	switch {
	case p.match(lexer.TokenMinus):
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operand: operand, Op: "-"}, nil
	case p.match(lexer.TokenNot):
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operand: operand, Op: "!"}, nil
	case p.match(lexer.TokenTilde):
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operand: operand, Op: "~"}, nil
	case p.match(lexer.TokenPlusPlus):
		target, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.IncDec{Target: target, Op: "++", Prefix: true}, nil
	case p.match(lexer.TokenMinusMinus):
		target, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.IncDec{Target: target, Op: "--", Prefix: true}, nil
	case p.match(lexer.TokenAwait):
		v, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Await{Value: v}, nil
	default:
		return p.postfix()
	}
}

func (p *Parser) postfix() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(lexer.TokenLParen):
			args, err := p.callArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.Call{Callee: expr, Args: args}
		case p.match(lexer.TokenDot):
			name, err := p.consume(lexer.TokenIdent, "expected property name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.Property{Object: expr, Name: name.Lexeme}
		case p.match(lexer.TokenLBracket):
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(lexer.TokenRBracket, "expected ']' after index"); err != nil {
				return nil, err
			}
			expr = &ast.Index{Object: expr, IndexExpr: idx}
		case p.match(lexer.TokenPlusPlus):
			expr = &ast.IncDec{Target: expr, Op: "++", Prefix: false}
		case p.match(lexer.TokenMinusMinus):
			expr = &ast.IncDec{Target: expr, Op: "--", Prefix: false}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) callArgs() ([]ast.Argument, error) {
	var args []ast.Argument
	for !p.check(lexer.TokenRParen) {
		var a ast.Argument
		if p.match(lexer.TokenDotDotDot) {
			a.Spread = true
		} else if p.check(lexer.TokenIdent) && p.checkNext(lexer.TokenColon) {
			name := p.advance()
			p.advance() // ':'
			a.Name = name.Lexeme
		}
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		a.Value = v
		args = append(args, a)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenTrue:
		p.advance()
		return &ast.Literal{Value: value.Bool(true)}, nil
	case lexer.TokenFalse:
		p.advance()
		return &ast.Literal{Value: value.Bool(false)}, nil
	case lexer.TokenNull:
		p.advance()
		return &ast.Literal{Value: value.Null}, nil
	case lexer.TokenInt:
		p.advance()
		return p.intLiteral(tok)
	case lexer.TokenFloat:
		p.advance()
		return p.floatLiteral(tok)
	case lexer.TokenString:
		p.advance()
		return &ast.Literal{Value: wrapStringLiteral(tok.Lexeme)}, nil
	case lexer.TokenIStr:
		p.advance()
		return parseInterpolation(tok.Lexeme, tok.Line)
	case lexer.TokenRune:
		p.advance()
		r := []rune(tok.Lexeme)
		if len(r) == 0 {
			return nil, &ParseError{Line: tok.Line, Msg: "empty rune literal"}
		}
		return &ast.RuneLit{Value: r[0]}, nil
	case lexer.TokenSpawn:
		p.advance()
		return &ast.Identifier{Name: "spawn"}, nil
	case lexer.TokenJoin:
		p.advance()
		return &ast.Identifier{Name: "join"}, nil
	case lexer.TokenDetach:
		p.advance()
		return &ast.Identifier{Name: "detach"}, nil
	case lexer.TokenIdent:
		p.advance()
		return &ast.Identifier{Name: tok.Lexeme}, nil
	case lexer.TokenLParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokenRParen, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.TokenLBracket:
		return p.arrayLit()
	case lexer.TokenLBrace:
		return p.objectLit("")
	case lexer.TokenAsync:
		p.advance()
		if _, err := p.consume(lexer.TokenFn, "expected 'fn' after 'async'"); err != nil {
			return nil, err
		}
		return p.anonFunctionLit(true)
	case lexer.TokenFn:
		p.advance()
		return p.anonFunctionLit(false)
	default:
		return nil, &ParseError{Line: tok.Line, Msg: "unexpected token '" + string(tok.Type) + "'"}
	}
}

// intWidthSuffix maps a scanned width suffix (spec §4.1: i8/i16/i32/i64/
// u8/u16/u32/u64) to its fixed-width Kind and signedness.
func intWidthSuffix(suffix string) (k value.Kind, unsigned bool, ok bool) {
	switch suffix {
	case "i8":
		return value.KindI8, false, true
	case "i16":
		return value.KindI16, false, true
	case "i32":
		return value.KindI32, false, true
	case "i64":
		return value.KindI64, false, true
	case "u8":
		return value.KindU8, true, true
	case "u16":
		return value.KindU16, true, true
	case "u32":
		return value.KindU32, true, true
	case "u64":
		return value.KindU64, true, true
	default:
		return 0, false, false
	}
}

// intLiteral constructs a width-checked integer Literal from a scanned
// token, whose Lexeme carries any trailing width suffix verbatim (e.g.
// "42i8"). A literal with no suffix defaults to i64, as before.
func (p *Parser) intLiteral(tok lexer.Token) (ast.Expr, error) {
	lexeme := tok.Lexeme
	digits := lexeme
	suffix := ""
	for i, c := range lexeme {
		if !('0' <= c && c <= '9') {
			digits = lexeme[:i]
			suffix = lexeme[i:]
			break
		}
	}
	if suffix == "" {
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return nil, &ParseError{Line: tok.Line, Msg: "invalid integer literal '" + lexeme + "'"}
		}
		return &ast.Literal{Value: value.I64(n)}, nil
	}
	k, unsigned, ok := intWidthSuffix(suffix)
	if !ok {
		return nil, &ParseError{Line: tok.Line, Msg: "invalid numeric literal suffix '" + suffix + "'"}
	}
	if unsigned {
		n, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			return nil, &ParseError{Line: tok.Line, Msg: "invalid integer literal '" + lexeme + "'"}
		}
		v, err := value.NewUint(k, n)
		if err != nil {
			return nil, &ParseError{Line: tok.Line, Msg: err.Error()}
		}
		return &ast.Literal{Value: v}, nil
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, &ParseError{Line: tok.Line, Msg: "invalid integer literal '" + lexeme + "'"}
	}
	v, err := value.NewInt(k, n)
	if err != nil {
		return nil, &ParseError{Line: tok.Line, Msg: err.Error()}
	}
	return &ast.Literal{Value: v}, nil
}

// floatLiteral constructs a Literal from a scanned float token, whose
// Lexeme may carry an "f32" or "f64" width suffix (e.g. "3.5f32"); no
// suffix defaults to f64, as before.
func (p *Parser) floatLiteral(tok lexer.Token) (ast.Expr, error) {
	lexeme := tok.Lexeme
	digits := lexeme
	suffix := ""
	for i, c := range lexeme {
		if !('0' <= c && c <= '9' || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-') {
			digits = lexeme[:i]
			suffix = lexeme[i:]
			break
		}
	}
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil, &ParseError{Line: tok.Line, Msg: "invalid float literal '" + lexeme + "'"}
	}
	switch suffix {
	case "", "f64":
		return &ast.Literal{Value: value.F64(f)}, nil
	case "f32":
		return &ast.Literal{Value: value.F32(float32(f))}, nil
	default:
		return nil, &ParseError{Line: tok.Line, Msg: "invalid numeric literal suffix '" + suffix + "'"}
	}
}

// wrapStringLiteral builds the constant Value stored in an ast.Literal node.
// The literal is evaluated by re-retaining this same Value every time its
// node is visited (see eval.VisitLiteral), so the AST's own copy must start
// out owning a reference (refcount 1) rather than the freshly constructed
// refcount-0 StringObj FromHeap alone would leave behind.
func wrapStringLiteral(s string) value.Value {
	out := value.FromHeap(value.KindString, value.NewString(s))
	value.Retain(out)
	return out
}

func (p *Parser) anonFunctionLit(isAsync bool) (ast.Expr, error) {
	name := ""
	if p.check(lexer.TokenIdent) {
		name = p.advance().Lexeme
	}
	return p.functionTail(name, isAsync)
}

func (p *Parser) arrayLit() (ast.Expr, error) {
	if _, err := p.consume(lexer.TokenLBracket, "expected '['"); err != nil {
		return nil, err
	}
	var elems []ast.Expr
	for !p.check(lexer.TokenRBracket) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.consume(lexer.TokenRBracket, "expected ']' after array elements"); err != nil {
		return nil, err
	}
	return &ast.ArrayLit{Elements: elems}, nil
}

func (p *Parser) objectLit(typeName string) (ast.Expr, error) {
	if _, err := p.consume(lexer.TokenLBrace, "expected '{'"); err != nil {
		return nil, err
	}
	lit := &ast.ObjectLit{TypeName: typeName}
	for !p.check(lexer.TokenRBrace) {
		var name string
		if p.check(lexer.TokenIdent) {
			name = p.advance().Lexeme
		} else if p.check(lexer.TokenString) {
			name = p.advance().Lexeme
		} else {
			return nil, &ParseError{Line: p.peek().Line, Msg: "expected field name in object literal"}
		}
		if _, err := p.consume(lexer.TokenColon, "expected ':' after field name"); err != nil {
			return nil, err
		}
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		lit.Names = append(lit.Names, name)
		lit.Values = append(lit.Values, v)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.consume(lexer.TokenRBrace, "expected '}' after object fields"); err != nil {
		return nil, err
	}
	return lit, nil
}

// parseInterpolation splits an interpolated-string token's raw contents
// (literal runs plus `${...}` spans, as preserved by the lexer) into an
// Interpolation node of literal-string and parsed-expression parts.
func parseInterpolation(raw string, line int) (ast.Expr, error) {
	var parts []ast.Expr
	var lit strings.Builder
	i := 0
	for i < len(raw) {
		if raw[i] == '$' && i+1 < len(raw) && raw[i+1] == '{' {
			if lit.Len() > 0 {
				parts = append(parts, &ast.Literal{Value: wrapStringLiteral(lit.String())})
				lit.Reset()
			}
			depth := 1
			j := i + 2
			for j < len(raw) && depth > 0 {
				if raw[j] == '{' {
					depth++
				} else if raw[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			inner := raw[i+2 : j]
			exprStmts, err := ParseSource(inner + ";")
			if err != nil {
				return nil, &ParseError{Line: line, Msg: "invalid interpolation expression: " + err.Error()}
			}
			es, ok := exprStmts[0].(*ast.ExpressionStmt)
			if !ok {
				return nil, &ParseError{Line: line, Msg: "interpolation must contain an expression"}
			}
			parts = append(parts, es.Expr)
			i = j + 1
			continue
		}
		lit.WriteByte(raw[i])
		i++
	}
	if lit.Len() > 0 {
		parts = append(parts, &ast.Literal{Value: wrapStringLiteral(lit.String())})
	}
	return &ast.Interpolation{Parts: parts}, nil
}
