// Completion: 100% - Recursive descent parser complete
package main

// Grammar:
//
//	Exp    := Term ('+' Term)*
//	Term   := Factor ('*' Factor)*
//	Factor := '(' Exp ')' | Name | Int
//
// Every node is constructed through NodePool.Build. Error handling is
// non-recovering: the first unexpected token stops all parsing and the
// error surfaces once the top level returns.

// Parser turns a token stream into a canonical AST inside a NodePool
type Parser struct {
	src    string
	lex    *Lexer
	pool   *NodePool
	failed bool
	errTok Token
	err    error // capacity error from Build
}

// NewParser creates a parser for src that builds into pool
func NewParser(src string, pool *NodePool) *Parser {
	return &Parser{
		src:  src,
		lex:  NewLexer(src),
		pool: pool,
	}
}

// Parse parses the whole source. Any unconsumed token is a syntax error.
func (p *Parser) Parse() (NodeRef, error) {
	root := p.parseExp()
	if p.err != nil {
		return NoNode, p.err
	}
	if !p.failed && p.lex.Current().Type != TOKEN_EOF {
		p.fail()
	}
	if p.failed {
		tok := p.errTok
		return NoNode, SyntaxError(p.src, tok.Pos+1, tok.Text, p.src[tok.Pos:])
	}
	return root, nil
}

// fail puts the parser in its terminal error state at the lookahead token
func (p *Parser) fail() {
	if !p.failed {
		p.failed = true
		p.errTok = p.lex.Current()
	}
}

// at reports whether the lookahead is the single character c
func (p *Parser) at(c byte) bool {
	tok := p.lex.Current()
	return !p.failed && tok.Type == TOKEN_CHAR && tok.Char == c
}

// match consumes the character c or fails
func (p *Parser) match(c byte) {
	if !p.at(c) {
		p.fail()
		return
	}
	p.lex.Advance()
}

// build routes a construction through the rewrite engine, unless parsing already failed
func (p *Parser) build(kind NodeKind, l, r NodeRef, value int64) NodeRef {
	if p.failed {
		return NoNode
	}
	ref, err := p.pool.Build(kind, l, r, value)
	if err != nil {
		p.err = err
		p.failed = true
		return NoNode
	}
	return ref
}

func (p *Parser) parseFactor() NodeRef {
	if p.failed {
		return NoNode
	}
	tok := p.lex.Current()
	switch {
	case tok.Type == TOKEN_CHAR && tok.Char == '(':
		p.match('(')
		v := p.parseExp()
		p.match(')')
		return v
	case tok.Type == TOKEN_NAME:
		v := p.build(KindName, NoNode, NoNode, int64(tok.Char))
		p.lex.Advance()
		return v
	case tok.Type == TOKEN_INT:
		v := p.build(KindInt, NoNode, NoNode, tok.Value)
		p.lex.Advance()
		return v
	default:
		p.fail()
		return NoNode
	}
}

func (p *Parser) parseTerm() NodeRef {
	v := p.parseFactor()
	for p.at('*') {
		p.match('*')
		r := p.parseFactor()
		v = p.build(KindMul, v, r, 0)
	}
	return v
}

func (p *Parser) parseExp() NodeRef {
	v := p.parseTerm()
	for p.at('+') {
		p.match('+')
		r := p.parseTerm()
		v = p.build(KindAdd, v, r, 0)
	}
	return v
}
