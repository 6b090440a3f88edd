// Package parser implements a recursive-descent parser for the textual IR
// grammar of §6, producing an internal/ast.Program.
package parser

import (
	"fmt"

	"github.com/Verdex/dne/internal/ast"
	"github.com/Verdex/dne/internal/diag"
	"github.com/Verdex/dne/internal/lexer"
)

// Parse tokenizes and parses src, returning the parsed top-level items. On
// any lexical or grammatical error it returns a *diag.Error.
func Parse(file, src string) (*ast.Program, error) {
	toks, err := lexer.Lex(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{file: file, src: src, toks: toks}
	return p.parseProgram()
}

type parser struct {
	file string
	src  string
	toks []lexer.Token
	pos  int
}

func (p *parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.atEOF() {
		switch p.cur().Kind {
		case lexer.KwGlobal:
			g, err := p.parseGlobal()
			if err != nil {
				return nil, err
			}
			prog.Globals = append(prog.Globals, *g)
		case lexer.KwProc:
			pr, err := p.parseProc()
			if err != nil {
				return nil, err
			}
			prog.Procs = append(prog.Procs, *pr)
		default:
			return nil, p.errorHere("expected 'global' or 'proc'")
		}
	}
	return prog, nil
}

func (p *parser) parseGlobal() (*ast.Global, error) {
	p.advance() // 'global'
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Colon); err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Equal); err != nil {
		return nil, err
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.Global{Name: name, Type: ty, Lit: lit}, nil
}

func (p *parser) parseProc() (*ast.Proc, error) {
	p.advance() // 'proc'
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	var params []ast.Param
	for p.cur().Kind != lexer.RParen {
		pname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Colon); err != nil {
			return nil, err
		}
		pty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: pname, Type: pty})
		if p.cur().Kind == lexer.Comma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Arrow); err != nil {
		return nil, err
	}
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	var body []ast.Stmt
	for p.cur().Kind != lexer.RBrace {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, *s)
	}
	if _, err := p.expect(lexer.RBrace); err != nil {
		return nil, err
	}
	return &ast.Proc{Name: name, Params: params, ReturnType: ret, Body: body}, nil
}

func (p *parser) parseStmt() (*ast.Stmt, error) {
	switch p.cur().Kind {
	case lexer.KwSet:
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Colon); err != nil {
			return nil, err
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Equal); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.Stmt{Kind: ast.StmtSet, Var: name, Type: ty, Expr: *e}, nil

	case lexer.KwJump:
		p.advance()
		label, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.Stmt{Kind: ast.StmtJump, Label: label}, nil

	case lexer.KwLabel:
		p.advance()
		label, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.Stmt{Kind: ast.StmtLabel, Label: label}, nil

	case lexer.KwBranchTrue:
		p.advance()
		label, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.Stmt{Kind: ast.StmtBranchTrue, Label: label, Var: v}, nil

	case lexer.KwReturn:
		p.advance()
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.Stmt{Kind: ast.StmtReturn, Var: v}, nil

	case lexer.KwYield:
		p.advance()
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.Stmt{Kind: ast.StmtYield, Var: v}, nil

	case lexer.KwBreak:
		p.advance()
		if _, err := p.expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.Stmt{Kind: ast.StmtBreak}, nil

	case lexer.KwSlotInsert:
		p.advance()
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		in, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		idx, err := p.expectInt()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.Stmt{Kind: ast.StmtSlotInsert, Var: v, Input: in, Index: int(idx)}, nil

	case lexer.KwSlotRemove:
		p.advance()
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		idx, err := p.expectInt()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.Stmt{Kind: ast.StmtSlotRemove, Var: v, Index: int(idx)}, nil

	case lexer.KwDelete:
		p.advance()
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.Stmt{Kind: ast.StmtDelete, Var: v}, nil

	default:
		return nil, p.errorHere("expected a statement")
	}
}

func (p *parser) parseExpr() (*ast.Expr, error) {
	switch p.cur().Kind {
	case lexer.Int, lexer.Float, lexer.KwTrue, lexer.KwFalse, lexer.SymbolLit, lexer.String:
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprLit, Lit: lit}, nil

	case lexer.KwCall:
		return p.parseCallLike(ast.ExprCall)
	case lexer.KwDynCall:
		return p.parseCallLike(ast.ExprDynCall)
	case lexer.KwCoroutine:
		return p.parseCallLike(ast.ExprCoroutine)
	case lexer.KwDynCoroutine:
		return p.parseCallLike(ast.ExprDynCoroutine)
	case lexer.KwClosure:
		return p.parseCallLike(ast.ExprClosure)
	case lexer.KwCons:
		return p.parseCallLike(ast.ExprCons)

	case lexer.KwResume:
		p.advance()
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprResume, Var: v}, nil

	case lexer.KwLength:
		p.advance()
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprLength, Var: v}, nil

	case lexer.KwType:
		p.advance()
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprType, Var: v}, nil

	case lexer.KwSlot:
		p.advance()
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		idx, err := p.expectInt()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprSlot, Var: v, Index: int(idx)}, nil

	case lexer.KwIsNil:
		p.advance()
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprIsNil, Var: v}, nil

	case lexer.KwToString:
		p.advance()
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprToString, Var: v}, nil

	case lexer.KwConcat:
		p.advance()
		a, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		b, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprConcat, Var: a, ConcatB: b}, nil

	case lexer.Ident:
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprVar, Var: v}, nil

	default:
		return nil, p.errorHere("expected an expression")
	}
}

// parseCallLike parses `KEYWORD NAME ( ARGS? )` forms: call, dyn_call,
// coroutine, dyn_coroutine, closure, cons. The callee/closure-local name and
// argument locals share the ast.Expr.Name/Args fields across all of these.
func (p *parser) parseCallLike(kind ast.ExprKind) (*ast.Expr, error) {
	p.advance() // keyword
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	var args []string
	for p.cur().Kind != lexer.RParen {
		a, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.cur().Kind == lexer.Comma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: kind, Name: name, Args: args}, nil
}

func (p *parser) parseType() (ast.Type, error) {
	name, err := p.expectIdent()
	if err != nil {
		return 0, err
	}
	switch name {
	case "Int":
		return ast.Int, nil
	case "Float":
		return ast.Float, nil
	case "String":
		return ast.String, nil
	case "Bool":
		return ast.Bool, nil
	case "Symbol":
		return ast.Symbol, nil
	case "Ref":
		return ast.Ref, nil
	case "Closure":
		return ast.Closure, nil
	case "Coroutine":
		return ast.Coroutine, nil
	default:
		return 0, p.errorAt(p.prevRange(), fmt.Sprintf("unknown type %q", name))
	}
}

func (p *parser) parseLiteral() (ast.Literal, error) {
	t := p.cur()
	switch t.Kind {
	case lexer.Int:
		p.advance()
		return ast.Literal{Kind: ast.LitInt, Int: t.IntVal}, nil
	case lexer.Float:
		p.advance()
		return ast.Literal{Kind: ast.LitFloat, Float: t.FloatVal}, nil
	case lexer.KwTrue:
		p.advance()
		return ast.Literal{Kind: ast.LitBool, Bool: true}, nil
	case lexer.KwFalse:
		p.advance()
		return ast.Literal{Kind: ast.LitBool, Bool: false}, nil
	case lexer.SymbolLit:
		p.advance()
		return ast.Literal{Kind: ast.LitSymbol, Symbol: t.Text}, nil
	case lexer.String:
		p.advance()
		return ast.Literal{Kind: ast.LitString, String: t.Text}, nil
	default:
		return ast.Literal{}, p.errorHere("expected a literal")
	}
}

func (p *parser) expectInt() (int64, error) {
	t := p.cur()
	if t.Kind != lexer.Int {
		return 0, p.errorHere("expected an integer")
	}
	p.advance()
	return t.IntVal, nil
}

func (p *parser) expectIdent() (string, error) {
	t := p.cur()
	if t.Kind != lexer.Ident {
		return "", p.errorHere("expected a name")
	}
	p.advance()
	return t.Text, nil
}

func (p *parser) expect(k lexer.Kind) (lexer.Token, error) {
	t := p.cur()
	if t.Kind != k {
		return t, p.errorHere(fmt.Sprintf("unexpected token"))
	}
	p.advance()
	return t, nil
}

func (p *parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		end := len(p.src)
		return lexer.Token{Kind: lexer.EOF, Range: diag.Range{Start: end, End: end}}
	}
	return p.toks[p.pos]
}

func (p *parser) prevRange() diag.Range {
	if p.pos == 0 {
		return diag.Range{}
	}
	return p.toks[p.pos-1].Range
}

func (p *parser) advance() { p.pos++ }

func (p *parser) atEOF() bool { return p.pos >= len(p.toks) }

func (p *parser) errorHere(message string) error {
	return p.errorAt(p.cur().Range, message)
}

func (p *parser) errorAt(r diag.Range, message string) error {
	return &diag.Error{File: p.file, Source: p.src, Range: r, Message: message}
}
