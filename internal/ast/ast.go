// Package ast defines the parsed-program tree produced by internal/parser
// and consumed by the lowerer (§4.1 "Input").
package ast

// Type is a static IR type name as spelled in the grammar's TYPE production
// (§6). It is a thin, lowering-independent mirror of the VM's own Type enum
// so that internal/parser and internal/lexer need not import the main
// package.
type Type uint8

const (
	Int Type = iota
	Float
	String
	Bool
	Symbol
	Ref
	Closure
	Coroutine
)

func (t Type) String() string {
	switch t {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case String:
		return "String"
	case Bool:
		return "Bool"
	case Symbol:
		return "Symbol"
	case Ref:
		return "Ref"
	case Closure:
		return "Closure"
	case Coroutine:
		return "Coroutine"
	default:
		return "?"
	}
}

// Program is the full parsed input: globals and procedures in the order
// they appeared across the concatenated input files (§6 "CLI").
type Program struct {
	Globals []Global
	Procs   []Proc
}

// Global is a top-level `global NAME : TYPE = LIT ;` item.
type Global struct {
	Name string
	Type Type
	Lit  Literal
}

// Param is one `NAME : TYPE` entry of a procedure's parameter list.
type Param struct {
	Name string
	Type Type
}

// Proc is a parsed `proc NAME ( PARAMS? ) -> TYPE { STMT* }` item.
type Proc struct {
	Name       string
	Params     []Param
	ReturnType Type
	Body       []Stmt
}

// StmtKind discriminates the closed set of statement forms (§4.1 "Input").
type StmtKind uint8

const (
	StmtSet StmtKind = iota
	StmtJump
	StmtBranchTrue
	StmtLabel
	StmtReturn
	StmtYield
	StmtBreak
	StmtSlotInsert
	StmtSlotRemove
	StmtDelete
)

// Stmt is one statement. Only the fields relevant to Kind are populated.
type Stmt struct {
	Kind StmtKind

	Var   string // Set/Return/Yield/SlotInsert/SlotRemove/Delete's var
	Type  Type   // Set's declared type
	Expr  Expr   // Set's expression

	Label string // Jump/BranchTrue/Label's label name

	Input string // SlotInsert's source var
	Index int    // SlotInsert/SlotRemove's slot index
}

// ExprKind discriminates the closed set of expression forms (§4.1 "Input").
type ExprKind uint8

const (
	ExprLit ExprKind = iota
	ExprVar
	ExprCall
	ExprDynCall
	ExprCoroutine
	ExprDynCoroutine
	ExprClosure
	ExprCons
	ExprResume
	ExprLength
	ExprType
	ExprSlot
	ExprIsNil
	ExprToString
	ExprConcat
)

// Expr is one expression. Only the fields relevant to Kind are populated.
type Expr struct {
	Kind ExprKind

	Lit Literal // ExprLit
	Var string  // ExprVar/ExprResume/ExprLength/ExprType/ExprSlot/ExprIsNil/ExprToString

	// Name is the callee/procedure name for Call/Coroutine/Closure/Cons; it
	// doubles as the closure-holding local variable name for
	// DynCall/DynCoroutine (a local, not a static proc name, for those two).
	Name string
	Args []string

	Index int // ExprSlot's slot index

	ConcatB string // ExprConcat's second operand var
}

// LiteralKind discriminates the LIT production (§6).
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitSymbol
	LitString
)

// Literal is one literal value as parsed from source text.
type Literal struct {
	Kind LiteralKind

	Int    int64
	Float  float64
	Bool   bool
	Symbol string // symbol literal's name, sans the leading ~
	String string // string literal's content, escapes already resolved
}
