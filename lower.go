package dne

import (
	"github.com/Verdex/dne/internal/ast"
)

// CompiledProgram is the lowerer's output: a procedure table (primitives
// first, then the synthesized $init, then user procedures in source
// order), a name resolver, and the global table's static layout (§4.1
// "Output").
type CompiledProgram struct {
	Procs       []Proc
	ProcMap     map[string]int
	InitProcID  int
	GlobalCount int
	Symbols     symbols
}

// FormatValue renders v using cp's symbol table, for callers outside this
// package that only hold a CompiledProgram and a result Value (the symbols
// type itself is unexported, since it's pure VM-internal interning state).
func (cp *CompiledProgram) FormatValue(v Value) string {
	return v.ToString(&cp.Symbols)
}

// lop is an intermediate lowered op: either a resolved Op, or one of the
// control-flow placeholders that label/jump resolution later resolves into
// an absolute instruction index (§4.1.b/d).
type lop struct {
	kind        lopKind
	op          Op
	label       string
	branchLocal int
}

type lopKind uint8

const (
	lopOp lopKind = iota
	lopLabel
	lopBranch
	lopJump
)

// Lowerer holds the cross-procedure state needed while lowering a program:
// the procedure table under construction, its name index, the global
// table's layout, and the symbol interner shared by Symbol literals.
type Lowerer struct {
	procs       []Proc
	procMap     map[string]int
	globalIndex map[string]int
	globalTypes map[string]Type
	sym         symbols
}

// procLowering holds the per-procedure state accumulated while lowering one
// body: its local slot layout, the hidden temp slots used to shadow global
// reads, and the flat lop stream built so far (§4.1.a/b).
type procLowering struct {
	name        string
	localSlots  map[string]int
	localTypes  map[string]Type
	nextSlot    int
	globalTemps map[string]int
	lops        []lop
	returnType  Type
}

// Lower implements the full §4.1 algorithm: primitive prepend, per-procedure
// local layout/statement lowering/type checking, label and jump resolution,
// and stack_size computation.
func Lower(prog *ast.Program) (*CompiledProgram, error) {
	lw := &Lowerer{
		procs:       buildPrimitives(),
		procMap:     map[string]int{},
		globalIndex: map[string]int{},
		globalTypes: map[string]Type{},
	}
	for i, p := range lw.procs {
		lw.procMap[p.Name] = i
	}

	for _, g := range prog.Globals {
		idx := len(lw.globalIndex)
		lw.globalIndex[g.Name] = idx
		lw.globalTypes[g.Name] = convType(g.Type)
	}

	initProcID := len(lw.procs)
	lw.procs = append(lw.procs, Proc{Name: "$init"}) // placeholder, filled below

	seen := map[string]bool{}
	for _, p := range prog.Procs {
		if _, exists := lw.procMap[p.Name]; exists || seen[p.Name] {
			return nil, &CompileError{Kind: DupFunName, Name: p.Name}
		}
		seen[p.Name] = true

		paramTypes := make([]Type, len(p.Params))
		paramNames := map[string]bool{}
		for i, param := range p.Params {
			if paramNames[param.Name] {
				return nil, &CompileError{Kind: ReuseParamName, Proc: p.Name, Name: param.Name}
			}
			paramNames[param.Name] = true
			paramTypes[i] = convType(param.Type)
		}

		idx := len(lw.procs)
		lw.procMap[p.Name] = idx
		lw.procs = append(lw.procs, Proc{
			Name:       p.Name,
			ParamTypes: paramTypes,
			ReturnType: convType(p.ReturnType),
		})
	}

	for _, p := range prog.Procs {
		idx := lw.procMap[p.Name]
		compiled, err := lw.lowerProc(p.Name, p.Params, p.Body, lw.procs[idx].ReturnType)
		if err != nil {
			return nil, err
		}
		lw.procs[idx] = compiled
	}

	initProc, err := lw.lowerInit(prog.Globals)
	if err != nil {
		return nil, err
	}
	lw.procs[initProcID] = initProc

	return &CompiledProgram{
		Procs:       lw.procs,
		ProcMap:     lw.procMap,
		InitProcID:  initProcID,
		GlobalCount: len(lw.globalIndex),
		Symbols:     lw.sym,
	}, nil
}

func convType(t ast.Type) Type {
	switch t {
	case ast.Int:
		return TypeInt
	case ast.Float:
		return TypeFloat
	case ast.String:
		return TypeString
	case ast.Bool:
		return TypeBool
	case ast.Symbol:
		return TypeSymbol
	case ast.Ref:
		return TypeRef
	case ast.Closure:
		return TypeClosure
	case ast.Coroutine:
		return TypeCoroutine
	default:
		panic("convType: unknown ast.Type")
	}
}

// lowerProc implements §4.1 steps 2.a-2.e for one user procedure.
func (lw *Lowerer) lowerProc(name string, params []ast.Param, body []ast.Stmt, retType Type) (Proc, error) {
	pl := &procLowering{
		name:        name,
		localSlots:  map[string]int{},
		localTypes:  map[string]Type{},
		globalTemps: map[string]int{},
		returnType:  retType,
	}

	paramTypes := make([]Type, len(params))
	for i, p := range params {
		ty := convType(p.Type)
		pl.localSlots[p.Name] = i
		pl.localTypes[p.Name] = ty
		paramTypes[i] = ty
	}
	pl.nextSlot = len(params)

	for _, st := range body {
		if st.Kind != ast.StmtSet {
			continue
		}
		ty := convType(st.Type)
		if existing, ok := pl.localTypes[st.Var]; ok {
			if existing != ty {
				return Proc{}, typeMismatch(name, existing, ty)
			}
			continue
		}
		pl.localSlots[st.Var] = pl.nextSlot
		pl.localTypes[st.Var] = ty
		pl.nextSlot++
	}

	for _, st := range body {
		if err := lw.lowerStmt(pl, st); err != nil {
			return Proc{}, err
		}
	}

	instrs, err := resolveLOps(pl.lops, name)
	if err != nil {
		return Proc{}, err
	}

	return Proc{
		Name:       name,
		Instrs:     instrs,
		StackSize:  pl.nextSlot,
		ParamTypes: paramTypes,
		ReturnType: retType,
	}, nil
}

// lowerInit synthesizes the hidden $init procedure (§9, DESIGN.md "Open
// Question decision"): one SetLocalData per global, in declaration order,
// with no control flow. The VM runs it once, outside the normal call
// protocol, and adopts its final locals array as the global table.
func (lw *Lowerer) lowerInit(globals []ast.Global) (Proc, error) {
	instrs := make([]Op, 0, len(globals))
	for i, g := range globals {
		lit, err := lowerLiteral(lw, "$init", g.Lit, convType(g.Type))
		if err != nil {
			return Proc{}, err
		}
		instrs = append(instrs, Op{Code: OpSetLocalData, Dst: i, Data: lit})
	}
	return Proc{
		Name:      "$init",
		Instrs:    instrs,
		StackSize: len(globals),
	}, nil
}

// resolveLOps converts a flat lop stream into final instructions: each
// Label becomes a Nop at its position, and each Branch/Jump's target label
// is resolved to the instruction index recorded for it (§4.1.d).
func resolveLOps(lops []lop, procName string) ([]Op, error) {
	instrs := make([]Op, 0, len(lops))
	labelMap := map[string]int{}

	type fixup struct {
		idx   int
		label string
	}
	var fixups []fixup

	for _, l := range lops {
		switch l.kind {
		case lopOp:
			instrs = append(instrs, l.op)
		case lopLabel:
			labelMap[l.label] = len(instrs)
			instrs = append(instrs, Op{Code: OpNop})
		case lopJump:
			fixups = append(fixups, fixup{idx: len(instrs), label: l.label})
			instrs = append(instrs, Op{Code: OpJump, Index: -1})
		case lopBranch:
			fixups = append(fixups, fixup{idx: len(instrs), label: l.label})
			instrs = append(instrs, Op{Code: OpBranchTrue, Src: l.branchLocal, Index: -1})
		}
	}

	for _, fu := range fixups {
		target, ok := labelMap[fu.label]
		if !ok {
			return nil, missingLabel(procName, fu.label)
		}
		instrs[fu.idx].Index = target
	}

	return instrs, nil
}

// resolveVar resolves a read of name to a local slot: directly if it's a
// local, or via a hidden per-procedure temp slot refreshed by an emitted
// GetGlobal if it's a global (DESIGN.md "Open Question decision").
func (lw *Lowerer) resolveVar(pl *procLowering, name string) (int, Type, error) {
	if slot, ok := pl.localSlots[name]; ok {
		return slot, pl.localTypes[name], nil
	}
	if idx, ok := lw.globalIndex[name]; ok {
		ty := lw.globalTypes[name]
		slot, ok2 := pl.globalTemps[name]
		if !ok2 {
			slot = pl.nextSlot
			pl.nextSlot++
			pl.globalTemps[name] = slot
		}
		pl.lops = append(pl.lops, lop{kind: lopOp, op: Op{Code: OpGetGlobal, Dst: slot, Index: idx}})
		return slot, ty, nil
	}
	return 0, 0, missingLocal(pl.name, name)
}
