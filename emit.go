package main

import (
	"fmt"
	"strings"
)

// EmitConfig carries the two config.go settings that affect code
// generation: the target-triple comment stamped at the top of the module,
// and whether the debug() prelude is emitted at all.
type EmitConfig struct {
	TargetTriple     string
	EmitDebugPrelude bool
}

// Emit lowers a whole Program to textual LLVM IR in a single pass: a
// function-signature pre-pass (buildFuncTable) so forward and mutually
// recursive calls resolve, then one function at a time in source order.
func Emit(prog *Program, cfg EmitConfig) (string, error) {
	if prog == nil {
		return "", errNotAProgram
	}

	ft := buildFuncTable(prog)
	var buf strings.Builder

	if cfg.TargetTriple != "" {
		fmt.Fprintf(&buf, "; target: %s\n", cfg.TargetTriple)
	}
	if cfg.EmitDebugPrelude {
		buf.WriteString(llvmPrelude)
	}

	for _, fn := range prog.Functions {
		em := &emitter{ft: ft, buf: &buf}
		if err := em.emitFunction(fn); err != nil {
			return "", err
		}
	}

	return buf.String(), nil
}

// emitter holds the per-function emission state: a LIFO stack of SSA
// register indices mirroring the AST walk (every expression node pushes
// exactly one index, every consumer pops its operand count), plus the
// running counters for SSA registers and block labels. Variable pointers
// occupy registers 0..len(Locals)-1 (allocated up front); nextIndex starts
// just past them so temporaries never collide with a variable's alloca.
type emitter struct {
	ft        *FuncTable
	buf       *strings.Builder
	nextIndex int
	labelSeq  int
	stack     []int
}

func (em *emitter) push(idx int) { em.stack = append(em.stack, idx) }

func (em *emitter) pop() int {
	n := len(em.stack)
	v := em.stack[n-1]
	em.stack = em.stack[:n-1]
	return v
}

func (em *emitter) alloc() int {
	idx := em.nextIndex
	em.nextIndex++
	return idx
}

func (em *emitter) label() int {
	l := em.labelSeq
	em.labelSeq++
	return l
}

// emitFunction allocates a stack slot for every entry in Locals (params
// first, by construction of the parser), stores incoming arguments,
// zero-initializes the rest, emits the body, and checks the value stack
// is empty before appending a safety-net return. A function whose body
// already returns on every path still gets this trailing ret: it
// terminates whatever block control falls into after the body (e.g. the
// end label of a while loop used only for its side effects).
func (em *emitter) emitFunction(fn *Function) error {
	em.stack = nil
	em.labelSeq = 0
	nvars := len(fn.Locals)
	em.nextIndex = nvars

	retIR := fn.ReturnType.IRName()
	params := make([]string, fn.ArgCount)
	for i := 0; i < fn.ArgCount; i++ {
		params[i] = fmt.Sprintf("i64 %%arg%d", i)
	}
	fmt.Fprintf(em.buf, "define %s @%s(%s) {\n", retIR, fn.Name, strings.Join(params, ", "))
	em.buf.WriteString("entry:\n")

	for i := 0; i < nvars; i++ {
		fmt.Fprintf(em.buf, "  %%%d = alloca i64\n", i)
	}
	for i := 0; i < fn.ArgCount; i++ {
		fmt.Fprintf(em.buf, "  store i64 %%arg%d, i64* %%%d\n", i, i)
	}
	for i := fn.ArgCount; i < nvars; i++ {
		fmt.Fprintf(em.buf, "  store i64 0, i64* %%%d\n", i)
	}

	if err := em.emitStatement(fn.Body); err != nil {
		return err
	}
	if len(em.stack) != 0 {
		return errStackNotEmpty
	}

	if fn.ReturnType == TypeVoid {
		em.buf.WriteString("  ret void\n")
	} else {
		em.buf.WriteString("  ret i64 0\n")
	}
	em.buf.WriteString("}\n\n")
	return nil
}

func (em *emitter) emitStatement(s Statement) error {
	switch st := s.(type) {
	case *Block:
		for _, inner := range st.Statements {
			if err := em.emitStatement(inner); err != nil {
				return err
			}
		}
		return nil

	case *ExprStatement:
		if err := em.emitExpr(st.Expr); err != nil {
			return err
		}
		em.pop()
		return nil

	case *ReturnStatement:
		if err := em.emitExpr(st.Expr); err != nil {
			return err
		}
		v := em.pop()
		fmt.Fprintf(em.buf, "  ret i64 %%%d\n", v)
		return nil

	case *IfStatement:
		return em.emitIf(st)

	case *ForStatement:
		return em.emitFor(st)

	case *WhileStatement:
		return em.emitWhile(st)

	default:
		return errUnreachable
	}
}

func (em *emitter) branchIfNonzero(cond int, trueLabel, falseLabel string) {
	cmp := em.alloc()
	fmt.Fprintf(em.buf, "  %%%d = icmp ne i64 %%%d, 0\n", cmp, cond)
	fmt.Fprintf(em.buf, "  br i1 %%%d, label %%%s, label %%%s\n", cmp, trueLabel, falseLabel)
}

func (em *emitter) emitIf(st *IfStatement) error {
	if err := em.emitExpr(st.Condition); err != nil {
		return err
	}
	cond := em.pop()

	l := em.label()
	thenLabel := fmt.Sprintf("then%d", l)
	endLabel := fmt.Sprintf("end%d", l)

	if st.Else != nil {
		elseLabel := fmt.Sprintf("else%d", l)
		em.branchIfNonzero(cond, thenLabel, elseLabel)

		fmt.Fprintf(em.buf, "%s:\n", thenLabel)
		if err := em.emitStatement(st.Then); err != nil {
			return err
		}
		fmt.Fprintf(em.buf, "  br label %%%s\n", endLabel)

		fmt.Fprintf(em.buf, "%s:\n", elseLabel)
		if err := em.emitStatement(st.Else); err != nil {
			return err
		}
		fmt.Fprintf(em.buf, "  br label %%%s\n", endLabel)
	} else {
		em.branchIfNonzero(cond, thenLabel, endLabel)

		fmt.Fprintf(em.buf, "%s:\n", thenLabel)
		if err := em.emitStatement(st.Then); err != nil {
			return err
		}
		fmt.Fprintf(em.buf, "  br label %%%s\n", endLabel)
	}

	fmt.Fprintf(em.buf, "%s:\n", endLabel)
	return nil
}

func (em *emitter) emitWhile(st *WhileStatement) error {
	l := em.label()
	beginLabel := fmt.Sprintf("begin%d", l)
	bodyLabel := fmt.Sprintf("body%d", l)
	endLabel := fmt.Sprintf("end%d", l)

	fmt.Fprintf(em.buf, "  br label %%%s\n", beginLabel)
	fmt.Fprintf(em.buf, "%s:\n", beginLabel)
	if err := em.emitExpr(st.Condition); err != nil {
		return err
	}
	cond := em.pop()
	em.branchIfNonzero(cond, bodyLabel, endLabel)

	fmt.Fprintf(em.buf, "%s:\n", bodyLabel)
	if err := em.emitStatement(st.Body); err != nil {
		return err
	}
	fmt.Fprintf(em.buf, "  br label %%%s\n", beginLabel)

	fmt.Fprintf(em.buf, "%s:\n", endLabel)
	return nil
}

// emitFor threads init/condition/update exactly like a C for-loop: init
// once before the loop, condition checked at begin, update run at the end
// of each body iteration before branching back. Any of the three may be
// absent; a missing condition means "always true".
func (em *emitter) emitFor(st *ForStatement) error {
	if st.Init != nil {
		if err := em.emitExpr(st.Init); err != nil {
			return err
		}
		em.pop()
	}

	l := em.label()
	beginLabel := fmt.Sprintf("begin%d", l)
	bodyLabel := fmt.Sprintf("body%d", l)
	endLabel := fmt.Sprintf("end%d", l)

	fmt.Fprintf(em.buf, "  br label %%%s\n", beginLabel)
	fmt.Fprintf(em.buf, "%s:\n", beginLabel)
	if st.Condition != nil {
		if err := em.emitExpr(st.Condition); err != nil {
			return err
		}
		cond := em.pop()
		em.branchIfNonzero(cond, bodyLabel, endLabel)
	} else {
		fmt.Fprintf(em.buf, "  br label %%%s\n", bodyLabel)
	}

	fmt.Fprintf(em.buf, "%s:\n", bodyLabel)
	if err := em.emitStatement(st.Body); err != nil {
		return err
	}
	if st.Update != nil {
		if err := em.emitExpr(st.Update); err != nil {
			return err
		}
		em.pop()
	}
	fmt.Fprintf(em.buf, "  br label %%%s\n", beginLabel)

	fmt.Fprintf(em.buf, "%s:\n", endLabel)
	return nil
}

func (em *emitter) emitExpr(e Expression) error {
	switch ex := e.(type) {
	case *NumberExpr:
		// Literals round-trip through a trivial "add x, 0" rather than a
		// bare constant reference, so every expression node — literal or
		// not — pushes a freshly allocated SSA register onto the stack.
		idx := em.alloc()
		fmt.Fprintf(em.buf, "  %%%d = add i64 %d, 0\n", idx, ex.Value)
		em.push(idx)
		return nil

	case *VariableExpr:
		idx := em.alloc()
		fmt.Fprintf(em.buf, "  %%%d = load i64, i64* %%%d\n", idx, ex.Offset)
		em.push(idx)
		return nil

	case *CallExpr:
		return em.emitCall(ex)

	case *BinaryExpr:
		return em.emitBinary(ex)

	default:
		return errUnreachable
	}
}

func (em *emitter) emitCall(ex *CallExpr) error {
	sig, err := em.ft.Lookup(ex.Name, len(ex.Args))
	if err != nil {
		return err
	}

	argRegs := make([]int, len(ex.Args))
	for i, a := range ex.Args {
		if err := em.emitExpr(a); err != nil {
			return err
		}
		argRegs[i] = em.pop()
	}
	argStrs := make([]string, len(argRegs))
	for i, r := range argRegs {
		argStrs[i] = fmt.Sprintf("i64 %%%d", r)
	}
	argList := strings.Join(argStrs, ", ")

	if sig.ReturnType == TypeVoid {
		fmt.Fprintf(em.buf, "  call void @%s(%s)\n", ex.Name, argList)
		// A void call still must push something: the expression-statement
		// discard discipline pops exactly once per expression regardless
		// of type, so give it a throwaway slot that is never read back.
		dummy := em.alloc()
		fmt.Fprintf(em.buf, "  %%%d = alloca i64\n", dummy)
		fmt.Fprintf(em.buf, "  store i64 0, i64* %%%d\n", dummy)
		em.push(dummy)
		return nil
	}

	idx := em.alloc()
	fmt.Fprintf(em.buf, "  %%%d = call i64 @%s(%s)\n", idx, ex.Name, argList)
	em.push(idx)
	return nil
}

func (em *emitter) emitBinary(ex *BinaryExpr) error {
	switch ex.Op {
	case OpAssign:
		return em.emitAssign(ex)
	case OpChangeMin:
		return em.emitChange(ex, "sgt")
	case OpChangeMax:
		return em.emitChange(ex, "slt")
	case OpExchange:
		return em.emitExchange(ex)
	default:
		return em.emitArith(ex)
	}
}

var arithInstr = map[BinaryOp]string{
	OpAdd:    "add",
	OpSub:    "sub",
	OpMul:    "mul",
	OpDiv:    "sdiv",
	OpRem:    "srem",
	OpAnd:    "and",
	OpXor:    "xor",
	OpOr:     "or",
	OpLShift: "shl",
	OpRShift: "ashr",
}

// emitArith handles every BinaryOp that lowers straight to an LLVM
// instruction. Operands are emitted RHS first, then LHS — load-bearing
// for the non-commutative operators (Sub, Div, Rem, shifts, Less), since
// emission order IS evaluation order here.
func (em *emitter) emitArith(ex *BinaryExpr) error {
	if err := em.emitExpr(ex.RHS); err != nil {
		return err
	}
	if err := em.emitExpr(ex.LHS); err != nil {
		return err
	}
	lhs := em.pop()
	rhs := em.pop()

	switch ex.Op {
	case OpEqual:
		em.emitCompare(lhs, rhs, "eq")
		return nil
	case OpLess:
		em.emitCompare(lhs, rhs, "slt")
		return nil
	}

	instr, ok := arithInstr[ex.Op]
	if !ok {
		return errUnreachable
	}
	idx := em.alloc()
	fmt.Fprintf(em.buf, "  %%%d = %s i64 %%%d, %%%d\n", idx, instr, lhs, rhs)
	em.push(idx)
	return nil
}

// emitCompare emits an icmp followed by the zext to i64 that every
// comparison needs, since the surface language has no boolean type — a
// comparison result is an ordinary 0/1 integer like anything else.
func (em *emitter) emitCompare(lhs, rhs int, pred string) {
	cmp := em.alloc()
	fmt.Fprintf(em.buf, "  %%%d = icmp %s i64 %%%d, %%%d\n", cmp, pred, lhs, rhs)
	idx := em.alloc()
	fmt.Fprintf(em.buf, "  %%%d = zext i1 %%%d to i64\n", idx, cmp)
	em.push(idx)
}

func (em *emitter) emitAssign(ex *BinaryExpr) error {
	v, ok := ex.LHS.(*VariableExpr)
	if !ok {
		return errNotAVariable
	}
	if err := em.emitExpr(ex.RHS); err != nil {
		return err
	}
	rhs := em.pop()
	fmt.Fprintf(em.buf, "  store i64 %%%d, i64* %%%d\n", rhs, v.Offset)

	idx := em.alloc()
	fmt.Fprintf(em.buf, "  %%%d = load i64, i64* %%%d\n", idx, v.Offset)
	em.push(idx)
	return nil
}

// emitChange implements ChangeMin ("<=", store rhs when lhs > rhs) and
// ChangeMax (">=", store rhs when lhs < rhs) with the same shape: compare,
// conditionally store, reload. cmpPred is the icmp predicate that decides
// whether the store happens.
func (em *emitter) emitChange(ex *BinaryExpr, cmpPred string) error {
	v, ok := ex.LHS.(*VariableExpr)
	if !ok {
		return errNotAVariable
	}
	if err := em.emitExpr(ex.RHS); err != nil {
		return err
	}
	rhs := em.pop()
	if err := em.emitExpr(ex.LHS); err != nil {
		return err
	}
	lhs := em.pop()

	l := em.label()
	thenLabel := fmt.Sprintf("change%d", l)
	endLabel := fmt.Sprintf("endchange%d", l)

	cmp := em.alloc()
	fmt.Fprintf(em.buf, "  %%%d = icmp %s i64 %%%d, %%%d\n", cmp, cmpPred, lhs, rhs)
	fmt.Fprintf(em.buf, "  br i1 %%%d, label %%%s, label %%%s\n", cmp, thenLabel, endLabel)

	fmt.Fprintf(em.buf, "%s:\n", thenLabel)
	fmt.Fprintf(em.buf, "  store i64 %%%d, i64* %%%d\n", rhs, v.Offset)
	fmt.Fprintf(em.buf, "  br label %%%s\n", endLabel)

	fmt.Fprintf(em.buf, "%s:\n", endLabel)
	idx := em.alloc()
	fmt.Fprintf(em.buf, "  %%%d = load i64, i64* %%%d\n", idx, v.Offset)
	em.push(idx)
	return nil
}

// emitExchange swaps two variables' stored values in place; both sides
// must be plain variables since there is nowhere else to store back to.
func (em *emitter) emitExchange(ex *BinaryExpr) error {
	lv, ok := ex.LHS.(*VariableExpr)
	if !ok {
		return errNotAVariable
	}
	rv, ok := ex.RHS.(*VariableExpr)
	if !ok {
		return errNotAVariable
	}

	la := em.alloc()
	fmt.Fprintf(em.buf, "  %%%d = load i64, i64* %%%d\n", la, lv.Offset)
	ra := em.alloc()
	fmt.Fprintf(em.buf, "  %%%d = load i64, i64* %%%d\n", ra, rv.Offset)

	fmt.Fprintf(em.buf, "  store i64 %%%d, i64* %%%d\n", ra, lv.Offset)
	fmt.Fprintf(em.buf, "  store i64 %%%d, i64* %%%d\n", la, rv.Offset)

	idx := em.alloc()
	fmt.Fprintf(em.buf, "  %%%d = load i64, i64* %%%d\n", idx, lv.Offset)
	em.push(idx)
	return nil
}
