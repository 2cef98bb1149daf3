package main

// FuncSig is a function's call signature as seen by the emitter: just
// enough to check arity and pick a return type when compiling a CallExpr.
// Every parameter is Int — there is no parameter type other than Int.
type FuncSig struct {
	Name     string
	Arity    int
	ReturnType Type
}

// FuncTable resolves call names to signatures. It is built once per
// Program in a pre-pass before any function body is emitted, so that
// mutually recursive and forward-referenced calls resolve correctly.
type FuncTable struct {
	sigs map[string]FuncSig
}

// debugFuncName is the single built-in: it takes one Int argument, returns
// Void, and prints its argument followed by a newline (see prelude.go).
const debugFuncName = "debug"

// buildFuncTable seeds the table with the debug builtin, then records
// every user-defined function's signature. A duplicate function name
// overwrites the earlier entry, since signatures live in a plain map
// keyed by name.
func buildFuncTable(prog *Program) *FuncTable {
	ft := &FuncTable{sigs: make(map[string]FuncSig, len(prog.Functions)+1)}
	ft.sigs[debugFuncName] = FuncSig{Name: debugFuncName, Arity: 1, ReturnType: TypeVoid}
	for _, fn := range prog.Functions {
		ft.sigs[fn.Name] = FuncSig{Name: fn.Name, Arity: fn.ArgCount, ReturnType: fn.ReturnType}
	}
	return ft
}

// Lookup finds the signature for a call by name and argument count. It
// returns errFunctionNotFound if no function of that name and arity
// exists — checked before generating a call instruction, since the
// emitter has no other point at which to catch an unknown callee.
func (ft *FuncTable) Lookup(name string, argc int) (FuncSig, error) {
	sig, ok := ft.sigs[name]
	if !ok || sig.Arity != argc {
		return FuncSig{}, errFunctionNotFound
	}
	return sig, nil
}
