package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// parseFirstExpr parses "fn f[a, b] { <exprSrc> ; }" and returns the
// parsed expression along with the function's locals table, so desugaring
// tests can inspect variable offsets too.
func parseFirstExpr(t *testing.T, exprSrc string) (Expression, *Function) {
	t.Helper()
	src := "fn f[a, b] { " + exprSrc + " ; }"
	toks, err := Tokenize(src)
	require.NoError(t, err)
	prog, err := Parse(toks)
	require.NoError(t, err)
	require.Len(t, prog.Functions, 1)
	fn := prog.Functions[0]
	block := fn.Body.(*Block)
	require.Len(t, block.Statements, 1)
	stmt := block.Statements[0].(*ExprStatement)
	return stmt.Expr, fn
}

func TestParseCompoundAssignDesugars(t *testing.T) {
	expr, _ := parseFirstExpr(t, "a += b")
	assign, ok := expr.(*BinaryExpr)
	require.True(t, ok)
	require.Equal(t, OpAssign, assign.Op)
	lhs, ok := assign.LHS.(*VariableExpr)
	require.True(t, ok)
	require.Equal(t, "a", lhs.Name)

	rhs, ok := assign.RHS.(*BinaryExpr)
	require.True(t, ok)
	require.Equal(t, OpAdd, rhs.Op)
	require.Equal(t, "a", rhs.LHS.(*VariableExpr).Name)
	require.Equal(t, "b", rhs.RHS.(*VariableExpr).Name)
}

func TestParseNotEqualDesugars(t *testing.T) {
	expr, _ := parseFirstExpr(t, "a != b")
	outer, ok := expr.(*BinaryExpr)
	require.True(t, ok)
	require.Equal(t, OpEqual, outer.Op)
	require.Equal(t, int64(0), outer.LHS.(*NumberExpr).Value)

	inner, ok := outer.RHS.(*BinaryExpr)
	require.True(t, ok)
	require.Equal(t, OpEqual, inner.Op)
	require.Equal(t, "a", inner.LHS.(*VariableExpr).Name)
	require.Equal(t, "b", inner.RHS.(*VariableExpr).Name)
}

func TestParseRelationalLessOrEqualDesugarsWithSwappedOperands(t *testing.T) {
	// "a <== b" means "NOT (b < a)".
	expr, _ := parseFirstExpr(t, "a <== b")
	outer := expr.(*BinaryExpr)
	require.Equal(t, OpEqual, outer.Op)
	require.Equal(t, int64(0), outer.LHS.(*NumberExpr).Value)

	less := outer.RHS.(*BinaryExpr)
	require.Equal(t, OpLess, less.Op)
	require.Equal(t, "b", less.LHS.(*VariableExpr).Name)
	require.Equal(t, "a", less.RHS.(*VariableExpr).Name)
}

func TestParseGreaterDesugarsToSwappedLess(t *testing.T) {
	expr, _ := parseFirstExpr(t, "a > b")
	less := expr.(*BinaryExpr)
	require.Equal(t, OpLess, less.Op)
	require.Equal(t, "b", less.LHS.(*VariableExpr).Name)
	require.Equal(t, "a", less.RHS.(*VariableExpr).Name)
}

func TestParseLogicalAndBoolifiesBothOperands(t *testing.T) {
	expr, _ := parseFirstExpr(t, "a && b")
	and := expr.(*BinaryExpr)
	require.Equal(t, OpAnd, and.Op)

	// Each side is boolify(x) == Equal(0, Equal(0, x)).
	lhsBool := and.LHS.(*BinaryExpr)
	require.Equal(t, OpEqual, lhsBool.Op)
	innerLHS := lhsBool.RHS.(*BinaryExpr)
	require.Equal(t, OpEqual, innerLHS.Op)
	require.Equal(t, "a", innerLHS.RHS.(*VariableExpr).Name)
}

func TestParseLogicalOrBoolifiesRawBitwiseOr(t *testing.T) {
	expr, _ := parseFirstExpr(t, "a || b")
	outer := expr.(*BinaryExpr)
	require.Equal(t, OpEqual, outer.Op)

	inner := outer.RHS.(*BinaryExpr)
	require.Equal(t, OpEqual, inner.Op)

	raw := inner.RHS.(*BinaryExpr)
	require.Equal(t, OpOr, raw.Op)
	require.Equal(t, "a", raw.LHS.(*VariableExpr).Name)
	require.Equal(t, "b", raw.RHS.(*VariableExpr).Name)
}

func TestParseIncrementDesugarsToSelfAssign(t *testing.T) {
	expr, _ := parseFirstExpr(t, "a++")
	assign := expr.(*BinaryExpr)
	require.Equal(t, OpAssign, assign.Op)
	add := assign.RHS.(*BinaryExpr)
	require.Equal(t, OpAdd, add.Op)
	require.Equal(t, int64(1), add.RHS.(*NumberExpr).Value)
}

func TestParseExchangeIsNotDesugared(t *testing.T) {
	expr, _ := parseFirstExpr(t, "a <=> b")
	ex := expr.(*BinaryExpr)
	require.Equal(t, OpExchange, ex.Op)
	require.Equal(t, "a", ex.LHS.(*VariableExpr).Name)
	require.Equal(t, "b", ex.RHS.(*VariableExpr).Name)
}

func TestParseUnaryOperators(t *testing.T) {
	neg, _ := parseFirstExpr(t, "-a")
	negBE := neg.(*BinaryExpr)
	require.Equal(t, OpSub, negBE.Op)
	require.Equal(t, int64(0), negBE.LHS.(*NumberExpr).Value)

	not, _ := parseFirstExpr(t, "!a")
	notBE := not.(*BinaryExpr)
	require.Equal(t, OpEqual, notBE.Op)

	bitnot, _ := parseFirstExpr(t, "~a")
	bitnotBE := bitnot.(*BinaryExpr)
	require.Equal(t, OpXor, bitnotBE.Op)
	require.Equal(t, int64(-1), bitnotBE.LHS.(*NumberExpr).Value)
}

func TestParseAddIsRightAssociative(t *testing.T) {
	// "a - b - c" parses as "a - (b - c)": the add production recurses on
	// itself on the right rather than looping, so it is right-associative.
	src := "fn f[a, b, c] { a - b - c ; }"
	toks, err := Tokenize(src)
	require.NoError(t, err)
	prog, err := Parse(toks)
	require.NoError(t, err)
	block := prog.Functions[0].Body.(*Block)
	expr := block.Statements[0].(*ExprStatement).Expr.(*BinaryExpr)
	require.Equal(t, OpSub, expr.Op)
	require.Equal(t, "a", expr.LHS.(*VariableExpr).Name)

	inner := expr.RHS.(*BinaryExpr)
	require.Equal(t, OpSub, inner.Op)
	require.Equal(t, "b", inner.LHS.(*VariableExpr).Name)
	require.Equal(t, "c", inner.RHS.(*VariableExpr).Name)
}

func TestParseVariableInterningReusesOffsets(t *testing.T) {
	src := "fn f[a] { a = a + 1 ;; }"
	toks, err := Tokenize(src)
	require.NoError(t, err)
	prog, err := Parse(toks)
	require.NoError(t, err)
	fn := prog.Functions[0]
	require.Equal(t, []string{"a"}, fn.Locals)
	require.Equal(t, 1, fn.ArgCount)
}

func TestParseNewLocalAppendsAfterParams(t *testing.T) {
	src := "fn f[a] { total = a + 1 ;; }"
	toks, err := Tokenize(src)
	require.NoError(t, err)
	prog, err := Parse(toks)
	require.NoError(t, err)
	fn := prog.Functions[0]
	require.Equal(t, []string{"a", "total"}, fn.Locals)
	require.Equal(t, 1, fn.ArgCount)
}

func TestParsePowerOperatorRejected(t *testing.T) {
	src := "fn f[a, b] { a ** b ;; }"
	toks, err := Tokenize(src)
	require.NoError(t, err)
	_, err = Parse(toks)
	require.Error(t, err)
	var unsupported *UnsupportedOperatorError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, "**", unsupported.Spelling)
}

func TestParseRootAssignOperatorRejected(t *testing.T) {
	src := "fn f[a, b] { a //= b ;; }"
	toks, err := Tokenize(src)
	require.NoError(t, err)
	_, err = Parse(toks)
	require.Error(t, err)
	var unsupported *UnsupportedOperatorError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, "//=", unsupported.Spelling)
}

func TestParseIfForWhile(t *testing.T) {
	src := `fn f[n] {
		if n { n = n - 1 ;; } else { n = 0 ;; }
		for i = 0; i < n; i++; { debug(i) ; }
		while n { n = n - 1 ; }
		n ;;
	}`
	toks, err := Tokenize(src)
	require.NoError(t, err)
	prog, err := Parse(toks)
	require.NoError(t, err)

	block := prog.Functions[0].Body.(*Block)
	require.Len(t, block.Statements, 4)

	ifStmt, ok := block.Statements[0].(*IfStatement)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)

	forStmt, ok := block.Statements[1].(*ForStatement)
	require.True(t, ok)
	require.NotNil(t, forStmt.Init)
	require.NotNil(t, forStmt.Condition)
	require.NotNil(t, forStmt.Update)

	whileStmt, ok := block.Statements[2].(*WhileStatement)
	require.True(t, ok)
	require.NotNil(t, whileStmt.Condition)

	_, ok = block.Statements[3].(*ReturnStatement)
	require.True(t, ok)
}

func TestParseCallVsVariableDisambiguation(t *testing.T) {
	src := "fn f[a] { a(1) ;; }"
	toks, err := Tokenize(src)
	require.NoError(t, err)
	prog, err := Parse(toks)
	require.NoError(t, err)
	block := prog.Functions[0].Body.(*Block)
	ret := block.Statements[0].(*ReturnStatement)
	call, ok := ret.Expr.(*CallExpr)
	require.True(t, ok)
	require.Equal(t, "a", call.Name)
	require.Len(t, call.Args, 1)
}

func TestParseUnexpectedTokenError(t *testing.T) {
	src := "fn f[a] { a + ;; }"
	toks, err := Tokenize(src)
	require.NoError(t, err)
	_, err = Parse(toks)
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
