package main

import (
	"fmt"
	"sort"
)

// Position marks the first character of a token or diagnostic. Both Line
// and Column are 0-indexed; Column resets to 0 after every '\n'.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// TokenKind tags the union held by a Token.
type TokenKind int

const (
	TokSymbol TokenKind = iota
	TokWord
	TokIdent
	TokNumber
	TokEOF
)

// Symbol enumerates the fixed punctuation/operator set (see symbolTable).
type Symbol int

const (
	SymAdd Symbol = iota
	SymSub
	SymMul
	SymDiv
	SymRem
	SymIncrement
	SymDecrement
	SymPower
	SymRoot
	SymBitNot
	SymBitAnd
	SymBitXor
	SymBitOr
	SymLShift
	SymRShift
	SymEqual
	SymNotEqual
	SymLess
	SymLessOrEqual
	SymGreater
	SymGreaterOrEqual
	SymNot
	SymAnd
	SymOr
	SymAssign
	SymAddAssign
	SymSubAssign
	SymMulAssign
	SymDivAssign
	SymRemAssign
	SymPowerAssign
	SymRootAssign
	SymAndAssign
	SymXorAssign
	SymOrAssign
	SymLShiftAssign
	SymRShiftAssign
	SymChangeMin
	SymChangeMax
	SymExchange
	SymOpenBracket
	SymCloseBracket
	SymOpenBrace
	SymCloseBrace
	SymOpenSquare
	SymCloseSquare
	SymComma
	SymEnd
	SymReturnMark
)

type symbolEntry struct {
	symbol   Symbol
	spelling string
}

// symbolTable holds the canonical spelling of every symbol, in declaration
// order. The statement terminator and the return marker are distinct
// symbols: SymReturnMark is spelled ";;" so that the longest-match scan in
// symbolsByLength never splits it into two ";"
// tokens.
var symbolTable = []symbolEntry{
	{SymAdd, "+"},
	{SymSub, "-"},
	{SymMul, "*"},
	{SymDiv, "/"},
	{SymRem, "%"},
	{SymIncrement, "++"},
	{SymDecrement, "--"},
	{SymPower, "**"},
	{SymRoot, "//"},
	{SymBitNot, "~"},
	{SymBitAnd, "&"},
	{SymBitXor, "^"},
	{SymBitOr, "|"},
	{SymLShift, "<<"},
	{SymRShift, ">>"},
	{SymEqual, "=="},
	{SymNotEqual, "!="},
	{SymLess, "<"},
	{SymLessOrEqual, "<=="},
	{SymGreater, ">"},
	{SymGreaterOrEqual, ">=="},
	{SymNot, "!"},
	{SymAnd, "&&"},
	{SymOr, "||"},
	{SymAssign, "="},
	{SymAddAssign, "+="},
	{SymSubAssign, "-="},
	{SymMulAssign, "*="},
	{SymDivAssign, "/="},
	{SymRemAssign, "%="},
	{SymPowerAssign, "**="},
	{SymRootAssign, "//="},
	{SymAndAssign, "&="},
	{SymXorAssign, "^="},
	{SymOrAssign, "|="},
	{SymLShiftAssign, "<<="},
	{SymRShiftAssign, ">>="},
	{SymChangeMin, "<="},
	{SymChangeMax, ">="},
	{SymExchange, "<=>"},
	{SymOpenBracket, "("},
	{SymCloseBracket, ")"},
	{SymOpenBrace, "{"},
	{SymCloseBrace, "}"},
	{SymOpenSquare, "["},
	{SymCloseSquare, "]"},
	{SymComma, ","},
	{SymEnd, ";"},
	{SymReturnMark, ";;"},
}

// symbolsByLength is symbolTable sorted by descending spelling length, so
// that the tokenizer's longest-match scan tries "<==" before "<=" before
// "<", "**=" before "**" before "*", and so on.
var symbolsByLength []symbolEntry

// symbolFirstChars is the set of characters that can start some symbol.
var symbolFirstChars map[byte]bool

func init() {
	symbolsByLength = append([]symbolEntry(nil), symbolTable...)
	sort.SliceStable(symbolsByLength, func(i, j int) bool {
		return len(symbolsByLength[i].spelling) > len(symbolsByLength[j].spelling)
	})

	symbolFirstChars = make(map[byte]bool, len(symbolTable))
	for _, e := range symbolTable {
		symbolFirstChars[e.spelling[0]] = true
	}
}

func (s Symbol) String() string {
	for _, e := range symbolTable {
		if e.symbol == s {
			return e.spelling
		}
	}
	return "<unknown symbol>"
}

// Word enumerates the fixed keyword set. Only Fn/If/Else/For/While have
// parser productions; Loop/Int/Flt tokenize but are otherwise reserved.
type Word int

const (
	WordFn Word = iota
	WordIf
	WordElse
	WordFor
	WordWhile
	WordLoop
	WordInt
	WordFlt
)

type wordEntry struct {
	word     Word
	spelling string
}

var wordTable = []wordEntry{
	{WordFn, "fn"},
	{WordIf, "if"},
	{WordElse, "else"},
	{WordFor, "for"},
	{WordWhile, "while"},
	{WordLoop, "loop"},
	{WordInt, "int"},
	{WordFlt, "flt"},
}

var wordBySpelling map[string]Word

func init() {
	wordBySpelling = make(map[string]Word, len(wordTable))
	for _, e := range wordTable {
		wordBySpelling[e.spelling] = e.word
	}
}

func (w Word) String() string {
	for _, e := range wordTable {
		if e.word == w {
			return e.spelling
		}
	}
	return "<unknown word>"
}

// Token is {kind, line, column} plus whichever payload its Kind implies.
type Token struct {
	Kind   TokenKind
	Symbol Symbol
	Word   Word
	Ident  string
	Number int64
	Pos    Position
}

func (t Token) String() string {
	switch t.Kind {
	case TokSymbol:
		return t.Symbol.String()
	case TokWord:
		return t.Word.String()
	case TokIdent:
		return t.Ident
	case TokNumber:
		return fmt.Sprintf("%d", t.Number)
	default:
		return "<eof>"
	}
}
