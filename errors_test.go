package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessageFormats(t *testing.T) {
	pos := Position{Line: 2, Column: 7}

	require.Equal(t, "Undefined Token(2:7)", (&TokenizeError{Pos: pos}).Error())
	require.Equal(t, "Unexpected Token (2:7)", (&ParseError{Pos: pos}).Error())
	require.Equal(t, "Unsupported Operator (2:7): ** is reserved, not implemented",
		(&UnsupportedOperatorError{Pos: pos, Spelling: "**"}).Error())

	require.Equal(t, "Not a variable", errNotAVariable.Error())
	require.Equal(t, "Function not found", errFunctionNotFound.Error())
	require.Equal(t, "Stack not empty", errStackNotEmpty.Error())
	require.Equal(t, "Not a program", errNotAProgram.Error())
}

func TestPositionedErrorsExposePosition(t *testing.T) {
	pos := Position{Line: 3, Column: 1}
	var errs = []PositionedError{
		&TokenizeError{Pos: pos},
		&ParseError{Pos: pos},
		&UnsupportedOperatorError{Pos: pos, Spelling: "//"},
	}
	for _, e := range errs {
		require.Equal(t, pos, e.Position())
	}
}
