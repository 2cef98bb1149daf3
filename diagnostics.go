package main

import (
	"errors"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// compileStage names which pipeline stage a Diagnostic came from.
type compileStage string

const (
	stageTokenize compileStage = "tokenize"
	stageParse    compileStage = "parse"
	stageEmit     compileStage = "emit"
)

// Diagnostic is the --json error shape: {"stage","message","line","column"}.
// Emitter errors carry no position (errors.go), so line/column are simply
// absent from the object rather than zeroed — a consumer can tell
// "position unknown" from "position 0" this way.
type Diagnostic struct {
	Stage   compileStage
	Message string
	Pos     *Position
}

// newDiagnostic builds a Diagnostic from whatever error a pipeline stage
// returned, recovering a Position when the error, or an error it wraps,
// implements PositionedError.
func newDiagnostic(stage compileStage, err error) Diagnostic {
	d := Diagnostic{Stage: stage, Message: err.Error()}
	var pe PositionedError
	if errors.As(err, &pe) {
		pos := pe.Position()
		d.Pos = &pos
	}
	return d
}

// JSON renders the diagnostic via sjson.Set rather than encoding/json, to
// match how the rest of the diagnostics plumbing builds JSON incrementally.
func (d Diagnostic) JSON() (string, error) {
	doc := "{}"
	var err error
	if doc, err = sjson.Set(doc, "stage", string(d.Stage)); err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "message", d.Message); err != nil {
		return "", err
	}
	if d.Pos != nil {
		if doc, err = sjson.Set(doc, "line", d.Pos.Line); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, "column", d.Pos.Column); err != nil {
			return "", err
		}
	} else {
		if doc, err = sjson.Delete(doc, "line"); err != nil {
			return "", err
		}
		if doc, err = sjson.Delete(doc, "column"); err != nil {
			return "", err
		}
	}
	return doc, nil
}

// diagnosticLine extracts just the "message" field back out of a
// diagnostic's JSON with gjson, without re-parsing the whole object by
// hand. The CLI does not call it: its --json path prints the full object.
func diagnosticLine(doc string) string {
	return gjson.Get(doc, "message").String()
}
