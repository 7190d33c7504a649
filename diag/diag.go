// Package diag carries structured pipeline errors from the lexer, parser and
// Python generator to their callers.
package diag

import (
	"errors"
	"fmt"
)

// Stage identifies the pipeline stage that produced a diagnostic.
type Stage uint8

const (
	StageLex Stage = iota
	StageSyntax
	StageCodeGen
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "LexError"
	case StageSyntax:
		return "SyntaxError"
	case StageCodeGen:
		return "CodeGenError"
	}
	return "Error"
}

// Kind classifies a diagnostic within its stage.
type Kind uint8

const (
	UnterminatedString Kind = iota
	InvalidCharacter
	UnexpectedToken
	UnmatchedTerminator
	MalformedExpression
	ReservedIdentifier
	Unsupported
	InvalidOutput
)

var kindNames = map[Kind]string{
	UnterminatedString:  "UnterminatedString",
	InvalidCharacter:    "InvalidCharacter",
	UnexpectedToken:     "UnexpectedToken",
	UnmatchedTerminator: "UnmatchedTerminator",
	MalformedExpression: "MalformedExpression",
	ReservedIdentifier:  "ReservedIdentifier",
	Unsupported:         "Unsupported",
	InvalidOutput:       "InvalidOutput",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Stage reports which pipeline stage owns the kind.
func (k Kind) Stage() Stage {
	switch k {
	case UnterminatedString, InvalidCharacter:
		return StageLex
	case UnexpectedToken, UnmatchedTerminator, MalformedExpression:
		return StageSyntax
	}
	return StageCodeGen
}

// Pos is a 1-based source location.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Opener records the block-opening keyword a missing terminator belongs to.
type Opener struct {
	Keyword string
	Pos     Pos
}

// Error is the single diagnostic type of the pipeline.
//
// Expected and Found are filled in for syntax errors; Opener is set when a
// block terminator was missing or wrong.
type Error struct {
	Kind     Kind
	Message  string
	Pos      Pos
	File     string
	Expected string
	Found    string
	Opener   *Opener
	AtEOF    bool
}

// Error renders the diagnostic as "line:column: message". Diagnostics about
// generated output carry no source position and render the message alone.
func (e *Error) Error() string {
	if e.Pos.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Report renders "line:column: message" for every diagnostic. Unpositioned
// diagnostics report 0:0.
func (e *Error) Report() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Stage reports the stage that produced e.
func (e *Error) Stage() Stage {
	return e.Kind.Stage()
}

// WithFile returns a copy of e attributed to file.
func (e *Error) WithFile(file string) *Error {
	c := *e
	c.File = file
	return &c
}

// Location renders "file:line:column" when the file is known.
func (e *Error) Location() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%s", e.File, e.Pos)
	}
	return e.Pos.String()
}

// Newf builds a diagnostic of the given kind at pos.
func Newf(kind Kind, pos Pos, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
}

// As extracts a *Error from anywhere in err's chain.
func As(err error) (*Error, bool) {
	var d *Error
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// IsIncomplete reports whether err is a syntax error raised because the input
// ended early, which means more source text could still complete it.
func IsIncomplete(err error) bool {
	d, ok := As(err)
	return ok && d.Stage() == StageSyntax && d.AtEOF
}
