package diag

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/kolkov/microc/internal/token"
)

func tokAt(kind token.Kind, lit string, line, col int) token.Token {
	return token.Token{Kind: kind, Literal: lit, Pos: token.Position{Line: line, Column: col}}
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	tr := New("prog.mic", &buf)
	be.Equal(t, tr.HasError(), false)

	tr.ReportError(tokAt(token.Id, "x", 3, 9), "something went wrong")

	be.Equal(t, buf.String(), "prog.mic:3:9: error: something went wrong\n")
	be.True(t, tr.HasError())
	be.Equal(t, tr.ErrorCount(), 1)
}

func TestReportExpected(t *testing.T) {
	tests := []struct {
		name     string
		found    token.Token
		expected []token.Kind
		want     string
	}{
		{
			name:     "single",
			found:    tokAt(token.IntLiteral, "5", 1, 9),
			expected: []token.Kind{token.AssignOp},
			want:     "f.mic:1:9: error: Expected AssignOp. Instead found IntLiteral.\n",
		},
		{
			name:     "two",
			found:    tokAt(token.SemiColon, ";", 2, 4),
			expected: []token.Kind{token.PlusOp, token.MinusOp},
			want:     "f.mic:2:4: error: Expected PlusOp or MinusOp. Instead found SemiColon.\n",
		},
		{
			name:     "three",
			found:    tokAt(token.EofSym, "", 7, 1),
			expected: []token.Kind{token.LParen, token.Id, token.IntLiteral},
			want:     "f.mic:7:1: error: Expected LParen or Id or IntLiteral. Instead found EofSym.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tr := New("f.mic", &buf)
			tr.ReportExpected(tt.found, tt.expected)
			be.Equal(t, buf.String(), tt.want)
			be.True(t, tr.HasError())
		})
	}
}

func TestWarningDoesNotSetError(t *testing.T) {
	var buf bytes.Buffer
	tr := New("w.mic", &buf)
	tr.ReportWarning("unused thing")

	be.Equal(t, buf.String(), "w.mic: warning: unused thing\n")
	be.Equal(t, tr.HasError(), false)
	be.Equal(t, tr.WarningCount(), 1)
	be.Err(t, tr.Err(), nil)
}

func TestErrorFlagIsMonotonic(t *testing.T) {
	tr := New("m.mic", nil)
	tr.ReportError(tokAt(token.Id, "a", 1, 1), "first")
	tr.ReportWarning("later warning")
	be.True(t, tr.HasError())
	tr.ReportError(tokAt(token.Id, "b", 2, 1), "second")
	be.True(t, tr.HasError())
	be.Equal(t, tr.ErrorCount(), 2)
	be.Equal(t, len(tr.Diagnostics()), 3)
}

func TestErrList(t *testing.T) {
	tr := New("e.mic", nil)
	tr.ReportError(tokAt(token.Id, "a", 1, 2), "one")
	tr.ReportWarning("skip me")
	tr.ReportError(tokAt(token.Id, "b", 4, 5), "two")

	err := tr.Err()
	var list List
	be.True(t, errors.As(err, &list))
	be.Equal(t, len(list), 2)
	be.Equal(t, err.Error(), "e.mic:1:2: error: one\ne.mic:4:5: error: two")
}

func TestNoFilename(t *testing.T) {
	var buf bytes.Buffer
	tr := New("", &buf)
	tr.ReportError(tokAt(token.Id, "a", 1, 2), "oops")
	tr.ReportWarning("hm")
	be.Equal(t, buf.String(), "1:2: error: oops\nwarning: hm\n")
}

func TestForcedColorKeepsText(t *testing.T) {
	var buf bytes.Buffer
	tr := New("c.mic", &buf)
	tr.EnableColor(true)
	tr.ReportError(tokAt(token.Id, "a", 1, 1), "coloured")

	out := buf.String()
	be.True(t, strings.HasPrefix(out, "c.mic:1:1: "))
	be.True(t, strings.HasSuffix(out, " coloured\n"))
	be.True(t, strings.Contains(out, "\x1b["))
	// The recorded diagnostic stays plain.
	be.Equal(t, tr.Diagnostics()[0].Error(), "c.mic:1:1: error: coloured")
}
