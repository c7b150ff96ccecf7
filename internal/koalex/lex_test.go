// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koalex

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestScanner(t *testing.T) {
	tests := []struct {
		s    string
		want []Token
		bad  bool
	}{
		{s: "", want: []Token{}},
		{
			s: "foo",
			want: []Token{
				{Kind: IdentifierToken, Position: Pos(1, 1), Value: "foo"},
			},
		},
		{
			s: "  _foo2  ",
			want: []Token{
				{Kind: IdentifierToken, Position: Pos(1, 3), Value: "_foo2"},
			},
		},
		{
			s: "345",
			want: []Token{
				{Kind: NumberToken, Position: Pos(1, 1), Value: "345"},
			},
		},
		{
			s: "3.1416",
			want: []Token{
				{Kind: NumberToken, Position: Pos(1, 1), Value: "3.1416"},
			},
		},
		{
			s: "3.foo",
			want: []Token{
				{Kind: NumberToken, Position: Pos(1, 1), Value: "3"},
				{Kind: DotToken, Position: Pos(1, 2)},
				{Kind: IdentifierToken, Position: Pos(1, 3), Value: "foo"},
			},
		},
		{
			s: "-1",
			want: []Token{
				{Kind: SubToken, Position: Pos(1, 1)},
				{Kind: NumberToken, Position: Pos(1, 2), Value: "1"},
			},
		},
		{
			s: "x-1",
			want: []Token{
				{Kind: IdentifierToken, Position: Pos(1, 1), Value: "x"},
				{Kind: SubToken, Position: Pos(1, 2)},
				{Kind: NumberToken, Position: Pos(1, 3), Value: "1"},
			},
		},
		{
			s: `"hello"`,
			want: []Token{
				{Kind: StringToken, Position: Pos(1, 1), Value: "hello"},
			},
		},
		{
			s: `"a\tb\n\"c\"\\"`,
			want: []Token{
				{Kind: StringToken, Position: Pos(1, 1), Value: "a\tb\n\"c\"\\"},
			},
		},
		{
			s: "\"two\nlines\" x",
			want: []Token{
				{Kind: StringToken, Position: Pos(1, 1), Value: "two\nlines"},
				{Kind: IdentifierToken, Position: Pos(2, 8), Value: "x"},
			},
		},
		{
			s: `"abc`,
			want: []Token{
				{Kind: ErrorToken, Position: Pos(1, 1)},
			},
			bad: true,
		},
		{
			s: `"\q"`,
			want: []Token{
				{Kind: ErrorToken, Position: Pos(1, 1)},
			},
			bad: true,
		},
		{
			s: "var x = nil",
			want: []Token{
				{Kind: VarToken, Position: Pos(1, 1)},
				{Kind: IdentifierToken, Position: Pos(1, 5), Value: "x"},
				{Kind: AssignToken, Position: Pos(1, 7)},
				{Kind: NilToken, Position: Pos(1, 9)},
			},
		},
		{
			s: "and break continue else false for function if nil or return self true var while",
			want: []Token{
				{Kind: AndToken, Position: Pos(1, 1)},
				{Kind: BreakToken, Position: Pos(1, 5)},
				{Kind: ContinueToken, Position: Pos(1, 11)},
				{Kind: ElseToken, Position: Pos(1, 20)},
				{Kind: FalseToken, Position: Pos(1, 25)},
				{Kind: ForToken, Position: Pos(1, 31)},
				{Kind: FunctionToken, Position: Pos(1, 35)},
				{Kind: IfToken, Position: Pos(1, 44)},
				{Kind: NilToken, Position: Pos(1, 47)},
				{Kind: OrToken, Position: Pos(1, 51)},
				{Kind: ReturnToken, Position: Pos(1, 54)},
				{Kind: SelfToken, Position: Pos(1, 61)},
				{Kind: TrueToken, Position: Pos(1, 66)},
				{Kind: VarToken, Position: Pos(1, 71)},
				{Kind: WhileToken, Position: Pos(1, 75)},
			},
		},
		{
			s: "+ - * / % ! == != <= >= < > = += -= *= /= %= ++ --",
			want: []Token{
				{Kind: AddToken, Position: Pos(1, 1)},
				{Kind: SubToken, Position: Pos(1, 3)},
				{Kind: MulToken, Position: Pos(1, 5)},
				{Kind: DivToken, Position: Pos(1, 7)},
				{Kind: ModToken, Position: Pos(1, 9)},
				{Kind: NotToken, Position: Pos(1, 11)},
				{Kind: EqualToken, Position: Pos(1, 13)},
				{Kind: NotEqualToken, Position: Pos(1, 16)},
				{Kind: LessEqualToken, Position: Pos(1, 19)},
				{Kind: GreaterEqualToken, Position: Pos(1, 22)},
				{Kind: LessToken, Position: Pos(1, 25)},
				{Kind: GreaterToken, Position: Pos(1, 27)},
				{Kind: AssignToken, Position: Pos(1, 29)},
				{Kind: AddAssignToken, Position: Pos(1, 31)},
				{Kind: SubAssignToken, Position: Pos(1, 34)},
				{Kind: MulAssignToken, Position: Pos(1, 37)},
				{Kind: DivAssignToken, Position: Pos(1, 40)},
				{Kind: ModAssignToken, Position: Pos(1, 43)},
				{Kind: IncrementToken, Position: Pos(1, 46)},
				{Kind: DecrementToken, Position: Pos(1, 49)},
			},
		},
		{
			s: "(){}[];:,.",
			want: []Token{
				{Kind: LParenToken, Position: Pos(1, 1)},
				{Kind: RParenToken, Position: Pos(1, 2)},
				{Kind: LBraceToken, Position: Pos(1, 3)},
				{Kind: RBraceToken, Position: Pos(1, 4)},
				{Kind: LBracketToken, Position: Pos(1, 5)},
				{Kind: RBracketToken, Position: Pos(1, 6)},
				{Kind: SemiToken, Position: Pos(1, 7)},
				{Kind: ColonToken, Position: Pos(1, 8)},
				{Kind: CommaToken, Position: Pos(1, 9)},
				{Kind: DotToken, Position: Pos(1, 10)},
			},
		},
		{
			s: "a // comment\nb",
			want: []Token{
				{Kind: IdentifierToken, Position: Pos(1, 1), Value: "a"},
				{Kind: IdentifierToken, Position: Pos(2, 1), Value: "b"},
			},
		},
		{
			s: "a /* multi\nline * / comment */ b",
			want: []Token{
				{Kind: IdentifierToken, Position: Pos(1, 1), Value: "a"},
				{Kind: IdentifierToken, Position: Pos(2, 21), Value: "b"},
			},
		},
		{
			s: "a // trailing",
			want: []Token{
				{Kind: IdentifierToken, Position: Pos(1, 1), Value: "a"},
			},
		},
		{
			s: "a /* never closed",
			want: []Token{
				{Kind: IdentifierToken, Position: Pos(1, 1), Value: "a"},
				{Kind: ErrorToken, Position: Pos(1, 3)},
			},
			bad: true,
		},
		{
			s: "t.length()",
			want: []Token{
				{Kind: IdentifierToken, Position: Pos(1, 1), Value: "t"},
				{Kind: DotToken, Position: Pos(1, 2)},
				{Kind: IdentifierToken, Position: Pos(1, 3), Value: "length"},
				{Kind: LParenToken, Position: Pos(1, 9)},
				{Kind: RParenToken, Position: Pos(1, 10)},
			},
		},
	}

	for _, test := range tests {
		s := NewScanner(strings.NewReader(test.s))
		var got []Token
		for {
			tok, err := s.Scan()
			if err != io.EOF {
				got = append(got, tok)
			}
			switch {
			case err == io.EOF && test.bad:
				t.Errorf("scan of %q did not return an error", test.s)
			case err != nil && err != io.EOF && test.bad:
				t.Logf("scan of %q returned (expected) error: %v", test.s, err)
			case err != nil && err != io.EOF && !test.bad:
				t.Errorf("scan of %q error: %v", test.s, err)
			}
			if err != nil {
				break
			}
		}
		if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("scan of %q (-want +got):\n%s", test.s, diff)
		}
	}
}

func TestScannerUnexpectedChar(t *testing.T) {
	s := NewScanner(strings.NewReader("a @ b"))
	var got []Token
	var errs []error
	for {
		tok, err := s.Scan()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, err)
		}
		got = append(got, tok)
	}
	want := []Token{
		{Kind: IdentifierToken, Position: Pos(1, 1), Value: "a"},
		{Kind: ErrorToken, Position: Pos(1, 3)},
		{Kind: IdentifierToken, Position: Pos(1, 5), Value: "b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens (-want +got):\n%s", diff)
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors; want 1", len(errs))
	}
	var charErr *UnexpectedCharError
	if !errors.As(errs[0], &charErr) || charErr.Char != '@' {
		t.Errorf("error = %v; want unexpected '@'", errs[0])
	}
}

func TestTokenString(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{Token{Kind: ErrorToken}, "end"},
		{Token{Kind: IdentifierToken, Value: "foo"}, "foo"},
		{Token{Kind: NumberToken, Value: "1.5"}, "1.5"},
		{Token{Kind: StringToken, Value: "hi"}, `"hi"`},
		{Token{Kind: SelfToken}, "self"},
		{Token{Kind: ModAssignToken}, "%="},
	}
	for _, test := range tests {
		if got := test.tok.String(); got != test.want {
			t.Errorf("%#v.String() = %q; want %q", test.tok, got, test.want)
		}
	}
}
