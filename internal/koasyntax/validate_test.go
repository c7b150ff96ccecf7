// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koasyntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		errors   []string
		warnings []string
	}{
		{
			name:   "Valid",
			source: "var f = function(n) { while n > 0 { n = n - 1; if n == 2 { break; } continue; } return n; }",
		},
		{
			name:   "TopLevelReturn",
			source: "return 1",
			errors: []string{
				"[line 1] Error: Return statement can only be used inside a function.",
			},
		},
		{
			name:   "BreakOutsideLoop",
			source: "if true {\n  break\n}",
			errors: []string{
				"[line 2] Error: Break statement can only be used inside a loop.",
			},
		},
		{
			name:   "ContinueInsideFunctionInsideLoop",
			source: "while true {\n  var f = function() {\n    continue;\n  };\n}",
			errors: []string{
				"[line 3] Error: Continue statement can only be used inside a loop.",
			},
		},
		{
			name:   "AllErrorsReported",
			source: "break\ncontinue\nreturn",
			errors: []string{
				"[line 1] Error: Break statement can only be used inside a loop.",
				"[line 2] Error: Continue statement can only be used inside a loop.",
				"[line 3] Error: Return statement can only be used inside a function.",
			},
		},
		{
			name:   "EmptyBodies",
			source: "if x {} else {}\nwhile x {}\nfor (;;) {}",
			warnings: []string{
				"[line 1] Warning: Then branch in if statement has empty body.",
				"[line 1] Warning: Else branch in if statement has empty body.",
				"[line 2] Warning: While loop has empty body.",
				"[line 3] Warning: For loop has empty body.",
			},
		},
		{
			name:   "NestedFunctionArgument",
			source: "print(function() { break; })",
			errors: []string{
				"[line 1] Error: Break statement can only be used inside a loop.",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stmts, err := ParseString(test.source)
			if err != nil {
				t.Fatal(err)
			}
			warnings, err := Validate(stmts)
			var gotErrors, gotWarnings []string
			for _, d := range Diagnostics(err) {
				gotErrors = append(gotErrors, d.Error())
			}
			for _, d := range warnings {
				gotWarnings = append(gotWarnings, d.Error())
			}
			if diff := cmp.Diff(test.errors, gotErrors, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("errors (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.warnings, gotWarnings, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("warnings (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateAddsTrailingReturn(t *testing.T) {
	stmts, err := ParseString("var f = function() { print(1); }\nvar g = function() { return 2; }")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Validate(stmts); err != nil {
		t.Fatal(err)
	}
	want := []Stmt{
		&VarStmt{Name: "f", Init: &FunctionExpr{Body: []Stmt{
			&ExprStmt{Expr: &CallExpr{
				Callee: &VariableExpr{Name: "print"},
				Args:   []Expr{&NumberLiteral{Value: 1}},
			}},
			&ReturnStmt{},
		}}},
		&VarStmt{Name: "g", Init: &FunctionExpr{Body: []Stmt{
			&ReturnStmt{Value: &NumberLiteral{Value: 2}},
		}}},
	}
	if diff := cmp.Diff(want, stmts, ignorePositions, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("validated tree (-want +got):\n%s", diff)
	}
}
