// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koasyntax

import "koa.256lights.llc/pkg/internal/koalex"

// Validate checks the structural rules of a parsed program
// that the grammar does not enforce:
// return only inside a function
// and break and continue only inside a loop.
// Validate walks the whole tree, so every violation is reported,
// and the error (if any) is an [ErrorList].
// Empty bodies of if, while, and for statements are returned as warnings.
//
// Validate also appends an implicit "return nil"
// to every function body that does not already end in a return statement.
func Validate(stmts []Stmt) (warnings []*Diagnostic, err error) {
	v := new(validator)
	for _, stmt := range stmts {
		v.stmt(stmt)
	}
	return v.warnings, v.errs.Err()
}

type validator struct {
	inFunction bool
	inLoop     bool
	errs       ErrorList
	warnings   []*Diagnostic
}

func (v *validator) errorf(pos koalex.Position, msg string) {
	v.errs = append(v.errs, &Diagnostic{
		Severity: SeverityError,
		Position: pos,
		Message:  msg,
	})
}

func (v *validator) warn(pos koalex.Position, msg string) {
	v.warnings = append(v.warnings, &Diagnostic{
		Severity: SeverityWarning,
		Position: pos,
		Message:  msg,
	})
}

func (v *validator) stmt(stmt Stmt) {
	switch stmt := stmt.(type) {
	case nil:
	case *BlockStmt:
		for _, s := range stmt.Stmts {
			v.stmt(s)
		}
	case *ExprStmt:
		v.expr(stmt.Expr)
	case *VarStmt:
		v.expr(stmt.Init)
	case *IfStmt:
		v.expr(stmt.Cond)
		if isEmptyBlock(stmt.Then) {
			v.warn(stmt.Then.Position(), "Then branch in if statement has empty body.")
		}
		v.stmt(stmt.Then)
		if stmt.Else != nil {
			if isEmptyBlock(stmt.Else) {
				v.warn(stmt.Else.Position(), "Else branch in if statement has empty body.")
			}
			v.stmt(stmt.Else)
		}
	case *WhileStmt:
		v.expr(stmt.Cond)
		if isEmptyBlock(stmt.Body) {
			v.warn(stmt.Body.Position(), "While loop has empty body.")
		}
		v.loopBody(stmt.Body)
	case *ForStmt:
		v.stmt(stmt.Init)
		v.expr(stmt.Cond)
		v.expr(stmt.Incr)
		if isEmptyBlock(stmt.Body) {
			v.warn(stmt.Body.Position(), "For loop has empty body.")
		}
		v.loopBody(stmt.Body)
	case *BreakStmt:
		if !v.inLoop {
			v.errorf(stmt.Pos, "Break statement can only be used inside a loop.")
		}
	case *ContinueStmt:
		if !v.inLoop {
			v.errorf(stmt.Pos, "Continue statement can only be used inside a loop.")
		}
	case *ReturnStmt:
		if !v.inFunction {
			v.errorf(stmt.Pos, "Return statement can only be used inside a function.")
		}
		v.expr(stmt.Value)
	}
}

func (v *validator) loopBody(body Stmt) {
	prev := v.inLoop
	v.inLoop = true
	v.stmt(body)
	v.inLoop = prev
}

func (v *validator) expr(expr Expr) {
	switch expr := expr.(type) {
	case nil:
	case *GroupingExpr:
		v.expr(expr.Expr)
	case *UnaryExpr:
		v.expr(expr.Operand)
	case *BinaryExpr:
		v.expr(expr.Left)
		v.expr(expr.Right)
	case *LogicalExpr:
		v.expr(expr.Left)
		v.expr(expr.Right)
	case *AssignExpr:
		v.expr(expr.Value)
	case *TableExpr:
		for _, f := range expr.Fields {
			v.expr(f.Value)
		}
	case *GetExpr:
		v.expr(expr.Object)
		v.expr(expr.Key)
	case *SetExpr:
		v.expr(expr.Object)
		v.expr(expr.Key)
		v.expr(expr.Value)
	case *CallExpr:
		v.expr(expr.Callee)
		for _, arg := range expr.Args {
			v.expr(arg)
		}
	case *FunctionExpr:
		v.function(expr)
	}
}

func (v *validator) function(fn *FunctionExpr) {
	prevFunction, prevLoop := v.inFunction, v.inLoop
	v.inFunction, v.inLoop = true, false
	for _, s := range fn.Body {
		v.stmt(s)
	}
	v.inFunction, v.inLoop = prevFunction, prevLoop

	if n := len(fn.Body); n == 0 || !isReturn(fn.Body[n-1]) {
		fn.Body = append(fn.Body, &ReturnStmt{Pos: fn.Pos})
	}
}

func isReturn(stmt Stmt) bool {
	_, ok := stmt.(*ReturnStmt)
	return ok
}

func isEmptyBlock(stmt Stmt) bool {
	b, ok := stmt.(*BlockStmt)
	return ok && len(b.Stmts) == 0
}
