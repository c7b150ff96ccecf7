// Copyright 2026 The Koa Authors
// SPDX-License-Identifier: MIT

package koasyntax

import "koa.256lights.llc/pkg/internal/koalex"

// Stmt is a statement node.
type Stmt interface {
	Position() koalex.Position
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Position() koalex.Position
	exprNode()
}

// BlockStmt is a braced sequence of statements with its own scope.
type BlockStmt struct {
	Pos   koalex.Position
	Stmts []Stmt
}

// ExprStmt evaluates an expression and discards its value.
type ExprStmt struct {
	Pos  koalex.Position
	Expr Expr
}

// VarStmt declares a variable.
// Init is nil if the declaration has no initializer.
type VarStmt struct {
	Pos  koalex.Position
	Name string
	Init Expr
}

// IfStmt is a conditional. Else may be nil.
type IfStmt struct {
	Pos  koalex.Position
	Cond Expr
	Then Stmt
	Else Stmt
}

// WhileStmt is a pre-tested loop.
type WhileStmt struct {
	Pos  koalex.Position
	Cond Expr
	Body Stmt
}

// ForStmt is a C-style loop.
// Init, Cond, and Incr may each be nil.
type ForStmt struct {
	Pos  koalex.Position
	Init Stmt
	Cond Expr
	Incr Expr
	Body Stmt
}

// BreakStmt exits the innermost loop.
type BreakStmt struct {
	Pos koalex.Position
}

// ContinueStmt skips to the next iteration of the innermost loop.
type ContinueStmt struct {
	Pos koalex.Position
}

// ReturnStmt returns from the enclosing function.
// Value is nil for a bare return.
type ReturnStmt struct {
	Pos   koalex.Position
	Value Expr
}

func (s *BlockStmt) Position() koalex.Position    { return s.Pos }
func (s *ExprStmt) Position() koalex.Position     { return s.Pos }
func (s *VarStmt) Position() koalex.Position      { return s.Pos }
func (s *IfStmt) Position() koalex.Position       { return s.Pos }
func (s *WhileStmt) Position() koalex.Position    { return s.Pos }
func (s *ForStmt) Position() koalex.Position      { return s.Pos }
func (s *BreakStmt) Position() koalex.Position    { return s.Pos }
func (s *ContinueStmt) Position() koalex.Position { return s.Pos }
func (s *ReturnStmt) Position() koalex.Position   { return s.Pos }

func (*BlockStmt) stmtNode()    {}
func (*ExprStmt) stmtNode()     {}
func (*VarStmt) stmtNode()      {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*ForStmt) stmtNode()      {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*ReturnStmt) stmtNode()   {}

// NilLiteral is the nil constant.
type NilLiteral struct {
	Pos koalex.Position
}

// BoolLiteral is true or false.
type BoolLiteral struct {
	Pos   koalex.Position
	Value bool
}

// NumberLiteral is a numeric constant.
type NumberLiteral struct {
	Pos   koalex.Position
	Value float64
}

// StringLiteral is a string constant.
type StringLiteral struct {
	Pos   koalex.Position
	Value string
}

// GroupingExpr is a parenthesized expression.
type GroupingExpr struct {
	Pos  koalex.Position
	Expr Expr
}

// UnaryExpr is a prefix operator applied to an operand.
// Op is [koalex.SubToken] or [koalex.NotToken].
type UnaryExpr struct {
	Pos     koalex.Position
	Op      koalex.TokenKind
	Operand Expr
}

// BinaryExpr is an arithmetic, comparison, or equality operation.
type BinaryExpr struct {
	Pos   koalex.Position
	Op    koalex.TokenKind
	Left  Expr
	Right Expr
}

// LogicalExpr is a short-circuiting "and" or "or".
type LogicalExpr struct {
	Pos   koalex.Position
	Op    koalex.TokenKind
	Left  Expr
	Right Expr
}

// VariableExpr is a reference to a named variable.
type VariableExpr struct {
	Pos  koalex.Position
	Name string
}

// AssignExpr assigns to a named variable.
// Op is [koalex.AssignToken], one of the compound assignment tokens,
// [koalex.IncrementToken], or [koalex.DecrementToken].
// Value is nil for increment and decrement.
type AssignExpr struct {
	Pos   koalex.Position
	Name  string
	Op    koalex.TokenKind
	Value Expr
}

// TableField is a single key-value pair in a [TableExpr].
type TableField struct {
	Pos   koalex.Position
	Key   string
	Value Expr
}

// TableExpr is a table constructor.
type TableExpr struct {
	Pos    koalex.Position
	Fields []TableField
}

// GetExpr reads a property of a table.
// Exactly one of Name or Key is used:
// Key is non-nil for index expressions.
type GetExpr struct {
	Pos    koalex.Position
	Object Expr
	Name   string
	Key    Expr
}

// SetExpr assigns to a property of a table.
// Op is as in [AssignExpr].
type SetExpr struct {
	Pos    koalex.Position
	Object Expr
	Name   string
	Key    Expr
	Op     koalex.TokenKind
	Value  Expr
}

// CallExpr is a function call.
type CallExpr struct {
	Pos    koalex.Position
	Callee Expr
	Args   []Expr
}

// FunctionExpr is a function literal.
type FunctionExpr struct {
	Pos    koalex.Position
	Params []string
	Body   []Stmt
}

// SelfExpr is the implicit receiver.
type SelfExpr struct {
	Pos koalex.Position
}

func (e *NilLiteral) Position() koalex.Position    { return e.Pos }
func (e *BoolLiteral) Position() koalex.Position   { return e.Pos }
func (e *NumberLiteral) Position() koalex.Position { return e.Pos }
func (e *StringLiteral) Position() koalex.Position { return e.Pos }
func (e *GroupingExpr) Position() koalex.Position  { return e.Pos }
func (e *UnaryExpr) Position() koalex.Position     { return e.Pos }
func (e *BinaryExpr) Position() koalex.Position    { return e.Pos }
func (e *LogicalExpr) Position() koalex.Position   { return e.Pos }
func (e *VariableExpr) Position() koalex.Position  { return e.Pos }
func (e *AssignExpr) Position() koalex.Position    { return e.Pos }
func (e *TableExpr) Position() koalex.Position     { return e.Pos }
func (e *GetExpr) Position() koalex.Position       { return e.Pos }
func (e *SetExpr) Position() koalex.Position       { return e.Pos }
func (e *CallExpr) Position() koalex.Position      { return e.Pos }
func (e *FunctionExpr) Position() koalex.Position  { return e.Pos }
func (e *SelfExpr) Position() koalex.Position      { return e.Pos }

func (*NilLiteral) exprNode()    {}
func (*BoolLiteral) exprNode()   {}
func (*NumberLiteral) exprNode() {}
func (*StringLiteral) exprNode() {}
func (*GroupingExpr) exprNode()  {}
func (*UnaryExpr) exprNode()     {}
func (*BinaryExpr) exprNode()    {}
func (*LogicalExpr) exprNode()   {}
func (*VariableExpr) exprNode()  {}
func (*AssignExpr) exprNode()    {}
func (*TableExpr) exprNode()     {}
func (*GetExpr) exprNode()       {}
func (*SetExpr) exprNode()       {}
func (*CallExpr) exprNode()      {}
func (*FunctionExpr) exprNode()  {}
func (*SelfExpr) exprNode()      {}
