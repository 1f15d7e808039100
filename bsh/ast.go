package bsh

type Node interface {
	Pos() Position
}

type Statement interface {
	Node
	stmtNode()
}

type Expression interface {
	Node
	exprNode()
}

// Program is a parsed script.
type Program struct {
	Statements []Statement
	source     string
}

func (p *Program) Pos() Position {
	if len(p.Statements) == 0 {
		return Position{}
	}
	return p.Statements[0].Pos()
}

// TypeRef names a declared type. Dims counts trailing [] pairs.
type TypeRef struct {
	Name     string
	Dims     int
	position Position
}

func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	name := t.Name
	for i := 0; i < t.Dims; i++ {
		name += "[]"
	}
	return name
}

type BlockStmt struct {
	Statements []Statement
	position   Position
}

func (s *BlockStmt) stmtNode()     {}
func (s *BlockStmt) Pos() Position { return s.position }

type VarDeclarator struct {
	Name     string
	Init     Expression
	position Position
}

type VarDeclStmt struct {
	Type     *TypeRef
	Vars     []VarDeclarator
	position Position
}

func (s *VarDeclStmt) stmtNode()     {}
func (s *VarDeclStmt) Pos() Position { return s.position }

type Param struct {
	Type *TypeRef
	Name string
}

// MethodDecl declares a scripted method. ReturnType is nil for loosely typed
// methods.
type MethodDecl struct {
	ReturnType *TypeRef
	Name       string
	Params     []Param
	Body       *BlockStmt
	position   Position
}

func (s *MethodDecl) stmtNode()     {}
func (s *MethodDecl) Pos() Position { return s.position }

type ExprStmt struct {
	Expr     Expression
	position Position
}

func (s *ExprStmt) stmtNode()     {}
func (s *ExprStmt) Pos() Position { return s.position }

type EmptyStmt struct {
	position Position
}

func (s *EmptyStmt) stmtNode()     {}
func (s *EmptyStmt) Pos() Position { return s.position }

type IfStmt struct {
	Condition Expression
	Then      Statement
	Else      Statement
	position  Position
}

func (s *IfStmt) stmtNode()     {}
func (s *IfStmt) Pos() Position { return s.position }

type WhileStmt struct {
	Condition Expression
	Body      Statement
	position  Position
}

func (s *WhileStmt) stmtNode()     {}
func (s *WhileStmt) Pos() Position { return s.position }

type DoWhileStmt struct {
	Body      Statement
	Condition Expression
	position  Position
}

func (s *DoWhileStmt) stmtNode()     {}
func (s *DoWhileStmt) Pos() Position { return s.position }

type ForStmt struct {
	Init      []Statement
	Condition Expression
	Update    []Expression
	Body      Statement
	position  Position
}

func (s *ForStmt) stmtNode()     {}
func (s *ForStmt) Pos() Position { return s.position }

type ForEachStmt struct {
	Type     *TypeRef
	Name     string
	Iterable Expression
	Body     Statement
	position Position
}

func (s *ForEachStmt) stmtNode()     {}
func (s *ForEachStmt) Pos() Position { return s.position }

type ReturnStmt struct {
	Value    Expression
	position Position
}

func (s *ReturnStmt) stmtNode()     {}
func (s *ReturnStmt) Pos() Position { return s.position }

type BreakStmt struct {
	position Position
}

func (s *BreakStmt) stmtNode()     {}
func (s *BreakStmt) Pos() Position { return s.position }

type ContinueStmt struct {
	position Position
}

func (s *ContinueStmt) stmtNode()     {}
func (s *ContinueStmt) Pos() Position { return s.position }

type ThrowStmt struct {
	Value    Expression
	position Position
}

func (s *ThrowStmt) stmtNode()     {}
func (s *ThrowStmt) Pos() Position { return s.position }

type CatchClause struct {
	Type *TypeRef
	Name string
	Body *BlockStmt
}

type TryStmt struct {
	Body     *BlockStmt
	Catches  []CatchClause
	Finally  *BlockStmt
	position Position
}

func (s *TryStmt) stmtNode()     {}
func (s *TryStmt) Pos() Position { return s.position }

type Identifier struct {
	Name     string
	position Position
}

func (e *Identifier) exprNode()     {}
func (e *Identifier) Pos() Position { return e.position }

type IntegerLiteral struct {
	Value    int64
	Long     bool
	position Position
}

func (e *IntegerLiteral) exprNode()     {}
func (e *IntegerLiteral) Pos() Position { return e.position }

type FloatLiteral struct {
	Value    float64
	Single   bool
	position Position
}

func (e *FloatLiteral) exprNode()     {}
func (e *FloatLiteral) Pos() Position { return e.position }

type StringLiteral struct {
	Value    string
	position Position
}

func (e *StringLiteral) exprNode()     {}
func (e *StringLiteral) Pos() Position { return e.position }

type CharLiteral struct {
	Value    rune
	position Position
}

func (e *CharLiteral) exprNode()     {}
func (e *CharLiteral) Pos() Position { return e.position }

type BoolLiteral struct {
	Value    bool
	position Position
}

func (e *BoolLiteral) exprNode()     {}
func (e *BoolLiteral) Pos() Position { return e.position }

type NullLiteral struct {
	position Position
}

func (e *NullLiteral) exprNode()     {}
func (e *NullLiteral) Pos() Position { return e.position }

type VoidLiteral struct {
	position Position
}

func (e *VoidLiteral) exprNode()     {}
func (e *VoidLiteral) Pos() Position { return e.position }

type ArrayLiteral struct {
	Elements []Expression
	position Position
}

func (e *ArrayLiteral) exprNode()     {}
func (e *ArrayLiteral) Pos() Position { return e.position }

type UnaryExpr struct {
	Operator TokenType
	Right    Expression
	position Position
}

func (e *UnaryExpr) exprNode()     {}
func (e *UnaryExpr) Pos() Position { return e.position }

type BinaryExpr struct {
	Left     Expression
	Operator TokenType
	Right    Expression
	position Position
}

func (e *BinaryExpr) exprNode()     {}
func (e *BinaryExpr) Pos() Position { return e.position }

// AssignExpr covers plain and compound assignment.
type AssignExpr struct {
	Target   Expression
	Operator TokenType
	Value    Expression
	position Position
}

func (e *AssignExpr) exprNode()     {}
func (e *AssignExpr) Pos() Position { return e.position }

type IncDecExpr struct {
	Target   Expression
	Operator TokenType
	Prefix   bool
	position Position
}

func (e *IncDecExpr) exprNode()     {}
func (e *IncDecExpr) Pos() Position { return e.position }

type TernaryExpr struct {
	Condition Expression
	Then      Expression
	Else      Expression
	position  Position
}

func (e *TernaryExpr) exprNode()     {}
func (e *TernaryExpr) Pos() Position { return e.position }

type InstanceofExpr struct {
	Left     Expression
	Type     *TypeRef
	position Position
}

func (e *InstanceofExpr) exprNode()     {}
func (e *InstanceofExpr) Pos() Position { return e.position }

type CastExpr struct {
	Type     *TypeRef
	Value    Expression
	position Position
}

func (e *CastExpr) exprNode()     {}
func (e *CastExpr) Pos() Position { return e.position }

type CallExpr struct {
	Callee   Expression
	Args     []Expression
	position Position
}

func (e *CallExpr) exprNode()     {}
func (e *CallExpr) Pos() Position { return e.position }

type MemberExpr struct {
	Object   Expression
	Property string
	position Position
}

func (e *MemberExpr) exprNode()     {}
func (e *MemberExpr) Pos() Position { return e.position }

type IndexExpr struct {
	Object   Expression
	Index    Expression
	position Position
}

func (e *IndexExpr) exprNode()     {}
func (e *IndexExpr) Pos() Position { return e.position }

// NewExpr constructs an exception, a map, or an array. Sizes holds the
// dimension expressions of `new int[n]`; Init holds the elements of
// `new int[] {1, 2}`.
type NewExpr struct {
	Type     *TypeRef
	Args     []Expression
	Sizes    []Expression
	Init     *ArrayLiteral
	position Position
}

func (e *NewExpr) exprNode()     {}
func (e *NewExpr) Pos() Position { return e.position }
