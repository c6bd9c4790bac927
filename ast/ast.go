// Copyright © 2024 The ELPS authors

// Package ast defines the syntax tree produced by the Luau parser.
//
// Nodes are immutable once the parser returns them. Expression nodes are
// compared by identity, which lets analysis results key maps on them.
package ast

// Node is implemented by every statement and expression.
type Node interface {
	Loc() Location
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stat is a statement node.
type Stat interface {
	Node
	statNode()
}

// Local is a local variable binding introduced by local, a function
// parameter, or a loop variable.
type Local struct {
	Name       string
	Location   Location
	Annotation Type
	Shadow     *Local
}

// GenericName is a generic type parameter declared on a function or alias.
type GenericName struct {
	Name     string
	Location Location
}

type ExprGroup struct {
	Location Location
	Expr     Expr
}

type ExprConstantNil struct {
	Location Location
}

type ExprConstantBool struct {
	Location Location
	Value    bool
}

type ExprConstantNumber struct {
	Location Location
	Value    float64
	Text     string
}

type ExprConstantString struct {
	Location Location
	Value    string
}

type ExprLocal struct {
	Location Location
	Local    *Local
}

type ExprGlobal struct {
	Location Location
	Name     string
}

type ExprVarargs struct {
	Location Location
}

// ExprCall is a call expression. Self is set when the call used method
// syntax (obj:method(...)).
type ExprCall struct {
	Location    Location
	Func        Expr
	Args        []Expr
	Self        bool
	ArgLocation Location
}

// ExprIndexName is a.b or a:b. Op holds the separator byte.
type ExprIndexName struct {
	Location      Location
	Expr          Expr
	Index         string
	IndexLocation Location
	Op            byte
}

type ExprIndexExpr struct {
	Location Location
	Expr     Expr
	Index    Expr
}

// ExprFunction is a function literal or the body of a function
// statement. Self is non-nil for functions declared with ':'.
type ExprFunction struct {
	Location         Location
	Generics         []*GenericName
	Self             *Local
	Args             []*Local
	Vararg           bool
	VarargLocation   Location
	VarargAnnotation Type
	ReturnAnnotation *TypeList
	Body             *StatBlock
	DebugName        string
	ArgLocation      Location
}

// TableItemKind classifies table constructor entries.
type TableItemKind int

const (
	TableItemList    TableItemKind = iota // value
	TableItemRecord                       // name = value
	TableItemGeneral                      // [key] = value
)

type TableItem struct {
	Kind  TableItemKind
	Key   Expr // *ExprConstantString for records, nil for list items
	Value Expr
}

type ExprTable struct {
	Location Location
	Items    []TableItem
}

type ExprUnary struct {
	Location Location
	Op       string
	Expr     Expr
}

type ExprBinary struct {
	Location Location
	Op       string
	Left     Expr
	Right    Expr
}

type ExprTypeAssertion struct {
	Location   Location
	Expr       Expr
	Annotation Type
}

type ExprIfElse struct {
	Location  Location
	Condition Expr
	TrueExpr  Expr
	FalseExpr Expr
}

// ExprError stands in for an expression the parser could not read.
type ExprError struct {
	Location    Location
	Expressions []Expr
	Message     string
}

func (n *ExprGroup) Loc() Location          { return n.Location }
func (n *ExprConstantNil) Loc() Location    { return n.Location }
func (n *ExprConstantBool) Loc() Location   { return n.Location }
func (n *ExprConstantNumber) Loc() Location { return n.Location }
func (n *ExprConstantString) Loc() Location { return n.Location }
func (n *ExprLocal) Loc() Location          { return n.Location }
func (n *ExprGlobal) Loc() Location         { return n.Location }
func (n *ExprVarargs) Loc() Location        { return n.Location }
func (n *ExprCall) Loc() Location           { return n.Location }
func (n *ExprIndexName) Loc() Location      { return n.Location }
func (n *ExprIndexExpr) Loc() Location      { return n.Location }
func (n *ExprFunction) Loc() Location       { return n.Location }
func (n *ExprTable) Loc() Location          { return n.Location }
func (n *ExprUnary) Loc() Location          { return n.Location }
func (n *ExprBinary) Loc() Location         { return n.Location }
func (n *ExprTypeAssertion) Loc() Location  { return n.Location }
func (n *ExprIfElse) Loc() Location         { return n.Location }
func (n *ExprError) Loc() Location          { return n.Location }

func (*ExprGroup) exprNode()          {}
func (*ExprConstantNil) exprNode()    {}
func (*ExprConstantBool) exprNode()   {}
func (*ExprConstantNumber) exprNode() {}
func (*ExprConstantString) exprNode() {}
func (*ExprLocal) exprNode()          {}
func (*ExprGlobal) exprNode()         {}
func (*ExprVarargs) exprNode()        {}
func (*ExprCall) exprNode()           {}
func (*ExprIndexName) exprNode()      {}
func (*ExprIndexExpr) exprNode()      {}
func (*ExprFunction) exprNode()       {}
func (*ExprTable) exprNode()          {}
func (*ExprUnary) exprNode()          {}
func (*ExprBinary) exprNode()         {}
func (*ExprTypeAssertion) exprNode()  {}
func (*ExprIfElse) exprNode()         {}
func (*ExprError) exprNode()          {}

type StatBlock struct {
	Location Location
	Body     []Stat
}

type StatIf struct {
	Location  Location
	Condition Expr
	ThenBody  *StatBlock
	ElseBody  Stat // *StatBlock, *StatIf or nil
}

type StatWhile struct {
	Location  Location
	Condition Expr
	Body      *StatBlock
}

type StatRepeat struct {
	Location  Location
	Body      *StatBlock
	Condition Expr
}

type StatFor struct {
	Location Location
	Var      *Local
	From     Expr
	To       Expr
	Step     Expr
	Body     *StatBlock
}

type StatForIn struct {
	Location Location
	Vars     []*Local
	Values   []Expr
	Body     *StatBlock
}

type StatBreak struct {
	Location Location
}

type StatContinue struct {
	Location Location
}

type StatReturn struct {
	Location Location
	List     []Expr
}

type StatExpr struct {
	Location Location
	Expr     Expr
}

type StatLocal struct {
	Location Location
	Vars     []*Local
	Values   []Expr
}

type StatAssign struct {
	Location Location
	Vars     []Expr
	Values   []Expr
}

type StatCompoundAssign struct {
	Location Location
	Op       string
	Var      Expr
	Value    Expr
}

type StatFunction struct {
	Location Location
	Name     Expr
	Func     *ExprFunction
}

type StatLocalFunction struct {
	Location Location
	Name     *Local
	Func     *ExprFunction
}

type StatTypeAlias struct {
	Location Location
	Name     string
	Generics []*GenericName
	Type     Type
	Exported bool
}

// StatDeclareGlobal is `declare name: T` in a definition file.
type StatDeclareGlobal struct {
	Location Location
	Name     string
	Type     Type
}

// StatDeclareFunction is `declare function name(...)` in a definition file.
type StatDeclareFunction struct {
	Location         Location
	Name             string
	Generics         []*GenericName
	Params           TypeList
	ParamNames       []*ArgumentName
	ReturnAnnotation TypeList
}

// DeclaredClassProp is a property or method of a declared class.
type DeclaredClassProp struct {
	Name     string
	Type     Type
	IsMethod bool
	Location Location
}

// StatDeclareClass is `declare class Name [extends Super] ... end`.
type StatDeclareClass struct {
	Location  Location
	Name      string
	SuperName string
	Props     []DeclaredClassProp
}

// StatError stands in for a statement the parser could not read.
type StatError struct {
	Location    Location
	Expressions []Expr
	Statements  []Stat
}

func (n *StatBlock) Loc() Location           { return n.Location }
func (n *StatIf) Loc() Location              { return n.Location }
func (n *StatWhile) Loc() Location           { return n.Location }
func (n *StatRepeat) Loc() Location          { return n.Location }
func (n *StatFor) Loc() Location             { return n.Location }
func (n *StatForIn) Loc() Location           { return n.Location }
func (n *StatBreak) Loc() Location           { return n.Location }
func (n *StatContinue) Loc() Location        { return n.Location }
func (n *StatReturn) Loc() Location          { return n.Location }
func (n *StatExpr) Loc() Location            { return n.Location }
func (n *StatLocal) Loc() Location           { return n.Location }
func (n *StatAssign) Loc() Location          { return n.Location }
func (n *StatCompoundAssign) Loc() Location  { return n.Location }
func (n *StatFunction) Loc() Location        { return n.Location }
func (n *StatLocalFunction) Loc() Location   { return n.Location }
func (n *StatTypeAlias) Loc() Location       { return n.Location }
func (n *StatDeclareGlobal) Loc() Location   { return n.Location }
func (n *StatDeclareFunction) Loc() Location { return n.Location }
func (n *StatDeclareClass) Loc() Location    { return n.Location }
func (n *StatError) Loc() Location           { return n.Location }

func (*StatBlock) statNode()           {}
func (*StatIf) statNode()              {}
func (*StatWhile) statNode()           {}
func (*StatRepeat) statNode()          {}
func (*StatFor) statNode()             {}
func (*StatForIn) statNode()           {}
func (*StatBreak) statNode()           {}
func (*StatContinue) statNode()        {}
func (*StatReturn) statNode()          {}
func (*StatExpr) statNode()            {}
func (*StatLocal) statNode()           {}
func (*StatAssign) statNode()          {}
func (*StatCompoundAssign) statNode()  {}
func (*StatFunction) statNode()        {}
func (*StatLocalFunction) statNode()   {}
func (*StatTypeAlias) statNode()       {}
func (*StatDeclareGlobal) statNode()   {}
func (*StatDeclareFunction) statNode() {}
func (*StatDeclareClass) statNode()    {}
func (*StatError) statNode()           {}
