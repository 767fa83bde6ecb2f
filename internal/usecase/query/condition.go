package query

// Condition is a node of a filter tree. Stores translate it into their
// native form; Match evaluates it in memory.
type Condition interface {
	condition()
}

type Op int

const (
	OpEq Op = iota
	OpLt
	OpLte
	OpGt
	OpGte
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	default:
		return "?"
	}
}

type Compare struct {
	Field string
	Op    Op
	Value any
}

type Null struct {
	Field  string
	IsNull bool
}

// Search matches when Term is a case-insensitive substring of any of Fields.
type Search struct {
	Term   string
	Fields []string
}

type And []Condition

type Or []Condition

func (Compare) condition() {}
func (Null) condition()    {}
func (Search) condition()  {}
func (And) condition()     {}
func (Or) condition()      {}

func Eq(field string, v any) Condition  { return Compare{Field: field, Op: OpEq, Value: v} }
func Lt(field string, v any) Condition  { return Compare{Field: field, Op: OpLt, Value: v} }
func Lte(field string, v any) Condition { return Compare{Field: field, Op: OpLte, Value: v} }
func Gt(field string, v any) Condition  { return Compare{Field: field, Op: OpGt, Value: v} }
func Gte(field string, v any) Condition { return Compare{Field: field, Op: OpGte, Value: v} }

func IsNull(field string) Condition  { return Null{Field: field, IsNull: true} }
func NotNull(field string) Condition { return Null{Field: field} }

func Contains(term string, fields ...string) Condition {
	return Search{Term: term, Fields: fields}
}

// All joins conditions with AND, dropping nil ones. It returns nil when
// nothing is left.
func All(conds ...Condition) Condition {
	out := compact(conds)
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return And(out)
}

func Any(conds ...Condition) Condition {
	out := compact(conds)
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return Or(out)
}

func compact(conds []Condition) []Condition {
	out := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Fields lists every field referenced by c.
func Fields(c Condition) []string {
	var out []string
	var walk func(Condition)
	walk = func(c Condition) {
		switch n := c.(type) {
		case Compare:
			out = append(out, n.Field)
		case Null:
			out = append(out, n.Field)
		case Search:
			out = append(out, n.Fields...)
		case And:
			for _, sub := range n {
				walk(sub)
			}
		case Or:
			for _, sub := range n {
				walk(sub)
			}
		}
	}
	walk(c)
	return out
}
