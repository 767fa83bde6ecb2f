package query

import (
	"cmp"
	"reflect"
	"strings"
	"time"
)

// Match evaluates c against a record's columns. A nil condition matches
// everything; a missing column is treated as NULL.
func Match(c Condition, cols map[string]any) bool {
	switch n := c.(type) {
	case nil:
		return true
	case Compare:
		v := normalize(cols[n.Field])
		want := normalize(n.Value)
		if v == nil || want == nil {
			return false
		}
		res, ok := compareValues(v, want)
		if !ok {
			return false
		}
		switch n.Op {
		case OpEq:
			return res == 0
		case OpLt:
			return res < 0
		case OpLte:
			return res <= 0
		case OpGt:
			return res > 0
		case OpGte:
			return res >= 0
		}
		return false
	case Null:
		return (normalize(cols[n.Field]) == nil) == n.IsNull
	case Search:
		term := strings.ToLower(n.Term)
		for _, f := range n.Fields {
			if s, ok := normalize(cols[f]).(string); ok && strings.Contains(strings.ToLower(s), term) {
				return true
			}
		}
		return false
	case And:
		for _, sub := range n {
			if !Match(sub, cols) {
				return false
			}
		}
		return true
	case Or:
		for _, sub := range n {
			if Match(sub, cols) {
				return true
			}
		}
		return false
	}
	return false
}

// CompareColumns orders two column values; NULLs sort last.
func CompareColumns(a, b any) int {
	na, nb := normalize(a), normalize(b)
	switch {
	case na == nil && nb == nil:
		return 0
	case na == nil:
		return 1
	case nb == nil:
		return -1
	}
	res, _ := compareValues(na, nb)
	return res
}

// normalize folds the column types stores produce into
// int64, float64, string, bool or time.Time. nil stays nil.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	}
	return v
}

func compareValues(a, b any) (int, bool) {
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, y), true
		case float64:
			return cmp.Compare(float64(x), y), true
		}
	case float64:
		switch y := b.(type) {
		case float64:
			return cmp.Compare(x, y), true
		case int64:
			return cmp.Compare(x, float64(y)), true
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y), true
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, true
			case !x:
				return -1, true
			default:
				return 1, true
			}
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), true
		}
	}
	return 0, false
}
