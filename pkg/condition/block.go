// Package condition models the Condition element of an IAM policy statement.
package condition

import (
	"fmt"
	"reflect"
	"sort"
)

// Block groups condition values by operator, then by condition key. Values
// of one operator/key pair form an insertion-ordered set.
type Block struct {
	ops map[string]map[string]*valueSet
}

type valueSet struct {
	order []any
	seen  map[string]struct{}
}

func newValueSet() *valueSet {
	return &valueSet{seen: make(map[string]struct{})}
}

func (s *valueSet) add(v any) {
	k := fmt.Sprintf("%T|%v", v, v)
	if _, ok := s.seen[k]; ok {
		return
	}
	s.seen[k] = struct{}{}
	s.order = append(s.order, v)
}

func New() *Block {
	return &Block{ops: make(map[string]map[string]*valueSet)}
}

// Add records values for key under operator. Repeated calls for the same
// pair union their values; nothing is ever replaced. A call that carries no
// values leaves the block untouched.
func (b *Block) Add(operator, key string, values ...any) *Block {
	normalized := Normalize(values...)
	if len(normalized) == 0 {
		return b
	}
	if b.ops == nil {
		b.ops = make(map[string]map[string]*valueSet)
	}
	keys, ok := b.ops[operator]
	if !ok {
		keys = make(map[string]*valueSet)
		b.ops[operator] = keys
	}
	set, ok := keys[key]
	if !ok {
		set = newValueSet()
		keys[key] = set
	}
	for _, v := range normalized {
		set.add(v)
	}
	return b
}

// Merge unions every entry of other into b.
func (b *Block) Merge(other *Block) *Block {
	if other == nil {
		return b
	}
	for _, op := range other.Operators() {
		for _, key := range other.Keys(op) {
			b.Add(op, key, other.Values(op, key)...)
		}
	}
	return b
}

// Len is the number of operator/key pairs.
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, keys := range b.ops {
		n += len(keys)
	}
	return n
}

func (b *Block) Empty() bool {
	return b.Len() == 0
}

func (b *Block) Operators() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.ops))
	for op := range b.ops {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

func (b *Block) Keys(operator string) []string {
	if b == nil {
		return nil
	}
	keys := b.ops[operator]
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Values returns a copy of the values recorded for operator and key.
func (b *Block) Values(operator, key string) []any {
	if b == nil {
		return nil
	}
	set, ok := b.ops[operator][key]
	if !ok {
		return nil
	}
	out := make([]any, len(set.order))
	copy(out, set.order)
	return out
}

func (b *Block) Clone() *Block {
	return New().Merge(b)
}

// Serialize projects the block into the IAM JSON shape. With collapse set,
// a key holding exactly one value is emitted as a scalar.
func (b *Block) Serialize(collapse bool) map[string]map[string]any {
	if b.Empty() {
		return nil
	}
	out := make(map[string]map[string]any, len(b.ops))
	for _, op := range b.Operators() {
		keys := make(map[string]any)
		for _, key := range b.Keys(op) {
			values := b.Values(op, key)
			if collapse && len(values) == 1 {
				keys[key] = values[0]
				continue
			}
			keys[key] = values
		}
		out[op] = keys
	}
	return out
}

// Normalize flattens values into strings, bools, int64, uint64 and float64.
// Slices and arrays are expanded, except []byte which becomes one string;
// nil entries are dropped. Any other type is
// formatted with %v.
func Normalize(values ...any) []any {
	var out []any
	for _, v := range values {
		out = appendNormalized(out, v)
	}
	return out
}

func appendNormalized(out []any, v any) []any {
	switch t := v.(type) {
	case nil:
		return out
	case string, bool, int64, uint64, float64:
		return append(out, t)
	case int:
		return append(out, int64(t))
	case int8:
		return append(out, int64(t))
	case int16:
		return append(out, int64(t))
	case int32:
		return append(out, int64(t))
	case uint:
		return append(out, uint64(t))
	case uint8:
		return append(out, uint64(t))
	case uint16:
		return append(out, uint64(t))
	case uint32:
		return append(out, uint64(t))
	case float32:
		return append(out, float64(t))
	case []byte:
		return append(out, string(t))
	case fmt.Stringer:
		return append(out, t.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			out = appendNormalized(out, rv.Index(i).Interface())
		}
		return out
	case reflect.String:
		return append(out, rv.String())
	}
	return append(out, fmt.Sprintf("%v", v))
}
