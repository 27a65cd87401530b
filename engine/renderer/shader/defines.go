package shader

import "slices"

// Define is a single #define substitution: every literal occurrence of Key is replaced with Value.
type Define struct {
	Key   string
	Value string
}

// defineSet is an insertion-ordered map of define directives.
type defineSet struct {
	order []string
	value map[string]string
}

func newDefineSet() *defineSet {
	return &defineSet{value: make(map[string]string)}
}

// set stores value under key, keeping the original position of an existing key.
func (d *defineSet) set(key, value string) {
	if _, ok := d.value[key]; !ok {
		d.order = append(d.order, key)
	}
	d.value[key] = value
}

// setIfAbsent stores value only when key has no entry yet.
func (d *defineSet) setIfAbsent(key, value string) {
	if _, ok := d.value[key]; ok {
		return
	}
	d.order = append(d.order, key)
	d.value[key] = value
}

func (d *defineSet) len() int {
	return len(d.order)
}

// list returns the defines in insertion order.
func (d *defineSet) list() []Define {
	out := make([]Define, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, Define{Key: k, Value: d.value[k]})
	}
	return out
}

// substitutionOrder returns the defines sorted by key length, longest first. Keys of
// equal length keep their insertion order.
func (d *defineSet) substitutionOrder() []Define {
	out := d.list()
	slices.SortStableFunc(out, func(a, b Define) int {
		return len(b.Key) - len(a.Key)
	})
	return out
}

func (d *defineSet) clone() *defineSet {
	c := &defineSet{
		order: slices.Clone(d.order),
		value: make(map[string]string, len(d.value)),
	}
	for k, v := range d.value {
		c.value[k] = v
	}
	return c
}
