package vocab

import "strings"

// Vocabulary is an immutable lowercase class name to id table.
type Vocabulary struct {
	ids   map[string]int
	names []string
}

// New builds a vocabulary where each name's id is its position in names.
// Names are normalised; later duplicates keep the first id.
func New(names []string) *Vocabulary {
	v := &Vocabulary{
		ids:   make(map[string]int, len(names)),
		names: make([]string, len(names)),
	}
	for i, name := range names {
		n := Normalize(name)
		v.names[i] = n
		if _, ok := v.ids[n]; !ok {
			v.ids[n] = i
		}
	}
	return v
}

// Normalize trims surrounding whitespace and lowercases a class name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (v *Vocabulary) ID(name string) (int, bool) {
	id, ok := v.ids[Normalize(name)]
	return id, ok
}

func (v *Vocabulary) Name(id int) (string, bool) {
	if id < 0 || id >= len(v.names) {
		return "", false
	}
	return v.names[id], true
}

func (v *Vocabulary) Len() int { return len(v.names) }

// Names returns the class names in id order.
func (v *Vocabulary) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}
