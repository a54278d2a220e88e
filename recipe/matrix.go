package recipe

import (
	"sort"
	"strings"
)

// Matrix lists candidate values per setting.
type Matrix struct {
	Settings map[string][]string
}

// ParseMatrix builds a matrix from "key=v1,v2" arguments. Repeated keys
// accumulate values.
func ParseMatrix(args []string) (Matrix, error) {
	m := Matrix{Settings: make(map[string][]string)}
	for _, arg := range args {
		key, value, err := ParseSetting(arg)
		if err != nil {
			return Matrix{}, err
		}
		for _, v := range strings.FieldsFunc(value, isComma) {
			m.Settings[key] = append(m.Settings[key], v)
		}
	}
	return m, nil
}

func isComma(r rune) bool { return r == ',' }

// Combinations returns all cartesian product combinations of the matrix.
// Keys are sorted alphabetically, and combinations are built layer by layer,
// so the String of each result follows the same order.
func (m *Matrix) Combinations() []Settings {
	if len(m.Settings) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m.Settings))
	for k := range m.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Start with first key's values
	result := make([]Settings, 0, len(m.Settings[keys[0]]))
	for _, v := range m.Settings[keys[0]] {
		result = append(result, Settings{keys[0]: v})
	}

	// Combine with subsequent layers
	for _, k := range keys[1:] {
		values := m.Settings[k]
		next := make([]Settings, 0, len(result)*len(values))
		for _, prev := range result {
			for _, v := range values {
				next = append(next, prev.Merge(Settings{k: v}))
			}
		}
		result = next
	}
	return result
}

// CombinationCount returns the total number of cartesian product combinations.
func (m *Matrix) CombinationCount() int {
	if len(m.Settings) == 0 {
		return 0
	}
	count := 1
	for _, v := range m.Settings {
		count *= len(v)
	}
	return count
}
