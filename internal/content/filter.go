package content

import (
	"strconv"
	"strings"

	"github.com/GyroZepelix/library-cms/internal/validation"
)

// stripIDNoise removes the brackets and whitespace clients wrap id lists in,
// e.g. "[1, 2]".
var stripIDNoise = strings.NewReplacer("[", "", "]", "", " ", "", "\t", "", "\n", "", "\r", "")

// ParseIDSet normalises the values of one query parameter into a set of
// entity ids. Each value may be a single id or a comma-separated list with
// optional brackets and spaces; repeated keys (?tags=1&tags=2) are merged.
// Empty tokens are skipped and duplicates removed, keeping first-occurrence
// order. A token that is not a positive integer is a validation error for
// field name.
func ParseIDSet(name string, values []string) ([]int64, error) {
	var ids []int64
	seen := make(map[int64]bool)

	for _, raw := range values {
		for _, token := range strings.Split(stripIDNoise.Replace(raw), ",") {
			if token == "" {
				continue
			}
			id, err := strconv.ParseInt(token, 10, 64)
			if err != nil || id <= 0 {
				return nil, validation.NewError(name, "must contain only positive integer ids")
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	return ids, nil
}

// ParseID parses one optional id. An empty value yields nil.
func ParseID(name, raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, validation.NewError(name, "must be a positive integer id")
	}
	return &id, nil
}
