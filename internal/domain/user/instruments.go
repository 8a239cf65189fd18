package user

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// DecodeInstruments reads the instruments JSON column. Malformed values decode to nil.
func DecodeInstruments(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// EncodeInstruments normalizes and de-duplicates instrument names.
func EncodeInstruments(in []string) datatypes.JSON {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	b, _ := json.Marshal(out)
	return datatypes.JSON(b)
}
