package vision

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"rollcall/internal/credits"
	"rollcall/internal/textutil"
)

const valueCutset = " ;,•·"

type pairResponse struct {
	Entries []pairEntry `json:"entries"`
}

type pairEntry struct {
	Key    string      `json:"key"`
	Values stringsList `json:"values"`
}

// stringsList accepts either a JSON array of scalars or a single scalar.
type stringsList []string

func (l *stringsList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] != '[' {
		s, err := scalarString(data)
		if err != nil {
			return err
		}
		*l = stringsList{s}
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(stringsList, 0, len(raw))
	for _, item := range raw {
		s, err := scalarString(item)
		if err != nil {
			return err
		}
		out = append(out, s)
	}
	*l = out
	return nil
}

func scalarString(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return strings.TrimSpace(string(bytes.TrimSpace(data))), nil
}

// normalizePairs cleans model output into an Extraction. Labels and values
// are whitespace-collapsed; values holding several names are split on
// ; • · newlines, or a comma followed by a capitalised word. Entries left
// without a label or without values are dropped.
func normalizePairs(resp pairResponse) credits.Extraction {
	var out credits.Extraction
	for _, entry := range resp.Entries {
		label := textutil.CollapseSpace(entry.Key)
		if label == "" {
			continue
		}
		var values []string
		for _, raw := range entry.Values {
			values = append(values, splitValue(raw)...)
		}
		if len(values) == 0 {
			continue
		}
		out.Entries = append(out.Entries, credits.Entry{Label: label, Values: values})
	}
	return out
}

func splitValue(raw string) []string {
	runes := []rune(raw)
	var (
		parts []string
		cur   strings.Builder
	)
	flush := func() {
		part := strings.Trim(textutil.CollapseSpace(cur.String()), valueCutset)
		if part != "" {
			parts = append(parts, part)
		}
		cur.Reset()
	}
	for i, r := range runes {
		switch {
		case r == ';', r == '\n', r == '•', r == '·':
			flush()
			continue
		case r == ',' && capitalFollows(runes[i+1:]):
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return parts
}

func capitalFollows(rest []rune) bool {
	for _, r := range rest {
		if unicode.IsSpace(r) {
			continue
		}
		return r >= 'A' && r <= 'Z'
	}
	return false
}

// creditsPayload renders the view as {"credits": {...}} without HTML
// escaping so names keep their original characters.
func creditsPayload(view credits.View) (string, error) {
	if view == nil {
		view = credits.View{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]credits.View{"credits": view}); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
