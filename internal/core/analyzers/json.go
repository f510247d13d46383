package analyzers

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/JonMunkholm/fileparser/internal/core"
)

// JSONFacts is the key_info of a .json upload.
type JSONFacts struct {
	StructureType string   `json:"structure_type"`
	KeyFields     []string `json:"key_fields"`
	RecordCount   int      `json:"record_count"`
	HasNestedData bool     `json:"has_nested_data"`
}

// ParseJSON validates the document and describes its top-level shape.
func ParseJSON(content string, limits core.Limits) (any, error) {
	if !gjson.Valid(content) {
		return nil, fmt.Errorf("%w: invalid JSON", core.ErrMalformedDocument)
	}
	root := buildTree(gjson.Parse(content))

	facts := &JSONFacts{KeyFields: []string{}}
	switch root.Kind {
	case KindArray:
		facts.StructureType = "array"
		facts.RecordCount = len(root.Items)
		facts.KeyFields = arrayKeyFields(root, limits.KeyFieldSample, limits.MaxKeyFields)
		for _, item := range root.Items {
			if item.Kind == KindArray || hasContainerMember(item) {
				facts.HasNestedData = true
				break
			}
		}

	case KindObject:
		facts.StructureType = "object"
		facts.KeyFields = objectKeyFields(root, limits.MaxKeyFields)
		facts.RecordCount = objectRecordCount(root)
		facts.HasNestedData = hasContainerMember(root)

	default:
		facts.StructureType = "scalar"
	}

	return facts, nil
}

// arrayKeyFields unions object keys over the first sample elements in
// first-seen order.
func arrayKeyFields(root *Node, sample, max int) []string {
	keys := []string{}
	seen := make(map[string]bool)
	for i, item := range root.Items {
		if i >= sample {
			break
		}
		if item.Kind != KindObject {
			continue
		}
		for _, m := range item.Members {
			if seen[m.Key] {
				continue
			}
			if len(keys) >= max {
				return keys
			}
			seen[m.Key] = true
			keys = append(keys, m.Key)
		}
	}
	return keys
}

func objectKeyFields(root *Node, max int) []string {
	keys := []string{}
	seen := make(map[string]bool)
	for _, m := range root.Members {
		if seen[m.Key] || len(keys) >= max {
			continue
		}
		seen[m.Key] = true
		keys = append(keys, m.Key)
	}
	return keys
}

// objectRecordCount treats an object of objects as a keyed collection and
// otherwise looks for a "data" array envelope.
func objectRecordCount(root *Node) int {
	if len(root.Members) == 0 {
		return 0
	}
	allObjects := true
	for _, m := range root.Members {
		if m.Value.Kind != KindObject {
			allObjects = false
			break
		}
	}
	if allObjects {
		return len(root.Members)
	}
	if data := root.Member("data"); data != nil && data.Kind == KindArray {
		return len(data.Items)
	}
	return 0
}

func hasContainerMember(n *Node) bool {
	for _, m := range n.Members {
		if m.Value.IsContainer() {
			return true
		}
	}
	return false
}

// SummarizeJSON describes the structure and leading key fields.
func SummarizeJSON(facts any) string {
	f, ok := facts.(*JSONFacts)
	if !ok {
		return ""
	}
	summary := fmt.Sprintf("Structure: %s with %d %s.",
		f.StructureType, f.RecordCount, plural(f.RecordCount, "record", "records"))
	if len(f.KeyFields) > 0 {
		fields := f.KeyFields
		if len(fields) > 5 {
			fields = fields[:5]
		}
		summary += " Key fields: " + strings.Join(fields, ", ") + "."
	}
	return summary
}
