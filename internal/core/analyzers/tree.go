package analyzers

import "github.com/tidwall/gjson"

// Kind is the type of a JSON tree node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Member is one key/value pair of an object, in document order.
type Member struct {
	Key   string
	Value *Node
}

// Node is a parsed JSON value. Objects keep their members in document order,
// duplicates included.
type Node struct {
	Kind    Kind
	Bool    bool
	Number  float64
	String  string
	Items   []*Node
	Members []Member
}

// IsContainer reports whether n is an array or an object.
func (n *Node) IsContainer() bool {
	return n.Kind == KindArray || n.Kind == KindObject
}

// Member returns the first member named key, or nil.
func (n *Node) Member(key string) *Node {
	for _, m := range n.Members {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// buildTree converts a gjson result into a Node tree.
func buildTree(r gjson.Result) *Node {
	switch r.Type {
	case gjson.Null:
		return &Node{Kind: KindNull}
	case gjson.False, gjson.True:
		return &Node{Kind: KindBool, Bool: r.Bool()}
	case gjson.Number:
		return &Node{Kind: KindNumber, Number: r.Float()}
	case gjson.String:
		return &Node{Kind: KindString, String: r.String()}
	}

	if r.IsArray() {
		n := &Node{Kind: KindArray, Items: []*Node{}}
		r.ForEach(func(_, v gjson.Result) bool {
			n.Items = append(n.Items, buildTree(v))
			return true
		})
		return n
	}

	n := &Node{Kind: KindObject, Members: []Member{}}
	r.ForEach(func(k, v gjson.Result) bool {
		n.Members = append(n.Members, Member{Key: k.String(), Value: buildTree(v)})
		return true
	})
	return n
}
