package depot

import (
	"github.com/TheBitDrifter/mask"
)

type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
)

type compositeNode struct {
	op       Operation
	children []QueryNode
	keys     []TypeKey
}

type leafNode struct {
	keys []TypeKey
}

type query struct {
	root QueryNode
}

func newQuery() Query {
	return &query{}
}

func newCompositeNode(op Operation, keys []TypeKey) *compositeNode {
	return &compositeNode{
		op:       op,
		children: make([]QueryNode, 0),
		keys:     keys,
	}
}

// NewLeafNode matches archetypes holding every one of keys.
func NewLeafNode(keys ...TypeKey) QueryNode {
	return &leafNode{keys: keys}
}

// nodeMask builds the mask of keys known to storage. missing reports whether any key
// has never been registered, in which case no archetype can hold it.
func nodeMask(keys []TypeKey, storage Storage) (m mask.Mask, missing bool) {
	for _, key := range keys {
		bit, ok := storage.RowIndexFor(key)
		if !ok {
			missing = true
			continue
		}
		m.Mark(bit)
	}
	return m, missing
}

func (n *compositeNode) Evaluate(archetype *Archetype, storage Storage) bool {
	keysMask, missing := nodeMask(n.keys, storage)
	archeMask := storage.Signature(archetype)

	switch n.op {
	case OpAnd:
		if missing || !archeMask.ContainsAll(keysMask) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(archetype, storage) {
				return false
			}
		}
		return true

	case OpOr:
		if archeMask.ContainsAny(keysMask) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(archetype, storage) {
				return true
			}
		}
		return false

	case OpNot:
		if len(n.children) == 0 {
			return archeMask.ContainsNone(keysMask)
		}
		for _, child := range n.children {
			if child.Evaluate(archetype, storage) {
				return false
			}
		}
		return !archeMask.ContainsAny(keysMask)
	}
	return false
}

func (n *leafNode) Evaluate(archetype *Archetype, storage Storage) bool {
	keysMask, missing := nodeMask(n.keys, storage)
	if missing {
		return false
	}
	archeMask := storage.Signature(archetype)
	return archeMask.ContainsAll(keysMask)
}

func (q *query) And(items ...interface{}) QueryNode {
	keys, children := q.processItems(items...)
	node := newCompositeNode(OpAnd, keys)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Or(items ...interface{}) QueryNode {
	keys, children := q.processItems(items...)
	node := newCompositeNode(OpOr, keys)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Not(items ...interface{}) QueryNode {
	keys, children := q.processItems(items...)
	node := newCompositeNode(OpNot, keys)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) processItems(items ...interface{}) ([]TypeKey, []QueryNode) {
	keys := make([]TypeKey, 0)
	children := make([]QueryNode, 0)

	for _, item := range items {
		switch v := item.(type) {
		case TypeKey:
			keys = append(keys, v)
		case []TypeKey:
			keys = append(keys, v...)
		case Component:
			keys = append(keys, v.Key())
		case []Component:
			for _, c := range v {
				keys = append(keys, c.Key())
			}
		case QueryNode:
			children = append(children, v)
		}
	}

	return keys, children
}

func (q *query) Evaluate(archetype *Archetype, storage Storage) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(archetype, storage)
}
