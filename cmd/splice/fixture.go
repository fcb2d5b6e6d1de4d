package main

import (
	"encoding/json"
	"fmt"

	"github.com/vango-dev/splice/pkg/node"
	"github.com/vango-dev/splice/pkg/template"
)

// decodeInstance parses a JSON instance fixture: a node tree in the same
// encoding as template tables, with live payloads and component bodies.
//
// Payloads that are objects with a "kind" field are decoded as nodes, and
// arrays of them as node lists. An array mixing nodes and plain values is
// rejected. Every located node, including bodies, is
// stamped as an instance so identities need not be written by hand.
func decodeInstance(data []byte) (*node.Node, error) {
	var root node.Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode instance: %w", err)
	}
	if root.Location == nil {
		return nil, fmt.Errorf("decode instance: root has no location")
	}
	if err := decodePayloads(&root); err != nil {
		return nil, err
	}

	var located []*node.Node
	node.WalkAll(&root, func(n *node.Node) bool {
		if n.Location != nil {
			located = append(located, n)
		}
		return true
	})
	for _, n := range located {
		template.Instance(*n.Location, n)
	}
	node.Relink(&root)
	return &root, nil
}

func decodePayloads(n *node.Node) error {
	if n == nil {
		return nil
	}
	var err error
	if n.Payload, err = decodePayload(n.Payload); err != nil {
		return err
	}
	for i := range n.Attrs {
		if n.Attrs[i].Payload, err = decodePayload(n.Attrs[i].Payload); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := decodePayloads(c); err != nil {
			return err
		}
	}
	if err := decodePayloads(n.Body); err != nil {
		return err
	}
	for _, p := range node.PayloadNodes(n.Payload) {
		if err := decodePayloads(p); err != nil {
			return err
		}
	}
	return nil
}

func decodePayload(v any) (any, error) {
	switch v := v.(type) {
	case map[string]any:
		if _, ok := v["kind"]; !ok {
			return v, nil
		}
		return remarshal(v)
	case []any:
		var nodes []*node.Node
		for i, item := range v {
			m, ok := item.(map[string]any)
			if ok {
				_, ok = m["kind"]
			}
			if !ok {
				if nodes != nil {
					return nil, fmt.Errorf("decode payload: item %d is a plain value in a list of nodes", i)
				}
				continue
			}
			if nodes == nil && i > 0 {
				return nil, fmt.Errorf("decode payload: item %d is a node in a list of plain values", i)
			}
			n, err := remarshal(m)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		if nodes == nil {
			return v, nil
		}
		return nodes, nil
	}
	return v, nil
}

func remarshal(m map[string]any) (*node.Node, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var n node.Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("decode payload node: %w", err)
	}
	return &n, nil
}
