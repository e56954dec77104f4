package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/devblok/koruasset/asset"
)

// Node is an element of a UI layout tree.
type Node struct {
	Type     string            `yaml:"type"`
	ID       string            `yaml:"id,omitempty"`
	Props    map[string]string `yaml:"props,omitempty"`
	Children []*Node           `yaml:"children,omitempty"`
}

// Layout is a UI layout tree read from YAML.
type Layout struct {
	Name string `yaml:"name,omitempty"`
	Root *Node  `yaml:"root"`

	ids map[string]*Node
}

// Find returns the node with the given id.
func (l *Layout) Find(id string) (*Node, bool) {
	n, ok := l.ids[id]
	return n, ok
}

// Walk calls fn for every node, parents before their children.
func (l *Layout) Walk(fn func(n *Node, depth int)) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	if l.Root != nil {
		walk(l.Root, 0)
	}
}

// ParseLayout decodes a layout. Unknown keys, nodes without a type and
// repeated ids are rejected.
func ParseLayout(data []byte) (*Layout, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	layout := &Layout{}
	if err := dec.Decode(layout); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty layout", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if layout.Root == nil {
		return nil, fmt.Errorf("%w: layout has no root", ErrMalformed)
	}

	layout.ids = make(map[string]*Node)
	var err error
	layout.Walk(func(n *Node, depth int) {
		switch {
		case err != nil:
		case n.Type == "":
			err = fmt.Errorf("%w: node %q at depth %d has no type", ErrMalformed, n.ID, depth)
		case n.ID != "":
			if _, dup := layout.ids[n.ID]; dup {
				err = fmt.Errorf("%w: node id %q is used twice", ErrMalformed, n.ID)
				return
			}
			layout.ids[n.ID] = n
		}
	})
	if err != nil {
		return nil, err
	}
	return layout, nil
}

// LayoutLoader reads YAML layout files.
type LayoutLoader struct{}

// Load implements asset.Loader.
func (l *LayoutLoader) Load(q *asset.Queue, r asset.Resolver, req asset.Request) (asset.Commit, error) {
	data, err := r.ReadFile(req.Path)
	if err != nil {
		return asset.Commit{}, err
	}
	layout, err := ParseLayout(data)
	if err != nil {
		return asset.Commit{}, fmt.Errorf("%s: %w", req.Path, err)
	}
	return asset.Keep(asset.KindLayout, req.Alias, layout), nil
}
