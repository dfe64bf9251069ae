package navigation

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// The encoders below produce the shape VuePress expects: pages are bare
// strings, groups are objects, head tags and plugins are [name, options]
// tuples, and maps keep their declaration order.

type orderedField struct {
	key   string
	value any
}

func marshalOrderedJSON(fields []orderedField) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func orderedYAML(fields []orderedField) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range fields {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.key}
		val := &yaml.Node{}
		if err := val.Encode(f.value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

func (g *SectionGroup) fields() []orderedField {
	fields := []orderedField{{key: "title", value: g.Title}}
	if g.Collapsable != nil {
		fields = append(fields, orderedField{key: "collapsable", value: *g.Collapsable})
	}
	children := g.Children
	if children == nil {
		children = []SidebarItem{}
	}
	return append(fields, orderedField{key: "children", value: children})
}

// MarshalJSON encodes a page as a string and a group as an object.
func (i SidebarItem) MarshalJSON() ([]byte, error) {
	if g, ok := i.Group(); ok {
		return marshalOrderedJSON(g.fields())
	}
	return json.Marshal(string(i.page))
}

// MarshalYAML mirrors MarshalJSON.
func (i SidebarItem) MarshalYAML() (any, error) {
	if g, ok := i.Group(); ok {
		return orderedYAML(g.fields())
	}
	return string(i.page), nil
}

func (s *Sidebar) fields() []orderedField {
	fields := make([]orderedField, 0, len(s.entries))
	for _, e := range s.entries {
		items := e.items
		if items == nil {
			items = []SidebarItem{}
		}
		fields = append(fields, orderedField{key: e.prefix, value: items})
	}
	return fields
}

// MarshalJSON encodes the sidebar as an object keyed by prefix in declaration order.
func (s *Sidebar) MarshalJSON() ([]byte, error) {
	return marshalOrderedJSON(s.fields())
}

// MarshalYAML mirrors MarshalJSON.
func (s *Sidebar) MarshalYAML() (any, error) {
	return orderedYAML(s.fields())
}

func (h HeadTag) attrFields() []orderedField {
	fields := make([]orderedField, 0, len(h.Attrs))
	for _, a := range h.Attrs {
		fields = append(fields, orderedField{key: a.Key, value: a.Value})
	}
	return fields
}

// MarshalJSON encodes the tag as ["tag", {attrs}].
func (h HeadTag) MarshalJSON() ([]byte, error) {
	attrs, err := marshalOrderedJSON(h.attrFields())
	if err != nil {
		return nil, err
	}
	return json.Marshal([]any{h.Tag, json.RawMessage(attrs)})
}

// MarshalYAML mirrors MarshalJSON.
func (h HeadTag) MarshalYAML() (any, error) {
	attrs, err := orderedYAML(h.attrFields())
	if err != nil {
		return nil, err
	}
	return &yaml.Node{
		Kind:    yaml.SequenceNode,
		Tag:     "!!seq",
		Style:   yaml.FlowStyle,
		Content: []*yaml.Node{{Kind: yaml.ScalarNode, Tag: "!!str", Value: h.Tag}, attrs},
	}, nil
}

// MarshalJSON encodes the plugin as ["name", options].
func (p Plugin) MarshalJSON() ([]byte, error) {
	if p.Options == nil {
		return json.Marshal([]any{p.Name})
	}
	return json.Marshal([]any{p.Name, p.Options})
}

// MarshalYAML mirrors MarshalJSON.
func (p Plugin) MarshalYAML() (any, error) {
	if p.Options == nil {
		return []any{p.Name}, nil
	}
	return []any{p.Name, p.Options}, nil
}
