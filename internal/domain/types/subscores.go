package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SubScore is the points awarded to one organ system or domain.
type SubScore struct {
	Domain string
	Points int
	// Max is the domain ceiling. It is engine metadata and never serialized.
	Max int
}

// SubScores is an ordered set of domain scores. It serializes as an ordered
// object {"domain": points, ...}.
type SubScores []SubScore

// Total sums the points of every domain.
func (s SubScores) Total() int {
	t := 0
	for _, d := range s {
		t += d.Points
	}
	return t
}

// Get returns the points for a domain.
func (s SubScores) Get(domain string) (int, bool) {
	for _, d := range s {
		if d.Domain == domain {
			return d.Points, true
		}
	}
	return 0, false
}

// MarshalJSON keeps domain order stable, which a plain map would not.
func (s SubScores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(d.Domain)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(d.Points))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object in document order.
func (s *SubScores) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("subScores: expected object, got %v", tok)
	}
	out := SubScores{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("subScores: expected key, got %v", keyTok)
		}
		var points int
		if err := dec.Decode(&points); err != nil {
			return fmt.Errorf("subScores: %s: %w", key, err)
		}
		out = append(out, SubScore{Domain: key, Points: points})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

// MarshalYAML emits an ordered mapping node.
func (s SubScores) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, d := range s {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: d.Domain},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(d.Points)},
		)
	}
	return node, nil
}

// UnmarshalYAML reads a mapping node in document order.
func (s *SubScores) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("subScores: expected mapping, got kind %d", node.Kind)
	}
	out := make(SubScores, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var points int
		if err := node.Content[i+1].Decode(&points); err != nil {
			return fmt.Errorf("subScores: %s: %w", node.Content[i].Value, err)
		}
		out = append(out, SubScore{Domain: node.Content[i].Value, Points: points})
	}
	*s = out
	return nil
}
