// Package topology holds the data model for benchmark service topologies:
// a layered DAG of named services, each pinned to a compute node, plus the
// YAML form consumed by the deployment and visualization tooling.
package topology

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Service is a single node in the topology graph. OutServices names the
// services at the next level this one calls; it is empty (but never nil
// after a build) for services on the final level.
type Service struct {
	Name            string   `yaml:"-"`
	Node            string   `yaml:"node"`
	Port            int      `yaml:"port"`
	ProcessingDelay string   `yaml:"processing_delay"`
	Replicas        int      `yaml:"replicas"`
	OutServices     []string `yaml:"out_services,flow"`
}

// Topology maps service names to services while remembering insertion
// order, so the serialized form lists services level by level exactly as
// the builder produced them.
type Topology struct {
	services map[string]*Service
	order    []string
}

func New() *Topology {
	return &Topology{services: map[string]*Service{}}
}

// Add inserts or replaces a service. A replaced service keeps its original
// position in the emit order.
func (t *Topology) Add(s *Service) {
	if s.OutServices == nil {
		s.OutServices = []string{}
	}
	if _, ok := t.services[s.Name]; !ok {
		t.order = append(t.order, s.Name)
	}
	t.services[s.Name] = s
}

func (t *Topology) Service(name string) (*Service, bool) {
	s, ok := t.services[name]
	return s, ok
}

// Names returns the service names in insertion order.
func (t *Topology) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func (t *Topology) Len() int {
	return len(t.services)
}

// MarshalYAML emits the canonical document shape:
//
//	services:
//	  <name>:
//	    node: ...
//	    port: ...
//	    processing_delay: ...
//	    replicas: ...
//	    out_services: [a, b]
//
// Field order follows the Service struct declaration; service order follows
// insertion order. A node mapping is built by hand because yaml.v3 would
// otherwise sort map keys.
func (t *Topology) MarshalYAML() (interface{}, error) {
	services := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range t.order {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: name}
		val := &yaml.Node{}
		if err := val.Encode(t.services[name]); err != nil {
			return nil, fmt.Errorf("encode service %q: %w", name, err)
		}
		services.Content = append(services.Content, key, val)
	}
	doc := &yaml.Node{Kind: yaml.MappingNode}
	doc.Content = append(doc.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "services"},
		services,
	)
	return doc, nil
}

// UnmarshalYAML reads the document shape produced by MarshalYAML. The
// yaml.Node API is used instead of a plain map so that document order is
// preserved in the emit order.
func (t *Topology) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("topology: expected mapping at top level, got %v", value.Kind)
	}
	t.services = map[string]*Service{}
	t.order = nil

	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value != "services" {
			continue
		}
		services := value.Content[i+1]
		if services.Kind != yaml.MappingNode {
			return fmt.Errorf("topology: services must be a mapping, got %v", services.Kind)
		}
		for j := 0; j+1 < len(services.Content); j += 2 {
			name := services.Content[j].Value
			var s Service
			if err := services.Content[j+1].Decode(&s); err != nil {
				return fmt.Errorf("decode service %q: %w", name, err)
			}
			s.Name = name
			t.Add(&s)
		}
	}
	return nil
}

// Marshal renders the topology as canonical YAML text.
func (t *Topology) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse decodes a topology document.
func Parse(data []byte) (*Topology, error) {
	t := New()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadFile loads a topology document from disk.
func ReadFile(filename string) (*Topology, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
