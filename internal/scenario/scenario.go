// Package scenario reads named parameter sets stored as YAML documents.
//
// A document looks like:
//
//	name: distancing
//	description: Reference population with fewer contacts.
//	parameters:
//	  daily_contacts: 15
//	seed:
//	  ill: 2000
//
// Parameter and seed keys that are left out keep the values of
// contagion.DefaultParameters and contagion.DefaultSeed.
package scenario

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/discochess/contagion"
	"github.com/discochess/contagion/internal/store"
)

// ErrInvalid is returned for documents that cannot be decoded or whose
// parameters cannot be simulated.
var ErrInvalid = errors.New("scenario: invalid document")

// Scenario is a named, documented parameter set.
type Scenario struct {
	Name        string               `json:"name" yaml:"name"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  contagion.Parameters `json:"parameters" yaml:"parameters"`
	Seed        contagion.Seed       `json:"seed" yaml:"seed"`
}

// document mirrors Scenario with optional sections.
type document struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Parameters  yaml.Node `yaml:"parameters"`
	Seed        yaml.Node `yaml:"seed"`
}

// Parse decodes a scenario document. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	var doc document
	if err := decodeStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	sc := &Scenario{
		Name:        doc.Name,
		Description: doc.Description,
		Parameters:  contagion.DefaultParameters(),
		Seed:        contagion.DefaultSeed(),
	}
	if err := decodeSection(&doc.Parameters, &sc.Parameters); err != nil {
		return nil, fmt.Errorf("%w: parameters: %w", ErrInvalid, err)
	}
	if err := decodeSection(&doc.Seed, &sc.Seed); err != nil {
		return nil, fmt.Errorf("%w: seed: %w", ErrInvalid, err)
	}
	if err := sc.Parameters.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return sc, nil
}

// Load reads and parses the named scenario from st. A document without a
// name takes the name it is stored under.
func Load(ctx context.Context, st store.Store, name string) (*Scenario, error) {
	data, err := st.ReadScenario(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading scenario %q: %w", name, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading scenario %q: %w", name, err)
	}
	if sc.Name == "" {
		sc.Name = name
	}
	return sc, nil
}

// Marshal encodes sc as a complete document.
func (sc *Scenario) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(sc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// decodeSection decodes node over v, leaving absent keys untouched.
func decodeSection(node *yaml.Node, v any) error {
	if node.Kind == 0 {
		return nil
	}
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	return decodeStrict(data, v)
}
