package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/magefree/mage-rules-go/internal/game/card"
)

// cardFile is the layout of a catalogue YAML file.
type cardFile struct {
	Cards []*card.Definition `yaml:"cards"`
}

// Decode reads definitions from a catalogue YAML stream. Unknown fields are
// errors so typos in card data surface at load time.
func Decode(r io.Reader) ([]*card.Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f cardFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	return f.Cards, nil
}

// LoadFile registers every card in the YAML file at path.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalogue: %w", err)
	}
	defs, err := Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return r.Register(defs...)
}

// LoadDeckFile reads a deck list from YAML.
func LoadDeckFile(path string) (Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deck{}, fmt.Errorf("read deck: %w", err)
	}
	var d Deck
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Deck{}, fmt.Errorf("decode deck %s: %w", path, err)
	}
	if len(d.Cards) == 0 {
		return Deck{}, fmt.Errorf("deck %s is empty", path)
	}
	return d, nil
}

// EncodeDefinition renders a definition in the blob format the SQL stores
// keep.
func EncodeDefinition(def *card.Definition) ([]byte, error) {
	if def == nil {
		return nil, errors.New("nil definition")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", def.Name, err)
	}
	return data, nil
}

// DecodeDefinition parses a blob written by EncodeDefinition.
func DecodeDefinition(data []byte) (*card.Definition, error) {
	var def card.Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}
