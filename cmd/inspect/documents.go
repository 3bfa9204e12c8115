package main

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/wippyai/wirechan/channel"
	"github.com/wippyai/wirechan/internal/sample"
)

// document converts between YAML and one wire type.
type document struct {
	name   string
	goType reflect.Type
	encode func(ch *channel.Channel, doc []byte) error
	decode func(ch *channel.Channel) (any, error)
}

func documentOf[T any](name string) document {
	return document{
		name:   name,
		goType: reflect.TypeFor[T](),
		encode: func(ch *channel.Channel, doc []byte) error {
			var v T
			if err := yaml.Unmarshal(doc, &v); err != nil {
				return fmt.Errorf("parse %s: %w", name, err)
			}
			return channel.Write(ch, v)
		},
		decode: func(ch *channel.Channel) (any, error) {
			return channel.Read[T](ch)
		},
	}
}

// creatureDoc is the YAML form of a sample.Creature: the concrete type is
// named by kind.
type creatureDoc struct {
	Kind         string `yaml:"kind"`
	AnimalString string `yaml:"animal_string"`
	MammalString string `yaml:"mammal_string,omitempty"`
	BoarString   string `yaml:"boar_string,omitempty"`
	BearString   string `yaml:"bear_string,omitempty"`
}

func (d creatureDoc) creature() (sample.Creature, error) {
	switch strings.ToLower(d.Kind) {
	case "animal":
		return sample.Animal{AnimalString: d.AnimalString}, nil
	case "mammal":
		return sample.Mammal{AnimalString: d.AnimalString, MammalString: d.MammalString}, nil
	case "boar":
		return sample.Boar{AnimalString: d.AnimalString, MammalString: d.MammalString, BoarString: d.BoarString}, nil
	case "bear":
		return sample.Bear{AnimalString: d.AnimalString, MammalString: d.MammalString, BearString: d.BearString}, nil
	}
	return nil, fmt.Errorf("unknown creature kind %q", d.Kind)
}

func newCreatureDoc(c sample.Creature) creatureDoc {
	switch v := c.(type) {
	case sample.Animal:
		return creatureDoc{Kind: "animal", AnimalString: v.AnimalString}
	case sample.Mammal:
		return creatureDoc{Kind: "mammal", AnimalString: v.AnimalString, MammalString: v.MammalString}
	case sample.Boar:
		return creatureDoc{Kind: "boar", AnimalString: v.AnimalString, MammalString: v.MammalString, BoarString: v.BoarString}
	case sample.Bear:
		return creatureDoc{Kind: "bear", AnimalString: v.AnimalString, MammalString: v.MammalString, BearString: v.BearString}
	}
	return creatureDoc{Kind: fmt.Sprintf("%T", c)}
}

func creatureDocument() document {
	return document{
		name:   "creature",
		goType: reflect.TypeFor[sample.Creature](),
		encode: func(ch *channel.Channel, doc []byte) error {
			var d creatureDoc
			if err := yaml.Unmarshal(doc, &d); err != nil {
				return fmt.Errorf("parse creature: %w", err)
			}
			c, err := d.creature()
			if err != nil {
				return err
			}
			return channel.Write(ch, c)
		},
		decode: func(ch *channel.Channel) (any, error) {
			c, err := channel.Read[sample.Creature](ch)
			if err != nil {
				return nil, err
			}
			return newCreatureDoc(c), nil
		},
	}
}

var documents = map[string]document{}

func init() {
	for _, d := range []document{
		documentOf[sample.Colour]("colour"),
		documentOf[sample.Foo]("foo"),
		documentOf[sample.Bar]("bar"),
		documentOf[sample.Animal]("animal"),
		documentOf[sample.Mammal]("mammal"),
		documentOf[sample.Boar]("boar"),
		documentOf[sample.Bear]("bear"),
		documentOf[sample.ShaderSamplerDefinition]("sampler"),
		documentOf[sample.ReadmeExample]("readme"),
		documentOf[[]string]("strings"),
		creatureDocument(),
	} {
		documents[d.name] = d
	}
}

func lookupDocument(name string) (document, error) {
	d, ok := documents[strings.ToLower(name)]
	if !ok {
		return document{}, fmt.Errorf("unknown type %q (known: %s)", name, strings.Join(documentNames(), ", "))
	}
	return d, nil
}

func documentNames() []string {
	names := make([]string, 0, len(documents))
	for n := range documents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
