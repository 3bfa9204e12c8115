// Package sample defines a small domain type set with hand-written codecs.
// It backs the inspector CLI and exercises every composition style the
// codec package supports: records of primitives, nested records, an
// explicitly written base part, lists of records, enums and a tagged sum.
package sample

// Colour is an ARGB colour with channels in [0, 1]. On the wire each channel
// is quantized to one byte.
type Colour struct {
	A float32 `yaml:"a"`
	R float32 `yaml:"r"`
	G float32 `yaml:"g"`
	B float32 `yaml:"b"`
}

// Foo is a colour with a message.
type Foo struct {
	FooColour Colour `yaml:"foo_colour"`
	Message   string `yaml:"message"`
}

// Bar extends Foo with a second colour.
type Bar struct {
	Foo       `yaml:",inline"`
	BarColour Colour `yaml:"bar_colour"`
}

// Creature is the closed set of animal types.
type Creature interface {
	creature()
}

// Animal is the base creature.
type Animal struct {
	AnimalString string `yaml:"animal_string"`
}

// Mammal extends Animal with one string.
type Mammal struct {
	AnimalString string `yaml:"animal_string"`
	MammalString string `yaml:"mammal_string"`
}

// Boar is a Mammal with a boar-specific string.
type Boar struct {
	AnimalString string `yaml:"animal_string"`
	MammalString string `yaml:"mammal_string"`
	BoarString   string `yaml:"boar_string"`
}

// Bear is a Mammal with a bear-specific string.
type Bear struct {
	AnimalString string `yaml:"animal_string"`
	MammalString string `yaml:"mammal_string"`
	BearString   string `yaml:"bear_string"`
}

func (Animal) creature() {}
func (Mammal) creature() {}
func (Boar) creature()   {}
func (Bear) creature()   {}

// SamplerMode selects texture filtering.
type SamplerMode int32

const (
	SamplerModeDefault SamplerMode = iota
	SamplerModePoint
	SamplerModeBilinear
	SamplerModeTrilinear
	SamplerModeAnisotropic
)

func (m SamplerMode) String() string {
	switch m {
	case SamplerModeDefault:
		return "default"
	case SamplerModePoint:
		return "point"
	case SamplerModeBilinear:
		return "bilinear"
	case SamplerModeTrilinear:
		return "trilinear"
	case SamplerModeAnisotropic:
		return "anisotropic"
	default:
		return "unknown"
	}
}

// ShaderSamplerDefinition declares one sampler input of a shader.
type ShaderSamplerDefinition struct {
	Name        string      `yaml:"name"`
	NiceName    string      `yaml:"nice_name"`
	Optional    bool        `yaml:"optional"`
	SamplerMode SamplerMode `yaml:"sampler_mode"`
}

// ReadmeExample is a versioned list of Foo values with a shared colour.
type ReadmeExample struct {
	Data    []Foo  `yaml:"data"`
	Colour  Colour `yaml:"colour"`
	Version int32  `yaml:"version"`
}
