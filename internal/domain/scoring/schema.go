package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/pediscore/internal/domain/types"
)

// Kind is the value type a Field is coerced to.
type Kind int

// Field kinds.
const (
	Number Kind = iota
	Flag
	Enum
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Flag:
		return "flag"
	case Enum:
		return "enum"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText renders the kind name in JSON and YAML schema output.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Range is a plausibility window. Values outside it are scored as given and
// reported as a caveat.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Field declares one input of a scorer.
type Field struct {
	Name     string   `json:"name" yaml:"name"`
	Label    string   `json:"label" yaml:"label"`
	Kind     Kind     `json:"kind" yaml:"kind"`
	Required bool     `json:"required" yaml:"required"`
	Default  any      `json:"default,omitempty" yaml:"default,omitempty"`
	Options  []string `json:"options,omitempty" yaml:"options,omitempty"`
	Range    *Range   `json:"range,omitempty" yaml:"range,omitempty"`
	Unit     string   `json:"unit,omitempty" yaml:"unit,omitempty"`

	// aliases maps lowercased alternative spellings to an option, or to a
	// numeric literal for number fields.
	aliases map[string]string
}

// Schema is the ordered field list of one scorer.
type Schema struct {
	Type   types.ScoreType `json:"scoreType" yaml:"scoreType"`
	Name   string          `json:"name" yaml:"name"`
	Fields []Field         `json:"fields" yaml:"fields"`
}

// Field looks a field up by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required lists the labels of the required fields in declaration order.
func (s Schema) Required() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Label)
		}
	}
	return out
}

func num(name, label, unit string, lo, hi float64) Field {
	return Field{Name: name, Label: label, Kind: Number, Unit: unit, Range: &Range{Min: lo, Max: hi}}
}

func flag(name, label string) Field {
	return Field{Name: name, Label: label, Kind: Flag, Default: false}
}

func enum(name, label, def string, options ...string) Field {
	f := Field{Name: name, Label: label, Kind: Enum, Options: options}
	if def != "" {
		f.Default = def
	}
	return f
}

func (f Field) required() Field {
	f.Required = true
	f.Default = nil
	return f
}

func (f Field) withDefault(v any) Field {
	f.Default = v
	return f
}

func (f Field) alias(pairs ...string) Field {
	m := make(map[string]string, len(f.aliases)+len(pairs)/2)
	for k, v := range f.aliases {
		m[k] = v
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		m[strings.ToLower(pairs[i])] = pairs[i+1]
	}
	f.aliases = m
	return f
}

// unitField is the optional unit selector accompanying creatinine or bilirubin.
func unitField(name, label string) Field {
	return enum(name, label, "", "mg/dl", "umol/l").
		alias("mg/dL", "mg/dl", "mg", "mg/dl", "µmol/l", "umol/l", "μmol/l", "umol/l", "umol", "umol/l", "micromol/l", "umol/l")
}

func sortedKeys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
