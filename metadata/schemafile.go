package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaFile is the on-disk declarative form of one or more schemas.
type SchemaFile struct {
	Schemas []SchemaDef `yaml:"schemas"`
}

// SchemaDef declares a single named schema.
type SchemaDef struct {
	Name     string               `yaml:"name"`
	Required []string             `yaml:"required"`
	Optional []string             `yaml:"optional"`
	Types    map[string]FieldType `yaml:"types"`
	Rules    map[string][]RuleDef `yaml:"rules"`
}

// RuleDef is a declarative field constraint. Exactly one constraint should be
// set per rule entry.
type RuleDef struct {
	Enum      []string `yaml:"enum,omitempty"`
	Pattern   string   `yaml:"pattern,omitempty"`
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`
	MinLength *int     `yaml:"min_length,omitempty"`
	MaxLength *int     `yaml:"max_length,omitempty"`
}

// Compile turns the definition into a Schema with predicate funcs built from
// the declared rules.
func (d SchemaDef) Compile() (Schema, error) {
	if d.Name == "" {
		return Schema{}, fmt.Errorf("schema definition missing name")
	}

	schema := Schema{
		RequiredFields: append([]string(nil), d.Required...),
		OptionalFields: append([]string(nil), d.Optional...),
	}
	if len(d.Types) > 0 {
		schema.FieldTypes = make(map[string]FieldType, len(d.Types))
		for field, ft := range d.Types {
			switch ft {
			case FieldString, FieldNumber, FieldBool, FieldList, FieldMap:
				schema.FieldTypes[field] = ft
			default:
				return Schema{}, fmt.Errorf("schema %s: unknown field type %q for %s", d.Name, ft, field)
			}
		}
	}
	if len(d.Rules) > 0 {
		schema.Validators = make(map[string][]FieldValidator, len(d.Rules))
		for field, rules := range d.Rules {
			for _, rule := range rules {
				validate, err := rule.compile()
				if err != nil {
					return Schema{}, fmt.Errorf("schema %s, field %s: %w", d.Name, field, err)
				}
				schema.Validators[field] = append(schema.Validators[field], validate)
			}
		}
	}
	return schema, nil
}

func (d RuleDef) compile() (FieldValidator, error) {
	switch {
	case len(d.Enum) > 0:
		allowed := make(map[string]struct{}, len(d.Enum))
		for _, v := range d.Enum {
			allowed[v] = struct{}{}
		}
		return func(value any) bool {
			_, ok := allowed[fmt.Sprintf("%v", value)]
			return ok
		}, nil
	case d.Pattern != "":
		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		return func(value any) bool {
			s, ok := value.(string)
			return ok && re.MatchString(s)
		}, nil
	case d.Min != nil:
		floor := *d.Min
		return func(value any) bool {
			n, ok := asFloat(value)
			return ok && n >= floor
		}, nil
	case d.Max != nil:
		ceil := *d.Max
		return func(value any) bool {
			n, ok := asFloat(value)
			return ok && n <= ceil
		}, nil
	case d.MinLength != nil:
		n := *d.MinLength
		return func(value any) bool {
			s, ok := value.(string)
			return ok && len(s) >= n
		}, nil
	case d.MaxLength != nil:
		n := *d.MaxLength
		return func(value any) bool {
			s, ok := value.(string)
			return ok && len(s) <= n
		}, nil
	default:
		return nil, fmt.Errorf("empty rule")
	}
}

// LoadSchemaFile parses and compiles every schema in a yaml file.
func LoadSchemaFile(path string) (map[string]Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	var file SchemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse schema file %s: %w", path, err)
	}

	out := make(map[string]Schema, len(file.Schemas))
	for _, def := range file.Schemas {
		schema, err := def.Compile()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out[def.Name] = schema
	}
	return out, nil
}

// LoadDir loads every .yaml/.yml schema file in dir into the validator,
// returning the number of schemas registered. Files are loaded in sorted
// order so later files win name collisions deterministically.
func (v *Validator) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read schema dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	count := 0
	for _, name := range names {
		schemas, err := LoadSchemaFile(filepath.Join(dir, name))
		if err != nil {
			return count, err
		}
		for schemaName, schema := range schemas {
			v.RegisterSchema(schemaName, schema)
			count++
		}
	}
	return count, nil
}

func asFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
