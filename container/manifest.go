package container

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// manifestEntry is the YAML shape one definition takes in a definitions
// manifest file, per spec section 6's external-interfaces addition for
// declarative bootstrap. Only the class and literal Concrete kinds are
// expressible this way; a FactoryConcrete or InstanceConcrete must be
// registered in code.
type manifestEntry struct {
	Abstract string         `yaml:"abstract"`
	Class    string         `yaml:"class,omitempty"`
	Literal  any            `yaml:"literal,omitempty"`
	Lifetime string         `yaml:"lifetime,omitempty"`
	Tags     []string       `yaml:"tags,omitempty"`
	Args     map[string]any `yaml:"args,omitempty"`
}

// DefinitionManifest is a YAML-decoded list of service definitions,
// typically version-controlled alongside EngineOptions to describe a
// container's wiring declaratively instead of purely in Go code.
type DefinitionManifest struct {
	Definitions []manifestEntry `yaml:"definitions"`
}

// LoadDefinitions reads a definitions manifest from path and converts it
// into ServiceDefinition values. Class ids referenced by a manifest entry
// must still be registered with RegisterType/RegisterConstructor in code
// before the container can autowire them; the manifest only supplies the
// abstract-to-concrete wiring, not the reflected type information.
func LoadDefinitions(path string) ([]*ServiceDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definitions manifest %q: %w", path, err)
	}

	var manifest DefinitionManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse definitions manifest %q: %w", path, err)
	}

	defs := make([]*ServiceDefinition, 0, len(manifest.Definitions))
	for _, entry := range manifest.Definitions {
		def, err := entry.toDefinition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (e manifestEntry) toDefinition() (*ServiceDefinition, error) {
	if e.Abstract == "" {
		return nil, newKernelError(InvalidDefinition, "", fmt.Errorf("manifest entry missing abstract id"))
	}

	var concrete Concrete
	switch {
	case e.Class != "":
		concrete = Class(e.Class)
	case e.Literal != nil:
		concrete = Literal(e.Literal)
	default:
		concrete = Class(e.Abstract)
	}

	lifetime, err := parseLifetime(e.Lifetime)
	if err != nil {
		return nil, newKernelError(InvalidDefinition, e.Abstract, err)
	}

	return &ServiceDefinition{
		Abstract:  e.Abstract,
		Concrete:  concrete,
		Lifetime:  lifetime,
		Tags:      e.Tags,
		Arguments: e.Args,
	}, nil
}

func parseLifetime(s string) (Lifetime, error) {
	switch s {
	case "", "transient":
		return Transient, nil
	case "singleton":
		return Singleton, nil
	case "scoped":
		return Scoped, nil
	default:
		return 0, fmt.Errorf("unknown lifetime %q", s)
	}
}

// ApplyManifest registers every definition in defs onto c, then applies
// each entry's tags.
func ApplyManifest(c *Container, defs []*ServiceDefinition) error {
	for _, def := range defs {
		if err := c.store.Add(def); err != nil {
			return err
		}
		if len(def.Tags) > 0 {
			c.store.AddTags(def.Abstract, def.Tags...)
		}
	}
	return nil
}
