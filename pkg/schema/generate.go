// Package schema generates JSON schemas for the ai-rules configuration kinds.
package schema

import (
	"encoding/json"
	"fmt"
	"path"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
)

// ModulePath is the import path of the ai-rules module.
const ModulePath = "github.com/rerades/ai-rules-cli"

// Generator reflects a JSON schema from a Go type.
type Generator struct {
	reflector *jsonschema.Reflector
	root      reflect.Type
	v         any
	id        string
	dirs      []string
}

// GeneratorOpt configures a [Generator].
type GeneratorOpt func(*Generator)

// WithID sets the `$id` of the generated schema.
func WithID(id string) GeneratorOpt {
	return func(g *Generator) {
		g.id = id
	}
}

// WithComments reads the Go doc comments of the packages in dirs, given
// relative to the module root, and uses them as descriptions.
func WithComments(dirs ...string) GeneratorOpt {
	return func(g *Generator) {
		g.dirs = append(g.dirs, dirs...)
	}
}

// NewGenerator creates a new [Generator] for v.
func NewGenerator(v any, opts ...GeneratorOpt) *Generator {
	g := &Generator{
		v:    v,
		root: reflect.Indirect(reflect.ValueOf(v)).Type(),
	}

	g.reflector = &jsonschema.Reflector{
		Namer: g.name,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate returns the indented JSON schema.
func (g *Generator) Generate() ([]byte, error) {
	for _, dir := range g.dirs {
		err := g.reflector.AddGoComments(ModulePath, dir)
		if err != nil {
			return nil, fmt.Errorf("read comments from %s: %w", dir, err)
		}
	}

	s := g.reflector.Reflect(g.v)
	if g.id != "" {
		s.ID = jsonschema.ID(g.id)
	}

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(b, '\n'), nil
}

// name disambiguates definitions that share a type name, like the
// per-package Config types, by prefixing them with their package name.
func (g *Generator) name(t reflect.Type) string {
	if t == g.root || t.Name() != "Config" {
		return t.Name()
	}

	pkg := path.Base(t.PkgPath())
	if len(pkg) <= 2 {
		return strings.ToUpper(pkg) + t.Name()
	}

	return strings.ToUpper(pkg[:1]) + pkg[1:] + t.Name()
}
