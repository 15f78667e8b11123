package rules

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

// BuiltinName is the [Source.Name] of the embedded rule set.
const BuiltinName = "builtin"

//go:embed builtin
var builtinFS embed.FS

// Source is a tree of rule documents.
type Source struct {
	FS fs.FS
	// Name identifies the source in logs and problem reports.
	Name string
	// Dir is the directory on disk backing FS, if any.
	Dir string
}

// Builtin returns the rule set embedded in the binary.
func Builtin() Source {
	sub, err := fs.Sub(builtinFS, BuiltinName)
	if err != nil {
		panic(err)
	}

	return Source{
		Name: BuiltinName,
		FS:   sub,
	}
}

// DirSource returns a [Source] reading rule documents from path.
func DirSource(path string) Source {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return Source{
		Name: path,
		Dir:  abs,
		FS:   os.DirFS(abs),
	}
}

// FSSource returns a [Source] reading rule documents from fsys.
func FSSource(name string, fsys fs.FS) Source {
	return Source{
		Name: name,
		FS:   fsys,
	}
}

// isRuleFile reports whether the file at path should be parsed as a rule.
func isRuleFile(path string) bool {
	base := filepath.Base(path)
	if filepath.Ext(base) != ".md" {
		return false
	}

	switch base {
	case "README.md", "CHANGELOG.md":
		return false
	}

	return base[0] != '_' && base[0] != '.'
}
