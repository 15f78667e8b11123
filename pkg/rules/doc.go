// Package rules loads AI assistant rule documents and exposes them as a
// [Catalog].
//
// A rule document is a Markdown file with YAML frontmatter:
//
//	---
//	id: typescript.conventions
//	version: 1.0.0
//	title: TypeScript Conventions
//	description: Naming and formatting conventions for TypeScript.
//	category: typescript
//	requires: [foundation.test]
//	---
//
//	# TypeScript Conventions
//	...
//
// Documents are read from one or more [Source]s. The embedded [Builtin]
// source ships with the binary, and [DirSource] reads a directory on disk.
package rules
