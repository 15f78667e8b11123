// Package expr provides CEL (Common Expression Language) environments for
// filtering rules by their metadata.
//
// In addition to the CEL standard library and the strings, lists and sets
// extensions, environments include:
//   - semverAtLeast(version, min): reports whether version >= min
//   - semverSatisfies(version, constraint): checks a semver constraint
//   - list.includes(a, ...): reports whether a list contains any argument
package expr
