// Package turbopath teaches the Go type system about the path flavors
// this module actually handles:
// - AbsoluteSystemPath
// - RelativeSystemPath
// - AnchoredSystemPath
//
// Absolute paths are, "absolute, including volume root." They are not
// portable between machines.
//
// Relative paths are simply arbitrary path segments using a particular
// path delimiter.
//
// Anchored paths are, "absolute, starting at a particular root." They are
// not aware of *what* their anchor is — it could be a repository, a
// package, or `cwd`. They are stored *without* a preceding delimiter for
// compatibility with `io/fs`.
//
// Everything here is either `string` or `[]string`; the wrapper types
// exist to let the compiler catch a caller mixing up which kind of path
// it's holding.
package turbopath

// RelativeSystemPathArray is a type used to enable transform operations on arrays of paths.
type RelativeSystemPathArray []RelativeSystemPath

// ToStringArray enables ergonomic operations on arrays of RelativeSystemPath
func (source RelativeSystemPathArray) ToStringArray() []string {
	output := make([]string, len(source))
	for index, path := range source {
		output[index] = path.ToString()
	}
	return output
}

// The following methods exist to import a path string and cast it to the appropriate
// type. They exist to communicate intent and make it explicit that this is an
// intentional action, not a "helpful" insertion by the IDE.
//
// This is intended to map closely to the `unsafe` keyword, without the denotative
// meaning of `unsafe` in English. These are "trust me, I've checked it" places, and
// intend to mark the places where we smuggle paths from outside the world of safe
// path handling into the world where we carefully consider the path to ensure safety.

// AbsoluteSystemPathFromUpstream takes a path string and casts it to an
// AbsoluteSystemPath without checking. If the input to this function is
// not an AbsoluteSystemPath it will result in downstream errors.
func AbsoluteSystemPathFromUpstream(path string) AbsoluteSystemPath {
	return AbsoluteSystemPath(path)
}

// AnchoredSystemPathFromUpstream takes a path string and casts it to an
// AnchoredSystemPath without checking. If the input to this function is
// not an AnchoredSystemPath it will result in downstream errors.
func AnchoredSystemPathFromUpstream(path string) AnchoredSystemPath {
	return AnchoredSystemPath(path)
}
