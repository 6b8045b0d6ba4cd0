// Package value provides the small value types that carry a canonical string form and are
// stored through the builtin codecs: digests, password hashes, colors and type references.
//
// It also owns the process-wide type-name registry used to turn a stored type name back into a
// reflect.Type.
package value
