// Package codec maps value types to bidirectional string codecs and decides which codec, if any,
// a field gets.
//
// Resolution tries, in order:
//
//  1. an exact match in the Registry (the builtin codecs),
//  2. the value.SubTypeOf wrapper, stored as a type name,
//  3. types implementing BinarySerializer, stored as base64 text,
//  4. nothing, leaving the field to the host's default mapping.
//
// Decoding is total: malformed input yields the type's zero value and never panics. Equality and
// hashing of converted values go through the canonical string, see Equal and Hash.
package codec
