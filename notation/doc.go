// Package notation maps registered entity structs onto a host model builder.
//
// For every entity the Pipeline walks the struct fields in declaration order and, per field:
//
//  1. installs the codec picked by codec.Registry.Resolve, if any,
//  2. calls the host hook (Hooks.ConfigureProperty),
//  3. applies the markers attached to the field's value type (Notated and Pipeline type markers),
//  4. applies the markers attached to the field (the `notation` struct tag and EntitySet.Mark).
//
// Markers that span several fields (Key, Index, Unique) accumulate their members in the
// per-entity EntityState and defer one finalizer per construct. Finalizers run in FIFO order
// after the last field of the entity was visited.
//
// Tag syntax, directives separated by ';':
//
//	ID   uuid.UUID `notation:"key,order=0"`
//	Seq  int       `notation:"key,order=1"`
//	Tag  string    `notation:"index=IX_TAG"`
//	Mail string    `notation:"unique;maxlen=320"`
//	Blob []byte    `notation:"hex"`
//	Skip string    `notation:"-"`
package notation
