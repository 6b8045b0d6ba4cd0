// Package mapping loads marker manifests: YAML files that attach notation directives to entity
// fields and property types without touching the Go declarations.
//
// A manifest looks like
//
//	version: "1"
//	types:
//	  notation-mapper/examples/catalog.Status: "maxlen=16;type=varchar"
//	entities:
//	  Order:
//	    fields:
//	      Status: index=IX_ORDER_STATUS
//	      Notes: [maxlen=2000]
//
// Directives use the `notation` tag syntax. A value is a single string or a list of strings;
// list items are applied in order.
//
// Field directives are registered with EntitySet.Mark, so they run after the struct tag
// markers of the field. Type directives become pipeline type markers.
//
// Entities are matched by type name or by canonical "pkgpath.Name". Types are resolved through
// value.Types first and then through the property types of the registered entities.
package mapping
