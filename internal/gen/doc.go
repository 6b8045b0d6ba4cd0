// Package gen writes the explicit entity registration of scanned packages.
//
// Generation uses text/template + go/format. For every package holding entities it emits one
// file declaring
//   - Module: a notation.Module with the types implementing TableName
//   - Register: adds Module and every //notation:table type to a notation.EntitySet
package gen
