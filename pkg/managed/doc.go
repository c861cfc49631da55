// Package managed provides the standard observable collections: List,
// an ordered container of attached objects with optional runtime type
// restriction, and Record, a dynamic bag of bindable named values.
//
// Lists come in two ownership modes, fixed at construction. An owning
// list (the default) attaches added elements and unlinks them on
// removal, so clearing a list tears down its rows. A referencing list
// (managed.References) points at records owned elsewhere and never
// unlinks them.
//
// Structural mutations emit change events carrying the operation and
// affected indexes, so a bound list renderer can mirror insertion order
// exactly — including in-place moves, which arrive as a single "move"
// change rather than a remove followed by an add.
package managed
