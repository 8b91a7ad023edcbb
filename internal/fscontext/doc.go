// Package fscontext implements the file-context list of spec.md §4.6
// (C9): parsing the file_contexts text format (spec.md §6) into an
// ordered sequence of path/object-type/context entries, and querying
// that sequence by path pattern, object-type mask, or context
// component.
package fscontext
