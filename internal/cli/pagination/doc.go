// Package pagination provides limit/offset and page-based slicing for CLI list
// output, plus "field:order" sort expression parsing.
//
// Commands that print lists (plugins, releases) register the flags with
// AddFlags, validate them once, apply them to the sorted slice with Apply and
// attach a Meta to JSON output.
package pagination
