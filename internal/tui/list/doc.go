// Package listview renders long lists in a terminal by drawing only the rows
// around the selection. Items can be replaced (after filtering or sorting)
// while keeping the selection in range.
package listview
