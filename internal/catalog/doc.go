// Package catalog models the TREM plugin catalog feed and the queries run over it:
// search, sort, totals, reverse dependencies, dependency checks, release
// channels and install links.
package catalog
