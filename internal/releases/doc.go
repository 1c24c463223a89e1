// Package releases covers the TREM-Lite application release feed: platform
// detection, per-platform download links, version selection, download totals,
// package size history and release notes.
package releases
