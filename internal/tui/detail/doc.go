// Package detail loads secondary content for a detail view on demand, such as
// a plugin README. Loading starts when the view opens, shows a loading state
// immediately and keeps errors inline with a retry key ('r').
package detail
