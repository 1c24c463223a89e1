// Package logging configures zerolog for tremstore and carries loggers and
// trace identifiers through context.Context.
//
// Every event logged with .Ctx(ctx) picks up the trace_id stored in ctx, so a
// single command invocation can be followed across the fetcher, the store and
// the CLI layer. Logs always go to stderr or a file, never to stdout, which is
// reserved for command output.
package logging
