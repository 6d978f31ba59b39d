// Package history records finished practice rounds.
//
// A [Store] appends [Record]s and lists the most recent ones per color.
// Three backends exist:
//
//   - [FileStore]: JSON lines in a local file, the CLI default
//   - [MongoStore]: a MongoDB collection, for the HTTP server
//   - [NullStore]: discards everything
//
// [Summarize] turns a list of records into success statistics and the lines
// that fail most often.
package history
