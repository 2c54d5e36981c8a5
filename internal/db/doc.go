// Package db runs the single connect-query-disconnect cycle that fetches the
// current greeting from PostgreSQL.
//
// Each call to Session.WithGreeting builds its own pgx connection, runs the
// greeting query once, and releases the connection through a Guard so that the
// disconnect step happens exactly once on every exit path. Driver errors are
// classified into hellodb.DatabaseFailure values and never escape as errors.
package db
