// Package sqlq holds the database/sql repositories shared by the sqlite and
// postgres drivers. Queries are written with "?" placeholders and rebound per
// dialect, and every timestamp is written in UTC.
package sqlq
