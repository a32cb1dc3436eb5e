// Package database is the SQL implementation of the store ports. It runs on
// PostgreSQL through pgx or on SQLite through modernc.org/sqlite, using sqlx
// for scanning and placeholder rebinding, and ships its schema as embedded
// goose migrations for both dialects.
package database
