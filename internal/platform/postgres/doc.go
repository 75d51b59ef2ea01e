// Package postgres implements the store interfaces on PostgreSQL using sqlx
// over the pgx stdlib driver, and embeds the goose schema migrations.
package postgres
