// Package deal defines the typed, immutable deal record consumed by document
// templates and the repositories that load it.
//
// A Record is an identifier plus a flat set of fields. Every field has a
// fixed type in the package schema (string, date, money in cents, integer or
// transaction side); construction rejects unknown fields and mistyped values.
//
// Records are stored as {"id": ..., "fields": {...}} in JSON files
// (DirRepository), as documents in MongoDB (MongoRepository) or as JSONB rows
// in PostgreSQL (PostgresRepository, migrations embedded in Migrations).
package deal
