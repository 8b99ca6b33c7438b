// Package loader creates tables described by a model.TableSpec and bulk-loads
// dataset rows into them. Postgres loads through COPY FROM STDIN; SQLite,
// used for local runs and tests, loads through chunked prepared INSERTs.
package loader
