// Package sqlite implements the persistent document store on SQLite.
// It is the durable record of processed files, their chunk texts and
// their embedding vectors; the in-memory similarity index is rebuilt
// from it at startup.
package sqlite
