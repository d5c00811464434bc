// Package storage persists index snapshots in SQLite so the server can
// start without re-ingesting or re-embedding the corpus.
//
// Two snapshot kinds share one database file: the lexical TF-IDF index
// (documents, postings, IDF table, document lengths) and the embedding
// index (documents plus their vectors). Saves are transactional and
// replace the previous snapshot wholesale; loads validate row counts,
// dense document IDs, and vector blob sizes, returning
// ErrSnapshotCorrupt on any mismatch.
//
// The SQLite driver is selected at build time: modernc.org/sqlite by
// default (pure Go, CGO-free) or mattn/go-sqlite3 with -tags sqlite_cgo.
package storage
