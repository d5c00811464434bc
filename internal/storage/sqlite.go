package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/govnavigator/govnavigator-mcp/internal/index"
	"github.com/govnavigator/govnavigator-mcp/internal/vectorindex"
	"github.com/govnavigator/govnavigator-mcp/pkg/types"
)

var (
	// ErrNoSnapshot is returned when the database holds no saved index
	ErrNoSnapshot = errors.New("no snapshot present")
	// ErrSnapshotCorrupt is returned when stored rows fail validation
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")
)

// Store persists lexical and embedding index snapshots in a single
// SQLite database
type Store struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Open opens or creates the snapshot database at dbPath and applies any
// pending migrations.
func Open(dbPath string) (*Store, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveLexical replaces any stored lexical snapshot with snap. The write
// is transactional: a failure leaves the previous snapshot intact.
func (s *Store) SaveLexical(ctx context.Context, snap index.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"postings", "term_stats", "doc_lengths", "lexical_meta", "documents"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, doc := range snap.Documents {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (doc_id, section_number, title, content, chapter, jurisdiction, url)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, doc.ID, doc.SectionNumber, doc.Title, doc.Content, doc.Chapter, doc.Jurisdiction, doc.URL)
		if err != nil {
			return fmt.Errorf("failed to save document %d: %w", doc.ID, err)
		}
	}

	for term, postings := range snap.Postings {
		for seq, p := range postings {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO postings (term, seq, doc_id, term_freq)
				VALUES (?, ?, ?, ?)
			`, term, seq, p.DocID, p.TermFreq)
			if err != nil {
				return fmt.Errorf("failed to save posting for term %q: %w", term, err)
			}
		}
	}

	for term, idf := range snap.IDF {
		if _, err := tx.ExecContext(ctx, "INSERT INTO term_stats (term, idf) VALUES (?, ?)", term, idf); err != nil {
			return fmt.Errorf("failed to save idf for term %q: %w", term, err)
		}
	}

	for docID, length := range snap.DocLengths {
		if _, err := tx.ExecContext(ctx, "INSERT INTO doc_lengths (doc_id, length) VALUES (?, ?)", docID, length); err != nil {
			return fmt.Errorf("failed to save doc length %d: %w", docID, err)
		}
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO lexical_meta (key, value) VALUES ('num_docs', ?)", strconv.Itoa(snap.NumDocs))
	if err != nil {
		return fmt.Errorf("failed to save lexical metadata: %w", err)
	}

	return tx.Commit()
}

// LoadLexical reads the stored lexical snapshot. ErrNoSnapshot is
// returned when no lexical index has ever been saved.
func (s *Store) LoadLexical(ctx context.Context) (index.Snapshot, error) {
	var snap index.Snapshot

	var numDocsStr string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM lexical_meta WHERE key = 'num_docs'").Scan(&numDocsStr)
	if err == sql.ErrNoRows {
		return snap, ErrNoSnapshot
	}
	if err != nil {
		return snap, err
	}
	numDocs, err := strconv.Atoi(numDocsStr)
	if err != nil {
		return snap, fmt.Errorf("%w: bad num_docs %q", ErrSnapshotCorrupt, numDocsStr)
	}
	snap.NumDocs = numDocs

	snap.Documents, err = s.loadDocuments(ctx, "documents")
	if err != nil {
		return snap, err
	}

	snap.Postings, err = s.loadPostings(ctx)
	if err != nil {
		return snap, err
	}

	snap.IDF = make(map[string]float64)
	rows, err := s.db.QueryContext(ctx, "SELECT term, idf FROM term_stats")
	if err != nil {
		return snap, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var term string
		var idf float64
		if err := rows.Scan(&term, &idf); err != nil {
			return snap, err
		}
		snap.IDF[term] = idf
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	snap.DocLengths = make([]int, len(snap.Documents))
	lenRows, err := s.db.QueryContext(ctx, "SELECT doc_id, length FROM doc_lengths")
	if err != nil {
		return snap, err
	}
	defer func() { _ = lenRows.Close() }()
	for lenRows.Next() {
		var docID, length int
		if err := lenRows.Scan(&docID, &length); err != nil {
			return snap, err
		}
		if docID < 0 || docID >= len(snap.DocLengths) {
			return snap, fmt.Errorf("%w: doc length for unknown document %d", ErrSnapshotCorrupt, docID)
		}
		snap.DocLengths[docID] = length
	}
	return snap, lenRows.Err()
}

// loadDocuments reads a document table ordered by doc_id and verifies
// the IDs form the dense range 0..n-1.
func (s *Store) loadDocuments(ctx context.Context, table string) ([]types.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, section_number, title, content, chapter, jurisdiction, url
		FROM `+table+`
		ORDER BY doc_id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]types.Document, 0)
	for rows.Next() {
		var doc types.Document
		err := rows.Scan(&doc.ID, &doc.SectionNumber, &doc.Title, &doc.Content,
			&doc.Chapter, &doc.Jurisdiction, &doc.URL)
		if err != nil {
			return nil, err
		}
		if doc.ID != len(docs) {
			return nil, fmt.Errorf("%w: document IDs not contiguous at %d", ErrSnapshotCorrupt, doc.ID)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Store) loadPostings(ctx context.Context) (map[string][]index.Posting, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT term, doc_id, term_freq FROM postings ORDER BY term, seq")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	postings := make(map[string][]index.Posting)
	for rows.Next() {
		var term string
		var p index.Posting
		if err := rows.Scan(&term, &p.DocID, &p.TermFreq); err != nil {
			return nil, err
		}
		postings[term] = append(postings[term], p)
	}
	return postings, rows.Err()
}

// SaveVectors replaces any stored embedding snapshot with snap
func (s *Store) SaveVectors(ctx context.Context, snap vectorindex.Snapshot) error {
	if len(snap.Documents) != len(snap.Vectors) {
		return fmt.Errorf("%w: %d documents but %d vectors", ErrSnapshotCorrupt, len(snap.Documents), len(snap.Vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM vector_documents"); err != nil {
		return fmt.Errorf("failed to clear vector_documents: %w", err)
	}

	for i, doc := range snap.Documents {
		vec := snap.Vectors[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO vector_documents (doc_id, section_number, title, content, chapter, jurisdiction, url, dimension, vector)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, doc.ID, doc.SectionNumber, doc.Title, doc.Content, doc.Chapter,
			doc.Jurisdiction, doc.URL, len(vec), serializeVector(vec))
		if err != nil {
			return fmt.Errorf("failed to save vector document %d: %w", doc.ID, err)
		}
	}

	return tx.Commit()
}

// LoadVectors reads the stored embedding snapshot. ErrNoSnapshot is
// returned when no embedding index has ever been saved.
func (s *Store) LoadVectors(ctx context.Context) (vectorindex.Snapshot, error) {
	var snap vectorindex.Snapshot

	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, section_number, title, content, chapter, jurisdiction, url, dimension, vector
		FROM vector_documents
		ORDER BY doc_id
	`)
	if err != nil {
		return snap, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var doc types.Document
		var dim int
		var blob []byte
		err := rows.Scan(&doc.ID, &doc.SectionNumber, &doc.Title, &doc.Content,
			&doc.Chapter, &doc.Jurisdiction, &doc.URL, &dim, &blob)
		if err != nil {
			return snap, err
		}
		if doc.ID != len(snap.Documents) {
			return snap, fmt.Errorf("%w: document IDs not contiguous at %d", ErrSnapshotCorrupt, doc.ID)
		}
		vec, err := deserializeVector(blob, dim)
		if err != nil {
			return snap, fmt.Errorf("document %d: %w", doc.ID, err)
		}
		snap.Documents = append(snap.Documents, doc)
		snap.Vectors = append(snap.Vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	if len(snap.Documents) == 0 {
		return snap, ErrNoSnapshot
	}
	return snap, nil
}

// serializeVector encodes a float32 vector as little-endian bytes
func serializeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// deserializeVector decodes a little-endian float32 blob, verifying the
// byte length matches the recorded dimension.
func deserializeVector(data []byte, dim int) ([]float32, error) {
	if len(data) != 4*dim {
		return nil, fmt.Errorf("%w: vector blob is %d bytes, expected %d", ErrSnapshotCorrupt, len(data), 4*dim)
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
