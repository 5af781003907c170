package semanticindex

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	sqlite_vec.Auto()
}

// ANN wraps an in-memory SQLite database holding a sqlite-vec vec0 virtual
// table, grounded on theRebelliousNerd-codenerd's vector_store.go, which
// pairs mattn/go-sqlite3 with asg017/sqlite-vec-go-bindings the same way.
type ANN struct {
	db  *sql.DB
	dim int
}

// NewANN creates an empty in-memory vec0 index sized for dim-wide vectors.
func NewANN(dim int) (*ANN, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("semanticindex: open in-memory sqlite: %w", err)
	}
	stmt := fmt.Sprintf("CREATE VIRTUAL TABLE vec_items USING vec0(embedding float[%d])", dim)
	if _, err := db.Exec(stmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("semanticindex: create vec0 table: %w", err)
	}
	return &ANN{db: db, dim: dim}, nil
}

// Insert adds vectors keyed by their vocabulary index (so Search can map a
// result rowid straight back into the corpus vocabulary).
func (a *ANN) Insert(ctx context.Context, vectors [][]float32) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("semanticindex: begin insert tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO vec_items(rowid, embedding) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("semanticindex: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range vectors {
		if len(v) != a.dim {
			tx.Rollback()
			return fmt.Errorf("semanticindex: vector %d has dimension %d, want %d", i, len(v), a.dim)
		}
		if _, err := stmt.ExecContext(ctx, i, encodeVector(v)); err != nil {
			tx.Rollback()
			return fmt.Errorf("semanticindex: insert vector %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Result is one nearest-neighbor match.
type Result struct {
	VocabularyIndex int
	Distance        float64
}

// Search returns the k nearest vectors to query by vec0's default L2
// (Euclidean) distance.
func (a *ANN) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != a.dim {
		return nil, fmt.Errorf("semanticindex: query dimension %d, want %d", len(query), a.dim)
	}
	if k <= 0 {
		k = 10
	}
	rows, err := a.db.QueryContext(ctx,
		"SELECT rowid, distance FROM vec_items WHERE embedding MATCH ? AND k = ? ORDER BY distance",
		encodeVector(query), k,
	)
	if err != nil {
		return nil, fmt.Errorf("semanticindex: ann search: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.VocabularyIndex, &r.Distance); err != nil {
			return nil, fmt.Errorf("semanticindex: scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Serialize dumps the whole in-memory database to a byte slice via
// mattn/go-sqlite3's native serialize entrypoint, a literal match for
// spec.md's "ANN via its native serialize entrypoint."
func (a *ANN) Serialize() ([]byte, error) {
	conn, err := a.db.Conn(context.Background())
	if err != nil {
		return nil, fmt.Errorf("semanticindex: acquire conn: %w", err)
	}
	defer conn.Close()

	var out []byte
	err = conn.Raw(func(driverConn any) error {
		sc, ok := driverConn.(interface{ Serialize(schema string) ([]byte, error) })
		if !ok {
			return fmt.Errorf("semanticindex: driver connection does not support Serialize")
		}
		b, err := sc.Serialize("main")
		if err != nil {
			return err
		}
		out = make([]byte, len(b))
		copy(out, b)
		return nil
	})
	return out, err
}

// DeserializeANN rebuilds an ANN from bytes produced by Serialize.
func DeserializeANN(data []byte, dim int) (*ANN, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("semanticindex: open in-memory sqlite: %w", err)
	}
	conn, err := db.Conn(context.Background())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("semanticindex: acquire conn: %w", err)
	}
	err = conn.Raw(func(driverConn any) error {
		sc, ok := driverConn.(interface{ Deserialize(b []byte, schema string) error })
		if !ok {
			return fmt.Errorf("semanticindex: driver connection does not support Deserialize")
		}
		return sc.Deserialize(data, "main")
	})
	conn.Close()
	if err != nil {
		db.Close()
		return nil, err
	}
	return &ANN{db: db, dim: dim}, nil
}

// Close releases the underlying in-memory database.
func (a *ANN) Close() error { return a.db.Close() }
