package trace

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the sqlite transcript database. It satisfies the session's
// Recorder interface: one row per relayed message.
type Store struct {
	*sql.DB
}

// Open opens (or creates) the transcript at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			direction TEXT NOT NULL,
			header TEXT NOT NULL,
			size INTEGER NOT NULL,
			payload BLOB
		);
		CREATE INDEX IF NOT EXISTS idx_messages_direction ON messages(direction);
	`)
	return err
}

// Record inserts one relayed message.
func (s *Store) Record(direction, header string, payload []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.Exec("INSERT INTO messages (at, direction, header, size, payload) VALUES (?, ?, ?, ?, ?)",
		now, direction, header, len(payload), payload)
	return err
}

// Message: one transcript row.
type Message struct {
	ID        int64
	At        time.Time
	Direction string
	Header    string
	Size      int
	Payload   []byte
}

// Messages returns the transcript in insertion order; direction filters when
// non-empty.
func (s *Store) Messages(direction string) ([]Message, error) {
	var rows *sql.Rows
	var err error
	if direction != "" {
		rows, err = s.Query("SELECT id, at, direction, header, size, payload FROM messages WHERE direction = ? ORDER BY id", direction)
	} else {
		rows, err = s.Query("SELECT id, at, direction, header, size, payload FROM messages ORDER BY id")
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Message
	for rows.Next() {
		var m Message
		var at string
		if err := rows.Scan(&m.ID, &at, &m.Direction, &m.Header, &m.Size, &m.Payload); err != nil {
			return nil, err
		}
		m.At, _ = time.Parse(time.RFC3339Nano, at)
		list = append(list, m)
	}
	return list, rows.Err()
}
