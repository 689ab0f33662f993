// Package recorder persists extracted distance sweeps to a local SQLite
// database so a flight's proximity data can be replayed or inspected later.
package recorder

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/depthbridge/internal/depth"
)

const schema = `
CREATE TABLE IF NOT EXISTS sweeps (
	session TEXT NOT NULL,
	time_usec BIGINT NOT NULL,
	distances_cm TEXT NOT NULL,
	recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sweeps_session ON sweeps(session, time_usec);
`

// Recorder writes one row per extracted sweep, tagged with a per-run
// session ID so multiple flights can share a database file.
type Recorder struct {
	db      *sql.DB
	session string
}

// Open creates or opens the sweep database at path and ensures the schema.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sweep database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sweep schema: %w", err)
	}
	return &Recorder{db: db, session: uuid.NewString()}, nil
}

// Session returns the ID tagging every row written by this run.
func (r *Recorder) Session() string {
	return r.session
}

// Record inserts one sweep. Distances are stored comma-joined in sector
// order, which keeps the table greppable with the sqlite3 shell.
func (r *Recorder) Record(tsUsec uint64, dist depth.DistanceArray) error {
	parts := make([]string, len(dist))
	for i, d := range dist {
		parts[i] = strconv.Itoa(int(d))
	}
	_, err := r.db.Exec(
		"INSERT INTO sweeps (session, time_usec, distances_cm) VALUES (?, ?, ?)",
		r.session, int64(tsUsec), strings.Join(parts, ","),
	)
	if err != nil {
		return fmt.Errorf("failed to record sweep: %w", err)
	}
	return nil
}

// Count returns the number of sweeps stored for this run's session.
func (r *Recorder) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sweeps WHERE session = ?", r.session).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sweeps: %w", err)
	}
	return n, nil
}

// Sweeps returns the stored sweeps for this run's session in time order.
func (r *Recorder) Sweeps() ([]Sweep, error) {
	rows, err := r.db.Query(
		"SELECT time_usec, distances_cm FROM sweeps WHERE session = ? ORDER BY time_usec",
		r.session,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sweeps: %w", err)
	}
	defer rows.Close()

	var out []Sweep
	for rows.Next() {
		var tsUsec int64
		var joined string
		if err := rows.Scan(&tsUsec, &joined); err != nil {
			return nil, fmt.Errorf("failed to scan sweep row: %w", err)
		}
		sweep := Sweep{TimeUsec: uint64(tsUsec)}
		for i, part := range strings.Split(joined, ",") {
			if i >= depth.NumSectors {
				break
			}
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("malformed distances_cm at time_usec %d: %w", tsUsec, err)
			}
			sweep.Distances[i] = uint16(v)
		}
		out = append(out, sweep)
	}
	return out, rows.Err()
}

// Sweep is one stored distance sweep.
type Sweep struct {
	TimeUsec  uint64
	Distances depth.DistanceArray
}

// Close releases the database handle.
func (r *Recorder) Close() error {
	return r.db.Close()
}
