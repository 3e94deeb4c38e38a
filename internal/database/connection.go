package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Connect establishes a connection to the database. DB_TYPE selects the
// driver: "sqlite" for a local file, anything else connects to postgres
// via DATABASE_URL.
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "postgres"
	}

	if dbType == "sqlite" {
		// Create data directory if it doesn't exist
		dataDir := "data"
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}

		dbPath := filepath.Join(dataDir, "lexibot.db")
		db, err := sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}

		// Enable foreign keys
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}

		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		DB = db
	} else {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}

		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		DB = db
	}

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if DB.DriverName() == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS users (
			id %s,
			telegram_id BIGINT UNIQUE NOT NULL,
			username TEXT,
			first_name TEXT,
			last_name TEXT,
			points INTEGER DEFAULT 0,
			notification_enabled BOOLEAN DEFAULT true,
			notification_hour INTEGER DEFAULT 9,
			items_per_session INTEGER DEFAULT 20,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, serial),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS decks (
			id %s,
			user_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, name)
		)`, serial),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS words (
			id %s,
			deck_id BIGINT NOT NULL,
			term TEXT NOT NULL,
			translation TEXT NOT NULL,
			context TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (deck_id) REFERENCES decks(id),
			UNIQUE(deck_id, term)
		)`, serial),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS cards (
			id %s,
			deck_id BIGINT NOT NULL,
			word_id BIGINT,
			front TEXT NOT NULL,
			back TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (deck_id) REFERENCES decks(id),
			FOREIGN KEY (word_id) REFERENCES words(id)
		)`, serial),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS review_items (
			id %s,
			deck_id BIGINT NOT NULL,
			kind TEXT NOT NULL,
			source_id BIGINT NOT NULL,
			repetitions INTEGER DEFAULT 0,
			interval_days INTEGER DEFAULT 0,
			easiness_factor REAL DEFAULT 2.5,
			lapses INTEGER DEFAULT 0,
			is_leech BOOLEAN DEFAULT false,
			familiarity INTEGER DEFAULT 0,
			total_reviews INTEGER DEFAULT 0,
			last_reviewed_at TIMESTAMP,
			next_review_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (deck_id) REFERENCES decks(id),
			UNIQUE(kind, source_id)
		)`, serial),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS review_events (
			id %s,
			item_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			quality INTEGER NOT NULL,
			response_time_ms INTEGER,
			occurred_at TIMESTAMP NOT NULL,
			FOREIGN KEY (item_id) REFERENCES review_items(id)
		)`, serial),
		`
		CREATE TABLE IF NOT EXISTS practice_sessions (
			id TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			deck_id BIGINT,
			session_type TEXT NOT NULL,
			item_count INTEGER NOT NULL,
			started_at TIMESTAMP NOT NULL
		)`,
		`
		CREATE TABLE IF NOT EXISTS streaks (
			user_id BIGINT PRIMARY KEY,
			current_streak INTEGER DEFAULT 0,
			longest_streak INTEGER DEFAULT 0,
			last_activity_date TIMESTAMP,
			freezes_available INTEGER DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_items_next_review ON review_items(next_review_at)`,
		`CREATE INDEX IF NOT EXISTS idx_review_items_deck ON review_items(deck_id)`,
		`CREATE INDEX IF NOT EXISTS idx_review_events_user ON review_events(user_id)`,
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}
	return nil
}
