package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the supply chain backend.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS pharmacies (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            name TEXT NOT NULL,
            location TEXT NOT NULL,
            phone_number TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS fournisseurs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            name TEXT NOT NULL,
            location TEXT NOT NULL,
            phone_number TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS medicines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE,
            price REAL NOT NULL CHECK (price >= 0)
        );`,
		`CREATE TABLE IF NOT EXISTS stocks (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            pharm_id INTEGER NOT NULL,
            medical_id INTEGER NOT NULL,
            num_of_units INTEGER NOT NULL CHECK (num_of_units >= 0),
            UNIQUE(pharm_id, medical_id),
            FOREIGN KEY(pharm_id) REFERENCES pharmacies(id),
            FOREIGN KEY(medical_id) REFERENCES medicines(id)
        );`,
		`CREATE TABLE IF NOT EXISTS commands (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            med_id INTEGER NOT NULL,
            pharm_id INTEGER NOT NULL,
            fournisseur_id INTEGER,
            num_of_units INTEGER NOT NULL CHECK (num_of_units > 0),
            start_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            state TEXT NOT NULL DEFAULT 'awaiting'
                CHECK (state IN ('awaiting', 'on_delivery', 'delivered')),
            FOREIGN KEY(med_id) REFERENCES medicines(id),
            FOREIGN KEY(pharm_id) REFERENCES pharmacies(id),
            FOREIGN KEY(fournisseur_id) REFERENCES fournisseurs(id)
        );`,
		`CREATE TABLE IF NOT EXISTS demands (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            med_id INTEGER NOT NULL,
            user_id INTEGER NOT NULL,
            date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(med_id) REFERENCES medicines(id),
            FOREIGN KEY(user_id) REFERENCES users(id)
        );`,
		`CREATE TABLE IF NOT EXISTS sessions (
            id TEXT PRIMARY KEY,
            user_id INTEGER NOT NULL,
            user_type TEXT NOT NULL,
            user_data TEXT NOT NULL,
            expires_at INTEGER NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
