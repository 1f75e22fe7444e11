package main

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		telegram_id TEXT NOT NULL UNIQUE,
		is_active   INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS clients (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS work_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		staff_id      INTEGER,
		staff_name    TEXT NOT NULL,
		telegram_id   TEXT NOT NULL,
		work_type     TEXT NOT NULL,
		client        TEXT,
		quantity      TEXT,
		details       TEXT NOT NULL DEFAULT '',
		original_text TEXT NOT NULL DEFAULT '',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_work_events_created_at ON work_events(created_at);
	CREATE INDEX IF NOT EXISTS idx_work_events_telegram_id ON work_events(telegram_id);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// GetStaffByTelegramID returns nil without error when no directory entry
// exists for the id.
func GetStaffByTelegramID(db *sql.DB, telegramID string) (*StaffRecord, error) {
	var s StaffRecord
	err := db.QueryRow(
		`SELECT id, name, telegram_id, is_active FROM employees WHERE telegram_id = ?`,
		telegramID,
	).Scan(&s.ID, &s.Name, &s.TelegramID, &s.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func GetActiveStaffNames(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM employees WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func GetClientNames(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM clients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// InsertWorkEvent stores one event and returns the assigned id. The insert
// is a single statement, so the record is either fully visible or absent.
func InsertWorkEvent(db *sql.DB, ev WorkEvent) (int64, error) {
	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := db.Exec(
		`INSERT INTO work_events (staff_id, staff_name, telegram_id, work_type, client, quantity, details, original_text, created_at)
		 VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?)`,
		ev.StaffID, ev.StaffName, ev.TelegramID, ev.WorkType,
		ev.Client, ev.Quantity, ev.Details, ev.OriginalText, createdAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func GetRecentEvents(db *sql.DB, limit int) ([]EventSummary, error) {
	rows, err := db.Query(
		`SELECT staff_name, work_type, COALESCE(client, '')
		 FROM work_events ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventSummary
	for rows.Next() {
		var e EventSummary
		if err := rows.Scan(&e.StaffName, &e.WorkType, &e.Client); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func GetEventsSince(db *sql.DB, since time.Time) ([]WorkEvent, error) {
	rows, err := db.Query(
		`SELECT id, COALESCE(staff_id, 0), staff_name, telegram_id, work_type,
		        COALESCE(client, ''), COALESCE(quantity, ''), details, original_text, created_at
		 FROM work_events WHERE created_at >= ? ORDER BY created_at DESC, id DESC`,
		since.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []WorkEvent
	for rows.Next() {
		var ev WorkEvent
		if err := rows.Scan(
			&ev.ID, &ev.StaffID, &ev.StaffName, &ev.TelegramID, &ev.WorkType,
			&ev.Client, &ev.Quantity, &ev.Details, &ev.OriginalText, &ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func CountEventsByTelegramID(db *sql.DB, telegramID string, since time.Time) (int, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM work_events WHERE telegram_id = ? AND created_at >= ?`,
		telegramID, since.UTC(),
	).Scan(&count)
	return count, err
}
