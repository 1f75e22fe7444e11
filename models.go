package main

import "time"

type StaffRecord struct {
	ID         int64
	Name       string
	TelegramID string // Telegram user id as stored in the directory
	IsActive   bool
}

// Role is derived per message from the directory and the configured
// supervisor id; it is never persisted. A user can be both supervisor
// and staff at the same time.
type Role struct {
	IsSupervisor bool
	IsStaff      bool
	Name         string
	Staff        *StaffRecord // nil when the user has no directory entry
}

func (r Role) Authorized() bool {
	return r.IsStaff || r.IsSupervisor
}

type EventSummary struct {
	StaffName string
	WorkType  string
	Client    string
}

// Context is the request-scoped world snapshot handed to the classifier.
// ClientNames is never empty: the assembler falls back to the configured
// default list when the store has none.
type Context struct {
	StaffNames  []string
	ClientNames []string
	Recent      []EventSummary
}

type WorkEvent struct {
	ID           int64
	StaffID      int64
	StaffName    string
	TelegramID   string
	WorkType     string
	Client       string // empty means not specified
	Quantity     string // kept as text, e.g. "50"
	Details      string
	OriginalText string
	CreatedAt    time.Time
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
