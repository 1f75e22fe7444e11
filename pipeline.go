package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
)

const recentEventLimit = 10
const genericErrorReply = "❌ Произошла ошибка. Попробуй еще раз."
const defaultWorkType = "📝 Работа"
const guestName = "Гость"

// Sender delivers outbound messages to a Telegram chat.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// Directory is the read-only employee lookup backing role resolution and
// the context's staff list.
type Directory interface {
	StaffByTelegramID(telegramID string) (*StaffRecord, error)
	ActiveStaffNames() ([]string, error)
}

// EventStore is the append-only record store plus the two context reads.
type EventStore interface {
	InsertWorkEvent(ev WorkEvent) (int64, error)
	ClientNames() ([]string, error)
	RecentEvents(limit int) ([]EventSummary, error)
}

type sqliteStore struct {
	db *sql.DB
}

func (s *sqliteStore) StaffByTelegramID(telegramID string) (*StaffRecord, error) {
	return GetStaffByTelegramID(s.db, telegramID)
}

func (s *sqliteStore) ActiveStaffNames() ([]string, error) {
	return GetActiveStaffNames(s.db)
}

func (s *sqliteStore) InsertWorkEvent(ev WorkEvent) (int64, error) {
	return InsertWorkEvent(s.db, ev)
}

func (s *sqliteStore) ClientNames() ([]string, error) {
	return GetClientNames(s.db)
}

func (s *sqliteStore) RecentEvents(limit int) ([]EventSummary, error) {
	return GetRecentEvents(s.db, limit)
}

// Pipeline routes one inbound text message: resolve role, assemble
// context, classify, validate, dispatch. Stages run strictly in order;
// the single failure match lives in HandleText.
type Pipeline struct {
	cfg      Config
	dir      Directory
	store    EventStore
	sender   Sender
	classify Classifier
}

func NewPipeline(cfg Config, db *sql.DB, sender Sender, classify Classifier) *Pipeline {
	s := &sqliteStore{db: db}
	return &Pipeline{cfg: cfg, dir: s, store: s, sender: sender, classify: classify}
}

// ResolveRole derives the caller's role from the directory and the
// configured supervisor id. A missing directory entry is not an error.
func (p *Pipeline) ResolveRole(telegramID int64) (Role, error) {
	staff, err := p.dir.StaffByTelegramID(strconv.FormatInt(telegramID, 10))
	if err != nil {
		return Role{}, fmt.Errorf("directory lookup: %w", err)
	}

	role := Role{
		IsSupervisor: telegramID == p.cfg.SupervisorID,
		Name:         guestName,
	}
	if staff != nil {
		role.IsStaff = true
		role.Name = staff.Name
		role.Staff = staff
	}
	return role, nil
}

// BuildContext assembles the classifier's world snapshot. Each source
// degrades to empty on failure; the client list falls back to the
// configured defaults so it is never empty.
func (p *Pipeline) BuildContext() Context {
	var botCtx Context

	staffNames, err := p.dir.ActiveStaffNames()
	if err != nil {
		log.Printf("context staff names error: %v", err)
	} else {
		botCtx.StaffNames = staffNames
	}

	clients, err := p.store.ClientNames()
	if err != nil {
		log.Printf("context client names error: %v", err)
	}
	if len(clients) == 0 {
		clients = p.cfg.DefaultClients
	}
	botCtx.ClientNames = clients

	recent, err := p.store.RecentEvents(recentEventLimit)
	if err != nil {
		log.Printf("context recent events error: %v", err)
	} else {
		botCtx.Recent = recent
	}

	return botCtx
}

// HandleText is the per-message unit of work. Unauthorized users get no
// reply at all; any stage failure is matched once here and answered with
// the generic error reply.
func (p *Pipeline) HandleText(chatID, userID int64, text string) {
	role, err := p.ResolveRole(userID)
	if err != nil {
		log.Printf("message handling error user=%d: %v", userID, err)
		p.sendGenericError(chatID)
		return
	}
	if !role.Authorized() {
		return
	}

	if err := p.handleAuthorized(chatID, userID, text, role); err != nil {
		log.Printf("message handling error user=%d: %v", userID, err)
		p.sendGenericError(chatID)
	}
}

func (p *Pipeline) handleAuthorized(chatID, userID int64, text string, role Role) error {
	botCtx := p.BuildContext()

	ctx, cancel := context.WithTimeout(context.Background(), classifyTimeout)
	defer cancel()
	raw, err := p.classify(ctx, text, role, botCtx)
	if err != nil {
		return fmt.Errorf("classifying message: %w", err)
	}

	decision := ParseDecision(raw)
	return p.Dispatch(chatID, userID, text, role, decision)
}

// Dispatch performs the decision's side effect. A record decision that
// fails to persist aborts the unit of work before any reply goes out;
// a notification failure after the commit never does.
func (p *Pipeline) Dispatch(chatID, userID int64, text string, role Role, decision Decision) error {
	switch decision.Action {
	case ActionRecord:
		ev := buildWorkEvent(role, userID, text, decision.Data)
		id, err := p.store.InsertWorkEvent(ev)
		if err != nil {
			return fmt.Errorf("inserting work event: %w", err)
		}
		if err := p.sender.SendMessage(chatID, formatAck(id, decision.Data)); err != nil {
			return fmt.Errorf("sending acknowledgment: %w", err)
		}
		if !role.IsSupervisor {
			p.notifySupervisor(role.Name, decision.Data, text, id)
		}
	default:
		// clarify and answer both pass the message through verbatim.
		if err := p.sender.SendMessage(chatID, decision.Message); err != nil {
			return fmt.Errorf("sending reply: %w", err)
		}
	}
	return nil
}

func buildWorkEvent(role Role, userID int64, originalText string, data WorkPayload) WorkEvent {
	ev := WorkEvent{
		StaffName:    role.Name,
		TelegramID:   strconv.FormatInt(userID, 10),
		WorkType:     data.WorkType,
		Client:       data.Client,
		Quantity:     data.Quantity,
		Details:      data.Details,
		OriginalText: originalText,
	}
	if role.Staff != nil {
		ev.StaffID = role.Staff.ID
		ev.StaffName = role.Staff.Name
	}
	if ev.WorkType == "" {
		ev.WorkType = defaultWorkType
	}
	if ev.Details == "" {
		ev.Details = originalText
	}
	return ev
}

// notifySupervisor is fire-and-forget relative to the already-committed
// record: every failure is logged and swallowed.
func (p *Pipeline) notifySupervisor(staffName string, data WorkPayload, originalText string, id int64) {
	if err := p.sender.SendMessage(p.cfg.SupervisorID, formatNotification(staffName, data, originalText, id)); err != nil {
		log.Printf("supervisor notify error event=%d: %v", id, err)
	}
}

func (p *Pipeline) sendGenericError(chatID int64) {
	if err := p.sender.SendMessage(chatID, genericErrorReply); err != nil {
		log.Printf("error reply send failed chat=%d: %v", chatID, err)
	}
}

func formatAck(id int64, data WorkPayload) string {
	workType := data.WorkType
	if workType == "" {
		workType = defaultWorkType
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ *Записано! #%d*\n\n", id)
	fmt.Fprintf(&b, "📋 %s\n", workType)
	if data.Client != "" {
		fmt.Fprintf(&b, "🏢 %s\n", data.Client)
	}
	if data.Quantity != "" {
		fmt.Fprintf(&b, "📦 %s шт", data.Quantity)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatNotification(staffName string, data WorkPayload, originalText string, id int64) string {
	workType := data.WorkType
	if workType == "" {
		workType = defaultWorkType
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔔 *Новая запись #%d*\n\n", id)
	fmt.Fprintf(&b, "👤 %s\n", staffName)
	fmt.Fprintf(&b, "📋 %s\n", workType)
	if data.Client != "" {
		fmt.Fprintf(&b, "🏢 %s\n", data.Client)
	}
	if data.Quantity != "" {
		fmt.Fprintf(&b, "📦 %s шт\n", data.Quantity)
	}
	fmt.Fprintf(&b, "\n💬 \"%s\"", originalText)
	return b.String()
}
