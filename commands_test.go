package main

import (
	"strings"
	"testing"
)

func TestBuildStartMessageByRole(t *testing.T) {
	user := &TelegramUser{ID: 100, FirstName: "Маша", Username: "masha"}

	both := buildStartMessage(Role{IsSupervisor: true, IsStaff: true, Name: "Маша"}, user)
	if !strings.Contains(both, "руководитель и сотрудник") {
		t.Fatalf("unexpected combined-role greeting:\n%s", both)
	}

	staff := buildStartMessage(Role{IsStaff: true, Name: "Маша"}, user)
	if !strings.Contains(staff, "Пиши в свободной форме!") {
		t.Fatalf("unexpected staff greeting:\n%s", staff)
	}
	if strings.Contains(staff, "/report") {
		t.Fatal("staff greeting must not advertise /report")
	}

	boss := buildStartMessage(Role{IsSupervisor: true, Name: guestName}, user)
	if !strings.Contains(boss, "Ты руководитель!") {
		t.Fatalf("unexpected supervisor greeting:\n%s", boss)
	}

	guest := buildStartMessage(Role{Name: guestName}, user)
	if !strings.Contains(guest, "Ты не зарегистрирован") {
		t.Fatalf("unexpected guest greeting:\n%s", guest)
	}
	if !strings.Contains(guest, "`100`") || !strings.Contains(guest, "@masha") {
		t.Fatalf("guest greeting must show id and username:\n%s", guest)
	}

	noUsername := buildStartMessage(Role{Name: guestName}, &TelegramUser{ID: 100, FirstName: "Гость"})
	if !strings.Contains(noUsername, "@нет") {
		t.Fatalf("expected placeholder username:\n%s", noUsername)
	}
}

func TestBuildHelpMessageByRole(t *testing.T) {
	authorized := buildHelpMessage(Role{IsStaff: true, Name: "Маша"})
	if !strings.Contains(authorized, "Принял заказ 50 боди") {
		t.Fatalf("authorized help missing examples:\n%s", authorized)
	}
	if !strings.Contains(authorized, "/report") {
		t.Fatalf("authorized help missing /report:\n%s", authorized)
	}

	guest := buildHelpMessage(Role{Name: guestName})
	if strings.Contains(guest, "/report") {
		t.Fatal("guest help must not list /report")
	}
	if !strings.Contains(guest, "/start") {
		t.Fatalf("guest help missing commands:\n%s", guest)
	}
}

func TestBuildStatsMessage(t *testing.T) {
	msg := buildStatsMessage("Маша", 12, 3, 7)
	if !strings.Contains(msg, "Статистика Маша") {
		t.Fatalf("stats missing name:\n%s", msg)
	}
	if !strings.Contains(msg, "Всего записей: 12") ||
		!strings.Contains(msg, "За сегодня: 3") ||
		!strings.Contains(msg, "За неделю: 7") {
		t.Fatalf("stats missing counts:\n%s", msg)
	}
}

func TestHandleStatsUnauthorized(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	msg := IncomingMessage{From: &TelegramUser{ID: 555}, Chat: TelegramChat{ID: 555}}

	handleStats(sender, db, Role{Name: guestName}, msg)

	if len(sender.sent) != 1 || sender.sent[0].text != "❌ Недостаточно прав" {
		t.Fatalf("expected permission denial, got %+v", sender.sent)
	}
}

func TestHandleCommandRouting(t *testing.T) {
	db := newTestDB(t)
	seedStaff(t, db, "Маша", "100", true)

	sender := &fakeSender{}
	p := NewPipeline(Config{SupervisorID: 777, DefaultClients: defaultKnownClients}, db, sender, staticClassifier("", nil))

	msg := IncomingMessage{
		From: &TelegramUser{ID: 100, FirstName: "Маша"},
		Chat: TelegramChat{ID: 100},
		Text: "/start@workbot",
	}
	handleCommand(db, p, sender, msg)

	if len(sender.sent) != 1 {
		t.Fatalf("expected one reply, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].text, "Привет, Маша!") {
		t.Fatalf("unexpected /start reply:\n%s", sender.sent[0].text)
	}

	sender.sent = nil
	msg.Text = "/stats"
	handleCommand(db, p, sender, msg)
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0].text, "Статистика Маша") {
		t.Fatalf("unexpected /stats reply: %+v", sender.sent)
	}

	sender.sent = nil
	msg.Text = "/unknown"
	handleCommand(db, p, sender, msg)
	if len(sender.sent) != 0 {
		t.Fatalf("unknown command must be ignored, got %+v", sender.sent)
	}
}
