package main

import (
	"strings"
	"testing"
)

func TestBuildDailyReportEmpty(t *testing.T) {
	got := BuildDailyReport(nil)
	if got != "📊 Сегодня записей пока нет" {
		t.Fatalf("unexpected empty report: %q", got)
	}
}

func TestBuildDailyReportGroupsByStaff(t *testing.T) {
	events := []WorkEvent{
		{StaffName: "Маша", WorkType: "📥 Принят заказ", Client: "Анна", Quantity: "50"},
		{StaffName: "Ира", WorkType: "✂️ Пошив"},
		{StaffName: "Маша", WorkType: "📦 Отгрузка", Client: "Марков"},
	}

	report := BuildDailyReport(events)

	if !strings.Contains(report, "👤 *Маша*") || !strings.Contains(report, "👤 *Ира*") {
		t.Fatalf("report missing staff headers:\n%s", report)
	}
	if strings.Count(report, "👤") != 2 {
		t.Fatalf("expected 2 staff groups, got %d:\n%s", strings.Count(report, "👤"), report)
	}
	if !strings.Contains(report, "• 📥 Принят заказ (Анна) - 50 шт") {
		t.Fatalf("report missing annotated entry:\n%s", report)
	}
	if !strings.Contains(report, "• ✂️ Пошив\n") {
		t.Fatalf("report missing bare entry:\n%s", report)
	}
	if !strings.Contains(report, "Всего: 3 записей") {
		t.Fatalf("report missing total:\n%s", report)
	}
}

func TestSendDailySummaryDeliversToSupervisor(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}

	if _, err := InsertWorkEvent(db, WorkEvent{
		StaffName:    "Маша",
		TelegramID:   "100",
		WorkType:     "✂️ Пошив",
		Client:       "Анна",
		OriginalText: "Пошив для Анны",
	}); err != nil {
		t.Fatalf("InsertWorkEvent failed: %v", err)
	}

	sendDailySummary(db, sender, 777)

	if len(sender.sent) != 1 {
		t.Fatalf("expected one summary message, got %d", len(sender.sent))
	}
	if sender.sent[0].chatID != 777 {
		t.Fatalf("summary went to wrong chat: %d", sender.sent[0].chatID)
	}
	if !strings.Contains(sender.sent[0].text, "Маша") {
		t.Fatalf("summary missing staff name: %q", sender.sent[0].text)
	}
}

func TestStartDailySummaryDisabledWithoutSchedule(t *testing.T) {
	db := newTestDB(t)
	if c := StartDailySummary(Config{}, db, &fakeSender{}); c != nil {
		c.Stop()
		t.Fatal("expected nil scheduler when no cron spec configured")
	}
}
