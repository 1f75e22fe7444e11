package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// BuildDailyReport groups the day's events by staff member in the order
// they first appear (newest first, matching the query order).
func BuildDailyReport(events []WorkEvent) string {
	if len(events) == 0 {
		return "📊 Сегодня записей пока нет"
	}

	byStaff := make(map[string][]string)
	var order []string
	for _, ev := range events {
		if _, seen := byStaff[ev.StaffName]; !seen {
			order = append(order, ev.StaffName)
		}
		entry := ev.WorkType
		if ev.Client != "" {
			entry += fmt.Sprintf(" (%s)", ev.Client)
		}
		if ev.Quantity != "" {
			entry += fmt.Sprintf(" - %s шт", ev.Quantity)
		}
		byStaff[ev.StaffName] = append(byStaff[ev.StaffName], entry)
	}

	var b strings.Builder
	b.WriteString("📊 *ОТЧЕТ ЗА СЕГОДНЯ*\n\n")
	for _, name := range order {
		fmt.Fprintf(&b, "👤 *%s*\n", name)
		for _, entry := range byStaff[name] {
			fmt.Fprintf(&b, "  • %s\n", entry)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "📝 Всего: %d записей", len(events))
	return b.String()
}

// StartDailySummary schedules delivery of the daily report to the
// supervisor chat. Returns nil when no schedule is configured.
func StartDailySummary(cfg Config, db *sql.DB, sender Sender) *cron.Cron {
	if cfg.DailySummaryCron == "" {
		log.Println("daily summary disabled (no schedule configured)")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.DailySummaryCron, func() {
		sendDailySummary(db, sender, cfg.SupervisorID)
	})
	if err != nil {
		log.Printf("daily summary schedule error spec=%q: %v", cfg.DailySummaryCron, err)
		return nil
	}

	c.Start()
	log.Printf("daily summary scheduled spec=%q", cfg.DailySummaryCron)
	return c
}

func sendDailySummary(db *sql.DB, sender Sender, supervisorID int64) {
	events, err := GetEventsSince(db, startOfDay(time.Now()))
	if err != nil {
		log.Printf("daily summary query error: %v", err)
		return
	}

	if err := sender.SendMessage(supervisorID, BuildDailyReport(events)); err != nil {
		log.Printf("daily summary send error: %v", err)
		return
	}
	log.Printf("daily summary sent events=%d", len(events))
}
