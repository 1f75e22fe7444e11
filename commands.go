package main

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

func handleCommand(db *sql.DB, p *Pipeline, sender Sender, msg IncomingMessage) {
	cmd := strings.TrimSpace(msg.Text)
	if i := strings.IndexByte(cmd, ' '); i >= 0 {
		cmd = cmd[:i]
	}
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}

	role, err := p.ResolveRole(msg.From.ID)
	if err != nil {
		log.Printf("command role error user=%d cmd=%s: %v", msg.From.ID, cmd, err)
		return
	}
	log.Printf("command received cmd=%s user=%d authorized=%v", cmd, msg.From.ID, role.Authorized())

	switch cmd {
	case "/start":
		handleStart(sender, role, msg)
	case "/help":
		handleHelp(sender, role, msg)
	case "/stats":
		handleStats(sender, db, role, msg)
	case "/report":
		handleReport(sender, db, role, msg)
	}
}

func handleStart(sender Sender, role Role, msg IncomingMessage) {
	reply := buildStartMessage(role, msg.From)
	if err := sender.SendMessage(msg.Chat.ID, reply); err != nil {
		log.Printf("start reply error user=%d: %v", msg.From.ID, err)
	}
}

func buildStartMessage(role Role, user *TelegramUser) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👋 Привет, %s!\n\n", user.FirstName)

	switch {
	case role.IsSupervisor && role.IsStaff:
		b.WriteString("💼 *Ты руководитель и сотрудник!*\n\n")
		b.WriteString("🤖 Я умный AI помощник. Могу:\n")
		b.WriteString("✅ Записывать работу с уточнениями\n")
		b.WriteString("✅ Отвечать на вопросы по данным\n")
		b.WriteString("✅ Давать отчеты и статистику\n\n")
		b.WriteString("Просто пиши что нужно!\n\n")
		b.WriteString("Команды:\n")
		b.WriteString("/stats - статистика\n")
		b.WriteString("/report - отчет за день\n")
		b.WriteString("/help - помощь")
	case role.IsStaff:
		b.WriteString("🤖 Я умный AI помощник!\n\n")
		b.WriteString("Могу:\n")
		b.WriteString("✅ Записывать работу\n")
		b.WriteString("✅ Уточнять детали\n")
		b.WriteString("✅ Отвечать на вопросы\n\n")
		b.WriteString("Пиши в свободной форме!\n\n")
		b.WriteString("/stats - статистика\n")
		b.WriteString("/help - помощь")
	case role.IsSupervisor:
		b.WriteString("💼 *Ты руководитель!*\n\n")
		b.WriteString("Получаешь уведомления о работе.\n\n")
		b.WriteString("/report - отчет\n")
		b.WriteString("/stats - статистика")
	default:
		username := "нет"
		if user.Username != "" {
			username = user.Username
		}
		b.WriteString("❌ Ты не зарегистрирован.\n\n")
		fmt.Fprintf(&b, "Твой ID: `%d`\n", user.ID)
		fmt.Fprintf(&b, "Username: @%s\n\n", username)
		b.WriteString("Передай эти данные руководителю.")
	}
	return b.String()
}

func handleHelp(sender Sender, role Role, msg IncomingMessage) {
	reply := buildHelpMessage(role)
	if err := sender.SendMessage(msg.Chat.ID, reply); err != nil {
		log.Printf("help reply error user=%d: %v", msg.From.ID, err)
	}
}

func buildHelpMessage(role Role) string {
	var b strings.Builder
	b.WriteString("📚 *ПОМОЩЬ*\n\n")

	if role.Authorized() {
		b.WriteString("🤖 Я умный AI помощник!\n\n")
		b.WriteString("Пиши мне в свободной форме:\n\n")
		b.WriteString("💬 \"Принял заказ 50 боди\"\n")
		b.WriteString("💬 \"Кто что сделал сегодня?\"\n")
		b.WriteString("💬 \"Сколько заказов от Анны?\"\n\n")
		b.WriteString("Я сам пойму и уточню детали!\n\n")
	}

	b.WriteString("Команды:\n")
	b.WriteString("/start - начало\n")
	b.WriteString("/stats - статистика\n")
	if role.Authorized() {
		b.WriteString("/report - отчет за день\n")
	}
	b.WriteString("/help - помощь")
	return b.String()
}

func handleStats(sender Sender, db *sql.DB, role Role, msg IncomingMessage) {
	if !role.Authorized() {
		sendCommandReply(sender, msg, "❌ Недостаточно прав")
		return
	}

	telegramID := strconv.FormatInt(msg.From.ID, 10)
	now := time.Now()

	total, err := CountEventsByTelegramID(db, telegramID, time.Time{})
	if err != nil {
		log.Printf("stats query error user=%d: %v", msg.From.ID, err)
		sendCommandReply(sender, msg, genericErrorReply)
		return
	}
	today, err := CountEventsByTelegramID(db, telegramID, startOfDay(now))
	if err != nil {
		log.Printf("stats query error user=%d: %v", msg.From.ID, err)
		sendCommandReply(sender, msg, genericErrorReply)
		return
	}
	week, err := CountEventsByTelegramID(db, telegramID, startOfDay(now).AddDate(0, 0, -7))
	if err != nil {
		log.Printf("stats query error user=%d: %v", msg.From.ID, err)
		sendCommandReply(sender, msg, genericErrorReply)
		return
	}

	sendCommandReply(sender, msg, buildStatsMessage(role.Name, total, today, week))
}

func buildStatsMessage(name string, total, today, week int) string {
	return fmt.Sprintf(
		"📊 *Статистика %s*\n\n📝 Всего записей: %d\n📅 За сегодня: %d\n📆 За неделю: %d\n\n💪 Так держать!",
		name, total, today, week,
	)
}

func handleReport(sender Sender, db *sql.DB, role Role, msg IncomingMessage) {
	if !role.Authorized() {
		sendCommandReply(sender, msg, "❌ Недостаточно прав")
		return
	}

	events, err := GetEventsSince(db, startOfDay(time.Now()))
	if err != nil {
		log.Printf("report query error user=%d: %v", msg.From.ID, err)
		sendCommandReply(sender, msg, genericErrorReply)
		return
	}

	sendCommandReply(sender, msg, BuildDailyReport(events))
}

func sendCommandReply(sender Sender, msg IncomingMessage, text string) {
	if err := sender.SendMessage(msg.Chat.ID, text); err != nil {
		log.Printf("command reply error user=%d: %v", msg.From.ID, err)
	}
}
