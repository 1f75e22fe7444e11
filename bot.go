package main

import (
	"database/sql"
	"log"
	"strings"
	"time"
)

const pollRetryDelay = 3 * time.Second

// RunBot drives the long-poll update loop until stop is closed. Updates
// are handled sequentially, so replies to any one user keep message order.
func RunBot(db *sql.DB, tg *TelegramClient, p *Pipeline, stop <-chan struct{}) error {
	var offset int64
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		updates, err := tg.GetUpdates(offset)
		if err != nil {
			log.Printf("telegram poll error: %v", err)
			time.Sleep(pollRetryDelay)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			handleUpdate(db, p, tg, u)
		}
	}
}

func handleUpdate(db *sql.DB, p *Pipeline, sender Sender, u Update) {
	if u.Message == nil || u.Message.From == nil {
		return
	}
	msg := *u.Message
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	if strings.HasPrefix(text, "/") {
		handleCommand(db, p, sender, msg)
		return
	}
	p.HandleText(msg.Chat.ID, msg.From.ID, text)
}
