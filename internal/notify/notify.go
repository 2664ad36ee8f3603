// Package notify pushes best-effort Telegram alerts to the handling team's
// alert chat. The pipeline never depends on a send succeeding.
package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	API    *tgbotapi.BotAPI
	ChatID int64
}

// NewBot authorizes the bot for the configured alert chat.
func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: Telegram notifier authorized as %s", api.Self.UserName)
	return &Bot{API: api, ChatID: chatID}, nil
}

// ComplaintAssigned alerts the chat that a complaint was routed.
func (b *Bot) ComplaintAssigned(complaintID, title, handlerID, department string) {
	text := fmt.Sprintf("📋 Complaint assigned\n%s\nDepartment: %s\nHandler: %s\nID: %s",
		title, department, handlerID, complaintID)
	b.send(text)
}

// CriticalComplaint alerts the chat that a complaint was classified
// critical.
func (b *Bot) CriticalComplaint(complaintID, title string) {
	text := fmt.Sprintf("🚨 Critical complaint\n%s\nID: %s", title, complaintID)
	b.send(text)
}

func (b *Bot) send(text string) {
	msg := tgbotapi.NewMessage(b.ChatID, text)
	if _, err := b.API.Send(msg); err != nil {
		log.Printf("WARNING: Telegram alert failed: %v", err)
	}
}
