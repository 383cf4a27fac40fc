// Package bot bridges Telegram updates to the shop services.
package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopbot/miniapp-shop/app/config"
	"github.com/shopbot/miniapp-shop/app/order"
	"go.uber.org/zap"
)

const (
	welcomeText      = "Welcome to the online shop 🍔🥦\nGroceries and ready meals.\n\nTap \"Open shop\" below to start."
	adminText        = "Catalog management:"
	accessDeniedText = "Access denied."
	unknownText      = "Send /start to open the shop."
	linkFailedText   = "Could not create an admin link right now, please try again."
	linkPrivateText  = "The admin link was sent to you in a private chat."

	shopButton  = "🛒 Open shop"
	adminButton = "⚙️ Admin page"
)

// API is the part of *tgbotapi.BotAPI the gateway uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type OrderReceiver interface {
	ReceiveOrder(ctx context.Context, raw string, buyer order.Buyer) (order.Receipt, error)
}

type AdminLinker interface {
	AdminLoginURL(ctx context.Context, chatID int64) (string, error)
}

type Gateway struct {
	api     API
	orders  OrderReceiver
	links   AdminLinker
	admins  config.Admins
	shopURL string
	log     *zap.Logger
}

func NewGateway(api API, orders OrderReceiver, links AdminLinker, admins config.Admins, baseURL string, log *zap.Logger) *Gateway {
	return &Gateway{
		api:     api,
		orders:  orders,
		links:   links,
		admins:  admins,
		shopURL: baseURL + "/shop",
		log:     log,
	}
}

// Run polls for updates until ctx is cancelled. Each update is handled in
// its own goroutine and runs to completion even after ctx is cancelled;
// Run waits for them before returning.
func (g *Gateway) Run(ctx context.Context) error {
	// Pending updates from before the start are skipped.
	if _, err := g.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("drop pending updates: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := g.api.GetUpdatesChan(u)
	g.log.Info("bot polling started")

	handlerCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			g.api.StopReceivingUpdates()
			g.log.Info("bot polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				g.HandleUpdate(handlerCtx, update)
			}()
		}
	}
}

func (g *Gateway) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	log := g.log.With(zap.Int64("chat_id", msg.Chat.ID), zap.Int64("user_id", msg.From.ID))

	switch {
	case msg.WebAppData != nil:
		buyer := order.Buyer{
			ChatID:    msg.Chat.ID,
			Username:  msg.From.UserName,
			FirstName: msg.From.FirstName,
		}
		// Malformed carts are logged and answered inside ReceiveOrder.
		g.orders.ReceiveOrder(ctx, msg.WebAppData.Data, buyer)
	case msg.IsCommand():
		switch msg.Command() {
		case "start":
			g.handleStart(ctx, log, msg)
		case "admin":
			g.handleAdmin(ctx, log, msg)
		default:
			g.reply(log, tgbotapi.NewMessage(msg.Chat.ID, unknownText))
		}
	default:
		g.reply(log, tgbotapi.NewMessage(msg.Chat.ID, unknownText))
	}
}

func (g *Gateway) handleStart(ctx context.Context, log *zap.Logger, msg *tgbotapi.Message) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, welcomeText)
	keyboard := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(
		tgbotapi.KeyboardButton{Text: shopButton, WebApp: &tgbotapi.WebAppInfo{URL: g.shopURL}},
	))
	keyboard.ResizeKeyboard = true
	reply.ReplyMarkup = keyboard
	g.reply(log, reply)

	if g.admins.Contains(msg.From.ID) {
		g.sendAdminLink(ctx, log, msg)
	}
}

func (g *Gateway) handleAdmin(ctx context.Context, log *zap.Logger, msg *tgbotapi.Message) {
	if !g.admins.Contains(msg.From.ID) {
		log.Warn("admin command from non-admin")
		g.reply(log, tgbotapi.NewMessage(msg.Chat.ID, accessDeniedText))
		return
	}
	g.sendAdminLink(ctx, log, msg)
}

// sendAdminLink delivers a one-time login link to the admin's private chat
// only. A command issued in a group gets a short notice there instead.
func (g *Gateway) sendAdminLink(ctx context.Context, log *zap.Logger, msg *tgbotapi.Message) {
	adminID := msg.From.ID
	link, err := g.links.AdminLoginURL(ctx, adminID)
	if err != nil {
		log.Error("failed to issue admin link", zap.Error(err))
		g.reply(log, tgbotapi.NewMessage(msg.Chat.ID, linkFailedText))
		return
	}
	reply := tgbotapi.NewMessage(adminID, adminText)
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonURL(adminButton, link),
	))
	g.reply(log, reply)

	if msg.Chat.ID != adminID {
		log.Info("admin link sent privately for a group command")
		g.reply(log, tgbotapi.NewMessage(msg.Chat.ID, linkPrivateText))
	}
}

func (g *Gateway) reply(log *zap.Logger, c tgbotapi.Chattable) {
	if _, err := g.api.Send(c); err != nil {
		log.Error("failed to send reply", zap.Error(err))
	}
}
