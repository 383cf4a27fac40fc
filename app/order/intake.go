package order

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/shopbot/miniapp-shop/models"
	"go.uber.org/zap"
)

// ApologyMessage is sent to a buyer whose cart could not be read.
const ApologyMessage = "Sorry, we could not read your order. Please open the shop and try again."

// Notifier delivers a text message to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Recorder persists an order before notifications go out.
type Recorder interface {
	CreateOrder(ctx context.Context, o *models.Order) error
}

type Intake struct {
	notifier Notifier
	recorder Recorder
	admins   []int64
	currency string
	log      *zap.Logger
	now      func() time.Time
}

func NewIntake(notifier Notifier, recorder Recorder, admins []int64, currency string, log *zap.Logger) *Intake {
	return &Intake{
		notifier: notifier,
		recorder: recorder,
		admins:   admins,
		currency: currency,
		log:      log,
		now:      time.Now,
	}
}

// ReceiveOrder parses raw, records the order and notifies the buyer and
// every admin. A malformed payload is answered with ApologyMessage and
// returned as *MalformedOrderError. Recording and delivery failures are
// logged only.
func (in *Intake) ReceiveOrder(ctx context.Context, raw string, buyer Buyer) (Receipt, error) {
	log := in.log.With(zap.Int64("buyer_chat_id", buyer.ChatID), zap.String("buyer", buyer.DisplayName()))

	cart, err := ParseCart([]byte(raw))
	if err != nil {
		log.Warn("rejected order payload", zap.Error(err), zap.String("payload", truncate(raw, 512)))
		in.send(ctx, log, buyer.ChatID, ApologyMessage)
		return Receipt{}, err
	}

	o := NewOrder(cart.Lines, buyer, in.now())
	if cart.ClientTotal.Valid && !cart.ClientTotal.Decimal.Equal(o.Total) {
		log.Warn("client total differs from computed total",
			zap.String("client_total", cart.ClientTotal.Decimal.String()),
			zap.String("total", o.Total.String()),
		)
	}

	rec := o.Record()
	if err := in.recorder.CreateOrder(ctx, rec); err != nil {
		log.Error("failed to record order", zap.Error(err))
	} else {
		log = log.With(zap.Uint("order_id", rec.ID))
	}

	receipt := NewReceipt(o, in.currency)
	log.Info("order received", zap.Int("lines", len(o.Lines)), zap.String("total", o.Total.String()))

	in.send(ctx, log, buyer.ChatID, buyerMessage(receipt))
	adminText := adminMessage(receipt, buyer)
	for _, adminID := range in.admins {
		in.send(ctx, log, adminID, adminText)
	}

	return receipt, nil
}

func (in *Intake) send(ctx context.Context, log *zap.Logger, chatID int64, text string) {
	if err := in.notifier.Notify(ctx, chatID, text); err != nil {
		log.Error("failed to deliver message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
