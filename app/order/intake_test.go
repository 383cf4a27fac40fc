package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/shopbot/miniapp-shop/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Mocks ---

type sentMessage struct {
	ChatID int64
	Text   string
}

type MockNotifier struct {
	mu      sync.Mutex
	Sent    []sentMessage
	FailFor map[int64]error
}

func (m *MockNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailFor[chatID]; err != nil {
		return err
	}
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (m *MockNotifier) To(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.Sent {
		if s.ChatID == chatID {
			out = append(out, s.Text)
		}
	}
	return out
}

type MockRecorder struct {
	Saved []*models.Order
	Err   error
}

func (m *MockRecorder) CreateOrder(ctx context.Context, o *models.Order) error {
	if m.Err != nil {
		return m.Err
	}
	o.ID = uint(len(m.Saved) + 1)
	m.Saved = append(m.Saved, o)
	return nil
}

// --- Tests ---

const burgerCart = `{"items":[{"name":"Burger","price":25,"quantity":2}],"total":50}`

var buyer = Buyer{ChatID: 42, Username: "alice"}

func TestReceiveOrder_NotifiesBuyerAndEveryAdmin(t *testing.T) {
	notifier := &MockNotifier{}
	recorder := &MockRecorder{}
	intake := NewIntake(notifier, recorder, []int64{100, 200}, "", zap.NewNop())

	receipt, err := intake.ReceiveOrder(context.Background(), burgerCart, buyer)
	require.NoError(t, err)

	require.Len(t, receipt.Lines, 1)
	assert.Contains(t, receipt.Lines[0], "Burger x2 = 50")
	assert.Equal(t, "50", receipt.Total.String())

	for _, chatID := range []int64{42, 100, 200} {
		msgs := notifier.To(chatID)
		require.Len(t, msgs, 1, "chat %d", chatID)
		assert.Contains(t, msgs[0], "50")
	}
	assert.Contains(t, notifier.To(100)[0], "@alice")
	assert.Contains(t, notifier.To(100)[0], "42")
	assert.NotContains(t, notifier.To(42)[0], "New order from")

	require.Len(t, recorder.Saved, 1)
	assert.Equal(t, int64(42), recorder.Saved[0].BuyerChatID)
	assert.Equal(t, "50", recorder.Saved[0].Total.String())
}

func TestReceiveOrder_AdminFailureDoesNotBlockOthers(t *testing.T) {
	notifier := &MockNotifier{FailFor: map[int64]error{100: errors.New("bot was blocked by the user")}}
	intake := NewIntake(notifier, &MockRecorder{}, []int64{100, 200}, "₽", zap.NewNop())

	_, err := intake.ReceiveOrder(context.Background(), burgerCart, buyer)
	require.NoError(t, err)

	assert.Len(t, notifier.To(42), 1)
	assert.Len(t, notifier.To(200), 1)
	assert.Empty(t, notifier.To(100))
}

func TestReceiveOrder_BuyerFailureStillNotifiesAdmins(t *testing.T) {
	notifier := &MockNotifier{FailFor: map[int64]error{42: errors.New("chat not found")}}
	intake := NewIntake(notifier, &MockRecorder{}, []int64{100}, "₽", zap.NewNop())

	_, err := intake.ReceiveOrder(context.Background(), burgerCart, buyer)
	require.NoError(t, err)
	assert.Len(t, notifier.To(100), 1)
}

func TestReceiveOrder_RecorderFailureStillNotifies(t *testing.T) {
	notifier := &MockNotifier{}
	intake := NewIntake(notifier, &MockRecorder{Err: errors.New("db down")}, []int64{100}, "₽", zap.NewNop())

	_, err := intake.ReceiveOrder(context.Background(), burgerCart, buyer)
	require.NoError(t, err)
	assert.Len(t, notifier.To(42), 1)
	assert.Len(t, notifier.To(100), 1)
}

func TestReceiveOrder_Malformed(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
	}{
		{name: "Plain text", payload: "Burger x2"},
		{name: "Empty cart", payload: `{"items":[],"total":0}`},
		{name: "All zero quantities", payload: `{"items":[{"name":"Burger","price":25,"quantity":0}],"total":0}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			notifier := &MockNotifier{}
			recorder := &MockRecorder{}
			intake := NewIntake(notifier, recorder, []int64{100}, "₽", zap.NewNop())

			_, err := intake.ReceiveOrder(context.Background(), tc.payload, buyer)

			var mErr *MalformedOrderError
			require.ErrorAs(t, err, &mErr)
			assert.Equal(t, []string{ApologyMessage}, notifier.To(42))
			assert.Empty(t, notifier.To(100), "admins are not notified about rejected carts")
			assert.Empty(t, recorder.Saved)
		})
	}
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "Short input", in: "borsch", n: 10, want: "borsch"},
		{name: "ASCII cut", in: "borsch", n: 3, want: "bor..."},
		{name: "Cut inside a Cyrillic rune", in: "Борщ", n: 3, want: "Б..."},
		{name: "Cut on a rune boundary", in: "Борщ", n: 4, want: "Бо..."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := truncate(tc.in, tc.n)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
