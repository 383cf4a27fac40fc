package bot

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength is Telegram's limit on a text message, in UTF-16 code units.
const MaxMessageLength = 4096

// Notifier sends plain text messages through the bot. It satisfies
// order.Notifier. Texts over MaxMessageLength go out as several messages.
type Notifier struct {
	api API
}

func NewNotifier(api API) *Notifier {
	return &Notifier{api: api}
}

func (n *Notifier) Notify(ctx context.Context, chatID int64, text string) error {
	chunks := SplitMessage(text, MaxMessageLength)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := n.api.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			if len(chunks) > 1 {
				return fmt.Errorf("send part %d of %d: %w", i+1, len(chunks), err)
			}
			return err
		}
	}
	return nil
}

// SplitMessage breaks text into parts of at most limit UTF-16 code units.
// Parts end at line breaks where possible; a single line longer than limit
// is cut between runes.
func SplitMessage(text string, limit int) []string {
	if utf16Len(text) <= limit {
		return []string{text}
	}

	var (
		parts []string
		cur   strings.Builder
		size  int
	)
	flush := func() {
		if part := strings.TrimRight(cur.String(), "\n"); part != "" {
			parts = append(parts, part)
		}
		cur.Reset()
		size = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf16Len(line)
		if size+n > limit {
			flush()
		}
		if n <= limit {
			cur.WriteString(line)
			size += n
			continue
		}
		for _, r := range line {
			w := utf16RuneLen(r)
			if w < 0 {
				w = 1
			}
			if size+w > limit {
				flush()
			}
			cur.WriteRune(r)
			size += w
		}
	}
	flush()
	return parts
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if w := utf16RuneLen(r); w > 0 {
			n += w
		} else {
			n++
		}
	}
	return n
}

// utf16RuneLen mirrors utf16.RuneLen (Go 1.23+) for older toolchains:
// 1 for BMP non-surrogates, 2 for supplementary runes, -1 otherwise.
func utf16RuneLen(r rune) int {
	switch {
	case 0 <= r && r < 0xd800, 0xe000 <= r && r < 0x10000:
		return 1
	case 0x10000 <= r && r <= unicode.MaxRune:
		return 2
	default:
		return -1
	}
}
