package audit

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordSink posts resolved deductions and sealed categories to a channel.
// Requests and individual signatures are not announced.
type DiscordSink struct {
	session   messageSender
	channelID string
}

func NewDiscordSink(token string, channelID string) (*DiscordSink, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	return &DiscordSink{session: session, channelID: channelID}, nil
}

func (s *DiscordSink) Emit(ctx context.Context, record Record) error {
	content := discordMessage(record)
	if content == "" {
		return nil
	}
	_, err := s.session.ChannelMessageSend(s.channelID, content, discordgo.WithContext(ctx))
	return err
}

func discordMessage(record Record) string {
	switch record.Action {
	case CategorySealed:
		return fmt.Sprintf(":lock: Category %d is certified and sealed", record.CategoryID)
	case DeductionApproved:
		return fmt.Sprintf(":white_check_mark: Deduction %d in category %d approved: %s", deref(record.DeductionID), record.CategoryID, record.Detail)
	case DeductionRejected:
		return fmt.Sprintf(":x: Deduction %d in category %d rejected: %s", deref(record.DeductionID), record.CategoryID, record.Detail)
	default:
		return ""
	}
}

func deref(id *int) int {
	if id == nil {
		return 0
	}
	return *id
}
