package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// messageTurn is the Turn implementation for the prefix text-command
// transport. Text channels have no ephemeral messages and no modals, so
// private notices go out as ordinary replies and modal-backed flows point the
// user at the slash command instead.
type messageTurn struct {
	s      *discordgo.Session
	m      *discordgo.Message
	lastID string
}

func newMessageTurn(s *discordgo.Session, m *discordgo.MessageCreate) *messageTurn {
	return &messageTurn{s: s, m: m.Message}
}

func (t *messageTurn) send(data *discordgo.MessageSend) {
	data.Reference = t.m.Reference()
	msg, err := t.s.ChannelMessageSendComplex(t.m.ChannelID, data)
	if err != nil {
		log.Printf("message reply: %v", err)
		return
	}
	t.lastID = msg.ID
}

func (t *messageTurn) Reply(content string) {
	t.send(&discordgo.MessageSend{Content: content})
}

func (t *messageTurn) ReplyEphemeral(content string) {
	t.send(&discordgo.MessageSend{Content: content})
}

func (t *messageTurn) ReplyEmbed(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	t.send(&discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
}

func (t *messageTurn) ReplyComponents(content string, components []discordgo.MessageComponent, ephemeral bool) {
	t.send(&discordgo.MessageSend{Content: content, Components: components})
}

// Update edits the last message this turn sent, falling back to a fresh reply
// when nothing went out yet.
func (t *messageTurn) Update(content string, components []discordgo.MessageComponent) {
	if t.lastID == "" {
		t.send(&discordgo.MessageSend{Content: content, Components: components})
		return
	}
	if _, err := t.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         t.lastID,
		Channel:    t.m.ChannelID,
		Content:    &content,
		Components: &components,
	}); err != nil {
		log.Printf("message edit: %v", err)
	}
}

func (t *messageTurn) Modal(customID, title string, components []discordgo.MessageComponent) {
	t.Reply("Este flujo necesita un formulario; usa el comando de barra equivalente.")
}
