package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// Turn is one actor turn: the reply surface a handler gets regardless of
// whether the command arrived as a slash interaction or a prefix text
// message. Implemented once per transport; handlers never touch the wire
// types directly.
type Turn interface {
	Reply(content string)
	ReplyEphemeral(content string)
	ReplyEmbed(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent)
	ReplyComponents(content string, components []discordgo.MessageComponent, ephemeral bool)
	Update(content string, components []discordgo.MessageComponent)
	Modal(customID, title string, components []discordgo.MessageComponent)
}

// interactionTurn wraps one interaction so handlers respond exactly once: the
// first of Reply/Update/Modal consumes the initial response and everything
// after goes out as a followup. Discord rejects double acknowledgement; this
// keeps the rule in one place instead of in every handler.
type interactionTurn struct {
	s         *discordgo.Session
	i         *discordgo.Interaction
	responded bool
}

func NewTurn(s *discordgo.Session, i *discordgo.InteractionCreate) Turn {
	return &interactionTurn{s: s, i: i.Interaction}
}

func (t *interactionTurn) respond(data *discordgo.InteractionResponseData, kind discordgo.InteractionResponseType) {
	if t.responded {
		if _, err := t.s.FollowupMessageCreate(t.i, true, &discordgo.WebhookParams{
			Content:    data.Content,
			Embeds:     data.Embeds,
			Components: data.Components,
			Flags:      data.Flags,
		}); err != nil {
			log.Printf("interaction followup: %v", err)
		}
		return
	}
	t.responded = true
	if err := t.s.InteractionRespond(t.i, &discordgo.InteractionResponse{
		Type: kind,
		Data: data,
	}); err != nil {
		log.Printf("interaction respond: %v", err)
	}
}

func (t *interactionTurn) Reply(content string) {
	t.respond(&discordgo.InteractionResponseData{Content: content},
		discordgo.InteractionResponseChannelMessageWithSource)
}

func (t *interactionTurn) ReplyEphemeral(content string) {
	t.respond(&discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.InteractionResponseChannelMessageWithSource)
}

func (t *interactionTurn) ReplyEmbed(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	t.respond(&discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	}, discordgo.InteractionResponseChannelMessageWithSource)
}

func (t *interactionTurn) ReplyComponents(content string, components []discordgo.MessageComponent, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content, Components: components}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	t.respond(data, discordgo.InteractionResponseChannelMessageWithSource)
}

// Update rewrites the component message the gesture came from.
func (t *interactionTurn) Update(content string, components []discordgo.MessageComponent) {
	t.respond(&discordgo.InteractionResponseData{
		Content:    content,
		Components: components,
	}, discordgo.InteractionResponseUpdateMessage)
}

// Modal opens a modal; only valid as the initial response.
func (t *interactionTurn) Modal(customID, title string, components []discordgo.MessageComponent) {
	if t.responded {
		log.Printf("interaction: modal requested after response, custom id %s", customID)
		return
	}
	t.responded = true
	if err := t.s.InteractionRespond(t.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   customID,
			Title:      title,
			Components: components,
		},
	}); err != nil {
		log.Printf("interaction modal: %v", err)
	}
}
