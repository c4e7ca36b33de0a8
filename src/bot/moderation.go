package bot

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/civitasrp/civitas/src/permissions"
)

// handleModeration covers the direct moderation verbs. They act immediately
// (no session) and mirror the action onto the moderation event stream.
func (b *Bot) handleModeration(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data.Options)
	reason := ""
	if o, ok := opts["razon"]; ok {
		reason = o.StringValue()
	}
	moderatorID := invokerID(i)

	switch data.Name {
	case "ban":
		if !b.requireCapability(s, i, t, permissions.CapBan) {
			return
		}
		target := opts["usuario"].UserValue(s)
		if err := s.GuildBanCreateWithReason(i.GuildID, target.ID, reason, 0); err != nil {
			log.Printf("Ban failed: %v", err)
			t.ReplyEphemeral("No se pudo banear al usuario.")
			return
		}
		b.publishModerationEvent(i.GuildID, "ban", target.ID, moderatorID, reason)
		t.Reply(fmt.Sprintf("%s fue baneado. %s", mention(target.ID), reason))

	case "kick":
		if !b.requireCapability(s, i, t, permissions.CapKick) {
			return
		}
		target := opts["usuario"].UserValue(s)
		if err := s.GuildMemberDeleteWithReason(i.GuildID, target.ID, reason); err != nil {
			log.Printf("Kick failed: %v", err)
			t.ReplyEphemeral("No se pudo expulsar al usuario.")
			return
		}
		b.publishModerationEvent(i.GuildID, "kick", target.ID, moderatorID, reason)
		t.Reply(fmt.Sprintf("%s fue expulsado. %s", mention(target.ID), reason))

	case "timeout":
		if !b.requireCapability(s, i, t, permissions.CapTimeout) {
			return
		}
		target := opts["usuario"].UserValue(s)
		minutes := opts["minutos"].IntValue()
		if minutes < 1 || minutes > 40320 {
			t.ReplyEphemeral("La duración debe estar entre 1 minuto y 28 días.")
			return
		}
		until := time.Now().Add(time.Duration(minutes) * time.Minute)
		if err := s.GuildMemberTimeout(i.GuildID, target.ID, &until); err != nil {
			log.Printf("Timeout failed: %v", err)
			t.ReplyEphemeral("No se pudo silenciar al usuario.")
			return
		}
		b.publishModerationEvent(i.GuildID, "timeout", target.ID, moderatorID,
			fmt.Sprintf("%d minutos. %s", minutes, reason))
		t.Reply(fmt.Sprintf("%s fue silenciado por %d minutos.", mention(target.ID), minutes))

	case "purge":
		if !b.requireCapability(s, i, t, permissions.CapPurge) {
			return
		}
		amount := int(opts["cantidad"].IntValue())
		if amount < 1 || amount > 100 {
			t.ReplyEphemeral("La cantidad debe estar entre 1 y 100.")
			return
		}
		msgs, err := s.ChannelMessages(i.ChannelID, amount, "", "", "")
		if err != nil {
			log.Printf("Purge fetch failed: %v", err)
			t.ReplyEphemeral("No se pudieron obtener los mensajes.")
			return
		}
		ids := make([]string, 0, len(msgs))
		for _, m := range msgs {
			ids = append(ids, m.ID)
		}
		if err := s.ChannelMessagesBulkDelete(i.ChannelID, ids); err != nil {
			log.Printf("Purge delete failed: %v", err)
			t.ReplyEphemeral("No se pudieron borrar los mensajes.")
			return
		}
		b.publishModerationEvent(i.GuildID, "purge", "", moderatorID,
			fmt.Sprintf("%d mensajes en <#%s>", len(ids), i.ChannelID))
		t.ReplyEphemeral(fmt.Sprintf("Se borraron %d mensajes.", len(ids)))
	}
}
