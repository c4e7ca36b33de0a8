package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/civitasrp/civitas/src/identity"
	"github.com/civitasrp/civitas/src/permissions"
	"github.com/civitasrp/civitas/src/session"
	"github.com/civitasrp/civitas/src/store"
	"github.com/civitasrp/civitas/src/types"
)

func (b *Bot) handleDNI(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, data discordgo.ApplicationCommandInteractionData) {
	sub := data.Options[0]
	switch sub.Name {
	case "crear":
		b.dniCreate(s, i, t, sub)
	case "ver":
		b.dniView(s, i, t, sub)
	case "borrar":
		b.dniDelete(s, i, t, sub)
	}
}

func (b *Bot) dniCreate(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !b.requireCapability(s, i, t, permissions.CapUseDNI) {
		return
	}

	opts := optionMap(sub.Options)
	strOpt := func(name string) string {
		if o, ok := opts[name]; ok {
			return o.StringValue()
		}
		return ""
	}

	robloxName := strOpt("roblox")
	avatarURL := ""
	if robloxName != "" {
		url, err := b.roblox.AvatarURL(b.ctx, robloxName)
		if err != nil {
			log.Printf("Roblox avatar lookup for %q failed: %v", robloxName, err)
		} else {
			avatarURL = url
		}
	}

	rec, err := b.identities.Create(b.ctx, identity.CreateParams{
		UserID:          invokerID(i),
		GuildID:         i.GuildID,
		FirstName:       strOpt("nombre"),
		SecondName:      strOpt("segundo_nombre"),
		FirstLastName:   strOpt("apellido"),
		SecondLastName:  strOpt("segundo_apellido"),
		BirthDate:       strOpt("fecha_nacimiento"),
		Gender:          strOpt("genero"),
		Nationality:     strOpt("nacionalidad"),
		RobloxName:      robloxName,
		RobloxAvatarURL: avatarURL,
		CountryCode:     strOpt("nacionalidad"),
	})
	switch {
	case errors.Is(err, identity.ErrInvalidDate):
		t.ReplyEphemeral("La fecha de nacimiento debe tener el formato DD/MM/AAAA y ser una fecha real.")
	case errors.Is(err, identity.ErrUnderage):
		t.ReplyEphemeral(fmt.Sprintf("Debes tener al menos %d años para crear un documento.", identity.MinAge))
	case errors.Is(err, identity.ErrInvalidGender):
		t.ReplyEphemeral("Género inválido.")
	case errors.Is(err, store.ErrAlreadyExists):
		t.ReplyEphemeral("Ya tienes un documento de identidad en este servidor. Usa /dni borrar primero.")
	case err != nil:
		log.Printf("Identity create failed: %v", err)
		t.ReplyEphemeral("No se pudo crear el documento, inténtalo más tarde.")
	default:
		t.ReplyEmbed(identityEmbed(rec), nil)
	}
}

func (b *Bot) dniView(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !b.requireCapability(s, i, t, permissions.CapUseDNI) {
		return
	}

	targetID := invokerID(i)
	if o, ok := optionMap(sub.Options)["usuario"]; ok {
		targetID = o.UserValue(nil).ID
	}
	b.replyIdentity(t, i.GuildID, targetID)
}

// replyIdentity renders a user's record on whichever transport asked for it.
func (b *Bot) replyIdentity(t Turn, guildID, targetID string) {
	rec, err := b.identities.Find(b.ctx, guildID, targetID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		t.ReplyEphemeral("Ese usuario no tiene documento de identidad en este servidor.")
	case err != nil:
		log.Printf("Identity lookup failed: %v", err)
		t.ReplyEphemeral("No se pudo consultar el documento, inténtalo más tarde.")
	default:
		t.ReplyEmbed(identityEmbed(rec), nil)
	}
}

// dniDeleteCapability picks the gate for a delete: owners remove their own
// record with the ordinary use capability, removing someone else's needs the
// moderation one.
func dniDeleteCapability(invokerID, targetID string) permissions.Capability {
	if targetID != invokerID {
		return permissions.CapDeleteDNI
	}
	return permissions.CapUseDNI
}

// dniDelete opens a confirm-gated session; the record only goes away when the
// invoker presses confirm before the timer runs out. A moderator with the
// delete capability can target another user's record.
func (b *Bot) dniDelete(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, sub *discordgo.ApplicationCommandInteractionDataOption) {
	invoker := invokerID(i)
	targetID := invoker
	if o, ok := optionMap(sub.Options)["usuario"]; ok {
		targetID = o.UserValue(nil).ID
	}
	if !b.requireCapability(s, i, t, dniDeleteCapability(invoker, targetID)) {
		return
	}

	if _, err := b.identities.Find(b.ctx, i.GuildID, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if targetID == invoker {
				t.ReplyEphemeral("No tienes documento de identidad que borrar.")
			} else {
				t.ReplyEphemeral("Ese usuario no tiene documento de identidad en este servidor.")
			}
		} else {
			log.Printf("Identity lookup failed: %v", err)
			t.ReplyEphemeral("No se pudo consultar el documento, inténtalo más tarde.")
		}
		return
	}

	sess, err := b.sessions.Start(session.Spec{
		Key:       fmt.Sprintf("dni:del:%s:%s", i.GuildID, targetID),
		OwnerID:   invoker,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		TTL:       confirmTTL,
		Stages:    []session.Stage{{Name: "confirm", Confirm: true}},
		Commit: func(ctx context.Context, _ map[string]string) error {
			// Re-check at the boundary: the record may be gone already.
			return b.identities.Delete(ctx, i.GuildID, targetID)
		},
	})
	if errors.Is(err, session.ErrSlotBusy) {
		t.ReplyEphemeral("Ya hay una confirmación de borrado pendiente para ese documento.")
		return
	}
	if err != nil {
		log.Printf("Delete session start failed: %v", err)
		t.ReplyEphemeral("No se pudo iniciar la operación.")
		return
	}

	prompt := "¿Seguro que quieres borrar tu documento de identidad? Esta acción no se puede deshacer."
	if targetID != invoker {
		prompt = fmt.Sprintf("¿Seguro que quieres borrar el documento de identidad de %s? Esta acción no se puede deshacer.", mention(targetID))
	}
	t.ReplyComponents(prompt, confirmButtons("dnidel_yes", "dnidel_no", sess.ID), true)
}

func identityEmbed(rec *types.Identity) *discordgo.MessageEmbed {
	name := rec.FirstName
	if rec.SecondName != "" {
		name += " " + rec.SecondName
	}
	surname := rec.FirstLastName
	if rec.SecondLastName != "" {
		surname += " " + rec.SecondLastName
	}

	embed := &discordgo.MessageEmbed{
		Title: "Documento Nacional de Identidad",
		Color: 0x2b6cb0,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Nombre", Value: name, Inline: true},
			{Name: "Apellido", Value: surname, Inline: true},
			{Name: "Fecha de nacimiento", Value: rec.BirthDate, Inline: true},
			{Name: "Edad", Value: fmt.Sprintf("%d", rec.Age), Inline: true},
			{Name: "Género", Value: rec.Gender, Inline: true},
			{Name: "Nacionalidad", Value: rec.Nationality, Inline: true},
			{Name: "Número de documento", Value: rec.IDNumber, Inline: false},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Titular: " + rec.UserID},
	}
	if rec.RobloxName != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Roblox", Value: rec.RobloxName, Inline: true,
		})
	}
	if rec.RobloxAvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: rec.RobloxAvatarURL}
	}
	return embed
}
