package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/civitasrp/civitas/src/permissions"
	"github.com/civitasrp/civitas/src/session"
)

// kissRound carries the pair for one chained round: pressing "otra vez" makes
// kisserID kiss kissedID back. Commit fills in the running count so the
// handler can render it after Advance returns.
type kissRound struct {
	kisserID string
	kissedID string
	count    uint32
}

// handleKiss tallies the first kiss immediately, then offers "otra vez" to
// the kissed user. Each accepted round commits one increment with the roles
// swapped and chains into a fresh session, so the buttons stay live until
// stop, expiry or cancel.
func (b *Bot) handleKiss(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, data discordgo.ApplicationCommandInteractionData) {
	if !b.requireCapability(s, i, t, permissions.CapKiss) {
		return
	}

	b.doKiss(t, i.GuildID, i.ChannelID, invokerID(i), optionMap(data.Options)["usuario"].UserValue(s).ID)
}

func (b *Bot) doKiss(t Turn, guildID, channelID, senderID, targetID string) {
	if targetID == senderID {
		t.ReplyEphemeral("No puedes besarte a ti mismo.")
		return
	}

	count, err := b.kisses.Kiss(b.ctx, guildID, senderID, targetID)
	if err != nil {
		log.Printf("Kiss tally failed: %v", err)
		t.ReplyEphemeral("No se pudo registrar el beso, inténtalo más tarde.")
		return
	}

	// The kissed user decides whether to kiss back.
	sess, err := b.startKissRound(guildID, channelID, targetID, senderID)
	if err != nil {
		// The kiss already counted; just skip the chaining buttons.
		log.Printf("Kiss session start failed: %v", err)
		t.Reply(kissMessage(senderID, targetID, count))
		return
	}

	t.ReplyComponents(kissMessage(senderID, targetID, count), kissButtons(sess.ID), false)
}

// startKissRound opens the round in which kisserID may kiss kissedID back;
// only the kisser (the previously kissed user) owns the buttons.
func (b *Bot) startKissRound(guildID, channelID, kisserID, kissedID string) (*session.Session, error) {
	round := &kissRound{kisserID: kisserID, kissedID: kissedID}

	sess, err := b.sessions.Start(session.Spec{
		OwnerID:   kisserID,
		GuildID:   guildID,
		ChannelID: channelID,
		TTL:       confirmTTL,
		Stages:    []session.Stage{{Name: "again", Confirm: true}},
		Commit: func(ctx context.Context, _ map[string]string) error {
			count, err := b.kisses.Kiss(ctx, guildID, kisserID, kissedID)
			if err != nil {
				return err
			}
			round.count = count
			return nil
		},
		OnTerminal: func(s *session.Session, _ session.Status) {
			b.kissMu.Lock()
			delete(b.kissRounds, s.ID)
			b.kissMu.Unlock()
		},
	})
	if err != nil {
		return nil, err
	}

	b.kissMu.Lock()
	b.kissRounds[sess.ID] = round
	b.kissMu.Unlock()
	return sess, nil
}

func (b *Bot) handleKissGesture(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, sess *session.Session, g session.Gesture) {
	b.kissMu.Lock()
	round := b.kissRounds[sess.ID]
	b.kissMu.Unlock()
	if round == nil {
		t.Update("Esta interacción ya no está activa.", nil)
		return
	}

	status, err := sess.Advance(b.ctx, g)
	switch {
	case errors.Is(err, session.ErrNotOwner):
		t.ReplyEphemeral("Esta interacción no te pertenece.")
		return
	case errors.Is(err, session.ErrFinished):
		t.Update("Esta interacción ya terminó.", nil)
		return
	case status == session.StatusCancelled:
		t.Update("Se acabaron los besos.", nil)
		return
	case status == session.StatusCommitted && err != nil:
		log.Printf("Kiss commit failed: %v", err)
		t.Update("No se pudo registrar el beso, inténtalo más tarde.", nil)
		return
	}

	// Roles swap again for the next round.
	next, err := b.startKissRound(sess.GuildID(), sess.ChannelID(), round.kissedID, round.kisserID)
	if err != nil {
		t.Update(kissMessage(round.kisserID, round.kissedID, round.count), nil)
		return
	}
	t.Update(kissMessage(round.kisserID, round.kissedID, round.count), kissButtons(next.ID))
}

func kissMessage(senderID, targetID string, count uint32) string {
	return fmt.Sprintf("💋 %s besó a %s. Ya van **%d** besos.", mention(senderID), mention(targetID), count)
}

func kissButtons(sessionID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Otra vez",
					Style:    discordgo.PrimaryButton,
					CustomID: customID("kiss_again", sessionID),
				},
				discordgo.Button{
					Label:    "Parar",
					Style:    discordgo.SecondaryButton,
					CustomID: customID("kiss_stop", sessionID),
				},
			},
		},
	}
}
