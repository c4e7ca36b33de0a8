// Package bot wires the Discord transport to the config, permission, record
// and session components: slash commands open workflows, components and
// modals feed gestures back through correlation tokens.
package bot

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/civitasrp/civitas/src/guildconfig"
	"github.com/civitasrp/civitas/src/identity"
	"github.com/civitasrp/civitas/src/kisses"
	"github.com/civitasrp/civitas/src/permissions"
	"github.com/civitasrp/civitas/src/roblox"
	"github.com/civitasrp/civitas/src/session"
	"github.com/civitasrp/civitas/src/store"
	"github.com/civitasrp/civitas/src/warnings"
)

const (
	confirmTTL  = 60 * time.Second
	workflowTTL = 2 * time.Minute
)

type Config struct {
	Token string
	DB    *gorm.DB
	Redis *redis.Client
}

type Bot struct {
	session *discordgo.Session
	db      *gorm.DB
	rdb     *redis.Client
	config  Config

	configs    *guildconfig.Store
	identities *identity.Store
	warnings   *warnings.Store
	kisses     *kisses.Store
	sessions   *session.Manager
	roblox     *roblox.Client

	kissMu     sync.Mutex
	kissRounds map[string]*kissRound

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(config Config, st *store.MySQL) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	b := &Bot{
		session:    dg,
		db:         config.DB,
		rdb:        config.Redis,
		config:     config,
		configs:    guildconfig.New(st.Configs()),
		identities: identity.NewStore(st.Identities(), identity.NewIDGenerator()),
		warnings:   warnings.NewStore(st.Warnings()),
		kisses:     kisses.NewStore(st.Kisses()),
		sessions:   session.NewManager(),
		roblox:     roblox.NewClient(config.Redis),
		kissRounds: make(map[string]*kissRound),
		ctx:        ctx,
		cancel:     cancel,
	}

	b.registerHandlers()

	// Message intents feed the prefix text-command transport.
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	return b, nil
}

func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(b.handleMessageCreate)
	b.session.AddHandler(b.handleGuildDelete)
}

func (b *Bot) Start() error {
	return b.session.Open()
}

func (b *Bot) Stop() {
	b.cancel()
	b.wg.Wait()
	b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Discord bot logged in as %s", event.User.Username)

	if err := b.registerCommands(s); err != nil {
		log.Printf("Failed to register commands: %v", err)
	}
}

// handleGuildDelete drops the guild's config when the bot is removed, so a
// later re-invite starts from defaults.
func (b *Bot) handleGuildDelete(s *discordgo.Session, event *discordgo.GuildDelete) {
	if event.Unavailable {
		return
	}
	if err := b.configs.Delete(b.ctx, event.ID); err != nil {
		log.Printf("Failed to delete config for guild %s: %v", event.ID, err)
	}
}

// actorFor builds the permission actor for the interaction's invoker.
func (b *Bot) actorFor(s *discordgo.Session, i *discordgo.InteractionCreate) permissions.Actor {
	member := i.Member
	if member == nil || member.User == nil {
		return permissions.Actor{}
	}

	ownerID := ""
	if g, err := s.State.Guild(i.GuildID); err == nil {
		ownerID = g.OwnerID
	} else if g, err := s.Guild(i.GuildID); err == nil {
		ownerID = g.OwnerID
	}

	return permissions.Actor{
		ID:              member.User.ID,
		RoleIDs:         member.Roles,
		IsGuildOwner:    ownerID != "" && member.User.ID == ownerID,
		IsAdministrator: member.Permissions&discordgo.PermissionAdministrator != 0,
	}
}

// actorFromMessage builds the permission actor for a prefix command author.
func (b *Bot) actorFromMessage(s *discordgo.Session, m *discordgo.MessageCreate) permissions.Actor {
	if m.Author == nil || m.Member == nil {
		return permissions.Actor{}
	}

	ownerID := ""
	if g, err := s.State.Guild(m.GuildID); err == nil {
		ownerID = g.OwnerID
	} else if g, err := s.Guild(m.GuildID); err == nil {
		ownerID = g.OwnerID
	}

	perms, err := s.State.MessagePermissions(m.Message)
	if err != nil {
		perms = 0
	}

	return permissions.Actor{
		ID:              m.Author.ID,
		RoleIDs:         m.Member.Roles,
		IsGuildOwner:    ownerID != "" && m.Author.ID == ownerID,
		IsAdministrator: perms&discordgo.PermissionAdministrator != 0,
	}
}

// allow resolves the actor's permission set against the guild config and
// replies with a private notice when the capability is missing. Resolution
// happens on every check; nothing is cached per actor.
func (b *Bot) allow(t Turn, guildID string, actor permissions.Actor, c permissions.Capability) bool {
	cfg := b.configs.Load(b.ctx, guildID)
	if !permissions.Has(actor, cfg, c) {
		t.ReplyEphemeral("No tienes permisos para usar este comando.")
		return false
	}
	return true
}

// requireCapability is the interaction-transport capability gate.
func (b *Bot) requireCapability(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn, c permissions.Capability) bool {
	return b.allow(t, i.GuildID, b.actorFor(s, i), c)
}

// requireGuildOwner gates the permission-editing workflow.
func (b *Bot) requireGuildOwner(s *discordgo.Session, i *discordgo.InteractionCreate, t Turn) bool {
	actor := b.actorFor(s, i)
	if !actor.IsGuildOwner {
		t.ReplyEphemeral("Solo el dueño del servidor puede usar este comando.")
		return false
	}
	return true
}

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func invokerID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func mention(userID string) string { return fmt.Sprintf("<@%s>", userID) }
