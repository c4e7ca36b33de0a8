// Package webserver exposes the read-only HTTP API over the bot's records.
package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/civitasrp/civitas/src/store"
)

// Deps are the collaborators the routes read from.
type Deps struct {
	Token      string
	Identities store.IdentityRepo
	Warnings   store.WarningRepo
	Configs    store.ConfigRepo
}

func New(deps Deps) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	g.Use(cors.New(corsCfg))

	attachRoutes(g, deps)
	return g
}

func attachRoutes(g *gin.Engine, deps Deps) {
	g.GET("/health", health)

	v1 := g.Group("/v1", botAuth(deps.Token))
	v1.GET("/guilds/:guildID/config", getGuildConfig(deps.Configs))
	v1.GET("/guilds/:guildID/identities/:userID", getIdentity(deps.Identities))
	v1.GET("/guilds/:guildID/warnings/:userID", listWarnings(deps.Warnings))
}
