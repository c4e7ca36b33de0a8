package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civitasrp/civitas/src/store"
)

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getGuildConfig(repo store.ConfigRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := repo.Get(c.Request.Context(), c.Param("guildID"))
		if err != nil {
			abortStoreErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cfg)
	}
}

func getIdentity(repo store.IdentityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := repo.Get(c.Request.Context(), c.Param("guildID"), c.Param("userID"))
		if err != nil {
			abortStoreErr(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func listWarnings(repo store.WarningRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.ListByUser(c.Request.Context(), c.Param("guildID"), c.Param("userID"))
		if err != nil {
			abortStoreErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"warnings": list, "count": len(list)})
	}
}

func abortStoreErr(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"err": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
}
