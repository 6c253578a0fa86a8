//go:build !embed
// +build !embed

package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// setupStaticFiles serves the chat widget from ./web during development
func setupStaticFiles(router *gin.Engine, log *slog.Logger) {
	log.Info("serving frontend assets from local filesystem", "dir", "./web")

	router.Static("/static", "./web/static")
	router.StaticFile("/", "./web/index.html")

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Not found",
			"hint":  "Build the widget into ./web or run with -tags embed",
		})
	})
}
