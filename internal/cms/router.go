package cms

import (
	"github.com/gin-gonic/gin"
	"kadmeia/internal/newsletter"
	"log"
	"net/http"
	"time"
)

type Deps struct {
	// Contents backs /api/github-proxy; nil leaves the route out.
	Contents Contents
	// Admins maps bearer tokens to roles.
	Admins map[string]string
	// Newsletter backs /api/newsletter; nil leaves the route out.
	Newsletter *newsletter.Service
}

// NewRouter builds the editorial API. Every route lives under /api/ so the
// engine can be mounted as is by the site server.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLog())

	h := &handler{contents: d.Contents, newsletter: d.Newsletter}
	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"github":     d.Contents != nil,
			"newsletter": d.Newsletter != nil,
		})
	})
	if d.Contents != nil {
		api.POST("/github-proxy", RequireAdmin(d.Admins), h.githubProxy)
	}
	if d.Newsletter != nil {
		api.POST("/newsletter", h.subscribe)
	}
	return r
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[cms] %s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
