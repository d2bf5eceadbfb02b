package cms

import (
	"errors"
	"github.com/gin-gonic/gin"
	"kadmeia/internal/domain/content"
	domainerr "kadmeia/internal/domain/errors"
	"kadmeia/internal/newsletter"
	"log"
	"net/http"
	"strings"
)

const maxBodyBytes = 2 << 20

const (
	ActionGetFile    = "getFile"
	ActionUpdateFile = "updateFile"
	ActionCreateFile = "createFile"
	ActionDeleteFile = "deleteFile"
	ActionGetTree    = "getTree"
)

type proxyRequest struct {
	Action  string `json:"action"`
	Path    string `json:"path"`
	Content string `json:"content"`
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

type handler struct {
	contents   Contents
	newsletter *newsletter.Service
}

func (h *handler) githubProxy(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	var req proxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctx := c.Request.Context()
	switch req.Action {
	case ActionGetFile:
		f, err := h.contents.GetFile(ctx, req.Path)
		if err != nil {
			h.fail(c, req, err)
			return
		}
		c.JSON(http.StatusOK, f)

	case ActionCreateFile:
		f, err := h.contents.CreateFile(ctx, req.Path, req.Content, commitMessage(req, "create"))
		if err != nil {
			h.fail(c, req, err)
			return
		}
		c.JSON(http.StatusCreated, f)

	case ActionUpdateFile:
		f, err := h.contents.UpdateFile(ctx, req.Path, req.Content, req.SHA, commitMessage(req, "update"))
		if err != nil {
			h.fail(c, req, err)
			return
		}
		c.JSON(http.StatusOK, f)

	case ActionDeleteFile:
		if err := h.contents.DeleteFile(ctx, req.Path, req.SHA, commitMessage(req, "delete")); err != nil {
			h.fail(c, req, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})

	case ActionGetTree:
		entries, err := h.contents.GetTree(ctx, req.Path)
		if err != nil {
			h.fail(c, req, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	}
}

// fail logs the cause and answers with a generic message.
func (h *handler) fail(c *gin.Context, req proxyRequest, err error) {
	status, msg := http.StatusBadGateway, "upstream error"
	switch {
	case errors.Is(err, domainerr.ErrInvalid):
		status, msg = http.StatusBadRequest, "invalid request"
	case errors.Is(err, domainerr.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, domainerr.ErrConflict):
		status, msg = http.StatusConflict, "the file changed since it was loaded, reload and try again"
	}
	log.Printf("[cms] %s %s: %v", req.Action, req.Path, err)
	c.JSON(status, gin.H{"error": msg})
}

func commitMessage(req proxyRequest, verb string) string {
	if m := strings.TrimSpace(req.Message); m != "" {
		return m
	}
	return "cms: " + verb + " " + req.Path
}

type subscribeRequest struct {
	Email   string `json:"email"`
	Website string `json:"website"`
	Lang    string `json:"lang"`
}

func (h *handler) subscribe(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 16<<10)
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	_, err := h.newsletter.Subscribe(c.Request.Context(), newsletter.Signup{
		Email:   req.Email,
		Website: req.Website,
		Lang:    content.ParseLang(req.Lang),
		IP:      c.ClientIP(),
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, domainerr.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
	case errors.Is(err, newsletter.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	default:
		log.Printf("[cms] newsletter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
