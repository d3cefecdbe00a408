package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gonotes/notes-service/internal/errs"
	"github.com/gonotes/notes-service/internal/note/service"
	"github.com/gonotes/notes-service/pkg/logger"
	"github.com/gonotes/notes-service/pkg/metrics"
	"github.com/gonotes/notes-service/pkg/middleware"
)

type textRequest struct {
	Text *string `json:"text" binding:"required"`
}

// MsgTextRequired is returned with 422 when the body is not a JSON object
// carrying a string "text" field.
const MsgTextRequired = "field 'text' is required"

// bindText decodes the request body, hiding validator internals from clients.
func bindText(c *gin.Context, req *textRequest) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return errs.Wrap(errs.InvalidArgument, MsgTextRequired, err)
	}
	return nil
}

// RegisterNoteRoutes mounts the notes API under /notes. Extra middleware
// (rate limiting) runs after the token presence check.
func RegisterNoteRoutes(r gin.IRouter, svc service.Service, extra ...gin.HandlerFunc) {
	g := r.Group("/notes", middleware.RequireToken())
	g.Use(extra...)

	g.POST("/create", func(c *gin.Context) {
		var req textRequest
		if err := bindText(c, &req); err != nil {
			writeError(c, "create", err)
			return
		}
		id, err := svc.Create(c.Request.Context(), middleware.Token(c), *req.Text)
		if err != nil {
			writeError(c, "create", err)
			return
		}
		observe("create", nil)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	// list and info are static segments so they take precedence over /:id
	g.GET("/list", func(c *gin.Context) {
		ids, err := svc.List(c.Request.Context(), middleware.Token(c))
		if err != nil {
			writeError(c, "list", err)
			return
		}
		observe("list", nil)
		// positional keys; they are not stable across calls
		out := make(map[string]string, len(ids))
		for i, id := range ids {
			out[strconv.Itoa(i)] = id
		}
		c.JSON(http.StatusOK, out)
	})

	g.GET("/info/:id", func(c *gin.Context) {
		info, err := svc.GetInfo(c.Request.Context(), middleware.Token(c), c.Param("id"))
		if err != nil {
			writeError(c, "info", err)
			return
		}
		observe("info", nil)
		c.JSON(http.StatusOK, info)
	})

	g.GET("/:id", func(c *gin.Context) {
		content, err := svc.GetContent(c.Request.Context(), middleware.Token(c), c.Param("id"))
		if err != nil {
			writeError(c, "get", err)
			return
		}
		observe("get", nil)
		c.JSON(http.StatusOK, content)
	})

	g.PATCH("/update/:id", func(c *gin.Context) {
		var req textRequest
		if err := bindText(c, &req); err != nil {
			writeError(c, "update", err)
			return
		}
		if err := svc.Update(c.Request.Context(), middleware.Token(c), c.Param("id"), *req.Text); err != nil {
			writeError(c, "update", err)
			return
		}
		observe("update", nil)
		c.JSON(http.StatusOK, gin.H{"message": service.MsgUpdated})
	})

	g.DELETE("/delete/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), middleware.Token(c), c.Param("id")); err != nil {
			writeError(c, "delete", err)
			return
		}
		observe("delete", nil)
		c.JSON(http.StatusOK, gin.H{"message": service.MsgDeleted})
	})
}

func observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(errs.CodeOf(err))
	}
	metrics.NoteOperations.WithLabelValues(op, outcome).Inc()
}

// writeError maps a service error to {"detail": msg}. Uncoded errors are
// logged and reported as a generic 500.
func writeError(c *gin.Context, op string, err error) {
	observe(op, err)
	code := errs.CodeOf(err)
	if code == errs.Internal {
		logger.Errorf("notes %s failed: %v", op, err)
	}
	c.JSON(errs.HTTPStatus(code), gin.H{"detail": errs.MessageOf(err)})
}
