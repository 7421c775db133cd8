package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutrition-tracker/internal/apperr"
)

type analysisRequest struct {
	Question string `json:"question"`
}

type conversationRequest struct {
	Title string `json:"title"`
}

type messageRequest struct {
	Content string `json:"content"`
}

func (h *handler) analysis(c *gin.Context) {
	var req analysisRequest
	if err := bindJSON(c, &req, true); err != nil {
		h.fail(c, err)
		return
	}

	a, err := h.Coach.Analyze(c.Request.Context(), userID(c), req.Question)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handler) listConversations(c *gin.Context) {
	convs, err := h.Coach.ListConversations(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convs)
}

func (h *handler) createConversation(c *gin.Context) {
	var req conversationRequest
	if err := bindJSON(c, &req, true); err != nil {
		h.fail(c, err)
		return
	}

	conv, err := h.Coach.CreateConversation(c.Request.Context(), userID(c), req.Title)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

func (h *handler) getConversation(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	conv, err := h.Coach.GetConversation(c.Request.Context(), userID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *handler) deleteConversation(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.Coach.DeleteConversation(c.Request.Context(), userID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var errClientGone = errors.New("client disconnected")

// postMessage streams the assistant reply as server-sent events. Errors that
// happen before the first frame are plain JSON responses; once streaming has
// started the reply always ends with a done or error frame.
func (h *handler) postMessage(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req messageRequest
	if err := bindJSON(c, &req, false); err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	reply, err := h.Coach.Reply(ctx, userID(c), id, req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}

	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	_, err = reply.Relay(ctx, func(chunk string) error {
		if ctx.Err() != nil {
			return errClientGone
		}
		return writeEvent(w, gin.H{"content": chunk})
	})

	switch {
	case err == nil:
		_ = writeEvent(w, gin.H{"done": true})
	case errors.Is(err, errClientGone) || ctx.Err() != nil:
		h.log.Debugw("client left during stream", "conversation_id", id)
	default:
		if apperr.KindOf(err) == apperr.KindInternal {
			h.log.Errorw("stream failed", "conversation_id", id, "error", err)
		}
		_ = writeEvent(w, gin.H{"error": apperr.PublicMessage(err)})
	}
}

func writeEvent(w gin.ResponseWriter, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	w.Flush()
	return nil
}
