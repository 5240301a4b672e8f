package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"payflow/internal/dedup"
	"payflow/internal/reconcile"
	"payflow/internal/webhook"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	verifier *webhook.Verifier
	engine   *reconcile.Engine
	deduper  dedup.Deduper
}

func NewWebhookHandler(verifier *webhook.Verifier, engine *reconcile.Engine, deduper dedup.Deduper) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, engine: engine, deduper: deduper}
}

// Handle processes a processor notification. The signature is computed over
// the exact bytes as transmitted, so this route reads the raw body and never
// goes through JSON binding before verification. Only signature and shape
// failures return 400; business anomalies are acknowledged with 200 so the
// processor does not redeliver forever.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := h.verifier.Verify(body, c.GetHeader(webhook.SignatureHeader)); err != nil {
		log.Printf("[WEBHOOK] signature rejected: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}
	evt, err := webhook.Normalize(body)
	if err != nil {
		log.Printf("[WEBHOOK] malformed payload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}
	// Dedup only after verification so forged ids cannot poison the cache.
	if h.deduper != nil && evt.ID != "" {
		dup, err := h.deduper.Seen(c.Request.Context(), evt.ID)
		if err != nil {
			log.Printf("[WEBHOOK] dedup check event_id=%s: %v", evt.ID, err)
		} else if dup {
			log.Printf("[WEBHOOK] duplicate delivery event_id=%s, acknowledged", evt.ID)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
	}
	// The id is marked seen only once the engine is done with the event; a
	// 500 leaves it unmarked so the processor's retry re-enters the engine.
	if err := h.engine.Apply(c.Request.Context(), *evt); err != nil {
		if errors.Is(err, reconcile.ErrUnknownReference) || errors.Is(err, reconcile.ErrConflictingEvent) {
			// Reported by the engine; acknowledge so the processor stops retrying.
			h.markProcessed(c, evt.ID)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		log.Printf("[WEBHOOK] reconcile event_id=%s: %v", evt.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}
	h.markProcessed(c, evt.ID)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) markProcessed(c *gin.Context, eventID string) {
	if h.deduper == nil || eventID == "" {
		return
	}
	if err := h.deduper.Mark(c.Request.Context(), eventID); err != nil {
		log.Printf("[WEBHOOK] dedup mark event_id=%s: %v", eventID, err)
	}
}
