package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devfolio/portfolio-api/internal/logging"
	"github.com/devfolio/portfolio-api/internal/projects/domain"
)

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(items), "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) getBySlug(c *gin.Context) {
	p, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) create(c *gin.Context) {
	raw, image, err := readPayload(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	p, err := h.svc.Create(c.Request.Context(), raw, image)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	raw, image, err := readPayload(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), raw, image)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	p, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": p.ID})
}

var statusByKind = map[string]int{
	domain.KindValidationFailed:         http.StatusBadRequest,
	domain.KindNotFound:                 http.StatusNotFound,
	domain.KindAssetUploadFailed:        http.StatusBadGateway,
	domain.KindStoreUnavailable:         http.StatusServiceUnavailable,
	domain.KindDuplicateKey:             http.StatusConflict,
	domain.KindSlugConflictUnresolvable: http.StatusConflict,
	domain.KindInternal:                 http.StatusInternalServerError,
}

// fail writes the structured {kind, error} envelope for err.
func (h *Handler) fail(c *gin.Context, err error) {
	kind := domain.Kind(err)
	status := statusByKind[kind]

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context(), h.log).Error("project request failed",
			zap.String("kind", kind), zap.Error(err))
		if kind == domain.KindInternal {
			msg = "internal error"
		}
	}
	c.JSON(status, gin.H{"ok": false, "kind": kind, "error": msg})
}
