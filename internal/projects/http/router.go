package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group. Reads are
// public; writes run behind the admin middleware chain.
func (h *Handler) Register(rg *gin.RouterGroup, admin ...gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.GET("/slug/:slug", h.getBySlug)
	rg.GET("/:id", h.get)

	write := rg.Group("", admin...)
	write.POST("", h.create)
	write.PUT("/:id", h.update)
	write.DELETE("/:id", h.delete)
}
