package http

import "github.com/gin-gonic/gin"

// Register mounts the auth routes. limit guards the unauthenticated
// endpoints that hash passwords; authenticated wraps the routes that need a
// signed-in user.
func (h *Handler) Register(rg *gin.RouterGroup, limit, authenticated gin.HandlerFunc) {
	rg.POST("/register", limit, h.RegisterUser)
	rg.POST("/login", limit, h.Login)
	rg.GET("/me", authenticated, h.Me)
	rg.PUT("/change-password", authenticated, h.ChangePassword)
}
