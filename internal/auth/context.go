package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-api/internal/auth/domain"
)

const CtxUser = "auth_user"

// CurrentUser returns the user stored by the auth middleware, or nil.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
