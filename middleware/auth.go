package middleware

import (
	"net/http"
	"strings"

	"go-cubirds/utils"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// SeatAuth requires a bearer seat token issued for the room named by the
// :roomID path parameter.
func SeatAuth(tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if header == "" || raw == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status_code": http.StatusUnauthorized,
				"msg":         "missing bearer token",
			})
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status_code": http.StatusUnauthorized,
				"msg":         err.Error(),
			})
			return
		}
		if claims.RoomID != c.Param("roomID") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status_code": http.StatusForbidden,
				"msg":         "token is for another room",
			})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by SeatAuth.
func ClaimsFrom(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
