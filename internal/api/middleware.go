package api

import (
	"net/http"
	"strings"

	"rentalhub/internal/auth"
	"rentalhub/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ctxCustomerID = "customer_id"
	ctxStaffID    = "staff_id"
	ctxStaffRole  = "staff_role"
)

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func (h *Handler) verifyClaims(c *gin.Context) (*auth.Claims, int64, bool) {
	token, ok := bearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return nil, 0, false
	}

	claims, err := h.tokens.VerifyToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return nil, 0, false
	}

	id, err := claims.SubjectID()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
		return nil, 0, false
	}
	return claims, id, true
}

// requireCustomer verifies a customer bearer token and checks the account
// still exists, so tokens for deleted accounts stop working immediately.
func (h *Handler) requireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, id, ok := h.verifyClaims(c)
		if !ok {
			return
		}
		if claims.Role != models.RoleCustomer {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "customer token required"})
			return
		}

		exists, err := h.accounts.VerifyCustomer(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
			return
		}

		c.Set(ctxCustomerID, id)
		c.Next()
	}
}

// requireRole verifies a staff bearer token carrying the given role.
func (h *Handler) requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, id, ok := h.verifyClaims(c)
		if !ok {
			return
		}
		if claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}

		exists, err := h.accounts.VerifyStaff(c.Request.Context(), id, role)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
			return
		}

		c.Set(ctxStaffID, id)
		c.Set(ctxStaffRole, role)
		c.Next()
	}
}

// requireStaff verifies a staff bearer token of any role.
func (h *Handler) requireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, id, ok := h.verifyClaims(c)
		if !ok {
			return
		}
		if claims.Role == models.RoleCustomer {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff token required"})
			return
		}

		exists, err := h.accounts.VerifyStaff(c.Request.Context(), id, claims.Role)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
			return
		}

		c.Set(ctxStaffID, id)
		c.Set(ctxStaffRole, claims.Role)
		c.Next()
	}
}

func customerID(c *gin.Context) int64 {
	return c.GetInt64(ctxCustomerID)
}

func staffID(c *gin.Context) int64 {
	return c.GetInt64(ctxStaffID)
}

func staffRole(c *gin.Context) string {
	return c.GetString(ctxStaffRole)
}
