package http

import (
	"slices"

	"github.com/gin-gonic/gin"
)

// Register attaches contact routes. submitGuards run before POST /contact and
// listGuards before GET /contacts.
func (h *Handler) Register(rg *gin.RouterGroup, submitGuards, listGuards []gin.HandlerFunc) {
	rg.POST("/contact", slices.Concat(submitGuards, []gin.HandlerFunc{h.submit})...)
	rg.GET("/contacts", slices.Concat(listGuards, []gin.HandlerFunc{h.list})...)
}
