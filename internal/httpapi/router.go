package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the tool API routes over a handler.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.POST("/analyze", h.Analyze)
	v1.POST("/compare", h.Compare)
	v1.POST("/bom", h.BOM)
	v1.POST("/geometry", h.Geometry)
	v1.POST("/interfaces", h.Interfaces)
	v1.POST("/validate", h.Validate)
	v1.GET("/baselines", h.ListBaselines)
	v1.GET("/baselines/:id", h.GetBaseline)
	v1.DELETE("/baselines/:id", h.DeleteBaseline)

	return r
}
