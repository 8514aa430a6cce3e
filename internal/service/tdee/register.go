package tdee

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/tdee-service/internal/app"
	svcErr "github.com/oggyb/tdee-service/internal/errors"
)

// Registrar ties the TDEE service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the TDEE service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the TDEE routes under /tdee
func (r *Registrar) Register(router gin.IRouter) {
	service := NewTdeeService(r.appCtx)

	g := router.Group("/tdee")
	g.POST("/calculate", func(c *gin.Context) {
		var req CalculateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			svcErr.Respond(c, svcErr.Binding(err))
			return
		}
		tdee, err := service.Calculate(c.Request.Context(), &req)
		if err != nil {
			svcErr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, tdee)
	})
	g.GET("/macros", func(c *gin.Context) {
		var req MacrosRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			svcErr.Respond(c, svcErr.Binding(err))
			return
		}
		resp, err := service.Macros(c.Request.Context(), &req)
		if err != nil {
			svcErr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	})
}
