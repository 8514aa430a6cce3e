package history

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/tdee-service/internal/app"
	svcErr "github.com/oggyb/tdee-service/internal/errors"
)

const (
	HeaderNextPageToken = "X-Next-Page-Token"
	HeaderTotalCount    = "X-Total-Count"
)

// Registrar ties the history service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the history service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the history routes under /user
func (r *Registrar) Register(router gin.IRouter) {
	service := NewHistoryService(r.appCtx)

	g := router.Group("/user")
	g.POST("/create", func(c *gin.Context) {
		var req CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			svcErr.Respond(c, svcErr.Binding(err))
			return
		}
		rec, err := service.Create(c.Request.Context(), &req)
		if err != nil {
			svcErr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	})
	g.GET("/history", func(c *gin.Context) {
		var req ListRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			svcErr.Respond(c, svcErr.Binding(err))
			return
		}
		resp, err := service.List(c.Request.Context(), &req)
		if err != nil {
			svcErr.Respond(c, err)
			return
		}
		if resp.NextToken != nil {
			c.Header(HeaderNextPageToken, *resp.NextToken)
		}
		if resp.Total != nil {
			c.Header(HeaderTotalCount, strconv.FormatInt(*resp.Total, 10))
		}
		c.JSON(http.StatusOK, resp.Records)
	})
}
