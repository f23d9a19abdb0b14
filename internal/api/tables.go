package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glefebvre/mediadesk/internal/table"
)

func identity[T any](rows []T) []T { return rows }

// registerTable exposes one table controller. project turns the visible rows
// into their JSON shape.
func registerTable[T, R any](g *gin.RouterGroup, ctrl *table.Controller[T], flag *scrollFlag, project func([]T) R) {
	snapshot := func(c *gin.Context) {
		v := ctrl.Snapshot()
		c.JSON(http.StatusOK, TableResponse{
			Name:        v.Name,
			Rows:        project(v.Rows),
			Total:       v.Total,
			Matches:     v.Matches,
			PageSize:    v.PageSize,
			HasMore:     v.HasMore,
			Search:      v.Search,
			Facet:       v.Facet,
			Facets:      v.Facets,
			Order:       v.Order,
			ScrollToTop: flag.take(),
		})
	}

	g.GET("", snapshot)

	g.POST("/load", func(c *gin.Context) {
		if err := ctrl.Load(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		snapshot(c)
	})

	g.PUT("/state", func(c *gin.Context) {
		var req TableStateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		if req.Order != nil {
			if err := ctrl.SetOrder(*req.Order); err != nil {
				respondError(c, err)
				return
			}
		}
		if req.Search != nil {
			ctrl.SetSearch(*req.Search)
		}
		if req.Facet != nil {
			ctrl.SetFacet(*req.Facet)
		}
		snapshot(c)
	})

	g.POST("/sort", func(c *gin.Context) {
		var req SortRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		if err := ctrl.SortBy(req.Field); err != nil {
			respondError(c, err)
			return
		}
		snapshot(c)
	})

	g.POST("/reverse", func(c *gin.Context) {
		ctrl.Reverse()
		snapshot(c)
	})

	g.POST("/scroll", func(c *gin.Context) {
		var req ScrollRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		grew := ctrl.OnScroll(req.ScrollY, req.ViewportHeight, req.DocumentHeight)
		c.JSON(http.StatusOK, ScrollResponse{Grew: grew, PageSize: ctrl.PageSize()})
	})
}
