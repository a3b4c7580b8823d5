package server

import (
	"net/http"
	"strings"

	activitydomain "github.com/arklabs/arkloyalty/internal/activity/domain"
	"github.com/arklabs/arkloyalty/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListActivity(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Kind string `form:"kind"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.activitySvc.List(c.Request.Context(), activitydomain.ListActivityRequest{
		Pagination: query.Pagination,
		MemberID:   strings.TrimSpace(c.Param("id")),
		Kind:       strings.TrimSpace(query.Kind),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
