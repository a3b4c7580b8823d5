package server

import (
	"net/http"
	"strings"

	rankdomain "github.com/arklabs/arkloyalty/internal/rank/domain"
	"github.com/arklabs/arkloyalty/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

func (s *Server) EvaluateRank(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.rankSvc.Evaluate(c.Request.Context(), rankdomain.EvaluateRequest{
		MemberID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRankHistory(c *gin.Context) {
	var query struct {
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rankSvc.ListHistory(c.Request.Context(), rankdomain.ListRankHistoryRequest{
		Pagination: query.Pagination,
		MemberID:   strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
