package server

import (
	"net/http"
	"strings"

	holdingdomain "github.com/arklabs/arkloyalty/internal/holding/domain"
	snapshotdomain "github.com/arklabs/arkloyalty/internal/snapshot/domain"
	"github.com/arklabs/arkloyalty/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

func (s *Server) VerifyEligibility(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.holdingSvc.VerifyEligibility(c.Request.Context(), holdingdomain.VerifyEligibilityRequest{
		MemberID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSnapshots(c *gin.Context) {
	var query struct {
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.snapshotSvc.List(c.Request.Context(), snapshotdomain.ListSnapshotRequest{
		Pagination: query.Pagination,
		MemberID:   strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
