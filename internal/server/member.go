package server

import (
	"net/http"
	"strings"

	memberdomain "github.com/arklabs/arkloyalty/internal/member/domain"
	"github.com/gin-gonic/gin"
)

type createMemberRequest struct {
	WalletAddress string `json:"wallet_address"`
	DisplayName   string `json:"display_name"`
}

func (s *Server) CreateMember(c *gin.Context) {
	var req createMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.memberSvc.Create(c.Request.Context(), memberdomain.CreateMemberRequest{
		WalletAddress: strings.TrimSpace(req.WalletAddress),
		DisplayName:   strings.TrimSpace(req.DisplayName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMemberByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.memberSvc.GetByID(c.Request.Context(), memberdomain.GetMemberRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMemberByWallet(c *gin.Context) {
	wallet := strings.TrimSpace(c.Param("wallet"))
	resp, err := s.memberSvc.GetByWallet(c.Request.Context(), memberdomain.GetMemberByWalletRequest{
		WalletAddress: wallet,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMemberStanding(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.memberSvc.Standing(c.Request.Context(), memberdomain.GetMemberRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CheckIn(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.memberSvc.CheckIn(c.Request.Context(), memberdomain.CheckInRequest{
		MemberID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type completeMissionRequest struct {
	Points int64 `json:"points"`
}

func (s *Server) CompleteMission(c *gin.Context) {
	var req completeMissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.memberSvc.CompleteMission(c.Request.Context(), memberdomain.CompleteMissionRequest{
		MemberID:  strings.TrimSpace(c.Param("id")),
		MissionID: strings.TrimSpace(c.Param("missionId")),
		Points:    req.Points,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
