package server

import (
	"errors"
	"net/http"
	"testing"

	holdingdomain "github.com/arklabs/arkloyalty/internal/holding/domain"
	memberdomain "github.com/arklabs/arkloyalty/internal/member/domain"
	rankdomain "github.com/arklabs/arkloyalty/internal/rank/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError_VerificationFailed(t *testing.T) {
	status, payload := mapError(holdingdomain.ErrVerificationFailed)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "verification_failed", payload.Type)
	assert.Equal(t, "verification check failed", payload.Message)

	// The generic upstream failure keeps its own wording.
	status, payload = mapError(ErrServiceUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "service_unavailable", payload.Type)
	assert.Equal(t, "service unavailable", payload.Message)
}

func TestMapError_DomainSentinels(t *testing.T) {
	status, payload := mapError(memberdomain.ErrWalletExists)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", payload.Type)

	status, payload = mapError(rankdomain.ErrMemberNotFound)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", payload.Type)

	status, payload = mapError(holdingdomain.ErrVerificationLocked)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "verification_in_progress", payload.Type)

	status, _ = mapError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
}
