// FILE: internal/pkg/apperrors/apperrors_test.go
package apperrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHelpers(t *testing.T) {
	assert.True(t, IsValidation(Validation("amount", "must be positive")))
	assert.True(t, IsConflict(Conflict("already refunded")))
	assert.True(t, IsNotFound(NotFound("donation", "TXN-001")))
	assert.True(t, IsGateway(&GatewayError{GatewayId: "card", Code: "402"}))
	assert.True(t, IsGatewayTransient(&GatewayTransientError{GatewayId: "wallet"}))
	assert.True(t, IsDuplicateEvent(&DuplicateEventError{GatewayId: "card", EventId: "evt-1"}))
	assert.True(t, IsClaimConflict(&SchedulerClaimConflict{SubscriptionId: "sub-1"}))

	// Kinds do not bleed into each other.
	assert.False(t, IsGateway(Validation("amount", "must be positive")))
	assert.False(t, IsGatewayTransient(&GatewayError{GatewayId: "card"}))
	assert.False(t, IsValidation(nil))
}

func TestWrappedErrorsAreStillDetected(t *testing.T) {
	err := fmt.Errorf("charging donation: %w", &GatewayTransientError{GatewayId: "card", Err: fmt.Errorf("timeout")})
	assert.True(t, IsGatewayTransient(err))
	assert.False(t, IsGateway(err))
}
