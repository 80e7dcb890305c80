// Package approval implements the capability gate guarding operations with
// external side effects. A token is self-describing: validity is a pure
// function of its embedded fields and the wall clock, with no registry
// lookup. This is a capability check, not authentication - any holder of
// an unexpired token of the right category passes. Tokens stay valid until
// expiry; there is no single-use consumption.
package approval

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"groundwork/internal/logging"
)

// Category tags the class of side effect a token authorizes.
type Category string

const (
	CategoryCRMWrite  Category = "crm_write"
	CategoryCRMRead   Category = "crm_read"
	CategoryFileWrite Category = "file_write"
)

// Token is a time-boxed, single-purpose authorization.
type Token struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	GrantedBy string    `json:"granted_by"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ApprovalRequiredError reports a gated operation attempted without a
// usable token.
type ApprovalRequiredError struct {
	Operation string
	Required  Category
	Reason    string
}

func (e *ApprovalRequiredError) Error() string {
	return fmt.Sprintf("operation %s requires %s approval: %s", e.Operation, e.Required, e.Reason)
}

// CreateToken issues a token for one side-effect category. A zero or
// negative ttl produces a token that is already expired by the time it is
// checked, which is useful for tests and for revoking by construction.
func CreateToken(category Category, grantedBy string, ttl time.Duration) *Token {
	now := time.Now()
	tok := &Token{
		ID:        fmt.Sprintf("apv_%s", uuid.New().String()[:8]),
		Category:  category,
		GrantedBy: grantedBy,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	logging.Get(logging.CategoryApproval).Info("token %s issued for %s by %s (ttl=%v)", tok.ID, category, grantedBy, ttl)
	return tok
}

// Validate checks a token against the required category for an operation.
// It returns true only for a present, unexpired, category-matching token;
// every other case is an ApprovalRequiredError. Validation is stateless
// and synchronous.
func Validate(tok *Token, required Category, operation string) (bool, error) {
	log := logging.Get(logging.CategoryApproval)

	if tok == nil {
		log.Warn("operation %s attempted without a token", operation)
		return false, &ApprovalRequiredError{Operation: operation, Required: required, Reason: "no token presented"}
	}
	if tok.Category != required {
		log.Warn("operation %s presented %s token, needs %s", operation, tok.Category, required)
		return false, &ApprovalRequiredError{
			Operation: operation,
			Required:  required,
			Reason:    fmt.Sprintf("token %s is for %s", tok.ID, tok.Category),
		}
	}
	if !tok.ExpiresAt.IsZero() && time.Now().After(tok.ExpiresAt) {
		log.Warn("operation %s presented expired token %s", operation, tok.ID)
		return false, &ApprovalRequiredError{
			Operation: operation,
			Required:  required,
			Reason:    fmt.Sprintf("token %s expired at %s", tok.ID, tok.ExpiresAt.Format(time.RFC3339)),
		}
	}

	log.Info("operation %s authorized by token %s", operation, tok.ID)
	return true, nil
}
