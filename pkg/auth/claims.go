package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medvanta/medsupply-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AccountID  uuid.UUID
	CustomerID *uuid.UUID
	Role       enums.AccountRole
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients. CustomerID is
// set for customer and provider accounts and identifies the buying
// organization the account acts for.
type AccessTokenClaims struct {
	AccountID  uuid.UUID         `json:"account_id"`
	CustomerID *uuid.UUID        `json:"customer_id,omitempty"`
	Role       enums.AccountRole `json:"role"`
	jwt.RegisteredClaims
}
