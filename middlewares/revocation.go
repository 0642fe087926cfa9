package middlewares

import (
	"context"
	"fmt"

	"eshop/utils"
)

// RevocationPolicy decides whether a correctly signed, unexpired token
// must still be rejected.
type RevocationPolicy interface {
	IsRevoked(ctx context.Context, claims *utils.Claims) (bool, error)
}

// AdminOnlyPolicy revokes every token that is not marked admin, which makes
// all gated routes admin-only.
type AdminOnlyPolicy struct{}

func (AdminOnlyPolicy) IsRevoked(_ context.Context, claims *utils.Claims) (bool, error) {
	return !claims.IsAdmin, nil
}

type UserLookup interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// UserExistsPolicy revokes tokens whose subject no longer exists. Admin
// status is not checked.
type UserExistsPolicy struct {
	Users UserLookup
}

func (p UserExistsPolicy) IsRevoked(ctx context.Context, claims *utils.Claims) (bool, error) {
	if claims.UserID == "" {
		return true, nil
	}
	exists, err := p.Users.UserExists(ctx, claims.UserID)
	if err != nil {
		return true, fmt.Errorf("lookup user %s: %w", claims.UserID, err)
	}
	return !exists, nil
}
