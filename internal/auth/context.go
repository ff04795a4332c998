package auth

import (
	"context"

	"github.com/Aireenelz/rag-employee-learning-system/internal/models"
)

type contextKey string

const userKey contextKey = "user"

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// RankFromContext returns the caller's access rank, denying by default:
// an unauthenticated context gets the lowest rank.
func RankFromContext(ctx context.Context) int {
	if u := UserFromContext(ctx); u != nil {
		return u.AccessRank
	}
	return 0
}
