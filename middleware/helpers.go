package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Имена JWT claims
const (
	jwtClaimUserID = "user_id"
	jwtClaimRole   = "role"
	jwtClaimTeamID = "team_id"
)

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the caller put into the context by Authenticate.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(models.Actor)
	return actor, ok
}

func actorFromClaims(claims jwt.MapClaims) (models.Actor, error) {
	userID, err := intClaim(claims, jwtClaimUserID, true)
	if err != nil {
		return models.Actor{}, err
	}
	teamID, err := intClaim(claims, jwtClaimTeamID, false)
	if err != nil {
		return models.Actor{}, err
	}

	roleClaim, ok := claims[jwtClaimRole]
	if !ok {
		return models.Actor{}, fmt.Errorf("missing '%s' claim in token", jwtClaimRole)
	}
	roleStr, ok := roleClaim.(string)
	if !ok {
		return models.Actor{}, fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimRole, roleClaim)
	}
	role := models.UserRole(roleStr)
	switch role {
	case models.RoleAdmin, models.RoleUser:
	default:
		return models.Actor{}, fmt.Errorf("invalid role value in claim: %q", roleStr)
	}

	return models.Actor{UserID: userID, Role: role, TeamID: teamID}, nil
}

// intClaim принимает числа (JSON number) и строки с числом.
func intClaim(claims jwt.MapClaims, name string, required bool) (int, error) {
	raw, ok := claims[name]
	if !ok || raw == nil {
		if required {
			return 0, fmt.Errorf("missing '%s' claim in token", name)
		}
		return 0, nil
	}

	var value int
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("'%s' claim is not an integer: %f", name, v)
		}
		value = int(v)
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("'%s' claim is not an integer: %q", name, v)
		}
		value = parsed
	default:
		return 0, fmt.Errorf("invalid type for '%s' claim: expected number or string, got %T", name, raw)
	}

	if value < 0 || (required && value == 0) {
		return 0, fmt.Errorf("invalid value in '%s' claim: %d", name, value)
	}
	return value, nil
}

func writeFail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "fail", "message": message})
}
