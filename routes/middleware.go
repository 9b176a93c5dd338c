package routes

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"

	"smartsquare-server/apperr"
	"smartsquare-server/models"
)

func bearerToken(ctx iris.Context) string {
	header := ctx.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// resolve turns a bearer token into the user it was issued for.
func (h *Handler) resolve(ctx iris.Context, token string) (*models.User, error) {
	claims, err := h.issuer.Validate(token)
	if err != nil {
		return nil, apperr.NewUnauthenticated("invalid or expired token")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperr.NewUnauthenticated("invalid token subject")
	}
	user, err := h.svc.Users.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, apperr.NewUnauthenticated("user no longer exists")
		}
		return nil, err
	}
	return user, nil
}

func setActor(ctx iris.Context, user *models.User) {
	ctx.Values().Set(userIDKey, user.ID)
	ctx.Values().Set(actorKey, user)
}

// Authenticate rejects requests without a valid bearer token.
func (h *Handler) Authenticate(ctx iris.Context) {
	token := bearerToken(ctx)
	if token == "" {
		writeError(ctx, apperr.NewUnauthenticated("authentication credentials were not provided"))
		return
	}
	user, err := h.resolve(ctx, token)
	if err != nil {
		writeError(ctx, err)
		return
	}
	setActor(ctx, user)
	ctx.Next()
}

// OptionalAuth identifies the caller when a token is sent and lets anonymous
// requests through. A token that does not validate is still rejected.
func (h *Handler) OptionalAuth(ctx iris.Context) {
	if token := bearerToken(ctx); token != "" {
		user, err := h.resolve(ctx, token)
		if err != nil {
			writeError(ctx, err)
			return
		}
		setActor(ctx, user)
	}
	ctx.Next()
}

// RequireStaff must run after Authenticate.
func RequireStaff(ctx iris.Context) {
	if u := actor(ctx); u == nil || !u.IsStaff {
		writeError(ctx, apperr.NewPermission("staff access required"))
		return
	}
	ctx.Next()
}

// CORS allows the configured browser origins. Only origins listed by name
// may send credentials; "*" opens the API to anonymous cross-origin reads.
// Preflight requests are answered here and never reach the router.
func CORS(origins []string) iris.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	_, wildcard := allowed["*"]
	return func(ctx iris.Context) {
		origin := ctx.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok {
				ctx.Header("Access-Control-Allow-Origin", origin)
				ctx.Header("Access-Control-Allow-Credentials", "true")
				ctx.Header("Vary", "Origin")
			} else if wildcard {
				ctx.Header("Access-Control-Allow-Origin", "*")
			} else {
				golog.Debugf("cors: origin %s not allowed", origin)
			}
		}
		if ctx.Method() == http.MethodOptions {
			ctx.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			ctx.Header("Access-Control-Max-Age", "86400")
			ctx.StopWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}
