package router // defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/safehaven/peer-support-core/internal/audit"
	"github.com/safehaven/peer-support-core/internal/config"
	"github.com/safehaven/peer-support-core/internal/consent"
	"github.com/safehaven/peer-support-core/internal/handler"
	"github.com/safehaven/peer-support-core/internal/middleware"
	"github.com/safehaven/peer-support-core/internal/model"
)

// Handlers groups every handler the router wires up, so main builds them
// once and passes a single value here.
type Handlers struct {
	Auth       *handler.AuthHandler
	Submission *handler.SubmissionHandler
	Review     *handler.ReviewHandler
	Consent    *handler.ConsentHandler
	Feed       *handler.FeedHandler
}

// Register wires all routes and their middleware chains onto the Echo
// instance. The chains encode the access model:
//
//   public    → nothing (health, feed, resources)
//   auth      → rate limit only
//   student   → JWT → rate limit → consent gate
//   counselor → JWT → role (COUNSELOR|ADMIN); school scoping inside the workflow
//   admin     → JWT → role (ADMIN)
func Register(e *echo.Echo, cfg config.Config, h Handlers, ledger consent.Ledger, rec *audit.Recorder, rdb *redis.Client, log *zap.Logger) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Public browse: the anonymous feed (published entries only) and the
	// resource directory. The feed is cacheable because it never depends on
	// the requester's identity.
	e.GET("/v1/schools/:id/feed", h.Feed.Feed, cache)
	e.GET("/v1/resources", h.Feed.Resources, cache)

	// Unauthenticated auth operations.
	auth := e.Group("/v1/auth", rateLimit)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// Everything below requires a valid access token. The consent gate runs
	// after JWTAuth on the whole group; its own skip-list exempts the
	// consent endpoints so the approval flow can never deadlock itself.
	protected := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), middleware.ConsentGate(ledger, rec, log))
	protected.GET("/me", h.Auth.Me)
	protected.POST("/logout-all", h.Auth.LogoutAll)

	// Student submission path: rate-limited on top of the group chain.
	protected.POST("/submissions", h.Submission.Submit, rateLimit, middleware.RequireRole(model.RoleStudent))

	// Counselor queue operations. Role gating here, school scoping (and its
	// audit trail) inside the workflow.
	review := protected.Group("", middleware.RequireRole(model.RoleCounselor, model.RoleAdmin))
	review.GET("/schools/:id/review-queue", h.Review.Queue)
	review.POST("/review/:id/open", h.Review.Open)
	review.POST("/review/:id/resolve", h.Review.Resolve)

	// Consent: status is readable by the student themselves or an admin;
	// the write path is for the external approval workflow (admin).
	protected.GET("/consent/:studentID", h.Consent.Status)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	protected.POST("/consent/records/:recordID/approve", h.Consent.Approve, adminOnly)
	protected.POST("/consent/records/:recordID/deny", h.Consent.Deny, adminOnly)
	protected.POST("/review/expire-sweep", h.Review.ExpireStale(cfg.HeldRetentionDays), adminOnly)
}
