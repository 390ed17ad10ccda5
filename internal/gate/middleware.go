// Package gate authenticates incoming queries with subscription tickets.
package gate

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/graphops/graph-subscriptions/internal/subscription"
	"github.com/graphops/graph-subscriptions/internal/ticket"
)

// Context keys set by the middleware for downstream handlers.
const (
	CtxPayload      = "ticket_payload"
	CtxSubscription = "subscription"
	CtxUser         = "user_address"
)

// Resolver looks up the subscription backing a verified ticket.
type Resolver interface {
	GetOrFetch(ctx context.Context, user common.Address) (subscription.Subscription, error)
}

// Middleware returns a Gin handler that admits only requests carrying a
// valid ticket for this gateway's chain and contract, backed by an
// active subscription. The verified payload, its subscription, and the
// user address are stashed in the request context.
func Middleware(chainID uint64, contract ticket.Address, subs Resolver, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing ticket"})
			return
		}

		payload, _, err := ticket.FromBase64(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid ticket"})
			return
		}
		if payload.ChainID != chainID || payload.Contract != contract {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "ticket not valid for this gateway"})
			return
		}
		if !domainAllowed(payload.AllowedDomains, c.GetHeader("Origin")) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
			return
		}

		user := payload.UserOrSigner()
		sub, err := subs.GetOrFetch(c.Request.Context(), user.Common())
		if err != nil {
			log.Error("subscription lookup failed",
				zap.String("user", user.String()),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "subscription lookup failed"})
			return
		}
		if !sub.ActiveAt(time.Now()) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "subscription not active"})
			return
		}

		c.Set(CtxPayload, payload)
		c.Set(CtxSubscription, sub)
		c.Set(CtxUser, user.String())
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// domainAllowed checks the request Origin against the ticket's domain
// allow-list. An absent list is fully permissive. Entries are compared
// against the Origin host verbatim apart from surrounding whitespace; no
// escaping or wildcard rules are defined for the list format.
func domainAllowed(list *string, origin string) bool {
	if list == nil {
		return true
	}
	if origin == "" {
		return false
	}
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	for _, d := range strings.Split(*list, ",") {
		if strings.TrimSpace(d) == host {
			return true
		}
	}
	return false
}
