package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func routeSet(r *gin.Engine) map[string]bool {
	routes := make(map[string]bool)
	for _, rt := range r.Routes() {
		routes[rt.Method+" "+rt.Path] = true
	}
	return routes
}

func TestRegisterUsageRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterUsageRoutes(r.Group("/api/ai"), nil, nil)

	routes := routeSet(r)
	require.True(t, routes["GET /api/ai/check-limit"])
	require.True(t, routes["POST /api/ai/increment-usage"])
}

func TestRegisterPaymentWebhookRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPaymentWebhookRoutes(r.Group("/api/v1/payment"), nil, nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/payment/webhook"])
}

func TestRegisterOAuthRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterOAuthRoutes(r.Group("/api/v1/oauth"), nil, nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/oauth/session"])
	require.True(t, routes["POST /api/v1/oauth/session/:id/complete"])
	require.True(t, routes["GET /api/v1/oauth/session/:id"])
}

func TestRegisterBillingRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterBillingRoutes(r.Group("/api/v1/billing"), nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/billing/run"])
}

func TestRegisterAdminRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterAdminRoutes(r.Group("/api/v1/admin"), nil, nil, nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/admin/list_payments"])
	require.True(t, routes["POST /api/v1/admin/delete_payment"])
	require.True(t, routes["POST /api/v1/admin/set_subscription"])
	require.True(t, routes["POST /api/v1/admin/get_payment_statistic"])
}

func TestRegisterUserRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterUserRoutes(r.Group("/api/v1/user"), nil, nil)

	routes := routeSet(r)
	require.True(t, routes["GET /api/v1/user/profile"])
}

func TestRegisterHealthRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterHealthRoutes(r)

	routes := routeSet(r)
	require.True(t, routes["GET /healthz"])
}
