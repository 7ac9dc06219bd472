package routes

import (
	"hpp_checkout/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathHPP      = "/hpp"
	PathPayments = "/payments"
)

func addHostedPaymentRoutes(rg *gin.RouterGroup, h *handlers.HostedPaymentHandler) {
	hpp := rg.Group(PathHPP)
	{
		// The payment page library may fetch the request with either verb.
		hpp.GET("/request", h.InitiateSession)
		hpp.POST("/request", h.InitiateSession)
		hpp.POST("/response", h.ReconcileResponse)
	}

	payments := rg.Group(PathPayments)
	{
		payments.GET("/:order_id", h.GetPaymentByOrderID)
	}
}
