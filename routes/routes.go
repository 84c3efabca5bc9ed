package routes

import (
	"github.com/Marina-Luz/TarotSphere/controllers"
	"github.com/Marina-Luz/TarotSphere/middleware"
	"github.com/Marina-Luz/TarotSphere/utils"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter() *gin.Engine {
	router := gin.New()

	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	api := router.Group("/v1")
	{
		// Storefront routes
		api.POST("/checkout/session", controllers.CreateCheckoutSession)
		api.POST("/coupons/validate", controllers.ValidateCoupon)

		// Payment provider callback; authenticated by signature, not JWT
		api.POST("/webhook/stripe", controllers.StripeWebhook)

		admin := api.Group("/admin")
		{
			admin.POST("/login", controllers.AdminLogin)
			admin.POST("/logout", controllers.AdminLogout)

			protected := admin.Group("")
			protected.Use(middleware.AdminAuthMiddleware())
			{
				protected.POST("/coupons", controllers.CreateCoupon)
				protected.GET("/coupons", controllers.GetCoupons)
				protected.GET("/coupons/stats", controllers.GetCouponStats)
				protected.GET("/coupons/stats/export", controllers.ExportCouponStats)
				protected.PUT("/coupons/:id", controllers.UpdateCoupon)
				protected.DELETE("/coupons/:id", controllers.ExpireCoupon)

				protected.GET("/purchases", controllers.GetPurchases)
				protected.GET("/purchases/:id/receipt", controllers.DownloadPurchaseReceipt)
			}
		}
	}

	return router
}
