package routes

import (
	"food-redistribution-api-server/config"
	"food-redistribution-api-server/internal/api/handlers"
	"food-redistribution-api-server/internal/api/middleware"
	"food-redistribution-api-server/internal/auth"
	"food-redistribution-api-server/internal/donation"
	"food-redistribution-api-server/internal/s3"
	"food-redistribution-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires the handlers and returns the configured engine.
func SetupRouter(
	service *donation.Service,
	db *mongo.Database,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
	cfg config.Config,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	donationHandler := &handlers.DonationHandler{Service: service, S3Uploader: s3Uploader}
	requestHandler := &handlers.RequestHandler{Service: service}
	organizationHandler := &handlers.OrganizationHandler{DB: db}
	adminHandler := &handlers.AdminHandler{DB: db, Service: service, Hub: wsHub}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		// WebSocket route (token in query string)
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === PUBLIC ROUTES ===

		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", organizationHandler.Register)
			authRoutes.POST("/login", organizationHandler.Login)
			authRoutes.POST("/admin/login", adminHandler.Login)
		}

		// === ORGANIZATION ROUTES ===

		orgRoutes := apiV1.Group("/")
		orgRoutes.Use(middleware.Authenticate())
		orgRoutes.Use(middleware.Authorize(auth.RoleOrganization))
		{
			donations := orgRoutes.Group("/donations")
			{
				donations.POST("/", donationHandler.CreateDonation)
				donations.GET("/mine", donationHandler.GetMyDonations)
				donations.GET("/available", donationHandler.GetAvailableDonations)
				donations.GET("/expiring", donationHandler.GetExpiringDonations)
				donations.GET("/:id", donationHandler.GetDonationByID)
				donations.PUT("/:id", donationHandler.UpdateDonation)
				donations.PUT("/:id/cancel", donationHandler.CancelDonation)
				donations.DELETE("/:id", donationHandler.DeleteDonation)
				donations.POST("/:id/reserve", donationHandler.ReserveDonation)
				donations.POST("/:id/photo", donationHandler.UploadDonationPhoto)
			}

			requests := orgRoutes.Group("/requests")
			{
				requests.GET("/mine", requestHandler.GetMyRequests)
				requests.POST("/:id/mark-notified", requestHandler.MarkNotificationShown)
			}

			organization := orgRoutes.Group("/organization")
			{
				organization.GET("/", organizationHandler.GetMyOrganization)
				organization.PUT("/", organizationHandler.UpdateMyOrganization)
			}
		}

		// === ADMIN ROUTES ===

		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize(auth.RoleAdmin))
		{
			admin.GET("/organizations", adminHandler.GetAllOrganizations)
			admin.DELETE("/organizations/:id", organizationHandler.DeleteOrganization)
			admin.GET("/donations", adminHandler.GetAllDonations)
			admin.GET("/donations/expired", donationHandler.GetExpiredDonations)
			admin.PUT("/donations/:id/status", adminHandler.OverrideStatus)
			admin.GET("/requests/pending", adminHandler.GetPendingReservations)
			admin.GET("/requests/ledger/pending", requestHandler.GetPendingRequests)
			admin.PUT("/requests/:id/approve", adminHandler.ApproveReservation)
			admin.PUT("/requests/:id/reject", adminHandler.RejectReservation)
		}
	}

	return router
}
