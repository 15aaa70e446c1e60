// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/adotepet/adotepet-backend/internal/config"
	"github.com/adotepet/adotepet-backend/internal/handlers"
	"github.com/adotepet/adotepet-backend/internal/middleware"
	"github.com/adotepet/adotepet-backend/internal/services"
	"github.com/adotepet/adotepet-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	addressService := services.NewAddressService()

	authService := services.NewAuthService(db, cfg, notificationService)
	eligibilityService := services.NewEligibilityService(db, cfg.Adoption.MaxPendingRequests)
	adoptionService := services.NewAdoptionService(db, eligibilityService, notificationService)
	dogService := services.NewDogService(db)
	paymentService := services.NewPaymentService(db, cfg, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	adoptionHandler := handlers.NewAdoptionHandler(adoptionService, eligibilityService)
	dogHandler := handlers.NewDogHandler(dogService, storageService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	addressHandler := handlers.NewAddressHandler(addressService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.PrometheusMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Dog catalog routes
		dogs := v1.Group("/dogs")
		{
			dogs.GET("", middleware.OptionalAuth(), dogHandler.SearchDogs)
			dogs.GET("/breeds", dogHandler.ListBreeds)
			dogs.GET("/:id", middleware.OptionalAuth(), dogHandler.GetDog)
			dogs.GET("/:id/vaccinations", dogHandler.ListVaccinations)
		}

		// Adoption request routes
		adoptions := v1.Group("/adoptions")
		adoptions.Use(middleware.AuthRequired())
		{
			adoptions.POST("", adoptionHandler.CreateRequest)
			adoptions.GET("", adoptionHandler.GetMyRequests)
			adoptions.GET("/verify/:dogId", adoptionHandler.VerifyEligibility)
			adoptions.GET("/:id", adoptionHandler.GetRequest)
			adoptions.DELETE("/:id", adoptionHandler.CancelRequest)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/charges", paymentHandler.CreateCharge)
			payments.GET("/charges", paymentHandler.GetMyCharges)
			payments.GET("/charges/:id", paymentHandler.GetCharge)
		}

		// Address lookup routes (public)
		address := v1.Group("/address")
		{
			address.GET("/cep/:cep", addressHandler.LookupCEP)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			// Dog management
			adminDogs := admin.Group("/dogs")
			{
				adminDogs.POST("", dogHandler.CreateDog)
				adminDogs.PATCH("/:id", dogHandler.UpdateDog)
				adminDogs.DELETE("/:id", dogHandler.DeleteDog)
				adminDogs.POST("/:id/photo", middleware.UploadRateLimit(), dogHandler.UploadPhoto)
				adminDogs.POST("/:id/vaccinations", dogHandler.AddVaccination)
			}

			// Adoption request management
			adminAdoptions := admin.Group("/adoptions")
			{
				adminAdoptions.GET("", adoptionHandler.SearchRequests)
				adminAdoptions.PATCH("/:id", adoptionHandler.UpdateRequest)
				adminAdoptions.PUT("/:id/approve", adoptionHandler.ApproveRequest)
				adminAdoptions.PUT("/:id/reject", adoptionHandler.RejectRequest)
				adminAdoptions.DELETE("/:id", adoptionHandler.CancelRequest)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
