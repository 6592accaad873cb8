// server/internal/api/routes/routes.go
package routes

import (
	"aayur-gram-api-server/internal/api/handlers"
	"aayur-gram-api-server/internal/api/middleware"
	"aayur-gram-api-server/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the components the router wires into its handlers.
type Dependencies struct {
	Users       handlers.UserStore
	Collections handlers.CollectionStore
	LabRecords  handlers.LabRecordStore
	Tokens      interface {
		handlers.TokenIssuer
		middleware.TokenVerifier
	}
	Uploader       handlers.FileUploader
	MaxUploadBytes int64

	AdminSignupSecret string
	LabSignupSecret   string
	BcryptCost        int
	CORSOrigins       []string

	Log *zap.Logger
}

// SetupRouter builds the HTTP API.
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Log))
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	// Handlers
	authHandler := &handlers.AuthHandler{
		Users:       deps.Users,
		Tokens:      deps.Tokens,
		AdminSecret: deps.AdminSignupSecret,
		LabSecret:   deps.LabSignupSecret,
		BcryptCost:  deps.BcryptCost,
		Log:         deps.Log,
	}
	collectionHandler := &handlers.CollectionHandler{Collections: deps.Collections, Log: deps.Log}
	labHandler := &handlers.LabHandler{
		Records:        deps.LabRecords,
		Uploader:       deps.Uploader,
		MaxUploadBytes: deps.MaxUploadBytes,
		Log:            deps.Log,
	}
	adminHandler := &handlers.AdminHandler{Users: deps.Users, Log: deps.Log}

	authenticate := middleware.Authenticate(deps.Tokens)

	api := router.Group("/api")
	{
		api.GET("/health", handlers.Health)

		// === Public ===
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", authenticate, authHandler.Me)
		}

		// === Collections: any authenticated role may log and list its own ===
		collections := api.Group("/collections")
		collections.Use(authenticate)
		{
			collections.POST("", collectionHandler.CreateCollection)
			collections.GET("", collectionHandler.ListMyCollections)

			reviewers := collections.Group("")
			reviewers.Use(middleware.Authorize(models.RoleAdmin, models.RoleLab))
			{
				reviewers.GET("/all", collectionHandler.ListAllCollections)
				reviewers.GET("/:id", collectionHandler.GetCollectionByID)
			}
		}

		// === Lab records ===
		lab := api.Group("/lab")
		lab.Use(authenticate)
		{
			lab.GET("", middleware.Authorize(models.RoleAdmin), labHandler.ListLabRecords)

			labStaff := lab.Group("")
			labStaff.Use(middleware.Authorize(models.RoleLab, models.RoleAdmin))
			{
				labStaff.POST("", labHandler.CreateLabRecord)
				labStaff.GET("/mine", labHandler.ListMyLabRecords)
				labStaff.GET("/:id", labHandler.GetLabRecord)
				labStaff.PUT("/:id", labHandler.UpdateLabRecord)
				labStaff.POST("/:id/attachments", labHandler.UploadAttachment)
			}
		}

		// === Admin ===
		admin := api.Group("/admin")
		admin.Use(authenticate, middleware.Authorize(models.RoleAdmin))
		{
			admin.GET("/users", adminHandler.ListUsers)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
