package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/eventpass/eventpass-api/docs"
	v1 "github.com/eventpass/eventpass-api/internal/api/handler/v1"
	"github.com/eventpass/eventpass-api/internal/api/middleware"
	"github.com/eventpass/eventpass-api/internal/config"
	"github.com/eventpass/eventpass-api/internal/repository"
	"github.com/eventpass/eventpass-api/internal/repository/dao"
	"github.com/eventpass/eventpass-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	regRepo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))

	userSvc := service.NewUserService(userRepo)

	authHandler := v1.NewAuthHandler(s.Config.API, service.NewAuthService(userRepo))
	userHandler := v1.NewUserHandler(userSvc)
	eventHandler := v1.NewEventHandler(service.NewEventService(eventRepo), userSvc)
	regHandler := v1.NewRegistrationHandler(service.NewRegistrationService(regRepo, eventRepo), userSvc)
	checkInHandler := v1.NewCheckInHandler(service.NewCheckInService(regRepo, eventRepo, userRepo), userSvc)

	s.MountHandlers(authHandler, userHandler, eventHandler, regHandler, checkInHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	regHandler *v1.RegistrationHandler,
	checkInHandler *v1.CheckInHandler,
) {
	const basePath = "/api/v1"

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", authHandler.HandleSignup)
		public.POST("/auth/login", authHandler.HandleLogin)
		public.GET("/events", eventHandler.HandleListEvents)
		public.GET("/events/:eventID", eventHandler.HandleGetEvent)
	}

	authed := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		authed.GET("/me", userHandler.HandleGetMe)
		authed.GET("/me/registrations", regHandler.HandleListMyRegistrations)

		authed.GET("/events/managed", eventHandler.HandleListManagedEvents)
		authed.GET("/events/pending", eventHandler.HandleListPendingEvents)
		authed.POST("/events", eventHandler.HandleCreateEvent)
		authed.PATCH("/events/:eventID", eventHandler.HandleUpdateEvent)
		authed.DELETE("/events/:eventID", eventHandler.HandleDeleteEvent)
		authed.POST("/events/:eventID/approve", eventHandler.HandleApproveEvent)
		authed.POST("/events/:eventID/reject", eventHandler.HandleRejectEvent)

		authed.POST("/events/:eventID/registrations", regHandler.HandleRegister)
		authed.GET("/events/:eventID/attendees", regHandler.HandleListAttendees)
		authed.DELETE("/registrations/:registrationID", regHandler.HandleCancelRegistration)

		authed.POST("/checkin/verify", checkInHandler.HandleVerifyTicket)
		authed.POST("/checkin/walk-in", checkInHandler.HandleWalkIn)

		authed.GET("/users", userHandler.HandleListUsers)
		authed.PATCH("/users/:userID/role", userHandler.HandleUpdateUserRole)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Event registration & check-in API"
	docs.SwaggerInfo.Description = "Event browsing, registration, ticketing and on-site check-in."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
