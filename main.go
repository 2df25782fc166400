package main

import (
	"fmt"
	"log"
	"os"

	_ "ezschedule/docs"
	"ezschedule/internal/auth"
	"ezschedule/internal/engine"
	"ezschedule/internal/events"
	"ezschedule/internal/handlers"
	"ezschedule/internal/models"
	"ezschedule/internal/notify"
	"ezschedule/internal/storage"
	"ezschedule/internal/tasks"
	"ezschedule/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						EzSchedule — очередь на консультации
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		if err := godotenv.Load(); err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	db, err := storage.ConnectDatabase()
	if err != nil {
		log.Fatal("Ошибка подключения к базе данных: ", err.Error())
	}
	fmt.Println("Подключение к базе данных успешно!")

	if err := db.AutoMigrate(&models.User{}, &models.Group{}, &models.Slot{}, &models.Entry{}, &models.ConsultForm{}); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	rdb := storage.NewRedisClient()

	hub := ws.NewHub()
	go hub.Run()

	dispatcher := events.NewDispatcher(db, hub, notify.FromEnv())
	go dispatcher.Run()

	eng := engine.New(db, dispatcher.Events())
	h := handlers.New(db, rdb, eng)

	tasks.InitScheduler(tasks.NewPlanner(db, dispatcher.Events()))

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/register", h.Register)
		authGroup.POST("/refresh", h.RefreshToken)
	}

	groups := r.Group("/api/groups", auth.AuthMiddleware())
	{
		groups.POST("", h.CreateGroupHandler)
		groups.GET("", h.ListGroupsHandler)
		groups.POST("/join", h.JoinGroupHandler)
		groups.POST("/:id/slots", h.CreateSlotHandler)
		groups.GET("/:id/slots", h.ListGroupSlotsHandler)
	}

	slots := r.Group("/api/slots")
	{
		slots.GET("/:id/ws", ws.SlotWebSocketHandler(hub))

		authed := slots.Group("", auth.AuthMiddleware())
		{
			authed.GET("/:id", h.GetSlotHandler)
			authed.POST("/:id/join", h.JoinSlotHandler)
			authed.POST("/:id/leave", h.LeaveSlotHandler)
			authed.POST("/:id/advance", h.AdvanceSlotHandler)
			authed.POST("/:id/close", h.CloseSlotHandler)
			authed.POST("/:id/entries/:entry_id/served", h.MarkServedHandler)
			authed.POST("/:id/form", h.SubmitFormHandler)
			authed.GET("/:id/forms", h.ListFormsHandler)
		}
	}

	profile := r.Group("/profile", auth.AuthMiddleware())
	{
		profile.GET("/slots", h.GetUserSlotsHandler)
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}
