package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/Chris701117/pagepilot/configs"
	"github.com/Chris701117/pagepilot/internal/api/handlers"
	"github.com/Chris701117/pagepilot/internal/api/middleware"
	job "github.com/Chris701117/pagepilot/internal/jobs"
	"github.com/Chris701117/pagepilot/internal/models"
	"github.com/Chris701117/pagepilot/internal/notify"
	"github.com/Chris701117/pagepilot/internal/queue"
	"github.com/Chris701117/pagepilot/internal/repository"
	"github.com/Chris701117/pagepilot/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewPostRepository(db)
	pageRepo := repository.NewPageRepository(db)
	recordRepo := repository.NewPublishRecordRepository(db)

	dispatcher := notify.NewDispatcher()

	registry := service.NewPublisherRegistry()
	for _, platform := range models.Platforms {
		registry.Register(platform, service.NewGraphPublisher(platform, cfg.GraphAPIBaseURL, cfg.SecretKey))
	}

	r2Service := service.NewR2Service(*cfg)
	postService := service.NewPostService(postRepo, pageRepo)
	pageService := service.NewPageService(*cfg, pageRepo)
	publishService := service.NewPublishService(postRepo, pageRepo, recordRepo, registry, dispatcher)
	trashService := service.NewTrashService(postRepo, pageRepo, r2Service)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService, publishService, trashService, client)
	api.Post("/posts", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)
	api.Patch("/posts/:id", post.UpdatePost)
	api.Post("/posts/:id/publish", post.PublishPost)
	api.Post("/posts/:id/complete", post.CompletePost)
	api.Delete("/posts/:id", post.DeletePost)

	trash := handlers.NewTrashHandler(trashService)
	api.Get("/trash", trash.ListTrash)
	api.Post("/posts/:id/restore", trash.RestorePost)
	api.Delete("/posts/:id/permanent", trash.PurgePost)

	page := handlers.NewPageHandler(pageService)
	api.Post("/pages", page.CreatePage)
	api.Get("/pages", page.ListPages)
	api.Get("/pages/:id", page.GetPage)
	api.Delete("/pages/:id", page.DeletePage)

	notifications := handlers.NewNotificationHandler(dispatcher)
	api.Get("/notifications/stream", notifications.Stream)

	// cron jobs
	lifecycleJob := job.NewLifecycleJob(postRepo, pageRepo, postService, publishService, dispatcher)
	trashJob := job.NewTrashJob(trashService, cfg.TrashRetentionDays)

	c := cron.New()
	c.AddFunc(cfg.SchedulerInterval, lifecycleJob.Run)
	c.AddFunc("@daily", trashJob.Run)
	c.Start()

	// queue
	queueW := queue.NewQueue(postRepo, publishService)

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
