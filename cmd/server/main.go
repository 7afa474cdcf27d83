package main

import (
	"context"
	"errors"
	"log"
	"strings"

	"propdesk-backend/internal/activity"
	"propdesk-backend/internal/auth"
	"propdesk-backend/internal/config"
	"propdesk-backend/internal/dashboard"
	"propdesk-backend/internal/database"
	"propdesk-backend/internal/deal"
	"propdesk-backend/internal/filestore"
	"propdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const filesPrefix = "/api/files"

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Unexpected server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		msg = e.Message
	} else {
		log.Println("Unexpected error:", err)
	}

	if strings.HasPrefix(c.Path(), "/api") {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	return c.Status(code).Render("error", fiber.Map{"Code": code, "Message": msg}, "")
}

func openFiles(cfg *config.Config) (filestore.Store, *filestore.Local, error) {
	if cfg.StorageDriver == "drive" {
		d, err := filestore.NewDrive(context.Background(), cfg.DriveCredentials, cfg.DriveParentFolder)
		return d, nil, err
	}
	l, err := filestore.NewLocal(cfg.StorageLocalRoot, filesPrefix)
	return l, l, err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Init(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	files, local, err := openFiles(cfg)
	if err != nil {
		log.Fatalf("file storage: %v", err)
	}

	recorder := activity.NewRecorder(db)
	versions := deal.NewVersions()
	deals := deal.NewService(deal.NewGormStore(db), files, versions,
		deal.WithStrictUpdateValidation(cfg.StrictUpdateValidation))

	app := fiber.New(fiber.Config{
		Views:        dashboard.NewEngine(),
		ErrorHandler: errorHandler,
		UnescapePath: true,
		BodyLimit:    50 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.AllowedOrigins(), ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, If-None-Match",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "ETag",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(db))
	api.Post("/auth/login", auth.LoginHandler(db, cfg, recorder))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	deal.Register(protected, &deal.Handlers{
		Service:  deals,
		Files:    files,
		Activity: recorder,
		Versions: versions,
	})
	if local != nil {
		protected.Get("/files/:folder/:name", filestore.DownloadHandler(local))
	}

	protected.Get("/dashboard/summary", dashboard.SummaryHandler(db))
	protected.Get("/activity-logs", activity.ListHandler(recorder))

	// Admin
	users := protected.Group("/users")
	users.Use(auth.RequireRole(models.RoleAdmin))
	users.Get("", auth.ListUsersHandler(db))
	users.Post("", auth.CreateUserHandler(db, recorder))

	dashboard.Register(app, &dashboard.Pages{DB: db, Config: cfg, Deals: deals, Files: files})

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
