package handler

import (
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(
	app *fiber.App,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	postHandler *PostHandler,
	healthHandler *HealthHandler,
	sessionAuth fiber.Handler,
) {
	// Health checks (public)
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)

	// API v1
	api := app.Group("/api/v1")

	// Auth routes (public; logout needs a live session)
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", sessionAuth, authHandler.Logout)

	// User routes (protected)
	users := api.Group("/users", sessionAuth)
	users.Get("/me", userHandler.GetMe)
	users.Put("/me", userHandler.UpdateMe)
	users.Get("/:id", userHandler.ViewProfile)
	users.Post("/:id/follow", userHandler.Follow)

	// Post routes (protected)
	posts := api.Group("/posts", sessionAuth)
	posts.Post("/", postHandler.Create)
	posts.Get("/trending", postHandler.Trending)
	posts.Get("/home", postHandler.Home)
	posts.Get("/liked", postHandler.Liked)
	posts.Get("/bookmarked", postHandler.Bookmarked)
	posts.Post("/:id/bookmark", postHandler.Bookmark)
	posts.Post("/:id/boost", postHandler.Boost)
	posts.Post("/:id/react", postHandler.React)
}
