package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/uchat-app/uchat/internal/domain"
	"github.com/uchat-app/uchat/internal/service"
	"github.com/uchat-app/uchat/pkg/validator"
)

type PostHandler struct {
	postService *service.PostService
	validator   *validator.Validator
}

func NewPostHandler(postService *service.PostService, validator *validator.Validator) *PostHandler {
	return &PostHandler{
		postService: postService,
		validator:   validator,
	}
}

// Create adds a new post
// POST /api/v1/posts
func (h *PostHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	var req service.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	post, err := h.postService.Create(c.Context(), userID, req)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Reply target not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create post",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post_id": post.ID,
	})
}

// Trending returns the most recent public posts
// GET /api/v1/posts/trending
func (h *PostHandler) Trending(c *fiber.Ctx) error {
	return h.feed(c, h.postService.Trending)
}

// Home returns posts by the user and everyone they follow
// GET /api/v1/posts/home
func (h *PostHandler) Home(c *fiber.Ctx) error {
	return h.feed(c, h.postService.Home)
}

// Liked returns posts the user has liked
// GET /api/v1/posts/liked
func (h *PostHandler) Liked(c *fiber.Ctx) error {
	return h.feed(c, h.postService.Liked)
}

// Bookmarked returns posts the user has bookmarked
// GET /api/v1/posts/bookmarked
func (h *PostHandler) Bookmarked(c *fiber.Ctx) error {
	return h.feed(c, h.postService.Bookmarked)
}

// Bookmark adds or removes a bookmark
// POST /api/v1/posts/:id/bookmark
func (h *PostHandler) Bookmark(c *fiber.Ctx) error {
	return h.toggle(c, h.postService.Bookmark)
}

// Boost adds or removes a boost
// POST /api/v1/posts/:id/boost
func (h *PostHandler) Boost(c *fiber.Ctx) error {
	return h.toggle(c, h.postService.Boost)
}

// React sets the caller's like status on a post
// POST /api/v1/posts/:id/react
func (h *PostHandler) React(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	var req service.ReactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	agg, err := h.postService.React(c.Context(), userID, postID, req.LikeStatus)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update reaction",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"like_status": req.LikeStatus,
		"likes":       agg.Likes,
		"dislikes":    agg.Dislikes,
	})
}

type feedFunc func(ctx context.Context, viewerID uuid.UUID) ([]domain.PublicPost, error)

func (h *PostHandler) feed(c *fiber.Ctx, load feedFunc) error {
	userID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	posts, err := load(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"posts": posts,
	})
}

type toggleFunc func(ctx context.Context, userID, postID uuid.UUID, action service.BookmarkAction) error

func (h *PostHandler) toggle(c *fiber.Ctx, apply toggleFunc) error {
	userID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	var req struct {
		Action service.BookmarkAction `json:"action" validate:"required,oneof=add remove"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := apply(c.Context(), userID, postID, req.Action); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update post",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": req.Action,
	})
}
