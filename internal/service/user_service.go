package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/uchat-app/uchat/internal/domain"
	"github.com/uchat-app/uchat/internal/repository"
	"github.com/uchat-app/uchat/pkg/hash"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrSelfFollow   = errors.New("cannot follow yourself")
)

type FollowAction string

const (
	FollowActionFollow   FollowAction = "follow"
	FollowActionUnfollow FollowAction = "unfollow"
)

type UserService struct {
	userRepo repository.UserRepository
}

type UpdateProfileRequest struct {
	DisplayName  *string `json:"display_name" validate:"omitempty,max=50"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Password     *string `json:"password" validate:"omitempty,min=8"`
	ProfileImage *string `json:"profile_image" validate:"omitempty,max=500"`
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of req to the user's profile. A
// new password is re-hashed with a fresh salt before storage.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = req.DisplayName
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.ProfileImage != nil {
		user.ProfileImage = req.ProfileImage
	}
	if req.Password != nil {
		passwordHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = passwordHash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// PublicProfile renders a user as seen by viewerID, including whether the
// viewer follows them.
func (s *UserService) PublicProfile(ctx context.Context, viewerID, userID uuid.UUID) (*domain.PublicUserProfile, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	amFollowing := false
	if viewerID != uuid.Nil && viewerID != userID {
		amFollowing, err = s.userRepo.IsFollowing(ctx, viewerID, userID)
		if err != nil {
			return nil, err
		}
	}

	return &domain.PublicUserProfile{
		ID:           user.ID,
		Handle:       user.Handle,
		DisplayName:  user.DisplayName,
		ProfileImage: user.ProfileImage,
		CreatedAt:    user.CreatedAt,
		AmFollowing:  amFollowing,
	}, nil
}

// Follow creates or removes the follow edge from userID to targetID.
func (s *UserService) Follow(ctx context.Context, userID, targetID uuid.UUID, action FollowAction) error {
	if userID == targetID {
		return ErrSelfFollow
	}

	// The target must exist; a dangling follow edge would poison home feeds.
	if _, err := s.GetByID(ctx, targetID); err != nil {
		return err
	}

	switch action {
	case FollowActionUnfollow:
		return s.userRepo.Unfollow(ctx, userID, targetID)
	default:
		return s.userRepo.Follow(ctx, userID, targetID)
	}
}
