package profile

import (
	"context"

	"github.com/duetapp/duet-backend/internal/compat"
	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/repository"
)

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	schema      *compat.Schema
}

func NewProfileUseCase(
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
	schema *compat.Schema,
) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		schema:      schema,
	}
}

// CreateProfileRequest represents profile creation request
type CreateProfileRequest struct {
	DisplayName string            `json:"display_name" binding:"required,min=2,max=100"`
	Selections  map[string]string `json:"selections" binding:"omitempty"`
	Interests   []string          `json:"interests" binding:"omitempty,max=10"`
}

// UpdateProfileRequest represents profile update request
type UpdateProfileRequest struct {
	DisplayName *string            `json:"display_name" binding:"omitempty,min=2,max=100"`
	Selections  *map[string]string `json:"selections" binding:"omitempty"`
	Interests   *[]string          `json:"interests" binding:"omitempty,max=10"`
}

// GetMyProfile returns current user's profile
func (uc *ProfileUseCase) GetMyProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return uc.profileRepo.GetByUserID(ctx, userID)
}

// CreateProfile creates the profile during onboarding. Unknown module
// keys and options are dropped so only schema-backed selections persist.
func (uc *ProfileUseCase) CreateProfile(ctx context.Context, userID string, req *CreateProfileRequest) (*domain.Profile, error) {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Selections:  uc.sanitize(req.Selections),
		Interests:   req.Interests,
	}
	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies a partial update to the current user's profile.
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*domain.Profile, error) {
	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Selections != nil {
		profile.Selections = uc.sanitize(*req.Selections)
	}
	if req.Interests != nil {
		profile.Interests = *req.Interests
	}

	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ModulesResponse lists the selectable profile modules and their options.
type ModulesResponse struct {
	Modules []compat.Module `json:"modules"`
}

// GetModules returns the profile module schema clients build their
// onboarding UI from.
func (uc *ProfileUseCase) GetModules() *ModulesResponse {
	return &ModulesResponse{Modules: uc.schema.Modules()}
}

func (uc *ProfileUseCase) sanitize(selections map[string]string) domain.ModuleSelections {
	clean := domain.ModuleSelections{}
	for key, option := range selections {
		if uc.schema.HasOption(key, option) {
			clean[key] = option
		}
	}
	return clean
}
