package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"mingle/internal/middleware"
	"mingle/internal/models"
	"mingle/internal/observability"
	"mingle/internal/repository"
	"mingle/internal/storage"

	"go.opentelemetry.io/otel/attribute"
)

// usernameAttempts bounds the uniqueness retry loop; with nine digits of
// suffix entropy a second collision in a wedding-sized pool is effectively
// impossible.
const usernameAttempts = 5

// UserService implements the singles-pool operations: candidate listing,
// self-registration, profile edits and admin deletion.
type UserService struct {
	userRepo      repository.UserRepository
	store         storage.ObjectStore
	maxPhotoBytes int64
}

// JoinInput is the public registration form.
type JoinInput struct {
	Name     string          `json:"name"`
	Image    string          `json:"image"` // base64-encoded photo, required
	Gender   models.Gender   `json:"gender"`
	Interest models.Interest `json:"interest"`
	Side     models.Side     `json:"side"`
	Password string          `json:"password"`
}

// JoinResult carries the created user plus the plaintext password the
// client needs for its immediate sign-in call.
type JoinResult struct {
	User              *models.User `json:"user"`
	PlaintextPassword string       `json:"plaintextPassword"`
}

// UpdateProfileInput is a partial profile edit; zero-valued fields are left
// untouched (no unsetting).
type UpdateProfileInput struct {
	Name     string          `json:"name"`
	Image    string          `json:"image"` // base64-encoded replacement photo
	Gender   models.Gender   `json:"gender"`
	Interest models.Interest `json:"interest"`
	Side     models.Side     `json:"side"`
}

// NewUserService builds a UserService on the given store and object storage.
// maxPhotoBytes caps the decoded upload size; values <= 0 apply the default.
func NewUserService(userRepo repository.UserRepository, store storage.ObjectStore, maxPhotoBytes int64) *UserService {
	if maxPhotoBytes <= 0 {
		maxPhotoBytes = DefaultMaxPhotoBytes
	}
	return &UserService{
		userRepo:      userRepo,
		store:         store,
		maxPhotoBytes: maxPhotoBytes,
	}
}

// ListByInterest returns the caller's candidate listing, ordered by name.
//
// Admin accounts and the caller are always excluded. Non-admin callers with
// a single-gender interest only see candidates of that gender; BOTH-interest
// and admin callers see the whole pool. perPage == -1 disables pagination.
// A caller that cannot be resolved gets an empty listing, not an error.
func (s *UserService) ListByInterest(ctx context.Context, callerID uint, page, perPage int) (users []models.User, err error) {
	span, ctx := observability.NewSpan(ctx, "UserService.ListByInterest")
	span.AddAttributes(attribute.Int("page", page), attribute.Int("per_page", perPage))
	defer func() {
		span.SetError(err)
		span.End()
	}()

	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return []models.User{}, nil
		}
		return nil, err
	}

	q := repository.ListQuery{
		ExcludeID: caller.ID,
		Page:      page,
		PerPage:   perPage,
	}
	if !caller.IsAdmin() && caller.Interest != models.InterestBoth {
		q.Gender = models.Gender(caller.Interest)
	}

	return s.userRepo.ListVisible(ctx, q)
}

// Me returns the caller's own record.
func (s *UserService) Me(ctx context.Context, callerID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, callerID)
}

// GetByID returns the record for any id. Any authenticated caller may fetch
// any attendee; the gallery links through to full profiles.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Join registers a new attendee from the public join form.
//
// The photo is resized and uploaded before the record is persisted; an
// upload failure falls back to an empty image URL rather than aborting
// registration. If persistence fails after a successful upload the objects
// are deleted again so storage does not accumulate orphans.
func (s *UserService) Join(ctx context.Context, in JoinInput) (result *JoinResult, err error) {
	span, ctx := observability.NewSpan(ctx, "UserService.Join")
	defer func() {
		span.SetError(err)
		span.End()
	}()

	if strings.TrimSpace(in.Name) == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if strings.TrimSpace(in.Image) == "" {
		return nil, models.NewValidationError("Photo is required")
	}
	if !models.ValidGender(in.Gender) {
		return nil, models.NewValidationError("Invalid gender")
	}
	if !models.ValidInterest(in.Interest) {
		return nil, models.NewValidationError("Invalid interest")
	}
	if !models.ValidSide(in.Side) {
		return nil, models.NewValidationError("Invalid side")
	}

	photo, err := processPhoto(ctx, in.Image, s.maxPhotoBytes)
	if err != nil {
		return nil, err
	}

	username, err := s.generateUsername(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	span.AddAttributes(attribute.String("username", username))

	imageURL, thumbURL, keys := s.uploadPhoto(ctx, username, photo)

	user := &models.User{
		Username: username,
		Name:     in.Name,
		Password: "", // attendees authenticate by username alone
		Gender:   in.Gender,
		Interest: in.Interest,
		Side:     in.Side,
		Type:     models.UserTypeUser,
		Image:    imageURL,
		Thumb:    thumbURL,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.deleteKeys(ctx, keys)
		return nil, err
	}

	return &JoinResult{User: user, PlaintextPassword: in.Password}, nil
}

// UpdateProfile applies the supplied fields to the caller's record. A new
// photo is uploaded first, the record persisted second, and the previous
// objects deleted last, so a mid-flight failure leaves the old image intact.
func (s *UserService) UpdateProfile(ctx context.Context, callerID uint, in UpdateProfileInput) (updated *models.User, err error) {
	span, ctx := observability.NewSpan(ctx, "UserService.UpdateProfile")
	defer func() {
		span.SetError(err)
		span.End()
	}()

	user, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewUnauthorizedError("No resolvable caller")
		}
		return nil, err
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Gender != "" {
		if !models.ValidGender(in.Gender) {
			return nil, models.NewValidationError("Invalid gender")
		}
		user.Gender = in.Gender
	}
	if in.Interest != "" {
		if !models.ValidInterest(in.Interest) {
			return nil, models.NewValidationError("Invalid interest")
		}
		user.Interest = in.Interest
	}
	if in.Side != "" {
		if !models.ValidSide(in.Side) {
			return nil, models.NewValidationError("Invalid side")
		}
		user.Side = in.Side
	}

	oldKeys := []string{}
	var newKeys []string
	if in.Image != "" {
		photo, err := processPhoto(ctx, in.Image, s.maxPhotoBytes)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		key := storage.PhotoKey(user.Username, now)
		url, err := s.store.Put(ctx, key, photo.JPEG, "image/jpeg")
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		newKeys = append(newKeys, key)

		thumbKey := storage.ThumbKey(user.Username, now)
		thumbURL, err := s.store.Put(ctx, thumbKey, photo.Thumb, "image/webp")
		if err != nil {
			// Thumbnail is best-effort; the gallery falls back to the full photo.
			middleware.Logger.WarnContext(ctx, "thumbnail upload failed",
				slog.String("key", thumbKey), slog.String("error", err.Error()))
			thumbURL = ""
		} else {
			newKeys = append(newKeys, thumbKey)
		}

		if k := s.store.KeyFromURL(user.Image); k != "" {
			oldKeys = append(oldKeys, k)
		}
		if k := s.store.KeyFromURL(user.Thumb); k != "" {
			oldKeys = append(oldKeys, k)
		}
		user.Image = url
		user.Thumb = thumbURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.deleteKeys(ctx, newKeys)
		return nil, err
	}

	s.deleteKeys(ctx, oldKeys)
	return user, nil
}

// Delete removes an attendee. Only admin callers may delete; anyone else is
// refused without revealing whether the target exists.
func (s *UserService) Delete(ctx context.Context, callerID, targetID uint) (removed *models.User, err error) {
	span, ctx := observability.NewSpan(ctx, "UserService.Delete")
	span.AddAttributes(attribute.Int("target_id", int(targetID)))
	defer func() {
		span.SetError(err)
		span.End()
	}()

	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil || !caller.IsAdmin() {
		return nil, models.NewUnauthorizedError("Admin access required")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Delete(ctx, target.ID); err != nil {
		return nil, err
	}

	keys := []string{}
	if k := s.store.KeyFromURL(target.Image); k != "" {
		keys = append(keys, k)
	}
	if k := s.store.KeyFromURL(target.Thumb); k != "" {
		keys = append(keys, k)
	}
	s.deleteKeys(ctx, keys)

	return target, nil
}

// generateUsername derives a username from the display name plus a random
// numeric suffix, retrying on the off chance the result is already taken.
func (s *UserService) generateUsername(ctx context.Context, name string) (string, error) {
	base := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")

	for i := 0; i < usernameAttempts; i++ {
		candidate := fmt.Sprintf("%s%d", base, rand.IntN(1_000_000_000))
		existing, err := s.userRepo.GetByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
	}
	return "", models.NewInternalError(fmt.Errorf("could not generate a unique username for %q", name))
}

// uploadPhoto pushes the processed photo and thumbnail to object storage.
// Failures fall back to empty URLs; registration proceeds without a photo
// rather than losing the attendee.
func (s *UserService) uploadPhoto(ctx context.Context, username string, photo *ProcessedPhoto) (imageURL, thumbURL string, keys []string) {
	now := time.Now()

	key := storage.PhotoKey(username, now)
	url, err := s.store.Put(ctx, key, photo.JPEG, "image/jpeg")
	if err != nil {
		middleware.Logger.WarnContext(ctx, "photo upload failed, continuing without image",
			slog.String("key", key), slog.String("error", err.Error()))
		return "", "", nil
	}
	keys = append(keys, key)

	thumbKey := storage.ThumbKey(username, now)
	tURL, err := s.store.Put(ctx, thumbKey, photo.Thumb, "image/webp")
	if err != nil {
		middleware.Logger.WarnContext(ctx, "thumbnail upload failed",
			slog.String("key", thumbKey), slog.String("error", err.Error()))
		return url, "", keys
	}
	keys = append(keys, thumbKey)

	return url, tURL, keys
}

func (s *UserService) deleteKeys(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			middleware.Logger.WarnContext(ctx, "object delete failed",
				slog.String("key", k), slog.String("error", err.Error()))
		}
	}
}
