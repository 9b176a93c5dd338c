package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"smartsquare-server/apperr"
	"smartsquare-server/auth"
	"smartsquare-server/blobstore"
	"smartsquare-server/models"
	"smartsquare-server/policy"
)

type UserService struct {
	db     *gorm.DB
	blobs  blobstore.Store
	policy auth.PasswordPolicy
	now    func() time.Time
}

type RegisterInput struct {
	Email       string          `json:"email" validate:"required,email,max=254"`
	PhoneNumber *string         `json:"phoneNumber" validate:"omitempty,max=20"`
	Username    string          `json:"username" validate:"max=150"`
	FullName    string          `json:"fullName" validate:"required,max=255"`
	UserType    models.UserType `json:"userType" validate:"required,oneof=TENANT LANDLORD BOTH"`
	Password    string          `json:"password" validate:"required"`
	Password2   string          `json:"password2" validate:"required"`
}

// Register creates an account. The role is fixed here and only an
// administrator can change it later.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Password != in.Password2 {
		return nil, apperr.NewValidation("password", "The two password fields didn't match.")
	}
	localPart := in.Email
	if i := strings.Index(localPart, "@"); i >= 0 {
		localPart = localPart[:i]
	}
	if problems := s.policy.Check(in.Password, localPart, in.Username, in.FullName); len(problems) > 0 {
		return nil, apperr.NewValidation("password", "%s", strings.Join(problems, " "))
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:               in.Email,
		PhoneNumber:         nullable(in.PhoneNumber),
		Username:            nullable(&in.Username),
		FullName:            in.FullName,
		UserType:            in.UserType,
		Password:            hash,
		AllowsNotifications: true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, storeErr(err, "user")
	}
	golog.Infof("registered %s user %s", user.UserType, user.ID)
	return user, nil
}

// nullable stores blank optional identifiers as NULL so they stay out of
// their unique index.
func nullable(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Authenticate checks the credentials and stamps LastLogin.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewUnauthenticated("invalid email or password")
		}
		return nil, storeErr(err, "user")
	}
	if !auth.CheckPasswordHash(password, user.Password) {
		return nil, apperr.NewUnauthenticated("invalid email or password")
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		return nil, storeErr(err, "user")
	}
	user.LastLogin = &now
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, storeErr(err, "user")
	}
	return &user, nil
}

// ProfileInput lists the self-service fields. Nil fields are left alone.
type ProfileInput struct {
	FullName            *string   `json:"fullName" validate:"omitempty,min=1,max=255"`
	Username            *string   `json:"username" validate:"omitempty,max=150"`
	PhoneNumber         *string   `json:"phoneNumber" validate:"omitempty,max=20"`
	Bio                 *string   `json:"bio"`
	ProfilePicture      *string   `json:"profilePicture" validate:"omitempty,url"`
	PushTokens          *[]string `json:"pushTokens"`
	AllowsNotifications *bool     `json:"allowsNotifications"`
}

// UpdateProfile changes the actor's own profile. Role, verification flags,
// identifiers and timestamps cannot be reached from here.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, id uuid.UUID, in ProfileInput) (*models.User, error) {
	if err := policy.IsSelf(actor, id); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Username != nil {
		updates["username"] = nullable(in.Username)
	}
	if in.PhoneNumber != nil {
		updates["phone_number"] = nullable(in.PhoneNumber)
	}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}
	if in.ProfilePicture != nil {
		updates["profile_picture"] = *in.ProfilePicture
	}
	if in.PushTokens != nil {
		raw, err := json.Marshal(*in.PushTokens)
		if err != nil {
			return nil, fmt.Errorf("failed to encode push tokens: %w", err)
		}
		updates["push_tokens"] = datatypes.JSON(raw)
	}
	if in.AllowsNotifications != nil {
		updates["allows_notifications"] = *in.AllowsNotifications
	}

	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			return nil, storeErr(err, "user")
		}
	}
	return s.GetByID(ctx, id)
}

// UploadProfilePicture stores an image through the blob store and points the
// actor's profile at it.
func (s *UserService) UploadProfilePicture(ctx context.Context, actor *models.User, fileName string, data []byte, contentType string) (*models.User, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.NewValidation("profile_picture", "profile picture must be an image")
	}
	if len(data) == 0 {
		return nil, apperr.NewValidation("profile_picture", "profile picture is empty")
	}
	url, err := s.blobs.Store(ctx, "profile_pictures/"+actor.ID.String(), fileName, data, contentType)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", actor.ID).Update("profile_picture", url).Error
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return s.GetByID(ctx, actor.ID)
}

// SetStaff grants or revokes the reviewer flag. It is only reachable from the
// command line.
func (s *UserService) SetStaff(ctx context.Context, email string, staff bool) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		return nil, storeErr(err, "user")
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("is_staff", staff).Error; err != nil {
		return nil, storeErr(err, "user")
	}
	user.IsStaff = staff
	golog.Infof("user %s staff=%t", user.ID, staff)
	return &user, nil
}
