// Package services holds the business operations of the marketplace. Every
// operation takes the acting user explicitly, checks it against package
// policy, and runs its writes in a single gorm transaction.
package services

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"smartsquare-server/apperr"
	"smartsquare-server/auth"
	"smartsquare-server/blobstore"
	"smartsquare-server/notify"
	"smartsquare-server/storage"
)

// Options configures the collaborators shared by all services.
type Options struct {
	Blobs                blobstore.Store
	Dispatcher           notify.Dispatcher
	PasswordPolicy       auth.PasswordPolicy
	VerificationValidity time.Duration
	// Now defaults to the current UTC time.
	Now func() time.Time
}

// Services bundles one instance of every service over the same database.
type Services struct {
	Users         *UserService
	Listings      *ListingService
	Applications  *ApplicationService
	Messaging     *MessagingService
	Reviews       *ReviewService
	Verifications *VerificationService
	Notifications *NotificationService
}

func New(db *gorm.DB, opts Options) *Services {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.Blobs == nil {
		opts.Blobs = blobstore.NewMemory("memory://blobs")
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = notify.Logger{}
	}
	if opts.PasswordPolicy.MinLength == 0 {
		opts.PasswordPolicy.MinLength = 8
	}
	if opts.VerificationValidity == 0 {
		opts.VerificationValidity = 365 * 24 * time.Hour
	}

	notifications := &NotificationService{db: db, dispatcher: opts.Dispatcher, now: opts.Now}
	return &Services{
		Users:         &UserService{db: db, blobs: opts.Blobs, policy: opts.PasswordPolicy, now: opts.Now},
		Listings:      &ListingService{db: db, blobs: opts.Blobs, notifications: notifications, now: opts.Now},
		Applications:  &ApplicationService{db: db, notifications: notifications, now: opts.Now},
		Messaging:     &MessagingService{db: db, notifications: notifications, now: opts.Now},
		Reviews:       &ReviewService{db: db, notifications: notifications, now: opts.Now},
		Verifications: &VerificationService{db: db, blobs: opts.Blobs, notifications: notifications, validity: opts.VerificationValidity, now: opts.Now},
		Notifications: notifications,
	}
}

var validate = newValidator()

// newValidator reports failing fields by their column names so the errors
// line up with the stored schema.
func newValidator() *validator.Validate {
	v := validator.New()
	naming := schema.NamingStrategy{}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return naming.ColumnName("", fld.Name)
	})
	return v
}

func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.NewValidation(fe.Field(), "%s", describe(fe))
	}
	return fmt.Errorf("failed to validate input: %w", err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must have length %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	}
	return fmt.Sprintf("%s failed the %q check", fe.Field(), fe.Tag())
}

// storeErr translates storage failures at the service boundary. entity names
// the record being read or written.
func storeErr(err error, entity string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NewNotFound(entity, "%s not found", entity)
	}
	if cols, ok := storage.UniqueViolation(err); ok {
		field := uniqueField(entity, cols)
		return apperr.NewUnique(field, "%s with this %s already exists", entity, field)
	}
	return fmt.Errorf("%s: %w", entity, err)
}

func uniqueField(entity string, cols []string) string {
	switch {
	case storage.HasColumn(cols, "email"):
		return "email"
	case storage.HasColumn(cols, "phone_number"):
		return "phone_number"
	case storage.HasColumn(cols, "username"):
		return "username"
	case storage.HasColumn(cols, "reviewee_id"):
		return "reviewee"
	case storage.HasColumn(cols, "property_id"):
		return "property"
	}
	return entity
}

const dateLayout = "2006-01-02"

func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperr.NewValidation(field, "%s must be a date in YYYY-MM-DD format", field)
	}
	return d, nil
}
