package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/quadratic01/portfolio-api/internal/contacts/domain"
	"github.com/quadratic01/portfolio-api/internal/logging"
	"github.com/quadratic01/portfolio-api/internal/notify"
)

// Input is a raw contact-form submission.
type Input struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"required,email,max=254"`
	Subject *string `json:"subject" validate:"omitempty,max=200"`
	Message string  `json:"message" validate:"required,max=5000"`
}

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationError is returned when a submission does not match the contact
// form schema.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return "invalid contact submission: " + strings.Join(parts, "; ")
}

// ContactStore is the slice of the record store contact intake needs.
type ContactStore interface {
	CreateContact(in domain.NewContact) domain.Contact
	ListContacts() []domain.Contact
}

// Recorder counts submissions and failed notifications.
type Recorder interface {
	RecordContact()
	RecordNotificationFailure()
}

// ContactService validates, stores and forwards contact submissions.
type ContactService struct {
	store    ContactStore
	notifier notify.Notifier
	validate *validator.Validate
	recorder Recorder
	logger   zerolog.Logger
}

// NewContactService creates a new ContactService
func NewContactService(store ContactStore, notifier notify.Notifier, recorder Recorder, logger zerolog.Logger) *ContactService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ContactService{
		store:    store,
		notifier: notifier,
		validate: v,
		recorder: recorder,
		logger:   logger,
	}
}

// Submit stores a valid submission and then notifies the operator. A failed
// notification is logged and does not fail the submission.
func (s *ContactService) Submit(ctx context.Context, in Input) (domain.Contact, error) {
	in = normalize(in)

	if err := s.validate.StructCtx(ctx, in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return domain.Contact{}, toValidationError(verrs)
		}
		return domain.Contact{}, fmt.Errorf("validate contact: %w", err)
	}

	contact := s.store.CreateContact(domain.NewContact{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
	})
	if s.recorder != nil {
		s.recorder.RecordContact()
	}

	logger := logging.FromContext(ctx, s.logger)
	logger.Info().Int("contact_id", contact.ID).Msg("contact submission stored")

	if err := s.notify(ctx, contact); err != nil {
		if s.recorder != nil {
			s.recorder.RecordNotificationFailure()
		}
		logger.Error().Err(err).Int("contact_id", contact.ID).Msg("failed to send contact notification")
	}
	return contact, nil
}

// List returns all submissions, newest first.
func (s *ContactService) List(_ context.Context) []domain.Contact {
	return s.store.ListContacts()
}

func (s *ContactService) notify(ctx context.Context, c domain.Contact) (err error) {
	if s.notifier == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panicked: %v", r)
		}
	}()
	return s.notifier.Notify(ctx, NotificationFor(c))
}

// NotificationFor builds the operator notification for a stored contact.
func NotificationFor(c domain.Contact) notify.Message {
	subject := "New Portfolio Contact: " + c.Name
	if c.Subject != nil {
		subject = *c.Subject + " - " + c.Name
	}
	return notify.Message{
		ContactID:   c.ID,
		Subject:     subject,
		ReplyTo:     c.Email,
		SenderName:  c.Name,
		SenderEmail: c.Email,
		Body:        c.Message,
		SubmittedAt: c.CreatedAt,
	}
}

func normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if in.Subject != nil {
		subject := strings.TrimSpace(*in.Subject)
		if subject == "" {
			in.Subject = nil
		} else {
			in.Subject = &subject
		}
	}
	return in
}

func toValidationError(verrs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
