package contact

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/profitpro/internal/common"
)

// Submission is one contact form message. Nothing is delivered; submissions
// are acknowledged and logged.
type Submission struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Receipt acknowledges an accepted submission.
type Receipt struct {
	Reference  string    `json:"reference"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Service accepts contact submissions.
type Service struct {
	Logger zerolog.Logger
	Now    func() time.Time
	NewID  func() string

	validate *validator.Validate
}

// NewService constructs a Service logging through logger.
func NewService(logger zerolog.Logger) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return &Service{
		Logger:   logger.With().Str("component", "contact").Logger(),
		Now:      time.Now,
		NewID:    uuid.NewString,
		validate: v,
	}
}

// Submit validates and acknowledges s.
func (svc *Service) Submit(ctx context.Context, s Submission) (Receipt, error) {
	s = Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.ToLower(strings.TrimSpace(s.Email)),
		Subject: strings.TrimSpace(s.Subject),
		Message: strings.TrimSpace(s.Message),
	}
	if err := svc.validate.StructCtx(ctx, s); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Receipt{}, err
		}
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
		return Receipt{}, common.NewAppError(common.CodeValidation, "invalid contact submission", http.StatusUnprocessableEntity, err).WithDetails(details)
	}

	receipt := Receipt{Reference: svc.NewID(), ReceivedAt: svc.Now().UTC()}
	svc.Logger.Info().
		Str("reference", receipt.Reference).
		Str("email_domain", emailDomain(s.Email)).
		Str("subject", s.Subject).
		Int("message_len", len(s.Message)).
		Msg("contact_submission")
	return receipt, nil
}

func emailDomain(email string) string {
	if _, domain, ok := strings.Cut(email, "@"); ok {
		return domain
	}
	return ""
}
