package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"labsite/internal/emailcheck"
	"labsite/internal/mailer"
)

// EmailValidator checks an address with the validation service.
type EmailValidator interface {
	Validate(ctx context.Context, email string) (*emailcheck.Result, error)
}

// MailSender delivers an email through the sending service.
type MailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Contact handles the contact form and the standalone email check.
type Contact struct {
	validator EmailValidator
	sender    MailSender
	to        string
	site      string
}

// NewContact creates the contact handler group. validator and sender may
// be nil: without a validator addresses get only a basic syntax check, and
// without a sender submissions fail with a configuration error.
func NewContact(validator EmailValidator, sender MailSender, to, site string) *Contact {
	return &Contact{validator: validator, sender: sender, to: to, site: site}
}

// Submit validates a contact form submission and forwards it by email.
// An invalid verdict, or a disposable check that failed or did not run,
// blocks the submission; an unreachable validator does not.
func (c *Contact) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var form mailer.ContactForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Subject = strings.TrimSpace(form.Subject)
	form.Message = strings.TrimSpace(form.Message)

	if err := validate.Struct(form); err != nil {
		msg := "Invalid request body"
		if fe := firstFieldError(err); fe != nil {
			switch fe.Tag() {
			case "required", "notblank":
				msg = "All fields are required"
			case "max":
				msg = "Field " + fe.Field() + " is too long"
			}
		}
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if c.sender == nil {
		slog.Error("email API key not configured")
		writeError(w, http.StatusInternalServerError, "Email service not configured")
		return
	}

	if c.validator != nil {
		res, err := c.validator.Validate(ctx, form.Email)
		switch {
		case err != nil:
			slog.Warn("email validation unavailable, accepting submission", "error", err)
		case !res.IsValid:
			writeJSON(w, http.StatusBadRequest, errorBody{
				Error:   "Invalid email address",
				Message: res.FirstRecommendation("Email validation failed"),
			})
			return
		case res.Disposable():
			writeJSON(w, http.StatusBadRequest, errorBody{
				Error:   "Disposable email not allowed",
				Message: "Please use a permanent email address",
			})
			return
		case res.Score < emailcheck.LowScore:
			slog.Warn("low quality email submission", "email", form.Email, "score", res.Score)
		}
	}

	msg, err := mailer.ContactMessage(form, c.to, c.site)
	if err != nil {
		slog.Error("build contact email failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to send email")
		return
	}

	if err := c.sender.Send(ctx, msg); err != nil {
		slog.Error("send contact email failed", "error", err)
		body := errorBody{Error: "Failed to send email"}
		var apiErr *mailer.APIError
		if errors.As(err, &apiErr) {
			body.Details = apiErr.Detail()
		}
		writeJSON(w, http.StatusInternalServerError, body)
		return
	}

	slog.Info("contact form sent", "reply_to", form.Email)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Email sent successfully",
	})
}

type validateEmailRequest struct {
	Email string `json:"email" validate:"notblank,max=320"`
}

// ValidateEmail returns the validation service's verdict for an address,
// or a basic local check when the service is not configured.
func (c *Contact) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	var req validateEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		msg := "Email is required"
		if fe := firstFieldError(err); fe != nil && fe.Tag() == "max" {
			msg = "Email is too long"
		}
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if c.validator == nil {
		writeJSON(w, http.StatusOK, emailcheck.BasicResult(req.Email))
		return
	}

	res, err := c.validator.Validate(r.Context(), req.Email)
	if err != nil {
		slog.Error("email validation failed", "error", err)
		status := http.StatusBadGateway
		details := err.Error()
		var apiErr *emailcheck.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Status
			details = apiErr.Body
		}
		writeJSON(w, status, errorBody{
			Error:   "Email validation service unavailable",
			Details: details,
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}
