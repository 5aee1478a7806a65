package domain_test

import (
	"strings"
	"testing"

	"github.com/notifyhub/push-fanout/internal/domain"
)

func TestCreateNotificationRequest_Validate(t *testing.T) {
	valid := domain.CreateNotificationRequest{
		Title:     "Hello",
		Message:   "World",
		CountryID: 4,
	}

	t.Run("valid request passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty title", func(t *testing.T) {
		r := valid
		r.Title = ""
		if err := r.Validate(); err != domain.ErrInvalidTitle {
			t.Fatalf("expected ErrInvalidTitle, got %v", err)
		}
	})

	t.Run("oversized title", func(t *testing.T) {
		r := valid
		r.Title = strings.Repeat("x", 191)
		if err := r.Validate(); err != domain.ErrInvalidTitle {
			t.Fatalf("expected ErrInvalidTitle, got %v", err)
		}
	})

	t.Run("empty message", func(t *testing.T) {
		r := valid
		r.Message = ""
		if err := r.Validate(); err != domain.ErrInvalidMessage {
			t.Fatalf("expected ErrInvalidMessage, got %v", err)
		}
	})

	t.Run("non-positive country", func(t *testing.T) {
		r := valid
		r.CountryID = 0
		if err := r.Validate(); err != domain.ErrUnknownTarget {
			t.Fatalf("expected ErrUnknownTarget, got %v", err)
		}
	})
}
