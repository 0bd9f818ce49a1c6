package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestServiceErrorWrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	se := New(CategoryNetwork, "interaction", "click", "interaction request failed", cause)

	if !errors.Is(se, cause) {
		t.Fatalf("expected errors.Is to see the cause")
	}
	if se.Severity != SeverityMedium {
		t.Fatalf("expected medium severity, got %s", se.Severity)
	}
	if !strings.Contains(se.Error(), "interaction.click") {
		t.Fatalf("unexpected message %q", se.Error())
	}

	wrapped := fmt.Errorf("outer: %w", se)
	if !IsCategory(wrapped, CategoryNetwork) || IsCategory(wrapped, CategoryConfig) {
		t.Fatalf("IsCategory did not unwrap correctly")
	}
}

func TestDiscordReadsRESTStatus(t *testing.T) {
	restErr := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusForbidden},
		Message:  &discordgo.APIErrorMessage{Code: 50001, Message: "Missing Access"},
	}
	se := Discord("dispatch", "send", restErr)
	if se.Severity != SeverityHigh {
		t.Fatalf("expected high severity for 403, got %s", se.Severity)
	}
	if se.Context["status"] != http.StatusForbidden || se.Context["discord_code"] != 50001 {
		t.Fatalf("unexpected context %v", se.Context)
	}

	rateLimited := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}
	if got := Discord("dispatch", "send", rateLimited).Severity; got != SeverityMedium {
		t.Fatalf("expected medium severity for 429, got %s", got)
	}
}

func TestHandleReturnsInput(t *testing.T) {
	if Handle(nil) != nil {
		t.Fatalf("nil in, nil out")
	}
	plain := errors.New("boom")
	if got := Handle(plain); got != plain {
		t.Fatalf("expected the same error back")
	}
	se := New(CategoryParse, "rewards", "parse", "no amount", nil).With("line", "x")
	if got := Handle(se); got != error(se) {
		t.Fatalf("expected the same service error back")
	}
}
