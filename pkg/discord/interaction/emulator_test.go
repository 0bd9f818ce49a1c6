package interaction

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/small-frappuccino/cafefarm/pkg/cafe/message"
)

func TestNewSessionID(t *testing.T) {
	re := regexp.MustCompile(`^[A-Za-z0-9]{16}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := NewSessionID()
		if !re.MatchString(id) {
			t.Fatalf("malformed session id %q", id)
		}
		seen[id] = true
	}
	if len(seen) < 45 {
		t.Fatalf("session ids are not random enough: %d unique of 50", len(seen))
	}
}

func TestSucceeded(t *testing.T) {
	for _, s := range []int{200, 202, 204} {
		if !Succeeded(s) {
			t.Fatalf("%d should count as success", s)
		}
	}
	for _, s := range []int{StatusFailed, 201, 400, 429, 500} {
		if Succeeded(s) {
			t.Fatalf("%d should not count as success", s)
		}
	}
}

func TestClickPostsForm(t *testing.T) {
	var got *http.Request
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	e := NewWithClient(srv.Client(), "Bot secret", srv.URL)
	status := e.Click(context.Background(), Request{
		MessageID:     "m1",
		ChannelID:     "c1",
		GuildID:       "g1",
		ApplicationID: "app",
		CustomID:      "order:menu",
		Type:          message.ComponentSelectMenu,
		Value:         "applin",
	})

	if status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
	if got.Method != http.MethodPost || got.URL.Path != "/interactions/m1/order:menu/callback" {
		t.Fatalf("unexpected request %s %s", got.Method, got.URL.Path)
	}
	if got.Header.Get("Authorization") != "Bot secret" {
		t.Fatalf("missing authorization header")
	}
	want := map[string]string{
		"custom_id":      "order:menu",
		"component_type": "3",
		"guild_id":       "g1",
		"application_id": "app",
		"channel_id":     "c1",
		"message_id":     "m1",
		"value":          "applin",
	}
	for k, v := range want {
		if form[k] != v {
			t.Errorf("form[%s] = %q, want %q", k, form[k], v)
		}
	}
	if len(form["session_id"]) != SessionIDLength {
		t.Errorf("expected generated session id, got %q", form["session_id"])
	}
}

func TestClickKeepsProvidedSessionID(t *testing.T) {
	var sid string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid = r.FormValue("session_id")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := NewWithClient(srv.Client(), "Bot x", srv.URL+"/")
	e.Click(context.Background(), Request{MessageID: "m", CustomID: "b", Type: message.ComponentButton, SessionID: "fixedSessionId00"})
	if sid != "fixedSessionId00" {
		t.Fatalf("expected provided session id, got %q", sid)
	}
}

func TestClickRejectedStatusIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	e := NewWithClient(srv.Client(), "Bot x", srv.URL)
	if status := e.Click(context.Background(), Request{MessageID: "m", CustomID: "b"}); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestClickTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	e := NewWithClient(nil, "Bot x", url)
	if status := e.Click(context.Background(), Request{MessageID: "m", CustomID: "b"}); status != StatusFailed {
		t.Fatalf("expected StatusFailed, got %d", status)
	}
}
