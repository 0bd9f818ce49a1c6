package errutil

import (
	stderrors "errors"
	"testing"

	"github.com/small-frappuccino/cafefarm/pkg/errors"
)

func TestHandleDiscordError(t *testing.T) {
	if err := HandleDiscordError("open", func() error { return nil }); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	cause := stderrors.New("websocket closed")
	err := HandleDiscordError("open", func() error { return cause })
	if !stderrors.Is(err, cause) || !errors.IsCategory(err, errors.CategoryDiscord) {
		t.Fatalf("expected wrapped discord error, got %v", err)
	}
	if err := HandleDiscordError("open", nil); err == nil {
		t.Fatalf("expected error for nil fn")
	}
}

func TestHandleConfigError(t *testing.T) {
	cause := stderrors.New("no such file")
	err := HandleConfigError("load", "/tmp/cafefarm.yaml", func() error { return cause })
	if !stderrors.Is(err, cause) || !errors.IsCategory(err, errors.CategoryConfig) {
		t.Fatalf("expected wrapped config error, got %v", err)
	}
}
