//go:build !js_eval

package format_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-scenesync/pkg/format"
)

func TestJSEngineUnavailableWithoutTag(t *testing.T) {
	_, err := format.New(format.WithEngine(format.EngineJS))
	if !errors.Is(err, format.ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}
