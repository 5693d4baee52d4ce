package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cliptray/cliptray/internal/config"
	"github.com/cliptray/cliptray/internal/store"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &store.ValidationError{Field: "text", Reason: "title or text is required"}, "Invalid input"},
		{"reserved", fmt.Errorf("create: %w", store.ErrReservedName), "reserved"},
		{"locked", fmt.Errorf("section %q: %w", "vault", store.ErrLocked), "Unlock the section"},
		{"not found", fmt.Errorf("clip %q: %w", "x", store.ErrNotFound), "Not found"},
		{"port", errors.New("listen 127.0.0.1:3030: bind: address already in use"), "already in use"},
		{"other", errors.New("something odd"), "something odd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatError(tt.err); !strings.Contains(got, tt.want) {
				t.Errorf("formatError() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestFormatErrorJoined(t *testing.T) {
	err := errors.Join(
		fmt.Errorf("clip %q: %w", "a", store.ErrNotFound),
		fmt.Errorf("clip %q: %w", "b", store.ErrLocked),
	)
	lines := strings.Split(formatError(err), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "Not found") || !strings.HasPrefix(lines[1], "Locked") {
		t.Errorf("lines = %q", lines)
	}
}

func TestRedactConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Mirror.S3AccessKeyID = "AKIAEXAMPLEKEY"
	cfg.Mirror.S3SecretKey = "short"
	cfg.Telemetry.Headers = map[string]string{"authorization": "Bearer abcdefghijkl"}

	raw := redactConfig(cfg)
	mirror := raw["mirror"].(map[string]any)
	if got := mirror["s3AccessKeyId"]; got != "AKIA****YKEY" {
		t.Errorf("s3AccessKeyId = %v", got)
	}
	if got := mirror["s3SecretKey"]; got != "****" {
		t.Errorf("s3SecretKey = %v", got)
	}
	headers := raw["telemetry"].(map[string]any)["headers"].(map[string]any)
	if got := headers["authorization"]; strings.Contains(got.(string), "abcdefgh") {
		t.Errorf("authorization header not redacted: %v", got)
	}
	if raw["dataDir"] != config.DefaultDataDir {
		t.Errorf("dataDir = %v, want untouched", raw["dataDir"])
	}
}

func TestTruncateCell(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"", 10, "-"},
		{"short", 10, "short"},
		{"multi\nline\ttext", 20, "multi line text"},
		{"abcdefghijkl", 8, "abcdefg…"},
		{"日本語テキスト", 7, "日本語…"},
	}
	for _, tt := range tests {
		if got := truncateCell(tt.in, tt.width); got != tt.want {
			t.Errorf("truncateCell(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestWriteYAMLUsesJSONNames(t *testing.T) {
	var buf bytes.Buffer
	sec := store.Section{ID: "inbox", Label: "Inbox", ExportPath: "/tmp/x"}
	if err := writeYAML(&buf, sec); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"id: inbox", "label: Inbox", "exportPath: /tmp/x"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml missing %q:\n%s", want, out)
		}
	}
}

func TestOutputFlagsStructured(t *testing.T) {
	var o outputFlags
	var buf bytes.Buffer
	if o.structured(&buf, []int{1}) {
		t.Error("structured output without a flag")
	}
	o.json = true
	if !o.structured(&buf, []int{1}) || strings.TrimSpace(buf.String()) != "[\n  1\n]" {
		t.Errorf("json output = %q", buf.String())
	}
}

func TestOnboardValidators(t *testing.T) {
	if validatePort("3030") != nil || validatePort("0") == nil || validatePort("http") == nil {
		t.Error("validatePort")
	}
	if validateOrigins("https://chatgpt.com, https://claude.ai") != nil {
		t.Error("valid origins rejected")
	}
	if validateOrigins("chatgpt.com/path") == nil {
		t.Error("invalid origin accepted")
	}
}
