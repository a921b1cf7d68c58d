package hydrate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_pages.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			decoder := NewDecoder[pageSettings](buildOptions(t, tc)...)
			result, err := decoder.Decode(Context{Journal: tc.Journal, Page: tc.Page}, tc.Input)

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !reflect.DeepEqual(tc.Expect, result) {
				t.Fatalf("decoded page mismatch:\nwant: %#v\n got: %#v", tc.Expect, result)
			}
		})
	}
}

func TestDecodeNilPayload(t *testing.T) {
	_, err := NewDecoder[pageSettings]().Decode(Context{Page: "p"}, nil)
	if err == nil || !strings.Contains(err.Error(), "payload is nil") {
		t.Fatalf("expected nil payload error, got %v", err)
	}
}

func TestDecodeDoesNotMutateInput(t *testing.T) {
	input := map[string]any{"stepX": "20"}
	_, err := NewDecoder(WithCoercion[pageSettings](map[string]Coercion{"stepX": CoerceInt})).Decode(Context{}, input)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if input["stepX"] != "20" {
		t.Fatalf("expected input untouched, got %v", input["stepX"])
	}
}

func TestCoerceBoolRejectsGarbage(t *testing.T) {
	payload, err := Coerce(map[string]Coercion{"flag": CoerceBool})(Context{}, map[string]any{"flag": "maybe"})
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if _, ok := payload["flag"]; ok {
		t.Fatalf("expected garbage bool removed")
	}
}

func buildOptions(t *testing.T, tc fixtureCase) []DecoderOption[pageSettings] {
	t.Helper()
	var options []DecoderOption[pageSettings]
	for _, name := range tc.Options {
		if name == "disallow_unknown" {
			options = append(options, WithDisallowUnknownFields[pageSettings]())
		}
	}
	if len(tc.Coerce) > 0 {
		fields := map[string]Coercion{}
		for key, kind := range tc.Coerce {
			switch kind {
			case "number":
				fields[key] = CoerceNumber
			case "int":
				fields[key] = CoerceInt
			case "bool":
				fields[key] = CoerceBool
			case "string":
				fields[key] = CoerceString
			default:
				t.Fatalf("unknown coercion %q", kind)
			}
		}
		options = append(options, WithCoercion[pageSettings](fields))
	}
	for _, name := range tc.PostHooks {
		if name == "positive_size" {
			options = append(options, WithPostHook(func(_ Context, s *pageSettings) error {
				if s.ChallengeFontSize < 0 {
					return errors.New("font size must be positive")
				}
				return nil
			}))
		}
	}
	return options
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name      string            `json:"name"`
	Journal   string            `json:"journal"`
	Page      string            `json:"page"`
	Input     map[string]any    `json:"input"`
	Expect    pageSettings      `json:"expect"`
	ExpectErr string            `json:"expectErr"`
	Coerce    map[string]string `json:"coerce"`
	PostHooks []string          `json:"postHooks"`
	Options   []string          `json:"options"`
}

type pageSettings struct {
	ChallengeFontFamily    string `json:"challengeFontFamily"`
	ChallengeFontSize      int    `json:"challengeFontSize"`
	ChallengeAddBackground bool   `json:"challengeAddBackground"`
	StepX                  int    `json:"stepX"`
	StepY                  int    `json:"stepY"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}
