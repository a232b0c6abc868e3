// Tests for: secrets — Bitwarden Secrets gateway over the bws CLI.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
)

// fakeBws returns canned output per subcommand and records invocations.
type fakeBws struct {
	listOutput []byte
	listErr    error
	execErr    error
	calls      [][]string
}

func (f *fakeBws) ExecBws(_ context.Context, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	if len(args) >= 2 && args[0] == "secret" && args[1] == "list" {
		return f.listOutput, f.listErr
	}
	return nil, f.execErr
}

func testStore(execer BwsExecer, token, project string) *Store {
	s := NewStore(execer, token, project, hclog.NewNullLogger())
	s.lookPath = func(string) (string, error) { return "/usr/bin/bws", nil }
	return s
}

func alwaysValid(context.Context, string) error { return nil }
func neverValid(context.Context, string) error  { return errors.New("401 Unauthorized") }

func TestAvailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		token   string
		project string
		onPath  bool
		want    bool
	}{
		{"fully configured", "tok", "proj", true, true},
		{"no access token", "", "proj", true, false},
		{"no project id", "tok", "", true, false},
		{"binary missing", "tok", "proj", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fake := &fakeBws{}
			s := NewStore(fake, tt.token, tt.project, hclog.NewNullLogger())
			s.lookPath = func(string) (string, error) {
				if tt.onPath {
					return "/usr/bin/bws", nil
				}
				return "", errors.New("not found")
			}

			if got := s.Available(); got != tt.want {
				t.Errorf("Available = %v, want %v", got, tt.want)
			}
			if len(fake.calls) != 0 {
				t.Errorf("Available must not invoke bws, got %v", fake.calls)
			}
		})
	}
}

func TestLookupUnavailableNeverInvokesBws(t *testing.T) {
	t.Parallel()

	fake := &fakeBws{}
	s := NewStore(fake, "", "", hclog.NewNullLogger())

	if _, ok := s.Lookup(context.Background(), "k", alwaysValid); ok {
		t.Error("Lookup on unavailable store must miss")
	}
	if err := s.Save(context.Background(), "k", "v"); err == nil {
		t.Error("Save on unavailable store must fail")
	}
	if len(fake.calls) != 0 {
		t.Fatalf("bws invoked %d times, want 0", len(fake.calls))
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	list := []byte(`[{"id":"u-1","key":"other","value":"x"},{"id":"u-2","key":"local_dev_gitlab_gitlab_api_key","value":"glpat-stored"}]`)

	t.Run("hit with valid secret", func(t *testing.T) {
		t.Parallel()
		s := testStore(&fakeBws{listOutput: list}, "tok", "proj")

		value, ok := s.Lookup(context.Background(), "local_dev_gitlab_gitlab_api_key", alwaysValid)
		if !ok || value != "glpat-stored" {
			t.Errorf("Lookup = (%q, %v), want (glpat-stored, true)", value, ok)
		}
	})

	t.Run("stale secret is a miss", func(t *testing.T) {
		t.Parallel()
		s := testStore(&fakeBws{listOutput: list}, "tok", "proj")

		if _, ok := s.Lookup(context.Background(), "local_dev_gitlab_gitlab_api_key", neverValid); ok {
			t.Error("stale secret must be reported as miss")
		}
	})

	t.Run("unknown key is a miss", func(t *testing.T) {
		t.Parallel()
		s := testStore(&fakeBws{listOutput: list}, "tok", "proj")

		if _, ok := s.Lookup(context.Background(), "nope", alwaysValid); ok {
			t.Error("unknown key must miss")
		}
	})

	t.Run("store failure is a miss, not an error", func(t *testing.T) {
		t.Parallel()
		s := testStore(&fakeBws{listErr: errors.New("bws: 502 Bad Gateway")}, "tok", "proj")

		if _, ok := s.Lookup(context.Background(), "k", alwaysValid); ok {
			t.Error("store failure must miss")
		}
	})
}

func TestSave(t *testing.T) {
	t.Parallel()

	t.Run("existing key is edited", func(t *testing.T) {
		t.Parallel()
		fake := &fakeBws{listOutput: []byte(`[{"id":"u-2","key":"mykey","value":"old"}]`)}
		s := testStore(fake, "tok", "proj")

		if err := s.Save(context.Background(), "mykey", "new"); err != nil {
			t.Fatalf("Save: %v", err)
		}

		last := fake.calls[len(fake.calls)-1]
		want := "secret edit u-2 --key mykey --value new"
		if got := strings.Join(last, " "); got != want {
			t.Errorf("last bws call = %q, want %q", got, want)
		}
	})

	t.Run("missing key is created", func(t *testing.T) {
		t.Parallel()
		fake := &fakeBws{listOutput: []byte(`[]`)}
		s := testStore(fake, "tok", "proj")

		if err := s.Save(context.Background(), "mykey", "val"); err != nil {
			t.Fatalf("Save: %v", err)
		}

		last := fake.calls[len(fake.calls)-1]
		want := "secret create mykey val proj"
		if got := strings.Join(last, " "); got != want {
			t.Errorf("last bws call = %q, want %q", got, want)
		}
	})

	t.Run("list failure surfaces as error", func(t *testing.T) {
		t.Parallel()
		s := testStore(&fakeBws{listErr: fmt.Errorf("network down")}, "tok", "proj")

		if err := s.Save(context.Background(), "k", "v"); err == nil {
			t.Error("Save must surface store failures for the caller to downgrade")
		}
	})
}
