// Tests for: container — initial root password extraction.
package container

import (
	"context"
	"errors"
	"testing"

	"github.com/opsglue/glpat/internal/gitlab"
)

// fakeDocker returns canned output and records the invocation.
type fakeDocker struct {
	output []byte
	err    error
	args   []string
}

func (f *fakeDocker) ExecDocker(_ context.Context, args ...string) ([]byte, error) {
	f.args = args
	return f.output, f.err
}

func TestInitialRootPassword(t *testing.T) {
	t.Parallel()

	t.Run("extracts password", func(t *testing.T) {
		t.Parallel()
		fake := &fakeDocker{output: []byte("Password: s3cr3t-Pass+word=\n")}

		pass, err := InitialRootPassword(context.Background(), fake, "gitlab")
		if err != nil {
			t.Fatalf("InitialRootPassword: %v", err)
		}
		if pass != "s3cr3t-Pass+word=" {
			t.Errorf("password = %q", pass)
		}

		want := []string{"exec", "gitlab", "grep", "Password:", "/etc/gitlab/initial_root_password"}
		if len(fake.args) != len(want) {
			t.Fatalf("docker args = %v, want %v", fake.args, want)
		}
		for i := range want {
			if fake.args[i] != want[i] {
				t.Fatalf("docker args = %v, want %v", fake.args, want)
			}
		}
	})

	t.Run("exec failure is coded", func(t *testing.T) {
		t.Parallel()
		fake := &fakeDocker{err: errors.New("no such container")}

		_, err := InitialRootPassword(context.Background(), fake, "missing")
		var glErr *gitlab.Error
		if !errors.As(err, &glErr) || glErr.Code != gitlab.ErrPasswordMissing {
			t.Fatalf("err = %v, want coded %s", err, gitlab.ErrPasswordMissing)
		}
	})

	t.Run("empty output is coded", func(t *testing.T) {
		t.Parallel()
		fake := &fakeDocker{output: []byte("# WARNING: file is deleted after first reconfigure\n")}

		_, err := InitialRootPassword(context.Background(), fake, "gitlab")
		var glErr *gitlab.Error
		if !errors.As(err, &glErr) || glErr.Code != gitlab.ErrPasswordMissing {
			t.Fatalf("err = %v, want coded %s", err, gitlab.ErrPasswordMissing)
		}
	})
}

func TestParsePasswordLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"plain", "Password: abc123", "abc123"},
		{"surrounding noise", "# file header\nPassword: abc123\n# trailer\n", "abc123"},
		{"leading whitespace", "   Password:   padded\n", "padded"},
		{"no password line", "nothing here\n", ""},
		{"empty value", "Password:\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parsePasswordLine(tt.output); got != tt.want {
				t.Errorf("parsePasswordLine = %q, want %q", got, tt.want)
			}
		})
	}
}
