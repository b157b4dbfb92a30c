package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type mockResolver struct {
	scheme string
	values map[string]string
}

func (m *mockResolver) Scheme() string {
	return m.scheme
}

func (m *mockResolver) Resolve(ctx context.Context, ref string) (string, error) {
	if v, ok := m.values[ref]; ok {
		return v, nil
	}
	return "", &BackendError{Backend: "mock", Reference: ref, Reason: "not found"}
}

// withTestRegistry runs fn against an empty registry and restores the
// registered resolvers afterwards.
func withTestRegistry(fn func()) {
	mu.Lock()
	saved := resolvers
	mu.Unlock()

	clearRegistry()
	defer func() {
		mu.Lock()
		resolvers = saved
		mu.Unlock()
	}()
	fn()
}

func TestResolve_DispatchesToCorrectResolver(t *testing.T) {
	withTestRegistry(func() {
		mock := &mockResolver{
			scheme: "mock",
			values: map[string]string{
				"mock://vault/item/field": "secret-value",
			},
		}
		Register(mock)

		val, err := Resolve(context.Background(), "mock://vault/item/field")
		if err != nil {
			t.Fatal(err)
		}
		if val != "secret-value" {
			t.Errorf("expected 'secret-value', got %q", val)
		}
	})
}

func TestResolve_UnsupportedScheme(t *testing.T) {
	withTestRegistry(func() {
		_, err := Resolve(context.Background(), "unknown://vault/item")
		if err == nil {
			t.Fatal("expected error for unsupported scheme")
		}

		var unsupported *UnsupportedSchemeError
		if !errors.As(err, &unsupported) {
			t.Errorf("expected UnsupportedSchemeError, got %T", err)
		}
	})
}

func TestResolve_InvalidReference(t *testing.T) {
	_, err := Resolve(context.Background(), "no-scheme-here")
	if err == nil {
		t.Fatal("expected error for invalid reference")
	}

	var invalid *InvalidReferenceError
	if !errors.As(err, &invalid) {
		t.Errorf("expected InvalidReferenceError, got %T", err)
	}
}

func TestIsReference(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"secretsmanager:///sluice/cert", true},
		{"ssm:///sluice/key", true},
		{"./data/certificate.pem", false},
		{"/etc/pki/client.pem", false},
		{"https://example.com/cert.pem", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsReference(tt.in); got != tt.want {
			t.Errorf("IsReference(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStage_PlainPathPassesThrough(t *testing.T) {
	dir := t.TempDir()

	got, err := Stage(context.Background(), "./data/certificate.pem", dir, "certificate.pem")
	if err != nil {
		t.Fatal(err)
	}
	if got != "./data/certificate.pem" {
		t.Errorf("Stage() = %q, want path unchanged", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected nothing written, found %d entries", len(entries))
	}
}

func TestStage_WritesResolvedReference(t *testing.T) {
	withTestRegistry(func() {
		pem := "-----BEGIN CERTIFICATE-----\nMIIB\n-----END CERTIFICATE-----"
		Register(&mockResolver{
			scheme: "mock",
			values: map[string]string{"mock://cert": pem},
		})

		dir := t.TempDir()
		got, err := Stage(context.Background(), "mock://cert", dir, "certificate.pem")
		if err != nil {
			t.Fatal(err)
		}
		if got != filepath.Join(dir, "certificate.pem") {
			t.Errorf("Stage() = %q", got)
		}

		data, err := os.ReadFile(got)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != pem+"\n" {
			t.Errorf("content = %q", data)
		}

		info, err := os.Stat(got)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("mode = %o, want 0600", perm)
		}
	})
}

func TestStage_ResolveError(t *testing.T) {
	withTestRegistry(func() {
		Register(&mockResolver{scheme: "mock", values: map[string]string{}})

		_, err := Stage(context.Background(), "mock://missing", t.TempDir(), "key.pem")
		var be *BackendError
		if !errors.As(err, &be) {
			t.Fatalf("expected BackendError, got %T: %v", err, err)
		}
	})
}
