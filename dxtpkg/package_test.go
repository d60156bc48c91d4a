package dxtpkg

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir string, manifest Manifest) {
	t.Helper()
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestResolve_VariableExpansion(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, Manifest{
		Name:    "example",
		Version: "1.0.0",
		Server: ServerSpec{
			Type:       "python",
			EntryPoint: "main.py",
			MCPConfig: MCPConfig{
				Command: "${__dirname}/python3",
				Args:    []string{"${__dirname}/main.py", "--dir", "${user_config.allowed_dirs}"},
			},
		},
		UserConfig: map[string]UserConfigField{
			"allowed_dirs": {Required: true},
		},
	})

	inv, _, err := Resolve(context.Background(), dir, Options{
		UserConfig: map[string]any{"allowed_dirs": []any{"/a", "/b"}},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	abs, _ := filepath.Abs(dir)
	if inv.Command != abs+"/python3" {
		t.Errorf("unexpected command: %s", inv.Command)
	}
	want := []string{abs + "/main.py", "--dir", "/a", "/b"}
	if len(inv.Args) != len(want) {
		t.Fatalf("expected args %v, got %v", want, inv.Args)
	}
	for i := range want {
		if inv.Args[i] != want[i] {
			t.Errorf("arg %d: expected %q, got %q", i, want[i], inv.Args[i])
		}
	}
}

func TestResolve_MissingRequiredConfig(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, Manifest{
		Name:    "example",
		Version: "1.0.0",
		Server: ServerSpec{
			MCPConfig: MCPConfig{Command: "run"},
		},
		UserConfig: map[string]UserConfigField{
			"api_key": {Required: true},
		},
	})

	_, _, err := Resolve(context.Background(), dir, Options{})
	var target *MissingRequiredConfigError
	if err == nil {
		t.Fatal("expected missing-required-config error")
	}
	if !asMissingRequired(err, &target) {
		t.Fatalf("expected MissingRequiredConfigError, got %T: %v", err, err)
	}
}

func asMissingRequired(err error, target **MissingRequiredConfigError) bool {
	if e, ok := err.(*MissingRequiredConfigError); ok {
		*target = e
		return true
	}
	return false
}

func TestLoadManifest_MissingDirectory(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "does-not-exist"))
	if _, ok := err.(*DirectoryNotFoundError); !ok {
		t.Fatalf("expected DirectoryNotFoundError, got %T: %v", err, err)
	}
}

func TestLoadManifest_MissingManifest(t *testing.T) {
	_, err := LoadManifest(t.TempDir())
	if err != ErrManifestMissing {
		t.Fatalf("expected ErrManifestMissing, got %v", err)
	}
}
