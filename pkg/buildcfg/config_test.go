package buildcfg

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProject(t *testing.T, dir string) string {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "main.c"), []byte("int main(){return 0;}\n"), 0o644); err != nil {
		t.Fatalf("write main.c: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "util.c"), []byte("void util(){}\n"), 0o644); err != nil {
		t.Fatalf("write util.c: %v", err)
	}

	configPath := filepath.Join(dir, "proj.buildus")
	contents := "project: myapp\n" +
		"compile:\n" +
		" - main: main.c\n" +
		" - util: util.c\n" +
		"dependencies:\n" +
		" libraries:\n" +
		"  vars:\n" +
		"   - LIBVAR\n" +
		"  libs:\n" +
		"   - -lm\n" +
		" includes:\n" +
		"  vars:\n" +
		"   - INCVAR\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func TestYAMLSource_Load(t *testing.T) {
	dir := t.TempDir()
	configPath := writeProject(t, dir)

	cfg, err := YAMLSource{}.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProjectName != "myapp" {
		t.Errorf("ProjectName = %q, want %q", cfg.ProjectName, "myapp")
	}
	if len(cfg.Compile) != 2 {
		t.Fatalf("len(Compile) = %d, want 2", len(cfg.Compile))
	}
	if len(cfg.LibraryLibs) != 1 || cfg.LibraryLibs[0] != "-lm" {
		t.Errorf("LibraryLibs = %v, want [-lm]", cfg.LibraryLibs)
	}
}

func TestYAMLSource_Load_MissingCompileUnit_Error(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "proj.buildus")
	contents := "project: myapp\ncompile:\n - main: missing.c\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := YAMLSource{}.Load(configPath)
	if err == nil {
		t.Fatal("Load should fail when a compile unit's source is missing")
	}
}

func TestConfig_Canonical_StableAcrossLoads(t *testing.T) {
	dir := t.TempDir()
	configPath := writeProject(t, dir)

	c1, err := YAMLSource{}.Load(configPath)
	if err != nil {
		t.Fatalf("Load 1: %v", err)
	}
	c2, err := YAMLSource{}.Load(configPath)
	if err != nil {
		t.Fatalf("Load 2: %v", err)
	}
	if string(c1.Canonical()) != string(c2.Canonical()) {
		t.Error("Canonical() is not stable across identical loads")
	}
}

func TestConfig_Canonical_ChangesWhenVarsAppended(t *testing.T) {
	dir := t.TempDir()
	configPath := writeProject(t, dir)

	before, err := YAMLSource{}.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	contents, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	updated := string(contents) + "   - OTHERVAR\n"
	if err := os.WriteFile(configPath, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	after, err := YAMLSource{}.Load(configPath)
	if err != nil {
		t.Fatalf("Load (after): %v", err)
	}

	if string(before.Canonical()) == string(after.Canonical()) {
		t.Error("Canonical() did not change after appending an include var")
	}
}
