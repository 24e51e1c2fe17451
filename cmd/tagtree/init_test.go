package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/tagtree/internal/config"
)

func TestInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates a loadable config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", config.DefaultConfigFile)
		out, _, err := runRoot(t, "init", "-o", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Created configuration file") {
			t.Errorf("unexpected output %q", out)
		}

		cf, err := config.LoadConfigFile(path)
		if err != nil {
			t.Fatalf("template does not load: %v", err)
		}
		if got := cf.GetSiteConfig("archiveofourown.org").Extractor; got != "ao3" {
			t.Errorf("ao3 site extractor = %q", got)
		}
		if got := cf.Defaults.Headers["Accept-Language"]; got != "en" {
			t.Errorf("default Accept-Language = %q", got)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm&0o077 != 0 {
			t.Errorf("config file permissions = %o, want owner only", perm)
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
		if err := os.WriteFile(path, []byte("keep"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, _, err := runRoot(t, "init", "-o", path); err == nil {
			t.Fatal("expected an error")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "keep" {
			t.Error("existing file was modified")
		}

		if _, _, err := runRoot(t, "init", "-o", path, "-f"); err != nil {
			t.Fatalf("force overwrite failed: %v", err)
		}
		data, err = os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "sites:") {
			t.Error("file was not overwritten with the template")
		}
	})
}
