package bot

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  operators: [100, 200]
database:
  host: db.local
  port: "5432"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.CoreConfig().Telegram.Token; got != "123:abc" {
		t.Errorf("token = %q", got)
	}
	if !cfg.CoreConfig().IsOperator(200) {
		t.Error("operator 200 not recognized")
	}
	if !cfg.Database.Enabled() {
		t.Error("database should be enabled")
	}
	if len(cfg.Warnings()) != 0 {
		t.Errorf("unexpected warnings: %v", cfg.Warnings())
	}
}

func TestLoadConfigWarnsWithoutOperatorsAndDB(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Warnings()) != 2 {
		t.Errorf("warnings = %v, want operator and database warnings", cfg.Warnings())
	}
}

func TestLoadConfigRequiresToken(t *testing.T) {
	path := writeConfig(t, "telegram: {}\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig accepted empty token")
	}
}
