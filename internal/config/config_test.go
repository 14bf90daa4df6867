package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func noEnv(string) (string, bool) { return "", false }

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv(EnvDBDriver, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlcipher" || !cfg.Database.Seed {
		t.Errorf("unexpected database defaults %+v", cfg.Database)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("unexpected server defaults %+v", cfg.Server)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `database:
  driver: sqlite
  path: /tmp/billing.db
  seed: false
server:
  read_timeout: 5s
report:
  top_clients: 3
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Seed {
		t.Errorf("unexpected database %+v", cfg.Database)
	}
	if cfg.Server.ReadTimeout != 5*time.Second || cfg.Server.Addr != ":8080" {
		t.Errorf("unexpected server %+v", cfg.Server)
	}
	if cfg.Report.TopClients != 3 || cfg.Report.RecentTasks != 10 {
		t.Errorf("unexpected report %+v", cfg.Report)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("database: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDBDriver: "mysql",
		EnvDBDSN:    "user:pass@tcp(localhost:3306)/billing",
		EnvHTTPAddr: "127.0.0.1:9000",
		EnvLogLevel: "  ",
	}
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if cfg.Database.Driver != "mysql" || cfg.Database.DSN == "" {
		t.Errorf("unexpected database %+v", cfg.Database)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("blank override should be ignored, got %q", cfg.Log.Level)
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyEnv(noEnv)
	cfg.Database.Driver = "postgres"
	cfg.Log.Format = "xml"
	cfg.Report.TopClients = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"database.driver", "log.format", "report.top_clients"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestValidate_MySQLNeedsDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Driver = "mysql"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "database.dsn") {
		t.Fatalf("expected dsn error, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Server.Addr = ":9999"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Server.Addr != ":9999" || loaded.Server.IdleTimeout != 60*time.Second {
		t.Errorf("unexpected server %+v", loaded.Server)
	}
}
