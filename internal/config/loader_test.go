package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db", "equipment.db")
	p := writeConfig(t, "jwt:\n  secret_key: s3cret\nadmin:\n  password: pw\ndatabase:\n  path: "+dbPath+"\n")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dataset.RetentionCap != 5 {
		t.Fatalf("retention cap = %d, want 5", cfg.Dataset.RetentionCap)
	}
	if cfg.Server.Port != 18080 || cfg.JWT.Algorithm != "HS256" {
		t.Fatalf("unexpected defaults: %+v", cfg.Server)
	}
	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Fatalf("database dir not created: %v", err)
	}
}

func TestLoadOverridesFromFileAndEnv(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "equipment.db")
	p := writeConfig(t, "jwt:\n  secret_key: s3cret\nadmin:\n  password: pw\ndataset:\n  retention_cap: 3\ndatabase:\n  path: "+dbPath+"\n")
	t.Setenv("EQUIP_SERVER_PORT", "9090")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dataset.RetentionCap != 3 {
		t.Fatalf("retention cap = %d, want 3", cfg.Dataset.RetentionCap)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d, want 9090 from env", cfg.Server.Port)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"missing secret": "admin:\n  password: pw\n",
		"zero cap":       "jwt:\n  secret_key: s\nadmin:\n  password: pw\ndataset:\n  retention_cap: 0\n",
		"kafka brokers":  "jwt:\n  secret_key: s\nadmin:\n  password: pw\nkafka:\n  enabled: true\n",
		"bold font only": "jwt:\n  secret_key: s\nadmin:\n  password: pw\nreport:\n  bold_font_path: b.ttf\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			body += "database:\n  path: " + filepath.Join(t.TempDir(), "x.db") + "\n"
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadKafkaBrokers(t *testing.T) {
	base := "jwt:\n  secret_key: s\nadmin:\n  password: pw\ndatabase:\n  path: " + filepath.Join(t.TempDir(), "x.db") + "\n"

	_, err := Load(writeConfig(t, base+"kafka:\n  enabled: true\n  brokers: []\n"))
	if err == nil || !strings.Contains(err.Error(), "kafka.brokers") {
		t.Fatalf("empty brokers: err = %v", err)
	}

	cfg, err := Load(writeConfig(t, base+"kafka:\n  enabled: true\n  brokers: [\"localhost:9092\"]\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Topic != "equipment.datasets" {
		t.Fatalf("kafka = %+v", cfg.Kafka)
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := WriteDefault(p); err != nil {
		t.Fatalf("write default: %v", err)
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "retention_cap: 5") {
		t.Fatalf("default yaml missing retention cap: %s", raw)
	}
}
