package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5432", Name: "hisab", User: "u", Password: "p", SSLMode: "disable", Timezone: "Asia/Dhaka"}
	want := "host=db user=u password=p dbname=hisab port=5432 sslmode=disable TimeZone=Asia/Dhaka"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		tz   string
		want string
	}{
		{"Asia/Dhaka", "Asia/Dhaka"},
		{"Not/AZone", "UTC"},
		{"", "UTC"},
	}
	for _, tt := range tests {
		t.Run(tt.tz, func(t *testing.T) {
			cfg := AppConfig{Timezone: tt.tz}
			if got := cfg.Location().String(); got != tt.want {
				t.Errorf("Location() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.App.Timezone == "" || cfg.App.Currency == "" {
		t.Fatalf("app defaults missing: %+v", cfg.App)
	}
	if cfg.Ledger.ImportLockTTL < time.Second {
		t.Errorf("import lock ttl = %v", cfg.Ledger.ImportLockTTL)
	}
	if cfg.Phone.Region == "" {
		t.Error("phone region default missing")
	}
}

func TestNewLoggerAndLogError(t *testing.T) {
	logger := NewLogger(&LogConfig{Level: "not-a-level"})
	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %s, want info", logger.GetLevel())
	}

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	LogError(logger, "ledger", "Record", "apply", map[string]string{"id": "1"}, errors.New("boom"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "boom" || entry["module"] != "ledger" || entry["funcName"] != "Record" {
		t.Errorf("entry = %v", entry)
	}
}
