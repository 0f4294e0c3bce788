package config

import "testing"

func TestValidateDriverSelection(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite ok", Config{Environment: EnvDevelopment, DBDriver: "sqlite", SQLitePath: "x.db"}, false},
		{"sqlite missing path", Config{Environment: EnvDevelopment, DBDriver: "sqlite"}, true},
		{"postgres ok", Config{Environment: EnvDevelopment, DBDriver: "postgres", PostgresDSN: "postgres://x"}, false},
		{"postgres missing dsn", Config{Environment: EnvDevelopment, DBDriver: "postgres"}, true},
		{"unknown driver", Config{Environment: EnvDevelopment, DBDriver: "oracle"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestProductionRequiresSecrets(t *testing.T) {
	base := Config{Environment: EnvProduction, DBDriver: "sqlite", SQLitePath: "x.db"}

	if err := base.Validate(); err == nil {
		t.Fatalf("production without encryption key must fail validation")
	}

	withKey := base
	withKey.EncryptionKey = "deadbeef"
	if err := withKey.Validate(); err == nil {
		t.Fatalf("production without JWT secret must fail validation")
	}

	full := withKey
	full.JWTSecret = "s3cret"
	if err := full.Validate(); err != nil {
		t.Fatalf("fully configured production should validate: %v", err)
	}

	// Outside production the same config is only a warning at startup.
	dev := Config{Environment: EnvDevelopment, DBDriver: "sqlite", SQLitePath: "x.db"}
	if err := dev.Validate(); err != nil {
		t.Fatalf("development without secrets should validate: %v", err)
	}
}
