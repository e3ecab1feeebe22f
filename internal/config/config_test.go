package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	configViper := NewViper()
	configViper.Set("session.signing_secret", "test-secret")

	cfg, err := Load(configViper)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddress != "0.0.0.0:8080" {
		t.Fatalf("unexpected http address %q", cfg.HTTPAddress)
	}
	if cfg.DatabasePath != "midnite.db" {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath)
	}
	if cfg.SessionTTL != 60*24*time.Hour {
		t.Fatalf("unexpected session ttl %v", cfg.SessionTTL)
	}
	if cfg.StorageDriver != StorageDriverDisk {
		t.Fatalf("unexpected storage driver %q", cfg.StorageDriver)
	}
}

func TestLoadRequiresSigningSecret(t *testing.T) {
	configViper := NewViper()
	if _, err := Load(configViper); err == nil {
		t.Fatalf("expected error without signing secret")
	}
}

func TestLoadValidatesStorageDriver(t *testing.T) {
	testCases := []struct {
		name    string
		prepare func(set func(string, any))
		wantErr bool
	}{
		{
			name: "unknown driver",
			prepare: func(set func(string, any)) {
				set("storage.driver", "ftp")
			},
			wantErr: true,
		},
		{
			name: "s3 without bucket",
			prepare: func(set func(string, any)) {
				set("storage.driver", StorageDriverS3)
				set("storage.s3_region", "us-west-2")
			},
			wantErr: true,
		},
		{
			name: "s3 configured",
			prepare: func(set func(string, any)) {
				set("storage.driver", StorageDriverS3)
				set("storage.s3_bucket", "midnite-media")
				set("storage.s3_region", "us-west-2")
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			configViper := NewViper()
			configViper.Set("session.signing_secret", "test-secret")
			testCase.prepare(configViper.Set)

			_, err := Load(configViper)
			if testCase.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !testCase.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
