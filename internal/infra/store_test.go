package infra

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ultraauth/auth-api/internal/config"
	"github.com/ultraauth/auth-api/internal/identity"
	"github.com/ultraauth/auth-api/internal/logging"
)

func TestOpenStore(t *testing.T) {
	sqliteFile := filepath.Join(t.TempDir(), "nested", "data", "auth.db")

	cases := []struct {
		name    string
		cfg     config.Config
		wantErr string
		check   func(t *testing.T, repo identity.Repository)
	}{
		{
			name: "memory",
			cfg:  config.Config{DBAdapter: config.AdapterMemory},
		},
		{
			name: "sqlite creates parent directory",
			cfg:  config.Config{DBAdapter: config.AdapterSQLite, SQLiteFile: sqliteFile},
			check: func(t *testing.T, repo identity.Repository) {
				if _, ok := repo.(*identity.SQLiteRepository); !ok {
					t.Fatalf("expected *identity.SQLiteRepository, got %T", repo)
				}
				if _, err := os.Stat(filepath.Dir(sqliteFile)); err != nil {
					t.Fatalf("sqlite directory not created: %v", err)
				}
			},
		},
		{
			name:    "unsupported adapter",
			cfg:     config.Config{DBAdapter: "mongodb"},
			wantErr: `unsupported DB_ADAPTER "mongodb"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			repo, closeFn, err := OpenStore(ctx, tc.cfg, logging.Discard())
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("open store: %v", err)
			}
			defer closeFn()

			if err := repo.Ping(ctx); err != nil {
				t.Fatalf("ping: %v", err)
			}
			if tc.check != nil {
				tc.check(t, repo)
			}
		})
	}
}
