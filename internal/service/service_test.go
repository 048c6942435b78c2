package service

import (
	"bitwise74/drive-api/config"
	"bitwise74/drive-api/db"
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/internal/storage"
	"bitwise74/drive-api/pkg/security"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	db       *gorm.DB
	fs       afero.Fs
	accounts *Accounts
	tree     *Tree
	uploader *Uploader
	clock    *clock
}

// clock advances by one second on every read so timestamps are ordered
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(time.Second)
	return c.t
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb, err := db.New(config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	fs := afero.NewMemMapFs()
	blobs := storage.NewLocalFs(fs)
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	tree := NewTree(gdb, blobs, false)
	tree.Now = clk.Now

	up := NewUploader(gdb, blobs)
	up.Now = clk.Now

	return &env{
		db: gdb,
		fs: fs,
		accounts: NewAccounts(gdb, &security.ArgonHash{
			Memory:      1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		}, 0),
		tree:     tree,
		uploader: up,
		clock:    clk,
	}
}

func (e *env) user(t *testing.T, email string) *model.User {
	t.Helper()

	u, err := e.accounts.Signup(context.Background(), email, "Test", "pw1")
	require.NoError(t, err)

	return u
}
