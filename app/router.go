// Package app wires the HTTP routes to their handlers
package app

import (
	"bitwise74/drive-api/app/auth"
	"bitwise74/drive-api/app/file"
	"bitwise74/drive-api/app/folder"
	"bitwise74/drive-api/app/root"
	"bitwise74/drive-api/config"
	"bitwise74/drive-api/db"
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/internal/service"
	"bitwise74/drive-api/internal/storage"
	"bitwise74/drive-api/pkg/middleware"
	"bitwise74/drive-api/pkg/security"
	"context"
	"fmt"
	"net/http"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRouter connects to everything cfg points at and returns a ready router.
// Background jobs stop when ctx is cancelled.
func NewRouter(ctx context.Context, cfg *config.Config) (*gin.Engine, error) {
	if err := makeLogger(cfg.App); err != nil {
		return nil, err
	}

	d := &internal.Deps{
		Config: cfg,
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	d.DB = database

	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage, %w", cfg.Storage.Type, err)
	}
	d.Blobs = blobs

	var revoker security.Revoker
	if cfg.Redis.URL != "" {
		revoker, err = security.NewRedisRevoker(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis, %w", err)
		}
	} else {
		revoker = security.NewMemoryRevoker()
	}

	d.Sessions, err = security.NewSessions(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.Expire, revoker)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sessions, %w", err)
	}

	d.Accounts = service.NewAccounts(database, security.New(), cfg.Storage.MaxUsage)
	d.Tree = service.NewTree(database, blobs, cfg.Folders.StrictTrash)
	d.Uploader = service.NewUploader(database, blobs)

	// Trashed entities are kept for days, checking every hour is plenty
	if cfg.Trash.Retention > 0 {
		service.TrashCleanup(ctx, time.Hour, cfg.Trash.Retention, d.Tree)
	}

	zap.L().Info("Router ready",
		zap.String("database", cfg.Database.Driver),
		zap.String("storage", cfg.Storage.Type),
		zap.Bool("redis", cfg.Redis.URL != ""),
	)

	return Routes(ctx, d), nil
}

// Routes registers every endpoint on a new engine using the given deps
func Routes(ctx context.Context, d *internal.Deps) *gin.Engine {
	cfg := d.Config
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.Host.CORS,
			AllowMethods:     []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.Security.RateLimit,
			Burst:             cfg.Security.RateLimit * 2,
		}),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 8 << 20

	store := persist.NewMemoryStore(time.Minute)
	jwt := middleware.NewJWTMiddleware(d.Sessions, d.Accounts)
	smallBody := middleware.BodySizeLimiter(1 << 20)
	// Leave room for the multipart framing around the file
	uploadBody := middleware.BodySizeLimiter(cfg.Upload.MaxSize + 1<<20)

	// GET /			-> Service info
	router.GET("/", cache.CacheByRequestURI(store, 30*time.Second), root.Info)

	// GET /health		-> Used to check if the server is alive
	router.GET("/health", root.Health)
	router.HEAD("/health", root.Health)

	a := router.Group("/auth", smallBody)
	{
		// POST /auth/signup		-> Registers a new user
		a.POST("/signup", func(c *gin.Context) { auth.AuthSignup(c, d) })

		// POST /auth/login		-> Checks credentials and returns a bearer token
		a.POST("/login", func(c *gin.Context) { auth.AuthLogin(c, d) })

		// GET /auth/me			-> Returns the logged in user
		a.GET("/me", jwt, func(c *gin.Context) { auth.AuthMe(c, d) })

		// POST /auth/logout		-> Revokes the token used for the request
		a.POST("/logout", jwt, func(c *gin.Context) { auth.AuthLogout(c, d) })
	}

	ff := router.Group("/files", jwt)
	{
		// POST /files/upload		-> Uploads a new file, optionally into folder_id
		ff.POST("/upload", uploadBody, func(c *gin.Context) { file.FileUpload(c, d) })

		// GET /files/list		-> Lists the files inside ?folder_id=, root when missing
		ff.GET("/list", func(c *gin.Context) { file.FileList(c, d) })

		// GET /files/trash		-> Lists trashed files
		ff.GET("/trash", func(c *gin.Context) { file.FileTrashed(c, d) })

		// GET /files/starred		-> Lists starred files
		ff.GET("/starred", func(c *gin.Context) { file.FileStarred(c, d) })

		// GET /files/recent		-> Lists recently updated files
		ff.GET("/recent", func(c *gin.Context) { file.FileRecent(c, d) })

		// GET /files/usage		-> Returns the storage used by the user
		ff.GET("/usage", func(c *gin.Context) { file.FileUsage(c, d) })

		// GET /files/:id		-> Returns a file by its ID if the user owns it
		ff.GET("/:id", func(c *gin.Context) { file.FileFetch(c, d) })

		// GET /files/:id/download	-> Streams the file content
		ff.GET("/:id/download", func(c *gin.Context) { file.FileDownload(c, d) })

		// PUT /files/:id		-> Renames or moves a file
		ff.PUT("/:id", smallBody, func(c *gin.Context) { file.FileEdit(c, d) })

		// PUT /files/:id/star		-> Toggles the starred flag
		ff.PUT("/:id/star", func(c *gin.Context) { file.FileStar(c, d) })

		// PUT /files/:id/restore	-> Takes a file out of the trash
		ff.PUT("/:id/restore", func(c *gin.Context) { file.FileRestore(c, d) })

		// DELETE /files/:id		-> Moves a file to the trash
		ff.DELETE("/:id", func(c *gin.Context) { file.FileDelete(c, d) })

		// DELETE /files/:id/permanent	-> Deletes a file and its content for good
		ff.DELETE("/:id/permanent", func(c *gin.Context) { file.FileDeletePermanent(c, d) })
	}

	fo := router.Group("/folders", jwt, smallBody)
	{
		// POST /folders/create		-> Creates a folder, optionally inside parent_id
		fo.POST("/create", func(c *gin.Context) { folder.FolderCreate(c, d) })

		// GET /folders/list		-> Lists the folders inside ?parent_id=, root when missing
		fo.GET("/list", func(c *gin.Context) { folder.FolderList(c, d) })

		// GET /folders/trash		-> Lists trashed folders
		fo.GET("/trash", func(c *gin.Context) { folder.FolderTrashed(c, d) })

		// GET /folders/starred		-> Lists starred folders
		fo.GET("/starred", func(c *gin.Context) { folder.FolderStarred(c, d) })

		// GET /folders/recent		-> Lists recently updated folders
		fo.GET("/recent", func(c *gin.Context) { folder.FolderRecent(c, d) })

		// GET /folders/:id		-> Returns a folder by its ID if the user owns it
		fo.GET("/:id", func(c *gin.Context) { folder.FolderFetch(c, d) })

		// PUT /folders/:id		-> Renames or moves a folder
		fo.PUT("/:id", func(c *gin.Context) { folder.FolderEdit(c, d) })

		// PUT /folders/:id/star	-> Toggles the starred flag
		fo.PUT("/:id/star", func(c *gin.Context) { folder.FolderStar(c, d) })

		// PUT /folders/:id/restore	-> Takes a folder out of the trash
		fo.PUT("/:id/restore", func(c *gin.Context) { folder.FolderRestore(c, d) })

		// DELETE /folders/:id		-> Moves a folder to the trash
		fo.DELETE("/:id", func(c *gin.Context) { folder.FolderDelete(c, d) })

		// DELETE /folders/:id/permanent	-> Deletes a folder and everything inside it
		fo.DELETE("/:id/permanent", func(c *gin.Context) { folder.FolderDeletePermanent(c, d) })
	}

	return router
}
