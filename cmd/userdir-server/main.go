package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/userdir/userdir/internal/config"
	"github.com/userdir/userdir/internal/directory"
)

// AppState holds all application services
type AppState struct {
	Directory directory.DirectoryManager
	DB        *bun.DB
	Logger    *zap.Logger
}

func main() {
	// Load configuration
	config.Load()

	// Initialize logger with config
	logger := initLogger()

	// Initialize application state
	as, err := newAppState(logger)
	if err != nil {
		logger.Fatal("Failed to initialize application state", zap.Error(err))
	}

	// Create HTTP server
	router := setupRouter(as)

	addr := fmt.Sprintf("%s:%d", config.Http().Host, config.Http().Port)

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Setup graceful shutdown
	done := setupSignalHandler(as, server, logger)

	// Start server
	logger.Info("Starting userdir server", zap.String("address", addr))

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	<-done
	logger.Info("Server shutdown complete")
}

// newAppState creates and initializes the application state
func newAppState(logger *zap.Logger) (*AppState, error) {
	pgConfig := config.Postgres()

	logger.Info("Database configuration",
		zap.String("host", pgConfig.Host),
		zap.Int("port", pgConfig.Port),
		zap.String("database", pgConfig.Database),
		zap.String("user", pgConfig.User))

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(pgConfig.DSN())))
	sqldb.SetMaxOpenConns(pgConfig.MaxOpenConnections)

	db := bun.NewDB(sqldb, pgdialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := directory.NewPostgresStore(db)

	if err := directory.CreateTables(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	if err := directory.CreateIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	if err := directory.SeedGroups(ctx, db, seedGroupsFromConfig()); err != nil {
		return nil, fmt.Errorf("failed to seed groups: %w", err)
	}

	service := directory.NewService(store, store, store, directory.NewPayloadValidator())

	return &AppState{
		Directory: service,
		DB:        db,
		Logger:    logger,
	}, nil
}

// seedGroupsFromConfig converts configured seed groups into group records
func seedGroupsFromConfig() []*directory.Group {
	seeds := config.Directory().SeedGroups
	groups := make([]*directory.Group, 0, len(seeds))
	for _, seed := range seeds {
		groups = append(groups, &directory.Group{
			ID:          seed.ID,
			Name:        seed.Name,
			Description: seed.Description,
			CreatedAt:   time.Now(),
		})
	}
	return groups
}

func initLogger() *zap.Logger {
	logConfig := config.Logger()

	var zapConfig zap.Config
	if logConfig.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Set log level
	switch logConfig.Level {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapConfig.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}

func setupRouter(as *AppState) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Add CORS middleware
	router.Use(cors.Default())

	// Add logging middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health endpoint
	router.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()

		if as.DB != nil {
			if err := as.DB.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":    "unhealthy",
					"timestamp": time.Now().Format(time.RFC3339),
					"error":     err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	v1 := router.Group("/v1")
	{
		// User Management
		users := v1.Group("/users")
		{
			users.GET("/", listUsers(as))
			users.POST("/", createUser(as))
			users.GET("/:userId", getUser(as))
			users.PUT("/:userId", updateUser(as))
			users.DELETE("/:userId", deleteUser(as))

			// Group Membership
			users.POST("/:userId/groups/:groupId", addUserGroup(as))
			users.DELETE("/:userId/groups/:groupId", removeUserGroup(as))
		}

		// Group Lookups (read-only)
		groups := v1.Group("/groups")
		{
			groups.GET("/", listGroups(as))
			groups.GET("/:groupId", getGroup(as))
		}
	}

	return router
}

func setupSignalHandler(as *AppState, server *http.Server, logger *zap.Logger) chan struct{} {
	done := make(chan struct{}, 1)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalCh

		logger.Info("Shutting down server...")

		// Create context with timeout for graceful shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Shutdown server
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during server shutdown", zap.Error(err))
		}

		// Close database
		if as.DB != nil {
			if err := as.DB.Close(); err != nil {
				logger.Error("Error closing database", zap.Error(err))
			}
		}

		done <- struct{}{}
	}()

	return done
}

// listUsers handles GET /v1/users
func listUsers(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(directory.DefaultPage)))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
			return
		}
		count, err := strconv.Atoi(c.DefaultQuery("count", strconv.Itoa(directory.DefaultCount)))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be an integer"})
			return
		}

		criteria := &directory.ListCriteria{
			Page:   page,
			Count:  count,
			Sort:   parseOrderBy(c),
			Filter: map[string]interface{}{},
		}
		if enabled, ok := c.GetQuery("enabled"); ok {
			criteria.Filter["enabled"] = enabled
		}

		result, err := as.Directory.ListUsers(c.Request.Context(), criteria)
		if err != nil {
			writeDirectoryError(c, as.Logger, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// parseOrderBy reads the orderBy query parameter in both its forms:
// orderBy[field]=DIRECTION pairs, or one or more bare field names.
func parseOrderBy(c *gin.Context) []directory.SortField {
	if pairs := c.QueryMap("orderBy"); len(pairs) > 0 {
		sort := make([]directory.SortField, 0, len(pairs))
		for field, dir := range pairs {
			sort = append(sort, directory.SortField{
				Field:     field,
				Direction: directory.NormalizeDirection(dir),
			})
		}
		return sort
	}
	return directory.ParseSortParams(c.QueryArray("orderBy"))
}

// getUser handles GET /v1/users/:userId
func getUser(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := as.Directory.GetUser(c.Request.Context(), c.Param("userId"))
		if err != nil {
			writeDirectoryError(c, as.Logger, err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// createUser handles POST /v1/users
func createUser(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req directory.CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		user, err := as.Directory.CreateUser(c.Request.Context(), &req)
		if err != nil {
			writeDirectoryError(c, as.Logger, err)
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

// updateUser handles PUT /v1/users/:userId
func updateUser(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req directory.UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		user, err := as.Directory.UpdateUser(c.Request.Context(), c.Param("userId"), &req)
		if err != nil {
			writeDirectoryError(c, as.Logger, err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// deleteUser handles DELETE /v1/users/:userId
func deleteUser(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := as.Directory.DeleteUser(c.Request.Context(), c.Param("userId"))
		if err != nil {
			writeDirectoryError(c, as.Logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// addUserGroup handles POST /v1/users/:userId/groups/:groupId
func addUserGroup(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := as.Directory.AddUserToGroup(c.Request.Context(), c.Param("userId"), c.Param("groupId"))
		if err != nil {
			writeDirectoryError(c, as.Logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"added": true})
	}
}

// removeUserGroup handles DELETE /v1/users/:userId/groups/:groupId
func removeUserGroup(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := as.Directory.RemoveUserFromGroup(c.Request.Context(), c.Param("userId"), c.Param("groupId"))
		if err != nil {
			writeDirectoryError(c, as.Logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"removed": true})
	}
}

// listGroups handles GET /v1/groups
func listGroups(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		groups, err := as.Directory.ListGroups(c.Request.Context())
		if err != nil {
			writeDirectoryError(c, as.Logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"groups": groups})
	}
}

// getGroup handles GET /v1/groups/:groupId
func getGroup(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		group, err := as.Directory.GetGroup(c.Request.Context(), c.Param("groupId"))
		if err != nil {
			writeDirectoryError(c, as.Logger, err)
			return
		}

		c.JSON(http.StatusOK, group)
	}
}

// writeDirectoryError maps the typed service errors onto HTTP statuses:
// validation 400, not-found 404, membership conflict 409, anything else 500.
func writeDirectoryError(c *gin.Context, logger *zap.Logger, err error) {
	var verrs *directory.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": verrs.FieldMessages(),
		})
		return
	}

	var userErr *directory.UserError
	if errors.As(err, &userErr) && userErr.Type == directory.UserErrorTypeNotFound {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("User not found for identifier %q", userErr.UserID),
		})
		return
	}

	var groupErr *directory.GroupError
	if errors.As(err, &groupErr) && groupErr.Type == directory.GroupErrorTypeNotFound {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Group not found for identifier %q", groupErr.GroupID),
		})
		return
	}

	var memberErr *directory.MembershipError
	if errors.As(err, &memberErr) {
		c.JSON(http.StatusConflict, gin.H{"error": memberErr.Message})
		return
	}

	logger.Error("Directory operation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
