package db

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Database holds the database connection pool
type Database struct {
	Pool *pgxpool.Pool
	log  *zap.Logger
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewDatabase creates a new database connection with retry logic for
// serverless databases
func NewDatabase(log *zap.Logger) (*Database, error) {
	return NewDatabaseWithRetry(log, 5, time.Second)
}

// NewDatabaseWithRetry creates a new database connection with configurable
// retry logic
func NewDatabaseWithRetry(log *zap.Logger, maxRetries int, initialDelay time.Duration) (*Database, error) {
	// Prefer DATABASE_URL if provided (single DSN from the secret store)
	var poolConfig *pgxpool.Config
	var err error
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		poolConfig, err = pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
	} else {
		config := getConfigFromEnv(log)

		connStr := fmt.Sprintf(
			"host=%s port=%d user=%s dbname=%s sslmode=%s",
			config.Host, config.Port, config.User, config.DBName, config.SSLMode,
		)
		if config.Password != "" {
			connStr += fmt.Sprintf(" password=%s", config.Password)
		}

		poolConfig, err = pgxpool.ParseConfig(connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse database config: %w", err)
		}
	}

	poolConfig.MaxConns = 30
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Info("connecting to database",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.String("host", poolConfig.ConnConfig.Host),
			zap.Uint16("port", poolConfig.ConnConfig.Port),
		)

		pool, err = pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			lastErr = fmt.Errorf("failed to create connection pool: %w", err)
			log.Warn("failed to create pool", zap.Int("attempt", attempt), zap.Error(err))
			if attempt < maxRetries {
				time.Sleep(time.Duration(attempt-1) * initialDelay)
			}
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = pool.Ping(ctx)
		cancel()

		if err == nil {
			log.Info("database connection established", zap.Int("attempt", attempt))
			break
		}

		lastErr = fmt.Errorf("failed to ping database: %w", err)
		log.Warn("database ping failed", zap.Int("attempt", attempt), zap.Error(err))
		pool.Close()
		pool = nil

		if attempt < maxRetries {
			// Exponential backoff: 1s, 2s, 4s, 8s, 16s
			delay := initialDelay * time.Duration(1<<(attempt-1))
			time.Sleep(delay)
		}
	}

	if pool == nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, lastErr)
	}

	db := &Database{Pool: pool, log: log}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.InitSchema(ctx); err != nil {
		log.Warn("failed to initialize database schema", zap.Error(err))
		// Don't fail here - schema might be initialized later
	}

	return db, nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.log.Info("database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// InitSchema verifies and gently migrates the required schema
func (db *Database) InitSchema(ctx context.Context) error {
	// 1) Check required tables
	requiredTables := []string{
		"users", "enterprises", "enterprise_roles",
		"properties", "producer_properties",
		"orders", "addresses",
		"payments", "payment_methods",
		"shipments", "shipping_methods",
		"order_cycles", "order_cycle_enterprises",
	}
	for _, tableName := range requiredTables {
		query := `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public'
				AND table_name = $1
			);
		`
		var exists bool
		if err := db.Pool.QueryRow(ctx, query, tableName).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check table %s: %w", tableName, err)
		}
		if !exists {
			return fmt.Errorf("required table %s does not exist", tableName)
		}
	}

	// 2) Ensure enterprises.shop_trial_start_date exists (trial gating)
	var hasTrialStart bool
	if err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = 'enterprises' AND column_name = 'shop_trial_start_date'
		);
	`).Scan(&hasTrialStart); err != nil {
		return fmt.Errorf("failed to check enterprises.shop_trial_start_date: %w", err)
	}
	if !hasTrialStart {
		if _, err := db.Pool.Exec(ctx, `ALTER TABLE public.enterprises ADD COLUMN shop_trial_start_date TIMESTAMPTZ NULL;`); err != nil {
			return fmt.Errorf("failed to add enterprises.shop_trial_start_date: %w", err)
		}
		db.log.Info("added enterprises.shop_trial_start_date column")
	}

	// 3) Ensure enterprises.producer_profile_only exists
	var hasProfileOnly bool
	if err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = 'enterprises' AND column_name = 'producer_profile_only'
		);
	`).Scan(&hasProfileOnly); err != nil {
		return fmt.Errorf("failed to check enterprises.producer_profile_only: %w", err)
	}
	if !hasProfileOnly {
		if _, err := db.Pool.Exec(ctx, `ALTER TABLE public.enterprises ADD COLUMN producer_profile_only BOOLEAN NOT NULL DEFAULT FALSE;`); err != nil {
			return fmt.Errorf("failed to add enterprises.producer_profile_only: %w", err)
		}
		db.log.Info("added enterprises.producer_profile_only column")
	}

	// 4) Helpful secondary indexes for report scoping
	if _, err := db.Pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_orders_state_completed_at ON public.orders(state, completed_at);`); err != nil {
		return fmt.Errorf("failed to create idx_orders_state_completed_at: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_orders_distributor ON public.orders(distributor_id);`); err != nil {
		return fmt.Errorf("failed to create idx_orders_distributor: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_enterprise_roles_user ON public.enterprise_roles(user_id, enterprise_id);`); err != nil {
		return fmt.Errorf("failed to create idx_enterprise_roles_user: %w", err)
	}

	db.log.Info("database schema verified")
	return nil
}

// getConfigFromEnv reads database configuration from environment variables
func getConfigFromEnv(log *zap.Logger) Config {
	config := Config{
		Host:     getEnv("DB_HOST", "localhost"),
		User:     getEnv("DB_USER", "marketplace_admin"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "marketplace_db"),
		SSLMode:  getEnv("DB_SSLMODE", "prefer"),
	}

	portStr := getEnv("DB_PORT", "5432")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Warn("invalid DB_PORT value, using default 5432", zap.String("value", portStr))
		port = 5432
	}
	config.Port = port

	return config
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
