// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/freshloaf/storefront-backend/internal/config"
	"github.com/freshloaf/storefront-backend/internal/domain/order"
	"github.com/freshloaf/storefront-backend/internal/domain/user"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	config *config.Config
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, cfg *config.Config) *Migration {
	return &Migration{
		db:     db,
		config: cfg,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Dependency order: users before orders, orders before items
	models := []interface{}{
		&user.User{},
		&order.Order{},
		&order.Item{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_users_email_verified ON users(email_verified)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_placed ON orders(user_id, placed_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_placed_at ON orders(placed_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	// A development admin account. Production admins are created
	// through the setup-key flow.
	if m.config.IsDevelopment() {
		if err := m.seedAdminUser(); err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@freshloaf.local").First(&existing)
	if result.Error == nil {
		log.Println("⏭️ Admin user already exists")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), m.config.Security.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:         "admin@freshloaf.local",
		Password:      string(hashedPassword),
		DisplayName:   "Fresh Loaf Admin",
		IsAdmin:       true,
		EmailVerified: true,
	}

	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Println("✅ Created admin user: admin@freshloaf.local (password: admin123)")
	return nil
}
