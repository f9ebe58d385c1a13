package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/foodshop/pkg/config"
	"github.com/example/foodshop/pkg/models"
	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// OpenMySQL opens a gorm connection with the configured pool limits.
func OpenMySQL(cfg *config.MySQLConfig) (*gorm.DB, error) {
	return OpenDSN(cfg.DSN(), cfg)
}

func OpenDSN(dsn string, cfg *config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	return db, nil
}

type MySQLRepository struct {
	db *gorm.DB
}

func NewMySQLRepository(db *gorm.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) AutoMigrate() error {
	if err := r.db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *MySQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *MySQLRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &product, nil
}

// ListProducts returns active products, optionally restricted to a category.
func (r *MySQLRepository) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	query := r.db.WithContext(ctx).Where("active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// SaveProducts inserts products or overwrites them by id.
func (r *MySQLRepository) SaveProducts(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&products).Error
}

// CreateOrder writes the order row and then its items in one transaction.
func (r *MySQLRepository) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to insert order items: %w", err)
		}
		return nil
	})
}

func (r *MySQLRepository) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

type OrderFilter struct {
	Status   models.OrderStatus
	UserID   string
	Page     int
	PageSize int
}

// ListOrders returns one page of orders, newest first, and the total count.
func (r *MySQLRepository) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	page, size := NormalizePage(f.Page, f.PageSize)
	if err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

type StatusUpdate struct {
	From           models.OrderStatus
	To             models.OrderStatus
	Carrier        string
	TrackingNumber string
	PaymentID      string
}

// UpdateOrderStatus moves an order from u.From to u.To. The update only
// applies while the row still holds u.From; otherwise ErrStatusConflict.
func (r *MySQLRepository) UpdateOrderStatus(ctx context.Context, id string, u StatusUpdate) error {
	updates := map[string]interface{}{
		"status":     u.To,
		"updated_at": time.Now(),
	}
	if u.Carrier != "" {
		updates["carrier"] = u.Carrier
	}
	if u.TrackingNumber != "" {
		updates["tracking_number"] = u.TrackingNumber
	}
	if u.PaymentID != "" {
		updates["payment_id"] = u.PaymentID
	}
	if u.To == models.OrderStatusShipped {
		updates["shipped_at"] = time.Now()
	}

	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, u.From).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// NormalizePage defaults to the first page of 20 and caps the size at 100.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// ErrorDetail extracts the driver error number and message from a
// persistence error, when the driver supplied them.
func ErrorDetail(err error) (code uint16, message string, ok bool) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number, myErr.Message, true
	}
	return 0, "", false
}
