package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/omenmarkets/omen_api/dto"
	"github.com/omenmarkets/omen_api/model"
	"github.com/omenmarkets/omen_api/shared"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		host := envOr("DB_HOST", "localhost")
		port := envOr("DB_PORT", "5432")
		user := envOr("DB_USER", "postgres")
		password := envOr("DB_PASSWORD", "postgres")
		dbname := envOr("DB_NAME", "omen_api")
		sslmode := envOr("DB_SSLMODE", "disable")

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			host, user, password, dbname, port, sslmode)
	}

	return ds.DefaultService.Configure(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (ds *PostgresService) Start() (err error) {
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				if pingErr := sqlDB.Ping(); pingErr == nil {
					break
				} else {
					err = pingErr
				}
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.WithError(err).Errorf("Failed to connect to database after %d attempts", maxRetries)
			return err
		}

		log.WithError(err).Warnf("Database connection failed, retrying in %v", retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	err = ds.db.AutoMigrate(
		&model.User{},
		&model.Event{},
		&model.Outcome{},
		&model.Position{},
		&model.MediaAsset{},
	)
	if err != nil {
		log.WithError(err).Error("Failed to migrate database")
		return err
	}

	log.Info("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	default:
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable
			errorType = "DATABASE_CONNECTION_ERROR"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return shared.NewAppError(statusCode, err, errorType)
}

// ==================== USER METHODS ====================

func (ds *PostgresService) GetUser(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *PostgresService) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertUserByEmail returns the existing user for the email or creates a
// fresh one with the default role. Called on every passwordless login.
func (ds *PostgresService) UpsertUserByEmail(email string) (*model.User, error) {
	user, err := ds.GetUserByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ds.HandleError(err)
	}

	id, _ := uuid.NewV7()
	user = &model.User{
		ID:        id.String(),
		Email:     email,
		Role:      shared.RoleUser,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := ds.db.Create(user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return user, nil
}

func (ds *PostgresService) UpdateLastLogin(userID, ip string) error {
	now := time.Now()
	return ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"last_login_at": &now,
		"last_login_ip": ip,
		"updated_at":    now,
	}).Error
}

// ==================== EVENT METHODS ====================

func (ds *PostgresService) CreateEvent(event *model.Event) (*model.Event, error) {
	if event.ID == "" {
		id, _ := uuid.NewV7()
		event.ID = id.String()
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	for i := range event.Outcomes {
		if event.Outcomes[i].ID == "" {
			id, _ := uuid.NewV7()
			event.Outcomes[i].ID = id.String()
		}
		event.Outcomes[i].EventID = event.ID
		event.Outcomes[i].CreatedAt = event.CreatedAt
		event.Outcomes[i].UpdatedAt = event.UpdatedAt
	}

	if err := ds.db.Create(event).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return event, nil
}

func (ds *PostgresService) GetEvent(id string) (*model.Event, error) {
	var event model.Event
	if err := ds.db.Preload("Outcomes").Where("id = ?", id).First(&event).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &event, nil
}

func (ds *PostgresService) GetEventBySlug(slug string) (*model.Event, error) {
	var event model.Event
	if err := ds.db.Preload("Outcomes").Where("slug = ?", slug).First(&event).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &event, nil
}

func (ds *PostgresService) ListEvents(req dto.ListEventsQuery) ([]model.Event, int64, error) {
	var events []model.Event
	var total int64

	query := ds.db.Model(&model.Event{})
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Search != "" {
		query = query.Where("title ILIKE ?", "%"+req.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Preload("Outcomes").
		Order("closes_at ASC").
		Limit(req.Limit).
		Offset(offset).
		Find(&events).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}

	return events, total, nil
}

func (ds *PostgresService) UpdateEvent(event *model.Event) error {
	event.UpdatedAt = time.Now()
	if err := ds.db.Save(event).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) DeleteEvent(id string) error {
	return ds.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&model.Outcome{}).Error; err != nil {
			return ds.HandleError(err)
		}
		if err := tx.Where("id = ?", id).Delete(&model.Event{}).Error; err != nil {
			return ds.HandleError(err)
		}
		return nil
	})
}

// ==================== OUTCOME METHODS ====================

func (ds *PostgresService) GetOutcome(id string) (*model.Outcome, error) {
	var outcome model.Outcome
	if err := ds.db.Where("id = ?", id).First(&outcome).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &outcome, nil
}

func (ds *PostgresService) CreateOutcome(outcome *model.Outcome) (*model.Outcome, error) {
	if outcome.ID == "" {
		id, _ := uuid.NewV7()
		outcome.ID = id.String()
	}
	outcome.CreatedAt = time.Now()
	outcome.UpdatedAt = time.Now()

	if err := ds.db.Create(outcome).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return outcome, nil
}

func (ds *PostgresService) UpdateOutcome(outcome *model.Outcome) error {
	outcome.UpdatedAt = time.Now()
	if err := ds.db.Save(outcome).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) DeleteOutcome(id string) error {
	if err := ds.db.Where("id = ?", id).Delete(&model.Outcome{}).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

// ==================== POSITION METHODS ====================

func (ds *PostgresService) CreatePosition(position *model.Position) (*model.Position, error) {
	if position.ID == "" {
		id, _ := uuid.NewV7()
		position.ID = id.String()
	}
	position.CreatedAt = time.Now()

	if err := ds.db.Create(position).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return position, nil
}

func (ds *PostgresService) GetUserPositions(userID string) ([]model.Position, error) {
	var positions []model.Position
	if err := ds.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&positions).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return positions, nil
}

// ==================== MEDIA ASSET METHODS ====================

func (ds *PostgresService) CreateMediaAsset(asset *model.MediaAsset) error {
	if asset.ID == "" {
		id, _ := uuid.NewV7()
		asset.ID = id.String()
	}
	asset.CreatedAt = time.Now()
	asset.UpdatedAt = time.Now()

	if err := ds.db.Create(asset).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) GetMediaAsset(id string) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	if err := ds.db.Where("id = ?", id).First(&asset).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &asset, nil
}

func (ds *PostgresService) GetEventMediaAssets(eventID string) ([]model.MediaAsset, error) {
	var assets []model.MediaAsset
	if err := ds.db.Where("event_id = ?", eventID).Find(&assets).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return assets, nil
}

func (ds *PostgresService) DeleteMediaAsset(id string) error {
	if err := ds.db.Where("id = ?", id).Delete(&model.MediaAsset{}).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}
