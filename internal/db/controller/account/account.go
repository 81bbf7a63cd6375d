// Package account provides CRUD operations on the default users table.
package account

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/models"
)

const (
	nameQueryPattern = "user_name = ?"
)

var (
	// ErrAccountNotFound is returned when an account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountNameEmpty is returned when attempting to create/update an account with an empty name.
	ErrAccountNameEmpty = errors.New("account name cannot be empty")
	// ErrAccountAlreadyExists is returned when attempting to create an account that already exists.
	ErrAccountAlreadyExists = errors.New("account already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves an account by its name.
func Get(db *gorm.DB, name string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrAccountNameEmpty
	}

	var user models.User

	result := db.Where(nameQueryPattern, name).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

// GetAll retrieves all accounts ordered by name.
func GetAll(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var users []models.User

	result := db.Order("user_name").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

// Create adds an account with an already encoded password. An invalid
// password leaves the column NULL.
func Create(db *gorm.DB, name string, password sql.NullString) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrAccountNameEmpty
	}

	var existing models.User

	result := db.Where(nameQueryPattern, name).First(&existing)
	if result.Error == nil {
		return nil, ErrAccountAlreadyExists
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	user := &models.User{
		Name:     name,
		Password: password,
		Status:   sql.NullInt64{Valid: true},
	}

	result = db.Create(user)
	if result.Error != nil {
		return nil, result.Error
	}

	return user, nil
}

// SetStatus replaces the status bits of an account. NULL status means
// expired.
func SetStatus(db *gorm.DB, name string, status sql.NullInt64) (*models.User, error) {
	user, err := Get(db, name)
	if err != nil {
		return nil, err
	}

	// Update with a map writes NULL too, Save would skip the zero value.
	result := db.Model(user).Updates(map[string]any{"status": status})
	if result.Error != nil {
		return nil, result.Error
	}

	user.Status = status

	return user, nil
}

// SetPassword replaces the encoded password of an account.
func SetPassword(db *gorm.DB, name string, password sql.NullString) (*models.User, error) {
	user, err := Get(db, name)
	if err != nil {
		return nil, err
	}

	result := db.Model(user).Updates(map[string]any{"user_password": password})
	if result.Error != nil {
		return nil, result.Error
	}

	user.Password = password

	return user, nil
}

// DeleteByName deletes an account by name.
func DeleteByName(db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrAccountNameEmpty
	}

	result := db.Where(nameQueryPattern, name).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}
