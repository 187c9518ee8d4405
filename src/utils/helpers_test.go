package utils

import (
	"log"
	"testing"

	"github.com/SrZeh/get-useapp-sub002/src/db"
	"github.com/SrZeh/get-useapp-sub002/src/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening the test database", err)
	}
	inner, err := d.DB()
	if err != nil {
		log.Fatalf("Error accessing inner db instance: %s", err.Error())
	}
	inner.SetMaxOpenConns(1)
	if err := d.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.BookedDay{},
		&models.Reservation{},
		&models.Notification{},
		&models.NotificationCounter{},
	); err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	db.NewDB(d)
	return d
}

func seedUser(t *testing.T, d *gorm.DB, email string, acct *string) *models.User {
	t.Helper()
	user := models.User{Name: "Test User", Email: email, StripeAccountID: acct}
	if err := d.Create(&user).Error; err != nil {
		log.Fatalf("Could not create user due to error: %s", err.Error())
	}
	return &user
}

func seedItem(t *testing.T, d *gorm.DB, ownerId uint, rateCents int64, free bool) *models.Item {
	t.Helper()
	item := models.Item{
		OwnerID:        ownerId,
		Title:          "Cordless Drill",
		DailyRateCents: rateCents,
		IsFree:         free,
		Currency:       "brl",
	}
	if err := d.Create(&item).Error; err != nil {
		log.Fatalf("Could not create item due to error: %s", err.Error())
	}
	return &item
}
