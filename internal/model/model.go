package model

import (
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "User":
		return db.AutoMigrate(User{})

	case "Note":
		return db.AutoMigrate(Note{})

	case "NoteGrant":
		return db.AutoMigrate(NoteGrant{})

	case "Notification":
		return db.AutoMigrate(Notification{})
	}
	return nil
}

// AutoMigrateAll 迁移全部表
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(User{}, Note{}, NoteGrant{}, Notification{})
}
