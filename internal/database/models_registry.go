package database

import "truthfeed/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM
// models, parents before children.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.AdminUser{},
		&models.StudyUISettings{},
		&models.StudyBasicSettings{},
		&models.StudyAdvancedSettings{},
		&models.StudyPagesSettings{},
		&models.Study{},
		&models.Source{},
		&models.Participant{},
		&models.Post{},
		&models.Comment{},
		&models.PostInteraction{},
		&models.CommentInteraction{},
	}
}
