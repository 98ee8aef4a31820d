package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Tracker entry indexes for team-scoped date and timer lookups
		{"tracker_entries", "idx_tracker_entries_team_date", "team_id, date"},
		{"tracker_entries", "idx_tracker_entries_team_assigned_duration", "team_id, assigned_id, duration"},
		{"tracker_entries", "idx_tracker_entries_created_at", "created_at"},

		// Project indexes
		{"projects", "idx_projects_team_id", "team_id"},
		{"projects", "idx_projects_customer_id", "customer_id"},

		// Team members indexes
		{"team_members", "idx_team_members_team_id", "team_id"},
		{"team_members", "idx_team_members_user_id", "user_id"},

		// Team invite code index
		{"teams", "idx_teams_invite_code", "invite_code"},
	}

	for _, idx := range indexes {
		// Check if index already exists
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
