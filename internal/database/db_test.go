package database

import (
	"testing"

	"propdesk-backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestOpenMemory_Migrates(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	for _, m := range []any{&models.User{}, &models.Deal{}, &models.DealExpense{}, &models.ActivityLog{}} {
		require.True(t, db.Migrator().HasTable(m))
	}
}

func TestOpenMemory_Isolated(t *testing.T) {
	a, err := OpenMemory()
	require.NoError(t, err)
	b, err := OpenMemory()
	require.NoError(t, err)

	require.NoError(t, a.Create(&models.User{Name: "a", Email: "a@example.com", PasswordHash: "x", Role: models.RoleStaff}).Error)

	var count int64
	require.NoError(t, b.Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "", "")
	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, logger.Silent, parseLogLevel("silent"))
	require.Equal(t, logger.Info, parseLogLevel("info"))
	require.Equal(t, logger.Warn, parseLogLevel(""))
}
