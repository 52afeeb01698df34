package user

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"camerpulse/internal/common"
	"camerpulse/internal/dbsql"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, func() { db.Close() }
}

func TestProfileRepository_GetProfile(t *testing.T) {
	query := regexp.QuoteMeta("SELECT * FROM `profiles` WHERE user_id = ?")

	tests := []struct {
		name      string
		mockSetup func(sqlmock.Sqlmock)
		wantName  string
		wantErr   error
		anyErr    bool
	}{
		{
			name: "found",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).
					WillReturnRows(sqlmock.NewRows([]string{"user_id", "display_name", "avatar_url"}).
						AddRow("user-1", "Amina", ""))
			},
			wantName: "Amina",
		},
		{
			name: "missing",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
			},
			wantErr: common.ErrNotFound,
		},
		{
			name: "database error",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WillReturnError(errors.New("connection reset"))
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()
			tt.mockSetup(mock)

			profile, err := NewProfileRepository(db).GetProfile(context.Background(), "user-1")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantName, profile.DisplayName)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProfileRepository_UpsertProfile(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `profiles`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := NewProfileRepository(db).UpsertProfile(context.Background(), &dbsql.Profile{UserID: "user-1", DisplayName: "Amina"})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
