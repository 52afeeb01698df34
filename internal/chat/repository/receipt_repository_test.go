package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camerpulse/internal/common"
)

func messageRow(id, conv, sender string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "conversation_id", "sender_id", "content", "message_type", "created_at"}).
		AddRow(id, conv, sender, "hi", "text", time.Now())
}

func TestReceiptRepository_MarkMessageRead(t *testing.T) {
	tests := []struct {
		name          string
		reader        string
		mockSetup     func(sqlmock.Sqlmock)
		expectWritten bool
		expectErr     error
		expectAnyErr  bool
	}{
		{
			name:   "first read writes a receipt",
			reader: "user-b",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages` WHERE id = ?")).
					WillReturnRows(messageRow("msg-1", "conv-1", "user-a"))
				mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `conversation_participants`")).
					WithArgs("conv-1", "user-b").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `message_read_status`")).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			expectWritten: true,
		},
		{
			name:   "repeat read is a no-op",
			reader: "user-b",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages` WHERE id = ?")).
					WillReturnRows(messageRow("msg-1", "conv-1", "user-a"))
				mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `conversation_participants`")).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `message_read_status`")).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
			expectWritten: false,
		},
		{
			name:   "sender never gets a receipt",
			reader: "user-a",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages` WHERE id = ?")).
					WillReturnRows(messageRow("msg-1", "conv-1", "user-a"))
				mock.ExpectCommit()
			},
			expectWritten: false,
		},
		{
			name:   "unknown message",
			reader: "user-b",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages` WHERE id = ?")).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectRollback()
			},
			expectErr: common.ErrNotFound,
		},
		{
			name:   "non participant",
			reader: "user-z",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages` WHERE id = ?")).
					WillReturnRows(messageRow("msg-1", "conv-1", "user-a"))
				mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `conversation_participants`")).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectRollback()
			},
			expectErr: common.ErrNotFound,
		},
		{
			name:   "insert failure",
			reader: "user-b",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `messages` WHERE id = ?")).
					WillReturnRows(messageRow("msg-1", "conv-1", "user-a"))
				mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `conversation_participants`")).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `message_read_status`")).
					WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			expectAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()
			tt.mockSetup(mock)

			repo := NewReceiptRepository(db)
			msg, written, err := repo.MarkMessageRead(context.Background(), "msg-1", tt.reader, time.Now())

			switch {
			case tt.expectErr != nil:
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, msg)
			case tt.expectAnyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, "conv-1", msg.ConversationID)
				assert.Equal(t, tt.expectWritten, written)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReceiptRepository_ReadMessageIDs(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `message_id` FROM `message_read_status`")).
		WithArgs("user-b", "m1", "m2", true).
		WillReturnRows(sqlmock.NewRows([]string{"message_id"}).AddRow("m2"))

	repo := NewReceiptRepository(db)
	read, err := repo.ReadMessageIDs(context.Background(), "user-b", []string{"m1", "m2"})

	require.NoError(t, err)
	assert.False(t, read["m1"])
	assert.True(t, read["m2"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepository_UnreadCount(t *testing.T) {
	t.Run("counts messages from others without a receipt", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()

		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `messages`.*NOT EXISTS").
			WithArgs("conv-1", "user-b", "user-b", true).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		repo := NewReceiptRepository(db)
		count, err := repo.UnreadCount(context.Background(), "conv-1", "user-b")

		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()

		mock.ExpectQuery("SELECT count").WillReturnError(assert.AnError)

		repo := NewReceiptRepository(db)
		count, err := repo.UnreadCount(context.Background(), "conv-1", "user-b")

		assert.Error(t, err)
		assert.Zero(t, count)
	})
}
