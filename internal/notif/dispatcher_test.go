package notif

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"camerpulse/internal/common"
	"camerpulse/internal/config"
	"camerpulse/internal/dbsql"
)

type mockPreferences struct{ mock.Mock }

func (m *mockPreferences) Get(ctx context.Context, userID string) (*dbsql.NotificationPreference, error) {
	args := m.Called(ctx, userID)
	if p := args.Get(0); p != nil {
		return p.(*dbsql.NotificationPreference), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPreferences) Save(ctx context.Context, pref *dbsql.NotificationPreference) error {
	return m.Called(ctx, pref).Error(0)
}

type mockDevices struct{ mock.Mock }

func (m *mockDevices) Register(ctx context.Context, userID, deviceToken, platform string) error {
	return m.Called(ctx, userID, deviceToken, platform).Error(0)
}

func (m *mockDevices) ActiveByUserID(ctx context.Context, userID string) ([]*dbsql.Device, error) {
	args := m.Called(ctx, userID)
	if d := args.Get(0); d != nil {
		return d.([]*dbsql.Device), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDevices) Deactivate(ctx context.Context, deviceToken string) error {
	return m.Called(ctx, deviceToken).Error(0)
}

type mockLogs struct{ mock.Mock }

func (m *mockLogs) Create(ctx context.Context, n *dbsql.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *mockLogs) ByUserID(ctx context.Context, userID string, limit, offset int) ([]*dbsql.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	if rows := args.Get(0); rows != nil {
		return rows.([]*dbsql.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockEmail struct{ mock.Mock }

func (m *mockEmail) SendEmail(ctx context.Context, msg EmailMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type mockPush struct{ mock.Mock }

func (m *mockPush) SendPush(ctx context.Context, userID string, msg PushMessage) (int, error) {
	args := m.Called(ctx, userID, msg)
	return args.Int(0), args.Error(1)
}

type mockToaster struct{ mock.Mock }

func (m *mockToaster) Toast(ctx context.Context, userID, message string) {
	m.Called(ctx, userID, message)
}

type dispatcherMocks struct {
	prefs   *mockPreferences
	devices *mockDevices
	logs    *mockLogs
	email   *mockEmail
	push    *mockPush
	toaster *mockToaster
}

func newTestDispatcher() (*Dispatcher, *dispatcherMocks) {
	m := &dispatcherMocks{
		prefs:   &mockPreferences{},
		devices: &mockDevices{},
		logs:    &mockLogs{},
		email:   &mockEmail{},
		push:    &mockPush{},
		toaster: &mockToaster{},
	}
	cfg := &config.Config{Notification: config.NotificationConfig{AppURL: "https://camerpulse.test/"}}
	d := NewDispatcher(cfg, m.prefs, m.devices, m.logs, m.email, m.push, m.toaster, nil)
	d.newID = func() string { return "notif-1" }
	return d, m
}

func (m *dispatcherMocks) assertAll(t *testing.T) {
	m.prefs.AssertExpectations(t)
	m.devices.AssertExpectations(t)
	m.logs.AssertExpectations(t)
	m.email.AssertExpectations(t)
	m.push.AssertExpectations(t)
	m.toaster.AssertExpectations(t)
}

func loggedStatus(status common.NotificationStatus) any {
	return mock.MatchedBy(func(n *dbsql.Notification) bool {
		return n.ID == "notif-1" && n.Status == string(status)
	})
}

func claimEvent(channel common.DeliveryChannel) common.NotificationEvent {
	return common.NotificationEvent{
		Category:       common.CategoryClaimStatusChange,
		Channel:        channel,
		RecipientID:    "user-1",
		RecipientEmail: "amina@example.com",
		EntityName:     "Douala Water Board",
		Status:         "approved",
		Link:           "/claims/42",
	}
}

func TestDispatcher_SendNotification(t *testing.T) {
	ctx := context.Background()

	pushOff := dbsql.DefaultPreference("user-1")
	pushOff.PushEnabled = false
	claimsOff := dbsql.DefaultPreference("user-1")
	claimsOff.ClaimUpdates = false

	tests := []struct {
		name       string
		event      common.NotificationEvent
		mockSetup  func(m *dispatcherMocks)
		wantStatus common.NotificationStatus
		wantReason string
		wantErr    error
	}{
		{
			name:  "email sent",
			event: claimEvent(common.ChannelEmail),
			mockSetup: func(m *dispatcherMocks) {
				m.prefs.On("Get", ctx, "user-1").Return(dbsql.DefaultPreference("user-1"), nil)
				m.email.On("SendEmail", ctx, mock.MatchedBy(func(msg EmailMessage) bool {
					return msg.To == "amina@example.com" &&
						msg.Subject == "Claim update: Douala Water Board" &&
						!msg.HighPriority &&
						len(msg.HTML) > 0
				})).Return(nil)
				m.logs.On("Create", ctx, loggedStatus(common.StatusSent)).Return(nil)
			},
			wantStatus: common.StatusSent,
		},
		{
			name: "high priority push sent with absolute link",
			event: func() common.NotificationEvent {
				ev := claimEvent(common.ChannelPush)
				ev.Priority = common.PriorityHigh
				ev.Metadata = common.NotificationMetadata{"claim_id": "42"}
				return ev
			}(),
			mockSetup: func(m *dispatcherMocks) {
				m.prefs.On("Get", ctx, "user-1").Return(dbsql.DefaultPreference("user-1"), nil)
				m.push.On("SendPush", ctx, "user-1", mock.MatchedBy(func(msg PushMessage) bool {
					return msg.HighPriority &&
						msg.Body == "Douala Water Board is now approved" &&
						msg.Data["link"] == "https://camerpulse.test/claims/42" &&
						msg.Data["claim_id"] == "42" &&
						msg.Data["category"] == string(common.CategoryClaimStatusChange)
				})).Return(2, nil)
				m.logs.On("Create", ctx, loggedStatus(common.StatusSent)).Return(nil)
			},
			wantStatus: common.StatusSent,
		},
		{
			name:  "disabled category is skipped without delivery",
			event: claimEvent(common.ChannelEmail),
			mockSetup: func(m *dispatcherMocks) {
				m.prefs.On("Get", ctx, "user-1").Return(claimsOff, nil)
				m.logs.On("Create", ctx, loggedStatus(common.StatusSkipped)).Return(nil)
			},
			wantStatus: common.StatusSkipped,
			wantReason: "category disabled",
		},
		{
			name:  "disabled channel is skipped without delivery",
			event: claimEvent(common.ChannelPush),
			mockSetup: func(m *dispatcherMocks) {
				m.prefs.On("Get", ctx, "user-1").Return(pushOff, nil)
				m.logs.On("Create", ctx, loggedStatus(common.StatusSkipped)).Return(nil)
			},
			wantStatus: common.StatusSkipped,
			wantReason: "channel disabled",
		},
		{
			name:  "recipient without devices is skipped",
			event: claimEvent(common.ChannelPush),
			mockSetup: func(m *dispatcherMocks) {
				m.prefs.On("Get", ctx, "user-1").Return(dbsql.DefaultPreference("user-1"), nil)
				m.push.On("SendPush", ctx, "user-1", mock.Anything).Return(0, ErrNoDevices)
				m.logs.On("Create", ctx, loggedStatus(common.StatusSkipped)).Return(nil)
			},
			wantStatus: common.StatusSkipped,
			wantReason: "no active devices",
		},
		{
			name:  "provider failure toasts the recipient",
			event: claimEvent(common.ChannelEmail),
			mockSetup: func(m *dispatcherMocks) {
				m.prefs.On("Get", ctx, "user-1").Return(dbsql.DefaultPreference("user-1"), nil)
				m.email.On("SendEmail", ctx, mock.Anything).Return(errors.New("resend: 502"))
				m.logs.On("Create", ctx, loggedStatus(common.StatusFailed)).Return(nil)
				m.toaster.On("Toast", ctx, "user-1", deliveryFailedToast).Return()
			},
			wantStatus: common.StatusFailed,
			wantErr:    common.ErrTransient,
		},
		{
			name:  "preference lookup failure",
			event: claimEvent(common.ChannelPush),
			mockSetup: func(m *dispatcherMocks) {
				m.prefs.On("Get", ctx, "user-1").Return(nil, errors.New("connection refused"))
				m.logs.On("Create", ctx, loggedStatus(common.StatusFailed)).Return(nil)
				m.toaster.On("Toast", ctx, "user-1", deliveryFailedToast).Return()
			},
			wantStatus: common.StatusFailed,
			wantErr:    common.ErrTransient,
		},
		{
			name:  "log write failure does not fail delivery",
			event: claimEvent(common.ChannelEmail),
			mockSetup: func(m *dispatcherMocks) {
				m.prefs.On("Get", ctx, "user-1").Return(dbsql.DefaultPreference("user-1"), nil)
				m.email.On("SendEmail", ctx, mock.Anything).Return(nil)
				m.logs.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))
			},
			wantStatus: common.StatusSent,
		},
		{
			name: "email channel requires an address",
			event: func() common.NotificationEvent {
				ev := claimEvent(common.ChannelEmail)
				ev.RecipientEmail = ""
				return ev
			}(),
			mockSetup:  func(m *dispatcherMocks) {},
			wantStatus: common.StatusFailed,
			wantErr:    common.ErrValidation,
		},
		{
			name: "unknown category",
			event: func() common.NotificationEvent {
				ev := claimEvent(common.ChannelPush)
				ev.Category = "promo"
				return ev
			}(),
			mockSetup:  func(m *dispatcherMocks) {},
			wantStatus: common.StatusFailed,
			wantErr:    common.ErrValidation,
		},
		{
			name: "unknown priority",
			event: func() common.NotificationEvent {
				ev := claimEvent(common.ChannelPush)
				ev.Priority = "urgent"
				return ev
			}(),
			mockSetup:  func(m *dispatcherMocks) {},
			wantStatus: common.StatusFailed,
			wantErr:    common.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, m := newTestDispatcher()
			tt.mockSetup(m)

			result, err := d.SendNotification(ctx, tt.event)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, "notif-1", result.ID)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.event.Channel, result.Channel)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, result.Reason)
			}
			m.assertAll(t)
		})
	}
}

func TestDispatcher_MissingSenderSkips(t *testing.T) {
	ctx := context.Background()
	m := &dispatcherMocks{prefs: &mockPreferences{}, logs: &mockLogs{}}
	d := NewDispatcher(&config.Config{}, m.prefs, nil, m.logs, nil, nil, nil, nil)

	m.prefs.On("Get", ctx, "user-1").Return(dbsql.DefaultPreference("user-1"), nil).Twice()
	m.logs.On("Create", ctx, mock.Anything).Return(nil).Twice()

	result, err := d.SendNotification(ctx, claimEvent(common.ChannelEmail))
	require.NoError(t, err)
	assert.Equal(t, common.StatusSkipped, result.Status)
	assert.Equal(t, "email delivery unavailable", result.Reason)

	result, err = d.SendNotification(ctx, claimEvent(common.ChannelPush))
	require.NoError(t, err)
	assert.Equal(t, common.StatusSkipped, result.Status)
	assert.Equal(t, "push delivery unavailable", result.Reason)

	m.prefs.AssertExpectations(t)
	m.logs.AssertExpectations(t)
}

func TestDispatcher_Preferences(t *testing.T) {
	ctx := context.Background()

	t.Run("get", func(t *testing.T) {
		d, m := newTestDispatcher()
		m.prefs.On("Get", ctx, "user-1").Return(dbsql.DefaultPreference("user-1"), nil)

		pref, err := d.GetPreferences(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, pref.PushEnabled)
		m.assertAll(t)
	})

	t.Run("get requires user", func(t *testing.T) {
		d, m := newTestDispatcher()
		_, err := d.GetPreferences(ctx, " ")
		assert.ErrorIs(t, err, common.ErrValidation)
		m.assertAll(t)
	})

	t.Run("update", func(t *testing.T) {
		d, m := newTestDispatcher()
		pref := dbsql.DefaultPreference("user-1")
		m.prefs.On("Save", ctx, pref).Return(nil)

		assert.NoError(t, d.UpdatePreferences(ctx, pref))
		m.assertAll(t)
	})

	t.Run("update store failure is transient", func(t *testing.T) {
		d, m := newTestDispatcher()
		pref := dbsql.DefaultPreference("user-1")
		m.prefs.On("Save", ctx, pref).Return(errors.New("timeout"))

		assert.ErrorIs(t, d.UpdatePreferences(ctx, pref), common.ErrTransient)
		m.assertAll(t)
	})

	t.Run("update requires preferences", func(t *testing.T) {
		d, _ := newTestDispatcher()
		assert.ErrorIs(t, d.UpdatePreferences(ctx, nil), common.ErrValidation)
	})
}

func TestDispatcher_RegisterDevice(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		userID    string
		token     string
		platform  string
		mockSetup func(m *dispatcherMocks)
		wantErr   error
	}{
		{
			name:     "normalises platform",
			userID:   "user-1",
			token:    "token-1",
			platform: " Android ",
			mockSetup: func(m *dispatcherMocks) {
				m.devices.On("Register", ctx, "user-1", "token-1", "android").Return(nil)
			},
		},
		{
			name:      "unknown platform",
			userID:    "user-1",
			token:     "token-1",
			platform:  "blackberry",
			mockSetup: func(m *dispatcherMocks) {},
			wantErr:   common.ErrValidation,
		},
		{
			name:      "missing token",
			userID:    "user-1",
			platform:  "ios",
			mockSetup: func(m *dispatcherMocks) {},
			wantErr:   common.ErrValidation,
		},
		{
			name:     "store failure",
			userID:   "user-1",
			token:    "token-1",
			platform: "web",
			mockSetup: func(m *dispatcherMocks) {
				m.devices.On("Register", ctx, "user-1", "token-1", "web").Return(errors.New("deadlock"))
			},
			wantErr: common.ErrTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, m := newTestDispatcher()
			tt.mockSetup(m)

			err := d.RegisterDevice(ctx, tt.userID, tt.token, tt.platform)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			m.assertAll(t)
		})
	}
}

func TestDispatcher_History(t *testing.T) {
	ctx := context.Background()
	d, m := newTestDispatcher()

	m.logs.On("ByUserID", ctx, "user-1", 20, 0).Return([]*dbsql.Notification{
		{ID: "n-2", UserID: "user-1", Category: "generic", Channel: "push", Status: "sent"},
		{ID: "n-1", UserID: "user-1", Category: "report-filed", Channel: "email", Status: "failed", Error: "timeout"},
	}, nil)

	history, err := d.History(ctx, "user-1", 500, -3)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "n-2", history[0].ID)
	assert.Equal(t, "timeout", history[1].Error)
	m.assertAll(t)
}

func TestSubjectAndBody(t *testing.T) {
	assert.Equal(t, "New report on Garoua Market", subjectFor(common.NotificationEvent{
		Category: common.CategoryReportFiled, EntityName: "Garoua Market",
	}))
	assert.Equal(t, "Custom", subjectFor(common.NotificationEvent{
		Category: common.CategoryGeneric, Subject: "Custom",
	}))
	assert.Equal(t, "You have a new message", subjectFor(common.NotificationEvent{
		Category: common.CategoryDirectMessage,
	}))
	assert.Equal(t, "explicit", pushBody(common.NotificationEvent{Body: "explicit"}))
	assert.Equal(t, "héllo", truncate("héllo wörld", 5))
}
