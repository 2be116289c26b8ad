package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pallet-cubing-backend/config"
	"pallet-cubing-backend/internal/model"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	gormDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, gormDB.AutoMigrate(&model.SessionEntry{}))
	return gormDB
}

// backends runs fn once per backend implementation.
func backends(t *testing.T, fn func(t *testing.T, s *State)) {
	testCases := []struct {
		name string
		open func(t *testing.T) Backend
	}{
		{name: "memory", open: func(t *testing.T) Backend { return NewMemoryBackend() }},
		{name: "sql", open: func(t *testing.T) Backend { return NewSQLBackend(newSQLiteDB(t)) }},
		{name: "badger", open: func(t *testing.T) Backend {
			b, err := OpenBadgerBackend("")
			require.NoError(t, err)
			return b
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(tc.open(t))
			t.Cleanup(func() { s.Close() })
			fn(t, s)
		})
	}
}

func TestState_Defaults(t *testing.T) {
	backends(t, func(t *testing.T, s *State) {
		assert.False(t, s.IsLoggedIn())
		assert.Equal(t, "", s.CurrentTrailer())
		assert.Equal(t, 0, s.CurrentPalletIndex())
		assert.Equal(t, 0, s.ExpectedPallets())
		_, ok := s.ResumeScreen()
		assert.False(t, ok)
		assert.Empty(t, s.ResumeState())
		assert.Equal(t, "Not logged in", s.UserInfo())
	})
}

func TestState_ResumeStateMerges(t *testing.T) {
	backends(t, func(t *testing.T, s *State) {
		s.SaveResumeState("trailer", map[string]string{"trailer": "401252"})
		s.SaveResumeState("pro_header", map[string]string{"pro": "1234567890", "expectedPallets": "5"})
		s.SaveResumeState("pallet_detail", nil)

		screen, ok := s.ResumeScreen()
		require.True(t, ok)
		assert.Equal(t, "pallet_detail", screen)
		assert.Equal(t, map[string]string{
			"trailer":         "401252",
			"pro":             "1234567890",
			"expectedPallets": "5",
		}, s.ResumeState())

		s.SaveResumeState("pro_header", map[string]string{"pro": "9999999999"})
		assert.Equal(t, "9999999999", s.ResumeState()["pro"])
		assert.Equal(t, "401252", s.ResumeState()["trailer"])
	})
}

func TestState_ClearResumeStateKeepsIdentity(t *testing.T) {
	backends(t, func(t *testing.T, s *State) {
		s.Login("401", "77")
		s.SetCurrentTrailer("401252")
		s.SetCurrentPro("1234567890")
		s.SetExpectedPallets(5)
		s.SetCurrentPalletIndex(3)
		s.SetFreightType("Dual")
		s.SetTemp1("34")
		s.SetTemp2("-10")
		s.SaveResumeState("pallet_detail", map[string]string{"pro": "1234567890"})

		s.ClearResumeState()

		_, ok := s.ResumeScreen()
		assert.False(t, ok)
		assert.Empty(t, s.ResumeState())
		assert.Equal(t, WorkContext{}, s.Context())

		assert.True(t, s.IsLoggedIn())
		assert.Equal(t, "401", s.TerminalID())
		assert.Equal(t, "77", s.ReceiverID())
		assert.Equal(t, "Terminal: 401 | Receiver: 77", s.UserInfo())
	})
}

func TestState_LogoutClearsEverything(t *testing.T) {
	backends(t, func(t *testing.T, s *State) {
		s.Login("401", "77")
		s.SetCurrentTrailer("401252")
		s.SaveResumeState("trailer", map[string]string{"trailer": "401252"})

		s.Logout()

		assert.False(t, s.IsLoggedIn())
		assert.Equal(t, "", s.TerminalID())
		assert.Equal(t, "", s.CurrentTrailer())
		_, ok := s.ResumeScreen()
		assert.False(t, ok)
	})
}

func TestState_WorkflowScreenIsSeparateFromResume(t *testing.T) {
	backends(t, func(t *testing.T, s *State) {
		s.Login("401", "77")
		s.SaveResumeState("pro_header", map[string]string{"trailer": "401252"})
		s.SetWorkflowScreen("pallet_detail")

		s.ClearResumeState()
		screen, ok := s.WorkflowScreen()
		require.True(t, ok)
		assert.Equal(t, "pallet_detail", screen)

		s.Logout()
		_, ok = s.WorkflowScreen()
		assert.False(t, ok)
	})
}

func TestState_Temp2BlankRemoves(t *testing.T) {
	backends(t, func(t *testing.T, s *State) {
		s.SetTemp2("-5")
		v, ok := s.Temp2()
		assert.True(t, ok)
		assert.Equal(t, "-5", v)

		s.SetTemp2("  ")
		_, ok = s.Temp2()
		assert.False(t, ok)
	})
}

func TestState_PalletIndexAndResetPro(t *testing.T) {
	backends(t, func(t *testing.T, s *State) {
		s.SetCurrentTrailer("401252")
		s.SetCurrentPro("1234567890")
		s.SetExpectedPallets(2)
		s.SetCurrentPalletIndex(1)

		assert.True(t, s.HasMorePallets())
		assert.Equal(t, 2, s.IncrementPalletIndex())
		assert.True(t, s.HasMorePallets())
		assert.Equal(t, 3, s.IncrementPalletIndex())
		assert.False(t, s.HasMorePallets())

		s.SetFreightType("Fresh")
		s.SetTemp1("30")
		s.ResetPro()

		assert.Equal(t, WorkContext{Trailer: "401252", PalletIndex: 1}, s.Context())
	})
}

// failingBackend errors on every call.
type failingBackend struct{}

var errBackend = errors.New("flash worn out")

func (failingBackend) Get(string) (string, bool, error)       { return "", false, errBackend }
func (failingBackend) Set(string, string) error               { return errBackend }
func (failingBackend) Delete(...string) error                 { return errBackend }
func (failingBackend) Scan(string) (map[string]string, error) { return nil, errBackend }
func (failingBackend) Clear() error                           { return errBackend }
func (failingBackend) Close() error                           { return nil }

func TestState_BackendFailuresFallBackToDefaults(t *testing.T) {
	s := New(failingBackend{})

	assert.NotPanics(t, func() {
		s.Login("401", "77")
		s.SaveResumeState("trailer", map[string]string{"trailer": "x"})
		s.ClearResumeState()
		s.Logout()
	})
	assert.False(t, s.IsLoggedIn())
	assert.Equal(t, 0, s.CurrentPalletIndex())
	assert.Empty(t, s.ResumeState())
	_, ok := s.ResumeScreen()
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	s, err := Open(config.SessionConfig{Backend: "memory"}, nil)
	require.NoError(t, err)
	assert.NoError(t, s.Close())

	_, err = Open(config.SessionConfig{Backend: "sql"}, nil)
	assert.Error(t, err)

	_, err = Open(config.SessionConfig{Backend: "etcd"}, nil)
	assert.Error(t, err)

	s, err = Open(config.SessionConfig{Backend: "badger", Path: t.TempDir()}, nil)
	require.NoError(t, err)
	s.SetCurrentTrailer("401252")
	assert.Equal(t, "401252", s.CurrentTrailer())
	assert.NoError(t, s.Close())
}
