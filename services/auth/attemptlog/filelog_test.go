package attemptlog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/mytime"
)

func TestLogUnsuccessfulAttempt(t *testing.T) {
	c := context.TODO()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(time.Date(2023, 2, 27, 13, 45, 12, 0, time.UTC)).AnyTimes()

	path := filepath.Join(t.TempDir(), "failed_logins.log")
	logger := NewFileLogger(path, nower)

	// when
	err := logger.LogUnsuccessfulAttempt(c, "marc@home.nl", "INVALID_PASSWORD")
	assert.NoError(t, err)
	err = logger.LogUnsuccessfulAttempt(c, "eva@home.nl", "EMAIL_NOT_FOUND")
	assert.NoError(t, err)

	// then
	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t,
		"2023-02-27 13:45:12 - Email: marc@home.nl, Error: INVALID_PASSWORD\n"+
			"2023-02-27 13:45:12 - Email: eva@home.nl, Error: EMAIL_NOT_FOUND\n",
		string(content))
}
