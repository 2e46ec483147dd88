package attemptlog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/mytime"
)

type fileLogger struct {
	mutex sync.Mutex
	path  string
	nower mytime.Nower
}

func NewFileLogger(path string, nower mytime.Nower) *fileLogger {
	return &fileLogger{
		path:  path,
		nower: nower,
	}
}

func (l *fileLogger) LogUnsuccessfulAttempt(c context.Context, email string, reason string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening attempt-log %s: %s", l.path, err)
	}
	defer f.Close()

	entry := fmt.Sprintf("%s - Email: %s, Error: %s\n", l.nower.Now().Format("2006-01-02 15:04:05"), email, reason)
	_, err = f.WriteString(entry)
	if err != nil {
		return fmt.Errorf("error appending to attempt-log %s: %s", l.path, err)
	}

	return nil
}
