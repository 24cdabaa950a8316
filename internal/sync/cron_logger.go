// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package sync

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/logging"
)

// cronLogger adapts zerolog to cron.Logger. cron's Info lines (schedule,
// wake, run) are noisy and go to debug.
type cronLogger struct {
	logger zerolog.Logger
}

func newCronLogger() *cronLogger {
	return &cronLogger{logger: logging.WithComponent("cron")}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	ev := l.logger.Debug()
	withFields(ev, keysAndValues).Msg(msg)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	ev := l.logger.Error().Err(err)
	withFields(ev, keysAndValues).Msg(msg)
}

func withFields(ev *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		ev = ev.Interface(key, keysAndValues[i+1])
	}
	return ev
}
