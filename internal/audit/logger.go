// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package audit

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/logging"
)

// writeTimeout bounds a single store write from the async writer.
const writeTimeout = 5 * time.Second

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether audit logging is active.
	Enabled bool

	// LogLevel filters events by minimum severity.
	LogLevel Severity

	// RetentionDays is how long to keep audit events. Zero keeps them forever.
	RetentionDays int

	// CleanupInterval is how often Serve runs retention cleanup.
	CleanupInterval time.Duration

	// BufferSize is the size of the async write buffer.
	BufferSize int

	// LogToStdout also writes events to the application log.
	LogToStdout bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		LogLevel:        SeverityInfo,
		RetentionDays:   90,
		CleanupInterval: 24 * time.Hour,
		BufferSize:      1000,
	}
}

// Logger buffers audit events and writes them to a Store from a background
// goroutine.
type Logger struct {
	config    *Config
	store     Store
	eventChan chan *Event
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewLogger creates a new audit logger and starts its writer.
func NewLogger(store Store, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.LogLevel == "" {
		config.LogLevel = SeverityInfo
	}

	l := &Logger{
		config:    config,
		store:     store,
		eventChan: make(chan *Event, config.BufferSize),
		stopChan:  make(chan struct{}),
	}

	l.wg.Add(1)
	go l.asyncWriter()

	return l
}

func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			// Drain remaining events
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

func (l *Logger) writeEvent(event *Event) {
	if l.config.LogToStdout {
		l.logToStdout(event)
	}

	if l.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to save audit event")
	}
}

func (l *Logger) logToStdout(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal audit event")
		return
	}
	logging.Info().RawJSON("event", data).Msg("Audit event")
}

// Log records an audit event without blocking. Missing ID, timestamp and
// severity are filled in.
func (l *Logger) Log(event *Event) {
	if l == nil || !l.config.Enabled || event == nil {
		return
	}

	if event.Severity == "" {
		event.Severity = DefaultSeverity(event.Type)
	}
	if !l.shouldLog(event.Severity) {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case <-l.stopChan:
		return
	default:
	}

	select {
	case l.eventChan <- event:
	default:
		logging.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).
			Msg("Audit event buffer full, dropping event")
	}
}

func (l *Logger) shouldLog(severity Severity) bool {
	return severityOrder[severity] >= severityOrder[l.config.LogLevel]
}

// Query reads events back from the store.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) (*Page, error) {
	if l.store == nil {
		return &Page{Events: []Event{}}, nil
	}

	total, err := l.store.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	events, err := l.store.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []Event{}
	}
	return &Page{Events: events, Total: total}, nil
}

// Close drains the buffer and stops the writer. Safe to call more than once.
func (l *Logger) Close() error {
	l.stopOnce.Do(func() {
		close(l.stopChan)
	})
	l.wg.Wait()
	return nil
}

// Serve runs retention cleanup until ctx is cancelled. It implements
// suture.Service so the supervisor restarts it if a store call panics.
func (l *Logger) Serve(ctx context.Context) error {
	interval := l.config.CleanupInterval
	if interval <= 0 || l.config.RetentionDays <= 0 || l.store == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	l.cleanup(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.cleanup(ctx)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (l *Logger) String() string {
	return "audit-retention"
}

func (l *Logger) cleanup(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -l.config.RetentionDays)
	deleted, err := l.store.Delete(ctx, cutoff)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to clean up audit events")
		return
	}
	if deleted > 0 {
		logging.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Cleaned up expired audit events")
	}
}

// LogAuthSuccess records a successful login.
func (l *Logger) LogAuthSuccess(ctx context.Context, actor Actor, source Source) {
	l.Log(&Event{
		Type:        EventTypeAuthSuccess,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Source:      source,
		Action:      "login",
		Description: "User logged in",
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogAuthFailure records a rejected login. email is the attempted identity.
func (l *Logger) LogAuthFailure(ctx context.Context, email, reason string, source Source) {
	l.Log(&Event{
		Type:        EventTypeAuthFailure,
		Outcome:     OutcomeFailure,
		Actor:       Actor{ID: email, Type: "anonymous", Name: email},
		Source:      source,
		Action:      "login",
		Description: "Login rejected",
		Metadata:    map[string]string{"reason": reason},
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogAuthzDenied records a request rejected by the RBAC enforcer.
func (l *Logger) LogAuthzDenied(ctx context.Context, actor Actor, object, action string, source Source) {
	l.Log(&Event{
		Type:        EventTypeAuthzDenied,
		Outcome:     OutcomeFailure,
		Actor:       actor,
		Target:      &Target{ID: object, Type: "resource", Name: object},
		Source:      source,
		Action:      action,
		Description: "Permission denied",
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogAction records a successful administrative change.
func (l *Logger) LogAction(ctx context.Context, eventType EventType, actor Actor, target *Target, source Source, description string) {
	l.Log(&Event{
		Type:        eventType,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Target:      target,
		Source:      source,
		Action:      actionName(eventType),
		Description: description,
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

func actionName(t EventType) string {
	switch t {
	case EventTypeUserCreated, EventTypeMovieCreated:
		return "create"
	case EventTypeUserModified, EventTypeMovieModified:
		return "update"
	case EventTypeUserDeleted, EventTypeMovieDeleted:
		return "delete"
	case EventTypeSyncTriggered:
		return "trigger"
	case EventTypeAdminBootstrap:
		return "bootstrap"
	default:
		return string(t)
	}
}

// ActorFromUser builds an actor for an authenticated user.
func ActorFromUser(id, name, role string) Actor {
	return Actor{ID: id, Type: "user", Name: name, Role: role}
}

// SystemActor is the actor for changes made by the server itself.
func SystemActor() Actor {
	return Actor{ID: "system", Type: "system", Name: "Marquee"}
}

// SourceFromRequest extracts the client address. RemoteAddr has already been
// rewritten by the RealIP middleware.
func SourceFromRequest(r *http.Request) Source {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return Source{IPAddress: ip, UserAgent: r.UserAgent()}
}
