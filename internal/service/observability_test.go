package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf, slog.LevelInfo)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:     "create-object",
		Duration: 3 * time.Millisecond,
		Success:  true,
		Fields:   map[string]any{"name": "Launch"},
	})
	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "use_case=create-object")
	assert.Contains(t, out, "duration_ms=3")
	assert.Contains(t, out, "name=Launch")

	buf.Reset()
	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "delete-object", Err: errors.New("locked")})
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "error=locked")
}

func TestLogUseCaseObserver_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf, slog.LevelError)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "create-object", Success: true})
	assert.Empty(t, buf.String())
}

func TestNewLogUseCaseObserver_NilWriter(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil, slog.LevelInfo))
}

func TestTrack_CapturesNamedError(t *testing.T) {
	obs := &recordingObserver{}
	run := func() (err error) {
		defer track(context.Background(), obs, "probe", time.Now().UTC(), map[string]any{"k": 1}, &err)
		return domain.NotFound("object", "x")
	}

	_ = run()
	ev := obs.last()
	assert.Equal(t, "probe", ev.Name)
	assert.False(t, ev.Success)
	assert.ErrorIs(t, ev.Err, domain.ErrNotFound)
	assert.Equal(t, 1, ev.Fields["k"])
}

func TestLogWarningSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogWarningSink(&buf)

	sink.Warn(domain.Warning{Kind: domain.WarnOrphanParent, Subject: "o1", Detail: "parent gone"})
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "msg=consistency_warning")
	assert.Contains(t, out, "kind=orphan_parent")
	assert.Contains(t, out, "subject=o1")

	assert.IsType(t, domain.NoopWarningSink{}, NewLogWarningSink(nil))
}
