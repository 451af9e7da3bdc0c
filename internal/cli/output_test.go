package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croplog/croplog/internal/queue"
	"github.com/croplog/croplog/internal/record"
	"github.com/croplog/croplog/internal/syncengine"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRenderStatus_Idle(t *testing.T) {
	var buf bytes.Buffer
	renderStatus(&buf, syncengine.Snapshot{Online: true, PendingCount: 0, SyncInProgress: false}, nil)

	newGoldie(t).Assert(t, "status_idle", buf.Bytes())
}

func TestRenderStatus_PendingOperations(t *testing.T) {
	ops := []queue.Operation{
		{
			ID:         "op-1",
			Kind:       queue.KindCreate,
			EnqueuedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			Attempts:   0,
		},
		{
			ID:         "op-2",
			Kind:       queue.KindDelete,
			EnqueuedAt: time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC),
			Attempts:   1,
		},
	}

	var buf bytes.Buffer
	renderStatus(&buf, syncengine.Snapshot{Online: false, PendingCount: 2, SyncInProgress: false}, ops)

	newGoldie(t).Assert(t, "status_pending", buf.Bytes())
}

func TestRenderRecords(t *testing.T) {
	recs := []record.Record{
		{ID: "rec-1", CropName: "Corn", Quantity: 12, Unit: "kg"},
		{ID: "rec-2", CropName: "Wheat", Quantity: 3.5, Unit: "t", Notes: "east field"},
	}

	var buf bytes.Buffer
	renderRecords(&buf, recs)

	newGoldie(t).Assert(t, "records", buf.Bytes())
}

func TestRenderRecords_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderRecords(&buf, nil)

	assert.Equal(t, "no records\n", buf.String())
}

func TestOutputFormatter_JSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	done, err := f.JSON(map[string]any{"pending": 2})
	require.NoError(t, err)
	assert.True(t, done)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2.0, data["pending"])
}

func TestOutputFormatter_TextPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	done, err := f.JSON(map[string]any{"pending": 2})
	require.NoError(t, err)
	assert.False(t, done, "text rendering is the caller's job")
	assert.Empty(t, buf.Bytes())
}

func TestExitError(t *testing.T) {
	err := NewExitError(ExitCommandError, "bad flags")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "bad flags", err.Error())

	wrapped := WrapExitError(ExitFailure, "sync failed", assert.AnError)
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.ErrorIs(t, wrapped, assert.AnError)

	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError), "non-exit errors default to failure")
}
