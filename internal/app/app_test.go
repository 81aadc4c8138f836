package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/pathscope/internal/engine/culling"
	"github.com/Faultbox/pathscope/internal/engine/scheduler"
)

func TestFPSFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	st := scheduler.Stats{Rendered: 30, Skipped: 12, Overrides: 2}
	log.Debug("fps", fpsFields(31, st, culling.Stats{Visible: 3, Culled: 1})...)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(31), fields["count"])
	assert.Equal(t, uint64(30), fields["rendered"])
	assert.Equal(t, uint64(12), fields["skipped"])
	assert.Equal(t, uint64(2), fields["overrides"])
	assert.Equal(t, int64(3), fields["visible"])
	assert.Equal(t, int64(1), fields["culled"])
}
