package debug

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/CortexFin/config"
	"github.com/dyike/CortexFin/internal/logger"
)

func TestDisabledDebuggerIsNoop(t *testing.T) {
	d := NewEinoDebugger(&config.Config{EinoDebugPort: 52538}, logger.Discard())

	require.NoError(t, d.Initialize(context.Background()))
	assert.False(t, d.IsEnabled())
	assert.Empty(t, d.GetDebugURL())
}

func TestDebugURL(t *testing.T) {
	d := NewEinoDebugger(&config.Config{EinoDebugEnabled: true, EinoDebugPort: 6000}, nil)

	assert.Equal(t, "http://localhost:6000", d.GetDebugURL())
}

func TestDebugServerUsesConfiguredPort(t *testing.T) {
	d := NewEinoDebugger(&config.Config{EinoDebugEnabled: true, EinoDebugPort: 60000}, nil)

	assert.Equal(t, "60000", d.serverPort())
	assert.Equal(t, "http://localhost:"+d.serverPort(), d.GetDebugURL())
}
