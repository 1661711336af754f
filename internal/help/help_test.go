package help

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, false))
	assert.Equal(t, Guide(), buf.String())
}

func TestRender_Colored(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, true))
	out := buf.String()

	assert.NotContains(t, out, "```")
	assert.NotContains(t, out, "## ")
	assert.Contains(t, out, "Starting a session")
	assert.Contains(t, out, "rstudio stop --all")
	assert.Contains(t, out, "  • ")
}

func TestGuide_MentionsEveryCommand(t *testing.T) {
	for _, cmd := range []string{"rstudio start", "rstudio ls", "rstudio stop", "rstudio config"} {
		assert.True(t, strings.Contains(Guide(), cmd), "guide should mention %q", cmd)
	}
}
