package launcher

import (
	"testing"

	"github.com/angariumd/rsm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHandshake(t *testing.T) {
	valid := []struct {
		output string
		want   string
	}{
		{"RSTUDIO-10.0.0.5:8787", "10.0.0.5:8787"},
		{"RSTUDIO-10.0.0.5:8787\n", "10.0.0.5:8787"},
		{"  RSTUDIO-node17:41234 \r\n", "node17:41234"},
		// The address is whatever follows the last separator.
		{"RSTUDIO-gpu-node-3:8787", "3:8787"},
		{"RSTUDIO-[fd00::1]:8787", "[fd00::1]:8787"},
	}
	for _, tt := range valid {
		addr, err := ParseHandshake(tt.output)
		require.NoError(t, err, "output %q", tt.output)
		assert.Equal(t, tt.want, addr)
	}

	invalid := []string{
		"",
		"\n",
		"rstudio-10.0.0.5:8787",
		"RSTUDIO-",
		"RSTUDIO-10.0.0.5",
		"RSTUDIO-:8787",
		"RSTUDIO-10.0.0.5:8787\nRSTUDIO-10.0.0.6:8787",
		"Loading modules\nRSTUDIO-10.0.0.5:8787",
		"slurmstepd: error: *** JOB 12 ON node1 CANCELLED ***",
	}
	for _, output := range invalid {
		_, err := ParseHandshake(output)
		assert.ErrorIs(t, err, models.ErrStartupFailed, "output %q", output)
	}
}

func TestParseHandshake_CarriesOutput(t *testing.T) {
	_, err := ParseHandshake("FATAL:   could not open image /sif/x.sif\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not open image /sif/x.sif")
}
