package models

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionName(t *testing.T) {
	assert.Equal(t, "rstudio_server", SessionName("server"))
	assert.Equal(t, "rstudio_server", SessionName("rstudio_server"))
	assert.Equal(t, "rstudio_", SessionName(""))
}

func TestJob_IsSession(t *testing.T) {
	tests := []struct {
		job  Job
		want bool
	}{
		{Job{ID: "1", Name: "rstudio_a", State: JobStateRunning}, true},
		{Job{ID: "2", Name: "other", State: JobStateRunning}, false},
		{Job{ID: "3", Name: "rstudio_b", State: JobStatePending}, false},
		{Job{ID: "4", Name: "my_rstudio_c", State: JobStateRunning}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.job.IsSession(), "job %s", tt.job.ID)
	}
}

func TestJobState_Terminal(t *testing.T) {
	assert.False(t, JobStatePending.Terminal())
	assert.False(t, JobStateRunning.Terminal())
	assert.False(t, JobStateCompleting.Terminal())
	assert.True(t, JobStateFailed.Terminal())
	assert.True(t, JobStateCancelled.Terminal())
	assert.True(t, JobStateOutOfMemory.Terminal())
}

func TestParseMemory(t *testing.T) {
	t.Run("suffixes are binary", func(t *testing.T) {
		n, err := ParseMemory("8G")
		require.NoError(t, err)
		assert.Equal(t, uint64(8<<30), n)

		n, err = ParseMemory("512m")
		require.NoError(t, err)
		assert.Equal(t, uint64(512<<20), n)

		n, err = ParseMemory("1T")
		require.NoError(t, err)
		assert.Equal(t, uint64(1<<40), n)
	})

	t.Run("bare number is megabytes", func(t *testing.T) {
		n, err := ParseMemory("4096")
		require.NoError(t, err)
		assert.Equal(t, uint64(4096<<20), n)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		for _, s := range []string{"", "G", "8GB", "-1G", "1.5G", "0"} {
			_, err := ParseMemory(s)
			assert.Error(t, err, "input %q", s)
		}
	})
}

func TestFormatMemory(t *testing.T) {
	assert.Equal(t, "8.0 GiB", FormatMemory("8G"))
	assert.Equal(t, "nonsense", FormatMemory("nonsense"))
}

func TestLaunchRequest_Validate(t *testing.T) {
	valid := LaunchRequest{Name: "rstudio_x", Partition: "compute", Threads: 2, Memory: "8G"}
	require.NoError(t, valid.Validate())

	noThreads := valid
	noThreads.Threads = 0
	assert.ErrorContains(t, noThreads.Validate(), "threads")

	noPartition := valid
	noPartition.Partition = ""
	assert.ErrorContains(t, noPartition.Validate(), "partition")

	badMemory := valid
	badMemory.Memory = "lots"
	assert.ErrorContains(t, badMemory.Validate(), "memory")
}

func TestSelector(t *testing.T) {
	assert.Equal(t, Selector{Kind: SelectByName, Value: "rstudio_x"}, ByName("x"))
	assert.Equal(t, Selector{Kind: SelectByID, Value: "42"}, ByID("42"))
	assert.Equal(t, SelectInferred, Inferred().Kind)
	assert.Equal(t, `job name "rstudio_x"`, ByName("x").String())
}

func TestModelsAreNotSerialized(t *testing.T) {
	for _, typ := range []reflect.Type{reflect.TypeOf(Job{}), reflect.TypeOf(LaunchRequest{})} {
		for i := 0; i < typ.NumField(); i++ {
			f := typ.Field(i)
			assert.Empty(t, f.Tag, "%s.%s", typ.Name(), f.Name)
		}
	}
}
