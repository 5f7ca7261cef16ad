package asyncbus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/asyncbus/pkg/asyncbus"
	"github.com/randalmurphal/asyncbus/pkg/asyncbus/config"
)

func TestFromConfig(t *testing.T) {
	cfg, err := config.FromYAML([]byte("capacity: 32\npoll_interval: 5ms\n"))
	require.NoError(t, err)

	busCfg := asyncbus.FromConfig[string](cfg)
	assert.Equal(t, 32, busCfg.Capacity)
	assert.Equal(t, 5*time.Millisecond, busCfg.PollInterval)
}

func TestFromConfigDefaults(t *testing.T) {
	busCfg := asyncbus.FromConfig[string](config.New(nil))
	assert.Equal(t, asyncbus.DefaultCapacity, busCfg.Capacity)
	assert.Equal(t, asyncbus.DefaultPollInterval, busCfg.PollInterval)
}

func TestFromConfigBuildsWorkingBus(t *testing.T) {
	cfg, err := config.FromYAML([]byte("capacity: 2\n"))
	require.NoError(t, err)

	var got []int
	busCfg := asyncbus.FromConfig[int](cfg)
	bus := asyncbus.New[int](asyncbus.DispatcherFunc[int](func(evt int) {
		got = append(got, evt)
	}), busCfg)

	// Capacity 2: the third pre-start publish must drop.
	bus.Publish(1)
	bus.Publish(2)
	bus.Publish(3)

	require.NoError(t, bus.Start())
	require.NoError(t, bus.Stop())

	assert.Equal(t, []int{1, 2}, got)
}
