package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_registersCollectors(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterLogins.WithLabelValues(LoginResultSuccess).Inc()
	m.CounterLogins.WithLabelValues(LoginResultInvalid).Add(2)
	m.CounterContactMessages.Inc()
	m.GaugeLifeSignal.Set(1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterLogins.WithLabelValues(LoginResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterLogins.WithLabelValues(LoginResultInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterContactMessages))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GaugeLifeSignal))

	count, err := testutil.GatherAndCount(reg, "ardiland_test_server_login_attempts")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewTestManager_isolatedRegistries(t *testing.T) {
	// separate registries must not collide on registration
	assert.NotPanics(t, func() {
		NewTestManager()
		NewTestManager()
	})
}

func TestSetupPrometheus(t *testing.T) {
	reg := SetupPrometheus()
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
