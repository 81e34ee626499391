package resilience_test

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeease/tradeease/internal/provider/resilience"
)

func register(r *resilience.Registry, names ...string) {
	for _, n := range names {
		cfg := resilience.DefaultClientConfig(n)
		cfg.Registry = r
		resilience.NewClient(cfg)
	}
}

func TestRegistry_NewClientRegisters(t *testing.T) {
	r := resilience.NewRegistry()
	register(r, "openweathermap")

	h := r.GetHealth("openweathermap")
	require.NotNil(t, h)
	assert.Equal(t, "openweathermap", h.Name)
	assert.Equal(t, gobreaker.StateClosed, h.CircuitState)
	assert.True(t, h.IsHealthy())
	assert.Nil(t, h.LastSuccessAt)
	assert.Nil(t, h.LastFailureAt)
	assert.Empty(t, h.LastError)
}

func TestRegistry_RecordOutcomes(t *testing.T) {
	r := resilience.NewRegistry()
	register(r, "nws")

	r.RecordSuccess("nws", 120*time.Millisecond)
	h := r.GetHealth("nws")
	require.NotNil(t, h.LastSuccessAt)
	assert.WithinDuration(t, time.Now(), *h.LastSuccessAt, time.Second)
	assert.Equal(t, 120*time.Millisecond, h.LastLatency)

	r.RecordFailure("nws", errors.New("point outside coverage"))
	h = r.GetHealth("nws")
	require.NotNil(t, h.LastFailureAt)
	assert.Equal(t, "point outside coverage", h.LastError)
	assert.Equal(t, 120*time.Millisecond, h.LastLatency, "failures keep the last good latency")

	r.RecordFailure("nws", nil)
	assert.Equal(t, "point outside coverage", r.GetHealth("nws").LastError)
}

func TestRegistry_ReRegisterClearsHistory(t *testing.T) {
	r := resilience.NewRegistry()
	register(r, "nws")
	r.RecordFailure("nws", errors.New("boom"))

	register(r, "nws")
	assert.Empty(t, r.GetHealth("nws").LastError)
}

func TestRegistry_UnknownProvider(t *testing.T) {
	r := resilience.NewRegistry()

	assert.Nil(t, r.GetHealth("ambee"))
	assert.NotPanics(t, func() {
		r.RecordSuccess("ambee", time.Second)
		r.RecordFailure("ambee", errors.New("boom"))
	})
	assert.Empty(t, r.GetAllHealth())
}

func TestRegistry_GetAllHealthSorted(t *testing.T) {
	r := resilience.NewRegistry()
	register(r, "openweathermap", "nws")

	all := r.GetAllHealth()
	require.Len(t, all, 2)
	assert.Equal(t, "nws", all[0].Name)
	assert.Equal(t, "openweathermap", all[1].Name)
}

func TestRegistry_Overall(t *testing.T) {
	r := resilience.NewRegistry()
	assert.Equal(t, resilience.StatusOK, r.Overall(), "nothing registered")

	register(r, "openweathermap", "nws")
	assert.Equal(t, resilience.StatusOK, r.Overall())
}

func TestProviderHealth_States(t *testing.T) {
	tests := []struct {
		state                        gobreaker.State
		healthy, degraded, unhealthy bool
	}{
		{gobreaker.StateClosed, true, false, false},
		{gobreaker.StateHalfOpen, false, true, false},
		{gobreaker.StateOpen, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			h := &resilience.ProviderHealth{CircuitState: tt.state}
			assert.Equal(t, tt.healthy, h.IsHealthy())
			assert.Equal(t, tt.degraded, h.IsDegraded())
			assert.Equal(t, tt.unhealthy, h.IsUnhealthy())
		})
	}
}
