package models

// DegradationFlag names a reduced mode the calendar is serving in.
type DegradationFlag string

const (
	// DegradationWeatherFallback means at least one weather provider's
	// circuit is not closed, so some sites show the placeholder forecast.
	DegradationWeatherFallback DegradationFlag = "WEATHER_FALLBACK"

	// DegradationStorage means a readiness dependency such as the job
	// store failed its check.
	DegradationStorage DegradationFlag = "STORAGE_UNAVAILABLE"
)

// Health is the body of the liveness and readiness probes.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus reports dependency checks and weather provider health.
type SystemStatus struct {
	Status                 HealthStatus      `json:"status"`
	Time                   Timestamp         `json:"time"`
	Subsystems             []SubsystemStatus `json:"subsystems"`
	Providers              []ProviderStatus  `json:"providers"`
	ActiveDegradationFlags []DegradationFlag `json:"activeDegradationFlags,omitempty"`
}

// SubsystemStatus is one readiness check result.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus is a forecast or alert provider as seen through its
// circuit breaker.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	Circuit       string       `json:"circuit"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	LatencyMs     *int64       `json:"latencyMs,omitempty"`
	Message       *string      `json:"message,omitempty"`
}
