package weather

import (
	"math"
	"strings"

	"github.com/tradeease/tradeease/pkg/caldate"
)

// heavyRainMM is the daily precipitation above which a day is rainy
// regardless of the provider's description.
const heavyRainMM = 10

// Normalize maps one provider forecast day to RainData.
func Normalize(day ForecastDay) RainData {
	c := day.Conditions
	lightning := HasLightning(c.Condition)

	return RainData{
		Date:         day.Date.Key(),
		Rainfall:     c.Precipitation,
		Temperature:  int(math.Round(c.Temperature)),
		RainChance:   rainChance(c.PrecipitationChance),
		HasLightning: lightning,
		Condition:    DeriveCondition(c.Condition, c.Precipitation),
		Amount:       c.Precipitation,
	}
}

// DeriveCondition classifies a provider description and precipitation in
// mm. The first matching rule wins: storm/thunder, then heavy rain or
// "rain", then any precipitation or "cloud", then "partly"/"partial",
// otherwise sunny.
func DeriveCondition(text string, precipitation float64) Condition {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "storm") || strings.Contains(t, "thunder"):
		return ConditionStorm
	case precipitation > heavyRainMM || strings.Contains(t, "rain"):
		return ConditionRainy
	case precipitation > 0 || strings.Contains(t, "cloud"):
		return ConditionCloudy
	case strings.Contains(t, "partly") || strings.Contains(t, "partial"):
		return ConditionPartlyCloudy
	default:
		return ConditionSunny
	}
}

// HasLightning reports whether a provider description mentions a storm or
// thunder.
func HasLightning(text string) bool {
	t := strings.ToLower(text)
	return strings.Contains(t, "storm") || strings.Contains(t, "thunder")
}

func rainChance(probability float64) int {
	pct := int(math.Round(probability * 100))
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

// FallbackForecast is the fixed three-day forecast installed when the
// provider fails: a mild partly cloudy day, a day of light rain and a
// thunderstorm, starting at today.
func FallbackForecast(today caldate.Date) []ForecastDay {
	return []ForecastDay{
		{
			Date: today,
			Conditions: Conditions{
				Temperature:         22,
				Precipitation:       0,
				PrecipitationChance: 0.1,
				Condition:           "Partly sunny",
				Humidity:            60,
				WindSpeed:           12,
				Visibility:          10,
				UVIndex:             6,
			},
		},
		{
			Date: today.AddDays(1),
			Conditions: Conditions{
				Temperature:         19,
				Precipitation:       2.5,
				PrecipitationChance: 0.6,
				Condition:           "Light Rain",
				Humidity:            80,
				WindSpeed:           15,
				Visibility:          8,
				UVIndex:             3,
			},
		},
		{
			Date: today.AddDays(2),
			Conditions: Conditions{
				Temperature:         24,
				Precipitation:       15,
				PrecipitationChance: 0.9,
				Condition:           "Thunderstorm",
				Humidity:            88,
				WindSpeed:           30,
				Visibility:          4,
				UVIndex:             2,
			},
		},
	}
}
