package weather

// Suitability rates one construction activity for a day.
type Suitability string

const (
	Suitable   Suitability = "suitable"
	Caution    Suitability = "caution"
	Unsuitable Suitability = "unsuitable"
)

// Rating is the overall construction rating for a day.
type Rating string

const (
	RatingExcellent  Rating = "excellent"
	RatingGood       Rating = "good"
	RatingFair       Rating = "fair"
	RatingPoor       Rating = "poor"
	RatingUnsuitable Rating = "unsuitable"
)

// ConstructionSuitability rates the common site activities.
type ConstructionSuitability struct {
	Overall         Rating      `json:"overall"`
	ConcreteWork    Suitability `json:"concreteWork"`
	RoofWork        Suitability `json:"roofWork"`
	Painting        Suitability `json:"painting"`
	Excavation      Suitability `json:"excavation"`
	CraneOperations Suitability `json:"craneOperations"`
}

// DayAssessment is the construction outlook for one forecast day.
type DayAssessment struct {
	Date            string                  `json:"date"`
	Conditions      Conditions              `json:"conditions"`
	Suitability     ConstructionSuitability `json:"constructionSuitability"`
	Risks           []string                `json:"risks"`
	Recommendations []string                `json:"recommendations"`
}

// Assess rates a forecast day. Precipitation thresholds apply to the chance
// of precipitation in percent; wind is km/h and visibility km.
func Assess(day ForecastDay) DayAssessment {
	return DayAssessment{
		Date:            day.Date.Key(),
		Conditions:      day.Conditions,
		Suitability:     AssessSuitability(day.Conditions),
		Risks:           Risks(day.Conditions),
		Recommendations: Recommendations(day.Conditions),
	}
}

// AssessAll rates every day of a forecast.
func AssessAll(days []ForecastDay) []DayAssessment {
	out := make([]DayAssessment, 0, len(days))
	for _, d := range days {
		out = append(out, Assess(d))
	}
	return out
}

// AssessSuitability rates each activity and derives the overall rating
// from the number of unsuitable and caution ratings.
func AssessSuitability(c Conditions) ConstructionSuitability {
	precip := c.PrecipitationChance * 100

	s := ConstructionSuitability{
		ConcreteWork:    Suitable,
		RoofWork:        Suitable,
		Painting:        Suitable,
		Excavation:      Suitable,
		CraneOperations: Suitable,
	}

	switch {
	case c.Temperature < 5 || c.Temperature > 35 || precip > 30:
		s.ConcreteWork = Unsuitable
	case c.Temperature < 10 || c.Humidity > 85:
		s.ConcreteWork = Caution
	}

	switch {
	case c.WindSpeed > 25 || precip > 20:
		s.RoofWork = Unsuitable
	case c.WindSpeed > 15 || precip > 10:
		s.RoofWork = Caution
	}

	switch {
	case precip > 10 || c.Humidity > 85 || c.WindSpeed > 20:
		s.Painting = Unsuitable
	case c.Humidity > 70 || c.WindSpeed > 15:
		s.Painting = Caution
	}

	switch {
	case precip > 50:
		s.Excavation = Unsuitable
	case precip > 20:
		s.Excavation = Caution
	}

	switch {
	case c.WindSpeed > 20 || c.Visibility < 5:
		s.CraneOperations = Unsuitable
	case c.WindSpeed > 15 || c.Visibility < 8:
		s.CraneOperations = Caution
	}

	unsuitable, caution := 0, 0
	for _, a := range []Suitability{s.ConcreteWork, s.RoofWork, s.Painting, s.Excavation, s.CraneOperations} {
		switch a {
		case Unsuitable:
			unsuitable++
		case Caution:
			caution++
		}
	}

	switch {
	case unsuitable > 2:
		s.Overall = RatingUnsuitable
	case unsuitable > 0:
		s.Overall = RatingPoor
	case caution > 2:
		s.Overall = RatingFair
	case caution > 0:
		s.Overall = RatingGood
	default:
		s.Overall = RatingExcellent
	}

	return s
}

// Risks lists the weather risks for a day.
func Risks(c Conditions) []string {
	precip := c.PrecipitationChance * 100
	risks := []string{}

	if c.Temperature < 5 {
		risks = append(risks, "Freezing temperatures may affect concrete curing and equipment operation")
	}
	if c.Temperature > 35 {
		risks = append(risks, "High temperatures may cause rapid concrete curing and worker heat stress")
	}
	if c.WindSpeed > 25 {
		risks = append(risks, "Strong winds may prevent crane operations and roofing work")
	}
	if precip > 50 {
		risks = append(risks, "Heavy rain may halt outdoor activities and cause site flooding")
	}
	if c.Humidity > 85 {
		risks = append(risks, "High humidity may slow paint drying and affect concrete finish")
	}
	if c.Visibility < 5 {
		risks = append(risks, "Poor visibility may create safety hazards for equipment operation")
	}
	if c.UVIndex > 8 {
		risks = append(risks, "High UV index requires additional worker protection measures")
	}

	return risks
}

// Recommendations lists mitigations for a day.
func Recommendations(c Conditions) []string {
	precip := c.PrecipitationChance * 100
	recs := []string{}

	if c.Temperature < 5 {
		recs = append(recs, "Use heated enclosures for concrete work", "Implement cold weather concreting procedures")
	}
	if c.Temperature > 35 {
		recs = append(recs, "Schedule concrete pours for early morning", "Provide additional cooling for workers")
	}
	if c.WindSpeed > 20 {
		recs = append(recs, "Suspend crane operations", "Secure loose materials and equipment")
	}
	if precip > 30 {
		recs = append(recs, "Reschedule outdoor concrete work", "Ensure proper site drainage")
	}
	if c.Humidity > 80 {
		recs = append(recs, "Allow extra time for paint and coating drying", "Use dehumidification in enclosed spaces")
	}

	return recs
}
