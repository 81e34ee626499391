package job

import (
	"fmt"
	"math"
	"sort"
)

// DefaultSpreadRadius is the offset in degrees (~100 m) applied to jobs
// that share a coordinate.
const DefaultSpreadRadius = 0.001

// Marker is a map pin for a job.
type Marker struct {
	JobID       string  `json:"jobId"`
	Title       string  `json:"title"`
	JobNumber   string  `json:"jobNumber"`
	Date        string  `json:"date"`
	TeamColor   string  `json:"teamColor"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	OriginalLat float64 `json:"originalLat"`
	OriginalLon float64 `json:"originalLon"`
	Spread      bool    `json:"spread"`
}

// SpreadMarkers builds markers for jobs with a location. Jobs that share a
// coordinate are placed evenly on a circle of radius degrees around it so
// their pins don't overlap. Output follows input order.
func SpreadMarkers(jobs []ScheduledJob, radius float64) []Marker {
	groups := make(map[string][]int)
	var markers []Marker

	for _, j := range jobs {
		if j.Location == nil {
			continue
		}
		m := Marker{
			JobID:       j.ID,
			Title:       j.Title,
			JobNumber:   j.JobNumber,
			Date:        j.Date,
			TeamColor:   TeamColor(j.Team),
			Lat:         j.Location.Lat,
			Lon:         j.Location.Lon,
			OriginalLat: j.Location.Lat,
			OriginalLon: j.Location.Lon,
		}
		key := coordinateKey(m.Lat, m.Lon)
		groups[key] = append(groups[key], len(markers))
		markers = append(markers, m)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		idx := groups[k]
		if len(idx) < 2 {
			continue
		}
		n := float64(len(idx))
		for i, mi := range idx {
			angle := 2 * math.Pi * float64(i) / n
			m := &markers[mi]
			// Longitude degrees shrink with latitude.
			lonScale := math.Cos(m.OriginalLat * math.Pi / 180)
			if lonScale < 0.01 {
				lonScale = 0.01
			}
			m.Lat = m.OriginalLat + radius*math.Sin(angle)
			m.Lon = m.OriginalLon + radius*math.Cos(angle)/lonScale
			m.Spread = true
		}
	}

	return markers
}

// coordinateKey groups coordinates equal to ~0.1 m.
func coordinateKey(lat, lon float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lon)
}
