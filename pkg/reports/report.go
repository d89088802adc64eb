// Package reports handles citizen accident reports: the submission draft
// and its validation, persistence, media upload and event publishing.
package reports

import (
	"time"

	"saferoute/pkg/geo"
)

// Severity of an accident.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityFatal    Severity = "fatal"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeveritySevere, SeverityFatal:
		return true
	}
	return false
}

// Vehicle types accepted on the form.
const (
	VehicleTwoWheeler   = "two-wheeler"
	VehicleThreeWheeler = "three-wheeler"
	VehicleCar          = "car"
	VehicleHeavy        = "heavy-vehicle"
	VehiclePedestrian   = "pedestrian"
	VehicleMultiple     = "multiple"
)

var vehicleTypes = map[string]bool{
	VehicleTwoWheeler:   true,
	VehicleThreeWheeler: true,
	VehicleCar:          true,
	VehicleHeavy:        true,
	VehiclePedestrian:   true,
	VehicleMultiple:     true,
}

// ValidVehicleType reports whether v is a known vehicle type.
func ValidVehicleType(v string) bool { return vehicleTypes[v] }

// StatusPending is the status of every new report.
const StatusPending = "pending_verification"

// AnonymousReporter is used when the reporter leaves their name blank.
const AnonymousReporter = "Anonymous"

// Location is where the accident happened.
type Location struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

// Coordinate returns the location as a coordinate.
func (l Location) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: l.Lat, Lng: l.Lng}
}

// Reporter identifies who submitted the report.
type Reporter struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// File describes an uploaded photo or video.
type File struct {
	Filename  string `json:"filename"`
	Type      string `json:"type"` // "image" or "video"
	Size      int64  `json:"size"`
	ObjectKey string `json:"object_key,omitempty"`
}

// Report is a stored accident report.
type Report struct {
	ID          int64     `json:"id"`
	Location    Location  `json:"location"`
	Severity    Severity  `json:"severity"`
	VehicleType string    `json:"vehicle_type"`
	Casualties  int       `json:"casualties"`
	Description string    `json:"description"`
	Reporter    Reporter  `json:"reporter"`
	Timestamp   time.Time `json:"timestamp"`
	Files       []File    `json:"files"`
	Status      string    `json:"status"`
}

// SubmitResult is the response to a submission.
type SubmitResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ReportID int64  `json:"report_id,omitempty"`
}

// RecentPage is a page of the most recent reports.
type RecentPage struct {
	Reports []Report `json:"reports"`
	Total   int      `json:"total"`
}
