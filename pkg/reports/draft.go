package reports

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"saferoute/pkg/geo"
)

// Upload limits.
const (
	MaxFiles      = 5
	MaxImageBytes = 10 << 20
	MaxVideoBytes = 50 << 20
)

var (
	ErrTooManyFiles       = errors.New("maximum 5 files allowed")
	ErrUnsupportedMedia   = errors.New("only images and videos are allowed")
	ErrFileTooLarge       = errors.New("file too large")
	ErrNoSuchFile         = errors.New("no such file")
	ErrLocationRequired   = errors.New("accident location required")
	ErrInvalidSeverity    = errors.New("invalid severity")
	ErrInvalidVehicleType = errors.New("invalid vehicle type")
	ErrInvalidCasualties  = errors.New("casualties must not be negative")
)

// Attachment is a file attached to a draft.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Kind returns "image" or "video", or "" for anything else.
func (a Attachment) Kind() string {
	switch {
	case strings.HasPrefix(a.ContentType, "image/"):
		return "image"
	case strings.HasPrefix(a.ContentType, "video/"):
		return "video"
	default:
		return ""
	}
}

// Draft is an accident report being filled in.
type Draft struct {
	Location        geo.Coordinate
	LocationName    string
	Severity        Severity
	VehicleType     string
	Casualties      int
	Description     string
	ReporterName    string
	ReporterContact string
	Timestamp       time.Time
	Files           []Attachment
}

// NewDraft returns a draft with the form defaults: a minor two-wheeler
// accident at the city centre.
func NewDraft() *Draft {
	return &Draft{
		Location:    geo.NagpurCenter,
		Severity:    SeverityMinor,
		VehicleType: VehicleTwoWheeler,
	}
}

// AddFile attaches a. Only images up to 10 MB and videos up to 50 MB are
// accepted, at most five files in total.
func (d *Draft) AddFile(a Attachment) error {
	if len(d.Files) >= MaxFiles {
		return ErrTooManyFiles
	}
	limit := MaxImageBytes
	switch a.Kind() {
	case "image":
	case "video":
		limit = MaxVideoBytes
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedMedia, a.ContentType)
	}
	if len(a.Data) > limit {
		return fmt.Errorf("%w: max %dMB", ErrFileTooLarge, limit>>20)
	}
	a.Filename = path.Base(strings.ReplaceAll(a.Filename, `\`, "/"))
	d.Files = append(d.Files, a)
	return nil
}

// RemoveFile detaches file i.
func (d *Draft) RemoveFile(i int) error {
	if i < 0 || i >= len(d.Files) {
		return fmt.Errorf("%w: %d", ErrNoSuchFile, i)
	}
	d.Files = append(d.Files[:i], d.Files[i+1:]...)
	return nil
}

// Preview returns file i as a data URL.
func (d *Draft) Preview(i int) (string, error) {
	if i < 0 || i >= len(d.Files) {
		return "", fmt.Errorf("%w: %d", ErrNoSuchFile, i)
	}
	f := d.Files[i]
	return "data:" + f.ContentType + ";base64," + base64.StdEncoding.EncodeToString(f.Data), nil
}

// Validate checks the fields required for submission.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.LocationName) == "" {
		return ErrLocationRequired
	}
	if err := d.Location.Validate(); err != nil {
		return err
	}
	if !d.Severity.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSeverity, d.Severity)
	}
	if !ValidVehicleType(d.VehicleType) {
		return fmt.Errorf("%w: %q", ErrInvalidVehicleType, d.VehicleType)
	}
	if d.Casualties < 0 {
		return ErrInvalidCasualties
	}
	if len(d.Files) > MaxFiles {
		return ErrTooManyFiles
	}
	return nil
}

// Report converts the draft into an unsaved report. A blank reporter name
// becomes "Anonymous" and a zero timestamp becomes now.
func (d *Draft) Report(now time.Time) Report {
	name := strings.TrimSpace(d.ReporterName)
	if name == "" {
		name = AnonymousReporter
	}
	ts := d.Timestamp
	if ts.IsZero() {
		ts = now
	}

	r := Report{
		Location: Location{
			Lat:  d.Location.Lat,
			Lng:  d.Location.Lng,
			Name: strings.TrimSpace(d.LocationName),
		},
		Severity:    d.Severity,
		VehicleType: d.VehicleType,
		Casualties:  d.Casualties,
		Description: d.Description,
		Reporter:    Reporter{Name: name, Contact: d.ReporterContact},
		Timestamp:   ts.UTC(),
		Files:       make([]File, 0, len(d.Files)),
		Status:      StatusPending,
	}
	for _, f := range d.Files {
		r.Files = append(r.Files, File{
			Filename: f.Filename,
			Type:     f.Kind(),
			Size:     int64(len(f.Data)),
		})
	}
	return r
}
