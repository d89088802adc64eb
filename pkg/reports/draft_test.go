package reports

import (
	"errors"
	"strings"
	"testing"
	"time"

	"saferoute/pkg/geo"
)

func TestNewDraftDefaults(t *testing.T) {
	d := NewDraft()
	if d.Severity != SeverityMinor {
		t.Errorf("severity = %q, want minor", d.Severity)
	}
	if d.VehicleType != VehicleTwoWheeler {
		t.Errorf("vehicle = %q, want two-wheeler", d.VehicleType)
	}
	if d.Location != geo.NagpurCenter {
		t.Errorf("location = %v, want city centre", d.Location)
	}
}

func TestAddFile(t *testing.T) {
	tests := []struct {
		name    string
		file    Attachment
		wantErr error
	}{
		{"small image", Attachment{Filename: "a.jpg", ContentType: "image/jpeg", Data: make([]byte, 1024)}, nil},
		{"image at limit", Attachment{Filename: "a.png", ContentType: "image/png", Data: make([]byte, MaxImageBytes)}, nil},
		{"image over limit", Attachment{Filename: "a.png", ContentType: "image/png", Data: make([]byte, MaxImageBytes+1)}, ErrFileTooLarge},
		{"video over image limit", Attachment{Filename: "a.mp4", ContentType: "video/mp4", Data: make([]byte, MaxImageBytes+1)}, nil},
		{"video over limit", Attachment{Filename: "a.mp4", ContentType: "video/mp4", Data: make([]byte, MaxVideoBytes+1)}, ErrFileTooLarge},
		{"pdf", Attachment{Filename: "a.pdf", ContentType: "application/pdf", Data: []byte("x")}, ErrUnsupportedMedia},
		{"no content type", Attachment{Filename: "a"}, ErrUnsupportedMedia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraft()
			err := d.AddFile(tt.file)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddFile() error = %v, want %v", err, tt.wantErr)
			}
			want := 1
			if tt.wantErr != nil {
				want = 0
			}
			if len(d.Files) != want {
				t.Errorf("len(Files) = %d, want %d", len(d.Files), want)
			}
		})
	}
}

func TestAddFileLimitsCount(t *testing.T) {
	d := NewDraft()
	for i := 0; i < MaxFiles; i++ {
		if err := d.AddFile(Attachment{Filename: "p.jpg", ContentType: "image/jpeg", Data: []byte{1}}); err != nil {
			t.Fatalf("AddFile(%d) error = %v", i, err)
		}
	}
	err := d.AddFile(Attachment{Filename: "p.jpg", ContentType: "image/jpeg", Data: []byte{1}})
	if !errors.Is(err, ErrTooManyFiles) {
		t.Errorf("sixth AddFile error = %v, want ErrTooManyFiles", err)
	}
}

func TestAddFileStripsDirectories(t *testing.T) {
	d := NewDraft()
	if err := d.AddFile(Attachment{Filename: `C:\Users\me\crash.jpg`, ContentType: "image/jpeg"}); err != nil {
		t.Fatal(err)
	}
	if got := d.Files[0].Filename; got != "crash.jpg" {
		t.Errorf("Filename = %q, want crash.jpg", got)
	}
}

func TestRemoveFileAndPreview(t *testing.T) {
	d := NewDraft()
	d.AddFile(Attachment{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte("hi")})
	d.AddFile(Attachment{Filename: "b.mp4", ContentType: "video/mp4", Data: []byte("vid")})

	url, err := d.Preview(0)
	if err != nil {
		t.Fatal(err)
	}
	if url != "data:image/jpeg;base64,aGk=" {
		t.Errorf("Preview(0) = %q", url)
	}

	if err := d.RemoveFile(0); err != nil {
		t.Fatal(err)
	}
	if len(d.Files) != 1 || d.Files[0].Filename != "b.mp4" {
		t.Errorf("Files after remove = %+v", d.Files)
	}
	if err := d.RemoveFile(3); !errors.Is(err, ErrNoSuchFile) {
		t.Errorf("RemoveFile(3) error = %v, want ErrNoSuchFile", err)
	}
	if _, err := d.Preview(-1); !errors.Is(err, ErrNoSuchFile) {
		t.Errorf("Preview(-1) error = %v, want ErrNoSuchFile", err)
	}
}

func TestDraftValidate(t *testing.T) {
	valid := func() *Draft {
		d := NewDraft()
		d.LocationName = "Variety Square"
		return d
	}

	tests := []struct {
		name    string
		mutate  func(*Draft)
		wantErr error
	}{
		{"valid", func(*Draft) {}, nil},
		{"blank location", func(d *Draft) { d.LocationName = "   " }, ErrLocationRequired},
		{"bad coordinate", func(d *Draft) { d.Location.Lat = 120 }, geo.ErrInvalidCoordinate},
		{"bad severity", func(d *Draft) { d.Severity = "catastrophic" }, ErrInvalidSeverity},
		{"bad vehicle", func(d *Draft) { d.VehicleType = "bicycle" }, ErrInvalidVehicleType},
		{"negative casualties", func(d *Draft) { d.Casualties = -1 }, ErrInvalidCasualties},
		{"fatal accepted", func(d *Draft) { d.Severity = SeverityFatal }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(d)
			if err := d.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDraftReport(t *testing.T) {
	now := time.Date(2025, 10, 24, 9, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	d := NewDraft()
	d.LocationName = "  Wardha Road  "
	d.Casualties = 2
	d.AddFile(Attachment{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte("abc")})

	r := d.Report(now)
	if r.Reporter.Name != AnonymousReporter {
		t.Errorf("reporter = %q, want Anonymous", r.Reporter.Name)
	}
	if r.Location.Name != "Wardha Road" {
		t.Errorf("location name = %q", r.Location.Name)
	}
	if r.Status != StatusPending {
		t.Errorf("status = %q, want %q", r.Status, StatusPending)
	}
	if !r.Timestamp.Equal(now) || r.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp = %v, want %v in UTC", r.Timestamp, now)
	}
	if len(r.Files) != 1 || r.Files[0].Type != "image" || r.Files[0].Size != 3 {
		t.Errorf("files = %+v", r.Files)
	}

	d.ReporterName = "Asha"
	d.Timestamp = now.Add(-time.Hour)
	r = d.Report(now)
	if r.Reporter.Name != "Asha" {
		t.Errorf("reporter = %q, want Asha", r.Reporter.Name)
	}
	if !r.Timestamp.Equal(now.Add(-time.Hour)) {
		t.Errorf("explicit timestamp not kept: %v", r.Timestamp)
	}
}

func TestSubmitMessage(t *testing.T) {
	if got := SubmitMessage(3); !strings.Contains(got, "3 file(s)") {
		t.Errorf("SubmitMessage(3) = %q", got)
	}
}
