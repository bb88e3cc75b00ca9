package slideshow

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"
)

const (
	exifDateLayout = "2006:01:02 15:04:05"
	infoDateLayout = "Monday January 2, 2006 15:04"
)

// ResolvedDate is the capture date of an image, Valid is false when it is absent or could not
// be parsed.
type ResolvedDate struct {
	Time  time.Time
	Valid bool
}

// ResolveDate parses the original capture timestamp. EXIF and RFC 3339 layouts are tried first,
// then a permissive parser.
func ResolveDate(exif *ExifInfo) ResolvedDate {
	if exif == nil || strings.TrimSpace(exif.DateTimeOriginal) == "" {
		return ResolvedDate{}
	}
	raw := strings.TrimSpace(exif.DateTimeOriginal)

	if t, err := time.ParseInLocation(exifDateLayout, raw, time.Local); err == nil {
		return ResolvedDate{Time: t, Valid: true}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ResolvedDate{Time: t.Local(), Valid: true}
	}
	t, err := dateparse.ParseIn(raw, time.Local)
	if err != nil {
		slog.Info("failed to parse image date", "dateTimeOriginal", raw, "error", err)
		return ResolvedDate{}
	}
	return ResolvedDate{Time: t, Valid: true}
}

// Info is the content of the info overlay.
type Info struct {
	Header string
	Lines  []string
}

// InfoFormatter composes the info overlay text from the configured fields.
type InfoFormatter struct {
	fields    []string
	noFileExt bool
	now       func() time.Time
}

func NewInfoFormatter(fields []string, noFileExt bool) *InfoFormatter {
	return &InfoFormatter{
		fields:    fields,
		noFileExt: noFileExt,
		now:       time.Now,
	}
}

// Format returns the "N of M" header and one line per resolvable field, in configured order.
func (f *InfoFormatter) Format(p ImagePayload, date ResolvedDate) Info {
	info := Info{Header: fmt.Sprintf("%d of %d", p.Index, p.Total)}

	for _, field := range f.fields {
		var line string
		switch field {
		case "date":
			if date.Valid {
				line = date.Time.Format(infoDateLayout)
			}
		case "since":
			if date.Valid {
				line = humanize.RelTime(date.Time, f.now(), "ago", "from now")
			}
		case "name":
			line = f.name(p.Path)
		case "geo":
			line = geo(p.ExifInfo)
		case "people":
			line = people(p.People)
		default:
			slog.Warn("not a valid value for imageInfo, please check your configuration", "field", field)
		}
		if line != "" {
			info.Lines = append(info.Lines, line)
		}
	}
	return info
}

func (f *InfoFormatter) name(path string) string {
	name := path[strings.LastIndex(path, "/")+1:]
	if f.noFileExt {
		// names without an extension are kept as is
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[:i]
		}
	}
	return name
}

func geo(exif *ExifInfo) string {
	if exif == nil {
		return ""
	}
	location := exif.City
	if exif.State != "" {
		location += ", " + exif.State
	}
	if exif.Country != "" {
		location += ", " + exif.Country
	}
	// a missing city leaves a leading ", "
	if strings.HasPrefix(location, ",") {
		location = location[2:]
	}
	return location
}

func people(persons []Person) string {
	names := make([]string, 0, len(persons))
	for _, person := range persons {
		if person.Name == "" {
			continue
		}
		names = append(names, person.Name)
	}
	return strings.Join(names, ", ")
}
