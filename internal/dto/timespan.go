package dto

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeSpan is a duration that travels as "hh:mm:ss", with an optional
// "d." day prefix once it reaches 24 hours.  Sub-second precision is dropped.
type TimeSpan time.Duration

// Duration converts back to a time.Duration.
func (t TimeSpan) Duration() time.Duration { return time.Duration(t) }

func (t TimeSpan) String() string {
	d := time.Duration(t).Truncate(time.Second)
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if days > 0 {
		return fmt.Sprintf("%s%d.%02d:%02d:%02d", sign, days, h, m, s)
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}

func (t TimeSpan) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeSpan) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("time span must be a string: %w", err)
	}
	v, err := ParseTimeSpan(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// maxDays keeps days plus a sub-day remainder inside time.Duration.
const maxDays = math.MaxInt64/int64(24*time.Hour) - 1

// ParseTimeSpan accepts "hh:mm", "hh:mm:ss", "hh:mm:ss.fff" and the same
// forms prefixed with "d." for whole days.
func ParseTimeSpan(s string) (TimeSpan, error) {
	raw := strings.TrimSpace(s)
	neg := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")

	var days int64
	colon := strings.IndexByte(raw, ':')
	if colon < 0 {
		return 0, fmt.Errorf("invalid time span %q", s)
	}
	if dot := strings.IndexByte(raw[:colon], '.'); dot >= 0 {
		n, err := strconv.ParseInt(raw[:dot], 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time span %q", s)
		}
		if n > maxDays {
			return 0, fmt.Errorf("time span %q out of range", s)
		}
		days = n
		raw = raw[dot+1:]
	}

	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time span %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hours in time span %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minutes in time span %q", s)
	}
	var sec float64
	if len(parts) == 3 {
		sec, err = strconv.ParseFloat(parts[2], 64)
		if err != nil || sec < 0 || sec >= 60 {
			return 0, fmt.Errorf("invalid seconds in time span %q", s)
		}
	}

	d := time.Duration(days)*24*time.Hour +
		time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second))
	if neg {
		d = -d
	}
	return TimeSpan(d), nil
}
