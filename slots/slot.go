package slots

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	// Quarters of an hour per day, the tariff's billing resolution.
	QuartersPerDay  = 96
	QuartersPerHour = 4
)

var (
	tariffLoc   *time.Location
	guiLocation *time.Location = time.UTC
)

func init() {
	var err error
	tariffLoc, err = time.LoadLocation("Europe/Berlin")
	if err != nil {
		panic(fmt.Sprintf("failed to load Berlin location: %v", err))
	}
}

func SetGuiTimezone(timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %v", timezone, err)
	}
	guiLocation = loc
	return nil
}

// Slot identifies one quarter-hour of a UTC day, the primary key used for
// persisted price samples. Quarter is in [0, 95].
type Slot struct {
	Date    string
	Quarter uint8
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %02d:%02d", s.Date, s.Quarter/QuartersPerHour, (s.Quarter%QuartersPerHour)*15)
}

// Time returns the UTC instant at which the slot begins.
func (s Slot) Time() time.Time {
	t, err := time.ParseInLocation(dateLayout, s.Date, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t.Add(time.Duration(s.Quarter) * 15 * time.Minute)
}

func (s Slot) LocalizedString() string {
	t := s.Time()
	if t.IsZero() {
		return s.String()
	}
	return t.In(guiLocation).Format("2006-01-02 15:04")
}

func (s Slot) IsoString() string {
	return s.Time().Format(time.RFC3339)
}

func (s Slot) Add(quarters int) Slot {
	t := s.Time()
	if t.IsZero() {
		return s
	}
	return FromTime(t.Add(time.Duration(quarters) * 15 * time.Minute))
}

func (s Slot) Sub(quarters int) Slot {
	return s.Add(-quarters)
}

func (s Slot) Compare(other Slot) int {
	if s == other {
		return 0
	}
	if s.Date < other.Date {
		return -1
	}
	if s.Date > other.Date {
		return 1
	}
	if s.Quarter < other.Quarter {
		return -1
	}
	return 1
}

func (s Slot) IsZero() bool {
	return s.Date == "" && s.Quarter == 0
}

// FromTime floors t to the containing quarter-hour in UTC.
func FromTime(t time.Time) Slot {
	if t.IsZero() {
		return Slot{}
	}
	t = t.UTC()
	return Slot{
		Date:    t.Format(dateLayout),
		Quarter: uint8(t.Hour()*QuartersPerHour + t.Minute()/15),
	}
}

func FromNow() Slot {
	return FromTime(time.Now())
}

// FromTariffMidnight returns the slot covering the start of the current day
// in the tariff timezone. The fetch horizon and the day average both begin
// here, not at UTC midnight.
func FromTariffMidnight(now time.Time) Slot {
	local := now.In(tariffLoc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tariffLoc)
	return FromTime(midnight)
}

// TariffDayStart is the start of day for t in the tariff timezone.
func TariffDayStart(t time.Time) time.Time {
	local := t.In(tariffLoc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tariffLoc)
}

func InTariffTime(t time.Time) time.Time {
	return t.In(tariffLoc)
}

func FormatTimeInGuiTimezone(t time.Time) string {
	return t.In(guiLocation).Format("2006-01-02 15:04")
}
