package account

import (
	"math"
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
)

// sizeSuffix matches the resize variant Twitter appends to avatar file
// names, e.g. the "_normal" in "me_normal.jpg".
var sizeSuffix = regexp.MustCompile(`_(?:normal|bigger|mini|reasonably_small|\d+x\d+)(\.[^./]+)$`)

// OriginalPicture strips the size qualifier so the URL points at the full
// resolution image.
func OriginalPicture(url string) string {
	return sizeSuffix.ReplaceAllString(url, "$1")
}

const (
	day = 24 * time.Hour
	// month and year are the average Gregorian lengths.
	month = 2629746 * time.Second
	year  = 12 * month
)

// ageBand covers ages below until. Counts are unit multiples rounded half
// up, so a band's lower edge sits half a unit past the previous count.
type ageBand struct {
	until  time.Duration
	unit   time.Duration
	format string
}

var ageBands = []ageBand{
	{44*time.Second + time.Second/2, time.Second, "a few seconds %s"},
	{90 * time.Second, time.Minute, "a minute %s"},
	{44*time.Minute + time.Minute/2, time.Minute, "%d minutes %s"},
	{90 * time.Minute, time.Hour, "an hour %s"},
	{21*time.Hour + time.Hour/2, time.Hour, "%d hours %s"},
	{36 * time.Hour, day, "a day %s"},
	{25*day + day/2, day, "%d days %s"},
	{month + month/2, month, "a month %s"},
	{10*month + month/2, month, "%d months %s"},
	{year + year/2, year, "a year %s"},
	{math.MaxInt64, year, "%d years %s"},
}

// RelativeAge renders t, truncated to the start of its hour in now's
// location, relative to now: "an hour ago", "3 days ago", "2 hours from now".
func RelativeAge(t, now time.Time) string {
	t = t.In(now.Location())
	then := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())

	diff := now.Sub(then)
	if diff < 0 {
		diff = -diff
	}

	band := ageBands[len(ageBands)-1]
	for _, b := range ageBands {
		if diff < b.until {
			band = b
			break
		}
	}

	// humanize floors the count; moving then half a unit away rounds it.
	if then.After(now) {
		then = then.Add(band.unit / 2)
	} else {
		then = then.Add(-band.unit / 2)
	}

	return humanize.CustomRelTime(then, now, "ago", "from now", []humanize.RelTimeMagnitude{
		{D: math.MaxInt64, Format: band.format, DivBy: band.unit},
	})
}
