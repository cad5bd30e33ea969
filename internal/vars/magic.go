package vars

import (
	"fmt"
	"math/rand"
	"time"
)

// magicValue evaluates one magic: key against the given instant. note is the
// current file's basename (with extension); noExt is the same without its
// extension — both come from the Context's file fields and back the
// note/no/t legacy aliases.
func magicValue(key string, now time.Time, note, noExt string) (string, bool) {
	switch key {
	case "d":
		return fmt.Sprintf("%d", now.Day()), true
	case "dd":
		return fmt.Sprintf("%02d", now.Day()), true
	case "ddd":
		return now.Weekday().String()[:3], true
	case "dddd":
		return now.Weekday().String(), true
	case "M":
		return fmt.Sprintf("%d", int(now.Month())), true
	case "MM":
		return fmt.Sprintf("%02d", int(now.Month())), true
	case "MMM":
		return now.Month().String()[:3], true
	case "MMMM":
		return now.Month().String(), true
	case "yy":
		return fmt.Sprintf("%02d", now.Year()%100), true
	case "yyyy":
		return fmt.Sprintf("%04d", now.Year()), true
	case "h":
		return fmt.Sprintf("%d", hour12(now)), true
	case "hh":
		return fmt.Sprintf("%02d", hour12(now)), true
	case "H":
		return fmt.Sprintf("%d", now.Hour()), true
	case "HH":
		return fmt.Sprintf("%02d", now.Hour()), true
	case "m":
		return fmt.Sprintf("%d", now.Minute()), true
	case "mm":
		return fmt.Sprintf("%02d", now.Minute()), true
	case "s":
		return fmt.Sprintf("%d", now.Second()), true
	case "ss":
		return fmt.Sprintf("%02d", now.Second()), true
	case "z":
		return fmt.Sprintf("%d", now.Nanosecond()/1e6), true
	case "zzz":
		return fmt.Sprintf("%03d", now.Nanosecond()/1e6), true
	case "AP":
		return ampm(now, true), true
	case "A":
		return ampm(now, true), true
	case "ap":
		return ampm(now, false), true
	case "a":
		return ampm(now, false), true
	case "random":
		return fmt.Sprintf("%d", rand.Int63()), true
	case "random_d":
		// A second, independent draw from the same generator — the source
		// calls generate() twice, once per key, so the two are not
		// guaranteed (and in practice don't turn out) equal.
		return fmt.Sprintf("%d", rand.Int63()), true
	case "date":
		return now.Format("2006-01-02"), true
	case "da":
		return now.Format("20060102"), true
	case "time":
		return now.Format("15:04:05"), true
	case "datetime":
		return now.Format("2006-01-02 15:04:05"), true
	case "dt":
		return now.Format("20060102 15:04:05"), true
	case "note":
		return note, true
	case "no":
		return noExt, true
	case "t":
		return noExt, true
	case "w":
		_, week := now.ISOWeek()
		return fmt.Sprintf("%d", week), true
	default:
		return "", false
	}
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	return h
}

func ampm(t time.Time, upper bool) string {
	if t.Hour() < 12 {
		if upper {
			return "AM"
		}
		return "am"
	}
	if upper {
		return "PM"
	}
	return "pm"
}

// magicKeys lists every recognized magic: key, used to drive the
// substitution pass and to keep the cascade order deterministic.
var magicKeys = []string{
	"d", "dd", "ddd", "dddd", "M", "MM", "MMM", "MMMM",
	"yy", "yyyy", "h", "hh", "H", "HH", "m", "mm",
	"s", "ss", "z", "zzz", "AP", "A", "ap", "a",
	"random", "random_d", "date", "da", "time", "datetime", "dt",
	"note", "no", "t", "w",
}
