package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HourWindowThrottle denies requests whose wall-clock hour falls inside
// [fromHour, toHour]. The clock source is injectable for tests.
func HourWindowThrottle(fromHour, toHour int, now func() time.Time) echo.MiddlewareFunc {
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			hour := now().Hour()
			if fromHour <= hour && hour <= toHour {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Service unavailable during this time window")
			}
			return next(c)
		}
	}
}

// WorkingHoursThrottle blocks pet writes during the nightly 03:00-05:59
// maintenance window.
func WorkingHoursThrottle() echo.MiddlewareFunc {
	return HourWindowThrottle(3, 5, nil)
}

// LunchBreakThrottle blocks post writes over the 13:00-14:59 lunch window.
// Wired in only when the LUNCH_THROTTLE config flag is set.
func LunchBreakThrottle() echo.MiddlewareFunc {
	return HourWindowThrottle(13, 14, nil)
}
