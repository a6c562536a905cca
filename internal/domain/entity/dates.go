package entity

import "time"

// DateOnly trunca un instante a su fecha de negocio (medianoche UTC).
// Todas las fechas efectivas del libro y de los conteos se guardan así.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
