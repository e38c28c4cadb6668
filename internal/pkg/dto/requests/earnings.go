package requests

import "time"

type DoctorEarnings struct {
	DoctorID string
	From     *time.Time
	To       *time.Time
}

type PlatformEarnings struct {
	From *time.Time
	To   *time.Time
}
