package mqtt

import "github.com/kilianp07/smartpark/core/model"

// Publisher pushes pricing information to on-site signage over MQTT.
type Publisher interface {
	// PublishCurrent sends the tier and price in effect.
	PublishCurrent(cur model.CurrentTier) error

	// PublishSchedule sends one message per day of the weekly schedule.
	PublishSchedule(s model.WeeklySchedule) error
}
