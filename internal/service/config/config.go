package config

import "time"

type Config struct {
	SMSAddr        string
	SMSToken       string
	MinLeadDays    int
	RemindInterval time.Duration
	TimeZone       string
}
