package utils

import (
	"log/slog"
	"os"
	"time"
)

type Config struct {
	port string

	jwtSecret string
	jwtExpire time.Duration

	adminKey string

	databasePath string
	location     *time.Location
	rsvpDeadline time.Time

	discordAppToken        string
	discordNotifyChannelID string
	reminderRRule          string

	metricCollectionInterval time.Duration

	eventName     string
	eventLocation string
	eventStart    time.Time
}

func NewConfig() *Config {
	location := func() *time.Location {
		timezoneStr := os.Getenv("TIMEZONE")
		var loc *time.Location
		var err error
		switch timezoneStr {
		case "":
			slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
			loc = time.Local
		case "UTC":
			loc = time.UTC
		default:
			loc, err = time.LoadLocation(timezoneStr)
			if err != nil {
				slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
				os.Exit(1)
			}
		}
		slog.Debug("env", "TIMEZONE", timezoneStr)
		return loc
	}()

	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		jwtSecret: func() string {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				slog.Warn("JWT_SECRET is not set")
				secret = "secret"
			}
			return secret
		}(),
		jwtExpire: func() time.Duration {
			jwtExpire := os.Getenv("JWT_EXPIRE")
			if jwtExpire == "" {
				slog.Warn("JWT_EXPIRE is not set")
				jwtExpire = "168h" // 1 week
			}
			duration, err := time.ParseDuration(jwtExpire)
			if err != nil {
				slog.Error("invalid JWT_EXPIRE", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "JWT_EXPIRE", jwtExpire, "duration", duration)
			return duration
		}(),

		adminKey: func() string {
			adminKey := os.Getenv("ADMIN_KEY")
			if adminKey == "" {
				slog.Error("ADMIN_KEY is not set")
				os.Exit(1)
			}
			slog.Debug("env", "ADMIN_KEY", adminKey[0:3]+"...")
			return adminKey
		}(),

		databasePath: func() string {
			databasePath := os.Getenv("DATABASE_PATH")
			if databasePath == "" {
				databasePath = "./sqlite.db"
			}
			slog.Debug("env", "DATABASE_PATH", databasePath)
			return databasePath
		}(),

		location: location,

		rsvpDeadline: func() time.Time {
			deadlineStr := os.Getenv("RSVP_DEADLINE")
			if deadlineStr == "" {
				slog.Warn("RSVP_DEADLINE is not set, submissions never close")
				return time.Date(2099, 12, 31, 23, 59, 59, 0, time.UTC)
			}
			deadline, err := time.ParseInLocation("2006-01-02", deadlineStr, location)
			if err != nil {
				slog.Error("invalid RSVP_DEADLINE, want YYYY-MM-DD", "error", err)
				os.Exit(1)
			}
			// date-only deadline means end of that day
			deadline = deadline.Add(24*time.Hour - time.Second)
			slog.Debug("env", "RSVP_DEADLINE", deadline)
			return deadline
		}(),

		discordAppToken: func() string {
			discordAppToken := os.Getenv("DISCORD_APP_TOKEN")
			if discordAppToken == "" {
				slog.Warn("DISCORD_APP_TOKEN is not set, organizer notifications go to the log only")
				return ""
			}
			slog.Debug("env", "DISCORD_APP_TOKEN", discordAppToken[0:3]+"...")
			return discordAppToken
		}(),
		discordNotifyChannelID: func() string {
			discordNotifyChannelID := os.Getenv("DISCORD_NOTIFY_CHANNEL_ID")
			if discordNotifyChannelID == "" {
				slog.Warn("DISCORD_NOTIFY_CHANNEL_ID is not set, organizer notifications go to the log only")
				return ""
			}
			slog.Debug("env", "DISCORD_NOTIFY_CHANNEL_ID", discordNotifyChannelID)
			return discordNotifyChannelID
		}(),
		metricCollectionInterval: func() time.Duration {
			intervalStr := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if intervalStr == "" {
				intervalStr = "30s"
			}
			interval, err := time.ParseDuration(intervalStr)
			if err != nil {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", interval)
			return interval
		}(),

		reminderRRule: func() string {
			reminderRRule := os.Getenv("REMINDER_RRULE")
			if reminderRRule == "" {
				reminderRRule = "FREQ=WEEKLY"
			}
			slog.Debug("env", "REMINDER_RRULE", reminderRRule)
			return reminderRRule
		}(),

		eventName: func() string {
			eventName := os.Getenv("EVENT_NAME")
			if eventName == "" {
				eventName = "Our wedding"
			}
			slog.Debug("env", "EVENT_NAME", eventName)
			return eventName
		}(),
		eventLocation: func() string {
			eventLocation := os.Getenv("EVENT_LOCATION")
			slog.Debug("env", "EVENT_LOCATION", eventLocation)
			return eventLocation
		}(),
		eventStart: func() time.Time {
			eventDateStr := os.Getenv("EVENT_DATE")
			if eventDateStr == "" {
				slog.Warn("EVENT_DATE is not set, calendar downloads disabled")
				return time.Time{}
			}
			eventStart, err := time.ParseInLocation("2006-01-02 15:04", eventDateStr, location)
			if err != nil {
				slog.Error("invalid EVENT_DATE, want 'YYYY-MM-DD HH:MM'", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "EVENT_DATE", eventStart)
			return eventStart
		}(),
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get JWT_SECRET env
func (c *Config) GetJWTSecret() string {
	return c.jwtSecret
}

// Get JWT_EXPIRE env
func (c *Config) GetJWTExpire() time.Duration {
	return c.jwtExpire
}

// Get ADMIN_KEY env
func (c *Config) GetAdminKey() string {
	return c.adminKey
}

// Get DATABASE_PATH env, default to ./sqlite.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get RSVP_DEADLINE env as end-of-day in the configured timezone
func (c *Config) GetRsvpDeadline() time.Time {
	return c.rsvpDeadline
}

// Get DISCORD_APP_TOKEN env, blank when notifications are log-only
func (c *Config) GetDiscordAppToken() string {
	return c.discordAppToken
}

// Get DISCORD_NOTIFY_CHANNEL_ID env
func (c *Config) GetDiscordNotifyChannelID() string {
	return c.discordNotifyChannelID
}

// Get METRIC_COLLECTION_INTERVAL env, default 30s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get REMINDER_RRULE env, default FREQ=WEEKLY
func (c *Config) GetReminderRRule() string {
	return c.reminderRRule
}

// Get EVENT_NAME env
func (c *Config) GetEventName() string {
	return c.eventName
}

// Get EVENT_LOCATION env
func (c *Config) GetEventLocation() string {
	return c.eventLocation
}

// Get EVENT_DATE env, zero when unset
func (c *Config) GetEventStart() time.Time {
	return c.eventStart
}
