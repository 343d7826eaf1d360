package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the app-wide configuration. It is loaded once at startup.
var Conf *Config

type (
	ServerConfig struct {
		Host               string
		Port               int
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          int
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// SchoolConfig carries the institutional constants consumed by the
	// timetable, attendance and assessment engines.
	SchoolConfig struct {
		Weekdays []time.Weekday
		Periods  []string // teaching period labels, in daily order
		// markers interleaved into the period sequence; never schedulable
		BreakAfterPeriod string // morning break comes right after this period
		LunchAfterPeriod string // lunch comes right after this period
		BreakLabel       string
		LunchLabel       string

		DateFormat string

		AttendanceThreshold float64 // min attendance %, inclusive
		CIEThreshold        int     // min CIE score, inclusive
		CIEMarkLimit        int     // number of marks summed for CIE
		CIEDivisor          float64
	}

	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		AppName  string
		Build    string
		WorkDir  string

		SecretKey        string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		School   SchoolConfig
	}
)

func (conf DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", conf.Host, conf.Port)
}

func init() {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Shule")
	v.SetDefault("secretKey", "w#0y5l&#%=1b)-3p*8ncv+a4_jx7qi(u$!fhz9e@2dskrg6tmo")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverPort", 8000)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "shule")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("dbUser", "")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("dateFormat", "2006-01-02")
	v.SetDefault("attendanceThreshold", 75.0)
	v.SetDefault("cieThreshold", 20)
	v.SetDefault("cieMarkLimit", 3)
	v.SetDefault("cieDivisor", 3.0)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Debug:    v.GetBool("debug"),
		TestMode: env == "TEST",
		Env:      env,
		AppName:  v.GetString("appName"),
		Build:    v.GetString("build"),
		WorkDir:  wd,

		SecretKey:        v.GetString("secretKey"),
		DefaultFromEmail: mail.Address{Address: v.GetString("defaultFromEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Port:               v.GetInt("serverPort"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetInt("dbPort"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		School: SchoolConfig{
			Weekdays: []time.Weekday{
				time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
			},
			Periods:          []string{"1", "2", "3", "4", "5", "6", "7"},
			BreakAfterPeriod: "2",
			LunchAfterPeriod: "4",
			BreakLabel:       "Break",
			LunchLabel:       "Lunch",

			DateFormat: v.GetString("dateFormat"),

			AttendanceThreshold: v.GetFloat64("attendanceThreshold"),
			CIEThreshold:        v.GetInt("cieThreshold"),
			CIEMarkLimit:        v.GetInt("cieMarkLimit"),
			CIEDivisor:          v.GetFloat64("cieDivisor"),
		},
	}
}
