package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Browser     BrowserConfig
	Audit       AuditConfig
	Screenshot  ScreenshotConfig
	Performance PerformanceConfig
	Report      ReportConfig
	Log         LogConfig
	Input       InputConfig
}

// ViewportConfig is one device-emulation profile.
type ViewportConfig struct {
	Width             int
	Height            int
	DeviceScaleFactor float64
	Mobile            bool
}

// BrowserConfig controls the shared browser session.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// Bin overrides the Chromium binary path.
	Bin string

	// LaunchArgs are extra chromium flags, e.g. "--lang=en-GB".
	LaunchArgs []string

	// DefaultViewport is the desktop profile every audit starts and ends in.
	DefaultViewport ViewportConfig // default: 1366x900

	// MobileViewport is the profile used for the mobile homepage capture.
	MobileViewport ViewportConfig // default: 375x812
}

// AuditConfig controls per-site audit behavior.
type AuditConfig struct {
	// NavigationTimeout bounds each page navigation.
	NavigationTimeout time.Duration // default: 30s

	// PageLoadDelay is the settle wait before each screenshot.
	PageLoadDelay time.Duration // default: 2s

	// PopupDetectionDelay is the settle wait before the popup scan, long
	// enough for delayed popups to render.
	PopupDetectionDelay time.Duration // default: 5s

	// MaxProductPages caps how many product pages are captured per site.
	MaxProductPages int // default: 3

	// DelayBetweenAudits paces sequential sites in a batch.
	DelayBetweenAudits time.Duration // default: 2s
}

// ScreenshotConfig controls screenshot persistence.
type ScreenshotConfig struct {
	FullPage bool   // default: true
	Format   string // "png" or "jpeg"; default: "png"
	Quality  int    // jpeg only; default: 80
}

// PerformanceConfig controls the performance check thresholds.
type PerformanceConfig struct {
	// SlowLoadTime is the load-time threshold above which a Performance
	// issue is raised.
	SlowLoadTime time.Duration // default: 3s
}

// ReportConfig controls artifact placement and rendering.
type ReportConfig struct {
	OutputDir string // default: "audits"
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "console"; default: "console"
}

// InputConfig lists the target-site sources.
type InputConfig struct {
	// Sites is the inline target URL list.
	Sites []string

	// CSV is an optional CSV file whose first column holds URLs.
	CSV string

	// PlacesQuery is an optional Google Places text search whose business
	// websites are added to the target list. Requires PlacesAPIKey.
	PlacesQuery  string
	PlacesAPIKey string
}

// Load reads configuration from an optional YAML file plus LEADSIGHT_*
// environment overrides. Unrecognized keys are ignored; missing keys fall
// back to the documented defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("LEADSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("leadsight")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// A config file is optional; only a malformed one is fatal.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{
		Browser: BrowserConfig{
			Headless:   v.GetBool("browser.headless"),
			NoSandbox:  v.GetBool("browser.noSandbox"),
			Bin:        v.GetString("browser.bin"),
			LaunchArgs: v.GetStringSlice("browser.launchArgs"),
			DefaultViewport: ViewportConfig{
				Width:             v.GetInt("browser.defaultViewport.width"),
				Height:            v.GetInt("browser.defaultViewport.height"),
				DeviceScaleFactor: 1,
			},
			MobileViewport: ViewportConfig{
				Width:             v.GetInt("browser.mobileViewport.width"),
				Height:            v.GetInt("browser.mobileViewport.height"),
				DeviceScaleFactor: 2,
				Mobile:            true,
			},
		},
		Audit: AuditConfig{
			NavigationTimeout:   msDuration(v, "audit.navigationTimeoutMs"),
			PageLoadDelay:       msDuration(v, "audit.pageLoadDelayMs"),
			PopupDetectionDelay: msDuration(v, "audit.popupDetectionDelayMs"),
			MaxProductPages:     v.GetInt("audit.maxProductPages"),
			DelayBetweenAudits:  msDuration(v, "audit.delayBetweenAuditsMs"),
		},
		Screenshot: ScreenshotConfig{
			FullPage: v.GetBool("screenshot.fullPage"),
			Format:   v.GetString("screenshot.format"),
			Quality:  v.GetInt("screenshot.quality"),
		},
		Performance: PerformanceConfig{
			SlowLoadTime: msDuration(v, "performance.slowLoadTimeMs"),
		},
		Report: ReportConfig{
			OutputDir: v.GetString("report.outputDir"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Input: InputConfig{
			Sites:        v.GetStringSlice("sites"),
			CSV:          v.GetString("input.csv"),
			PlacesQuery:  v.GetString("input.placesQuery"),
			PlacesAPIKey: v.GetString("input.placesApiKey"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.noSandbox", false)
	v.SetDefault("browser.defaultViewport.width", 1366)
	v.SetDefault("browser.defaultViewport.height", 900)
	v.SetDefault("browser.mobileViewport.width", 375)
	v.SetDefault("browser.mobileViewport.height", 812)

	v.SetDefault("audit.navigationTimeoutMs", 30000)
	v.SetDefault("audit.pageLoadDelayMs", 2000)
	v.SetDefault("audit.popupDetectionDelayMs", 5000)
	v.SetDefault("audit.maxProductPages", 3)
	v.SetDefault("audit.delayBetweenAuditsMs", 2000)

	v.SetDefault("screenshot.fullPage", true)
	v.SetDefault("screenshot.format", "png")
	v.SetDefault("screenshot.quality", 80)

	v.SetDefault("performance.slowLoadTimeMs", 3000)

	v.SetDefault("report.outputDir", "audits")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func msDuration(v *viper.Viper, key string) time.Duration {
	return time.Duration(v.GetInt(key)) * time.Millisecond
}
