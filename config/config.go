// Package config loads the settings shared by the recipekit tools.
//
// Values resolve in order: Default(), then a TOML file, then RECIPEKIT_*
// environment variables. Command flags are applied last by each binary.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "recipekit.toml"

// EnvPrefix prefixes every environment override, e.g. RECIPEKIT_LOG_LEVEL.
const EnvPrefix = "RECIPEKIT"

type Config struct {
	Log       LogConfig       `toml:"log" envconfig:"LOG"`
	OCR       OCRConfig       `toml:"ocr" envconfig:"OCR"`
	Cookbook  CookbookConfig  `toml:"cookbook" envconfig:"COOKBOOK"`
	Universal UniversalConfig `toml:"universal" envconfig:"UNIVERSAL"`
	Importer  ImporterConfig  `toml:"importer" envconfig:"IMPORTER"`
	Journal   JournalConfig   `toml:"journal" envconfig:"JOURNAL"`
	Browser   BrowserConfig   `toml:"browser" envconfig:"BROWSER"`
	AnyList   AnyListConfig   `toml:"anylist" envconfig:"ANYLIST"`
	Output    OutputConfig    `toml:"output" envconfig:"OUTPUT"`
}

type LogConfig struct {
	Level  string `toml:"level" envconfig:"LEVEL"`
	Format string `toml:"format" envconfig:"FORMAT"`
}

type OCRConfig struct {
	Enabled   bool     `toml:"enabled" envconfig:"ENABLED"`
	Languages []string `toml:"languages" envconfig:"LANGUAGES"`
	DPI       int      `toml:"dpi" envconfig:"DPI"`
	PSM       int      `toml:"psm" envconfig:"PSM"`
	CacheSize int      `toml:"cache_size" envconfig:"CACHE_SIZE"`
	Scale     float64  `toml:"scale" envconfig:"SCALE"`
}

// CookbookConfig drives the two-column cookbook extractor.
type CookbookConfig struct {
	StartPage       int     `toml:"start_page" envconfig:"START_PAGE"`
	PageStride      int     `toml:"page_stride" envconfig:"PAGE_STRIDE"`
	ColumnSplit     float64 `toml:"column_split" envconfig:"COLUMN_SPLIT"`
	PageWidth       float64 `toml:"page_width" envconfig:"PAGE_WIDTH"`
	GarbleThreshold float64 `toml:"garble_threshold" envconfig:"GARBLE_THRESHOLD"`
	SourceURL       string  `toml:"source_url" envconfig:"SOURCE_URL"`
	FooterPattern   string  `toml:"footer_pattern" envconfig:"FOOTER_PATTERN"`
	ForceOCR        bool    `toml:"force_ocr" envconfig:"FORCE_OCR"`
	OCRDebug        bool    `toml:"ocr_debug" envconfig:"OCR_DEBUG"`
	ExtractImages   bool    `toml:"extract_images" envconfig:"EXTRACT_IMAGES"`
}

type UniversalConfig struct {
	ConfidenceThreshold float64  `toml:"confidence_threshold" envconfig:"CONFIDENCE_THRESHOLD"`
	MaxPages            int      `toml:"max_pages" envconfig:"MAX_PAGES"`
	MoveProcessed       bool     `toml:"move_processed" envconfig:"MOVE_PROCESSED"`
	Include             []string `toml:"include" envconfig:"INCLUDE"`
	PerRecordYAML       bool     `toml:"per_record_yaml" envconfig:"PER_RECORD_YAML"`
}

type ImporterConfig struct {
	Plugin      string   `toml:"plugin" envconfig:"PLUGIN"`
	PluginOut   string   `toml:"plugin_output_dir" envconfig:"PLUGIN_OUTPUT_DIR"`
	StopOnError bool     `toml:"stop_on_error" envconfig:"STOP_ON_ERROR"`
	Timeout     Duration `toml:"timeout" envconfig:"TIMEOUT"`
}

type JournalConfig struct {
	Path     string `toml:"path" envconfig:"PATH"`
	Disabled bool   `toml:"disabled" envconfig:"DISABLED"`
}

type BrowserConfig struct {
	UserDataDir     string   `toml:"user_data_dir" envconfig:"USER_DATA_DIR"`
	Profile         string   `toml:"profile" envconfig:"PROFILE"`
	Headless        bool     `toml:"headless" envconfig:"HEADLESS"`
	PageLoadTimeout Duration `toml:"page_load_timeout" envconfig:"PAGE_LOAD_TIMEOUT"`
	ExtensionWait   Duration `toml:"extension_wait" envconfig:"EXTENSION_WAIT"`
	SaveWait        Duration `toml:"save_wait" envconfig:"SAVE_WAIT"`
	BetweenRecipes  Duration `toml:"between_recipes" envconfig:"BETWEEN_RECIPES"`
	// ShortcutModifier is "meta" (macOS Cmd) or "ctrl".
	ShortcutModifier string `toml:"shortcut_modifier" envconfig:"SHORTCUT_MODIFIER"`
	ShortcutKey      string `toml:"shortcut_key" envconfig:"SHORTCUT_KEY"`
}

type AnyListConfig struct {
	URL          string   `toml:"url" envconfig:"URL"`
	Email        string   `toml:"email" envconfig:"EMAIL"`
	Password     string   `toml:"password" envconfig:"PASSWORD"`
	ScrollPause  Duration `toml:"scroll_pause" envconfig:"SCROLL_PAUSE"`
	PageLoadWait Duration `toml:"page_load_wait" envconfig:"PAGE_LOAD_WAIT"`
}

type OutputConfig struct {
	Dir string `toml:"dir" envconfig:"DIR"`
}

// Default returns the built-in settings for the bundled cookbook layout.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "console"},
		OCR: OCRConfig{
			Enabled:   true,
			Languages: []string{"eng"},
			DPI:       200,
			CacheSize: 64,
			Scale:     1.5,
		},
		Cookbook: CookbookConfig{
			StartPage:       6,
			PageStride:      2,
			ColumnSplit:     280,
			PageWidth:       768,
			GarbleThreshold: 0.25,
			SourceURL:       "https://thewoksoflife.com",
			FooterPattern:   `(?i)THE WOKS OF LIFE\s*\|.*`,
			ExtractImages:   true,
		},
		Universal: UniversalConfig{
			ConfidenceThreshold: 0.45,
			MaxPages:            50,
			MoveProcessed:       true,
			Include:             []string{"*.pdf", "*.txt", "*.md", "*.markdown", "*.csv"},
		},
		Importer: ImporterConfig{
			Timeout: Duration{30 * time.Second},
		},
		Journal: JournalConfig{Path: "recipekit-journal.db"},
		Browser: BrowserConfig{
			Profile:          "Default",
			PageLoadTimeout:  Duration{30 * time.Second},
			ExtensionWait:    Duration{3 * time.Second},
			SaveWait:         Duration{2 * time.Second},
			BetweenRecipes:   Duration{2 * time.Second},
			ShortcutModifier: "meta",
			ShortcutKey:      "a",
		},
		AnyList: AnyListConfig{
			URL:          "https://www.anylist.com/web",
			ScrollPause:  Duration{2 * time.Second},
			PageLoadWait: Duration{3 * time.Second},
		},
		Output: OutputConfig{Dir: "./out"},
	}
}

// Load resolves the configuration. An explicit path must exist; an empty
// path falls back to DefaultFile when present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := decodeFile(path, cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("apply environment: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := toml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// Duration is a time.Duration written as "2s" in TOML and the environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
