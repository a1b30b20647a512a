package pcp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// ConfigEnv is the environment variable holding the directory of conf.toml.
	ConfigEnv = "PCP_CONFIG"
	// DateFormat is the format of the calendar dates accepted in scenarios.
	DateFormat = "2006-01-02 15:04:05"
)

// Ephemeris backends.
const (
	BackendJPLLP  = "jpllp"
	BackendVSOP87 = "vsop87"
)

// Config is the library configuration.
type Config struct {
	Backend   string // Ephemeris backend
	VSOP87Dir string // Directory of the VSOP87B files
	MaxRevs   int    // Lambert revolutions
}

// DefaultConfig uses the JPL low precision ephemeris and zero revolution transfers.
func DefaultConfig() Config {
	return Config{Backend: BackendJPLLP}
}

// LoadConfig reads conf.toml from the provided directory, or from $PCP_CONFIG if dir is empty.
// The defaults are returned when no directory is set or no conf.toml is found.
func LoadConfig(dir string) (Config, error) {
	if dir == "" {
		dir = os.Getenv(ConfigEnv)
	}
	conf := DefaultConfig()
	if dir == "" {
		return conf, nil
	}
	v := viper.New()
	v.SetConfigName("conf")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	v.SetDefault("ephemeris.backend", BackendJPLLP)
	v.SetDefault("lambert.max_revs", 0)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return conf, nil
		}
		return conf, fmt.Errorf("%s/conf.toml: %w", dir, err)
	}
	conf.Backend = strings.ToLower(v.GetString("ephemeris.backend"))
	conf.VSOP87Dir = v.GetString("ephemeris.vsop87_dir")
	conf.MaxRevs = v.GetInt("lambert.max_revs")
	if conf.VSOP87Dir != "" && !filepath.IsAbs(conf.VSOP87Dir) {
		conf.VSOP87Dir = filepath.Join(dir, conf.VSOP87Dir)
	}
	if err := conf.Validate(); err != nil {
		return conf, fmt.Errorf("%s/conf.toml: %w", dir, err)
	}
	return conf, nil
}

// Validate returns an error if the configuration is unusable.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendJPLLP:
	case BackendVSOP87:
		if c.VSOP87Dir == "" {
			return errors.New("ephemeris.vsop87_dir is required with the vsop87 backend")
		}
	default:
		return fmt.Errorf("unknown ephemeris backend '%s' (expected %s or %s)", c.Backend, BackendJPLLP, BackendVSOP87)
	}
	if c.MaxRevs < 0 {
		return fmt.Errorf("lambert.max_revs must be positive, got %d", c.MaxRevs)
	}
	return nil
}

// Ephemeris returns the configured ephemeris provider.
func (c Config) Ephemeris() EphemerisProvider {
	if c.Backend == BackendVSOP87 {
		return NewVSOP87(c.VSOP87Dir)
	}
	return JPLLowPrecision{}
}

// Solver returns the configured transfer solver.
func (c Config) Solver() TransferSolver {
	return LambertSolver{MaxRevs: c.MaxRevs}
}

// Scenario is a non interactive porkchop plot definition.
type Scenario struct {
	Name       string
	FilePrefix string
	Verbose    bool
	Workers    int
	Policy     FailurePolicy
	Timeout    time.Duration
	Output     string // Bucket URL
	Departure  string
	Arrival    string
	Scan       ScanConfig
}

// LoadScenario reads the scenario TOML at the provided path.
// Window bounds are either MJD2000 numbers or dates formatted as DateFormat.
func LoadScenario(path string) (*Scenario, error) {
	if filepath.Ext(path) == "" {
		path += ".toml"
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("general.workers", 1)
	v.SetDefault("general.policy", SkipInfeasible.String())
	v.SetDefault("scan.step", CoarseStep)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s := &Scenario{
		Name:       name,
		FilePrefix: v.GetString("general.fileprefix"),
		Verbose:    v.GetBool("general.verbose"),
		Workers:    v.GetInt("general.workers"),
		Timeout:    v.GetDuration("general.timeout"),
		Output:     v.GetString("general.output"),
		Departure:  v.GetString("departure.planet"),
		Arrival:    v.GetString("arrival.planet"),
	}
	if s.FilePrefix == "" {
		s.FilePrefix = name
	}
	var err error
	if s.Policy, err = ParseFailurePolicy(v.GetString("general.policy")); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	for _, bound := range []struct {
		key   string
		dst   *float64
		dates bool
	}{
		{"departure.from", &s.Scan.Departure.From, true},
		{"departure.until", &s.Scan.Departure.Until, true},
		{"flight.from", &s.Scan.Flight.From, false},
		{"flight.until", &s.Scan.Flight.Until, false},
	} {
		if !v.IsSet(bound.key) {
			return nil, fmt.Errorf("scenario %s: %s is missing", path, bound.key)
		}
		if *bound.dst, err = epochValue(v.Get(bound.key), bound.dates); err != nil {
			return nil, fmt.Errorf("scenario %s: could not read %s: %w", path, bound.key, err)
		}
	}
	s.Scan.Step = v.GetFloat64("scan.step")
	for _, name := range []string{s.Departure, s.Arrival} {
		if _, err := CelestialObjectFromString(name); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", path, err)
		}
	}
	if err := s.Scan.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// epochValue returns the value of a TOML number. If dates are allowed, date strings and TOML dates are
// converted to MJD2000.
func epochValue(raw interface{}, dates bool) (float64, error) {
	switch val := raw.(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case int:
		return float64(val), nil
	case time.Time:
		if !dates {
			return 0, fmt.Errorf("expected a number of days, got %s", val)
		}
		return TimeToMJD2000(val), nil
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f, nil
		}
		if !dates {
			return 0, fmt.Errorf("expected a number of days, got '%s'", val)
		}
		dt, err := time.Parse(DateFormat, strings.TrimSpace(val))
		if err != nil {
			return 0, err
		}
		return TimeToMJD2000(dt), nil
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", raw, raw)
	}
}
