// Package config decodes a typed value from a config file, defaults and
// environment variables through viper, and can follow later edits of the
// file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// ErrNoFile is returned by Watch on a Source loaded without a file.
var ErrNoFile = errors.New("config: no file to watch")

const defaultDebounce = 100 * time.Millisecond

type settings struct {
	defaults  map[string]any
	envPrefix string
	debounce  time.Duration
}

type Option func(*settings)

func WithDefaults(defaults map[string]any) Option {
	return func(s *settings) {
		if s.defaults == nil {
			s.defaults = make(map[string]any, len(defaults))
		}
		for k, v := range defaults {
			s.defaults[k] = v
		}
	}
}

// WithEnv lets PREFIX_SECTION_KEY environment variables override keys that
// have a default or appear in the file.
func WithEnv(prefix string) Option {
	return func(s *settings) { s.envPrefix = prefix }
}

// WithDebounce sets how long Watch waits after the last write event before
// reloading. Editors often save a file in several steps.
func WithDebounce(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// Source is a loaded configuration of type T. It is safe for concurrent use.
type Source[T any] struct {
	v        *viper.Viper
	path     string
	debounce time.Duration

	// mu guards v: viper is not safe for reads concurrent with a reload.
	mu sync.RWMutex
}

// Load reads path and decodes it into T once to validate it. An empty path
// uses defaults and environment only.
func Load[T any](path string, opts ...Option) (*Source[T], error) {
	st := settings{debounce: defaultDebounce}
	for _, opt := range opts {
		if opt != nil {
			opt(&st)
		}
	}

	v := viper.New()
	for k, d := range st.defaults {
		v.SetDefault(k, d)
	}
	if st.envPrefix != "" {
		v.SetEnvPrefix(st.envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	s := &Source[T]{v: v, path: path, debounce: st.debounce}
	if _, err := s.Get(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file the source was loaded from, or "".
func (s *Source[T]) Path() string { return s.path }

// Get decodes the current configuration into a fresh T, so values returned
// to different callers never share maps or slices.
func (s *Source[T]) Get() (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var val T
	if err := s.v.Unmarshal(&val); err != nil {
		return val, fmt.Errorf("decode config: %w", err)
	}
	return val, nil
}

// reload rereads the file. On failure viper keeps the previous contents.
func (s *Source[T]) reload() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var val T
	if err := s.v.ReadInConfig(); err != nil {
		return val, fmt.Errorf("reload %s: %w", s.path, err)
	}
	if err := s.v.Unmarshal(&val); err != nil {
		return val, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return val, nil
}
