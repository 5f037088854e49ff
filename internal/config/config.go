// Package config loads idgend's configuration from environment variables,
// with an optional JSON file supplying defaults beneath them.
//
// Grounded on the original Rust implementation's config.rs, which layers
// confique's env-then-file precedence over a nested AppConfig/IdGenConfig
// struct. No configuration library appears anywhere in the retrieval pack,
// so this package follows the stdlib idiom the teacher repository uses
// throughout its own cmd/ and examples/ binaries: encoding/json plus
// os.Getenv, nothing more.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/sxyafiq/idgen"
)

// IDGen mirrors the original's IdGenConfig: the fields NewLayout needs,
// plus the file-level defaults confique calls out explicitly.
type IDGen struct {
	InstanceID           uint64 `json:"instance_id"`
	TimestampBits        uint   `json:"timestamp_bits"`
	CounterBits          uint   `json:"counter_bits"`
	InstanceIDBits       uint   `json:"instance_id_bits"`
	DomainIDBits         uint   `json:"domain_id_bits"`
	EpochStartSecond     uint64 `json:"epoch_start_second"`
	ReservedSecondsCount uint64 `json:"reserved_seconds_count"`
}

// App is the top-level configuration, matching the original's nested
// AppConfig{ idgen: IdGenConfig }.
type App struct {
	IDGen IDGen `json:"idgen"`

	// ListenAddr is the HTTP adapter's bind address. Not present in the
	// original (Rocket takes its own Rocket.toml); added because this
	// system's HTTP adapter is its own component (SPEC_FULL.md §4.9).
	ListenAddr string `json:"listen_addr"`

	// DomainNames optionally assigns stable string names to domain
	// indices (SPEC_FULL.md §4.10), supplied as a CSV env var or JSON
	// array in the config file.
	DomainNames []string `json:"domain_names"`

	// RedisAddr, if set, enables instance-ID leasing at startup
	// (SPEC_FULL.md §4.13). Empty means the configured InstanceID is
	// used directly, with no coordination.
	RedisAddr string `json:"redis_addr"`

	// AuditDBPath, if set, enables the SQLite audit sink
	// (SPEC_FULL.md §4.12). Empty disables auditing.
	AuditDBPath string `json:"audit_db_path"`

	// PeerAddrs lists every idgend instance in the deployment (this one
	// included), host:port form. When it names more than one address,
	// cmd/idgend starts the rendezvous-hash instance router
	// (SPEC_FULL.md §4.11) in front of the HTTP adapter.
	PeerAddrs []string `json:"peer_addrs"`

	// SelfAddr is this process's own entry in PeerAddrs — the address
	// other instances would use to reach it. Requests whose routing key
	// maps to SelfAddr are served locally instead of proxied.
	SelfAddr string `json:"self_addr"`
}

func defaults() App {
	return App{
		IDGen: IDGen{
			TimestampBits:        35,
			CounterBits:          14,
			InstanceIDBits:       6,
			DomainIDBits:         8,
			EpochStartSecond:     1672531200,
			ReservedSecondsCount: 60,
		},
		ListenAddr: ":8080",
	}
}

// Load builds an App by starting from defaults(), overlaying filePath's
// JSON contents if filePath is non-empty and exists, then overlaying
// environment variables — matching the original's env()-then-file()
// precedence (env wins), despite the reversed layering order.
func Load(filePath string) (App, error) {
	cfg := defaults()

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			if !os.IsNotExist(err) {
				return App{}, fmt.Errorf("config: reading %s: %w", filePath, err)
			}
		} else if err := json.Unmarshal(data, &cfg); err != nil {
			return App{}, fmt.Errorf("config: parsing %s: %w", filePath, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return App{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *App) error {
	if err := overrideUint64("INSTANCE_ID", &cfg.IDGen.InstanceID); err != nil {
		return err
	}
	if err := overrideUint("TIMESTAMP_BITS", &cfg.IDGen.TimestampBits); err != nil {
		return err
	}
	if err := overrideUint("COUNTER_BITS", &cfg.IDGen.CounterBits); err != nil {
		return err
	}
	if err := overrideUint("INSTANCE_ID_BITS", &cfg.IDGen.InstanceIDBits); err != nil {
		return err
	}
	if err := overrideUint("DOMAIN_ID_BITS", &cfg.IDGen.DomainIDBits); err != nil {
		return err
	}
	if err := overrideUint64("EPOCH_START_SECOND", &cfg.IDGen.EpochStartSecond); err != nil {
		return err
	}
	if err := overrideUint64("RESERVED_SECONDS_COUNT", &cfg.IDGen.ReservedSecondsCount); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.RedisAddr = v
	}
	if v, ok := os.LookupEnv("AUDIT_DB_PATH"); ok {
		cfg.AuditDBPath = v
	}
	if v, ok := os.LookupEnv("DOMAIN_NAMES"); ok {
		cfg.DomainNames = splitCSV(v)
	}
	if v, ok := os.LookupEnv("PEER_ADDRS"); ok {
		cfg.PeerAddrs = splitCSV(v)
	}
	if v, ok := os.LookupEnv("SELF_ADDR"); ok {
		cfg.SelfAddr = v
	}
	return nil
}

func overrideUint64(envKey string, dst *uint64) error {
	v, ok := os.LookupEnv(envKey)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("config: %s=%q: %w", envKey, v, err)
	}
	*dst = parsed
	return nil
}

func overrideUint(envKey string, dst *uint) error {
	var v64 uint64
	v64 = uint64(*dst)
	if err := overrideUint64(envKey, &v64); err != nil {
		return err
	}
	*dst = uint(v64)
	return nil
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// LayoutParams adapts the loaded config into idgen.LayoutParams.
func (a App) LayoutParams() idgen.LayoutParams {
	return idgen.LayoutParams{
		TimestampBits:        a.IDGen.TimestampBits,
		InstanceBits:         a.IDGen.InstanceIDBits,
		CounterBits:          a.IDGen.CounterBits,
		DomainBits:           a.IDGen.DomainIDBits,
		EpochStartSecond:     a.IDGen.EpochStartSecond,
		ReservedSecondsCount: a.IDGen.ReservedSecondsCount,
		InstanceID:           a.IDGen.InstanceID,
	}
}
