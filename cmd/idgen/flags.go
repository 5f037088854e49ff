package main

import (
	"flag"

	"github.com/sxyafiq/idgen"
)

// flagSetWithDefaults is a thin flag.FlagSet wrapper so commonLayoutFlags
// can be shared between subcommands without repeating seven flag
// definitions in each.
type flagSetWithDefaults struct {
	*flag.FlagSet
}

func newFlagSet(name string) *flagSetWithDefaults {
	return &flagSetWithDefaults{flag.NewFlagSet(name, flag.ExitOnError)}
}

// layoutFlags collects the layout-shaped flags every subcommand accepts,
// so a user can point the CLI at identifiers produced under any layout
// without the allocator having to persist one anywhere.
type layoutFlags struct {
	timestampBits *uint
	instanceBits  *uint
	counterBits   *uint
	domainBits    *uint
	epoch         *uint64
	reserved      *uint64
	instanceID    *uint64
}

func (lf *layoutFlags) params() idgen.LayoutParams {
	return idgen.LayoutParams{
		TimestampBits:        *lf.timestampBits,
		InstanceBits:         *lf.instanceBits,
		CounterBits:          *lf.counterBits,
		DomainBits:           *lf.domainBits,
		EpochStartSecond:     *lf.epoch,
		ReservedSecondsCount: *lf.reserved,
		InstanceID:           *lf.instanceID,
	}
}
