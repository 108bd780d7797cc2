package evaluation

// Flag is a three-valued cache decision.
type Flag int

const (
	Unset Flag = iota
	True
	False
)

// FlagOf converts a boolean decision to a Flag.
func FlagOf(value bool) Flag {
	if value {
		return True
	}
	return False
}

// Bool returns the effective value of the flag. Unset reads as false.
func (f Flag) Bool() bool {
	return f == True
}

func (f Flag) String() string {
	switch f {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "unset"
}

// FlagName names one of the flags of an evaluation.
type FlagName string

const (
	Storable    FlagName = "storable"
	Retrievable FlagName = "retrievable"
)

// Flags is the flag pair of one request/response cycle.
// A flag can be written once; every later write is ignored.
// The zero value has both flags unset.
type Flags struct {
	storable    Flag
	retrievable Flag
}

// SetIfUnset sets the named flag to value if it has not been set yet.
// It reports whether the write took effect.
func (f *Flags) SetIfUnset(name FlagName, value bool) bool {
	flag := f.flag(name)
	if flag == nil || *flag != Unset {
		return false
	}
	*flag = FlagOf(value)
	return true
}

// Read returns the current state of the named flag.
func (f *Flags) Read(name FlagName) Flag {
	if flag := f.flag(name); flag != nil {
		return *flag
	}
	return Unset
}

func (f *Flags) flag(name FlagName) *Flag {
	switch name {
	case Storable:
		return &f.storable
	case Retrievable:
		return &f.retrievable
	}
	return nil
}
