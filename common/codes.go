package common

// Vendor attribute codes.  These identify appliance properties in telemetry
// and command payloads.
const (
	AttrVersion      = `0011`
	AttrFilter       = `1021`
	AttrMode         = `1000`
	AttrSetpoint     = `0432`
	AttrTemp         = `0430`
	AttrUnit         = `0420`
	AttrFanMode      = `1002`
	AttrCurrentState = `0401`
	AttrCoolingState = `04A1`
	AttrCleanAir     = `1004`
)

// Fan mode values
const (
	FanAuto = 7
	FanHigh = 4
	FanMed  = 2
	FanLow  = 1
)

// Clean air values
const (
	CleanAirOn  = 1
	CleanAirOff = 0
)

// Cooling state values
const (
	CoolingOff = 0
	CoolingOn  = 1
)

// Filter status values
const (
	FilterGood   = 0
	FilterChange = 2
)

// Operating mode values
const (
	ModeOff  = 0
	ModeCool = 1
	ModeFan  = 3
	ModeEcon = 4
)

// Temperature unit values
const (
	Celsius    = 0
	Fahrenheit = 1
)
