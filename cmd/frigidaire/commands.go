package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marekbrz/frigidaire/common"
)

var (
	cmdAppliances = &cobra.Command{
		Use:     `appliances`,
		Short:   `list registered appliances`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     listAppliances,
	}

	cmdStatus = &cobra.Command{
		Use:     `status`,
		Short:   `show the current state of an appliance`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     showStatus,
	}

	cmdSet = &cobra.Command{
		Use:   `set`,
		Short: `change an appliance attribute`,
	}

	cmdSetTemp = &cobra.Command{
		Use:     `temp <degrees>`,
		Short:   `set the target temperature`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     setTemp,
	}

	cmdSetMode = &cobra.Command{
		Use:     `mode <off|cool|econ|fan>`,
		Short:   `set the operating mode`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     setMode,
	}

	cmdSetFan = &cobra.Command{
		Use:     `fan <auto|high|med|low>`,
		Short:   `set the fan speed`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     setFan,
	}

	cmdSetCleanAir = &cobra.Command{
		Use:     `cleanair <on|off>`,
		Short:   `toggle the clean air mode`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     setCleanAir,
	}

	cmdSetUnits = &cobra.Command{
		Use:     `units <c|f>`,
		Short:   `set the temperature unit`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     setUnits,
	}

	cmdWatch = &cobra.Command{
		Use:     `watch`,
		Short:   `poll telemetry and print updates until interrupted`,
		PreRun:  setupClient,
		PostRun: closeClient,
		Run:     watch,
	}

	modeNames = map[string]int{
		`off`:  common.ModeOff,
		`cool`: common.ModeCool,
		`econ`: common.ModeEcon,
		`fan`:  common.ModeFan,
	}

	fanNames = map[string]int{
		`auto`: common.FanAuto,
		`high`: common.FanHigh,
		`med`:  common.FanMed,
		`low`:  common.FanLow,
	}
)

func init() {
	cmdSet.AddCommand(cmdSetTemp)
	cmdSet.AddCommand(cmdSetMode)
	cmdSet.AddCommand(cmdSetFan)
	cmdSet.AddCommand(cmdSetCleanAir)
	cmdSet.AddCommand(cmdSetUnits)
}

func listAppliances(c *cobra.Command, args []string) {
	appliances, err := client.Appliances()
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed listing appliances`)
	}
	for _, app := range appliances {
		fmt.Printf("%s\t%s\t(pnc %s, elc %s, mac %s)\n", app.SerialNumber, app.Nickname, app.PNC, app.ELC, app.MAC)
	}
}

// waitForTelemetry blocks until every appliance has a telemetry snapshot, or
// gives up after a few refresh cycles
func waitForTelemetry() {
	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()
	timeout := time.After(30 * time.Second)
	for {
		if client.TelemetryPopulated() {
			return
		}
		select {
		case <-tick.C:
		case <-timeout:
			logger.Fatalln(`Timed out waiting for telemetry`)
		}
	}
}

func showStatus(c *cobra.Command, args []string) {
	waitForTelemetry()

	mode, err := client.GetMode(flagSerial)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed reading mode`)
	}
	temp, err := client.GetTemp(flagSerial)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed reading setpoint`)
	}
	roomTemp, err := client.GetRoomTemp(flagSerial)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed reading room temperature`)
	}
	fan, err := client.GetFanMode(flagSerial)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed reading fan mode`)
	}
	unit, err := client.GetUnit(flagSerial)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed reading units`)
	}
	cleanAir, err := client.GetCleanAir(flagSerial)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed reading clean air state`)
	}
	filter, err := client.GetFilter(flagSerial)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed reading filter status`)
	}
	cooling, err := client.GetCoolingState(flagSerial)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed reading cooling state`)
	}

	unitName := `°C`
	if unit == common.Fahrenheit {
		unitName = `°F`
	}
	fmt.Printf("mode:      %s\n", modeName(mode))
	fmt.Printf("setpoint:  %.0f%s\n", temp, unitName)
	fmt.Printf("room temp: %.0f%s\n", roomTemp, unitName)
	fmt.Printf("fan:       %s\n", fanName(fan))
	fmt.Printf("clean air: %s\n", onOff(cleanAir == common.CleanAirOn))
	fmt.Printf("cooling:   %s\n", onOff(cooling == common.CoolingOn))
	fmt.Printf("filter:    %s\n", filterName(filter))
}

func setTemp(c *cobra.Command, args []string) {
	if len(args) != 1 {
		c.Usage()
		logger.Fatalln(`Missing temperature`)
	}
	temp, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Invalid temperature`)
	}
	waitForTelemetry()
	if err := client.SetTemp(flagSerial, temp); err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed setting temperature`)
	}
}

func setMode(c *cobra.Command, args []string) {
	if len(args) != 1 {
		c.Usage()
		logger.Fatalln(`Missing mode`)
	}
	mode, ok := modeNames[strings.ToLower(args[0])]
	if !ok {
		logger.Fatalln(`Invalid mode, expected one of: off, cool, econ, fan`)
	}
	waitForTelemetry()
	if err := client.SetMode(flagSerial, mode); err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed setting mode`)
	}
}

func setFan(c *cobra.Command, args []string) {
	if len(args) != 1 {
		c.Usage()
		logger.Fatalln(`Missing fan speed`)
	}
	fan, ok := fanNames[strings.ToLower(args[0])]
	if !ok {
		logger.Fatalln(`Invalid fan speed, expected one of: auto, high, med, low`)
	}
	waitForTelemetry()
	if err := client.SetFanMode(flagSerial, fan); err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed setting fan speed`)
	}
}

func setCleanAir(c *cobra.Command, args []string) {
	if len(args) != 1 {
		c.Usage()
		logger.Fatalln(`Missing state`)
	}
	state := common.CleanAirOff
	if strings.EqualFold(args[0], `on`) {
		state = common.CleanAirOn
	}
	waitForTelemetry()
	if err := client.SetCleanAir(flagSerial, state); err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed setting clean air state`)
	}
}

func setUnits(c *cobra.Command, args []string) {
	if len(args) != 1 {
		c.Usage()
		logger.Fatalln(`Missing unit`)
	}
	unit := common.Celsius
	if strings.EqualFold(args[0], `f`) {
		unit = common.Fahrenheit
	}
	waitForTelemetry()
	if err := client.ChangeUnits(flagSerial, unit); err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed setting units`)
	}
}

func watch(c *cobra.Command, args []string) {
	sub, err := client.NewSubscription()
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed subscribing to events`)
	}
	if err = client.StartPolling(); err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed starting polling`)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case event := <-sub.Events():
			switch e := event.(type) {
			case common.EventTelemetryUpdated:
				fmt.Printf("%s telemetry updated (%d attributes)\n", e.SerialNumber, len(e.Telemetry))
			case common.EventSessionExpired:
				fmt.Println(`session expired, re-authenticating`)
			case common.EventNewAppliance:
				fmt.Printf("discovered appliance %s\n", e.Appliance.SerialNumber)
			}
		case <-interrupt:
			client.StopPolling()
			return
		}
	}
}

func modeName(mode int) string {
	switch mode {
	case common.ModeOff:
		return `off`
	case common.ModeCool:
		return `cool`
	case common.ModeEcon:
		return `econ`
	case common.ModeFan:
		return `fan`
	}
	return strconv.Itoa(mode)
}

func fanName(fan int) string {
	switch fan {
	case common.FanAuto:
		return `auto`
	case common.FanHigh:
		return `high`
	case common.FanMed:
		return `med`
	case common.FanLow:
		return `low`
	}
	return strconv.Itoa(fan)
}

func filterName(filter int) string {
	switch filter {
	case common.FilterGood:
		return `good`
	case common.FilterChange:
		return `change`
	}
	return strconv.Itoa(filter)
}

func onOff(on bool) string {
	if on {
		return `on`
	}
	return `off`
}
