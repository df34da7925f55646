// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// enc28j60d initializes an ENC28J60 over a Linux spidev bus and runs the
// ARP/ICMP responder loop.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/usbarmory/enc28j60/enc28j60"
	"github.com/usbarmory/enc28j60/endpoint"
	"github.com/usbarmory/enc28j60/frame"
	"github.com/usbarmory/enc28j60/platform"
)

func main() {
	var (
		macStr     = pflag.StringP("mac", "m", "02:00:00:00:00:01", "Local station MAC address.")
		ipStr      = pflag.StringP("ip", "i", "", "Local IPv4 address. Required.")
		filterStr  = pflag.StringP("filter-mac", "f", "", "Only respond to frames from this source MAC. Empty disables filtering.")
		busIndex   = pflag.IntP("spi-bus", "b", 0, "SPI bus index (/dev/spidevN.x).")
		csIndex    = pflag.IntP("spi-cs", "c", 0, "SPI chip-select index (/dev/spidevx.N).")
		statsAddr  = pflag.StringP("stats-addr", "s", "", "Address to serve JSON stats and debugcharts on, e.g. :6060. Empty disables it.")
		logLevel   = pflag.StringP("log-level", "l", "info", "Log level: debug, info, warn, error.")
		gpiochip   = pflag.String("gpiochip", "", "gpiochip device exposing the ENC28J60 INT line, e.g. gpiochip0. Empty disables INT diagnostics.")
		intPin     = pflag.Int("int-pin", -1, "Offset of the INT line on --gpiochip.")
		replyRate  = pflag.Float64("reply-rate", 0, "Maximum ARP/ICMP replies per second. 0 disables throttling.")
		replyBurst = pflag.Int("reply-burst", 10, "Burst size for --reply-rate.")
		help       = pflag.BoolP("help", "h", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "enc28j60d - ENC28J60 ARP/ICMP responder.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: enc28j60d --ip 192.168.1.10 [options]\n\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if lvl, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	}

	if *ipStr == "" {
		logger.Fatal("--ip is required")
	}

	mac, err := parseMAC(*macStr)
	if err != nil {
		logger.Fatal("invalid --mac", "err", err)
	}

	ip, err := parseIP(*ipStr)
	if err != nil {
		logger.Fatal("invalid --ip", "err", err)
	}

	cfg := endpoint.Config{
		LocalMAC: mac,
		LocalIP:  ip,
		Logger:   logger,
	}

	if *filterStr != "" {
		filter, err := parseMAC(*filterStr)
		if err != nil {
			logger.Fatal("invalid --filter-mac", "err", err)
		}
		cfg.SourceFilter = &filter
	}

	if *gpiochip != "" {
		if *intPin < 0 {
			logger.Fatal("--int-pin is required when --gpiochip is set")
		}

		pin, err := platform.OpenIntPin(*gpiochip, *intPin)
		if err != nil {
			logger.Fatal("int pin open failed", "err", err)
		}
		defer pin.Close()

		cfg.IntPin = pin
	}

	if *replyRate > 0 {
		cfg.ReplyLimiter = rate.NewLimiter(rate.Limit(*replyRate), *replyBurst)
	}

	bus, err := platform.SPIBus(*busIndex, *csIndex)
	if err != nil {
		logger.Fatal("spi bus open failed", "err", err)
	}

	driver := enc28j60.New(bus, mac)
	if err := driver.Init(); err != nil {
		logger.Fatal("enc28j60 init failed", "err", err)
	}

	if *statsAddr != "" {
		loop := endpoint.New(driver, cfg)
		go serveStats(logger, loop, *statsAddr)
		run(logger, loop)
		return
	}

	run(logger, endpoint.New(driver, cfg))
}

func run(logger *log.Logger, loop *endpoint.Loop) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("endpoint loop exited", "err", err)
		os.Exit(1)
	}
}

func serveStats(logger *log.Logger, loop *endpoint.Loop, addr string) {
	logger.Info("serving stats", "addr", addr)
	if err := loop.Stats.ListenAndServe(addr); err != nil {
		logger.Error("stats server exited", "err", err)
	}
}

func parseMAC(s string) (frame.MacAddress, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return frame.MacAddress{}, err
	}
	return frame.ParseMacAddress(hw)
}

func parseIP(s string) (frame.IP4Address, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return frame.IP4Address{}, fmt.Errorf("%q is not a valid IPv4 address", s)
	}
	v4 := ip.To4()
	if v4 == nil {
		return frame.IP4Address{}, fmt.Errorf("%q is not an IPv4 address", s)
	}
	return frame.ParseIP4Address(v4)
}
