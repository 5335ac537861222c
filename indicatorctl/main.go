// Indicatorctl drives the configured motion indicator from stdin:
//
//	on, 1    signal motion
//	off, 0   signal stillness
//	0x6131   raw bytes, serial port only
//	0b01100001
package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"github.com/allape/camsnap/config"
	"github.com/allape/camsnap/factory"
	"github.com/allape/gogger"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

var l = gogger.New("indicatorctl")

type Command struct {
	Raw    []byte
	Motion bool
}

func ParseLine(text string) (Command, error) {
	text = strings.TrimSpace(text)

	switch strings.ToLower(text) {
	case "on", "1":
		return Command{Motion: true}, nil
	case "off", "0":
		return Command{Motion: false}, nil
	}

	compact := strings.ReplaceAll(text, " ", "")
	switch {
	case strings.HasPrefix(compact, "0x"):
		raw, err := hex.DecodeString(compact[2:])
		if err != nil {
			return Command{}, fmt.Errorf("invalid hex string: %s", text)
		}
		return Command{Raw: raw}, nil
	case strings.HasPrefix(compact, "0b"):
		raw, err := BitsString2Bytes(compact[2:])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %s", err, text)
		}
		return Command{Raw: raw}, nil
	}

	return Command{}, fmt.Errorf("unknown command: %s", text)
}

func BitsString2Bytes(bitsStr string) ([]byte, error) {
	bits := []byte(bitsStr)
	if len(bits) == 0 || len(bits)%8 != 0 {
		return nil, errors.New("invalid binary string")
	}
	bs := make([]byte, len(bits)/8)
	for i := 0; i < len(bits); i++ {
		byteIndex := i / 8
		switch bits[i] {
		case '1':
			bs[byteIndex] = bs[byteIndex]<<1 | 1
		case '0':
			bs[byteIndex] = bs[byteIndex] << 1
		default:
			return nil, errors.New("invalid binary string")
		}
	}
	return bs, nil
}

func main() {
	conf, err := config.GetConfig()
	if err != nil {
		l.Error().Println("get config:", err)
		os.Exit(1)
	}

	ind, err := factory.IndicatorFromConfig(conf)
	if err != nil {
		l.Error().Println("indicator from config:", err)
		os.Exit(1)
	}
	if ind == nil {
		l.Error().Println("no indicator configured")
		os.Exit(1)
	}
	defer func() {
		_ = ind.Close()
	}()

	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			text, err := reader.ReadString('\n')
			if err != nil {
				l.Warn().Println("stdin closed:", err)
				return
			}

			cmd, err := ParseLine(text)
			if err != nil {
				l.Warn().Println(err)
				continue
			}

			if cmd.Raw == nil {
				l.Info().Println("> motion", cmd.Motion)
				if err := ind.Signal(cmd.Motion); err != nil {
					l.Error().Println("signal:", err)
				}
				continue
			}

			w, ok := ind.(io.Writer)
			if !ok {
				l.Warn().Println("raw bytes need a serial port indicator")
				continue
			}
			l.Info().Println("> 0x" + hex.EncodeToString(cmd.Raw))
			if _, err := w.Write(cmd.Raw); err != nil {
				l.Error().Println("write:", err)
			}
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	l.Info().Println("awaiting signal")
	sig := <-sigs
	l.Info().Println("exiting with", sig)
}
