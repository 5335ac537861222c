package factory

import (
	"fmt"
	"github.com/allape/camsnap/camera/indicator"
	"github.com/allape/camsnap/camera/indicator/serialport"
	"github.com/allape/camsnap/camera/indicator/shell"
	"github.com/allape/camsnap/config"
)

// IndicatorFromConfig returns nil for the none driver. A serial port that
// cannot be opened yet is not fatal, the driver retries on the next signal.
func IndicatorFromConfig(conf config.Config) (d indicator.Driver, err error) {
	switch conf.Indicator.Type {
	case config.IndicatorNone, "":
		l.Warn().Println("indicator driver is none, motion is not signalled")
		return nil, nil
	case config.IndicatorSerialPort:
		if conf.Indicator.Src == "" {
			return nil, fmt.Errorf("indicator serial port is empty")
		}
		baud, err := conf.Indicator.Ext.GetInt("baud", serialport.DefaultBaud)
		if err != nil {
			return nil, err
		}
		l.Info().Println("indicator driver is serial port:", conf.Indicator.Src, baud)
		sp := serialport.New(conf.Indicator.Src, baud)
		if err := sp.Open(); err != nil {
			l.Warn().Println("open indicator serial port:", err)
		}
		return sp, nil
	case config.IndicatorShell:
		l.Info().Println("indicator driver is shell:", conf.Indicator.On, conf.Indicator.Off)
		d = &shell.Indicator{
			On:  conf.Indicator.On,
			Off: conf.Indicator.Off,
		}
	default:
		return nil, fmt.Errorf("unknown indicator driver: %s", conf.Indicator.Type)
	}

	err = d.Open()
	if err != nil {
		return nil, err
	}

	return d, nil
}
