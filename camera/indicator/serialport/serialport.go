package serialport

import (
	"errors"
	"github.com/allape/camsnap/camera/indicator"
	"github.com/allape/gogger"
	"go.bug.st/serial"
	"io"
	"strings"
	"sync"
	"time"
)

var l = gogger.New("camera.indicator.serialport")

const (
	DefaultBaud = 9600
	// DefaultSettle covers the reset most USB serial boards do on open.
	DefaultSettle = 2 * time.Second
)

var (
	On  = []byte("a1")
	Off = []byte("a0")
)

type OpenFunc func(name string, mode *serial.Mode) (io.ReadWriteCloser, error)

func openSerial(name string, mode *serial.Mode) (io.ReadWriteCloser, error) {
	return serial.Open(name, mode)
}

type Indicator struct {
	indicator.Driver

	openLocker  sync.Locker
	writeLocker sync.Locker

	Port io.ReadWriteCloser

	Name   string
	Baud   int
	Settle time.Duration
	Dial   OpenFunc
}

func (d *Indicator) Open() error {
	d.openLocker.Lock()
	defer d.openLocker.Unlock()

	if d.Port != nil {
		return errors.New("port already open")
	}

	port, err := d.Dial(d.Name, &serial.Mode{BaudRate: d.Baud})
	if err != nil {
		return err
	}
	d.Port = port

	go func(port io.Reader) {
		buf := make([]byte, 256)
		unfinishedLine := ""
		for {
			n, err := port.Read(buf)
			if err != nil {
				l.Verbose().Println("read stopped:", err)
			}
			if n == 0 {
				return
			}
			lines := strings.Split(unfinishedLine+string(buf[:n]), "\n")
			for i := 0; i < len(lines)-1; i++ {
				l.Verbose().Println(">", lines[i])
			}
			unfinishedLine = lines[len(lines)-1]
		}
	}(port)

	if d.Settle > 0 {
		time.Sleep(d.Settle)
	}

	return nil
}

func (d *Indicator) Close() error {
	d.openLocker.Lock()
	defer d.openLocker.Unlock()

	if d.Port == nil {
		return nil
	}

	err := d.Port.Close()
	d.Port = nil
	return err
}

func (d *Indicator) Write(data []byte) (int, error) {
	d.openLocker.Lock()
	port := d.Port
	d.openLocker.Unlock()

	if port == nil {
		if err := d.Open(); err != nil {
			return 0, err
		}
		d.openLocker.Lock()
		port = d.Port
		d.openLocker.Unlock()
	}

	d.writeLocker.Lock()
	defer d.writeLocker.Unlock()

	n, err := port.Write(data)
	if err != nil {
		_ = d.Close()
		return n, err
	}

	return n, nil
}

// Signal writes a1 on motion and a0 otherwise.
func (d *Indicator) Signal(motion bool) error {
	data := Off
	if motion {
		data = On
	}
	_, err := d.Write(data)
	return err
}

func New(name string, baud int) *Indicator {
	if baud == 0 {
		baud = DefaultBaud
	}
	return &Indicator{
		openLocker:  &sync.Mutex{},
		writeLocker: &sync.Mutex{},
		Name:        name,
		Baud:        baud,
		Settle:      DefaultSettle,
		Dial:        openSerial,
	}
}
