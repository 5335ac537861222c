package factory

import (
	"github.com/allape/camsnap/camera/codec"
	"github.com/allape/camsnap/camera/indicator/shell"
	"github.com/allape/camsnap/config"
	"testing"
)

func TestCodecFromConfig(t *testing.T) {
	conf := config.Default()
	conf.Camera.Quality = 70

	c, err := CodecFromConfig(conf)
	if err != nil {
		t.Fatal(err)
	}
	encoder, ok := c.(*codec.JPEGEncoder)
	if !ok {
		t.Fatalf("Expected *codec.JPEGEncoder, got %T", c)
	}
	if encoder.Quality != 70 {
		t.Fatalf("Expected quality 70, got %d", encoder.Quality)
	}
}

func TestCameraFromConfig(t *testing.T) {
	conf := config.Default()
	conf.Snapshot.Width = 1280
	conf.Snapshot.Height = 720
	conf.Motion.Threshold = 0

	c, err := CodecFromConfig(conf)
	if err != nil {
		t.Fatal(err)
	}
	cam, err := CameraFromConfig(conf, c)
	if err != nil {
		t.Fatal(err)
	}
	if cam.Options.SnapshotWidth != 1280 || cam.Options.SnapshotHeight != 720 {
		t.Fatalf("Unexpected snapshot size %+v", cam.Options)
	}
	if cam.Options.Threshold != 0 {
		t.Fatalf("Expected threshold 0 to be kept, got %f", cam.Options.Threshold)
	}
}

func TestIndicatorFromConfig(t *testing.T) {
	conf := config.Default()

	d, err := IndicatorFromConfig(conf)
	if err != nil {
		t.Fatal(err)
	}
	if d != nil {
		t.Fatalf("Expected nil driver, got %T", d)
	}

	conf.Indicator.Type = config.IndicatorShell
	if _, err = IndicatorFromConfig(conf); err == nil {
		t.Fatal("Expected error for shell driver without commands")
	}

	conf.Indicator.On = config.ShellCommand{"true"}
	d, err = IndicatorFromConfig(conf)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := d.(*shell.Indicator); !ok {
		t.Fatalf("Expected *shell.Indicator, got %T", d)
	}

	conf.Indicator.Type = config.IndicatorSerialPort
	if _, err = IndicatorFromConfig(conf); err == nil {
		t.Fatal("Expected error for empty serial port")
	}

	conf.Indicator.Src = "/dev/ttyUSB0"
	conf.Indicator.Ext = `baud:"fast"`
	if _, err = IndicatorFromConfig(conf); err == nil {
		t.Fatal("Expected error for invalid baud")
	}

	conf.Indicator.Type = "gpio"
	if _, err = IndicatorFromConfig(conf); err == nil {
		t.Fatal("Expected error for unknown driver")
	}
}
