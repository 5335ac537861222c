package shell

import (
	"errors"
	"github.com/allape/camsnap/camera/indicator"
	"github.com/allape/gogger"
	"os/exec"
	"strings"
)

var l = gogger.New("camera.indicator.shell")

// Indicator runs On when motion is detected and Off otherwise. Each command
// is argv, the first element is the program.
type Indicator struct {
	indicator.Driver
	On  []string
	Off []string
}

func (s *Indicator) Exec(argv []string) error {
	if len(argv) == 0 {
		return nil
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	bs, err := cmd.CombinedOutput()

	output := string(bs)

	l.Verbose().Println("executing command:", cmd.String())
	l.Verbose().Println("output:", output)

	if err != nil {
		if strings.TrimSpace(output) == "" {
			return err
		}
		return errors.New(output)
	}

	return nil
}

func (s *Indicator) Open() error {
	if len(s.On) == 0 && len(s.Off) == 0 {
		return errors.New("no indicator command configured")
	}
	return nil
}

func (s *Indicator) Close() error {
	return nil
}

func (s *Indicator) Signal(motion bool) error {
	if motion {
		return s.Exec(s.On)
	}
	return s.Exec(s.Off)
}
