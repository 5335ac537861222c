package factory

import (
	"github.com/allape/camsnap/camera"
	"github.com/allape/camsnap/camera/codec"
	"github.com/allape/camsnap/camera/v4l2"
	"github.com/allape/camsnap/config"
)

func CameraFromConfig(conf config.Config, c codec.Codec) (*camera.Camera, error) {
	capturer := v4l2.NewCapturer(v4l2.System, &v4l2.Options{
		MaxFrameBytes: conf.Camera.MaxFrameBytes,
	})

	l.Info().Printf(
		"camera: pattern %s, snapshot %dx%d, motion %dx%d at %.2f%%",
		conf.Camera.Pattern,
		conf.Snapshot.Width, conf.Snapshot.Height,
		conf.Motion.Width, conf.Motion.Height, conf.Motion.Threshold,
	)

	return camera.New(capturer, c, camera.Options{
		Pattern:        conf.Camera.Pattern,
		SnapshotWidth:  conf.Snapshot.Width,
		SnapshotHeight: conf.Snapshot.Height,
		MotionWidth:    conf.Motion.Width,
		MotionHeight:   conf.Motion.Height,
		Threshold:      conf.Motion.Threshold,
	})
}
