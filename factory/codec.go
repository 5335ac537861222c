package factory

import (
	"github.com/allape/camsnap/camera/codec"
	"github.com/allape/camsnap/config"
)

func CodecFromConfig(conf config.Config) (codec.Codec, error) {
	return &codec.JPEGEncoder{Quality: conf.Camera.Quality}, nil
}
