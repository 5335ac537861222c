package api

import (
	"errors"
	"fmt"
	"github.com/allape/camsnap/camera/codec"
	"github.com/allape/camsnap/camera/frame"
	"github.com/allape/camsnap/camera/indicator"
	"github.com/allape/camsnap/camera/placeholder"
	"github.com/allape/gogger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"net/http"
	"strconv"
	"sync"
	"time"
)

var l = gogger.New("api")

const (
	DefaultPlaceholderWidth  = 640
	DefaultPlaceholderHeight = 480
)

var ErrBadRequest = errors.New("bad request")

type Service interface {
	ListDevices() []string
	Snapshot(device string, width, height int) ([]byte, error)
	DetectMotion(device string, thresholdPercent float64, width, height int) (bool, error)
}

type PlaceholderOptions struct {
	Enabled bool
	Width   int
	Height  int
	Quality int
}

type Options struct {
	Cors        bool
	WSPath      string
	UI          bool
	Placeholder PlaceholderOptions
	// Indicator is signalled after every motion decision, may be nil.
	Indicator indicator.Driver
}

type Server struct {
	service  Service
	options  Options
	upgrader websocket.Upgrader

	indicatorLocker sync.Locker
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MotionResponse struct {
	Motion bool `json:"motion"`
}

func New(service Service, options Options) *gin.Engine {
	if options.WSPath == "" {
		options.WSPath = "/ws"
	}
	if options.Placeholder.Quality == 0 {
		options.Placeholder.Quality = codec.DefaultQuality
	}

	s := &Server{
		service:         service,
		options:         options,
		indicatorLocker: &sync.Mutex{},
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), accessLog)

	if options.Cors {
		engine.Use(cors.Default())
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}

	engine.GET("/devices", s.getDevices)
	engine.GET("/snapshot", s.getSnapshot)
	engine.GET("/motion", s.getMotion)
	engine.GET(options.WSPath, s.serveWebsocket)

	if options.UI {
		SetupUI(engine)
	}

	return engine
}

func accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	l.Verbose().Printf("%s %s %d %s", c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), time.Since(start))
}

// StatusOf maps capture errors to 503 and encoding failures to 500.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, codec.ErrEncodeFailed), errors.Is(err, frame.ErrOutOfMemory):
		return http.StatusInternalServerError
	default:
		return http.StatusServiceUnavailable
	}
}

func queryInt(c *gin.Context, key string) (int, error) {
	value := c.Query(key)
	if value == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrBadRequest, key, value)
	}
	return i, nil
}

// queryThreshold returns -1 when absent so the service default applies.
func queryThreshold(c *gin.Context) (float64, error) {
	value := c.Query("threshold")
	if value == "" {
		return -1, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("%w: invalid threshold %q", ErrBadRequest, value)
	}
	return f, nil
}

func querySize(c *gin.Context) (int, int, error) {
	width, err := queryInt(c, "width")
	if err != nil {
		return 0, 0, err
	}
	height, err := queryInt(c, "height")
	if err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

func queryDevice(c *gin.Context) (string, error) {
	device := c.Query("device")
	if device == "" {
		return "", fmt.Errorf("%w: device is required", ErrBadRequest)
	}
	return device, nil
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(StatusOf(err), ErrorResponse{Error: err.Error()})
}

func (s *Server) getDevices(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.ListDevices())
}

func (s *Server) getSnapshot(c *gin.Context) {
	device, err := queryDevice(c)
	if err != nil {
		abort(c, err)
		return
	}
	width, height, err := querySize(c)
	if err != nil {
		abort(c, err)
		return
	}

	img, err := s.service.Snapshot(device, width, height)
	if err != nil {
		if s.options.Placeholder.Enabled {
			data, perr := s.renderPlaceholder(device, width, height, err)
			if perr == nil {
				c.Data(StatusOf(err), "image/jpeg", data)
				return
			}
			l.Error().Println("render placeholder:", perr)
		}
		abort(c, err)
		return
	}

	c.Data(http.StatusOK, "image/jpeg", img)
}

func (s *Server) renderPlaceholder(device string, width, height int, cause error) ([]byte, error) {
	w, h := s.options.Placeholder.Width, s.options.Placeholder.Height
	if w == 0 || h == 0 {
		w, h = width, height
	}
	if w == 0 || h == 0 {
		w, h = DefaultPlaceholderWidth, DefaultPlaceholderHeight
	}

	text := device
	switch {
	case errors.Is(cause, codec.ErrEncodeFailed):
		text += ": encode failed"
	default:
		text += ": no signal"
	}

	return placeholder.JPEG(w, h, text, s.options.Placeholder.Quality)
}

func (s *Server) getMotion(c *gin.Context) {
	device, err := queryDevice(c)
	if err != nil {
		abort(c, err)
		return
	}
	threshold, err := queryThreshold(c)
	if err != nil {
		abort(c, err)
		return
	}
	width, height, err := querySize(c)
	if err != nil {
		abort(c, err)
		return
	}

	moved, err := s.detectMotion(device, threshold, width, height)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, MotionResponse{Motion: moved})
}

func (s *Server) detectMotion(device string, threshold float64, width, height int) (bool, error) {
	moved, err := s.service.DetectMotion(device, threshold, width, height)
	if err != nil {
		return false, err
	}
	s.signal(moved)
	return moved, nil
}

func (s *Server) signal(moved bool) {
	if s.options.Indicator == nil {
		return
	}

	s.indicatorLocker.Lock()
	defer s.indicatorLocker.Unlock()

	if err := s.options.Indicator.Signal(moved); err != nil {
		l.Warn().Println("signal indicator:", err)
	}
}
