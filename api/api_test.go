package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/allape/camsnap/camera/codec"
	"github.com/allape/camsnap/camera/frame"
	"github.com/allape/camsnap/camera/v4l2"
	"github.com/gin-gonic/gin"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
)

var jpegBytes = []byte{0xff, 0xd8, 0xff, 0xd9}

type call struct {
	device    string
	threshold float64
	width     int
	height    int
}

type fakeService struct {
	mu        sync.Mutex
	devices   []string
	image     []byte
	moved     bool
	err       error
	snapshots []call
	motions   []call
}

func (f *fakeService) ListDevices() []string {
	return f.devices
}

func (f *fakeService) Snapshot(device string, width, height int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, call{device: device, width: width, height: height})
	if f.err != nil {
		return nil, f.err
	}
	return f.image, nil
}

func (f *fakeService) DetectMotion(device string, thresholdPercent float64, width, height int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.motions = append(f.motions, call{device: device, threshold: thresholdPercent, width: width, height: height})
	if f.err != nil {
		return false, f.err
	}
	return f.moved, nil
}

func (f *fakeService) calls() ([]call, []call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.snapshots), slices.Clone(f.motions)
}

type fakeIndicator struct {
	mu      sync.Mutex
	signals []bool
	err     error
}

func (f *fakeIndicator) Open() error {
	return nil
}

func (f *fakeIndicator) Close() error {
	return nil
}

func (f *fakeIndicator) Signal(motion bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, motion)
	return f.err
}

func (f *fakeIndicator) signalled() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.signals)
}

func newEngine(service Service, options Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(service, options)
}

func get(engine *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	engine.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	return body.Error
}

func TestGetDevices(t *testing.T) {
	engine := newEngine(&fakeService{devices: []string{"/dev/video0", "/dev/video2"}}, Options{})

	w := get(engine, "/devices")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var devices []string
	if err := json.Unmarshal(w.Body.Bytes(), &devices); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(devices, []string{"/dev/video0", "/dev/video2"}) {
		t.Fatalf("Unexpected devices %v", devices)
	}

	engine = newEngine(&fakeService{devices: []string{}}, Options{})
	w = get(engine, "/devices")
	if w.Body.String() != "[]" {
		t.Fatalf("Expected empty list, got %s", w.Body.String())
	}
}

func TestGetSnapshot(t *testing.T) {
	service := &fakeService{image: jpegBytes}
	engine := newEngine(service, Options{})

	w := get(engine, "/snapshot?device=/dev/video0&width=1280&height=720")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "image/jpeg" {
		t.Fatalf("Unexpected content type %s", w.Header().Get("Content-Type"))
	}
	if !bytes.Equal(w.Body.Bytes(), jpegBytes) {
		t.Fatalf("Unexpected body %v", w.Body.Bytes())
	}
	if service.snapshots[0] != (call{device: "/dev/video0", width: 1280, height: 720}) {
		t.Fatalf("Unexpected call %+v", service.snapshots[0])
	}

	w = get(engine, "/snapshot?device=/dev/video1")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if service.snapshots[1] != (call{device: "/dev/video1"}) {
		t.Fatalf("Expected zero size, got %+v", service.snapshots[1])
	}
}

func TestGetSnapshotBadRequest(t *testing.T) {
	service := &fakeService{image: jpegBytes}
	engine := newEngine(service, Options{})

	for _, url := range []string{
		"/snapshot",
		"/snapshot?device=/dev/video0&width=wide",
		"/snapshot?device=/dev/video0&height=-1",
	} {
		w := get(engine, url)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", url, w.Code)
		}
		if decodeError(t, w) == "" {
			t.Fatalf("%s: expected error message", url)
		}
	}
	if len(service.snapshots) != 0 {
		t.Fatal("Expected no capture for bad requests")
	}
}

func TestGetSnapshotErrors(t *testing.T) {
	for _, c := range []struct {
		err    error
		status int
	}{
		{v4l2.ErrDeviceUnavailable, http.StatusServiceUnavailable},
		{v4l2.ErrFormatNegotiationFailed, http.StatusServiceUnavailable},
		{v4l2.ErrCaptureTimeout, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: yuyv", codec.ErrEncodeFailed), http.StatusInternalServerError},
		{frame.ErrOutOfMemory, http.StatusInternalServerError},
	} {
		engine := newEngine(&fakeService{err: c.err}, Options{})
		w := get(engine, "/snapshot?device=/dev/video0")
		if w.Code != c.status {
			t.Fatalf("%v: expected %d, got %d", c.err, c.status, w.Code)
		}
		if decodeError(t, w) != c.err.Error() {
			t.Fatalf("Unexpected error body %s", w.Body.String())
		}
	}
}

func TestGetSnapshotPlaceholder(t *testing.T) {
	engine := newEngine(&fakeService{err: v4l2.ErrDeviceUnavailable}, Options{
		Placeholder: PlaceholderOptions{Enabled: true},
	})

	w := get(engine, "/snapshot?device=/dev/video0&width=320&height=240")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "image/jpeg" {
		t.Fatalf("Unexpected content type %s", w.Header().Get("Content-Type"))
	}
	img, err := jpeg.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if size := img.Bounds().Size(); size.X != 320 || size.Y != 240 {
		t.Fatalf("Expected 320x240 placeholder, got %v", size)
	}

	w = get(engine, "/snapshot?device=/dev/video0")
	img, err = jpeg.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if size := img.Bounds().Size(); size.X != DefaultPlaceholderWidth || size.Y != DefaultPlaceholderHeight {
		t.Fatalf("Expected default placeholder size, got %v", size)
	}
}

func TestGetMotion(t *testing.T) {
	service := &fakeService{moved: true}
	ind := &fakeIndicator{}
	engine := newEngine(service, Options{Indicator: ind})

	w := get(engine, "/motion?device=/dev/video0&threshold=2.5&width=160&height=120")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body MotionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Motion {
		t.Fatal("Expected motion")
	}
	if service.motions[0] != (call{device: "/dev/video0", threshold: 2.5, width: 160, height: 120}) {
		t.Fatalf("Unexpected call %+v", service.motions[0])
	}

	service.moved = false
	w = get(engine, "/motion?device=/dev/video0")
	if w.Body.String() != `{"motion":false}` {
		t.Fatalf("Unexpected body %s", w.Body.String())
	}
	if service.motions[1].threshold != -1 {
		t.Fatalf("Expected default threshold marker, got %f", service.motions[1].threshold)
	}

	if !slices.Equal(ind.signals, []bool{true, false}) {
		t.Fatalf("Unexpected signals %v", ind.signals)
	}
}

func TestGetMotionErrors(t *testing.T) {
	ind := &fakeIndicator{}
	service := &fakeService{err: v4l2.ErrCaptureTimeout}
	engine := newEngine(service, Options{Indicator: ind})

	w := get(engine, "/motion?device=/dev/video0")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", w.Code)
	}

	for _, url := range []string{
		"/motion",
		"/motion?device=/dev/video0&threshold=lots",
		"/motion?device=/dev/video0&threshold=-3",
	} {
		w = get(engine, url)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", url, w.Code)
		}
	}

	if len(ind.signals) != 0 {
		t.Fatalf("Expected no signal on failure, got %v", ind.signals)
	}
}

func TestIndicatorFailureIsNotFatal(t *testing.T) {
	ind := &fakeIndicator{err: fmt.Errorf("port gone")}
	engine := newEngine(&fakeService{moved: true}, Options{Indicator: ind})

	w := get(engine, "/motion?device=/dev/video0")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}

func TestCors(t *testing.T) {
	engine := newEngine(&fakeService{devices: []string{}}, Options{Cors: true})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/devices", nil)
	req.Header.Set("Origin", "http://example.com")
	engine.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("Expected CORS header, got %v", w.Header())
	}
}

func TestUI(t *testing.T) {
	engine := newEngine(&fakeService{}, Options{UI: true})
	w := get(engine, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("<title>camsnap</title>")) {
		t.Fatal("Expected index page")
	}

	engine = newEngine(&fakeService{}, Options{})
	if w = get(engine, "/"); w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 without ui, got %d", w.Code)
	}
}
