package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Op string

const (
	OpDevices  Op = "devices"
	OpSnapshot Op = "snapshot"
	OpMotion   Op = "motion"
)

// Request is one websocket call. ID is echoed back verbatim.
type Request struct {
	ID        json.RawMessage `json:"id,omitempty"`
	Op        Op              `json:"op"`
	Device    string          `json:"device,omitempty"`
	Width     int             `json:"width,omitempty"`
	Height    int             `json:"height,omitempty"`
	Threshold *float64        `json:"threshold,omitempty"`
}

// Reply carries exactly one of Devices, Image, Motion or Error. Image is a
// JPEG, base64 encoded on the wire.
type Reply struct {
	ID      json.RawMessage `json:"id,omitempty"`
	Devices *[]string       `json:"devices,omitempty"`
	Image   []byte          `json:"image,omitempty"`
	Motion  *bool           `json:"motion,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (s *Server) serveWebsocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Println("upgrade:", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	l.Info().Println("websocket client connected:", conn.RemoteAddr())

	for {
		var req Request
		err := conn.ReadJSON(&req)
		if err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if err := conn.WriteJSON(Reply{Error: fmt.Sprintf("%s: %s", ErrBadRequest, err)}); err != nil {
					return
				}
				continue
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.Verbose().Println("read:", err)
			}
			return
		}

		err = conn.WriteJSON(s.Handle(req))
		if err != nil {
			l.Warn().Println("write:", err)
			return
		}
	}
}

// Handle runs one request against the service.
func (s *Server) Handle(req Request) Reply {
	reply := Reply{ID: req.ID}

	switch req.Op {
	case OpDevices:
		devices := s.service.ListDevices()
		if devices == nil {
			devices = []string{}
		}
		reply.Devices = &devices
	case OpSnapshot:
		if req.Device == "" {
			reply.Error = fmt.Sprintf("%s: device is required", ErrBadRequest)
			break
		}
		img, err := s.service.Snapshot(req.Device, max(req.Width, 0), max(req.Height, 0))
		if err != nil {
			reply.Error = err.Error()
			break
		}
		reply.Image = img
	case OpMotion:
		if req.Device == "" {
			reply.Error = fmt.Sprintf("%s: device is required", ErrBadRequest)
			break
		}
		threshold := -1.0
		if req.Threshold != nil {
			if *req.Threshold < 0 {
				reply.Error = fmt.Sprintf("%s: invalid threshold %f", ErrBadRequest, *req.Threshold)
				break
			}
			threshold = *req.Threshold
		}
		moved, err := s.detectMotion(req.Device, threshold, max(req.Width, 0), max(req.Height, 0))
		if err != nil {
			reply.Error = err.Error()
			break
		}
		reply.Motion = &moved
	default:
		reply.Error = fmt.Sprintf("%s: unknown op %q", ErrBadRequest, req.Op)
	}

	return reply
}
