// Package httpserver exposes the amplifier operations as a small JSON
// HTTP API. Handlers are thin: parameter validation happens here, all
// device work is dispatched through the bridge.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xyamp/ampbridge/internal/amp"
	"github.com/xyamp/ampbridge/internal/amp/protocol"
	"github.com/xyamp/ampbridge/internal/ble"
	"github.com/xyamp/ampbridge/internal/bridge"
)

// Server wires the gin router to an amplifier client behind the bridge.
type Server struct {
	amp    *amp.Client
	bridge *bridge.Bridge
	log    *zap.Logger
	srv    *http.Server
}

// New creates a Server listening on addr.
func New(addr string, client *amp.Client, br *bridge.Bridge, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{amp: client, bridge: br, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", s.handleScan)
	r.GET("/set_volume", s.handleSetVolume)
	r.GET("/status", s.handleStatus)
	r.GET("/set_input", s.handleSetInput)

	s.srv = &http.Server{Addr: addr, Handler: r}
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleScan(c *gin.Context) {
	var devices []ble.Device
	err := s.bridge.Do(c.Request.Context(), func(ctx context.Context) error {
		var err error
		devices, err = s.amp.Scan(ctx)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(devices))
	for _, d := range devices {
		out = append(out, gin.H{"address": d.Address, "name": d.Name})
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "devices": out})
}

func (s *Server) handleSetVolume(c *gin.Context) {
	mac := c.Query("mac")
	if mac == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "MAC address is required"})
		return
	}
	volume, err := strconv.Atoi(c.Query("volume"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Volume must be provided"})
		return
	}

	err = s.bridge.Do(c.Request.Context(), func(ctx context.Context) error {
		return s.amp.SetVolume(ctx, mac, volume)
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Volume set to %d for %s", volume, mac),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	mac := c.Query("mac")
	if mac == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "MAC address is required"})
		return
	}

	var (
		level byte
		known bool
	)
	err := s.bridge.Do(c.Request.Context(), func(ctx context.Context) error {
		var err error
		level, known, err = s.amp.Volume(ctx, mac)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	var inputCode byte
	err = s.bridge.Do(c.Request.Context(), func(ctx context.Context) error {
		var err error
		inputCode, err = s.amp.Input(ctx, mac)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	// Volume is null when the device pushed nothing in the wait window.
	var volume *int
	if known {
		v := int(level)
		volume = &v
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"mac_address": mac,
		"volume":      volume,
		"input":       protocol.InputName(inputCode),
	})
}

func (s *Server) handleSetInput(c *gin.Context) {
	mac := c.Query("mac")
	if mac == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "MAC address is required"})
		return
	}
	input := c.Query("input")
	switch input {
	case protocol.InputAux, protocol.InputBT, protocol.InputSndcard, protocol.InputUSB:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input must be 'aux', 'bt', 'sndcard', or 'usb'"})
		return
	}

	err := s.bridge.Do(c.Request.Context(), func(ctx context.Context) error {
		return s.amp.SetInput(ctx, mac, input)
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Input set to %s for %s", input, mac),
	})
}

// fail renders a device or protocol failure. Pre-validated arguments
// are caught in the handlers above; everything that reaches the device
// layer and fails comes back as a 500 with the error text.
func (s *Server) fail(c *gin.Context, err error) {
	s.log.Warn("operation failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
