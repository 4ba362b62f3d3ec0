// Package server exposes the image operations over HTTP. Every request runs
// in a fresh session, so requests never share surfaces or busy state.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rkirkendall/nano-canvas/internal/config"
	"github.com/rkirkendall/nano-canvas/internal/edit"
	"github.com/rkirkendall/nano-canvas/internal/logging"
	"github.com/rkirkendall/nano-canvas/internal/session"
	"github.com/rkirkendall/nano-canvas/internal/version"
	"go.uber.org/zap"
)

type Server struct {
	cfg     *config.Config
	builder *edit.Builder
	log     *zap.Logger
	engine  *gin.Engine
}

func New(cfg *config.Config, builder *edit.Builder, log *zap.Logger) *Server {
	s := &Server{cfg: cfg, builder: builder, log: logging.OrNop(log)}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(s.log))
	r.Use(LimitBody(cfg.Server.MaxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": version.Version, "provider": cfg.Provider})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/generate", s.handleGenerate)
		api.POST("/edit", s.handleEdit)
		api.POST("/inpaint", s.handleInpaint)
		api.POST("/remove-background", s.handleRemoveBackground)
		api.POST("/sketch", s.handleSketch)
	}
	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ReadTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) newSession() *session.Session {
	sess := session.New(s.builder, s.log)
	sess.SetMaxSide(s.cfg.Canvas.MaxSide)
	sess.SetMaskBrush(s.cfg.Brush.Mask)
	sess.SetSketchBrush(s.cfg.Brush.Sketch)
	return sess
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: msg})
}

// reply writes the outcome of a session operation.
func reply(c *gin.Context, sess *session.Session, err error) {
	switch {
	case err == nil:
		res := sess.Result()
		c.JSON(http.StatusOK, Response{Success: true, Message: "ok", Data: &res})
	case edit.IsValidation(err):
		badRequest(c, edit.UserMessage(err))
	case errors.Is(err, session.ErrBusy):
		c.JSON(http.StatusConflict, Response{Success: false, Message: "Another operation is in progress."})
	default:
		var eerr *edit.EditError
		resp := Response{Success: false, Message: edit.UserMessage(err)}
		if errors.As(err, &eerr) && eerr.Text != "" {
			resp.Data = &edit.Result{Text: eerr.Text}
		}
		c.JSON(http.StatusBadGateway, resp)
	}
}
