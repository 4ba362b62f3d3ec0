package server

import (
	"github.com/gin-gonic/gin"
	"github.com/rkirkendall/nano-canvas/internal/edit"
	"github.com/rkirkendall/nano-canvas/internal/generate"
	"github.com/rkirkendall/nano-canvas/internal/media"
	"github.com/rkirkendall/nano-canvas/internal/session"
)

func (s *Server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	style, err := generate.ParseStyle(req.Style)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	quality, err := generate.ParseQuality(req.Quality)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	aspect, err := generate.ParseAspectRatio(req.AspectRatio)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	sess := s.newSession()
	sess.SelectTool(session.ToolGenerate)
	err = sess.Generate(c.Request.Context(), req.Prompt, edit.GenerateOptions{
		Style: style, Quality: quality, AspectRatio: aspect,
	})
	reply(c, sess, err)
}

func (s *Server) handleEdit(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	sess, ok := s.sessionWithImage(c, req.Image)
	if !ok {
		return
	}
	st := session.Settings{Creative: req.Creative, Strength: session.DefaultStrength}
	if req.Strength != nil {
		st.Strength = *req.Strength
	}
	sess.SetSettings(st)
	reply(c, sess, sess.Edit(c.Request.Context(), req.Prompt))
}

func (s *Server) handleInpaint(c *gin.Context) {
	var req InpaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	sess, ok := s.sessionWithImage(c, req.Image)
	if !ok {
		return
	}
	sess.ToggleInpaint()
	if req.Mask != nil && req.Image != "" {
		if err := req.Mask.Validate(); err != nil {
			badRequest(c, err.Error())
			return
		}
		if _, err := sess.DrawMask(req.Mask); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	reply(c, sess, sess.Inpaint(c.Request.Context(), req.Prompt))
}

func (s *Server) handleRemoveBackground(c *gin.Context) {
	var req RemoveBackgroundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	sess, ok := s.sessionWithImage(c, req.Image)
	if !ok {
		return
	}
	reply(c, sess, sess.RemoveBackground(c.Request.Context()))
}

func (s *Server) handleSketch(c *gin.Context) {
	var req SketchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	sess := s.newSession()
	sess.SelectTool(session.ToolSketch)
	if req.Sketch != nil {
		if err := req.Sketch.Validate(); err != nil {
			badRequest(c, err.Error())
			return
		}
		if _, err := sess.DrawSketch(req.Sketch); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	reply(c, sess, sess.SketchToImage(c.Request.Context(), req.Prompt))
}

// sessionWithImage starts a session with the uploaded data URI. An empty
// image is left for the operation's own validation to report.
func (s *Server) sessionWithImage(c *gin.Context, uri string) (*session.Session, bool) {
	sess := s.newSession()
	if uri == "" {
		return sess, true
	}
	img, err := media.ParseDataURI(uri)
	if err != nil {
		badRequest(c, "invalid image: "+err.Error())
		return nil, false
	}
	if err := sess.Upload(img); err != nil {
		badRequest(c, err.Error())
		return nil, false
	}
	return sess, true
}
