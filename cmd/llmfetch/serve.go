package main

import (
	"fmt"

	"github.com/fwojciec/llmfetch/gin"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := gin.NewServer()
	s.Addr = fmt.Sprintf(":%d", c.Port)
	s.JobService = deps.Jobs
	s.Scraper = deps.Scraper
	s.Logger = deps.Logger

	if err := s.Open(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	deps.Logger.Info("server listening", "port", s.Port())

	<-deps.Ctx.Done()

	deps.Logger.Info("server shutting down")
	return s.Close()
}
