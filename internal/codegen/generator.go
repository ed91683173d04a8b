package codegen

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/layout-editor/backend/internal/models"
)

// Generator tracks the status of the last export and keeps its output.
// A failed run leaves the previous output in place.
type Generator struct {
	mu          sync.RWMutex
	state       models.OperationState
	output      string
	generatedAt time.Time
	logger      *log.Logger
}

// NewGenerator creates an idle generator. A nil logger discards messages.
func NewGenerator(logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Generator{state: models.NewOperationState(), logger: logger}
}

// Run renders all containers and records the outcome.
func (g *Generator) Run(all []models.Container) (out string, err error) {
	g.SetStatus(models.StatusProcessing, "")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("code generation panicked: %v", r)
		}
		if err != nil {
			g.logger.Error("code generation failed", "err", err)
			g.SetStatus(models.StatusError, err.Error())
			return
		}
		g.mu.Lock()
		g.output = out
		g.generatedAt = time.Now()
		g.state = models.OperationState{Status: models.StatusSuccess}
		g.mu.Unlock()
		g.logger.Debug("code generated", "containers", len(all), "bytes", len(out))
	}()

	return GenerateAll(all)
}

// SetStatus overrides the current status, e.g. to reset it to idle.
func (g *Generator) SetStatus(status models.Status, message string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = models.OperationState{Status: status, Message: message}
}

// State returns the current status.
func (g *Generator) State() models.OperationState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Output returns the last successful output and when it was produced.
func (g *Generator) Output() (string, time.Time) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.output, g.generatedAt
}
