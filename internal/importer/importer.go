package importer

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/layout-editor/backend/internal/canvas"
	"github.com/layout-editor/backend/internal/models"
)

// Commit replaces the contents of store with res, keeping ids. Either the
// whole result lands or the store is left as it was.
func Commit(store *canvas.Store, res *Result) error {
	if err := store.Load(res.List()); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Importer parses markup into a store and tracks the outcome for the UI.
type Importer struct {
	mu     sync.RWMutex
	state  models.OperationState
	logger *log.Logger
}

// NewImporter creates an idle importer. A nil logger discards messages.
func NewImporter(logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Importer{state: models.NewOperationState(), logger: logger}
}

// Import parses markup and, on success, replaces the store's containers.
// A parse failure leaves the store untouched and records the reason.
func (im *Importer) Import(store *canvas.Store, markup string) (*Result, error) {
	im.SetStatus(models.StatusProcessing, "")

	res, err := Parse(markup)
	if err != nil {
		im.logger.Info("import rejected", "err", err)
		im.SetStatus(models.StatusError, message(err))
		return nil, err
	}
	if err := Commit(store, res); err != nil {
		im.logger.Error("import commit failed", "err", err)
		im.SetStatus(models.StatusError, err.Error())
		return nil, err
	}

	im.logger.Debug("import committed", "containers", len(res.Order), "roots", len(res.Roots()))
	im.SetStatus(models.StatusSuccess, "")
	return res, nil
}

func message(err error) string {
	if ie, ok := err.(*Error); ok {
		return ie.Message
	}
	return err.Error()
}

// SetStatus overrides the current status.
func (im *Importer) SetStatus(status models.Status, msg string) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.state = models.OperationState{Status: status, Message: msg}
}

// State returns the current status.
func (im *Importer) State() models.OperationState {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.state
}
