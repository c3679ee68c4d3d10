package ops

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hpungsan/masscalc/internal/errors"
	"github.com/hpungsan/masscalc/internal/service"
	"github.com/hpungsan/masscalc/internal/store"
)

// autoFillKey is the pair of inputs the effect reacts to.
type autoFillKey struct {
	formula  string
	autoFill bool
}

// AutoFill keeps the starting-material slots in sync with the target formula:
// whenever the formula or the auto-fill preference changes, it asks the parser
// for the formula's elements and replaces the slots with them.
//
// Every activation takes a generation token from the elements store. The
// store compares it under its own lock when the parse result is written, so
// once a newer activation has started no older parse can touch the slots or
// the error. The write is also guarded by the formula revision seen at
// activation, so a result can never land on a formula typed after it began.
type AutoFill struct {
	elements *store.ElementsStore
	settings *store.SettingsStore
	parser   service.FormulaParser
	logger   *zap.Logger

	mu      sync.Mutex
	gen     uint64
	rev     uint64
	key     autoFillKey
	hasKey  bool
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	unsub   []func()
	wg      sync.WaitGroup
}

// NewAutoFill creates the effect. It does nothing until Start is called.
func NewAutoFill(elements *store.ElementsStore, settings *store.SettingsStore, parser service.FormulaParser, logger *zap.Logger) *AutoFill {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoFill{
		elements: elements,
		settings: settings,
		parser:   parser,
		logger:   logger,
	}
}

// Start subscribes to both stores and evaluates the current inputs once.
// Parses run on ctx; cancelling it or calling Stop ends the effect.
func (a *AutoFill) Start(ctx context.Context) {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.mu.Unlock()

	unsubElements := a.elements.Subscribe(func(st store.FormulaState) {
		a.activate(st)
	})
	// Notifications may arrive late; activate reads the current settings.
	unsubSettings := a.settings.Subscribe(func(store.SettingsState) {
		a.activate(a.elements.Snapshot())
	})

	a.mu.Lock()
	a.unsub = append(a.unsub, unsubElements, unsubSettings)
	a.mu.Unlock()

	a.activate(a.elements.Snapshot())
}

// Stop unsubscribes, invalidates any in-flight parse, and waits for the
// parse goroutines to return.
func (a *AutoFill) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	a.gen = a.elements.BeginAutoFill()
	unsub := a.unsub
	a.unsub = nil
	cancel := a.cancel
	a.mu.Unlock()

	for _, fn := range unsub {
		fn()
	}
	cancel()
	a.wg.Wait()
}

// Wait blocks until every parse started so far has resolved.
func (a *AutoFill) Wait() {
	a.wg.Wait()
}

func (a *AutoFill) activate(st store.FormulaState) {
	a.mu.Lock()
	key := autoFillKey{formula: st.TargetFormula, autoFill: a.settings.Snapshot().AutoFillStartingMaterials}

	if !a.running {
		a.mu.Unlock()
		return
	}
	// Listener calls may arrive out of order across goroutines; never step
	// back to an older formula.
	if st.FormulaRevision < a.rev {
		a.mu.Unlock()
		return
	}
	if a.hasKey && key == a.key && st.FormulaRevision == a.rev {
		a.mu.Unlock()
		return
	}
	token := a.elements.BeginAutoFill()
	a.gen = token
	a.key = key
	a.rev = st.FormulaRevision
	a.hasKey = true
	ctx := a.ctx

	trimmed := strings.TrimSpace(key.formula)
	if trimmed == "" || !key.autoFill {
		a.mu.Unlock()
		return
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go a.run(ctx, token, st.FormulaRevision, trimmed)
}

func (a *AutoFill) run(ctx context.Context, token, rev uint64, formula string) {
	defer a.wg.Done()

	a.logger.Debug("parse formula", zap.String("formula", formula), zap.Uint64("generation", token))
	elements, err := a.parser.ParseFormula(ctx, formula)

	if !a.current(token) {
		a.logger.Debug("discarding stale parse",
			zap.String("formula", formula),
			zap.Uint64("generation", token))
		return
	}

	if err != nil {
		a.logger.Warn("parse formula failed", zap.String("formula", formula), zap.Error(err))
		if !a.elements.UpdateErrorAt(rev, token, fmt.Sprintf("Error parsing formula %s", errors.Detail(err))) {
			a.logger.Debug("parse superseded before it applied", zap.String("formula", formula))
		}
		return
	}
	if len(elements) == 0 {
		return
	}
	if !a.elements.SetStartingMaterialsAt(rev, token, elements) {
		a.logger.Debug("parse superseded before it applied", zap.String("formula", formula))
	}
}

func (a *AutoFill) current(token uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running && token == a.gen
}
