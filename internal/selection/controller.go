package selection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pthm/shipform/internal/region"
)

// ErrUnknownOption is returned when a secondary code is not among the
// current secondary options.
var ErrUnknownOption = errors.New("selection: unknown option")

// Controller drives a single selector. It is safe for concurrent use;
// network reads happen outside the lock.
type Controller struct {
	primary   region.Source
	secondary region.Source
	log       *zap.Logger

	loadOnce sync.Once
	loadErr  error

	mu    sync.Mutex
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for fetch failures and stale completions.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a controller reading primary regions from primary and their
// subdivisions from secondary.
func New(primary, secondary region.Source, opts ...Option) *Controller {
	c := &Controller{
		primary:   primary,
		secondary: secondary,
		log:       zap.NewNop(),
		state: State{
			PrimaryOptions:   []region.Record{},
			SecondaryOptions: []region.Record{},
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Load reads the primary collection. Only the first call does any work;
// later calls return the first call's error. A failure leaves the primary
// options empty and sets the banner message.
func (c *Controller) Load(ctx context.Context) error {
	c.loadOnce.Do(func() {
		records, err := c.primary.Fetch(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.state.Loaded = true
		if err != nil {
			c.loadErr = fmt.Errorf("load primary regions: %w", err)
			c.state.Err = MsgPrimaryUnavailable
			c.log.Error("primary region fetch failed", zap.Error(err))
			return
		}
		c.state.PrimaryOptions = records
		c.log.Debug("primary regions loaded", zap.Int("count", len(records)))
	})
	return c.loadErr
}

// ChangePrimary applies a primary selection change.
//
// An empty code clears the secondary options without a fetch. Otherwise the
// full secondary collection is read and filtered by code. applied is false
// when a newer change was issued while this one was in flight; the result is
// then discarded.
func (c *Controller) ChangePrimary(ctx context.Context, code string) (applied bool, err error) {
	seq, fetch := c.Begin(code)
	if !fetch {
		return true, nil
	}
	records, err := c.secondary.Fetch(ctx)
	return c.Complete(seq, records, err)
}

// Begin records a primary change and resets the secondary selection. It
// returns the sequence number of the change and whether a secondary fetch is
// needed.
func (c *Controller) Begin(code string) (seq uint64, fetch bool) {
	code = strings.TrimSpace(code)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Seq++
	c.state.PrimaryCode = code
	c.state.SecondaryCode = ""
	c.state.SecondaryOptions = []region.Record{}
	c.state.Err = ""
	if c.loadErr != nil {
		c.state.Err = MsgPrimaryUnavailable
	}
	c.state.SecondaryLoading = code != ""

	return c.state.Seq, code != ""
}

// Complete applies the outcome of the secondary fetch issued by Begin(seq).
// Stale outcomes are dropped and reported with applied == false.
func (c *Controller) Complete(seq uint64, records []region.Record, fetchErr error) (applied bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.state.Seq {
		c.log.Debug("discarding stale secondary result",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", c.state.Seq),
		)
		return false, nil
	}

	c.state.SecondaryLoading = false
	if fetchErr != nil {
		c.state.Err = MsgSecondaryUnavailable
		c.log.Error("secondary region fetch failed",
			zap.String("parent", c.state.PrimaryCode),
			zap.Error(fetchErr),
		)
		return true, fmt.Errorf("load secondary regions for %q: %w", c.state.PrimaryCode, fetchErr)
	}

	c.state.SecondaryOptions = region.FilterByParent(records, c.state.PrimaryCode)
	return true, nil
}

// SelectSecondary records the chosen secondary code. An empty code clears the
// choice.
func (c *Controller) SelectSecondary(code string) error {
	code = strings.TrimSpace(code)

	c.mu.Lock()
	defer c.mu.Unlock()

	if code == "" {
		c.state.SecondaryCode = ""
		return nil
	}
	if _, ok := region.Find(c.state.SecondaryOptions, code); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, code)
	}
	c.state.SecondaryCode = code
	return nil
}

// Resolve returns the display names of the given codes using the options
// currently held. Unknown codes resolve to "".
func (c *Controller) Resolve(primaryCode, secondaryCode string) (primary, secondary string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	primary = region.NameOf(c.state.PrimaryOptions, primaryCode)
	if primaryCode == c.state.PrimaryCode {
		secondary = region.NameOf(c.state.SecondaryOptions, secondaryCode)
	}
	return primary, secondary
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}
